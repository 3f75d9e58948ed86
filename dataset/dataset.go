// Package dataset reads, writes, and generates windowed-scan inputs.
package dataset

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// Dataset is an integer sequence together with the window size to scan it by.
type Dataset struct {
	K      int
	Values []int64
}

// Read parses a dataset from whitespace-separated text: the sequence length,
// then the window size, then that many integers. Whether the length and
// window size describe a valid scan is the scanner's concern, not Read's.
func Read(r io.Reader) (*Dataset, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	n, err := next(sc, "sequence length")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative sequence length %d", n)
	}
	k, err := next(sc, "window size")
	if err != nil {
		return nil, err
	}
	vals := make([]int64, n)
	for i := range vals {
		v, err := next(sc, fmt.Sprintf("value %d of %d", i+1, n))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &Dataset{K: int(k), Values: vals}, nil
}

func next(sc *bufio.Scanner, what string) (int64, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("couldn't read %s: %w", what, err)
		}
		return 0, fmt.Errorf("short input: missing %s", what)
	}
	v, err := strconv.ParseInt(sc.Text(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", what, err)
	}
	return v, nil
}

// WriteTo writes the dataset in the text format Read parses.
func (d *Dataset) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	m, err := fmt.Fprintf(bw, "%d %d\n", len(d.Values), d.K)
	n += int64(m)
	if err != nil {
		return n, err
	}
	for i, v := range d.Values {
		sep := " "
		if i == 0 {
			sep = ""
		}
		m, err := fmt.Fprintf(bw, "%s%d", sep, v)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	m, err = fmt.Fprintln(bw)
	n += int64(m)
	if err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// Digest returns a hex SHA3-256 content address of the dataset's values.
// The window size is not part of the digest; scans of the same sequence with
// different windows share it.
func (d *Dataset) Digest() string {
	b := make([]byte, 0, binary.MaxVarintLen64*(len(d.Values)+1))
	b = binary.AppendVarint(b, int64(len(d.Values)))
	for _, v := range d.Values {
		b = binary.AppendVarint(b, v)
	}
	sum := sha3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
