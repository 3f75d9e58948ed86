package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/zephyrtronium/slidewin/dataset"
	"github.com/zephyrtronium/slidewin/record"
	"github.com/zephyrtronium/slidewin/window"
)

var app = cli.Command{
	Name:  "slidewin",
	Usage: "Sliding-window extrema scanner",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:    "scan",
			Aliases: []string{"run"},
			Usage:   "Scan a dataset and print each window's extremum",
			Flags: []cli.Flag{
				&flagInput,
				&flagFormat,
				&cli.StringFlag{
					Name:  "mode",
					Usage: "Scan mode, either max or min",
					Value: "max",
				},
				&cli.IntFlag{
					Name:  "k",
					Usage: "Window size overriding the dataset's own",
				},
				&cli.BoolFlag{
					Name:  "record",
					Usage: "Record the run in the configured history",
				},
			},
			Action: cliScan,
		},
		{
			Name:  "leaders",
			Usage: "Print the elements no later element exceeds",
			Flags: []cli.Flag{
				&flagInput,
				&flagFormat,
			},
			Action: cliLeaders,
		},
		{
			Name:  "gen",
			Usage: "Generate a random dataset",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "n",
					Usage:    "Sequence length",
					Required: true,
				},
				&cli.IntFlag{
					Name:     "k",
					Usage:    "Window size",
					Required: true,
				},
				&cli.UintFlag{
					Name:  "seed",
					Usage: "Generator seed",
				},
			},
			Action: cliGen,
		},
		{
			Name:   "serve",
			Usage:  "Serve scans over WebSocket",
			Action: cliServe,
		},
	},

	Authors: []any{
		"Branden J Brown  @zephyrtronium",
	},
	Copyright: "Copyright 2024 Branden J Brown",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

func cliScan(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	d, err := openDataset(cmd)
	if err != nil {
		return err
	}
	if k := cmd.Int("k"); k != 0 {
		d.K = int(k)
	}
	mode := cmd.String("mode")
	var sc *window.Scanner
	switch mode {
	case "max":
		sc, err = window.NewMax(d.Values, d.K)
	case "min":
		sc, err = window.NewMin(d.Values, d.K)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return fmt.Errorf("couldn't scan: %w", err)
	}
	var rec record.Recorder
	if cmd.Bool("record") {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		r, _, err := loadRecorder(ctx, cfg.DB)
		if err != nil {
			return err
		}
		if r == nil {
			return errors.New("recording requested but no history configured")
		}
		defer r.Close()
		rec = r
	}
	var results []int64
	if rec != nil {
		results = make([]int64, 0, sc.Count())
	}
	start := time.Now()
	w := bufio.NewWriter(os.Stdout)
	sep := ""
	for v := range sc.Values() {
		if cmd.String("format") == "lines" {
			fmt.Fprintf(w, "%d\n", v)
		} else {
			fmt.Fprintf(w, "%s%d", sep, v)
			sep = " "
		}
		if rec != nil {
			results = append(results, v)
		}
	}
	if cmd.String("format") != "lines" {
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("couldn't write results: %w", err)
	}
	cost := time.Since(start)
	pushes, pops := sc.Ops()
	slog.DebugContext(ctx, "scan finished",
		slog.Int("n", len(d.Values)),
		slog.Int("k", d.K),
		slog.Int64("pushes", pushes),
		slog.Int64("pops", pops),
		slog.Duration("cost", cost),
	)
	if rec != nil {
		run := &record.Run{
			ID:      uuid.NewString(),
			Time:    start,
			Mode:    mode,
			N:       len(d.Values),
			K:       d.K,
			Digest:  d.Digest(),
			Cost:    cost,
			Results: results,
		}
		if err := rec.Record(ctx, run); err != nil {
			return fmt.Errorf("couldn't record run: %w", err)
		}
		slog.InfoContext(ctx, "recorded", slog.String("id", run.ID), slog.String("digest", run.Digest))
	}
	return nil
}

func cliLeaders(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	d, err := openDataset(cmd)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(os.Stdout)
	sep := ""
	for _, v := range window.Leaders(d.Values) {
		if cmd.String("format") == "lines" {
			fmt.Fprintf(w, "%d\n", v)
		} else {
			fmt.Fprintf(w, "%s%d", sep, v)
			sep = " "
		}
	}
	if cmd.String("format") != "lines" {
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func cliGen(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	n, k := int(cmd.Int("n")), int(cmd.Int("k"))
	if n < 0 {
		return fmt.Errorf("negative sequence length %d", n)
	}
	seed := cmd.Uint("seed")
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	d := dataset.Generate(n, k, rng)
	if _, err := d.WriteTo(os.Stdout); err != nil {
		return fmt.Errorf("couldn't write dataset: %w", err)
	}
	return nil
}

// openDataset reads the dataset named by the input flag, with - for stdin.
func openDataset(cmd *cli.Command) (*dataset.Dataset, error) {
	name := cmd.String("input")
	if name == "-" {
		return dataset.Read(os.Stdin)
	}
	r, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("couldn't open dataset: %w", err)
	}
	defer r.Close()
	d, err := dataset.Read(r)
	if err != nil {
		return nil, fmt.Errorf("couldn't read dataset %s: %w", name, err)
	}
	return d, nil
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}

	flagInput = cli.StringFlag{
		Name:  "input",
		Usage: "Dataset file, or - for standard input",
		Value: "-",
	}

	flagFormat = cli.StringFlag{
		Name:  "format",
		Usage: "Output format, either space or lines",
		Value: "space",
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "space", "lines":
				return nil
			default:
				return errors.New("unknown output format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}
