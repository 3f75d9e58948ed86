package service_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/slidewin/dataset"
	"github.com/zephyrtronium/slidewin/record/kvrecord"
	"github.com/zephyrtronium/slidewin/service"
)

func dial(t *testing.T, s *service.Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/scan", nil)
	if err != nil {
		t.Fatalf("couldn't dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req service.Request) service.Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("couldn't marshal request: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		t.Fatalf("couldn't write request: %v", err)
	}
	_, m, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("couldn't read response: %v", err)
	}
	var resp service.Response
	if err := json.Unmarshal(m, &resp); err != nil {
		t.Fatalf("couldn't decode response %q: %v", m, err)
	}
	return resp
}

func TestScan(t *testing.T) {
	conn := dial(t, &service.Server{})
	cases := []struct {
		name string
		req  service.Request
		want []int64
	}{
		{
			name: "max",
			req:  service.Request{Mode: "max", K: 3, Values: []int64{1, 3, -1, -3, 5, 3, 6, 7}},
			want: []int64{3, 3, 5, 5, 6, 7},
		},
		{
			name: "default-mode",
			req:  service.Request{K: 2, Values: []int64{9, 11}},
			want: []int64{11},
		},
		{
			name: "min",
			req:  service.Request{Mode: "min", K: 3, Values: []int64{1, 3, -1, -3, 5, 3, 6, 7}},
			want: []int64{-1, -3, -3, -3, 3, 3},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := roundTrip(t, conn, c.req)
			if resp.Error != "" {
				t.Fatalf("scan failed: %s", resp.Error)
			}
			if diff := cmp.Diff(c.want, resp.Results); diff != "" {
				t.Errorf("wrong results (+got/-want):\n%s", diff)
			}
		})
	}
}

func TestScanErrors(t *testing.T) {
	conn := dial(t, &service.Server{})
	cases := []struct {
		name string
		req  service.Request
	}{
		{name: "empty", req: service.Request{Mode: "max", K: 1}},
		{name: "oversized-window", req: service.Request{Mode: "max", K: 4, Values: []int64{1, 2, 3}}},
		{name: "zero-window", req: service.Request{Mode: "max", K: 0, Values: []int64{1, 2, 3}}},
		{name: "bad-mode", req: service.Request{Mode: "median", K: 1, Values: []int64{1}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := roundTrip(t, conn, c.req)
			if resp.Error == "" {
				t.Errorf("invalid request produced results: %v", resp.Results)
			}
			if resp.Results != nil {
				t.Errorf("partial output alongside error %q: %v", resp.Error, resp.Results)
			}
		})
	}
	// The connection survives an error frame.
	resp := roundTrip(t, conn, service.Request{Mode: "max", K: 1, Values: []int64{5}})
	if resp.Error != "" {
		t.Errorf("scan after error frames failed: %s", resp.Error)
	}
}

func TestScanRecords(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	rec := kvrecord.New(db)
	conn := dial(t, &service.Server{Recorder: rec})

	req := service.Request{Mode: "max", K: 3, Values: []int64{1, 3, -1, -3, 5, 3, 6, 7}}
	want := []int64{3, 3, 5, 5, 6, 7}
	resp := roundTrip(t, conn, req)
	if resp.Error != "" {
		t.Fatalf("scan failed: %s", resp.Error)
	}
	if diff := cmp.Diff(want, resp.Results); diff != "" {
		t.Errorf("wrong results (+got/-want):\n%s", diff)
	}

	// The run is recorded, and the repeat is answered from history.
	d := dataset.Dataset{K: req.K, Values: req.Values}
	run, err := rec.Latest(context.Background(), d.Digest(), "max", req.K)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if run == nil {
		t.Fatal("scan was not recorded")
	}
	if diff := cmp.Diff(want, run.Results); diff != "" {
		t.Errorf("wrong recorded results (+got/-want):\n%s", diff)
	}
	resp = roundTrip(t, conn, req)
	if diff := cmp.Diff(want, resp.Results); diff != "" {
		t.Errorf("wrong replayed results (+got/-want):\n%s", diff)
	}
}
