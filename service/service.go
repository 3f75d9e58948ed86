// Package service serves windowed-extrema scans over WebSocket.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/slidewin/dataset"
	"github.com/zephyrtronium/slidewin/metrics"
	"github.com/zephyrtronium/slidewin/record"
	"github.com/zephyrtronium/slidewin/window"
)

// Request is one scan request frame.
type Request struct {
	// Mode is the scan mode, "max" or "min". Empty means "max".
	Mode string `json:"mode"`
	// K is the window size.
	K int `json:"k"`
	// Values is the input sequence.
	Values []int64 `json:"values"`
}

// Response is the reply to one request frame.
type Response struct {
	// Results are the window extrema, in order.
	Results []int64 `json:"results,omitempty"`
	// Error describes why the scan couldn't run.
	Error string `json:"error,omitempty"`
}

// Server serves scans over WebSocket connections. Each connection handles
// any number of requests, one scan per message.
type Server struct {
	// Recorder records completed scans and answers repeated requests from
	// history. If nil, every request is scanned anew and nothing is kept.
	Recorder record.Recorder
	// Metrics instruments scans. May be nil.
	Metrics *metrics.Metrics
	// Every is the minimum interval between admitted requests on one
	// connection. Zero or negative admits every request immediately.
	Every time.Duration
	// Burst is the admission burst size when Every is positive.
	Burst int
}

// Handler returns the handler for the scan endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /scan", s.scan)
	return mux
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.ErrorContext(ctx, "couldn't accept websocket", slog.Any("err", err))
		return
	}
	defer conn.CloseNow()
	lim := rate.NewLimiter(rate.Every(s.Every), max(s.Burst, 1))
	for {
		_, m, err := conn.Read(ctx)
		if err != nil {
			slog.DebugContext(ctx, "connection done", slog.Any("err", err))
			return
		}
		if s.Metrics != nil {
			s.Metrics.WSRequests.Observe(1)
		}
		if err := lim.Wait(ctx); err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(m, &req); err != nil {
			s.reply(ctx, conn, Response{Error: fmt.Sprintf("bad request: %v", err)})
			continue
		}
		s.reply(ctx, conn, s.run(ctx, &req))
	}
}

func (s *Server) reply(ctx context.Context, conn *websocket.Conn, resp Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		// Should be impossible for these types. Explode loudly.
		panic(fmt.Errorf("service: couldn't marshal response %#v: %w", resp, err))
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		slog.ErrorContext(ctx, "couldn't write response", slog.Any("err", err))
	}
}

func (s *Server) run(ctx context.Context, req *Request) Response {
	mode := req.Mode
	if mode == "" {
		mode = "max"
	}
	var sc *window.Scanner
	var err error
	switch mode {
	case "max":
		sc, err = window.NewMax(req.Values, req.K)
	case "min":
		sc, err = window.NewMin(req.Values, req.K)
	default:
		return Response{Error: fmt.Sprintf("unknown mode %q", mode)}
	}
	if err != nil {
		return Response{Error: err.Error()}
	}
	d := dataset.Dataset{K: req.K, Values: req.Values}
	digest := d.Digest()
	if s.Recorder != nil {
		prev, err := s.Recorder.Latest(ctx, digest, mode, req.K)
		if err != nil {
			slog.ErrorContext(ctx, "couldn't check history", slog.Any("err", err))
		}
		if prev != nil {
			slog.DebugContext(ctx, "answered from history",
				slog.String("id", prev.ID),
				slog.String("digest", digest),
			)
			return Response{Results: prev.Results}
		}
	}
	start := time.Now()
	results := make([]int64, 0, sc.Count())
	for v := range sc.Values() {
		results = append(results, v)
	}
	cost := time.Since(start)
	if s.Metrics != nil {
		pushes, pops := sc.Ops()
		s.Metrics.ScansCount.Observe(1)
		s.Metrics.WindowsEmitted.Observe(float64(len(results)))
		s.Metrics.DequePushes.Observe(float64(pushes))
		s.Metrics.DequePops.Observe(float64(pops))
		s.Metrics.ScanLatency.Observe(cost.Seconds(), mode)
	}
	if s.Recorder != nil {
		run := &record.Run{
			ID:      uuid.NewString(),
			Time:    start,
			Mode:    mode,
			N:       len(req.Values),
			K:       req.K,
			Digest:  digest,
			Cost:    cost,
			Results: results,
		}
		if err := s.Recorder.Record(ctx, run); err != nil {
			slog.ErrorContext(ctx, "couldn't record run", slog.Any("err", err))
		}
	}
	return Response{Results: results}
}
