package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/model"
)

func TestStatusAndError(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success keeps response status", 200, nil, 200, ""},
		{"fiber error carries its own code", 200, fiber.NewError(fiber.StatusNotFound, "gone"), 404, "gone"},
		{"plain error maps to 500", 200, errors.New("boom"), 500, "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := statusAndError(tc.status, tc.err)
			if status != tc.wantStatus || msg != tc.wantMsg {
				t.Fatalf("statusAndError = (%d, %q), want (%d, %q)", status, msg, tc.wantStatus, tc.wantMsg)
			}
		})
	}
}

func TestRecordDropsWhenBufferFull(t *testing.T) {
	// no writer draining the buffer; record must never block the caller
	r := &MetricsRecorder{buffer: make(chan model.APIMetric, 2)}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			r.record(model.APIMetric{Endpoint: "/api/v1/chat", StatusCode: 200})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("record blocked on a full buffer")
	}

	if len(r.buffer) != 2 {
		t.Fatalf("expected buffer to hold its capacity of samples, got %d", len(r.buffer))
	}
}

func TestRecorderCloseDrainsBufferedSamples(t *testing.T) {
	r := &MetricsRecorder{
		buffer: make(chan model.APIMetric, 4),
		done:   make(chan struct{}),
	}

	drained := 0
	go func() {
		defer close(r.done)
		for range r.buffer {
			drained++
		}
	}()

	for i := 0; i < 3; i++ {
		r.record(model.APIMetric{Endpoint: "/api/v1/health"})
	}
	r.Close()

	if drained != 3 {
		t.Fatalf("expected 3 samples drained on close, got %d", drained)
	}
}
