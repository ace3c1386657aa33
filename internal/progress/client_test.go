package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewReporter_EmptyURLDisables(t *testing.T) {
	r := NewReporter("", "key")
	if r != nil {
		t.Fatal("expected nil reporter for empty base URL")
	}
	r.Close() // nil-safe
}

func TestReport_PutsRecord(t *testing.T) {
	var got Record
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if r.Method != http.MethodPut {
			t.Errorf("method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rep := NewReporter(srv.URL, "secret")
	defer rep.Close()

	rec := Record{
		SessionID:   "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Article:     "chapter-1",
		ChunkIndex:  7,
		TotalChunks: 42,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := rep.Report(context.Background(), rec); err != nil {
		t.Fatalf("Report: %v", err)
	}

	if gotPath != "/progress/"+rec.SessionID {
		t.Errorf("path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header %q", gotAuth)
	}
	if got.ChunkIndex != 7 || got.TotalChunks != 42 || got.Article != "chapter-1" {
		t.Errorf("record %+v", got)
	}
}

func TestReport_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	if testing.Short() {
		t.Skip("waits through real backoff")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rep := NewReporter(srv.URL, "")
	defer rep.Close()

	if err := rep.Report(context.Background(), Record{SessionID: "s1"}); err != nil {
		t.Fatalf("Report should succeed after a retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestReport_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rep := NewReporter(srv.URL, "")
	defer rep.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rep.Report(ctx, Record{SessionID: "s1"}); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	prevMax := time.Duration(0)
	for attempt := 0; attempt < 10; attempt++ {
		d := Backoff(attempt)
		if d <= 0 {
			t.Fatalf("attempt %d: non-positive backoff %v", attempt, d)
		}
		// Base caps at 30s; jitter adds at most half of that again.
		if d > 45*time.Second {
			t.Fatalf("attempt %d: backoff %v exceeds cap", attempt, d)
		}
		if d > prevMax {
			prevMax = d
		}
	}
	if prevMax < time.Second {
		t.Errorf("backoff never grew past %v", prevMax)
	}
}
