package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveChunk(t *testing.T) {
	r := New()

	r.ObserveChunk("write", 256, 20*time.Millisecond, nil)
	r.ObserveChunk("write", 256, 30*time.Millisecond, nil)
	r.ObserveChunk("read", 16, 4*time.Second, errors.New("timeout"))

	if got := testutil.ToFloat64(r.chunks.WithLabelValues("write", "ok")); got != 2 {
		t.Errorf("write ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.chunks.WithLabelValues("read", "error")); got != 1 {
		t.Errorf("read error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.bytes.WithLabelValues("write")); got != 512 {
		t.Errorf("write bytes = %v, want 512", got)
	}
	if got := testutil.ToFloat64(r.bytes.WithLabelValues("read")); got != 0 {
		t.Errorf("failed reads should not count bytes, got %v", got)
	}
	if got := testutil.CollectAndCount(r.latency); got != 2 {
		t.Errorf("latency series = %d, want 2", got)
	}
}

func TestObserveVerificationFailure(t *testing.T) {
	r := New()
	r.ObserveVerificationFailure("fill")
	r.ObserveVerificationFailure("fill")

	if got := testutil.ToFloat64(r.verifyFailure.WithLabelValues("fill")); got != 2 {
		t.Errorf("fill failures = %v, want 2", got)
	}
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveVerificationFailure("program")

	if got := testutil.ToFloat64(b.verifyFailure.WithLabelValues("program")); got != 0 {
		t.Errorf("second recorder saw %v failures", got)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.ObserveChunk("dump", 16, time.Millisecond, nil)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	for _, want := range []string{
		`eeprom_chunk_requests_total{op="dump",result="ok"} 1`,
		`eeprom_chunk_bytes_total{op="dump"} 16`,
		"eeprom_chunk_duration_seconds_bucket",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
