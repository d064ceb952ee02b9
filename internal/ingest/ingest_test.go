package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const collection = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"FRA","properties":{"name":"France"},
  "geometry":{"type":"Polygon","coordinates":[[[2,46],[3,46],[3,47],[2,46]]]}}]}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/countries.geo.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(collection))
	}))
	defer srv.Close()

	cs, err := Fetch(context.Background(), srv.URL+"/countries.geo.json")
	if err != nil || len(cs) != 1 || cs[0].Name != "France" {
		t.Fatalf("Fetch = %+v, %v", cs, err)
	}
	if _, err := Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestStartPeriodicRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	StartPeriodic(ctx, 5*time.Millisecond, func(context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("first run fails")
		}
		return nil
	})
	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if runs.Load() < 3 {
		t.Fatalf("task ran %d times, errors must not stop the schedule", runs.Load())
	}
	time.Sleep(20 * time.Millisecond)
	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != stopped {
		t.Fatalf("task kept running after cancel")
	}
}
