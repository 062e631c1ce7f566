package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/config"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.DataConfig{BaseURL: baseURL, TimeoutSeconds: 2, Retries: 1}
	return NewClient(cfg, zap.NewNop())
}

func TestLoadFullSnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/articles.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles":[{"id":"a1","title":"Tax reform passes","source":"Dawn","category":"tax","publishedAt":"2026-01-21T00:00:00Z","sentiment":"positive","sentimentScore":0.8,"kpiIds":["fbr-tax"],"kpiRelevance":{"fbr-tax":72.5}}]}`))
	})
	mux.HandleFunc("/kpis.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kpis":[{"id":"fbr-tax","name":"FBR Tax Collection","currentScore":61.2,"previousScore":55.0,"trend":"up","articleCount":1,"lastUpdated":"2026-01-21T00:00:00Z"}]}`))
	})
	mux.HandleFunc("/trends.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sentimentTrends":[{"date":"2026-01-21","positive":3,"negative":1,"neutral":2}]}`))
	})
	mux.HandleFunc("/insights.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"insights":[{"id":"i1","title":"t","summary":"s","type":"trend","confidence":80,"relatedKpiIds":["fbr-tax"],"createdAt":"2026-01-21T00:00:00Z"}],"alerts":[{"id":"al1","title":"t","description":"d","severity":"warning","status":"new","createdAt":"2026-01-21T00:00:00Z"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	snap := newTestClient(t, srv.URL).Load(context.Background())

	if snap.ID == "" {
		t.Error("snapshot should carry an id")
	}
	if len(snap.Articles) != 1 || snap.Articles[0].ID != "a1" {
		t.Fatalf("articles = %+v", snap.Articles)
	}
	if snap.Articles[0].RelevanceFor("fbr-tax") != 72.5 {
		t.Errorf("relevance = %v", snap.Articles[0].RelevanceFor("fbr-tax"))
	}
	if len(snap.KPIs) != 1 || snap.KPIs[0].ID != "fbr-tax" {
		t.Fatalf("kpis = %+v", snap.KPIs)
	}
	if len(snap.Trends) != 1 || snap.Trends[0].Positive != 3 {
		t.Fatalf("trends = %+v", snap.Trends)
	}
	if len(snap.Insights) != 1 || len(snap.Alerts) != 1 {
		t.Fatalf("insights/alerts = %d/%d", len(snap.Insights), len(snap.Alerts))
	}
}

func TestLoadFailOpen(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"articles": [`))
		}},
		{"missing top-level field", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"somethingElse": []}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			snap := newTestClient(t, srv.URL).Load(context.Background())
			if snap.Articles == nil || len(snap.Articles) != 0 {
				t.Errorf("articles = %+v, want empty non-nil", snap.Articles)
			}
			if snap.KPIs == nil || len(snap.KPIs) != 0 {
				t.Errorf("kpis = %+v, want empty non-nil", snap.KPIs)
			}
			if snap.Insights == nil || snap.Alerts == nil {
				t.Error("insights/alerts must be non-nil")
			}
		})
	}
}

func TestLoadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
	}))
	defer srv.Close()

	cfg := &config.DataConfig{BaseURL: srv.URL, TimeoutSeconds: 1}
	client := NewClient(cfg, zap.NewNop())

	start := time.Now()
	snap := client.Load(context.Background())
	if elapsed := time.Since(start); elapsed > 2500*time.Millisecond {
		t.Errorf("load took %v, timeout not enforced", elapsed)
	}
	if len(snap.Articles) != 0 {
		t.Error("timed-out load should yield empty articles")
	}
}

func TestRetryOnTransportFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// Drop the first connection to force a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("hijacking unsupported")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			conn.Close()
			return
		}
		w.Write([]byte(`{"articles":[{"id":"a1","title":"t","source":"Dawn","category":"tax","publishedAt":"2026-01-21T00:00:00Z","sentiment":"neutral","sentimentScore":0}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	var env articlesEnvelope
	if err := client.fetchJSON(context.Background(), "articles.json", &env); err != nil {
		t.Fatalf("fetchJSON after retry: %v", err)
	}
	if len(env.Articles) != 1 {
		t.Fatalf("articles = %+v", env.Articles)
	}
}

func TestStoreRefreshSwapsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store := NewStore(newTestClient(t, srv.URL))
	first := store.Current()
	if first == nil || first.Articles == nil {
		t.Fatal("store should start with an empty snapshot")
	}

	snap := store.Refresh(context.Background())
	if snap.ID == first.ID {
		t.Error("refresh should produce a new snapshot identity")
	}
	if store.Current().ID != snap.ID {
		t.Error("Current should return the refreshed snapshot")
	}
}
