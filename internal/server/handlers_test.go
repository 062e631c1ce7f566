package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/config"
	"github.com/pmo-intel/insight-hub/internal/loader"
	"github.com/pmo-intel/insight-hub/internal/ranking"
	"github.com/pmo-intel/insight-hub/internal/search"
	"github.com/pmo-intel/insight-hub/internal/session"
)

const testArticlesJSON = `{"articles":[
	{"id":"dawn-2026-01-21-power-1","title":"Circular debt crisis deepens","source":"Dawn",
	 "category":"power","publishedAt":"2026-01-21T08:00:00Z","summary":"Debt stock rises",
	 "sentiment":"negative","sentimentScore":-0.6,
	 "kpiIds":["circular-debt"],"kpiRelevance":{"circular-debt":85.5,"power-sector":20}},
	{"id":"brecorder-2026-01-22-tax-1","title":"FBR beats tax target","source":"Business Recorder",
	 "category":"tax","publishedAt":"2026-01-22T09:00:00Z","summary":"Collections surge",
	 "sentiment":"positive","sentimentScore":0.7,
	 "kpiIds":["fbr-tax"],"kpiRelevance":{"fbr-tax":92}},
	{"id":"dawn-2026-01-22-power-2","title":"Nepra tariff hearing","source":"Dawn",
	 "category":"power","publishedAt":"2026-01-22T10:00:00Z","summary":"Hearing adjourned",
	 "sentiment":"neutral","sentimentScore":0.0,
	 "kpiIds":["power-sector"],"kpiRelevance":{"power-sector":45,"circular-debt":31}}
]}`

const testKPIsJSON = `{"kpis":[
	{"id":"circular-debt","name":"Circular Debt","category":"Energy",
	 "currentScore":32,"previousScore":45,"trend":"down","articleCount":2,
	 "lastUpdated":"2026-01-22T00:00:00Z"},
	{"id":"fbr-tax","name":"FBR Tax Collection","category":"Taxation",
	 "currentScore":78,"previousScore":70,"trend":"up","articleCount":1,
	 "lastUpdated":"2026-01-22T00:00:00Z"}
]}`

const testTrendsJSON = `{"sentimentTrends":[
	{"date":"2026-01-21","positive":0,"negative":1,"neutral":0},
	{"date":"2026-01-22","positive":1,"negative":0,"neutral":1}
]}`

const testInsightsJSON = `{"insights":[
	{"id":"insight-risk-circular-debt","title":"Circular Debt under pressure","summary":"...",
	 "type":"risk","confidence":83,"relatedKpiIds":["circular-debt"],"createdAt":"2026-01-22T00:00:00Z"}
],"alerts":[
	{"id":"alert-decline-circular-debt","title":"Circular Debt declining","description":"...",
	 "severity":"warning","status":"new","kpiId":"circular-debt","createdAt":"2026-01-22T00:00:00Z"}
]}`

func newArtifactServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		})
	}
	serve("/articles.json", testArticlesJSON)
	serve("/kpis.json", testKPIsJSON)
	serve("/trends.json", testTrendsJSON)
	serve("/insights.json", testInsightsJSON)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestServer(t *testing.T, withIndex bool) *Server {
	t.Helper()
	ts := newArtifactServer(t)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Data.BaseURL = ts.URL

	logger := zap.NewNop()
	store := loader.NewStore(loader.NewClient(&cfg.Data, logger))
	bookmarks := session.NewBookmarks(context.Background(), nil, logger)
	alerts := session.NewAlertCenter(context.Background(), nil, logger)
	ranker := ranking.NewRanker(cfg.Ranking.RelevanceThreshold, cfg.Ranking.DefaultLimit)

	var index *search.Index
	if withIndex {
		var err error
		index, err = search.NewIndex(logger)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { index.Close() })
	}

	srv := NewServer(store, bookmarks, alerts, ranker, index, cfg, logger)
	srv.RefreshSnapshot(context.Background())
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["articles"].(float64) != 3 {
		t.Errorf("articles = %v, want 3", body["articles"])
	}
	if body["snapshot_id"] == "" {
		t.Error("missing snapshot_id")
	}
}

func TestStats(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["totalArticles"].(float64) != 3 {
		t.Errorf("totalArticles = %v, want 3", body["totalArticles"])
	}
}

func TestArticlesUnfiltered(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/api/v1/articles")
	body := decodeBody(t, rec)
	if body["count"].(float64) != 3 {
		t.Errorf("count = %v, want 3", body["count"])
	}
}

func TestArticlesFiltered(t *testing.T) {
	srv := newTestServer(t, false)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"search", "/api/v1/articles?search=tax", 1},
		{"source", "/api/v1/articles?sources=Dawn", 2},
		{"kpi", "/api/v1/articles?kpis=circular-debt", 1},
		{"date range", "/api/v1/articles?from=2026-01-22&to=2026-01-22", 2},
		{"combined", "/api/v1/articles?sources=Dawn&from=2026-01-22", 1},
		{"no match", "/api/v1/articles?search=cricket", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := decodeBody(t, rec)
			if int(body["count"].(float64)) != tt.want {
				t.Errorf("count = %v, want %d", body["count"], tt.want)
			}
		})
	}
}

func TestArticlesBadDate(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/api/v1/articles?from=yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestKPIs(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/api/v1/kpis")
	body := decodeBody(t, rec)
	if len(body["kpis"].([]interface{})) != 2 {
		t.Errorf("kpis = %v, want 2 entries", body["kpis"])
	}
}

func TestKPIArticles(t *testing.T) {
	srv := newTestServer(t, false)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/kpis/circular-debt/articles")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	articles := body["articles"].([]interface{})
	// 85.5 and 31 qualify over the default threshold of 30; 20 does not.
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	first := articles[0].(map[string]interface{})
	if first["id"] != "dawn-2026-01-21-power-1" {
		t.Errorf("top article = %v, want highest relevance first", first["id"])
	}
}

func TestKPIArticlesThresholdOverride(t *testing.T) {
	srv := newTestServer(t, false)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/kpis/circular-debt/articles?threshold=50")
	body := decodeBody(t, rec)
	if int(body["count"].(float64)) != 1 {
		t.Errorf("count = %v, want 1 over threshold 50", body["count"])
	}
}

func TestKPIArticlesUnknownKPI(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/api/v1/kpis/nope/articles")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTrendsAndInsights(t *testing.T) {
	srv := newTestServer(t, false)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/trends")
	if got := len(decodeBody(t, rec)["sentimentTrends"].([]interface{})); got != 2 {
		t.Errorf("trends = %d, want 2", got)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/insights")
	if got := len(decodeBody(t, rec)["insights"].([]interface{})); got != 1 {
		t.Errorf("insights = %d, want 1", got)
	}
}

func TestAlertLifecycle(t *testing.T) {
	srv := newTestServer(t, false)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/alerts")
	if got := len(decodeBody(t, rec)["alerts"].([]interface{})); got != 1 {
		t.Fatalf("alerts = %d, want 1", got)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/alerts/alert-decline-circular-debt/acknowledge")
	if rec.Code != http.StatusOK {
		t.Fatalf("acknowledge status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/alerts")
	alerts := decodeBody(t, rec)["alerts"].([]interface{})
	if alerts[0].(map[string]interface{})["status"] != "acknowledged" {
		t.Error("alert not acknowledged")
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/alerts/alert-decline-circular-debt")
	if rec.Code != http.StatusOK {
		t.Fatalf("dismiss status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/alerts")
	if got := len(decodeBody(t, rec)["alerts"].([]interface{})); got != 0 {
		t.Errorf("alerts = %d after dismissal, want 0", got)
	}

	// Refresh must not resurrect the dismissed alert.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/alerts")
	if got := len(decodeBody(t, rec)["alerts"].([]interface{})); got != 0 {
		t.Errorf("alerts = %d after refresh, want dismissal to hold", got)
	}
}

func TestAcknowledgeUnknownAlert(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodPost, "/api/v1/alerts/nope/acknowledge")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBookmarkToggle(t *testing.T) {
	srv := newTestServer(t, false)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bookmarks/dawn-2026-01-21-power-1")
	if decodeBody(t, rec)["bookmarked"] != true {
		t.Fatal("first toggle should bookmark")
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/bookmarks")
	body := decodeBody(t, rec)
	if len(body["ids"].([]interface{})) != 1 {
		t.Fatalf("ids = %v, want 1", body["ids"])
	}
	if len(body["articles"].([]interface{})) != 1 {
		t.Error("bookmarked article should be resolved from the snapshot")
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/bookmarks/dawn-2026-01-21-power-1")
	if decodeBody(t, rec)["bookmarked"] != false {
		t.Fatal("second toggle should remove the bookmark")
	}
}

func TestRefresh(t *testing.T) {
	srv := newTestServer(t, false)
	before := srv.store.Current().ID

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["snapshot_id"] == before {
		t.Error("refresh should produce a new snapshot")
	}
	if body["articles"].(float64) != 3 {
		t.Errorf("articles = %v, want 3", body["articles"])
	}
}

func TestSearchDisabled(t *testing.T) {
	rec := doRequest(t, newTestServer(t, false), http.MethodGet, "/api/v1/search?q=debt")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when index disabled", rec.Code)
	}
}

func TestSearchEnabled(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?q=circular+debt")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	results := body["results"].([]interface{})
	if len(results) == 0 {
		t.Fatal("expected search hits")
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/search")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing q", rec.Code)
	}
}

func TestFailOpenServing(t *testing.T) {
	// A data server that serves nothing: every collection degrades to
	// empty and every read endpoint still answers 200.
	ts := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Data.BaseURL = ts.URL
	cfg.Data.TimeoutSeconds = 2

	logger := zap.NewNop()
	store := loader.NewStore(loader.NewClient(&cfg.Data, logger))
	srv := NewServer(store,
		session.NewBookmarks(context.Background(), nil, logger),
		session.NewAlertCenter(context.Background(), nil, logger),
		ranking.NewRanker(0, 0), nil, cfg, logger)
	srv.RefreshSnapshot(context.Background())

	for _, target := range []string{"/api/v1/stats", "/api/v1/articles", "/api/v1/kpis", "/api/v1/trends", "/api/v1/insights", "/api/v1/alerts"} {
		rec := doRequest(t, srv, http.MethodGet, target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200 (fail-open)", target, rec.Code)
		}
	}
}

func TestDateOnlyToCoversWholeDay(t *testing.T) {
	srv := newTestServer(t, false)
	// Articles on the 22nd are published at 09:00 and 10:00; a date-only
	// "to" of the 22nd must still include them.
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/articles?to=2026-01-22")
	if got := int(decodeBody(t, rec)["count"].(float64)); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
}
