package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/filter"
	"github.com/pmo-intel/insight-hub/internal/stats"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()
	resp := map[string]interface{}{
		"snapshot_id":  snap.ID,
		"loaded_at":    snap.LoadedAt,
		"age_seconds":  int(time.Since(snap.LoadedAt).Seconds()),
		"articles":     len(snap.Articles),
		"kpis":         len(snap.KPIs),
		"trend_points": len(snap.Trends),
		"insights":     len(snap.Insights),
		"alerts":       len(s.alerts.List()),
		"bookmarks":    len(s.bookmarks.List()),
		"config": map[string]interface{}{
			"data_base_url":       s.config.Data.BaseURL,
			"watch_directory":     s.config.Data.WatchDirectory,
			"search_enabled":      s.index != nil,
			"ranking_threshold":   s.ranker.Threshold(),
			"ranking_limit":       s.ranker.Limit(),
			"session_persistence": s.config.Session.DatabasePath != "",
		},
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()
	s.respondJSON(w, http.StatusOK, stats.Compute(snap.Articles, snap.KPIs))
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	query, err := parseFilterQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	articles := filter.Apply(s.store.Current().Articles, query)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(articles),
		"articles": articles,
	})
}

// parseFilterQuery builds a filter from query parameters: search, sources
// (csv), kpis (csv), from, to (RFC3339 or YYYY-MM-DD; date-only bounds
// cover the whole day).
func parseFilterQuery(r *http.Request) (*filter.Query, error) {
	q := &filter.Query{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("sources"); v != "" {
		q.Sources = splitCSV(v)
	}
	if v := r.URL.Query().Get("kpis"); v != "" {
		q.KPIIDs = splitCSV(v)
	}
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := parseTimeParam(v, false)
		if err != nil {
			return nil, err
		}
		q.From = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := parseTimeParam(v, true)
		if err != nil {
			return nil, err
		}
		q.To = &t
	}
	return q, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTimeParam(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"kpis": s.store.Current().KPIs,
	})
}

func (s *Server) handleKPIArticles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap := s.store.Current()

	known := false
	for _, k := range snap.KPIs {
		if k.ID == id {
			known = true
			break
		}
	}
	if !known {
		s.respondError(w, http.StatusNotFound, "unknown KPI")
		return
	}

	threshold := 0.0
	if v := r.URL.Query().Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = f
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	if max := s.config.Ranking.MaxLimit; max > 0 && limit > max {
		limit = max
	}

	articles := s.ranker.ForKPIWith(snap.Articles, id, threshold, limit)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"kpiId":    id,
		"count":    len(articles),
		"articles": articles,
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"sentimentTrends": s.store.Current().Trends,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"insights": s.store.Current().Insights,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": s.alerts.List(),
	})
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.alerts.Acknowledge(r.Context(), id) {
		s.respondError(w, http.StatusNotFound, "alert not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "acknowledged"})
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.alerts.Dismiss(r.Context(), id) {
		s.respondError(w, http.StatusNotFound, "alert not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "dismissed"})
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	ids := s.bookmarks.List()
	snap := s.store.Current()

	byID := make(map[string]int, len(snap.Articles))
	for i, a := range snap.Articles {
		byID[a.ID] = i
	}
	articles := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			articles = append(articles, snap.Articles[i])
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ids":      ids,
		"articles": articles,
	})
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bookmarked := s.bookmarks.Toggle(r.Context(), id)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"bookmarked": bookmarked,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.RefreshSnapshot(r.Context())
	s.logger.Info("manual refresh", zap.String("snapshot_id", snap.ID))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": snap.ID,
		"articles":    len(snap.Articles),
		"kpis":        len(snap.KPIs),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotFound, "search index disabled")
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := s.config.Search.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	if max := s.config.Search.MaxLimit; max > 0 && limit > max {
		limit = max
	}

	results, err := s.index.Search(r.Context(), q, limit)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   q,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
