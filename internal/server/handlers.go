package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"go.uber.org/zap"
)

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))
	response, err := s.retrieval.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.respondForError(w, err, "search failed")
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

type askRequest struct {
	Message string           `json:"message"`
	TopK    int              `json:"top_k"`
	History []answer.Message `json:"history,omitempty"`
}

type askResponse struct {
	Answer  string `json:"answer"`
	ModelID string `json:"model_id"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !s.composer.Ready() {
		s.respondError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	retrieved, err := s.retrieval.Context(r.Context(), req.Message, req.TopK)
	if err != nil {
		s.respondForError(w, err, "retrieval failed")
		return
	}
	conversation := answer.BuildConversationContext(req.History, 5)
	text, err := s.composer.Ask(r.Context(), req.Message, retrieved, conversation)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, &askResponse{Answer: text, ModelID: s.config.Bedrock.ModelID})
}

func (s *Server) handleListFAQs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	filter := models.FAQFilter{
		Status:   models.Status(q.Get("status")),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	page, err := s.manager.List(r.Context(), filter, limit, offset)
	if err != nil {
		s.respondForError(w, err, "list failed")
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	var input models.FAQInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f, err := s.manager.Create(r.Context(), &input)
	if err != nil {
		s.respondForError(w, err, "create failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, f)
}

func (s *Server) handleGetFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid FAQ id")
		return
	}
	f, err := s.manager.Get(r.Context(), id)
	if err != nil {
		s.respondForError(w, err, "get failed")
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleUpdateFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid FAQ id")
		return
	}
	var update models.FAQUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f, err := s.manager.Update(r.Context(), id, &update)
	if err != nil {
		s.respondForError(w, err, "update failed")
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid FAQ id")
		return
	}
	if err := s.manager.Delete(r.Context(), id); err != nil {
		s.respondForError(w, err, "delete failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	results, err := s.manager.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		s.respondForError(w, err, "keyword search failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.manager.Tags(r.Context())
	if err != nil {
		s.respondForError(w, err, "tags failed")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.manager.Categories(r.Context())
	if err != nil {
		s.respondForError(w, err, "categories failed")
		return
	}
	if cats == nil {
		cats = []*models.CategoryCount{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.manager.Pending())
}

func (s *Server) handleClearPending(w http.ResponseWriter, r *http.Request) {
	n, err := s.manager.ClearPending()
	if err != nil {
		s.respondForError(w, err, "clear pending failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.manager.Stats(r.Context())
	if err != nil {
		s.respondForError(w, err, "stats failed")
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Info())
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	report, err := s.engine.Rebuild(r.Context(), force)
	if err != nil {
		if errors.Is(err, cache.ErrRebuildInProgress) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("rebuild failed", zap.Error(err))
		// A failed rebuild still has a structured report for the caller.
		if report != nil {
			s.respondJSON(w, http.StatusInternalServerError, report)
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := s.storage.Count(ctx)
	if err != nil {
		s.respondForError(w, err, "status failed")
		return
	}
	resp := map[string]interface{}{
		"faqs":     count,
		"cache":    s.engine.Info(),
		"pending":  s.manager.Pending().Total,
		"building": s.engine.Building(),
		"ready":    s.retrieval.Ready(),
	}
	configInfo := map[string]interface{}{
		"embedding_model":      s.config.Embedding.ModelID,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"distance_metric":      s.config.Cache.Metric,
		"database_path":        s.config.Storage.DatabasePath,
		"cache_dir":            s.config.Storage.CacheDir,
		"keyword_index_path":   s.config.Storage.KeywordIndexPath,
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.CacheDir,
		s.config.Storage.KeywordIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// respondForError maps domain errors to HTTP statuses: validation to 400,
// not-found to 404, anything else to 500.
func (s *Server) respondForError(w http.ResponseWriter, err error, logMsg string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		s.respondError(w, http.StatusBadRequest, verr.Error())
		return
	}
	var nerr *models.NotFoundError
	if errors.As(err, &nerr) {
		s.respondError(w, http.StatusNotFound, nerr.Error())
		return
	}
	s.logger.Error(logMsg, zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
