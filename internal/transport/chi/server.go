package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/averene/folio/internal/domain"
	healthuc "github.com/averene/folio/internal/usecase/health"
	mediauc "github.com/averene/folio/internal/usecase/media"
	searchuc "github.com/averene/folio/internal/usecase/search"
)

// Server wires the HTTP API to the usecase layer.
type Server struct {
	media   *mediauc.Service
	search  *searchuc.Service
	health  *healthuc.Service
	logger  *zap.Logger
	apiKeys []string
}

// NewServer creates an HTTP API server.
func NewServer(
	media *mediauc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	return &Server{
		media:   media,
		search:  search,
		health:  health,
		apiKeys: apiKeys,
		logger:  logger,
	}
}

// Routes builds the router. Mutating media endpoints sit behind bearer auth;
// reads, search, contact, health, and metrics are public.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/semantic-search", s.handleSemanticSearch)
		r.Get("/media", s.handleListMedia)
		r.Get("/media/{id}", s.handleGetMedia)
		r.Post("/contact", s.handleContact)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(s.apiKeys))
			r.Post("/media", s.handleCreateMedia)
			r.Put("/media/{id}", s.handleUpdateMedia)
			r.Delete("/media/{id}", s.handleDeleteMedia)
		})
	})

	return r
}

// --- Search ---

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, ok := s.searchParams(w, r)
	if !ok {
		return
	}
	items := s.search.Lexical(r.Context(), params)

	resp := make([]mediaResponse, len(items))
	for i := range items {
		resp[i] = mediaToResponse(&items[i], nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	params, ok := s.searchParams(w, r)
	if !ok {
		return
	}
	scored := s.search.Semantic(r.Context(), params)

	resp := make([]mediaResponse, len(scored))
	for i := range scored {
		score := scored[i].Score
		resp[i] = mediaToResponse(&scored[i].Media, &score)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) searchParams(w http.ResponseWriter, r *http.Request) (searchuc.Params, bool) {
	q := r.URL.Query()

	mediaType := q.Get("type")
	if mediaType != "" {
		if _, err := domain.ParseMediaType(mediaType); err != nil {
			writeError(w, http.StatusBadRequest, "type must be \"image\" or \"video\"")
			return searchuc.Params{}, false
		}
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return searchuc.Params{}, false
		}
		limit = parsed
	}

	return searchuc.Params{
		Query: strings.TrimSpace(q.Get("q")),
		Type:  mediaType,
		Limit: limit,
	}, true
}

// --- Media CRUD ---

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := domain.ListFilter{
		Type:     q.Get("type"),
		Category: q.Get("category"),
	}
	if f.Type != "" {
		if _, err := domain.ParseMediaType(f.Type); err != nil {
			writeError(w, http.StatusBadRequest, "type must be \"image\" or \"video\"")
			return
		}
	}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "featured must be a boolean")
			return
		}
		f.Featured = &featured
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = limit
	}

	items, err := s.media.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := make([]mediaResponse, len(items))
	for i := range items {
		resp[i] = mediaToResponse(&items[i], nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	m, err := s.media.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mediaToResponse(&m, nil))
}

type mediaRequest struct {
	Title            *string  `json:"title"`
	Category         *string  `json:"category"`
	Type             *string  `json:"type"`
	AssetURL         *string  `json:"assetUrl"`
	ExternalVideoRef *string  `json:"externalVideoRef"`
	Featured         *bool    `json:"featured"`
	Order            *int     `json:"order"`
	Tags             []string `json:"tags"`
}

func (s *Server) handleCreateMedia(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	m, err := s.media.Create(r.Context(), mediauc.CreateParams{
		Title:            deref(req.Title),
		Category:         deref(req.Category),
		Type:             deref(req.Type),
		AssetURL:         deref(req.AssetURL),
		ExternalVideoRef: deref(req.ExternalVideoRef),
		Featured:         req.Featured != nil && *req.Featured,
		Order:            derefInt(req.Order),
		Tags:             req.Tags,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mediaToResponse(&m, nil))
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	m, err := s.media.Update(r.Context(), chi.URLParam(r, "id"), mediauc.UpdateParams{
		Title:            req.Title,
		Category:         req.Category,
		Type:             req.Type,
		AssetURL:         req.AssetURL,
		ExternalVideoRef: req.ExternalVideoRef,
		Featured:         req.Featured,
		Order:            req.Order,
		Tags:             req.Tags,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mediaToResponse(&m, nil))
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := s.media.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Contact ---

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// handleContact validates and logs a contact form submission. Delivery is
// handled by an external pipeline reading the structured log stream.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "name, email and message are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "email is invalid")
		return
	}

	s.logger.Info("contact message received",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.Int("message_len", len(req.Message)))

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// --- DTO ---

type mediaResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Category         string   `json:"category,omitempty"`
	Type             string   `json:"type"`
	AssetURL         string   `json:"assetUrl,omitempty"`
	ExternalVideoRef string   `json:"externalVideoRef,omitempty"`
	Featured         bool     `json:"featured"`
	Order            int      `json:"order"`
	Tags             []string `json:"tags"`
	Caption          string   `json:"caption,omitempty"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
	Score            *float64 `json:"_score,omitempty"`
}

func mediaToResponse(m *domain.Media, score *float64) mediaResponse {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return mediaResponse{
		ID:               m.ID,
		Title:            m.Title,
		Category:         m.Category,
		Type:             string(m.Type),
		AssetURL:         m.AssetURL,
		ExternalVideoRef: m.ExternalVideoRef,
		Featured:         m.Featured,
		Order:            m.Order,
		Tags:             tags,
		Caption:          m.Caption,
		CreatedAt:        m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        m.UpdatedAt.UTC().Format(time.RFC3339),
		Score:            score,
	}
}

// --- Helpers ---

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "media not found")
	case errors.Is(err, domain.ErrInvalidMedia):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrProviderError):
		writeError(w, http.StatusBadGateway, "embedding provider error")
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
