// Package server exposes the marketplace feed over an HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"campusmarket/feed"
	"campusmarket/storage"
)

// ListingStore is the slice of storage the server needs.
type ListingStore interface {
	CreateListing(ctx context.Context, l *storage.Listing) error
	GetListing(ctx context.Context, id string) (*storage.Listing, error)
	ListActiveByCollege(ctx context.Context, collegeID string) ([]storage.Listing, error)
	IncrementViews(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) error
	DeleteListing(ctx context.Context, id string) error
}

// Server handles HTTP requests for the marketplace API.
type Server struct {
	store       ListingStore
	pageSize    int
	maxPageSize int
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithPageSizes sets the default and maximum feed page sizes.
func WithPageSizes(def, max int) Option {
	return func(s *Server) {
		s.pageSize = def
		s.maxPageSize = max
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a server backed by the given store.
func New(store ListingStore, opts ...Option) *Server {
	s := &Server{
		store:       store,
		pageSize:    20,
		maxPageSize: 100,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/feed", s.handleFeed).Methods(http.MethodGet)
	r.HandleFunc("/api/listings", s.handleCreateListing).Methods(http.MethodPost)
	r.HandleFunc("/api/listings/{id}", s.handleGetListing).Methods(http.MethodGet)
	r.HandleFunc("/api/listings/{id}", s.handleDeleteListing).Methods(http.MethodDelete)
	r.HandleFunc("/api/listings/{id}/sold", s.handleMarkSold).Methods(http.MethodPost)
	r.HandleFunc("/api/listings/{id}/activate", s.handleActivate).Methods(http.MethodPost)
	return r
}

// feedItem is a listing enriched with its computed score and badges.
type feedItem struct {
	listingResponse
	Score float64    `json:"score"`
	Tags  []feed.Tag `json:"tags"`
}

type feedResponse struct {
	Items    []feedItem `json:"items"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Total    int        `json:"total"`
	HasMore  bool       `json:"has_more"`
}

// handleFeed renders the ranked feed for a college: candidate fetch, then
// filter, sort, tag, and page-number slicing.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	collegeID := q.Get("college")
	if collegeID == "" {
		writeError(w, http.StatusBadRequest, "college is required")
		return
	}

	filter, err := parseFilter(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := s.store.ListActiveByCollege(r.Context(), collegeID)
	if err != nil {
		slog.Error("failed to list listings", "college", collegeID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load feed")
		return
	}

	candidates := make([]feed.Listing, len(stored))
	for i, l := range stored {
		candidates[i] = toFeedListing(l)
	}

	now := s.now()
	visible := feed.Apply(candidates, filter)
	sorted := feed.Sort(visible, feed.SortMode(q.Get("sort")), now)

	// One stats pass over the visible set; per-item tagging reuses it.
	stats := feed.NewTagStats(visible)

	page, pageSize := s.parsePaging(q)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(sorted) {
		start = len(sorted)
	}
	if end > len(sorted) {
		end = len(sorted)
	}

	items := make([]feedItem, 0, end-start)
	for _, l := range sorted[start:end] {
		items = append(items, feedItem{
			listingResponse: toListingResponse(l),
			Score:           feed.Score(l, now),
			Tags:            feed.DeriveTags(l, stats, now),
		})
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    len(sorted),
		HasMore:  end < len(sorted),
	})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// A detail read counts as a view.
	if err := s.store.IncrementViews(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "listing not found")
			return
		}
		slog.Error("failed to increment views", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load listing")
		return
	}

	l, err := s.store.GetListing(r.Context(), id)
	if err != nil {
		slog.Error("failed to get listing", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load listing")
		return
	}

	writeJSON(w, http.StatusOK, toStoredResponse(l))
}

type createListingRequest struct {
	CollegeID       string   `json:"college_id"`
	SellerName      string   `json:"seller_name"`
	SellerAvatarURL string   `json:"seller_avatar_url"`
	HostelName      string   `json:"hostel_name"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Category        string   `json:"category"`
	Condition       string   `json:"condition"`
	Images          []string `json:"images"`
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CollegeID == "" || req.Title == "" || req.Category == "" || req.Condition == "" {
		writeError(w, http.StatusBadRequest, "college_id, title, category, and condition are required")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	l := &storage.Listing{
		CollegeID:       req.CollegeID,
		SellerName:      req.SellerName,
		SellerAvatarURL: req.SellerAvatarURL,
		HostelName:      req.HostelName,
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Category:        req.Category,
		Condition:       req.Condition,
		Images:          req.Images,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.CreateListing(r.Context(), l); err != nil {
		slog.Error("failed to create listing", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	slog.Info("listing created", "id", l.ID, "college", l.CollegeID, "category", l.Category)
	writeJSON(w, http.StatusCreated, toStoredResponse(l))
}

func (s *Server) handleMarkSold(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, string(feed.StatusSold))
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, string(feed.StatusActive))
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	id := mux.Vars(r)["id"]

	if err := s.store.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "listing not found")
			return
		}
		slog.Error("failed to update status", "id", id, "status", status, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update listing")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": status})
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.store.DeleteListing(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "listing not found")
			return
		}
		slog.Error("failed to delete listing", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseFilter(q url.Values) (feed.Filter, error) {
	f := feed.Filter{
		Category:  feed.Category(q.Get("category")),
		Condition: feed.Condition(q.Get("condition")),
		Search:    q.Get("q"),
	}

	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return feed.Filter{}, errors.New("min_price must be a number")
		}
		f.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return feed.Filter{}, errors.New("max_price must be a number")
		}
		f.MaxPrice = &v
	}

	return f, nil
}

func (s *Server) parsePaging(q url.Values) (page, pageSize int) {
	page = 1
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page = n
	}

	pageSize = s.pageSize
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil && n > 0 {
		pageSize = n
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	return page, pageSize
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
