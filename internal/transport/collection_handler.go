package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BackendHeader tells clients which store answered a read
const BackendHeader = "X-Storefront-Backend"

// CollectionService is the service API a collection handler needs
type CollectionService[T domain.Entity] interface {
	Name() string
	Backend() repository.Backend
	List(ctx context.Context) ([]T, error)
	Lookup(ctx context.Context, field, value string) (T, error)
	Filter(ctx context.Context, field, value string) ([]T, error)
	Save(ctx context.Context, raws []domain.Record) ([]T, error)
}

// CollectionHandler serves GET and POST for one collection
type CollectionHandler[T domain.Entity] struct {
	svc CollectionService[T]
	// lookups select a single record, filters select a subset
	lookups []string
	filters []string
	logger  *zap.Logger
}

// NewCollectionHandler creates a handler. Query parameters named in lookups
// return one record; those named in filters return a filtered collection.
func NewCollectionHandler[T domain.Entity](svc CollectionService[T], lookups, filters []string, logger *zap.Logger) *CollectionHandler[T] {
	return &CollectionHandler[T]{
		svc:     svc,
		lookups: lookups,
		filters: filters,
		logger:  logger.With(zap.String("collection", svc.Name())),
	}
}

// Path is the route of the collection
func (h *CollectionHandler[T]) Path() string {
	return "/api/" + h.svc.Name()
}

// RegisterRoutes mounts the collection. Writes run behind the given middleware.
func (h *CollectionHandler[T]) RegisterRoutes(r chi.Router, write ...func(http.Handler) http.Handler) {
	r.Get(h.Path(), h.Get)
	r.With(write...).Post(h.Path(), h.Post)
}

// Get returns the collection, one record or a filtered subset
func (h *CollectionHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	for _, field := range h.lookups {
		if !query.Has(field) {
			continue
		}
		value := query.Get(field)
		if value == "" {
			middleware.RespondWithError(w, http.StatusBadRequest, field+" must not be empty")
			return
		}

		item, err := h.svc.Lookup(r.Context(), field, value)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				middleware.RespondWithError(w, http.StatusBadRequest, h.svc.Name()+" record not found")
				return
			}
			h.logger.Error("Lookup failed", zap.String("field", field), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load "+h.svc.Name())
			return
		}
		h.respond(w, http.StatusOK, item)
		return
	}

	for _, field := range h.filters {
		if !query.Has(field) {
			continue
		}
		items, err := h.svc.Filter(r.Context(), field, query.Get(field))
		if err != nil {
			h.logger.Error("Filter failed", zap.String("field", field), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load "+h.svc.Name())
			return
		}
		h.respondCollection(w, items)
		return
	}

	items, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("List failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load "+h.svc.Name())
		return
	}
	h.respondCollection(w, items)
}

// Post replaces the collection with the records in the request body
func (h *CollectionHandler[T]) Post(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := middleware.DecodeJSON(r, &body); err != nil {
		h.logger.Debug("Rejected request body", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload, ok := body[h.svc.Name()]
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "request body must contain "+h.svc.Name())
		return
	}

	var raws []domain.Record
	if err := json.Unmarshal(payload, &raws); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, h.svc.Name()+" must be an array of objects")
		return
	}

	saved, err := h.svc.Save(r.Context(), raws)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBatch) {
			h.logger.Debug("Batch validation failed", zap.Error(err))
			middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
			return
		}
		h.logger.Error("Save failed", zap.Int("records", len(raws)), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save "+h.svc.Name())
		return
	}

	h.respondCollection(w, saved)
}

func (h *CollectionHandler[T]) respondCollection(w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	h.respond(w, http.StatusOK, map[string][]T{h.svc.Name(): items})
}

func (h *CollectionHandler[T]) respond(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(BackendHeader, h.svc.Backend().String())
	middleware.RespondWithJSON(w, status, payload)
}
