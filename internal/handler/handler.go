package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"price-resolution-api/internal/features"
	"price-resolution-api/internal/logging"
	"price-resolution-api/internal/middleware"
	"price-resolution-api/internal/models"
	"price-resolution-api/internal/pricing"
	"price-resolution-api/internal/validation"
)

// PriceService resolves the applicable price for a lookup.
type PriceService interface {
	GetApplicablePrice(ctx context.Context, correlationID string, req models.LookupRequest) (pricing.Resolution, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	service  PriceService
	pinger   Pinger
	features *features.Manager
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	// Checked by /health when set
	Pinger   Pinger
	Features *features.Manager
	Logger   *slog.Logger
}

// NewHandler creates a new handler instance.
func NewHandler(svc PriceService) *Handler {
	return NewHandlerWithOptions(svc, NewHandlerOptions{})
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc PriceService, opts NewHandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  svc,
		pinger:   opts.Pinger,
		features: opts.Features,
		logger:   logger,
		now:      time.Now,
	}
}

// GetPrice handles GET /api/prices?productId=&brandId=&priceDate=
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req, err := validation.ParseLookup(
		q.Get(validation.ParamProductID),
		q.Get(validation.ParamBrandID),
		q.Get(validation.ParamPriceDate),
	)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	correlationID := middleware.CorrelationID(r.Context())

	res, err := h.service.GetApplicablePrice(r.Context(), correlationID, req)
	if err != nil {
		if !errors.Is(err, pricing.ErrStore) {
			logging.WithCorrelationID(h.logger, correlationID).Error("unexpected price lookup failure", "error", err)
		}
		h.respondError(w, http.StatusInternalServerError, "Internal Error", "Internal Error")
		return
	}

	window, found := res.Window()
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, models.NewPriceResponse(window))
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("UNAVAILABLE"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ListFeatures handles GET /api/features
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	flags := []features.FeatureFlag{}
	if h.features != nil {
		flags = h.features.All()
	}
	h.respondJSON(w, http.StatusOK, flags)
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an ErrorResponse with the given status code.
func (h *Handler) respondError(w http.ResponseWriter, status int, message, detail string) {
	h.respondJSON(w, status, models.ErrorResponse{
		Message: message,
		Error:   detail,
		Status:  status,
		Date:    h.now().UTC().Format(models.DateTimeLayout),
	})
}
