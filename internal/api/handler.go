// Package api implements the JSON HTTP endpoints: customer fetch,
// registration, and intent processing.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smarttel/smarttel-ivr-go/internal/ctxutil"
	apperrors "github.com/smarttel/smarttel-ivr-go/internal/errors"
	"github.com/smarttel/smarttel-ivr-go/internal/intent"
	"github.com/smarttel/smarttel-ivr-go/internal/logger"
	"github.com/smarttel/smarttel-ivr-go/internal/metrics"
	"github.com/smarttel/smarttel-ivr-go/internal/ratelimit"
	"github.com/smarttel/smarttel-ivr-go/internal/sentry"
	"github.com/smarttel/smarttel-ivr-go/internal/storage"
)

// Handler serves the customer-facing JSON endpoints
type Handler struct {
	repo          *storage.Repository
	dispatcher    *intent.Dispatcher
	intentLimiter *ratelimit.KeyedWindow
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

// NewHandler creates the API handler
func NewHandler(
	repo *storage.Repository,
	dispatcher *intent.Dispatcher,
	intentLimiter *ratelimit.KeyedWindow,
	m *metrics.Metrics,
	log *logger.Logger,
) *Handler {
	return &Handler{
		repo:          repo,
		dispatcher:    dispatcher,
		intentLimiter: intentLimiter,
		metrics:       m,
		logger:        log.WithModule("api"),
	}
}

// Pointer fields distinguish an absent key from an empty value: absent
// is "Missing ...", present-but-blank is "Invalid ...".
type fetchRequest struct {
	ID *string `json:"id"`
}

type registerRequest struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type intentRequest struct {
	ID      *string `json:"id"`
	Text    *string `json:"text"`
	Upgrade bool    `json:"upgrade"`
	Amount  any     `json:"amount"`
}

// bindCustomerID attaches the validated customer ID to the request
// context so every log record downstream carries it.
func bindCustomerID(c *gin.Context, id string) {
	ctx := ctxutil.WithCustomerID(c.Request.Context(), id)
	c.Request = c.Request.WithContext(ctx)
}

func respondOK(c *gin.Context, body gin.H) {
	body["status"] = "ok"
	c.JSON(http.StatusOK, body)
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// respondFailure is the single place errors become HTTP responses.
// Typed errors map to their status and caller-facing message; anything
// else is reported and answered as a 500.
func (h *Handler) respondFailure(c *gin.Context, err error) {
	if ve, ok := apperrors.AsValidationError(err); ok {
		respondError(c, http.StatusBadRequest, ve.Message)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrAlreadyExists):
		respondError(c, http.StatusBadRequest, "Customer ID already exists")
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "Customer not found")
	case errors.Is(err, apperrors.ErrRateLimitExceeded):
		respondError(c, http.StatusTooManyRequests, "Too many requests")
	default:
		h.logger.WithError(err).ErrorContext(c.Request.Context(), "request failed")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// FetchCustomer handles POST /fetch_customer. A missing customer answers
// 200 with status "not_found" rather than an error.
func (h *Handler) FetchCustomer(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil {
		h.respondFailure(c, apperrors.NewValidationError("id", "Missing customer ID"))
		return
	}

	id := strings.TrimSpace(*req.ID)
	if id == "" {
		h.respondFailure(c, apperrors.NewValidationError("id", "Invalid customer ID"))
		return
	}
	bindCustomerID(c, id)

	customer, err := h.repo.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	if customer == nil {
		h.logger.WithField("customer_id", id).InfoContext(c.Request.Context(), "customer not found")
		c.JSON(http.StatusOK, gin.H{"status": "not_found"})
		return
	}

	respondOK(c, gin.H{"customer": customer})
}

// Register handles POST /register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil || req.Name == nil {
		h.respondFailure(c, apperrors.NewValidationError("id/name", "Missing ID or name"))
		return
	}

	id := strings.TrimSpace(*req.ID)
	name := strings.TrimSpace(*req.Name)
	if id == "" || name == "" {
		h.respondFailure(c, apperrors.NewValidationError("id/name", "Invalid ID or name"))
		return
	}
	bindCustomerID(c, id)

	customer, err := h.repo.CreateCustomer(c.Request.Context(), id, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			h.logger.WithField("customer_id", id).WarnContext(c.Request.Context(), "duplicate registration attempt")
		}
		h.respondFailure(c, err)
		return
	}

	h.metrics.RecordCustomerRegistered()

	respondOK(c, gin.H{
		"message":  fmt.Sprintf("Customer %s registered successfully", name),
		"customer": customer,
	})
}

// ProcessIntent handles POST /intent. Requests are rate limited per
// client IP before touching storage, so rotating customer IDs does not
// buy a fresh budget.
func (h *Handler) ProcessIntent(c *gin.Context) {
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil || req.Text == nil {
		h.respondFailure(c, apperrors.NewValidationError("id/text", "Missing ID or text"))
		return
	}

	id := strings.TrimSpace(*req.ID)
	text := strings.ToLower(strings.TrimSpace(*req.Text))
	if id == "" || text == "" {
		h.respondFailure(c, apperrors.NewValidationError("id/text", "Invalid ID or text"))
		return
	}
	bindCustomerID(c, id)

	if !h.intentLimiter.Allow(c.ClientIP()) {
		h.respondFailure(c, apperrors.ErrRateLimitExceeded)
		return
	}

	customer, err := h.repo.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	if customer == nil {
		h.logger.WithField("customer_id", id).WarnContext(c.Request.Context(), "customer not found for intent")
		h.respondFailure(c, apperrors.ErrNotFound)
		return
	}

	msg, err := h.dispatcher.Dispatch(c.Request.Context(), &intent.Request{
		Customer: customer,
		Text:     text,
		Upgrade:  req.Upgrade,
		Amount:   req.Amount,
	})
	if err != nil {
		h.respondFailure(c, err)
		return
	}

	respondOK(c, gin.H{"message": msg})
}
