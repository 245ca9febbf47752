package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/httputil"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/service"
)

// maxWebhookBody caps payment provider webhook payloads at 1 MB, matching
// the provider's own documented limit.
const maxWebhookBody = 1 << 20

// OrderHandler handles webhook deliveries and order lookups.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// HandleWebhook handles POST /api/v1/webhooks/stripe. The raw body is passed
// to signature verification untouched; any decoding before verification would
// break the HMAC.
func (h *OrderHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("failed to read request body"), h.logger)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if err := h.service.HandleWebhook(r.Context(), payload, sigHeader); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// LookupOrder handles GET /api/v1/orders/lookup?session_id=...
func (h *OrderHandler) LookupOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("session_id query parameter is required"), h.logger)
		return
	}

	snapshot, err := h.service.LookupOrder(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Customer-facing message, served directly to the success page.
			httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "Orden no encontrada"},
			})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snapshot})
}
