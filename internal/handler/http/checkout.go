package http

import (
	"log/slog"
	"net/http"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/httputil"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/validator"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/service"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ItemRequest is one cart line in a checkout or abandoned-checkout request.
// Prices are in euros; quantity bounds are enforced server-side.
type ItemRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price" validate:"gte=0"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
}

// CreateSessionRequest is the JSON request body for creating a checkout session.
type CreateSessionRequest struct {
	Items           []ItemRequest           `json:"items" validate:"required,min=1,dive"`
	CustomerEmail   string                  `json:"customer_email" validate:"required,email"`
	SuccessURL      string                  `json:"success_url" validate:"required,url"`
	CancelURL       string                  `json:"cancel_url" validate:"required,url"`
	Metadata        map[string]string       `json:"metadata"`
	Customer        *domain.Customer        `json:"customer"`
	ShippingAddress *domain.ShippingAddress `json:"shipping_address"`
	ShippingService *domain.ShippingService `json:"shipping_service"`
}

// CaptureAbandonedRequest is the JSON request body for recording an abandoned
// checkout.
type CaptureAbandonedRequest struct {
	SessionID string        `json:"session_id" validate:"required,max=255"`
	Email     string        `json:"email" validate:"omitempty,email"`
	FirstName string        `json:"first_name" validate:"max=255"`
	LastName  string        `json:"last_name" validate:"max=255"`
	Phone     string        `json:"phone" validate:"max=64"`
	Items     []ItemRequest `json:"items" validate:"dive"`
	Source    string        `json:"source" validate:"required"`
}

func toItemInputs(items []ItemRequest) []service.ItemInput {
	out := make([]service.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, service.ItemInput{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			ImageURL: it.ImageURL,
		})
	}
	return out
}

// CreateSession handles POST /api/v1/checkout/sessions
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateSessionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateSessionInput{
		Items:         toItemInputs(req.Items),
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata:      req.Metadata,
	}
	if req.Customer != nil {
		input.Customer = *req.Customer
	}
	if req.ShippingAddress != nil {
		input.ShippingAddress = *req.ShippingAddress
	}
	if req.ShippingService != nil {
		input.ShippingService = *req.ShippingService
	}

	out, err := h.service.CreateSession(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: out})
}

// CaptureAbandoned handles POST /api/v1/checkout/abandoned
func (h *CheckoutHandler) CaptureAbandoned(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CaptureAbandonedRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	out, err := h.service.CaptureAbandoned(r.Context(), &service.CaptureAbandonedInput{
		SessionID: req.SessionID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Items:     toItemInputs(req.Items),
		Source:    req.Source,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: out})
}
