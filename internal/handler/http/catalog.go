package http

import (
	"crypto/hmac"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/httputil"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/catalog"
)

// CatalogHandler proxies admin catalog sync operations to the supplier API.
type CatalogHandler struct {
	client *catalog.Client
	logger *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(client *catalog.Client, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		client: client,
		logger: logger,
	}
}

// RequireSyncSecret gates admin sync endpoints behind a shared secret carried
// in the X-Sync-Secret header.
func RequireSyncSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Sync-Secret")
			if secret == "" || !hmac.Equal([]byte(got), []byte(secret)) {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid sync secret"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Products handles GET /api/v1/admin/catalog/products
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.Products(r.Context(), r.URL.Query())
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: raw})
}

// Stock handles GET /api/v1/admin/catalog/stock
func (h *CatalogHandler) Stock(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.Stock(r.Context(), r.URL.Query())
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: raw})
}

// CreateOrder handles POST /api/v1/admin/catalog/orders. The body is relayed
// to the supplier as-is; validation is the supplier's job and its error
// messages carry the detail (unavailable SKUs included).
func (h *CatalogHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	raw, err := h.client.CreateOrder(r.Context(), payload)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: raw})
}

func (h *CatalogHandler) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrTimeout) {
		httputil.WriteJSON(w, http.StatusGatewayTimeout, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UPSTREAM_TIMEOUT", Message: "supplier API timed out"},
		})
		return
	}

	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) {
		h.logger.WarnContext(r.Context(), "supplier API error",
			slog.Int("status", apiErr.Status),
			slog.String("url", apiErr.URL),
		)
		httputil.WriteJSON(w, http.StatusBadGateway, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UPSTREAM_ERROR", Message: apiErr.Error()},
		})
		return
	}

	httputil.WriteError(w, r, err, h.logger)
}
