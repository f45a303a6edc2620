package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/service"
)

type SettleRequest struct {
	Codes []string `json:"codes"`
}

// PaymentHandler serves the payment reconciliation endpoints.
type PaymentHandler struct {
	svc    *service.PaymentService
	logger *zap.Logger
}

func NewPaymentHandler(svc *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

// Pending handles GET /payments/pending?q=.
func (h *PaymentHandler) Pending(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.ListBuckets(r.Context())
	if err != nil {
		h.logger.Error("payment list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load payments")
		return
	}
	items := service.FilterItems(buckets.Pending, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": items, "count": len(items)})
}

// History handles GET /payments/history?q=.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.ListBuckets(r.Context())
	if err != nil {
		h.logger.Error("payment list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load payments")
		return
	}
	items := service.FilterItems(buckets.History, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": items, "count": len(items)})
}

// Settle handles POST /payments/settle. A partial failure still reports how
// many rows were marked; the client must re-fetch either way.
func (h *PaymentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Codes) == 0 {
		writeError(w, http.StatusBadRequest, "no coupons selected")
		return
	}

	settled, err := h.svc.Settle(r.Context(), req.Codes)
	if err != nil {
		h.logger.Error("settlement failed", zap.Int("settled", settled), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   err.Error(),
			"settled": settled,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "payments settled",
		"settled": settled,
	})
}
