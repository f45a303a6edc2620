package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/service"
)

type GenerateRequest struct {
	Count  int `json:"count"`
	Reward int `json:"reward"`
}

// CouponHandler serves the admin coupon endpoints.
type CouponHandler struct {
	svc    *service.CouponService
	logger *zap.Logger
}

func NewCouponHandler(svc *service.CouponService, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{svc: svc, logger: logger}
}

// GenerateCoupons handles POST /admin/coupons/generate. Missing or zero
// fields fall back to the form defaults rather than erroring; out-of-range
// values are still rejected.
func (h *CouponHandler) GenerateCoupons(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Count == 0 {
		req.Count = service.DefaultBatchSize
	}
	if req.Reward == 0 {
		req.Reward = service.DefaultReward
	}

	result, err := h.svc.GenerateBatch(r.Context(), req.Count, req.Reward)
	switch {
	case errors.Is(err, service.ErrBatchSize), errors.Is(err, service.ErrReward):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("coupon generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "coupon generation failed")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListCoupons handles GET /coupons.
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("coupon list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load coupons")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"coupons": coupons})
}

// DeleteCoupon handles DELETE /admin/coupons/{code}.
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	err := h.svc.Delete(r.Context(), code)
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, service.ErrNotDeletable):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("coupon delete failed", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete coupon")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "coupon deleted"})
}
