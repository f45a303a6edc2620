package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/internal/service"
)

// fieldMessages are the claim-form validation messages, keyed by struct
// field name.
var fieldMessages = map[string]string{
	"CouponCode": "Please enter a coupon code",
	"Name":       "Please enter your full name",
	"Phone":      "Please enter your phone number",
	"UPIID":      "Please enter your UPI ID",
	"City":       "Please enter your city",
	"DealerName": "Please enter the dealer name",
}

// RedeemHandler serves the public claim form endpoints.
type RedeemHandler struct {
	svc      *service.RedeemService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewRedeemHandler(svc *service.RedeemService, logger *zap.Logger) *RedeemHandler {
	return &RedeemHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Lookup handles GET /redeem?code=. It validates the code against the
// mounted snapshot and returns what the form needs to prefill itself.
func (h *RedeemHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, fieldMessages["CouponCode"])
		return
	}

	result, err := h.svc.Validate(r.Context(), code)
	if err != nil {
		h.logger.Error("coupon lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to look up coupon")
		return
	}
	if !result.IsValid {
		writeError(w, http.StatusNotFound, "Invalid coupon code.")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Redeem handles POST /redeem: the claim form submission.
func (h *RedeemHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				msg, ok := fieldMessages[fe.StructField()]
				if !ok {
					msg = "This field is required"
				}
				fields[fe.StructField()] = msg
			}
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "validation failed",
				"fields": fields,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "validation failed")
		return
	}

	reward, err := h.svc.Redeem(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, "Invalid coupon code.")
		return
	case errors.Is(err, service.ErrAlreadyUsed):
		writeError(w, http.StatusConflict, "This coupon has already been used.")
		return
	case err != nil:
		h.logger.Error("redemption failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to redeem coupon")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Coupon redeemed successfully",
		"reward":  reward,
	})
}

// Refresh handles POST /redeem/refresh: it discards the mounted snapshot
// and fetches a fresh one.
func (h *RedeemHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Mount(r.Context()); err != nil {
		h.logger.Error("snapshot refresh failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to refresh coupons")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "refreshed"})
}
