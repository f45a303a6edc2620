package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/export"
	"github.com/botivate/coupon-service/internal/service"
)

// TrackingHandler serves the distribution dashboard and its exports.
type TrackingHandler struct {
	svc    *service.TrackingService
	logger *zap.Logger
}

func NewTrackingHandler(svc *service.TrackingService, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{svc: svc, logger: logger}
}

// View handles GET /tracking?q=&status=.
func (h *TrackingHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.View(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("tracking view failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load tracking data")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ExportCSV handles GET /tracking/export.csv with the same filters as the
// dashboard.
func (h *TrackingHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportCSV(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export tracking data")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="coupon-tracking.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// QRPNG handles GET /tracking/qr/{code}.png: the QR image for one coupon's
// claim link.
func (h *TrackingHandler) QRPNG(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	png, err := export.QRPNG(h.svc.FormLink(code), 256)
	if err != nil {
		h.logger.Error("qr render failed", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// QRPDF handles GET /tracking/qr.pdf: a printable sheet of QR codes for
// every unused coupon.
func (h *TrackingHandler) QRPDF(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.UnusedForQR(r.Context())
	if err != nil {
		h.logger.Error("qr sheet fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load coupons")
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusNotFound, "no unused coupons to print")
		return
	}

	qrItems := make([]export.QRItem, len(items))
	for i, item := range items {
		qrItems[i] = export.QRItem{Code: item.Code, Link: item.FormLink, Reward: item.Reward}
	}
	pdf, err := export.QRSheet(qrItems)
	if err != nil {
		h.logger.Error("qr sheet render failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render QR sheet")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="coupon-qr-codes.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
