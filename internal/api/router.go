package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/api/handlers"
	"github.com/botivate/coupon-service/internal/api/middleware"
	"github.com/botivate/coupon-service/internal/service"
)

// Deps is everything the router wires handlers from.
type Deps struct {
	Coupons  *service.CouponService
	Redeem   *service.RedeemService
	Payments *service.PaymentService
	Tracking *service.TrackingService
	Auth     *service.AuthService
	Logger   *zap.Logger
}

// NewRouter builds the HTTP router for the coupon service.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(d.Logger))

	couponHandler := handlers.NewCouponHandler(d.Coupons, d.Logger)
	redeemHandler := handlers.NewRedeemHandler(d.Redeem, d.Logger)
	paymentHandler := handlers.NewPaymentHandler(d.Payments, d.Logger)
	trackingHandler := handlers.NewTrackingHandler(d.Tracking, d.Logger)
	userHandler := handlers.NewUserHandler(d.Auth, d.Logger)

	// Public endpoints: the claim form and login.
	r.Post("/auth/login", userHandler.Login)
	r.Route("/redeem", func(r chi.Router) {
		r.Get("/", redeemHandler.Lookup)
		r.Post("/", redeemHandler.Redeem)
		r.Post("/refresh", redeemHandler.Refresh)
	})

	// Everything else needs a session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Auth))

		r.Get("/coupons", couponHandler.ListCoupons)

		r.Route("/payments", func(r chi.Router) {
			r.Get("/pending", paymentHandler.Pending)
			r.Get("/history", paymentHandler.History)
			r.Post("/settle", paymentHandler.Settle)
		})

		r.Route("/tracking", func(r chi.Router) {
			r.Get("/", trackingHandler.View)
			r.Get("/export.csv", trackingHandler.ExportCSV)
			r.Get("/qr.pdf", trackingHandler.QRPDF)
			r.Get("/qr/{code}.png", trackingHandler.QRPNG)
		})

		// Admin-only endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Route("/admin/coupons", func(r chi.Router) {
				r.Post("/generate", couponHandler.GenerateCoupons)
				r.Delete("/{code}", couponHandler.DeleteCoupon)
			})
			r.Get("/users", userHandler.ListUsers)
			r.Post("/users", userHandler.AddUser)
		})
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
