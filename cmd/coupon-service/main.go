package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/api"
	"github.com/botivate/coupon-service/internal/cache"
	"github.com/botivate/coupon-service/internal/codegen"
	"github.com/botivate/coupon-service/internal/repository"
	"github.com/botivate/coupon-service/internal/service"
	"github.com/botivate/coupon-service/pkg/sheets"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := sheets.LoadConfig()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("config", zap.String("missing", "JWT_SECRET"))
	}
	baseURL := envOr("BASE_URL", "http://localhost:8080")
	addr := envOr("ADDR", ":8080")

	client := sheets.NewClient(cfg.ScriptURL, &http.Client{Timeout: 30 * time.Second})
	couponRepo := repository.NewCouponRepo(client, cfg.CouponsSheet)
	userRepo := repository.NewUserRepo(client, cfg.LoginSheet)
	claimRepo := repository.NewClaimRepo(client, cfg.ClaimsSheet)

	snapshots := cache.NewSnapshotCache()

	handler := api.NewRouter(api.Deps{
		Coupons:  service.NewCouponService(couponRepo, codegen.New(), logger),
		Redeem:   service.NewRedeemService(couponRepo, snapshots, logger),
		Payments: service.NewPaymentService(couponRepo, logger),
		Tracking: service.NewTrackingService(couponRepo, claimRepo, baseURL, logger),
		Auth:     service.NewAuthService(userRepo, secret, logger),
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting coupon-service", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
