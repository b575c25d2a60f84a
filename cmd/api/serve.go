package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpadp "library-backend/internal/adapter/http"
	mw "library-backend/internal/adapter/middleware"
	"library-backend/internal/adapter/repository/gormkv"
	categoryuc "library-backend/internal/usecase/category"
	clientuc "library-backend/internal/usecase/client"
	fineuc "library-backend/internal/usecase/fine"
	loanuc "library-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if a.db != nil {
				if err := gormkv.Migrate(a.db); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), a)
		},
	}
}

func newEcho(a *app) *echo.Echo {
	log := a.log.Named("http")
	h := httpadp.Handlers{
		System:     httpadp.NewHandler(a.metrics),
		Books:      httpadp.NewBookHandler(a.books(), log),
		Clients:    httpadp.NewClientHandler(clientuc.NewUsecase(a.repos, a.uow, a.log), log),
		Loans:      httpadp.NewLoanHandler(loanuc.NewUsecase(a.repos, a.uow, a.log, a.metrics, a.loanConfig()), log),
		Fines:      httpadp.NewFineHandler(fineuc.NewUsecase(a.repos, a.uow, a.log), log),
		Categories: httpadp.NewCategoryHandler(categoryuc.NewUsecase(a.repos, a.uow), log),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	if len(a.cfg.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: a.cfg.CORSAllowedOrigins,
			AllowHeaders: []string{
				echo.HeaderContentType,
				mw.HeaderCallerID, mw.HeaderCallerRole,
				mw.HeaderRequestID, mw.HeaderRequestAt,
			},
		}))
	}
	e.Use(mw.RequestMetrics(a.metrics))
	if a.cfg.RateLimitRPS > 0 {
		e.Use(mw.RateLimit(mw.NewIPRateLimiter(rate.Limit(a.cfg.RateLimitRPS), a.cfg.RateLimitBurst)))
	}
	e.Use(mw.Caller())

	apiMW := []echo.MiddlewareFunc{mw.RequireCaller()}
	if a.cfg.IdempEnabled {
		ttl := time.Duration(a.cfg.IdempTTLSecs) * time.Second
		apiMW = append(apiMW, mw.IdempotencyMiddleware(a.rdb, ttl, a.log.Named("idempotency")))
	}
	httpadp.Register(e, h, apiMW...)
	return e
}

func serve(ctx context.Context, a *app) error {
	e := newEcho(a)
	addr := ":" + a.cfg.AppPort

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
