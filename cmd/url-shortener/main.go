package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	"github.com/avolkov/url-shortener/internal/config"
	"github.com/avolkov/url-shortener/internal/database/postgres"
	"github.com/avolkov/url-shortener/internal/geo"
	"github.com/avolkov/url-shortener/internal/service"
	"github.com/avolkov/url-shortener/internal/shortcode"
	"github.com/avolkov/url-shortener/internal/useragent"
	mypostgres "github.com/avolkov/url-shortener/pkg/postgres"

	myhttp "github.com/avolkov/url-shortener/internal/api/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		panic(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	logger := httplog.NewLogger("url-shortener", httplog.Options{
		LogLevel: logLevel(cfg.Env),
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env != config.EnvProd,
	})

	g, ctx := errgroup.WithContext(ctx)

	db, err := postgres.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		return db.Close()
	})

	if err := mypostgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return err
	}

	urlRepo := postgres.NewURLRepository(db)
	clickRepo := postgres.NewClickEventRepository(db)
	userRepo := postgres.NewUserRepository(db)

	var geoResolver service.GeoLocationResolver
	if cfg.Geo.ProviderURL != "" {
		geoResolver = geo.NewHTTPResolver(cfg.Geo.ProviderURL, logger.Logger)
	} else {
		geoResolver = geo.NewStaticResolver()
	}

	urlSvc := service.NewURLService(
		urlRepo,
		clickRepo,
		shortcode.NewGenerator(cfg.ShortCodeLength),
		geoResolver,
		useragent.NewClassifier(),
		logger.Logger,
	)
	analyticsSvc := service.NewAnalyticsService(urlRepo, clickRepo)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenTTL)

	r := myhttp.NewRouter(logger, urlSvc, analyticsSvc, authSvc, cfg.BaseURL)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}

func logLevel(env string) slog.Level {
	if env == config.EnvProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
