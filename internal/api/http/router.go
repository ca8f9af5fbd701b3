package http

import (
	"context"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/avolkov/url-shortener/internal/models"
	"github.com/avolkov/url-shortener/internal/service"
)

type URLService interface {
	Shorten(ctx context.Context, params service.ShortenParams) (*models.URL, error)
	Redirect(ctx context.Context, shortCode string, click models.ClickContext) (string, error)
	Get(ctx context.Context, shortCode, userID string) (*models.URL, error)
	ListByUser(ctx context.Context, userID string) ([]*models.URL, error)
	Update(ctx context.Context, shortCode, userID string, params models.UpdateURLParams) (*models.URL, error)
	Delete(ctx context.Context, shortCode, userID string) error
}

type AnalyticsService interface {
	Analytics(ctx context.Context, shortCode, userID string) (*models.AnalyticsSummary, error)
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	VerifyToken(tokenString string) (string, error)
}

func NewRouter(logger *httplog.Logger, urlSvc URLService, analyticsSvc AnalyticsService, authSvc AuthService, baseURL string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/r/{shortCode}", handleRedirect(urlSvc))

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc, validate))
			r.Post("/login", handleLogin(authSvc, validate))
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate(authSvc))

			r.Route("/urls", func(r chi.Router) {
				r.Post("/", handleShortenURL(urlSvc, validate, baseURL))
				r.Get("/", handleListURLs(urlSvc, baseURL))

				r.Route("/{shortCode}", func(r chi.Router) {
					r.Get("/", handleGetURL(urlSvc, baseURL))
					r.Put("/", handleUpdateURL(urlSvc, validate, baseURL))
					r.Delete("/", handleDeleteURL(urlSvc))
				})
			})

			r.Get("/analytics/{shortCode}", handleGetAnalytics(analyticsSvc))
		})
	})

	return r
}

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// custom alias format: alphanumeric plus hyphen and underscore
	if err := validate.RegisterValidation("short_code", func(fl validator.FieldLevel) bool {
		return shortCodePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return validate
}
