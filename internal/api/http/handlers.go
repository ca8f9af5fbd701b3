package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/avolkov/url-shortener/internal/database"
	"github.com/avolkov/url-shortener/internal/models"
	"github.com/avolkov/url-shortener/internal/service"
	"github.com/avolkov/url-shortener/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

func handleShortenURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleShortenURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := svc.Shorten(r.Context(), service.ShortenParams{
			OriginalURL: req.URL,
			UserID:      userIDFromContext(r.Context()),
			CustomAlias: req.CustomAlias,
			ExpiresAt:   req.ExpiresAt,
		})
		if err != nil {
			switch {
			case errors.Is(err, database.ErrShortCodeExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ConflictResponse)
			case errors.Is(err, service.ErrInvalidOriginalURL), errors.Is(err, service.ErrInvalidAlias):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.BadRequestResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url, baseURL)))
	}
}

func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		query := r.URL.Query()
		click := models.ClickContext{
			IPAddress:   clientIP(r),
			Referrer:    r.Referer(),
			UserAgent:   r.UserAgent(),
			UTMSource:   query.Get("utm_source"),
			UTMMedium:   query.Get("utm_medium"),
			UTMCampaign: query.Get("utm_campaign"),
		}

		originalURL, err := svc.Redirect(r.Context(), shortCode, click)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, originalURL, http.StatusFound)
	}
}

// clientIP picks the visitor address from the forwarding headers, preferring
// X-Forwarded-For, then X-Real-IP, then the socket address. Header values of
// "unknown" are treated as absent.
func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)

	if ip == "" || strings.EqualFold(ip, "unknown") {
		ip = strings.TrimSpace(r.Header.Get("X-Real-IP"))
	}
	if ip == "" || strings.EqualFold(ip, "unknown") {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}

	return ip
}

func handleGetURL(svc URLService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleGetURL"
	const successMsg = "The URL was successfully retrieved."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.Get(r.Context(), shortCode, userIDFromContext(r.Context()))
		if err != nil {
			renderURLError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url, baseURL)))
	}
}

func handleListURLs(svc URLService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleListURLs"
	const successMsg = "The URLs were successfully retrieved."

	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := svc.ListByUser(r.Context(), userIDFromContext(r.Context()))
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponses(urls, baseURL)))
	}
}

func handleUpdateURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleUpdateURL"
	const successMsg = "The URL was successfully updated."

	return func(w http.ResponseWriter, r *http.Request) {
		var req updateURLRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.Update(r.Context(), shortCode, userIDFromContext(r.Context()), models.UpdateURLParams{
			OriginalURL: req.URL,
			ExpiresAt:   req.ExpiresAt,
			Active:      req.Active,
		})
		if err != nil {
			if errors.Is(err, service.ErrInvalidOriginalURL) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.BadRequestResponse)
				return
			}

			renderURLError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url, baseURL)))
	}
}

func handleDeleteURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDeleteURL"
	const successMsg = "The URL was successfully deleted."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		err := svc.Delete(r.Context(), shortCode, userIDFromContext(r.Context()))
		if err != nil {
			renderURLError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}

func handleGetAnalytics(svc AnalyticsService) http.HandlerFunc {
	const op = "api.http.handleGetAnalytics"
	const successMsg = "The URL analytics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		summary, err := svc.Analytics(r.Context(), shortCode, userIDFromContext(r.Context()))
		if err != nil {
			renderURLError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toAnalyticsResponse(summary)))
	}
}

// renderURLError maps the shared error cases of the ownership-scoped URL
// endpoints onto HTTP statuses.
func renderURLError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, database.ErrURLNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ResourceNotFoundResponse)
	case errors.Is(err, service.ErrAccessDenied):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.ForbiddenResponse)
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}
