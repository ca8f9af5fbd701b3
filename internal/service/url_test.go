package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/avolkov/url-shortener/internal/database"
	"github.com/avolkov/url-shortener/internal/models"
)

var noExpiry *time.Time

type URLServiceTestSuite struct {
	suite.Suite
	errUnknown     error
	urlRepoMock    *MockURLRepository
	clickRepoMock  *MockClickEventRepository
	generatorMock  *MockShortCodeGenerator
	geoMock        *MockGeoLocationResolver
	classifierMock *MockUserAgentClassifier
	svc            *URLService
}

func (suite *URLServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLServiceTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(MockURLRepository)
	suite.clickRepoMock = new(MockClickEventRepository)
	suite.generatorMock = new(MockShortCodeGenerator)
	suite.geoMock = new(MockGeoLocationResolver)
	suite.classifierMock = new(MockUserAgentClassifier)
	suite.svc = NewURLService(
		suite.urlRepoMock,
		suite.clickRepoMock,
		suite.generatorMock,
		suite.geoMock,
		suite.classifierMock,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func (suite *URLServiceTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
	suite.clickRepoMock.AssertExpectations(suite.T())
	suite.generatorMock.AssertExpectations(suite.T())
	suite.geoMock.AssertExpectations(suite.T())
	suite.classifierMock.AssertExpectations(suite.T())
}

func (suite *URLServiceTestSuite) TestShorten() {
	suite.Run("invalid original url", func() {
		url, err := suite.svc.Shorten(context.Background(), ShortenParams{
			OriginalURL: "ftp://example.com",
			UserID:      "user1",
		})

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidOriginalURL)
		suite.Nil(url)
	})

	suite.Run("invalid custom alias", func() {
		url, err := suite.svc.Shorten(context.Background(), ShortenParams{
			OriginalURL: "https://example.com",
			UserID:      "user1",
			CustomAlias: "a!",
		})

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidAlias)
		suite.Nil(url)
	})

	suite.Run("custom alias conflict", func() {
		suite.urlRepoMock.
			On("Create", context.Background(), "my-alias", "https://example.com", "user1", noExpiry).
			Once().
			Return(nil, database.ErrShortCodeExists)

		url, err := suite.svc.Shorten(context.Background(), ShortenParams{
			OriginalURL: "https://example.com",
			UserID:      "user1",
			CustomAlias: "my-alias",
		})

		suite.Error(err)
		suite.ErrorIs(err, database.ErrShortCodeExists)
		suite.Nil(url)
	})

	suite.Run("custom alias success", func() {
		suite.urlRepoMock.
			On("Create", context.Background(), "my-alias", "https://example.com", "user1", noExpiry).
			Once().
			Return(&models.URL{
				ShortCode:   "my-alias",
				OriginalURL: "https://example.com",
				UserID:      "user1",
				Active:      true,
			}, nil)

		url, err := suite.svc.Shorten(context.Background(), ShortenParams{
			OriginalURL: "https://example.com",
			UserID:      "user1",
			CustomAlias: "my-alias",
		})

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("my-alias", url.ShortCode)
		suite.True(url.Active)
		suite.Zero(url.TotalClicks)
	})

	suite.Run("maximum retries error", func() {
		suite.generatorMock.
			On("Generate").
			Times(5).
			Return("abc1234", nil)
		suite.urlRepoMock.
			On("Create", context.Background(), "abc1234", "https://example.com", "user1", noExpiry).
			Times(5).
			Return(nil, database.ErrShortCodeExists)

		url, err := suite.svc.Shorten(context.Background(), ShortenParams{
			OriginalURL: "https://example.com",
			UserID:      "user1",
		})

		suite.Error(err)
		suite.ErrorIs(err, ErrMaxRetriesExceeded)
		suite.Nil(url)
	})

	suite.Run("retries after collision", func() {
		suite.generatorMock.
			On("Generate").
			Once().
			Return("taken12", nil).
			On("Generate").
			Once().
			Return("free123", nil)
		suite.urlRepoMock.
			On("Create", context.Background(), "taken12", "https://example.com", "user1", noExpiry).
			Once().
			Return(nil, database.ErrShortCodeExists).
			On("Create", context.Background(), "free123", "https://example.com", "user1", noExpiry).
			Once().
			Return(&models.URL{
				ShortCode:   "free123",
				OriginalURL: "https://example.com",
				UserID:      "user1",
				Active:      true,
			}, nil)

		url, err := suite.svc.Shorten(context.Background(), ShortenParams{
			OriginalURL: "https://example.com",
			UserID:      "user1",
		})

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("free123", url.ShortCode)
	})

	suite.Run("unknown error", func() {
		suite.generatorMock.
			On("Generate").
			Once().
			Return("abc1234", nil)
		suite.urlRepoMock.
			On("Create", context.Background(), "abc1234", "https://example.com", "user1", noExpiry).
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.svc.Shorten(context.Background(), ShortenParams{
			OriginalURL: "https://example.com",
			UserID:      "user1",
		})

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})
}

func (suite *URLServiceTestSuite) TestRedirect() {
	click := models.ClickContext{
		IPAddress:   "203.0.113.7",
		Referrer:    "https://www.facebook.com/some/post",
		UserAgent:   "test-agent",
		UTMSource:   "newsletter",
		UTMMedium:   "email",
		UTMCampaign: "launch",
	}

	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "missing").
			Once().
			Return(nil, database.ErrURLNotFound)

		originalURL, err := suite.svc.Redirect(context.Background(), "missing", click)

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Empty(originalURL)
	})

	suite.Run("inactive url", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", Active: false}, nil)

		originalURL, err := suite.svc.Redirect(context.Background(), "abc1234", click)

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Empty(originalURL)
	})

	suite.Run("expired url is deactivated lazily", func() {
		expiresAt := time.Now().Add(-time.Hour)

		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{
				ShortCode: "abc1234",
				Active:    true,
				ExpiresAt: &expiresAt,
			}, nil).
			On("Deactivate", context.Background(), "abc1234").
			Once().
			Return(nil)

		originalURL, err := suite.svc.Redirect(context.Background(), "abc1234", click)

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Empty(originalURL)
		suite.urlRepoMock.AssertCalled(suite.T(), "Deactivate", context.Background(), "abc1234")
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{
				ShortCode:   "abc1234",
				OriginalURL: "https://example.com",
				UserID:      "user1",
				Active:      true,
			}, nil).
			On("IncrementClickCount", context.Background(), "abc1234").
			Once().
			Return(int64(1), nil)
		suite.geoMock.
			On("Resolve", context.Background(), "203.0.113.7").
			Once().
			Return(models.GeoLocation{Country: "US", Region: "California", City: "Los Angeles"})
		suite.classifierMock.
			On("Classify", "test-agent").
			Once().
			Return(models.DeviceInfo{DeviceType: "Desktop", Browser: "Chrome", OperatingSystem: "Linux"})
		suite.clickRepoMock.
			On("Create", context.Background(), mock.MatchedBy(func(event *models.ClickEvent) bool {
				return event.ShortCode == "abc1234" &&
					event.IPAddress == "203.0.113.7" &&
					event.Country == "US" &&
					event.Referrer == "social" &&
					event.DeviceType == "Desktop" &&
					event.UTMSource == "newsletter"
			})).
			Once().
			Return(&models.ClickEvent{ShortCode: "abc1234"}, nil)

		originalURL, err := suite.svc.Redirect(context.Background(), "abc1234", click)

		suite.NoError(err)
		suite.Equal("https://example.com", originalURL)
		suite.clickRepoMock.AssertNumberOfCalls(suite.T(), "Create", 1)
		suite.urlRepoMock.AssertNumberOfCalls(suite.T(), "IncrementClickCount", 1)
	})

	suite.Run("click event append failure does not block the redirect", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{
				ShortCode:   "abc1234",
				OriginalURL: "https://example.com",
				Active:      true,
			}, nil).
			On("IncrementClickCount", context.Background(), "abc1234").
			Once().
			Return(int64(1), nil)
		suite.geoMock.
			On("Resolve", context.Background(), "203.0.113.7").
			Once().
			Return(models.GeoLocation{Country: "Unknown", Region: "Unknown", City: "Unknown"})
		suite.classifierMock.
			On("Classify", "test-agent").
			Once().
			Return(models.DeviceInfo{})
		suite.clickRepoMock.
			On("Create", context.Background(), mock.Anything).
			Once().
			Return(nil, suite.errUnknown)

		originalURL, err := suite.svc.Redirect(context.Background(), "abc1234", click)

		suite.NoError(err)
		suite.Equal("https://example.com", originalURL)
	})

	suite.Run("increment error", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{
				ShortCode:   "abc1234",
				OriginalURL: "https://example.com",
				Active:      true,
			}, nil).
			On("IncrementClickCount", context.Background(), "abc1234").
			Once().
			Return(int64(0), suite.errUnknown)
		suite.geoMock.
			On("Resolve", context.Background(), "203.0.113.7").
			Once().
			Return(models.GeoLocation{})
		suite.classifierMock.
			On("Classify", "test-agent").
			Once().
			Return(models.DeviceInfo{})
		suite.clickRepoMock.
			On("Create", context.Background(), mock.Anything).
			Once().
			Return(&models.ClickEvent{}, nil)

		originalURL, err := suite.svc.Redirect(context.Background(), "abc1234", click)

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Empty(originalURL)
	})
}

func (suite *URLServiceTestSuite) TestGet() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "missing").
			Once().
			Return(nil, database.ErrURLNotFound)

		url, err := suite.svc.Get(context.Background(), "missing", "user1")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("access denied", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", UserID: "user1"}, nil)

		url, err := suite.svc.Get(context.Background(), "abc1234", "user2")

		suite.Error(err)
		suite.ErrorIs(err, ErrAccessDenied)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", UserID: "user1"}, nil)

		url, err := suite.svc.Get(context.Background(), "abc1234", "user1")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("abc1234", url.ShortCode)
	})
}

func (suite *URLServiceTestSuite) TestListByUser() {
	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("ListByUserID", context.Background(), "user1").
			Once().
			Return(nil, suite.errUnknown)

		urls, err := suite.svc.ListByUser(context.Background(), "user1")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(urls)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("ListByUserID", context.Background(), "user1").
			Once().
			Return([]*models.URL{
				{ShortCode: "abc1234", UserID: "user1"},
				{ShortCode: "def5678", UserID: "user1"},
			}, nil)

		urls, err := suite.svc.ListByUser(context.Background(), "user1")

		suite.NoError(err)
		suite.Len(urls, 2)
	})
}

func (suite *URLServiceTestSuite) TestUpdate() {
	newURL := "https://new-example.com"

	suite.Run("access denied", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", UserID: "user1"}, nil)

		url, err := suite.svc.Update(context.Background(), "abc1234", "user2", models.UpdateURLParams{
			OriginalURL: &newURL,
		})

		suite.Error(err)
		suite.ErrorIs(err, ErrAccessDenied)
		suite.Nil(url)
	})

	suite.Run("invalid original url", func() {
		badURL := "not-a-url"

		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", UserID: "user1"}, nil)

		url, err := suite.svc.Update(context.Background(), "abc1234", "user1", models.UpdateURLParams{
			OriginalURL: &badURL,
		})

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidOriginalURL)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		params := models.UpdateURLParams{OriginalURL: &newURL}

		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", UserID: "user1"}, nil).
			On("Update", context.Background(), "abc1234", params).
			Once().
			Return(&models.URL{
				ShortCode:   "abc1234",
				OriginalURL: newURL,
				UserID:      "user1",
			}, nil)

		url, err := suite.svc.Update(context.Background(), "abc1234", "user1", params)

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal(newURL, url.OriginalURL)
	})
}

func (suite *URLServiceTestSuite) TestDelete() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "missing").
			Once().
			Return(nil, database.ErrURLNotFound)

		err := suite.svc.Delete(context.Background(), "missing", "user1")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
	})

	suite.Run("access denied", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", UserID: "user1"}, nil)

		err := suite.svc.Delete(context.Background(), "abc1234", "user2")

		suite.Error(err)
		suite.ErrorIs(err, ErrAccessDenied)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("GetByShortCode", context.Background(), "abc1234").
			Once().
			Return(&models.URL{ShortCode: "abc1234", UserID: "user1"}, nil).
			On("Delete", context.Background(), "abc1234").
			Once().
			Return(nil)

		err := suite.svc.Delete(context.Background(), "abc1234", "user1")

		suite.NoError(err)
	})
}

func TestURLService(t *testing.T) {
	suite.Run(t, new(URLServiceTestSuite))
}

func TestClassifyReferrer(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		want     string
	}{
		{name: "empty is direct", referrer: "", want: "direct"},
		{name: "facebook is social", referrer: "https://www.facebook.com/some/post", want: "social"},
		{name: "instagram is social", referrer: "https://instagram.com/p/abc", want: "social"},
		{name: "google is search", referrer: "https://www.google.com/search?q=test", want: "search"},
		{name: "bing is search", referrer: "https://www.bing.com/search?q=test", want: "search"},
		{name: "other passes through", referrer: "https://example.org", want: "https://example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyReferrer(tt.referrer)

			if got != tt.want {
				t.Errorf("classifyReferrer(%q) = %q, want %q", tt.referrer, got, tt.want)
			}
		})
	}
}
