package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/avolkov/url-shortener/internal/models"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Create(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*models.URL, error) {
	args := r.Called(ctx, shortCode, originalURL, userID, expiresAt)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) ListByUserID(ctx context.Context, userID string) ([]*models.URL, error) {
	args := r.Called(ctx, userID)
	urls, _ := args.Get(0).([]*models.URL)
	return urls, args.Error(1)
}

func (r *MockURLRepository) Update(ctx context.Context, shortCode string, params models.UpdateURLParams) (*models.URL, error) {
	args := r.Called(ctx, shortCode, params)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) Deactivate(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

func (r *MockURLRepository) IncrementClickCount(ctx context.Context, shortCode string) (int64, error) {
	args := r.Called(ctx, shortCode)
	return args.Get(0).(int64), args.Error(1)
}

func (r *MockURLRepository) Delete(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

type MockClickEventRepository struct {
	mock.Mock
}

func (r *MockClickEventRepository) Create(ctx context.Context, event *models.ClickEvent) (*models.ClickEvent, error) {
	args := r.Called(ctx, event)
	created, _ := args.Get(0).(*models.ClickEvent)
	return created, args.Error(1)
}

func (r *MockClickEventRepository) ListByShortCode(ctx context.Context, shortCode string) ([]*models.ClickEvent, error) {
	args := r.Called(ctx, shortCode)
	events, _ := args.Get(0).([]*models.ClickEvent)
	return events, args.Error(1)
}

type MockShortCodeGenerator struct {
	mock.Mock
}

func (g *MockShortCodeGenerator) Generate() (string, error) {
	args := g.Called()
	return args.String(0), args.Error(1)
}

type MockGeoLocationResolver struct {
	mock.Mock
}

func (r *MockGeoLocationResolver) Resolve(ctx context.Context, ipAddress string) models.GeoLocation {
	args := r.Called(ctx, ipAddress)
	return args.Get(0).(models.GeoLocation)
}

type MockUserAgentClassifier struct {
	mock.Mock
}

func (c *MockUserAgentClassifier) Classify(userAgent string) models.DeviceInfo {
	args := c.Called(userAgent)
	return args.Get(0).(models.DeviceInfo)
}

type MockUserRepository struct {
	mock.Mock
}

func (r *MockUserRepository) Create(ctx context.Context, id, username, email, passwordHash string) (*models.User, error) {
	args := r.Called(ctx, id, username, email, passwordHash)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := r.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}
