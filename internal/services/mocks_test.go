package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/cache"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockRepository bundles the repository mocks
type MockRepository struct {
	assessments *MockAssessmentRepository
	shares      *MockShareRepository
	users       *MockUserRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		assessments: &MockAssessmentRepository{},
		shares:      &MockShareRepository{},
		users:       &MockUserRepository{},
	}
}

func (m *MockRepository) Assessment() repositories.AssessmentRepository { return m.assessments }
func (m *MockRepository) Share() repositories.ShareRepository           { return m.shares }
func (m *MockRepository) User() repositories.UserRepository             { return m.users }

func (m *MockRepository) AssertExpectations(t mock.TestingT) {
	m.assessments.AssertExpectations(t)
	m.shares.AssertExpectations(t)
	m.users.AssertExpectations(t)
}

// MockAssessmentRepository is a mock implementation of AssessmentRepository
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) Create(ctx context.Context, assessment *models.MMSEAssessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetByID(ctx context.Context, id string) (*models.MMSEAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MMSEAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.MMSEAssessment, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.MMSEAssessment), args.Get(1).(int64), args.Error(2)
}

func (m *MockAssessmentRepository) GetByUser(ctx context.Context, userID string, filters repositories.AssessmentFilters) ([]*models.MMSEAssessment, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.MMSEAssessment), args.Get(1).(int64), args.Error(2)
}

func (m *MockAssessmentRepository) IsOwner(ctx context.Context, assessmentID, userID string) (bool, error) {
	args := m.Called(ctx, assessmentID, userID)
	return args.Bool(0), args.Error(1)
}

// MockShareRepository is a mock implementation of ShareRepository
type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) Create(ctx context.Context, share *models.SharedAssessment) error {
	args := m.Called(ctx, share)
	return args.Error(0)
}

func (m *MockShareRepository) GetByID(ctx context.Context, id string) (*models.SharedAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SharedAssessment), args.Error(1)
}

func (m *MockShareRepository) Exists(ctx context.Context, assessmentID, doctorID string) (bool, error) {
	args := m.Called(ctx, assessmentID, doctorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShareRepository) GetByDoctor(ctx context.Context, doctorID string, filters repositories.ShareFilters) ([]*models.SharedAssessment, int64, error) {
	args := m.Called(ctx, doctorID, filters)
	return args.Get(0).([]*models.SharedAssessment), args.Get(1).(int64), args.Error(2)
}

func (m *MockShareRepository) GetByAssessment(ctx context.Context, assessmentID string) ([]*models.SharedAssessment, error) {
	args := m.Called(ctx, assessmentID)
	return args.Get(0).([]*models.SharedAssessment), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByRole(ctx context.Context, role models.UserRole, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, role, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	args := m.Called(ctx, id, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, loginTime time.Time) error {
	args := m.Called(ctx, id, loginTime)
	return args.Error(0)
}

// memoryCache is a map backed CacheService for tests
type memoryCache struct {
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := c.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
