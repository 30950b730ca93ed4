package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/SAP-F-2025/mmse-service/internal/errors"
	"github.com/SAP-F-2025/mmse-service/internal/metrics"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	patient = services.Caller{ID: "patient-1", FullName: "Ayesha Khan", Role: models.RolePatient}
	doctor  = services.Caller{ID: "doctor-1", FullName: "Dr. Malik", Role: models.RoleDoctor}
)

// fakeVerifier maps tokens straight to callers
type fakeVerifier map[string]services.Caller

func (f fakeVerifier) Verify(token string) (services.Caller, error) {
	if caller, ok := f[token]; ok {
		return caller, nil
	}
	return services.Caller{}, errors.New("invalid token")
}

type mockAssessmentService struct{ mock.Mock }

func (m *mockAssessmentService) Preview(ctx context.Context, req *models.PreviewRequest) (*services.PreviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PreviewResponse), args.Error(1)
}

func (m *mockAssessmentService) Submit(ctx context.Context, req *models.SubmitAssessmentRequest, caller services.Caller) (*services.SubmitResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitResponse), args.Error(1)
}

func (m *mockAssessmentService) List(ctx context.Context, req *models.AssessmentListRequest, caller services.Caller) (*services.AssessmentListResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AssessmentListResponse), args.Error(1)
}

func (m *mockAssessmentService) Get(ctx context.Context, id string, caller services.Caller) (*models.MMSEAssessment, error) {
	args := m.Called(ctx, id, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MMSEAssessment), args.Error(1)
}

type mockShareService struct{ mock.Mock }

func (m *mockShareService) Share(ctx context.Context, req *models.ShareAssessmentRequest, caller services.Caller) (*models.SharedAssessment, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SharedAssessment), args.Error(1)
}

func (m *mockShareService) ListForDoctor(ctx context.Context, req *models.ShareListRequest, caller services.Caller) (*services.ShareListResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ShareListResponse), args.Error(1)
}

func (m *mockShareService) Get(ctx context.Context, id string, caller services.Caller) (*services.ShareDetail, error) {
	args := m.Called(ctx, id, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ShareDetail), args.Error(1)
}

func (m *mockShareService) ListRecipients(ctx context.Context, assessmentID string, caller services.Caller) ([]*models.SharedAssessment, error) {
	args := m.Called(ctx, assessmentID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SharedAssessment), args.Error(1)
}

func (m *mockShareService) ListDoctors(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

type fakeManager struct {
	assessment *mockAssessmentService
	share      *mockShareService
	export     func(ctx context.Context, caller services.Caller, w io.Writer) error
	users      *recordingUsers
}

// recordingUsers remembers which callers were synced
type recordingUsers struct {
	synced []string
}

func (r *recordingUsers) Sync(_ context.Context, caller services.Caller) error {
	r.synced = append(r.synced, caller.ID)
	return nil
}

func (m *fakeManager) Assessment() services.AssessmentService { return m.assessment }
func (m *fakeManager) Share() services.ShareService           { return m.share }
func (m *fakeManager) Export() services.ExportService         { return m }
func (m *fakeManager) User() services.UserService             { return m.users }
func (m *fakeManager) Notification() services.NotificationEventService {
	return nil
}

// ExportAssessments reads m.export at call time so tests can swap it after
// the router is built.
func (m *fakeManager) ExportAssessments(ctx context.Context, caller services.Caller, w io.Writer) error {
	return m.export(ctx, caller, w)
}

type testServer struct {
	router  *gin.Engine
	manager *fakeManager
}

func newTestServer() *testServer {
	manager := &fakeManager{
		assessment: &mockAssessmentService{},
		share:      &mockShareService{},
		users:      &recordingUsers{},
		export: func(context.Context, services.Caller, io.Writer) error {
			return errors.New("export not stubbed")
		},
	}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	verifier := fakeVerifier{"patient-token": patient, "doctor-token": doctor}

	hm := NewHandlerManager(manager, verifier, metrics.New(false), logger)
	return &testServer{router: hm.NewRouter(), manager: manager}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/assessments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decode(t, w)["message"])

	w = s.do(http.MethodGet, "/api/v1/assessments", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, s.manager.users.synced)

	s.manager.share.On("ListDoctors", mock.Anything).Return([]*models.User{}, nil)
	w = s.do(http.MethodGet, "/api/v1/doctors", "doctor-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{doctor.ID}, s.manager.users.synced)
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = bearerToken("bearer  xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		_, err := bearerToken(header)
		assert.ErrorIs(t, err, errMissingToken, header)
	}
}

func TestSubmitAssessment(t *testing.T) {
	body := map[string]any{
		"orientation":  map[string]any{"yearAnswer": "2024"},
		"registration": map[string]any{},
		"attention":    map[string]any{},
		"recall":       map[string]any{},
		"language":     map[string]any{},
		"totalScore":   12,
	}

	t.Run("created", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("Submit", mock.Anything, mock.MatchedBy(func(r *models.SubmitAssessmentRequest) bool {
			return r.Locale == "en" && r.TotalScore != nil && *r.TotalScore == 12 && r.Orientation.Year == "2024"
		}), patient).Return(&services.SubmitResponse{
			AssessmentID:   "a-1",
			TotalScore:     1,
			Interpretation: "Cognitive impairment (suggests further formal testing)",
		}, nil)

		w := s.do(http.MethodPost, "/api/v1/assessments?locale=en", "patient-token", body)
		require.Equal(t, http.StatusCreated, w.Code)

		out := decode(t, w)
		assert.Equal(t, "MMSE assessment saved successfully", out["message"])
		assert.Equal(t, "a-1", out["assessmentId"])
		assert.Equal(t, float64(1), out["totalScore"])
		s.manager.assessment.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodPost, "/api/v1/assessments", "patient-token", `{"totalScore": "thirty"`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", decode(t, w)["message"])
		s.manager.assessment.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing sections", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("Submit", mock.Anything, mock.Anything, patient).Return(nil, apperrors.ValidationErrors{
			{Field: "recall", Message: "section is required", Rule: "section_required"},
		})

		w := s.do(http.MethodPost, "/api/v1/assessments", "patient-token", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		out := decode(t, w)
		assert.Equal(t, "Missing required assessment data", out["message"])
		details := out["details"].([]any)
		require.Len(t, details, 1)
		assert.Equal(t, "recall", details[0].(map[string]any)["field"])
	})

	t.Run("total out of range", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("Submit", mock.Anything, mock.Anything, patient).Return(nil, apperrors.ValidationErrors{
			{Field: "totalScore", Message: "must be a number between 0 and 30", Rule: "total_score_range"},
		})

		w := s.do(http.MethodPost, "/api/v1/assessments", "patient-token", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid total score", decode(t, w)["message"])
	})

	t.Run("doctor is forbidden", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("Submit", mock.Anything, mock.Anything, doctor).
			Return(nil, services.NewPermissionError(doctor.ID, "", "assessment", "submit", "only patients submit assessments"))

		w := s.do(http.MethodPost, "/api/v1/assessments", "doctor-token", body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("storage failure hides details", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("Submit", mock.Anything, mock.Anything, patient).
			Return(nil, errors.New("failed to save assessment: pq: connection refused"))

		w := s.do(http.MethodPost, "/api/v1/assessments", "patient-token", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		out := decode(t, w)
		assert.Equal(t, "Internal server error", out["message"])
		assert.NotContains(t, out, "details")
	})
}

func TestListAndGetAssessments(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("List", mock.Anything, &models.AssessmentListRequest{Page: 2, Limit: 5}, patient).
			Return(&services.AssessmentListResponse{
				Assessments: []*models.MMSEAssessment{{ID: "a-6"}},
				Pagination:  models.NewPagination(2, 5, 6),
			}, nil)

		w := s.do(http.MethodGet, "/api/v1/assessments?page=2&limit=5", "patient-token", nil)
		require.Equal(t, http.StatusOK, w.Code)

		out := decode(t, w)
		assert.Equal(t, "6 assessments found.", out["message"])
		pagination := out["pagination"].(map[string]any)
		assert.Equal(t, float64(2), pagination["currentPage"])
		assert.Equal(t, true, pagination["hasPrevPage"])
		assert.Equal(t, false, pagination["hasNextPage"])
	})

	t.Run("bad page", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodGet, "/api/v1/assessments?page=two", "patient-token", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("Get", mock.Anything, "missing", patient).Return(nil, services.ErrAssessmentNotFound)

		w := s.do(http.MethodGet, "/api/v1/assessments/missing", "patient-token", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Assessment not found", decode(t, w)["message"])
	})

	t.Run("not shared with doctor", func(t *testing.T) {
		s := newTestServer()
		s.manager.assessment.On("Get", mock.Anything, "a-1", doctor).
			Return(nil, services.NewPermissionError(doctor.ID, "a-1", "assessment", "read", "not shared"))

		w := s.do(http.MethodGet, "/api/v1/assessments/a-1", "doctor-token", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		details := decode(t, w)["details"].(map[string]any)
		assert.Equal(t, "read", details["action"])
	})
}

func TestExportAssessments(t *testing.T) {
	s := newTestServer()
	s.manager.export = func(_ context.Context, caller services.Caller, w io.Writer) error {
		assert.Equal(t, patient, caller)
		_, err := w.Write([]byte("PK-workbook"))
		return err
	}

	w := s.do(http.MethodGet, "/api/v1/assessments/export", "patient-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mmse-assessments.xlsx")
	assert.Equal(t, "PK-workbook", w.Body.String())
}

func TestShareRoutes(t *testing.T) {
	shareBody := map[string]any{"assessmentId": "7f3c2a9e-5b1d-4c8e-9a6f-2d4e8b1c3a5f", "doctorId": doctor.ID}

	t.Run("shared", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("Share", mock.Anything, &models.ShareAssessmentRequest{
			AssessmentID: "7f3c2a9e-5b1d-4c8e-9a6f-2d4e8b1c3a5f",
			DoctorID:     doctor.ID,
		}, patient).Return(&models.SharedAssessment{ID: "s-1", DoctorID: doctor.ID}, nil)

		w := s.do(http.MethodPost, "/api/v1/shares", "patient-token", shareBody)
		require.Equal(t, http.StatusCreated, w.Code)

		out := decode(t, w)
		assert.Equal(t, "Shared successfully", out["message"])
		assert.Equal(t, "s-1", out["data"].(map[string]any)["id"])
	})

	t.Run("duplicate", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("Share", mock.Anything, mock.Anything, patient).Return(nil, services.ErrShareExists)

		w := s.do(http.MethodPost, "/api/v1/shares", "patient-token", shareBody)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Already shared with this doctor.", decode(t, w)["message"])
	})

	t.Run("unknown doctor", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("Share", mock.Anything, mock.Anything, patient).Return(nil, services.ErrDoctorNotFound)

		w := s.do(http.MethodPost, "/api/v1/shares", "patient-token", shareBody)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("doctor inbox", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("ListForDoctor", mock.Anything, &models.ShareListRequest{}, doctor).
			Return(&services.ShareListResponse{
				Shared:     []services.SharedResult{{ID: "s-1", Language: "Urdu"}},
				Pagination: models.NewPagination(1, 10, 1),
			}, nil)

		w := s.do(http.MethodGet, "/api/v1/shares", "doctor-token", nil)
		require.Equal(t, http.StatusOK, w.Code)

		shared := decode(t, w)["shared"].([]any)
		require.Len(t, shared, 1)
		assert.Equal(t, "Urdu", shared[0].(map[string]any)["language"])
	})

	t.Run("share detail not found", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("Get", mock.Anything, "s-9", doctor).Return(nil, services.ErrShareNotFound)

		w := s.do(http.MethodGet, "/api/v1/shares/s-9", "doctor-token", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not found", decode(t, w)["message"])
	})

	t.Run("recipients of own submission", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("ListRecipients", mock.Anything, "7f3c2a9e-5b1d-4c8e-9a6f-2d4e8b1c3a5f", patient).
			Return([]*models.SharedAssessment{{ID: "s-1", DoctorID: doctor.ID}}, nil)

		w := s.do(http.MethodGet, "/api/v1/assessments/7f3c2a9e-5b1d-4c8e-9a6f-2d4e8b1c3a5f/shares", "patient-token", nil)
		require.Equal(t, http.StatusOK, w.Code)
		shares := decode(t, w)["shares"].([]any)
		require.Len(t, shares, 1)
		assert.Equal(t, doctor.ID, shares[0].(map[string]any)["doctorId"])
	})

	t.Run("recipients of someone else's submission", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("ListRecipients", mock.Anything, "a-2", doctor).
			Return(nil, services.NewPermissionError(doctor.ID, "a-2", "assessment", "list_shares", "not the owner"))

		w := s.do(http.MethodGet, "/api/v1/assessments/a-2/shares", "doctor-token", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("doctors", func(t *testing.T) {
		s := newTestServer()
		s.manager.share.On("ListDoctors", mock.Anything).
			Return([]*models.User{{ID: doctor.ID, FullName: "Dr. Malik", Role: models.RoleDoctor}}, nil)

		w := s.do(http.MethodGet, "/api/v1/doctors", "patient-token", nil)
		require.Equal(t, http.StatusOK, w.Code)
		doctors := decode(t, w)["doctors"].([]any)
		assert.Len(t, doctors, 1)
	})
}
