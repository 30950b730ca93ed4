package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/events"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
	"github.com/SAP-F-2025/mmse-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// friday, 15 March 2024
var submitTime = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

var (
	patient = Caller{ID: "patient-1", FullName: "Ayesha Khan", Email: "ayesha@example.com", Role: models.RolePatient}
	doctor  = Caller{ID: "doctor-1", FullName: "Dr. Malik", Role: models.RoleDoctor}
)

type fixture struct {
	repo      *MockRepository
	publisher *events.MockEventPublisher
	cache     *memoryCache
	deps      Dependencies
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newMockRepository(),
		publisher: events.NewMockEventPublisher(testLogger()),
		cache:     newMemoryCache(),
	}
	f.deps = Dependencies{
		Repo:      f.repo,
		Cache:     f.cache,
		Publisher: f.publisher,
		Clock:     fixedClock(submitTime),
		Logger:    testLogger(),
	}
	return f
}

func (f *fixture) eventTypes() []events.EventType {
	var types []events.EventType
	for _, e := range f.publisher.GetPublishedEvents() {
		types = append(types, e.Type)
	}
	return types
}

func float(v float64) *float64 { return &v }

func perfectAnswers() scoring.AnswerPayload {
	return scoring.AnswerPayload{
		Orientation: &scoring.OrientationAnswers{
			Year:     "2024",
			Season:   "Spring",
			Date:     "15/03/2024",
			Day:      "Friday",
			Month:    "March",
			State:    "Punjab",
			Country:  "Pakistan",
			Building: "City Hospital",
			Floor:    "2nd floor",
			City:     "Lahore",
		},
		Registration: &scoring.RegistrationAnswers{WordsTyped: "apple, table, pen"},
		Attention: &scoring.AttentionAnswers{
			UseSubtraction: true,
			Answers:        []string{"93", "86", "79", "72", "65"},
		},
		Recall: &scoring.RecallAnswers{Word1: "apple", Word2: "table", Word3: "pen"},
		Language: &scoring.LanguageAnswers{
			Object1:    scoring.NamedObject{Name: "bread", Answer: "roti"},
			Object2:    scoring.NamedObject{Name: "key", Answer: "spoon"},
			Repetition: "No ifs, ands, or buts",
			Command:    "yes",
			Reading:    "I closed my eyes",
			Writing:    "The sun is shining today",
			Copying:    "done",
		},
	}
}

func blankAnswers() scoring.AnswerPayload {
	return scoring.AnswerPayload{
		Orientation:  &scoring.OrientationAnswers{},
		Registration: &scoring.RegistrationAnswers{},
		Attention:    &scoring.AttentionAnswers{},
		Recall:       &scoring.RecallAnswers{},
		Language:     &scoring.LanguageAnswers{},
	}
}

func submission(answers scoring.AnswerPayload, clientTotal float64) *models.SubmitAssessmentRequest {
	return &models.SubmitAssessmentRequest{
		AnswerPayload: answers,
		Locale:        "en",
		TotalScore:    float(clientTotal),
	}
}

func expectSave(repo *MockRepository, id string, check func(a *models.MMSEAssessment) bool) {
	repo.users.On("Upsert", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == patient.ID && u.Role == models.RolePatient && u.FullName == patient.FullName
	})).Return(nil).Once()
	repo.assessments.On("Create", mock.Anything, mock.MatchedBy(check)).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.MMSEAssessment).ID = id
		}).
		Return(nil).Once()
}

// onlyAnswersStored reports whether the saved answer sheet holds the five
// sections and none of the client's own scoring.
func onlyAnswersStored(a *models.MMSEAssessment) bool {
	var sheet map[string]json.RawMessage
	if err := json.Unmarshal(a.Answers, &sheet); err != nil {
		return false
	}
	for key := range sheet {
		switch key {
		case "orientation", "registration", "attention", "recall", "language":
		default:
			return false
		}
	}
	return true
}

// recordingDrawings stores drawings under fake object refs and remembers
// what was deleted.
type recordingDrawings struct {
	deleted []string
}

func (d *recordingDrawings) Save(_ context.Context, userID, _ string) (string, error) {
	return storage.RefPrefix + "drawings/" + userID + "/d.png", nil
}

func (d *recordingDrawings) Delete(_ context.Context, ref string) error {
	d.deleted = append(d.deleted, ref)
	return nil
}

func TestAssessmentService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the server score", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)

		expectSave(f.repo, "a-1", func(a *models.MMSEAssessment) bool {
			return a.UserID == patient.ID &&
				a.Locale == "en" &&
				a.TotalScore == 30 &&
				a.Interpretation == "Normal" &&
				onlyAnswersStored(a) &&
				a.ReferenceTime.Equal(submitTime) &&
				a.AssessmentDate.Equal(submitTime) &&
				len(a.Answers) > 0
		})

		resp, err := svc.Submit(ctx, submission(perfectAnswers(), 30), patient)
		require.NoError(t, err)

		assert.Equal(t, "a-1", resp.AssessmentID)
		assert.Equal(t, 30, resp.TotalScore)
		assert.Equal(t, "Normal", resp.Interpretation)
		assert.Equal(t, []events.EventType{events.EventAssessmentSubmitted}, f.eventTypes())
		f.repo.AssertExpectations(t)
	})

	t.Run("inflated client total is overridden", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)

		expectSave(f.repo, "a-2", func(a *models.MMSEAssessment) bool {
			return a.TotalScore == 0 &&
				a.Interpretation == "Cognitive impairment (suggests further formal testing)" &&
				onlyAnswersStored(a)
		})

		resp, err := svc.Submit(ctx, submission(blankAnswers(), 30), patient)
		require.NoError(t, err)

		assert.Equal(t, 0, resp.TotalScore)
		assert.Equal(t, "Cognitive impairment (suggests further formal testing)", resp.Interpretation)
		assert.Equal(t, []events.EventType{
			events.EventScoreDiscrepancy,
			events.EventAssessmentSubmitted,
		}, f.eventTypes())

		data := f.publisher.GetPublishedEvents()[0].Data.(events.ScoreDiscrepancyEvent)
		assert.Equal(t, 0, data.ServerTotal)
		assert.Equal(t, 30.0, data.ClientTotal)
		assert.Equal(t, 30.0, data.Difference)
	})

	t.Run("claimed score is not persisted", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)

		var saved *models.MMSEAssessment
		expectSave(f.repo, "a-6", func(a *models.MMSEAssessment) bool {
			saved = a
			return true
		})

		req := submission(blankAnswers(), 25)
		req.Interpretation = "Normal"
		_, err := svc.Submit(ctx, req, patient)
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Equal(t, 0, saved.TotalScore)
		assert.Equal(t, "Cognitive impairment (suggests further formal testing)", saved.Interpretation)
		assert.True(t, onlyAnswersStored(saved))
		assert.NotContains(t, string(saved.Answers), "25")

		// the claim still reaches the discrepancy event
		data := f.publisher.GetPublishedEvents()[0].Data.(events.ScoreDiscrepancyEvent)
		assert.Equal(t, 25.0, data.ClientTotal)
	})

	t.Run("difference within tolerance is silent", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)
		expectSave(f.repo, "a-3", func(a *models.MMSEAssessment) bool { return a.TotalScore == 30 })

		_, err := svc.Submit(ctx, submission(perfectAnswers(), 28), patient)
		require.NoError(t, err)
		assert.Equal(t, []events.EventType{events.EventAssessmentSubmitted}, f.eventTypes())
	})

	t.Run("urdu locale", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)
		expectSave(f.repo, "a-4", func(a *models.MMSEAssessment) bool {
			return a.Locale == "ur" && a.Interpretation == "ذہنی کمزوری (مزید ٹیسٹ کی ضرورت)"
		})

		req := submission(blankAnswers(), 0)
		req.Locale = "ur"
		resp, err := svc.Submit(ctx, req, patient)
		require.NoError(t, err)
		assert.Equal(t, "ذہنی کمزوری (مزید ٹیسٹ کی ضرورت)", resp.Interpretation)
	})

	t.Run("inline drawing is kept", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)
		expectSave(f.repo, "a-5", func(a *models.MMSEAssessment) bool {
			return a.DrawingRef != nil && *a.DrawingRef == "data:image/png;base64,aGVsbG8="
		})

		req := submission(perfectAnswers(), 30)
		req.DrawingImage = "data:image/png;base64,aGVsbG8="
		_, err := svc.Submit(ctx, req, patient)
		require.NoError(t, err)
	})

	t.Run("uploaded drawing is removed when the insert fails", func(t *testing.T) {
		f := newFixture()
		drawings := &recordingDrawings{}
		f.deps.Drawings = drawings
		f.repo.users.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.repo.assessments.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		req := submission(perfectAnswers(), 30)
		req.DrawingImage = "data:image/png;base64,aGVsbG8="
		_, err := NewAssessmentService(f.deps).Submit(ctx, req, patient)

		require.Error(t, err)
		assert.Equal(t, []string{storage.RefPrefix + "drawings/patient-1/d.png"}, drawings.deleted)
	})

	t.Run("stored drawing is kept after a successful insert", func(t *testing.T) {
		f := newFixture()
		drawings := &recordingDrawings{}
		f.deps.Drawings = drawings
		expectSave(f.repo, "a-7", func(a *models.MMSEAssessment) bool {
			return a.DrawingRef != nil && *a.DrawingRef == storage.RefPrefix+"drawings/patient-1/d.png"
		})

		req := submission(perfectAnswers(), 30)
		req.DrawingImage = "data:image/png;base64,aGVsbG8="
		_, err := NewAssessmentService(f.deps).Submit(ctx, req, patient)

		require.NoError(t, err)
		assert.Empty(t, drawings.deleted)
	})

	t.Run("missing section", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)

		req := submission(perfectAnswers(), 30)
		req.Recall = nil
		_, err := svc.Submit(ctx, req, patient)

		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Empty(t, f.publisher.GetPublishedEvents())
		f.repo.assessments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("total out of range", func(t *testing.T) {
		f := newFixture()
		_, err := NewAssessmentService(f.deps).Submit(ctx, submission(perfectAnswers(), 31), patient)
		assert.True(t, IsValidation(err))
	})

	t.Run("wrong interpretation label", func(t *testing.T) {
		f := newFixture()
		req := submission(perfectAnswers(), 30)
		req.Interpretation = "Excellent"
		_, err := NewAssessmentService(f.deps).Submit(ctx, req, patient)
		assert.True(t, IsValidation(err))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture()
		_, err := NewAssessmentService(f.deps).Submit(ctx, submission(perfectAnswers(), 30), Caller{})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("doctors cannot submit", func(t *testing.T) {
		f := newFixture()
		_, err := NewAssessmentService(f.deps).Submit(ctx, submission(perfectAnswers(), 30), doctor)
		assert.True(t, IsForbidden(err))
	})

	t.Run("database failure", func(t *testing.T) {
		f := newFixture()
		f.repo.users.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.repo.assessments.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		_, err := NewAssessmentService(f.deps).Submit(ctx, submission(perfectAnswers(), 30), patient)
		require.Error(t, err)
		assert.False(t, IsValidation(err))
		assert.ErrorContains(t, err, "connection refused")
		assert.Empty(t, f.publisher.GetPublishedEvents())
	})
}

func TestAssessmentService_Preview(t *testing.T) {
	f := newFixture()
	svc := NewAssessmentService(f.deps)

	resp, err := svc.Preview(context.Background(), &models.PreviewRequest{AnswerPayload: perfectAnswers()})
	require.NoError(t, err)

	assert.Equal(t, 30, resp.TotalScore)
	assert.Equal(t, scoring.LocaleEnglish, resp.Locale)
	assert.Equal(t, scoring.NamingCorrect, resp.ObjectFeedback.Object1)
	assert.Equal(t, scoring.NamingIncorrect, resp.ObjectFeedback.Object2)
	assert.Empty(t, f.publisher.GetPublishedEvents())

	_, err = svc.Preview(context.Background(), &models.PreviewRequest{})
	assert.True(t, IsValidation(err))
}

func TestAssessmentService_Get(t *testing.T) {
	ctx := context.Background()
	stored := &models.MMSEAssessment{ID: "a-1", UserID: patient.ID, TotalScore: 27, Interpretation: "Normal"}

	t.Run("owner, then from cache", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)
		f.repo.assessments.On("GetByID", mock.Anything, "a-1").Return(stored, nil).Once()

		got, err := svc.Get(ctx, "a-1", patient)
		require.NoError(t, err)
		assert.Equal(t, 27, got.TotalScore)

		got, err = svc.Get(ctx, "a-1", patient)
		require.NoError(t, err)
		assert.Equal(t, "a-1", got.ID)
		f.repo.AssertExpectations(t)
	})

	t.Run("doctor it was shared with", func(t *testing.T) {
		f := newFixture()
		f.repo.assessments.On("GetByID", mock.Anything, "a-1").Return(stored, nil)
		f.repo.shares.On("Exists", mock.Anything, "a-1", doctor.ID).Return(true, nil)

		_, err := NewAssessmentService(f.deps).Get(ctx, "a-1", doctor)
		assert.NoError(t, err)
	})

	t.Run("doctor without a share", func(t *testing.T) {
		f := newFixture()
		f.repo.assessments.On("GetByID", mock.Anything, "a-1").Return(stored, nil)
		f.repo.shares.On("Exists", mock.Anything, "a-1", doctor.ID).Return(false, nil)

		_, err := NewAssessmentService(f.deps).Get(ctx, "a-1", doctor)
		assert.True(t, IsForbidden(err))
		var permErr *PermissionError
		assert.ErrorAs(t, err, &permErr)
	})

	t.Run("another patient", func(t *testing.T) {
		f := newFixture()
		f.repo.assessments.On("GetByID", mock.Anything, "a-1").Return(stored, nil)

		other := Caller{ID: "patient-2", Role: models.RolePatient}
		_, err := NewAssessmentService(f.deps).Get(ctx, "a-1", other)
		assert.True(t, IsForbidden(err))
		f.repo.shares.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.repo.assessments.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := NewAssessmentService(f.deps).Get(ctx, "missing", patient)
		assert.ErrorIs(t, err, ErrAssessmentNotFound)
		assert.True(t, IsNotFound(err))
	})
}

func TestAssessmentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)

		page := []*models.MMSEAssessment{{ID: "a-6"}, {ID: "a-7"}}
		f.repo.assessments.On("GetByUser", mock.Anything, patient.ID, repositories.AssessmentFilters{
			Limit:     5,
			Offset:    5,
			SortBy:    "assessment_date",
			SortOrder: "desc",
		}).Return(page, int64(7), nil).Once()

		resp, err := svc.List(ctx, &models.AssessmentListRequest{Page: 2, Limit: 5}, patient)
		require.NoError(t, err)

		assert.Len(t, resp.Assessments, 2)
		assert.Equal(t, models.Pagination{
			CurrentPage: 2,
			TotalPages:  2,
			Total:       7,
			Limit:       5,
			HasNextPage: false,
			HasPrevPage: true,
		}, resp.Pagination)
		f.repo.AssertExpectations(t)
	})

	t.Run("defaults and locale filter", func(t *testing.T) {
		f := newFixture()
		f.repo.assessments.On("GetByUser", mock.Anything, patient.ID, mock.MatchedBy(func(fl repositories.AssessmentFilters) bool {
			return fl.Limit == 10 && fl.Offset == 0 && fl.Locale != nil && *fl.Locale == "ur"
		})).Return([]*models.MMSEAssessment{}, int64(0), nil)

		resp, err := NewAssessmentService(f.deps).List(ctx, &models.AssessmentListRequest{Locale: "urdu"}, patient)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Pagination.CurrentPage)
		assert.Equal(t, 0, resp.Pagination.TotalPages)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		f := newFixture()
		_, err := NewAssessmentService(f.deps).List(ctx, &models.AssessmentListRequest{Limit: 500}, patient)
		assert.True(t, IsValidation(err))
	})

	t.Run("cached until the next submission", func(t *testing.T) {
		f := newFixture()
		svc := NewAssessmentService(f.deps)

		f.repo.assessments.On("GetByUser", mock.Anything, patient.ID, mock.Anything).
			Return([]*models.MMSEAssessment{{ID: "a-1"}}, int64(1), nil).Twice()
		expectSave(f.repo, "a-2", func(*models.MMSEAssessment) bool { return true })

		req := &models.AssessmentListRequest{}
		_, err := svc.List(ctx, req, patient)
		require.NoError(t, err)
		_, err = svc.List(ctx, req, patient)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, submission(perfectAnswers(), 30), patient)
		require.NoError(t, err)

		_, err = svc.List(ctx, req, patient)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})
}
