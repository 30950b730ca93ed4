package models

import (
	"time"

	"gorm.io/datatypes"
)

// MMSEAssessment is one scored submission. It is written once and never
// updated.
type MMSEAssessment struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	UserID string `json:"userId" gorm:"not null;size:255;index:idx_mmse_user_date,priority:1"`
	Locale string `json:"locale" gorm:"not null;size:5;index"`

	OrientationScore  int    `json:"orientationScore" gorm:"not null"`
	RegistrationScore int    `json:"registrationScore" gorm:"not null"`
	AttentionScore    int    `json:"attentionScore" gorm:"not null"`
	RecallScore       int    `json:"recallScore" gorm:"not null"`
	LanguageScore     int    `json:"languageScore" gorm:"not null"`
	TotalScore        int    `json:"totalScore" gorm:"not null;check:total_score BETWEEN 0 AND 30"`
	Interpretation    string `json:"interpretation" gorm:"not null;size:100"`

	// Raw answer sheet as submitted.
	Answers    datatypes.JSON `json:"answers" gorm:"type:jsonb;not null"`
	DrawingRef *string        `json:"drawingRef,omitempty" gorm:"type:text"`

	ReferenceTime  time.Time `json:"referenceTime" gorm:"not null"`
	AssessmentDate time.Time `json:"assessmentDate" gorm:"not null;index:idx_mmse_user_date,priority:2,sort:desc"`
	CreatedAt      time.Time `json:"createdAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (MMSEAssessment) TableName() string {
	return "mmse_assessments"
}

// Summary is the short form shown in share listings.
func (a *MMSEAssessment) Summary() AssessmentSummary {
	return AssessmentSummary{
		ID:             a.ID,
		TotalScore:     a.TotalScore,
		Interpretation: a.Interpretation,
		AssessmentDate: a.AssessmentDate,
	}
}

type AssessmentSummary struct {
	ID             string    `json:"id"`
	TotalScore     int       `json:"totalScore"`
	Interpretation string    `json:"interpretation"`
	AssessmentDate time.Time `json:"assessmentDate"`
}

// SharedAssessment grants a doctor read access to one submission. A
// submission can be shared with a given doctor once.
type SharedAssessment struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	AssessmentID string    `json:"assessmentId" gorm:"not null;type:uuid;uniqueIndex:idx_share_assessment_doctor"`
	DoctorID     string    `json:"doctorId" gorm:"not null;size:255;uniqueIndex:idx_share_assessment_doctor;index"`
	PatientID    string    `json:"patientId" gorm:"not null;size:255;index"`
	Language     string    `json:"language" gorm:"not null;size:20"`
	SharedAt     time.Time `json:"sharedAt" gorm:"not null;index"`

	Assessment *MMSEAssessment `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	Patient    *User           `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	Doctor     *User           `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
}

func (SharedAssessment) TableName() string {
	return "shared_assessments"
}

// AllModels lists the tables managed by migrations.
func AllModels() []any {
	return []any{&User{}, &MMSEAssessment{}, &SharedAssessment{}}
}
