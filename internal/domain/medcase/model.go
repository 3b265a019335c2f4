package medcase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a case id does not resolve to a stored case.
var ErrNotFound = errors.New("medical case not found")

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// Status is the lifecycle state of a committed case.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// validTransitions lists the allowed status changes. Reopening a completed
// case back to active is permitted; skipping straight from draft to
// completed is not.
var validTransitions = map[Status][]Status{
	StatusDraft:     {StatusActive},
	StatusActive:    {StatusCompleted, StatusDraft},
	StatusCompleted: {StatusActive},
}

// ValidStatus reports whether s is a known case status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a case may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Patient holds the demographic slice of a case. Age and Sex are optional at
// draft time; commit fills in fallbacks (0 and "unknown") when absent.
type Patient struct {
	Name                string `json:"name,omitempty"`
	Age                 int    `json:"age"`
	Sex                 string `json:"sex"`
	MedicalRecordNumber string `json:"medical_record_number,omitempty"`
	MedicalHistory      string `json:"medical_history,omitempty"`
}

// LabResult is one structured laboratory entry.
type LabResult struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// RadiologyStudy is one imaging study attached to a case.
type RadiologyStudy struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Findings   string `json:"findings,omitempty"`
	Date       string `json:"date,omitempty"`
	Impression string `json:"impression,omitempty"`
}

// MedicalCase is a committed clinical case record.
type MedicalCase struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	ChiefComplaint   string              `json:"chief_complaint"`
	Specialty        string              `json:"specialty"`
	Patient          Patient             `json:"patient"`
	Vitals           map[string]string   `json:"vitals,omitempty"`
	History          string              `json:"history,omitempty"`
	PhysicalExam     string              `json:"physical_exam,omitempty"`
	LearningPoints   string              `json:"learning_points,omitempty"`
	BodyParts        []string            `json:"body_parts,omitempty"`
	SystemSymptoms   map[string][]string `json:"system_symptoms,omitempty"`
	LabResults       []LabResult         `json:"lab_results,omitempty"`
	RadiologyStudies []RadiologyStudy    `json:"radiology_studies,omitempty"`
	Diagnoses        []string            `json:"diagnoses"`
	Tags             []string            `json:"tags"`
	Resources        []string            `json:"resources"`
	Status           Status              `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// CreateInput carries the validated draft fields a commit maps into a new case.
// Age is a pointer so that "absent" and "zero" stay distinguishable until the
// fallback is applied.
type CreateInput struct {
	Title            string              `json:"title"`
	ChiefComplaint   string              `json:"chief_complaint"`
	Specialty        string              `json:"specialty"`
	PatientName      string              `json:"patient_name,omitempty"`
	PatientAge       *int                `json:"patient_age,omitempty"`
	PatientSex       string              `json:"patient_sex,omitempty"`
	MedicalRecordNo  string              `json:"medical_record_number,omitempty"`
	MedicalHistory   string              `json:"medical_history,omitempty"`
	History          string              `json:"history,omitempty"`
	PhysicalExam     string              `json:"physical_exam,omitempty"`
	LearningPoints   string              `json:"learning_points,omitempty"`
	BodyParts        []string            `json:"body_parts,omitempty"`
	SystemSymptoms   map[string][]string `json:"system_symptoms,omitempty"`
	Vitals           map[string]string   `json:"vitals,omitempty"`
	LabResults       []LabResult         `json:"lab_results,omitempty"`
	RadiologyStudies []RadiologyStudy    `json:"radiology_studies,omitempty"`
}

// UpdateInput is a partial patch for an existing case. Nil fields are left
// untouched.
type UpdateInput struct {
	Title            *string              `json:"title,omitempty"`
	ChiefComplaint   *string              `json:"chief_complaint,omitempty"`
	Specialty        *string              `json:"specialty,omitempty"`
	Patient          *Patient             `json:"patient,omitempty"`
	Vitals           *map[string]string   `json:"vitals,omitempty"`
	History          *string              `json:"history,omitempty"`
	PhysicalExam     *string              `json:"physical_exam,omitempty"`
	LearningPoints   *string              `json:"learning_points,omitempty"`
	BodyParts        *[]string            `json:"body_parts,omitempty"`
	SystemSymptoms   *map[string][]string `json:"system_symptoms,omitempty"`
	LabResults       *[]LabResult         `json:"lab_results,omitempty"`
	RadiologyStudies *[]RadiologyStudy    `json:"radiology_studies,omitempty"`
	Diagnoses        *[]string            `json:"diagnoses,omitempty"`
	Tags             *[]string            `json:"tags,omitempty"`
	Resources        *[]string            `json:"resources,omitempty"`
}
