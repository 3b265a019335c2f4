// Package draft implements the multi-step case creation wizard: per-step
// field validation, an autosaving draft store, and the controller state
// machine that turns a finished draft into a committed case.
package draft

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/casebook/casebook/internal/domain/medcase"
)

var (
	// ErrNotFound is returned when a draft id does not resolve to a stored draft.
	ErrNotFound = errors.New("draft not found")

	// ErrInvalidTransition is returned when a wizard operation is not legal
	// from the current state.
	ErrInvalidTransition = errors.New("invalid wizard transition")

	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not resolved yet.
	ErrSubmitInFlight = errors.New("submission already in progress")

	// ErrClosed is returned by operations on a wizard that has been torn down.
	ErrClosed = errors.New("wizard is closed")
)

// StepID identifies one wizard step.
type StepID string

const (
	StepCaseInfo       StepID = "caseInfo"
	StepPatient        StepID = "patient"
	StepClinicalDetail StepID = "clinicalDetail"
)

// StepOrder is the fixed step sequence of the wizard.
var StepOrder = []StepID{StepCaseInfo, StepPatient, StepClinicalDetail}

// TotalSteps is the number of wizard steps.
const TotalSteps = 3

// StepIndex returns the position of a step in StepOrder, or -1 if unknown.
func StepIndex(id StepID) int {
	for i, s := range StepOrder {
		if s == id {
			return i
		}
	}
	return -1
}

// CaseInfoData is the first step's slice of the draft.
type CaseInfoData struct {
	CaseTitle      string `json:"case_title"`
	ChiefComplaint string `json:"chief_complaint"`
	Specialty      string `json:"specialty"`
}

// PatientData is the second step's slice of the draft. Age stays a pointer
// so an untouched field is distinguishable from an explicit zero.
type PatientData struct {
	PatientName         string `json:"patient_name"`
	PatientAge          *int   `json:"patient_age,omitempty"`
	PatientSex          string `json:"patient_sex"`
	MedicalRecordNumber string `json:"medical_record_number"`
	MedicalHistory      string `json:"medical_history"`
}

// ClinicalDetailData is the final step's slice of the draft.
type ClinicalDetailData struct {
	PatientHistory    string                    `json:"patient_history"`
	SelectedBodyParts []string                  `json:"selected_body_parts"`
	SystemSymptoms    map[string][]string       `json:"system_symptoms"`
	Vitals            map[string]string         `json:"vitals"`
	PhysicalExam      string                    `json:"physical_exam"`
	LearningPoints    string                    `json:"learning_points"`
	LabResults        []medcase.LabResult       `json:"lab_results"`
	RadiologyStudies  []medcase.RadiologyStudy  `json:"radiology_studies"`
}

// Fields is the full, typed field set of a draft, one slice per step.
type Fields struct {
	CaseInfo       CaseInfoData       `json:"case_info"`
	Patient        PatientData        `json:"patient"`
	ClinicalDetail ClinicalDetailData `json:"clinical_detail"`
}

// CaseDraft is an in-progress case record edited across wizard steps.
type CaseDraft struct {
	ID               uuid.UUID       `json:"id"`
	CurrentStepIndex int             `json:"current_step_index"`
	CompletedSteps   map[StepID]bool `json:"completed_steps"`
	Fields           Fields          `json:"fields"`
	LastSavedAt      *time.Time      `json:"last_saved_at,omitempty"`
}

// NewCaseDraft returns an empty draft positioned at step 0.
func NewCaseDraft() *CaseDraft {
	return &CaseDraft{
		ID:             uuid.New(),
		CompletedSteps: make(map[StepID]bool),
	}
}

// CurrentStep returns the step id for the draft's current index.
func (d *CaseDraft) CurrentStep() StepID {
	return StepOrder[d.CurrentStepIndex]
}

// CompletionPercentage is the share of completed steps, 0 through 100.
func (d *CaseDraft) CompletionPercentage() float64 {
	return float64(len(d.CompletedSteps)) / float64(TotalSteps) * 100
}

// CaseInfoPatch is a partial edit of the case info step.
type CaseInfoPatch struct {
	CaseTitle      *string `json:"case_title,omitempty"`
	ChiefComplaint *string `json:"chief_complaint,omitempty"`
	Specialty      *string `json:"specialty,omitempty"`
}

// PatientPatch is a partial edit of the patient step.
type PatientPatch struct {
	PatientName         *string `json:"patient_name,omitempty"`
	PatientAge          *int    `json:"patient_age,omitempty"`
	PatientSex          *string `json:"patient_sex,omitempty"`
	MedicalRecordNumber *string `json:"medical_record_number,omitempty"`
	MedicalHistory      *string `json:"medical_history,omitempty"`
}

// ClinicalDetailPatch is a partial edit of the clinical detail step.
type ClinicalDetailPatch struct {
	PatientHistory    *string                    `json:"patient_history,omitempty"`
	SelectedBodyParts *[]string                  `json:"selected_body_parts,omitempty"`
	SystemSymptoms    *map[string][]string       `json:"system_symptoms,omitempty"`
	Vitals            *map[string]string         `json:"vitals,omitempty"`
	PhysicalExam      *string                    `json:"physical_exam,omitempty"`
	LearningPoints    *string                    `json:"learning_points,omitempty"`
	LabResults        *[]medcase.LabResult       `json:"lab_results,omitempty"`
	RadiologyStudies  *[]medcase.RadiologyStudy  `json:"radiology_studies,omitempty"`
}

// Patch bundles the per-step patch variants; exactly one slot matching the
// edited step is consulted.
type Patch struct {
	CaseInfo       *CaseInfoPatch       `json:"case_info,omitempty"`
	Patient        *PatientPatch        `json:"patient,omitempty"`
	ClinicalDetail *ClinicalDetailPatch `json:"clinical_detail,omitempty"`
}

// apply merges a patch into the fields slice for the given step. Edits are
// applied in the order received; nil patch members leave fields untouched.
func (f *Fields) apply(step StepID, p Patch) {
	switch step {
	case StepCaseInfo:
		if p.CaseInfo == nil {
			return
		}
		if p.CaseInfo.CaseTitle != nil {
			f.CaseInfo.CaseTitle = *p.CaseInfo.CaseTitle
		}
		if p.CaseInfo.ChiefComplaint != nil {
			f.CaseInfo.ChiefComplaint = *p.CaseInfo.ChiefComplaint
		}
		if p.CaseInfo.Specialty != nil {
			f.CaseInfo.Specialty = *p.CaseInfo.Specialty
		}
	case StepPatient:
		if p.Patient == nil {
			return
		}
		if p.Patient.PatientName != nil {
			f.Patient.PatientName = *p.Patient.PatientName
		}
		if p.Patient.PatientAge != nil {
			age := *p.Patient.PatientAge
			f.Patient.PatientAge = &age
		}
		if p.Patient.PatientSex != nil {
			f.Patient.PatientSex = *p.Patient.PatientSex
		}
		if p.Patient.MedicalRecordNumber != nil {
			f.Patient.MedicalRecordNumber = *p.Patient.MedicalRecordNumber
		}
		if p.Patient.MedicalHistory != nil {
			f.Patient.MedicalHistory = *p.Patient.MedicalHistory
		}
	case StepClinicalDetail:
		if p.ClinicalDetail == nil {
			return
		}
		cd := p.ClinicalDetail
		if cd.PatientHistory != nil {
			f.ClinicalDetail.PatientHistory = *cd.PatientHistory
		}
		if cd.SelectedBodyParts != nil {
			f.ClinicalDetail.SelectedBodyParts = *cd.SelectedBodyParts
		}
		if cd.SystemSymptoms != nil {
			f.ClinicalDetail.SystemSymptoms = *cd.SystemSymptoms
		}
		if cd.Vitals != nil {
			f.ClinicalDetail.Vitals = *cd.Vitals
		}
		if cd.PhysicalExam != nil {
			f.ClinicalDetail.PhysicalExam = *cd.PhysicalExam
		}
		if cd.LearningPoints != nil {
			f.ClinicalDetail.LearningPoints = *cd.LearningPoints
		}
		if cd.LabResults != nil {
			f.ClinicalDetail.LabResults = *cd.LabResults
		}
		if cd.RadiologyStudies != nil {
			f.ClinicalDetail.RadiologyStudies = *cd.RadiologyStudies
		}
	}
}

// StepData returns the fields slice for the given step.
func (f Fields) StepData(step StepID) interface{} {
	switch step {
	case StepCaseInfo:
		return f.CaseInfo
	case StepPatient:
		return f.Patient
	case StepClinicalDetail:
		return f.ClinicalDetail
	}
	return nil
}

// toCreateInput maps a completed draft's fields into the shape the case
// service commits.
func (f Fields) toCreateInput() medcase.CreateInput {
	return medcase.CreateInput{
		Title:            f.CaseInfo.CaseTitle,
		ChiefComplaint:   f.CaseInfo.ChiefComplaint,
		Specialty:        f.CaseInfo.Specialty,
		PatientName:      f.Patient.PatientName,
		PatientAge:       f.Patient.PatientAge,
		PatientSex:       f.Patient.PatientSex,
		MedicalRecordNo:  f.Patient.MedicalRecordNumber,
		MedicalHistory:   f.Patient.MedicalHistory,
		History:          f.ClinicalDetail.PatientHistory,
		PhysicalExam:     f.ClinicalDetail.PhysicalExam,
		LearningPoints:   f.ClinicalDetail.LearningPoints,
		BodyParts:        f.ClinicalDetail.SelectedBodyParts,
		SystemSymptoms:   f.ClinicalDetail.SystemSymptoms,
		Vitals:           f.ClinicalDetail.Vitals,
		LabResults:       f.ClinicalDetail.LabResults,
		RadiologyStudies: f.ClinicalDetail.RadiologyStudies,
	}
}
