package medcase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service implements case lifecycle operations over a Repository.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

const (
	// FallbackSex is recorded when a draft omits the patient's sex.
	FallbackSex = "unknown"

	minTitleLen     = 3
	minComplaintLen = 5
)

// checkRequired re-validates the required fields at commit time. Step
// validation should already have enforced these; this guards against callers
// that bypass the wizard.
func checkRequired(in CreateInput) *ValidationError {
	fieldErrors := make(map[string]string)
	if len(in.Title) < minTitleLen {
		fieldErrors["title"] = fmt.Sprintf("Title must be at least %d characters long.", minTitleLen)
	}
	if len(in.ChiefComplaint) < minComplaintLen {
		fieldErrors["chief_complaint"] = fmt.Sprintf("Chief complaint must be at least %d characters long.", minComplaintLen)
	}
	if in.Specialty == "" {
		fieldErrors["specialty"] = "Specialty is required."
	}
	if in.PatientAge != nil && *in.PatientAge <= 0 {
		fieldErrors["patient_age"] = "Age must be a positive number."
	}
	if len(fieldErrors) > 0 {
		return &ValidationError{FieldErrors: fieldErrors}
	}
	return nil
}

// Create commits validated draft fields as a new case. The case starts in
// status draft with a fresh id and createdAt equal to updatedAt.
func (s *Service) Create(ctx context.Context, in CreateInput) (*MedicalCase, error) {
	if verr := checkRequired(in); verr != nil {
		return nil, verr
	}

	age := 0
	if in.PatientAge != nil {
		age = *in.PatientAge
	}
	sex := in.PatientSex
	if sex == "" {
		sex = FallbackSex
	}

	now := time.Now().UTC()
	mc := &MedicalCase{
		ID:             uuid.New(),
		Title:          in.Title,
		ChiefComplaint: in.ChiefComplaint,
		Specialty:      in.Specialty,
		Patient: Patient{
			Name:                in.PatientName,
			Age:                 age,
			Sex:                 sex,
			MedicalRecordNumber: in.MedicalRecordNo,
			MedicalHistory:      in.MedicalHistory,
		},
		Vitals:           in.Vitals,
		History:          in.History,
		PhysicalExam:     in.PhysicalExam,
		LearningPoints:   in.LearningPoints,
		BodyParts:        in.BodyParts,
		SystemSymptoms:   in.SystemSymptoms,
		LabResults:       in.LabResults,
		RadiologyStudies: in.RadiologyStudies,
		Diagnoses:        []string{},
		Tags:             []string{},
		Resources:        []string{},
		Status:           StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, mc); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("case_id", mc.ID.String()).
		Str("specialty", mc.Specialty).
		Msg("case created")
	return mc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalCase, error) {
	return s.repo.GetByID(ctx, id)
}

// Update merges a partial patch into an existing case and bumps updatedAt.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*MedicalCase, error) {
	mc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fieldErrors := make(map[string]string)
	if in.Title != nil {
		if len(*in.Title) < minTitleLen {
			fieldErrors["title"] = fmt.Sprintf("Title must be at least %d characters long.", minTitleLen)
		} else {
			mc.Title = *in.Title
		}
	}
	if in.ChiefComplaint != nil {
		if len(*in.ChiefComplaint) < minComplaintLen {
			fieldErrors["chief_complaint"] = fmt.Sprintf("Chief complaint must be at least %d characters long.", minComplaintLen)
		} else {
			mc.ChiefComplaint = *in.ChiefComplaint
		}
	}
	if in.Specialty != nil {
		if *in.Specialty == "" {
			fieldErrors["specialty"] = "Specialty is required."
		} else {
			mc.Specialty = *in.Specialty
		}
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{FieldErrors: fieldErrors}
	}

	if in.Patient != nil {
		mc.Patient = *in.Patient
	}
	if in.Vitals != nil {
		mc.Vitals = *in.Vitals
	}
	if in.History != nil {
		mc.History = *in.History
	}
	if in.PhysicalExam != nil {
		mc.PhysicalExam = *in.PhysicalExam
	}
	if in.LearningPoints != nil {
		mc.LearningPoints = *in.LearningPoints
	}
	if in.BodyParts != nil {
		mc.BodyParts = *in.BodyParts
	}
	if in.SystemSymptoms != nil {
		mc.SystemSymptoms = *in.SystemSymptoms
	}
	if in.LabResults != nil {
		mc.LabResults = *in.LabResults
	}
	if in.RadiologyStudies != nil {
		mc.RadiologyStudies = *in.RadiologyStudies
	}
	if in.Diagnoses != nil {
		mc.Diagnoses = *in.Diagnoses
	}
	if in.Tags != nil {
		mc.Tags = *in.Tags
	}
	if in.Resources != nil {
		mc.Resources = *in.Resources
	}

	mc.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, mc); err != nil {
		return nil, err
	}
	return mc, nil
}

// UpdateStatus moves a case along its lifecycle. Invalid transitions are
// rejected with a ValidationError.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*MedicalCase, error) {
	if !ValidStatus(status) {
		return nil, &ValidationError{FieldErrors: map[string]string{
			"status": fmt.Sprintf("Unknown status %q.", status),
		}}
	}

	mc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mc.Status == status {
		return mc, nil
	}
	if !CanTransition(mc.Status, status) {
		return nil, &ValidationError{FieldErrors: map[string]string{
			"status": fmt.Sprintf("Cannot change status from %q to %q.", mc.Status, status),
		}}
	}

	mc.Status = status
	mc.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, mc); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("case_id", mc.ID.String()).
		Str("status", string(status)).
		Msg("case status changed")
	return mc, nil
}

// Delete removes a case. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List returns cases sorted newest-first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]*MedicalCase, error) {
	cases, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if status != "" {
		filtered := cases[:0]
		for _, mc := range cases {
			if mc.Status == status {
				filtered = append(filtered, mc)
			}
		}
		cases = filtered
	}
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
	return cases, nil
}
