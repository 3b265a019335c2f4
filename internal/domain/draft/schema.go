package draft

import "strings"

// Result is the outcome of validating one step's data.
type Result struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// Specialties is the enumerated specialty list offered on the case info step.
var Specialties = []string{
	"Cardiology",
	"Dermatology",
	"Emergency Medicine",
	"Endocrinology",
	"Gastroenterology",
	"Hematology",
	"Infectious Disease",
	"Internal Medicine",
	"Nephrology",
	"Neurology",
	"Obstetrics",
	"Oncology",
	"Orthopedics",
	"Pediatrics",
	"Psychiatry",
	"Pulmonology",
	"Rheumatology",
	"Surgery",
	"Other",
}

// SexOptions is the enumerated patient sex list on the patient step.
var SexOptions = []string{"Male", "Female", "Other", "Prefer not to say"}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ValidateStep checks one step's slice of the fields against that step's
// schema. It never mutates its input; partial or invalid data may still be
// autosaved, validation only gates step transitions.
func ValidateStep(step StepID, f Fields) Result {
	switch step {
	case StepCaseInfo:
		return validateCaseInfo(f.CaseInfo)
	case StepPatient:
		return validatePatient(f.Patient)
	case StepClinicalDetail:
		return validateClinicalDetail(f.ClinicalDetail)
	}
	return Result{Valid: false, FieldErrors: map[string]string{"step": "Unknown step."}}
}

func validateCaseInfo(d CaseInfoData) Result {
	fieldErrors := make(map[string]string)
	if len(strings.TrimSpace(d.CaseTitle)) < 3 {
		fieldErrors["caseTitle"] = "Title must be at least 3 characters long."
	}
	if len(strings.TrimSpace(d.ChiefComplaint)) < 5 {
		fieldErrors["chiefComplaint"] = "Chief complaint must be at least 5 characters long."
	}
	if strings.TrimSpace(d.Specialty) == "" {
		fieldErrors["specialty"] = "Specialty is required."
	} else if !contains(Specialties, d.Specialty) {
		fieldErrors["specialty"] = "Select a specialty from the list."
	}
	return result(fieldErrors)
}

func validatePatient(d PatientData) Result {
	fieldErrors := make(map[string]string)
	if d.PatientAge != nil && *d.PatientAge <= 0 {
		fieldErrors["patientAge"] = "Age must be a positive number."
	}
	if d.PatientSex != "" && !contains(SexOptions, d.PatientSex) {
		fieldErrors["patientSex"] = "Select a sex option from the list."
	}
	return result(fieldErrors)
}

func validateClinicalDetail(d ClinicalDetailData) Result {
	fieldErrors := make(map[string]string)
	for _, lr := range d.LabResults {
		if strings.TrimSpace(lr.Name) == "" {
			fieldErrors["labResults"] = "Each lab result needs a name."
			break
		}
	}
	for _, rs := range d.RadiologyStudies {
		if strings.TrimSpace(rs.Name) == "" {
			fieldErrors["radiologyStudies"] = "Each radiology study needs a name."
			break
		}
	}
	return result(fieldErrors)
}

func result(fieldErrors map[string]string) Result {
	if len(fieldErrors) > 0 {
		return Result{Valid: false, FieldErrors: fieldErrors}
	}
	return Result{Valid: true}
}
