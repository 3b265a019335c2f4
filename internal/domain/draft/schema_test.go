package draft

import (
	"reflect"
	"testing"

	"github.com/casebook/casebook/internal/domain/medcase"
)

func validCaseInfo() CaseInfoData {
	return CaseInfoData{
		CaseTitle:      "Acute MI",
		ChiefComplaint: "Chest pain for 2 hours",
		Specialty:      "Cardiology",
	}
}

func TestValidateCaseInfo(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CaseInfoData)
		wantField string
		wantMsg   string
	}{
		{"valid", func(d *CaseInfoData) {}, "", ""},
		{"short title", func(d *CaseInfoData) { d.CaseTitle = "AB" }, "caseTitle", "Title must be at least 3 characters long."},
		{"whitespace title", func(d *CaseInfoData) { d.CaseTitle = "   " }, "caseTitle", "Title must be at least 3 characters long."},
		{"short complaint", func(d *CaseInfoData) { d.ChiefComplaint = "pain" }, "chiefComplaint", "Chief complaint must be at least 5 characters long."},
		{"missing specialty", func(d *CaseInfoData) { d.Specialty = "" }, "specialty", "Specialty is required."},
		{"unknown specialty", func(d *CaseInfoData) { d.Specialty = "Astrology" }, "specialty", "Select a specialty from the list."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validCaseInfo()
			tt.mutate(&d)

			res := ValidateStep(StepCaseInfo, Fields{CaseInfo: d})
			if tt.wantField == "" {
				if !res.Valid {
					t.Fatalf("expected valid, got errors %v", res.FieldErrors)
				}
				return
			}
			if res.Valid {
				t.Fatal("expected invalid")
			}
			if got := res.FieldErrors[tt.wantField]; got != tt.wantMsg {
				t.Errorf("FieldErrors[%s] = %q, want %q", tt.wantField, got, tt.wantMsg)
			}
		})
	}
}

func TestValidatePatient_OptionalFields(t *testing.T) {
	// Everything on the patient step is optional; an empty step validates.
	res := ValidateStep(StepPatient, Fields{})
	if !res.Valid {
		t.Fatalf("expected empty patient step to validate, got %v", res.FieldErrors)
	}
}

func TestValidatePatient_Constraints(t *testing.T) {
	negative := -3
	res := ValidateStep(StepPatient, Fields{Patient: PatientData{PatientAge: &negative}})
	if res.Valid {
		t.Fatal("expected negative age to be rejected")
	}
	if res.FieldErrors["patientAge"] != "Age must be a positive number." {
		t.Errorf("unexpected message: %q", res.FieldErrors["patientAge"])
	}

	res = ValidateStep(StepPatient, Fields{Patient: PatientData{PatientSex: "Robot"}})
	if res.Valid {
		t.Fatal("expected unknown sex option to be rejected")
	}

	for _, sex := range SexOptions {
		res = ValidateStep(StepPatient, Fields{Patient: PatientData{PatientSex: sex}})
		if !res.Valid {
			t.Errorf("expected %q to be accepted", sex)
		}
	}
}

func TestValidateClinicalDetail(t *testing.T) {
	// The clinical detail step is permissive; empty data validates.
	res := ValidateStep(StepClinicalDetail, Fields{})
	if !res.Valid {
		t.Fatalf("expected empty clinical detail to validate, got %v", res.FieldErrors)
	}

	res = ValidateStep(StepClinicalDetail, Fields{ClinicalDetail: ClinicalDetailData{
		LabResults: []medcase.LabResult{{Name: "", Value: "7.2"}},
	}})
	if res.Valid {
		t.Fatal("expected nameless lab result to be rejected")
	}

	res = ValidateStep(StepClinicalDetail, Fields{ClinicalDetail: ClinicalDetailData{
		RadiologyStudies: []medcase.RadiologyStudy{{Name: ""}},
	}})
	if res.Valid {
		t.Fatal("expected nameless radiology study to be rejected")
	}
}

func TestValidateStep_NeverMutatesInput(t *testing.T) {
	f := Fields{CaseInfo: CaseInfoData{CaseTitle: "AB"}}
	before := f
	_ = ValidateStep(StepCaseInfo, f)
	if !reflect.DeepEqual(f, before) {
		t.Error("validation mutated its input")
	}
}

func TestValidateStep_UnknownStep(t *testing.T) {
	res := ValidateStep(StepID("bogus"), Fields{})
	if res.Valid {
		t.Fatal("expected unknown step to be invalid")
	}
}
