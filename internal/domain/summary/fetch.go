package summary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ehr/cds/internal/platform/fhir"
)

// Projection tables for each resource type. Paths follow the FHIR R4
// element names; coding fields fan out, so multi-coding resources keep
// their first coding in the typed records.
var (
	patientProjection = fhir.Projection{
		{Name: "given_name", Path: fhir.MustParsePath("Patient.name.where(use = 'official').given")},
		{Name: "family_name", Path: fhir.MustParsePath("Patient.name.where(use = 'official').family")},
		{Name: "birth_date", Path: fhir.MustParsePath("Patient.birthDate")},
		{Name: "fhir_id", Path: fhir.MustParsePath("Patient.id")},
		{Name: "ehr_id", Path: fhir.MustParsePath("Patient.identifier.where(type.coding.system = 'http://terminology.hl7.org/CodeSystem/v2-0203' and type.coding.code = 'MR').value")},
	}

	conditionProjection = fhir.Projection{
		{Name: "coding_system", Path: fhir.MustParsePath("Condition.code.coding.system")},
		{Name: "coding_code", Path: fhir.MustParsePath("Condition.code.coding.code")},
		{Name: "coding_display", Path: fhir.MustParsePath("Condition.code.coding.display")},
		{Name: "id", Path: fhir.MustParsePath("Condition.id")},
		{Name: "date", Path: fhir.MustParsePath("Condition.onsetDateTime")},
	}

	observationProjection = fhir.Projection{
		{Name: "coding_system", Path: fhir.MustParsePath("Observation.code.coding.system")},
		{Name: "coding_code", Path: fhir.MustParsePath("Observation.code.coding.code")},
		{Name: "coding_display", Path: fhir.MustParsePath("Observation.code.coding.display")},
		{Name: "id", Path: fhir.MustParsePath("Observation.id")},
		{Name: "date", Path: fhir.MustParsePath("Observation.effectiveDateTime")},
		{Name: "value", Path: fhir.MustParsePath("Observation.valueQuantity.value")},
	}

	medicationProjection = fhir.Projection{
		{Name: "coding_system", Path: fhir.MustParsePath("MedicationRequest.medicationCodeableConcept.coding.system")},
		{Name: "coding_code", Path: fhir.MustParsePath("MedicationRequest.medicationCodeableConcept.coding.code")},
		{Name: "coding_display", Path: fhir.MustParsePath("MedicationRequest.medicationCodeableConcept.coding.display")},
		{Name: "id", Path: fhir.MustParsePath("MedicationRequest.id")},
		{Name: "date", Path: fhir.MustParsePath("MedicationRequest.authoredOn")},
	}

	imagingStudyProjection = fhir.Projection{
		{Name: "coding_system", Path: fhir.MustParsePath("ImagingStudy.procedureCode.coding.system")},
		{Name: "coding_code", Path: fhir.MustParsePath("ImagingStudy.procedureCode.coding.code")},
		{Name: "coding_display", Path: fhir.MustParsePath("ImagingStudy.procedureCode.coding.display")},
		{Name: "id", Path: fhir.MustParsePath("ImagingStudy.id")},
		{Name: "picture_id", Path: fhir.MustParsePath("ImagingStudy.identifier.value")},
		{Name: "encounter_id", Path: fhir.MustParsePath("ImagingStudy.encounter.reference")},
	}

	encounterProjection = fhir.Projection{
		{Name: "coding_system", Path: fhir.MustParsePath("Encounter.type.coding.system")},
		{Name: "coding_code", Path: fhir.MustParsePath("Encounter.type.coding.code")},
		{Name: "coding_display", Path: fhir.MustParsePath("Encounter.type.coding.display")},
		{Name: "id", Path: fhir.MustParsePath("Encounter.id")},
		{Name: "date", Path: fhir.MustParsePath("Encounter.period.start")},
	}
)

// LOINC code for "Hemoglobin A1c/Hemoglobin.total in Blood". The
// observation search is narrowed to it so a long history does not drown
// the page.
const hemoglobinA1cCode = "4548-4"

// FetchPatient looks the patient up by MR identifier. Zero matches is an
// error; the whole summary depends on this record.
func (s *Service) FetchPatient(ctx context.Context, patientID string) (*PatientIdentity, error) {
	params := url.Values{}
	params.Set("identifier", patientID)

	resources, err := s.fhir.Search(ctx, "Patient", params, 0)
	if err != nil {
		return nil, err
	}
	rows := patientProjection.ExtractRows(resources)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no patient found with identifier %s", patientID)
	}

	row := rows[0]
	return &PatientIdentity{
		GivenName:  row.String("given_name"),
		FamilyName: row.String("family_name"),
		BirthDate:  row.String("birth_date"),
		FHIRID:     row.String("fhir_id"),
		EHRID:      row.String("ehr_id"),
	}, nil
}

// FetchConditions returns the patient's most recent conditions, newest
// first, capped at one page.
func (s *Service) FetchConditions(ctx context.Context, fhirID string) ([]ClinicalRecord, error) {
	params := s.historyParams(fhirID, "-onset-date")
	resources, err := s.fhir.Search(ctx, "Condition", params, 1)
	if err != nil {
		return nil, err
	}
	return clinicalRecords(conditionProjection.ExtractRows(resources), false), nil
}

// FetchObservations returns the patient's most recent Hemoglobin A1c
// observations, newest first, capped at one page.
func (s *Service) FetchObservations(ctx context.Context, fhirID string) ([]ClinicalRecord, error) {
	params := s.historyParams(fhirID, "-date")
	params.Set("code", hemoglobinA1cCode)
	resources, err := s.fhir.Search(ctx, "Observation", params, 1)
	if err != nil {
		return nil, err
	}
	return clinicalRecords(observationProjection.ExtractRows(resources), true), nil
}

// FetchMedications returns the patient's most recent medication requests,
// newest first, capped at one page.
func (s *Service) FetchMedications(ctx context.Context, fhirID string) ([]ClinicalRecord, error) {
	params := s.historyParams(fhirID, "-authoredon")
	resources, err := s.fhir.Search(ctx, "MedicationRequest", params, 1)
	if err != nil {
		return nil, err
	}
	return clinicalRecords(medicationProjection.ExtractRows(resources), false), nil
}

// FetchImagingStudies returns the patient's most recent imaging studies
// with their encounter references and picture identifiers normalized to
// bare ids.
func (s *Service) FetchImagingStudies(ctx context.Context, fhirID string) ([]ImagingStudyRecord, error) {
	params := s.historyParams(fhirID, "-started")
	resources, err := s.fhir.Search(ctx, "ImagingStudy", params, 1)
	if err != nil {
		return nil, err
	}

	rows := imagingStudyProjection.ExtractRows(resources)
	studies := make([]ImagingStudyRecord, 0, len(rows))
	for _, row := range rows {
		studies = append(studies, ImagingStudyRecord{
			CodingSystem:  row.String("coding_system"),
			CodingCode:    row.String("coding_code"),
			CodingDisplay: row.String("coding_display"),
			ID:            row.String("id"),
			PictureID:     NormalizePictureID(row.String("picture_id")),
			EncounterID:   NormalizeReference(row.String("encounter_id")),
		})
	}
	return studies, nil
}

// FetchEncounters looks up each distinct encounter referenced by the
// imaging studies, preserving study order. Any single lookup failure fails
// the batch.
func (s *Service) FetchEncounters(ctx context.Context, studies []ImagingStudyRecord) ([]EncounterRecord, error) {
	seen := make(map[string]bool, len(studies))
	encounters := make([]EncounterRecord, 0, len(studies))

	for _, study := range studies {
		if study.EncounterID == "" || seen[study.EncounterID] {
			continue
		}
		seen[study.EncounterID] = true

		params := url.Values{}
		params.Set("_id", study.EncounterID)
		resources, err := s.fhir.Search(ctx, "Encounter", params, 0)
		if err != nil {
			return nil, err
		}

		for _, row := range encounterProjection.ExtractRows(resources) {
			encounters = append(encounters, EncounterRecord{
				CodingSystem:  row.String("coding_system"),
				CodingCode:    row.String("coding_code"),
				CodingDisplay: row.String("coding_display"),
				ID:            row.String("id"),
				Date:          row.String("date"),
			})
		}
	}
	return encounters, nil
}

func (s *Service) historyParams(fhirID, sort string) url.Values {
	params := url.Values{}
	params.Set("subject", fhirID)
	params.Set("_sort", sort)
	params.Set("_count", strconv.Itoa(s.pageSize))
	return params
}

func clinicalRecords(rows []fhir.Row, withValue bool) []ClinicalRecord {
	records := make([]ClinicalRecord, 0, len(rows))
	for _, row := range rows {
		rec := ClinicalRecord{
			CodingSystem:  row.String("coding_system"),
			CodingCode:    row.String("coding_code"),
			CodingDisplay: row.String("coding_display"),
			ID:            row.String("id"),
			Date:          row.String("date"),
		}
		if withValue {
			rec.Value = row.Float("value")
		}
		records = append(records, rec)
	}
	return records
}
