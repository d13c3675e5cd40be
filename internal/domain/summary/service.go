package summary

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ehr/cds/internal/platform/fhir"
	"github.com/ehr/cds/internal/platform/imaging"
)

// Service aggregates one patient's clinical records from the FHIR server
// and the imaging service into a CompositeRecord. Stateless; safe for
// concurrent use.
type Service struct {
	fhir     *fhir.Client
	imaging  *imaging.Client
	pageSize int
	logger   zerolog.Logger
}

func NewService(fhirClient *fhir.Client, imagingClient *imaging.Client, pageSize int, logger zerolog.Logger) *Service {
	return &Service{
		fhir:     fhirClient,
		imaging:  imagingClient,
		pageSize: pageSize,
		logger:   logger,
	}
}

// BuildSummary assembles the composite record for the patient addressed by
// MR identifier. A failed patient lookup fails the whole build; every
// other category fails in isolation, leaving an error section in its slot.
// The CDS section is derived only when the observation fetch succeeded.
func (s *Service) BuildSummary(ctx context.Context, patientID string) (*CompositeRecord, error) {
	patient, err := s.FetchPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", patientID, err)
	}

	record := &CompositeRecord{PatientIdentity: *patient}
	fhirID := patient.FHIRID

	conditions, err := s.FetchConditions(ctx, fhirID)
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID).Msg("conditions fetch failed")
		record.Conditions = errorSection(categoryError("conditions", patientID))
	} else {
		record.Conditions = dataSection(conditions)
	}

	observations, obsErr := s.FetchObservations(ctx, fhirID)
	if obsErr != nil {
		s.logger.Error().Err(obsErr).Str("patient_id", patientID).Msg("observations fetch failed")
		record.Observations = errorSection(categoryError("observations", patientID))
	} else {
		record.Observations = dataSection(observations)
	}

	medications, err := s.FetchMedications(ctx, fhirID)
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID).Msg("medications fetch failed")
		record.Medications = errorSection(categoryError("medications", patientID))
	} else {
		record.Medications = dataSection(medications)
	}

	imagery, err := s.buildImagery(ctx, patient)
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID).Msg("imagery build failed")
		record.Imagery = errorSection(categoryError("imagery", patientID))
	} else {
		record.Imagery = dataSection(imagery)
	}

	if obsErr != nil {
		record.CDS = errorSection(categoryError("CDS", patientID))
	} else {
		record.CDS = dataSection(Classify(observations))
	}

	return record, nil
}

// buildImagery runs the study, encounter and picture fetches and merges
// them. The three steps fail as one branch.
func (s *Service) buildImagery(ctx context.Context, patient *PatientIdentity) ([]ImageryRow, error) {
	studies, err := s.FetchImagingStudies(ctx, patient.FHIRID)
	if err != nil {
		return nil, err
	}

	encounters, err := s.FetchEncounters(ctx, studies)
	if err != nil {
		return nil, err
	}

	pictures, err := s.imaging.GetPictures(ctx, patient.EHRID, pictureIDs(studies))
	if err != nil {
		return nil, err
	}

	return MergeImagery(studies, encounters, pictures), nil
}

// pictureIDs collects the distinct picture ids in study order.
func pictureIDs(studies []ImagingStudyRecord) []string {
	seen := make(map[string]bool, len(studies))
	ids := make([]string, 0, len(studies))
	for _, study := range studies {
		if study.PictureID == "" || seen[study.PictureID] {
			continue
		}
		seen[study.PictureID] = true
		ids = append(ids, study.PictureID)
	}
	return ids
}

func categoryError(category, patientID string) string {
	return fmt.Sprintf("Error getting %s for patient with id %s", category, patientID)
}

// FatalError is the body rendered when the patient lookup itself fails.
func FatalError(patientID string) string {
	return fmt.Sprintf("Error getting CDS data for patient with id %s", patientID)
}
