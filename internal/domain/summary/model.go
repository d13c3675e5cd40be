package summary

import "encoding/json"

// PatientIdentity is the demographic slice of a Patient resource. EHRID is
// the MR (medical record) identifier the caller addressed the patient by,
// FHIRID the server-assigned logical id used for the follow-up searches.
type PatientIdentity struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	BirthDate  string `json:"birth_date"`
	FHIRID     string `json:"fhir_id"`
	EHRID      string `json:"ehr_id"`
}

// ClinicalRecord is one row of a patient's clinical history: a condition,
// an observation or a medication request. Value is set only for
// observations.
type ClinicalRecord struct {
	CodingSystem  string   `json:"coding_system"`
	CodingCode    string   `json:"coding_code"`
	CodingDisplay string   `json:"coding_display"`
	ID            string   `json:"id"`
	Date          string   `json:"date"`
	Value         *float64 `json:"value,omitempty"`
}

// ImagingStudyRecord is one ImagingStudy with its join keys already
// normalized. It is an intermediate shape; the merged ImageryRow is what
// reaches the response.
type ImagingStudyRecord struct {
	CodingSystem  string
	CodingCode    string
	CodingDisplay string
	ID            string
	PictureID     string
	EncounterID   string
}

// EncounterRecord is the encounter slice joined onto imaging studies.
type EncounterRecord struct {
	CodingSystem  string
	CodingCode    string
	CodingDisplay string
	ID            string
	Date          string
}

// ImageryRow is one imaging study merged with its encounter and picture.
// Encounter and picture fields are pointers so an unmatched side renders
// as null.
type ImageryRow struct {
	CodingSystemImage  string `json:"coding_system_image"`
	CodingCodeImage    string `json:"coding_code_image"`
	CodingDisplayImage string `json:"coding_display_image"`
	IDImage            string `json:"id_image"`

	CodingSystemEncounter  *string `json:"coding_system_encounter"`
	CodingCodeEncounter    *string `json:"coding_code_encounter"`
	CodingDisplayEncounter *string `json:"coding_display_encounter"`
	IDEncounter            *string `json:"id_encounter"`
	DateEncounter          *string `json:"date_encounter"`

	IDPicture   *string `json:"id_picture"`
	TypePicture *string `json:"type_picture"`
	DataPicture *string `json:"data_picture"`
	IDSubject   *string `json:"id_subject"`
}

// Recommendation is the CDS text derived from the latest Hemoglobin A1c
// observation.
type Recommendation struct {
	Text string `json:"text"`
}

// Section is a data-or-error slot in the composite record. A failed
// category serializes as {"error": "<message>"} in place of its payload.
type Section struct {
	Data interface{}
	Err  string
}

func dataSection(data interface{}) Section { return Section{Data: data} }
func errorSection(msg string) Section      { return Section{Err: msg} }

func (s Section) MarshalJSON() ([]byte, error) {
	if s.Err != "" {
		return json.Marshal(map[string]string{"error": s.Err})
	}
	return json.Marshal(s.Data)
}

// CompositeRecord is the full response body for one patient: identity
// fields inline, then one section per category.
type CompositeRecord struct {
	PatientIdentity

	Conditions   Section `json:"conditions"`
	Observations Section `json:"observations"`
	Medications  Section `json:"medications"`
	Imagery      Section `json:"imagery"`
	CDS          Section `json:"cds"`
}
