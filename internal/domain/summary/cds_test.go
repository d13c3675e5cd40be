package summary

import (
	"strings"
	"testing"
)

func obsWithValue(v float64) []ClinicalRecord {
	return []ClinicalRecord{{
		CodingCode:    "4548-4",
		CodingDisplay: "Hemoglobin A1c/Hemoglobin.total in Blood",
		ID:            "obs-1",
		Date:          "2023-06-01",
		Value:         &v,
	}}
}

func TestClassify_HighRisk(t *testing.T) {
	rec := Classify(obsWithValue(7.2))
	want := "The patient's Hemoglobin A1c level is 7.2%, which is above the normal range of 4% and 5.6%. The patient is considered HIGH RISK."
	if rec.Text != want {
		t.Errorf("got %q, want %q", rec.Text, want)
	}
}

func TestClassify_LowRisk(t *testing.T) {
	rec := Classify(obsWithValue(5.0))
	want := "The patient's Hemoglobin A1c level is 5%, which is within the normal range of 4% and 5.6%. The patient is considered LOW RISK."
	if rec.Text != want {
		t.Errorf("got %q, want %q", rec.Text, want)
	}
}

func TestClassify_BoundariesAreLowRisk(t *testing.T) {
	for _, v := range []float64{4.0, 5.6} {
		rec := Classify(obsWithValue(v))
		if !strings.Contains(rec.Text, "LOW RISK") {
			t.Errorf("value %v: expected LOW RISK, got %q", v, rec.Text)
		}
	}
}

func TestClassify_BelowRange(t *testing.T) {
	rec := Classify(obsWithValue(3.5))
	want := "The patient's Hemoglobin A1c level is 3.5%, which is below the normal range of 4% and 5.6%."
	if rec.Text != want {
		t.Errorf("got %q, want %q", rec.Text, want)
	}
	if strings.Contains(rec.Text, "RISK") {
		t.Errorf("below-range text must carry no risk label: %q", rec.Text)
	}
}

func TestClassify_NoObservations(t *testing.T) {
	want := "Hemoglobin A1c levels have not been reported for this patient. Unable to make CDS recommendation."
	if rec := Classify(nil); rec.Text != want {
		t.Errorf("got %q, want %q", rec.Text, want)
	}
}

func TestClassify_ObservationWithoutValue(t *testing.T) {
	rec := Classify([]ClinicalRecord{{ID: "obs-1"}})
	if !strings.Contains(rec.Text, "not been reported") {
		t.Errorf("expected no-data text, got %q", rec.Text)
	}
}

func TestClassify_UsesLatestObservation(t *testing.T) {
	high, low := 7.0, 5.0
	obs := []ClinicalRecord{
		{ID: "newest", Value: &high},
		{ID: "older", Value: &low},
	}
	if rec := Classify(obs); !strings.Contains(rec.Text, "HIGH RISK") {
		t.Errorf("expected the first (newest) observation to drive the result, got %q", rec.Text)
	}
}
