package fhir

import (
	"encoding/json"
	"testing"
)

func mustResource(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad test resource: %v", err)
	}
	return m
}

func TestPath_SimpleNavigation(t *testing.T) {
	res := mustResource(t, `{"resourceType":"Patient","birthDate":"1970-01-01"}`)

	got := MustParsePath("Patient.birthDate").Evaluate(res)
	if len(got) != 1 || got[0] != "1970-01-01" {
		t.Errorf("expected [1970-01-01], got %v", got)
	}
}

func TestPath_ArrayFanOut(t *testing.T) {
	res := mustResource(t, `{
		"resourceType": "Condition",
		"code": {"coding": [
			{"code": "A"},
			{"code": "B"}
		]}
	}`)

	got := MustParsePath("Condition.code.coding.code").Evaluate(res)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("expected [A B], got %v", got)
	}
}

func TestPath_WhereFilter(t *testing.T) {
	res := mustResource(t, `{
		"resourceType": "Patient",
		"name": [
			{"use": "nickname", "given": ["Bobby"]},
			{"use": "official", "given": ["Robert"], "family": "Smith"}
		]
	}`)

	got := MustParsePath("Patient.name.where(use = 'official').given").Evaluate(res)
	if len(got) != 1 || got[0] != "Robert" {
		t.Errorf("expected [Robert], got %v", got)
	}
}

func TestPath_WhereWithAndConditions(t *testing.T) {
	res := mustResource(t, `{
		"resourceType": "Patient",
		"identifier": [
			{"type": {"coding": [{"system": "sys-a", "code": "SSN"}]}, "value": "999"},
			{"type": {"coding": [{"system": "http://terminology.hl7.org/CodeSystem/v2-0203", "code": "MR"}]}, "value": "mr-1"}
		]
	}`)

	path := MustParsePath("Patient.identifier.where(type.coding.system = 'http://terminology.hl7.org/CodeSystem/v2-0203' and type.coding.code = 'MR').value")
	got := path.Evaluate(res)
	if len(got) != 1 || got[0] != "mr-1" {
		t.Errorf("expected [mr-1], got %v", got)
	}
}

func TestPath_ResourceTypeHeadMismatch(t *testing.T) {
	res := mustResource(t, `{"resourceType":"Observation","id":"obs-1"}`)

	if got := MustParsePath("Patient.id").Evaluate(res); got != nil {
		t.Errorf("expected no matches for mismatched resource type, got %v", got)
	}
}

func TestPath_MissingFieldYieldsEmpty(t *testing.T) {
	res := mustResource(t, `{"resourceType":"Patient","id":"p1"}`)

	if got := MustParsePath("Patient.name.given").Evaluate(res); got != nil {
		t.Errorf("expected no matches for missing field, got %v", got)
	}
}

func TestPath_FilterOnScalarField(t *testing.T) {
	res := mustResource(t, `{
		"resourceType": "Bundle",
		"entry": [
			{"resource": {"resourceType": "Media", "id": "m1"}},
			{"resource": {"resourceType": "ImagingStudy", "id": "s1"}}
		]
	}`)

	got := MustParsePath("Bundle.entry.resource.where(resourceType = 'Media')").Evaluate(res)
	if len(got) != 1 {
		t.Fatalf("expected one media resource, got %v", got)
	}
	media := got[0].(map[string]interface{})
	if media["id"] != "m1" {
		t.Errorf("expected media m1, got %v", media["id"])
	}
}

func TestParsePath_Errors(t *testing.T) {
	cases := []string{
		"Patient.name.where(use)",
		"Patient.name.where(use = official)",
		"Patient.name.where()",
	}
	for _, expr := range cases {
		if _, err := ParsePath(expr); err == nil {
			t.Errorf("expected parse error for %q", expr)
		}
	}
}
