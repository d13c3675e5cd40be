package fhir

import "testing"

var testProjection = Projection{
	{Name: "code", Path: MustParsePath("Condition.code.coding.code")},
	{Name: "id", Path: MustParsePath("Condition.id")},
	{Name: "date", Path: MustParsePath("Condition.onsetDateTime")},
}

func TestExtractRow(t *testing.T) {
	res := mustResource(t, `{
		"resourceType": "Condition",
		"id": "c1",
		"code": {"coding": [{"code": "X"}, {"code": "Y"}]}
	}`)

	row := testProjection.ExtractRow(res)

	// multi-match keeps every value
	codes, ok := row["code"].([]interface{})
	if !ok || len(codes) != 2 {
		t.Fatalf("expected two codes, got %v", row["code"])
	}
	// single match stays scalar
	if row["id"] != "c1" {
		t.Errorf("expected id c1, got %v", row["id"])
	}
	// no match means no key
	if _, present := row["date"]; present {
		t.Errorf("expected date to be absent, got %v", row["date"])
	}
}

func TestRowString_FirstMatch(t *testing.T) {
	res := mustResource(t, `{
		"resourceType": "Condition",
		"id": "c1",
		"code": {"coding": [{"code": "X"}, {"code": "Y"}]}
	}`)
	row := testProjection.ExtractRow(res)

	if got := row.String("code"); got != "X" {
		t.Errorf("expected first code X, got %q", got)
	}
	if got := row.String("date"); got != "" {
		t.Errorf("expected empty string for absent field, got %q", got)
	}
}

func TestRowFloat(t *testing.T) {
	proj := Projection{
		{Name: "value", Path: MustParsePath("Observation.valueQuantity.value")},
	}
	res := mustResource(t, `{
		"resourceType": "Observation",
		"valueQuantity": {"value": 6.2}
	}`)

	row := proj.ExtractRow(res)
	v := row.Float("value")
	if v == nil || *v != 6.2 {
		t.Errorf("expected 6.2, got %v", v)
	}

	empty := proj.ExtractRow(mustResource(t, `{"resourceType":"Observation"}`))
	if got := empty.Float("value"); got != nil {
		t.Errorf("expected nil for absent value, got %v", got)
	}
}

func TestExtractRows_OrderPreserved(t *testing.T) {
	resources := []map[string]interface{}{
		mustResource(t, `{"resourceType":"Condition","id":"c1"}`),
		mustResource(t, `{"resourceType":"Condition","id":"c2"}`),
	}

	rows := testProjection.ExtractRows(resources)
	if len(rows) != 2 || rows[0].String("id") != "c1" || rows[1].String("id") != "c2" {
		t.Errorf("expected rows in source order, got %v", rows)
	}
}
