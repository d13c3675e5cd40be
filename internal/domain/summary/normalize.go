package summary

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeReference reduces a FHIR reference to a bare logical id.
// "Encounter/<id>" keeps the segment after the last '/'; if the remainder
// parses as a UUID it is canonicalized, which also strips a "urn:uuid:"
// wrapper. Anything else passes through unchanged.
func NormalizeReference(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id.String()
	}
	return ref
}

// NormalizePictureID reduces an imaging-study identifier such as
// "urn:oid:1.2.840.99999" to the substring after the last ':'.
func NormalizePictureID(id string) string {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		return id[i+1:]
	}
	return id
}
