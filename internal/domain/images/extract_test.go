package images

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeBundle(t *testing.T, dir, name string, bundle map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(bundle)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func mediaBundle(imageData []byte) map[string]interface{} {
	return map[string]interface{}{
		"resourceType": "Bundle",
		"entry": []interface{}{
			map[string]interface{}{
				"resource": map[string]interface{}{
					"resourceType": "ImagingStudy",
					"id":           "study-1",
					"identifier": []interface{}{
						map[string]interface{}{"value": "urn:oid:pic-1"},
					},
				},
			},
			map[string]interface{}{
				"resource": map[string]interface{}{
					"resourceType": "Media",
					"partOf": []interface{}{
						map[string]interface{}{"reference": "urn:uuid:study-1"},
					},
					"content": map[string]interface{}{
						"data": base64.StdEncoding.EncodeToString(imageData),
					},
				},
			},
		},
	}
}

func TestExtractorRun(t *testing.T) {
	bundleDir := t.TempDir()
	imageDir := t.TempDir()
	imageData := []byte("jpeg bytes")

	writeBundle(t, bundleDir, "Ada_Lovelace.json", mediaBundle(imageData))

	x := NewExtractor(bundleDir, imageDir, zerolog.Nop())
	written, err := x.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected one image written, got %d", written)
	}

	got, err := os.ReadFile(filepath.Join(imageDir, "Ada_Lovelace_pic-1.jpg"))
	if err != nil {
		t.Fatalf("expected extracted image file: %v", err)
	}
	if string(got) != string(imageData) {
		t.Errorf("image content mismatch")
	}
}

func TestExtractorRun_IgnoresNonBundleFiles(t *testing.T) {
	bundleDir := t.TempDir()
	imageDir := t.TempDir()

	// lowercase-named and non-json files are not patient bundles
	if err := os.WriteFile(filepath.Join(bundleDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "practitioner.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	x := NewExtractor(bundleDir, imageDir, zerolog.Nop())
	written, err := x.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 0 {
		t.Errorf("expected no images, got %d", written)
	}
}

func TestExtractorRun_SkipsMediaWithoutStudy(t *testing.T) {
	bundleDir := t.TempDir()
	imageDir := t.TempDir()

	bundle := map[string]interface{}{
		"resourceType": "Bundle",
		"entry": []interface{}{
			map[string]interface{}{
				"resource": map[string]interface{}{
					"resourceType": "Media",
					"partOf": []interface{}{
						map[string]interface{}{"reference": "urn:uuid:missing-study"},
					},
					"content": map[string]interface{}{"data": "aGVsbG8="},
				},
			},
		},
	}
	writeBundle(t, bundleDir, "Bundle.json", bundle)

	x := NewExtractor(bundleDir, imageDir, zerolog.Nop())
	written, err := x.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 0 {
		t.Errorf("expected no images for unresolvable media, got %d", written)
	}
}
