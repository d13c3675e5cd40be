package images

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ehr/cds/internal/platform/fhir"
)

var bundleFilePattern = regexp.MustCompile(`^[A-Z].*\.json$`)

var (
	mediaPath       = fhir.MustParsePath("Bundle.entry.resource.where(resourceType = 'Media')")
	mediaPartOfPath = fhir.MustParsePath("Media.partOf.reference")
	studyIdentPath  = fhir.MustParsePath("ImagingStudy.identifier.value")
)

// Extractor pulls the base64 images embedded as Media resources out of
// FHIR bundle files and writes them into the image directory, named
// <bundle>_<study id>.jpg so Lookup can match them later.
type Extractor struct {
	bundleDir string
	imageDir  string
	logger    zerolog.Logger
}

func NewExtractor(bundleDir, imageDir string, logger zerolog.Logger) *Extractor {
	return &Extractor{bundleDir: bundleDir, imageDir: imageDir, logger: logger}
}

// Run walks the bundle directory and extracts every Media payload whose
// parent ImagingStudy can be resolved. It returns the number of images
// written.
func (x *Extractor) Run() (int, error) {
	entries, err := os.ReadDir(x.bundleDir)
	if err != nil {
		return 0, fmt.Errorf("read bundle dir: %w", err)
	}

	written := 0
	for _, entry := range entries {
		if entry.IsDir() || !bundleFilePattern.MatchString(entry.Name()) {
			continue
		}
		n, err := x.extractBundle(entry.Name())
		if err != nil {
			return written, fmt.Errorf("extract %s: %w", entry.Name(), err)
		}
		written += n
	}
	return written, nil
}

func (x *Extractor) extractBundle(filename string) (int, error) {
	raw, err := os.ReadFile(filepath.Join(x.bundleDir, filename))
	if err != nil {
		return 0, err
	}
	var bundle map[string]interface{}
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return 0, fmt.Errorf("decode bundle: %w", err)
	}

	written := 0
	for _, m := range mediaPath.Evaluate(bundle) {
		media, ok := m.(map[string]interface{})
		if !ok {
			continue
		}

		refs := mediaPartOfPath.Evaluate(media)
		if len(refs) == 0 {
			x.logger.Warn().Str("bundle", filename).Msg("media without partOf reference, skipping")
			continue
		}
		studyID := tailAfterColon(fmt.Sprintf("%v", refs[0]))

		study := x.findStudy(bundle, studyID)
		if study == nil {
			x.logger.Warn().Str("bundle", filename).Str("study_id", studyID).Msg("referenced imaging study not in bundle, skipping")
			continue
		}
		idents := studyIdentPath.Evaluate(study)
		if len(idents) == 0 {
			x.logger.Warn().Str("bundle", filename).Str("study_id", studyID).Msg("imaging study without identifier, skipping")
			continue
		}
		imageID := tailAfterColon(fmt.Sprintf("%v", idents[0]))

		data, err := mediaData(media)
		if err != nil {
			return written, err
		}

		name := strings.TrimSuffix(filename, ".json") + "_" + imageID + ".jpg"
		if err := os.WriteFile(filepath.Join(x.imageDir, name), data, 0o644); err != nil {
			return written, fmt.Errorf("write image %s: %w", name, err)
		}
		x.logger.Info().Str("image", name).Msg("image extracted")
		written++
	}
	return written, nil
}

func (x *Extractor) findStudy(bundle map[string]interface{}, studyID string) map[string]interface{} {
	path, err := fhir.ParsePath(fmt.Sprintf("Bundle.entry.resource.where(resourceType = 'ImagingStudy' and id = '%s')", studyID))
	if err != nil {
		return nil
	}
	for _, r := range path.Evaluate(bundle) {
		if study, ok := r.(map[string]interface{}); ok {
			return study
		}
	}
	return nil
}

func mediaData(media map[string]interface{}) ([]byte, error) {
	content, ok := media["content"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("media has no content")
	}
	encoded, ok := content["data"].(string)
	if !ok {
		return nil, fmt.Errorf("media content has no data")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode media data: %w", err)
	}
	return data, nil
}

func tailAfterColon(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}
