package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound means no stored file matches the patient/image pair.
var ErrNotFound = errors.New("image not found")

// Service serves images off a flat directory. File names carry both the
// patient id and the image id, which is how lookups match them.
type Service struct {
	imageDir string
}

func NewService(imageDir string) *Service {
	return &Service{imageDir: imageDir}
}

// Lookup scans the image directory for a file whose name contains both
// ids and returns its metadata with the content base64-encoded.
func (s *Service) Lookup(patientID, imageID string) (*Image, error) {
	entries, err := os.ReadDir(s.imageDir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	var name string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.Contains(entry.Name(), patientID) && strings.Contains(entry.Name(), imageID) {
			name = entry.Name()
			break
		}
	}
	if name == "" {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.imageDir, name))
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", name, err)
	}

	return &Image{
		ID:        imageID,
		Type:      mime.TypeByExtension(filepath.Ext(name)),
		Image:     base64.StdEncoding.EncodeToString(data),
		SubjectID: patientID,
	}, nil
}
