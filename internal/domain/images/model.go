package images

// Image is the wire shape for one stored image: its id, MIME type, base64
// payload and the patient it belongs to.
type Image struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Image     string `json:"image"`
	SubjectID string `json:"subject_id"`
}
