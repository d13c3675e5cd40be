package imaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound marks an explicit negative answer from the imaging service:
// the patient/picture pair does not exist. Callers filter it rather than
// surfacing it.
var ErrNotFound = errors.New("picture not found")

// Picture is the metadata record the imaging service returns for one
// stored image.
type Picture struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Image     string `json:"image"` // base64 payload
	SubjectID string `json:"subject_id"`
}

// Client looks up picture metadata on the imaging service. Stateless and
// safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// GetPicture fetches metadata for one picture, keyed by the patient's EHR
// identifier and the normalized picture id. A missing picture — signalled
// either by a not-found status or by an error body — maps to ErrNotFound.
func (c *Client) GetPicture(ctx context.Context, ehrID, pictureID string) (*Picture, error) {
	target := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(ehrID), url.PathEscape(pictureID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for picture %s: %w", pictureID, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get picture %s: %w", pictureID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("status %d getting picture %s: %s", resp.StatusCode, pictureID, strings.TrimSpace(string(body)))
	}

	// The service answers 200 with an {"error": ...} body for unknown ids.
	var wire struct {
		Picture
		Err string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode picture %s: %w", pictureID, err)
	}
	if wire.Err != "" {
		return nil, ErrNotFound
	}
	return &wire.Picture, nil
}

// GetPictures fetches metadata for each distinct picture id. Pictures the
// service does not have are dropped from the result; any other failure
// aborts the whole lookup so the caller can fail the imagery branch.
func (c *Client) GetPictures(ctx context.Context, ehrID string, pictureIDs []string) ([]Picture, error) {
	pictures := make([]Picture, 0, len(pictureIDs))
	for _, id := range pictureIDs {
		pic, err := c.GetPicture(ctx, ehrID, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		pictures = append(pictures, *pic)
	}
	return pictures, nil
}
