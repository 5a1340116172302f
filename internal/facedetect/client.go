// Package facedetect talks to the external face landmark detector.
package facedetect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/breed-twin/internal/imaging"
)

const (
	defaultDetectorURL = "http://localhost:8000"

	// DefaultTimeout bounds a single detection call.
	DefaultTimeout = 5 * time.Second

	// MinConfidence drops low-confidence detections.
	MinConfidence = 0.5
)

// Client calls the detector's /detect/face endpoint.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates a detector client. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// detection is a single face as returned by the detector.
type detection struct {
	BBox      []float64   `json:"bbox"` // [x1, y1, x2, y2] in pixels
	DetScore  float64     `json:"det_score"`
	Landmarks [][]float64 `json:"landmarks"`
}

// detectResponse represents the response from /detect/face.
type detectResponse struct {
	FacesCount int         `json:"faces_count"`
	Faces      []detection `json:"faces"`
	Model      string      `json:"model"`
}

// Detect uploads img and returns faces with confidence of at least
// MinConfidence. When the detector does not answer within the timeout the
// call resolves to no faces rather than an error.
func (c *Client) Detect(ctx context.Context, img image.Image) ([]Face, error) {
	data, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.postMultipartImage(ctx, "/detect/face", data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return []Face{}, nil
		}
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	faces := make([]Face, 0, len(resp.Faces))
	for _, d := range resp.Faces {
		if d.DetScore < MinConfidence {
			continue
		}
		face, ok := d.toFace()
		if !ok {
			continue
		}
		faces = append(faces, face)
	}
	return faces, nil
}

func (d detection) toFace() (Face, bool) {
	if len(d.BBox) != 4 || len(d.Landmarks) < 6 {
		return Face{}, false
	}
	pts := make([]Point, 6)
	for i := range pts {
		if len(d.Landmarks[i]) < 2 {
			return Face{}, false
		}
		pts[i] = Point{X: d.Landmarks[i][0], Y: d.Landmarks[i][1]}
	}
	return Face{
		Box: Box{
			X:      d.BBox[0],
			Y:      d.BBox[1],
			Width:  d.BBox[2] - d.BBox[0],
			Height: d.BBox[3] - d.BBox[1],
		},
		Landmarks: Landmarks{
			RightEye:        pts[0],
			LeftEye:         pts[1],
			NoseTip:         pts[2],
			MouthCenter:     pts[3],
			RightEarTragion: pts[4],
			LeftEarTragion:  pts[5],
		},
		Confidence: d.DetScore,
	}, true
}

// postMultipartImage posts the image as the "file" form field.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", imaging.DetectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
