package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func createTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, createTestImage(40, 20, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("bounds = %v, want 40x20", img.Bounds())
	}
	if got := img.NRGBAAt(5, 5); got.R != 200 || got.G != 100 || got.B != 50 {
		t.Errorf("pixel = %v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(nil); err != ErrEmptyImage {
		t.Errorf("Decode(nil) error = %v, want ErrEmptyImage", err)
	}
	if _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Error("Decode(garbage) expected error")
	}
}

func TestToNRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 30, 20))
	out, err := ToNRGBA(src)
	if err != nil {
		t.Fatalf("ToNRGBA() error = %v", err)
	}
	if out.Bounds().Min != (image.Point{}) || out.Bounds().Dx() != 20 {
		t.Errorf("bounds = %v, want origin-anchored 20x10", out.Bounds())
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxSize       int
		wantW, wantH  int
	}{
		{"landscape", 600, 300, 300, 300, 150},
		{"portrait", 200, 800, 300, 75, 300},
		{"already small", 100, 50, 300, 100, 50},
		{"no limit", 500, 500, 0, 500, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Fit(createTestImage(tt.width, tt.height, color.White), tt.maxSize)
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("Fit() = %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte("GIF89a\x00\x00"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBP"), "image/webp"},
		{"short", []byte{0xFF}, "application/octet-stream"},
		{"unknown", []byte("plain text data"), "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMIMEType(tt.data); got != tt.want {
				t.Errorf("DetectMIMEType() = %q, want %q", got, tt.want)
			}
		})
	}
}
