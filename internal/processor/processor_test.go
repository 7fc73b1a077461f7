package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// boxImage is white with a black box in the upper-left quadrant
func boxImage(w, h int, invert bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255)
			if x < w/2 && y < h/2 {
				v = 0
			}
			if invert {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestValidateImageQuality(t *testing.T) {
	valid := encodePNG(t, boxImage(64, 64, false))
	if _, msg, ok := ValidateImageQuality(valid); !ok {
		t.Fatalf("valid png rejected: %s", msg)
	}

	blank := image.NewGray(image.Rect(0, 0, 32, 32))
	if _, msg, ok := ValidateImageQuality(encodePNG(t, blank)); ok || msg != MsgBlankImage {
		t.Fatalf("blank image got=%v,%q want=false,%q", ok, msg, MsgBlankImage)
	}

	var gifBuf bytes.Buffer
	if err := gif.Encode(&gifBuf, boxImage(16, 16, false), nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}
	if _, msg, ok := ValidateImageQuality(gifBuf.Bytes()); ok || !strings.Contains(msg, "(GIF)") {
		t.Fatalf("gif got=%v,%q want unsupported format", ok, msg)
	}

	if _, msg, ok := ValidateImageQuality([]byte("%PDF-1.4 not an image")); ok || msg != MsgNotAnImage {
		t.Fatalf("garbage got=%v,%q want=%q", ok, msg, MsgNotAnImage)
	}
	if _, msg, ok := ValidateImageQuality(nil); ok || msg != MsgNoContent {
		t.Fatalf("empty got=%v,%q want=%q", ok, msg, MsgNoContent)
	}
}

func hashOf(t *testing.T, img image.Image) string {
	t.Helper()
	h, err := PerceptualHash(img)
	if err != nil {
		t.Fatalf("PerceptualHash: %v", err)
	}
	return h
}

func TestPerceptualHash(t *testing.T) {
	a := hashOf(t, boxImage(200, 120, false))
	b := hashOf(t, boxImage(200, 120, false))
	if a != b {
		t.Fatalf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("hash length got=%d want=16", len(a))
	}
	if inv := hashOf(t, boxImage(200, 120, true)); inv == a {
		t.Fatalf("inverted image produced the same hash %s", a)
	}
	if _, err := PerceptualHash(nil); err == nil {
		t.Fatalf("expected error for nil image")
	}
}

func TestPreprocessForOCR(t *testing.T) {
	data, mime, err := PreprocessForOCR(boxImage(300, 100, false), 150)
	if err != nil {
		t.Fatalf("PreprocessForOCR: %v", err)
	}
	if mime != "image/jpeg" {
		t.Fatalf("mime got=%s want=image/jpeg", mime)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 150 || cfg.Height != 50 {
		t.Fatalf("size got=%dx%d want=150x50", cfg.Width, cfg.Height)
	}
}

func TestImageReference(t *testing.T) {
	hashA := hashOf(t, boxImage(50, 50, false))
	hashB := hashOf(t, boxImage(50, 50, true))
	refA := ImageReference("593999", hashA)
	if refA != "temp_ref_593999_"+hashA {
		t.Fatalf("ImageReference got=%s", refA)
	}
	// different receipts from the same user must not share a reference
	if refB := ImageReference("593999", hashB); refB == refA {
		t.Fatalf("two receipts share reference %s", refA)
	}
}

func TestTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp_images")
	now := time.Unix(1700000000, 0)

	name := TempFileName("593999", "media1", "jpg", now)
	if !strings.HasPrefix(name, "temp_") || !strings.HasSuffix(name, fmt.Sprintf("_%d.jpg", now.Unix())) {
		t.Fatalf("TempFileName got=%s", name)
	}

	oldPath, err := SaveTempFile(dir, name, []byte("old"))
	if err != nil {
		t.Fatalf("SaveTempFile: %v", err)
	}
	freshPath, _ := SaveTempFile(dir, "temp_fresh.jpg", []byte("fresh"))
	keepPath, _ := SaveTempFile(dir, "keep.txt", []byte("keep"))

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(keepPath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := CleanupTempFiles(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupTempFiles: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed got=%d want=1", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("old temp file still present")
	}
	for _, p := range []string{freshPath, keepPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s should remain: %v", p, err)
		}
	}

	RemoveTempFile(freshPath)
	RemoveTempFile(freshPath) // second call is a no-op
	if _, err := os.Stat(freshPath); !os.IsNotExist(err) {
		t.Fatalf("RemoveTempFile left the file")
	}
}
