// phash.go - DCT perceptual hash used to deduplicate receipts

package processor

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// PerceptualHash returns the 64-bit DCT hash of img as 16 hex characters.
// Near-identical images (re-compressed, resized) give the same string.
func PerceptualHash(img image.Image) (string, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("perceptual hash failed: %w", err)
	}
	return fmt.Sprintf("%016x", h.GetHash()), nil
}
