// imageprocessor.go - Receipt image validation and OCR preprocessing

package processor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // decoded only to report it as unsupported
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Quality check messages shown to the user
const (
	MsgNoContent   = "❌ No se pudo obtener el contenido de la imagen."
	MsgNotAnImage  = "❌ El archivo no es una imagen válida. Por favor, envía un archivo JPG, PNG o WebP."
	MsgUnsupported = "❌ Formato no soportado (%s). Por favor, envía una imagen en formato JPG, PNG o WebP."
	MsgBlankImage  = "❌ La imagen parece estar en blanco o muy oscura. Por favor, envía una imagen más clara."
)

var supportedFormats = map[string]bool{"jpeg": true, "png": true, "webp": true}

// ValidateImageQuality decodes data and rejects unsupported formats and
// single-tone images. The returned message is user-facing.
func ValidateImageQuality(data []byte) (image.Image, string, bool) {
	if len(data) == 0 {
		return nil, MsgNoContent, false
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, MsgNotAnImage, false
	}
	if !supportedFormats[format] {
		return nil, fmt.Sprintf(MsgUnsupported, strings.ToUpper(format)), false
	}
	lo, hi := grayExtrema(img)
	if lo == hi {
		return nil, MsgBlankImage, false
	}
	return img, "", true
}

// grayExtrema returns the darkest and brightest luma values
func grayExtrema(img image.Image) (uint8, uint8) {
	gray := imaging.Grayscale(img)
	lo, hi := uint8(255), uint8(0)
	// Grayscale keeps R=G=B, so every 4th byte is enough
	for i := 0; i < len(gray.Pix); i += 4 {
		v := gray.Pix[i]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// PreprocessForOCR resizes and enhances img for OCR and returns JPEG bytes
func PreprocessForOCR(img image.Image, maxDimension int) ([]byte, string, error) {
	qualityScore := analyzeImageQuality(img)

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		if width > height {
			img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	// Adaptive processing based on quality score
	switch {
	case qualityScore < 50:
		img = applyAggressiveEnhancement(img)
	case qualityScore < 75:
		img = applyStandardEnhancement(img)
	default:
		img = applyLightEnhancement(img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, "", fmt.Errorf("failed to encode processed image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// analyzeImageQuality analyzes image and returns quality score (0-100)
func analyzeImageQuality(img image.Image) float64 {
	bounds := img.Bounds()

	var totalBrightness float64
	var minBrightness float64 = 255
	var maxBrightness float64 = 0
	pixelCount := 0

	// Sample pixels (every 10th pixel for performance)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 10 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 10 {
			r, g, b, _ := img.At(x, y).RGBA()
			brightness := (float64(r>>8) + float64(g>>8) + float64(b>>8)) / 3.0

			totalBrightness += brightness
			if brightness < minBrightness {
				minBrightness = brightness
			}
			if brightness > maxBrightness {
				maxBrightness = brightness
			}
			pixelCount++
		}
	}
	if pixelCount == 0 {
		return 0
	}

	avgBrightness := totalBrightness / float64(pixelCount)
	contrast := maxBrightness - minBrightness

	// Ideal: avgBrightness = 128, contrast = 200+
	brightnessScore := 100.0 - math.Abs(avgBrightness-128.0)/1.28
	contrastScore := math.Min(contrast/2.0, 100.0)

	// Weight: 40% brightness, 60% contrast
	return (brightnessScore * 0.4) + (contrastScore * 0.6)
}

// applyLightEnhancement for good quality images
func applyLightEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 1.5)
	result = imaging.AdjustContrast(result, 20)
	return imaging.Grayscale(result)
}

// applyStandardEnhancement for medium quality images
func applyStandardEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 2.5)
	result = imaging.AdjustContrast(result, 40)
	result = imaging.AdjustBrightness(result, 10)
	result = imaging.Grayscale(result)
	return imaging.AdjustGamma(result, 1.1)
}

// applyAggressiveEnhancement for dark, washed-out or blurry photos
func applyAggressiveEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 3.5)
	result = imaging.AdjustContrast(result, 55)
	result = imaging.AdjustBrightness(result, 20)
	result = imaging.Grayscale(result)
	result = imaging.AdjustGamma(result, 1.25)
	result = imaging.Blur(result, 0.5) // remove small noise
	return imaging.Sharpen(result, 2.0)
}

// ImageReference names a receipt when no archive is configured:
// temp_ref_{user}_{perceptual hash}.
func ImageReference(userID, hash string) string {
	return fmt.Sprintf("temp_ref_%s_%s", userID, hash)
}
