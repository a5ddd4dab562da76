// Package imaging validates and processes user-uploaded images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// MaxUploadBytes bounds an accepted upload.
const MaxUploadBytes = 5 << 20

// jpegQuality is the encode quality for all processed output.
const jpegQuality = 85

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Validate checks the upload size limit and sniffs the content type
// against the allowed image formats. It returns the detected type.
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.ErrInvalidImage
	}
	if len(data) > MaxUploadBytes {
		return "", fmt.Errorf("upload of %d bytes exceeds %d: %w",
			len(data), MaxUploadBytes, apperrors.ErrFileTooLarge)
	}
	contentType := http.DetectContentType(data)
	if _, ok := allowedTypes[contentType]; !ok {
		return "", fmt.Errorf("content type %q: %w", contentType, apperrors.ErrInvalidFileType)
	}
	return contentType, nil
}

// decode parses the image and flattens any alpha channel onto a white
// background so JPEG output never shows black where transparency was.
func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", apperrors.ErrInvalidImage)
	}
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)
	return flat, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ProcessAvatar validates the upload and produces a 300x300 center
// cropped JPEG.
func ProcessAvatar(data []byte) ([]byte, error) {
	if _, err := Validate(data); err != nil {
		return nil, err
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fill(img, 300, 300, imaging.Center, imaging.Lanczos)
	return encodeJPEG(thumb)
}

// ProcessProductImage validates the upload and produces a JPEG bounded
// to 800x800, preserving aspect ratio without upscaling.
func ProcessProductImage(data []byte) ([]byte, error) {
	if _, err := Validate(data); err != nil {
		return nil, err
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() > 800 || bounds.Dy() > 800 {
		img = imaging.Fit(img, 800, 800, imaging.Lanczos)
	}
	return encodeJPEG(img)
}

// Decode is exposed for tests that need to inspect processed output.
func Decode(data []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}
	return img, nil
}
