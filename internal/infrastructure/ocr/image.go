// Package ocr prepares label photos for the OCR engine.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders for uploads
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/labelscan/labelscan/internal/domain"
)

// DefaultJPEGQuality is used when re-encoding the cropped region
const DefaultJPEGQuality = 90

// PrepareImage decodes an uploaded image, crops it to region (an empty region keeps
// the whole image), shrinks it to maxWidth when wider (0 disables scaling) and
// re-encodes the result as JPEG for the OCR engine.
func PrepareImage(data []byte, region domain.CropRegion, maxWidth int) ([]byte, error) {
	if len(data) == 0 {
		return nil, domain.ErrNoImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	rect, err := cropRect(img.Bounds(), region)
	if err != nil {
		return nil, err
	}

	width, height := scaledSize(rect.Dx(), rect.Dy(), maxWidth)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == rect.Dx() && height == rect.Dy() {
		draw.Copy(dst, image.Point{}, img, rect, draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: DefaultJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// cropRect converts a region relative to the image origin into image coordinates
func cropRect(bounds image.Rectangle, region domain.CropRegion) (image.Rectangle, error) {
	if region.IsEmpty() {
		return bounds, nil
	}
	if region.X < 0 || region.Y < 0 {
		return image.Rectangle{}, domain.ErrInvalidRegion
	}

	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height).
		Add(bounds.Min).
		Intersect(bounds)
	if rect.Empty() {
		return image.Rectangle{}, domain.ErrInvalidRegion
	}
	return rect, nil
}

// scaledSize keeps the aspect ratio while capping the width
func scaledSize(width, height, maxWidth int) (int, int) {
	if maxWidth <= 0 || width <= maxWidth {
		return width, height
	}
	scaled := height * maxWidth / width
	if scaled < 1 {
		scaled = 1
	}
	return maxWidth, scaled
}
