package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/nutriscan/backend/internal/domain"
)

// Accepted upload formats, as reported by image.DecodeConfig
var allowedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
}

// Decoded bitmaps are bounded by these, whatever the compressed size
const (
	MaxSide   = 10000
	MaxPixels = 40_000_000
)

// Decode reads a PNG, JPEG or GIF image, applying EXIF orientation so camera photos are upright.
// Other formats, and images larger than MaxSide or MaxPixels, fail with domain.ErrUnsupportedImage.
func Decode(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || !allowedFormats[format] {
		return nil, "", domain.ErrUnsupportedImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxSide || cfg.Height > MaxSide ||
		int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d pixels exceeds the limit", domain.ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}
	return img, format, nil
}

// ReadLimited reads at most limit bytes from r, failing when the input is larger
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: image larger than %d bytes", domain.ErrInvalidRequest, limit)
	}
	return data, nil
}
