package barcode

import (
	"context"
	"errors"
	"image"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
)

// Decoder finds retail 1D barcodes, Code 128/39 and QR codes in photos.
// It is safe for concurrent use.
type Decoder struct {
	hints  map[gozxing.DecodeHintType]interface{}
	logger *zap.Logger
}

// NewDecoder creates a Decoder that tries 1D formats first, then QR
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
		logger: logger.Named("barcode"),
	}
}

// newReaders builds a fresh reader set. gozxing readers keep scratch
// buffers between calls, so a set must not be shared across goroutines.
func (d *Decoder) newReaders() []gozxing.Reader {
	return []gozxing.Reader{
		oned.NewMultiFormatUPCEANReader(d.hints),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
		qrcode.NewQRCodeReader(),
	}
}

// Decode returns the first barcode found in img, or domain.ErrNoBarcode.
// The raw image is tried first, then an enhanced copy, then both rotated a quarter turn.
func (d *Decoder) Decode(ctx context.Context, img image.Image) (*domain.DecodedBarcode, error) {
	if img == nil {
		return nil, domain.ErrNoBarcode
	}

	enhanced := enhance(img)
	passes := []struct {
		name string
		img  func() image.Image
	}{
		{"raw", func() image.Image { return img }},
		{"enhanced", func() image.Image { return enhanced }},
		{"rotated", func() image.Image { return imaging.Rotate90(img) }},
		{"enhanced_rotated", func() image.Image { return imaging.Rotate90(enhanced) }},
	}

	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := d.decodeOnce(pass.img())
		if err == nil {
			d.logger.Debug("barcode decoded",
				zap.String("pass", pass.name),
				zap.String("format", result.Format))
			return result, nil
		}
		if !errors.Is(err, domain.ErrNoBarcode) {
			return nil, err
		}
	}

	return nil, domain.ErrNoBarcode
}

func (d *Decoder) decodeOnce(img image.Image) (*domain.DecodedBarcode, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, domain.ErrNoBarcode
	}

	for _, reader := range d.newReaders() {
		result, err := reader.Decode(bmp, d.hints)
		if err != nil || result == nil || result.GetText() == "" {
			continue
		}
		return &domain.DecodedBarcode{
			Text:   result.GetText(),
			Format: result.GetBarcodeFormat().String(),
		}, nil
	}
	return nil, domain.ErrNoBarcode
}

// enhance returns a grayscale, contrast-stretched and sharpened copy of img
func enhance(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 40)
	return imaging.Sharpen(gray, 1.0)
}
