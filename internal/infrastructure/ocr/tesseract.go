package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// minWidth is the width below which label photos are upscaled before recognition
const minWidth = 1000

// Config holds Tesseract settings
type Config struct {
	Language    string
	PageSegMode int
}

// Reader extracts text from nutrition label photos with Tesseract
type Reader struct {
	language    string
	pageSegMode gosseract.PageSegMode
	logger      *zap.Logger
}

// NewReader creates a Reader; zero values default to English and a single uniform block
func NewReader(cfg Config, logger *zap.Logger) *Reader {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PageSegMode == 0 {
		cfg.PageSegMode = int(gosseract.PSM_SINGLE_BLOCK)
	}
	return &Reader{
		language:    cfg.Language,
		pageSegMode: gosseract.PageSegMode(cfg.PageSegMode),
		logger:      logger.Named("ocr"),
	}
}

// ReadText preprocesses img and returns the recognized text, or domain.ErrNoText
func (r *Reader) ReadText(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", domain.ErrNoText
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Preprocess(img), imaging.PNG); err != nil {
		return "", fmt.Errorf("encode preprocessed image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// gosseract clients are not safe for concurrent use
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(r.pageSegMode); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrNoText
	}

	r.logger.Debug("label text extracted", zap.Int("chars", len(text)))
	return text, nil
}

// Preprocess converts img to a high-contrast grayscale image suited to Tesseract
func Preprocess(img image.Image) *image.NRGBA {
	out := imaging.Grayscale(img)
	if w := out.Bounds().Dx(); w > 0 && w < minWidth {
		out = imaging.Resize(out, w*2, 0, imaging.Lanczos)
	}
	out = imaging.Blur(out, 0.5)
	out = imaging.AdjustContrast(out, 50)
	return imaging.Sharpen(out, 1.5)
}
