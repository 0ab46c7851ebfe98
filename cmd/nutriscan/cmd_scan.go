package main

import (
	"fmt"
	"image"
	"os"

	"github.com/nutriscan/backend/internal/infrastructure/barcode"
	"github.com/nutriscan/backend/internal/infrastructure/imageio"
	"github.com/nutriscan/backend/internal/infrastructure/ocr"
	"github.com/nutriscan/backend/internal/usecase"
	"github.com/spf13/cobra"
)

// decodeCmd reads the barcode in a photo
var decodeCmd = &cobra.Command{
	Use:   "decode [image]",
	Short: "Decode the barcode in a PNG, JPEG or GIF photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

// ocrCmd reads a nutrition label photo
var ocrCmd = &cobra.Command{
	Use:   "ocr [image]",
	Short: "Read a nutrition label photo and print the parsed facts",
	Long: `Runs the label through the same preprocessing and Tesseract settings as
the server, then parses serving size, calories, ingredients, allergens and
nutrient lines. Requires the tesseract libraries to be installed.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

var showRawText bool

func init() {
	ocrCmd.Flags().BoolVar(&showRawText, "raw", false, "Include the raw OCR text in the output")
}

func runDecode(cmd *cobra.Command, args []string) error {
	img, err := readImageFile(args[0], cfg.Server.MaxUploadBytes)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	decoded, err := barcode.NewDecoder(logger).Decode(ctx, img)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), decoded)
}

func runOCR(cmd *cobra.Command, args []string) error {
	img, err := readImageFile(args[0], cfg.Server.MaxUploadBytes)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	reader := ocr.NewReader(ocr.Config{Language: cfg.OCR.Language, PageSegMode: cfg.OCR.PageSegMode}, logger)
	text, err := reader.ReadText(ctx, img)
	if err != nil {
		return err
	}

	facts := usecase.ParseLabel(text)
	if !showRawText {
		facts.RawText = ""
	}
	return printJSON(cmd.OutOrStdout(), facts)
}

// readImageFile loads an image from disk with the same limits and formats as uploads
func readImageFile(path string, limit int64) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := imageio.ReadLimited(f, limit)
	if err != nil {
		return nil, err
	}

	img, _, err := imageio.Decode(data)
	return img, err
}
