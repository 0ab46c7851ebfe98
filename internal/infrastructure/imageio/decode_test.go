package imageio

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngWithSize encodes a small PNG and rewrites its IHDR to claim w x h pixels.
// DecodeConfig only reads the header, so the claimed size is what Decode sees first.
func pngWithSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// signature(8) | length(4) | "IHDR"(4) | width(4) | height(4) | 5 bytes | crc(4)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func TestDecode(t *testing.T) {
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, sample()) },
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, sample(), nil) },
		"gif":  func(b *bytes.Buffer) error { return gif.Encode(b, sample(), nil) },
	}

	for format, encode := range encoders {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))

			img, got, err := Decode(buf.Bytes())

			require.NoError(t, err)
			assert.Equal(t, format, got)
			assert.Equal(t, 8, img.Bounds().Dx())
			assert.Equal(t, 4, img.Bounds().Dy())
		})
	}

	t.Run("rejects non-images", func(t *testing.T) {
		_, _, err := Decode([]byte("definitely not an image"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedImage)
	})

	t.Run("rejects oversized dimensions", func(t *testing.T) {
		sizes := []struct {
			name string
			w, h uint32
		}{
			{"too wide", MaxSide + 1, 1},
			{"too tall", 1, MaxSide + 1},
			{"too many pixels", 8000, 8000},
			{"decompression bomb", 20000, 20000},
		}
		for _, size := range sizes {
			img, _, err := Decode(pngWithSize(t, size.w, size.h))
			assert.ErrorIs(t, err, domain.ErrUnsupportedImage, size.name)
			assert.Nil(t, img, size.name)
		}
	})

	t.Run("accepts images within the budget", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2000, 1500))))

		img, _, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, 2000, img.Bounds().Dx())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, _, err := Decode(nil)
		assert.ErrorIs(t, err, domain.ErrUnsupportedImage)
	})
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = ReadLimited(strings.NewReader("123456"), 5)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
