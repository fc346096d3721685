package display

import (
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

//go:embed splash.b64
var splashData string

// ErrBitmapSize is returned when the pixel data does not match the header.
var ErrBitmapSize = errors.New("display: bitmap size mismatch")

// Bitmap is a 1-bit image stored row by row, eight horizontal pixels per
// byte with the most significant bit leftmost.
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

func (b *Bitmap) stride() int { return (b.Width + 7) / 8 }

// At reports whether the pixel at (x, y) is lit. Out of range is unlit.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Pix[y*b.stride()+x/8]&(0x80>>(x%8)) != 0
}

// DecodeBitmap decodes base64 data whose first two bytes are the width and
// height, followed by the packed rows.
func DecodeBitmap(encoded string) (*Bitmap, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode bitmap: %w", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: missing header", ErrBitmapSize)
	}
	b := &Bitmap{Width: int(raw[0]), Height: int(raw[1]), Pix: raw[2:]}
	if want := b.stride() * b.Height; len(b.Pix) != want {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrBitmapSize, b.Width, b.Height, want, len(b.Pix))
	}
	return b, nil
}

// Splash returns the logo shown when the clock view opens.
func Splash() (*Bitmap, error) {
	return DecodeBitmap(splashData)
}
