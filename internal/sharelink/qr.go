package sharelink

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QR code size bounds in pixels.
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// QRCode renders link as a PNG QR code. Size is clamped to
// [MinQRSize, MaxQRSize]; zero means DefaultQRSize.
func QRCode(link string, size int) ([]byte, error) {
	switch {
	case size == 0:
		size = DefaultQRSize
	case size < MinQRSize:
		size = MinQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render QR code: %w", err)
	}
	return png, nil
}
