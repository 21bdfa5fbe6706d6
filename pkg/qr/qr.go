package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length used when no size is configured.
const DefaultSize = 512

// Generator renders QR code PNGs for room page URLs.
type Generator struct {
	size int
}

// NewGenerator constructs a Generator with a pixel size.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{size: size}
}

// Encode returns PNG bytes encoding the provided URL.
func (g *Generator) Encode(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("qr requires a target url")
	}
	png, err := qrcode.Encode(url, qrcode.Low, g.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
