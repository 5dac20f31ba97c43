package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// RecoveryLevel is the share of the symbol that may be damaged and still decode.
type RecoveryLevel = skipqrcode.RecoveryLevel

const (
	Low     = skipqrcode.Low
	Medium  = skipqrcode.Medium
	High    = skipqrcode.High
	Highest = skipqrcode.Highest
)

// DefaultSize is the image edge in pixels.
const DefaultSize = 256

const dataURLPrefix = "data:image/png;base64,"

// Renderer turns text into PNG QR images.
type Renderer struct {
	size  int
	level RecoveryLevel
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the image edge in pixels. Non-positive values keep the default.
func WithSize(px int) Option {
	return func(r *Renderer) {
		if px > 0 {
			r.size = px
		}
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(level RecoveryLevel) Option {
	return func(r *Renderer) {
		r.level = level
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{size: DefaultSize, level: Medium}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PNG encodes content as a QR PNG image.
func (r *Renderer) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	img, err := skipqrcode.Encode(content, r.level, r.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToRenderImage, err)
	}
	return img, nil
}

// DataURL encodes content as a QR PNG image wrapped in a data URI.
func (r *Renderer) DataURL(content string) (string, error) {
	img, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(img), nil
}

var defaultRenderer = NewRenderer()

// DataURL renders content with the default renderer.
func DataURL(content string) (string, error) {
	return defaultRenderer.DataURL(content)
}
