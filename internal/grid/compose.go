// Package grid lays out generated images on a single PNG canvas.
package grid

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Composer arranges exactly Want images into a Layout.
type Composer struct {
	layout Layout
	want   int
	scaler xdraw.Scaler
}

// Option configures a Composer.
type Option func(*Composer)

// WithScaler replaces the default bilinear scaler.
func WithScaler(s xdraw.Scaler) Option {
	return func(c *Composer) {
		if s != nil {
			c.scaler = s
		}
	}
}

// NewComposer builds a composer for want images in cells of cell pixels.
// NewComposer(4, 256) reproduces the 512x512 quadrant grid.
func NewComposer(want, cell int, opts ...Option) *Composer {
	if want < 1 {
		want = 1
	}
	c := &Composer{
		layout: LayoutFor(want, cell),
		want:   want,
		scaler: xdraw.BiLinear,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Layout returns the grid used by Compose.
func (c *Composer) Layout() Layout { return c.layout }

// Want returns the number of images Compose requires.
func (c *Composer) Want() int { return c.want }

// Compose decodes base64 image payloads and draws them, in order, into the
// grid cells, returning the PNG encoding. Extra payloads beyond Want are
// ignored; fewer fail with InsufficientImagesError before any decoding.
func (c *Composer) Compose(ctx context.Context, images []string) ([]byte, error) {
	if len(images) < c.want {
		return nil, &InsufficientImagesError{Want: c.want, Got: len(images)}
	}
	decoded, err := decodeAll(ctx, images[:c.want])
	if err != nil {
		return nil, err
	}
	canvas := image.NewRGBA(c.layout.Bounds())
	for i, img := range decoded {
		c.scaler.Scale(canvas, c.layout.CellRect(i), img, img.Bounds(), xdraw.Src, nil)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeAll decodes every payload concurrently. Results land at their own
// index so placement stays deterministic. On the first failure the others
// are cancelled and everything decoded so far is dropped.
func decodeAll(ctx context.Context, payloads []string) ([]image.Image, error) {
	out := make([]image.Image, len(payloads))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range payloads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := DecodeBase64(p)
			if err != nil {
				return &DecodeError{Index: i, Err: err}
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxDimension bounds either side of a decoded input. The header is checked
// before any pixel buffer is allocated.
const MaxDimension = 4096

// DecodeBase64 decodes one base64 payload into an image. A data URL prefix
// ("data:image/png;base64,") is accepted.
func DecodeBase64(payload string) (image.Image, error) {
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, &ImageSizeError{Width: cfg.Width, Height: cfg.Height, Max: MaxDimension}
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}
