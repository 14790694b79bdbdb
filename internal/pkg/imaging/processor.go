// Package imaging normalizes uploaded review photos: large images are
// shrunk to fit a bounding box and a cropped thumbnail is produced.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// Photo holds the encoded variants of one upload
type Photo struct {
	Full        []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	MaxWidth    int // bounding box of the full image
	MaxHeight   int
	ThumbWidth  int
	ThumbHeight int
	Quality     int // JPEG quality 1-100
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:    1600,
		MaxHeight:   1600,
		ThumbWidth:  320,
		ThumbHeight: 240,
		Quality:     85,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor. Zero fields take the defaults.
func NewProcessor(config Config) *Processor {
	def := DefaultConfig()
	if config.MaxWidth <= 0 {
		config.MaxWidth = def.MaxWidth
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = def.MaxHeight
	}
	if config.ThumbWidth <= 0 {
		config.ThumbWidth = def.ThumbWidth
	}
	if config.ThumbHeight <= 0 {
		config.ThumbHeight = def.ThumbHeight
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = def.Quality
	}
	return &Processor{config: config}
}

// Process decodes data, fits it inside the configured box and builds the
// thumbnail. PNG stays PNG; everything else is re-encoded as JPEG.
func (p *Processor) Process(data []byte) (*Photo, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	full := img
	if b := img.Bounds(); b.Dx() > p.config.MaxWidth || b.Dy() > p.config.MaxHeight {
		full = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}
	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)

	photo := &Photo{
		ContentType: "image/jpeg",
		Width:       full.Bounds().Dx(),
		Height:      full.Bounds().Dy(),
	}
	if format == "png" {
		photo.ContentType = "image/png"
	}

	if photo.Full, err = p.encode(full, photo.ContentType); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if photo.Thumbnail, err = p.encode(thumb, photo.ContentType); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return photo, nil
}

func (p *Processor) encode(img image.Image, contentType string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if contentType == "image/png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
