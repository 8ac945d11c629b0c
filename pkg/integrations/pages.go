package integrations

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const defaultJPEGQuality = 85

// PageProcessor prepares downloaded pages for the book: pages wider than
// MaxWidth are scaled down and WebP pages are re-encoded as JPEG, since many
// EPUB readers cannot show WebP. Other pages pass through untouched.
type PageProcessor struct {
	MaxWidth int
	Quality  int
}

func NewPageProcessor(maxWidth int) *PageProcessor {
	return &PageProcessor{MaxWidth: maxWidth, Quality: defaultJPEGQuality}
}

func (p *PageProcessor) Process(page ImageData) (ImageData, error) {
	isWebP := strings.HasPrefix(strings.ToLower(page.ContentType), "image/webp")
	if !isWebP && p.MaxWidth <= 0 {
		return page, nil
	}

	if !isWebP {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(page.Content))
		if err != nil {
			return ImageData{}, fmt.Errorf("failed to read page %d header: %w", page.Index+1, err)
		}
		if cfg.Width <= p.MaxWidth {
			return page, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(page.Content))
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode page %d: %w", page.Index+1, err)
	}

	bounds := img.Bounds()
	width, height := p.calculateDimensions(bounds.Dx(), bounds.Dy())
	if width != bounds.Dx() || height != bounds.Dy() {
		img = resize(img, width, height)
	}

	quality := p.Quality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return ImageData{}, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return ImageData{
		Content:     buf.Bytes(),
		ContentType: "image/jpeg",
		Index:       page.Index,
	}, nil
}

// calculateDimensions fits width into MaxWidth keeping the aspect ratio.
func (p *PageProcessor) calculateDimensions(width, height int) (int, int) {
	if p.MaxWidth <= 0 || width <= p.MaxWidth {
		return width, height
	}
	scale := float64(p.MaxWidth) / float64(width)
	return p.MaxWidth, max(1, int(float64(height)*scale))
}

// resize scales img with CatmullRom, the best of x/image's kernels for
// downscaling text.
func resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
