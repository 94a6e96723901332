package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"ripple/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

const (
	// MaxAvatarDim bounds the longest avatar edge after normalization.
	MaxAvatarDim = 512
	// MaxBannerDim bounds the longest banner edge after normalization.
	MaxBannerDim = 1500

	webpQuality = 85
)

// NormalizeImage decodes an uploaded JPEG, PNG, or WebP image, scales it down
// so neither edge exceeds maxDim, and re-encodes it as WebP. Returns the
// encoded bytes and their content type.
func NormalizeImage(data []byte, maxDim int) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// image.Decode only knows registered formats; try webp explicitly.
		img, err = webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", models.NewValidationError("unsupported image format")
		}
	}

	img = resizeToFit(img, maxDim, maxDim)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/webp", nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
