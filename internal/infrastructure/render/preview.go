package render

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Preview downscales a rendered poster to a thumbnail of the given width,
// preserving aspect ratio.
func Preview(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if width <= 0 || bounds.Dx() <= width {
		return img
	}
	height := bounds.Dy() * width / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
