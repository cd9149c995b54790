// Package profile turns a ring-fringe image into a one-dimensional
// radial intensity profile: intensity grid construction, pattern center
// refinement, distance binning, and the etalon frequency transform.
package profile

import (
	"image"

	"fringe-analysis/internal/spectrum"
)

// Image is an immutable grayscale intensity grid. Intensities are the
// channel mean (r+g+b)/3 in the 16-bit range, so a fully saturated
// pixel reads 65535 regardless of the source bit depth.
type Image struct {
	width  int
	height int
	pix    []float64
}

// FromImage converts any decoded raster into an intensity grid.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	im := &Image{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		pix:    make([]float64, bounds.Dx()*bounds.Dy()),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			im.pix[i] = float64(r+g+b) / 3
			i++
		}
	}
	return im
}

// FromPixels builds an intensity grid from a row-major slice. The slice
// is used directly, not copied.
func FromPixels(width, height int, pix []float64) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, &spectrum.InputError{Field: "image", Index: -1, Reason: "non-positive dimensions"}
	}
	if len(pix) != width*height {
		return nil, &spectrum.InputError{Field: "image", Index: -1, Reason: "pixel count does not match dimensions"}
	}
	return &Image{width: width, height: height, pix: pix}, nil
}

func (im *Image) Width() int  { return im.width }
func (im *Image) Height() int { return im.height }

// At returns the intensity at (x, y). No bounds check; callers stay
// inside [0,Width)×[0,Height).
func (im *Image) At(x, y int) float64 {
	return im.pix[y*im.width+x]
}

// SaturatedPixels counts pixels at or above the given intensity. The
// pipeline warns when the count is nonzero because clipped fringes bias
// the fit.
func (im *Image) SaturatedPixels(limit float64) int {
	n := 0
	for _, v := range im.pix {
		if v >= limit {
			n++
		}
	}
	return n
}

// Centroid returns the intensity-weighted center of mass, used as the
// default seed for center refinement.
func (im *Image) Centroid() Center {
	var sum, sx, sy float64
	i := 0
	for y := 0; y < im.height; y++ {
		for x := 0; x < im.width; x++ {
			v := im.pix[i]
			sum += v
			sx += v * float64(x)
			sy += v * float64(y)
			i++
		}
	}
	if sum == 0 {
		return Center{X: float64(im.width-1) / 2, Y: float64(im.height-1) / 2}
	}
	return Center{X: sx / sum, Y: sy / sum}
}
