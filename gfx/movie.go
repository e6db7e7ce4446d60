package gfx

// MovieTextureHandle names a YCbCr movie texture owned by the renderer.
// Zero is invalid.
type MovieTextureHandle uint32

// IsValid reports whether the handle was minted by CreateMovieTexture.
func (h MovieTextureHandle) IsValid() bool { return h != 0 }

// MovieColorSpace selects the YCbCr matrix of a movie stream.
type MovieColorSpace int

// Movie color spaces.
const (
	MovieBT601 MovieColorSpace = iota
	MovieBT709
)

// MovieColorRange selects narrow (studio) or full range coefficients.
type MovieColorRange int

// Movie color ranges.
const (
	MovieNarrowRange MovieColorRange = iota
	MovieFullRange
)

// MoviePlanes carries one decoded frame as three planes. U and V are half
// resolution in both dimensions.
type MoviePlanes struct {
	Y, U, V                   []byte
	YStride, UStride, VStride int
}
