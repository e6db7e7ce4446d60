package gfx

// PixelFormat describes decoded bitmap pixels as the engine hands them to
// the renderer. Expansion of narrower source formats happens upstream.
type PixelFormat int

// Pixel formats.
const (
	PixelBGRA8 PixelFormat = iota
	PixelRGBA8
	PixelR8
	PixelBC1
	PixelBC2
	PixelBC3
	PixelBC7
)

// Compressed reports whether the format is block-compressed.
func (f PixelFormat) Compressed() bool {
	switch f {
	case PixelBC1, PixelBC2, PixelBC3, PixelBC7:
		return true
	default:
		return false
	}
}

// Bitmap is one decoded frame. Data holds exactly the bytes the format
// implies for Width by Height.
type Bitmap struct {
	Width  uint32
	Height uint32
	Format PixelFormat
	Data   []byte
}

// BitmapSource resolves texture IDs to decoded frames. Animated bitmaps
// return one frame per array layer; every layer must share dimensions and
// format. An empty slice means the bitmap is unavailable.
type BitmapSource interface {
	Frames(id TextureID) ([]Bitmap, error)
}
