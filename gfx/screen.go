package gfx

// ResizeMode controls how 2D coordinates are scaled between the engine's
// nominal resolution and the actual framebuffer.
type ResizeMode int

// Resize modes.
const (
	ResizeNone ResizeMode = iota
	ResizeFull
	ResizeMenu
	ResizeReplace
)

// Screen is the engine's 2D screen state. It is owned by the host engine
// and handed to the clip routines by reference; the renderer holds no copy.
type Screen struct {
	MaxW, MaxH                 int
	MaxWUnscaled, MaxHUnscaled int

	CustomSize         bool
	RenderingToTexture int32 // -1 when rendering to the swapchain

	// Scale between unscaled (nominal) and scaled (framebuffer) coordinates.
	ScaleX, ScaleY float32

	OffsetX, OffsetY     int
	ClipLeft, ClipRight  int
	ClipTop, ClipBottom  int
	ClipWidth, ClipHeight int

	OffsetXUnscaled, OffsetYUnscaled     int
	ClipLeftUnscaled, ClipRightUnscaled  int
	ClipTopUnscaled, ClipBottomUnscaled  int
	ClipWidthUnscaled, ClipHeightUnscaled int

	ClipAspect              float32
	ClipCenterX, ClipCenterY float32
}

// NewScreen returns screen state for a framebuffer of the given size with
// no scaling and no clip applied.
func NewScreen(w, h int) *Screen {
	s := &Screen{
		MaxW: w, MaxH: h,
		MaxWUnscaled: w, MaxHUnscaled: h,
		RenderingToTexture: -1,
		ScaleX:             1, ScaleY: 1,
	}
	s.ApplyClip(0, 0, w, h, ResizeNone)
	return s
}

func (s *Screen) resizePos(x, y, w, h *int) {
	*x = int(float32(*x) * s.ScaleX)
	*y = int(float32(*y) * s.ScaleY)
	if w != nil {
		*w = int(float32(*w) * s.ScaleX)
	}
	if h != nil {
		*h = int(float32(*h) * s.ScaleY)
	}
}

func (s *Screen) unsizePos(x, y *int) {
	*x = int(float32(*x) / s.ScaleX)
	*y = int(float32(*y) / s.ScaleY)
}

// ApplyClip sets the clip rectangle following the engine's clip semantics:
// the clip origin becomes the screen offset and clip_{left,top} stay zero.
// Inputs are clamped to the valid range before any scaling is applied.
func (s *Screen) ApplyClip(x, y, w, h int, mode ResizeMode) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	toResize := mode != ResizeNone && mode != ResizeReplace &&
		(s.CustomSize || s.RenderingToTexture != -1)

	maxW, maxH := s.MaxW, s.MaxH
	if toResize {
		maxW, maxH = s.MaxWUnscaled, s.MaxHUnscaled
		if s.RenderingToTexture != -1 {
			s.unsizePos(&maxW, &maxH)
		}
	}

	if mode != ResizeReplace {
		if x >= maxW {
			x = maxW - 1
		}
		if y >= maxH {
			y = maxH - 1
		}
		if x+w > maxW {
			w = maxW - x
		}
		if y+h > maxH {
			h = maxH - y
		}
		if w > maxW {
			w = maxW
		}
		if h > maxH {
			h = maxH
		}
	}

	s.OffsetXUnscaled = x
	s.OffsetYUnscaled = y
	s.ClipLeftUnscaled = 0
	s.ClipRightUnscaled = w - 1
	s.ClipTopUnscaled = 0
	s.ClipBottomUnscaled = h - 1
	s.ClipWidthUnscaled = w
	s.ClipHeightUnscaled = h

	if toResize {
		s.resizePos(&x, &y, &w, &h)
	} else {
		s.unsizePos(&s.OffsetXUnscaled, &s.OffsetYUnscaled)
		s.unsizePos(&s.ClipRightUnscaled, &s.ClipBottomUnscaled)
		s.unsizePos(&s.ClipWidthUnscaled, &s.ClipHeightUnscaled)
	}

	s.OffsetX = x
	s.OffsetY = y
	s.ClipLeft = 0
	s.ClipRight = w - 1
	s.ClipTop = 0
	s.ClipBottom = h - 1
	s.ClipWidth = w
	s.ClipHeight = h

	s.ClipAspect = float32(w) / float32(h)
	s.ClipCenterX = float32(s.ClipLeft+s.ClipRight) * 0.5
	s.ClipCenterY = float32(s.ClipTop+s.ClipBottom) * 0.5
}

// ResetClip restores the clip rectangle to the full screen.
func (s *Screen) ResetClip() {
	s.ApplyClip(0, 0, s.MaxW, s.MaxH, ResizeNone)
}
