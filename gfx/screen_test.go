package gfx

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestApplyClip(t *testing.T) {
	c := qt.New(t)

	s := NewScreen(1024, 768)
	s.ApplyClip(100, 50, 200, 100, ResizeNone)

	// The clip origin becomes the screen offset; left and top stay zero.
	c.Assert(s.OffsetX, qt.Equals, 100)
	c.Assert(s.OffsetY, qt.Equals, 50)
	c.Assert(s.ClipLeft, qt.Equals, 0)
	c.Assert(s.ClipTop, qt.Equals, 0)
	c.Assert(s.ClipRight, qt.Equals, 199)
	c.Assert(s.ClipBottom, qt.Equals, 99)
	c.Assert(s.ClipWidth, qt.Equals, 200)
	c.Assert(s.ClipHeight, qt.Equals, 100)

	c.Assert(s.ClipAspect, qt.Equals, float32(2))
	c.Assert(s.ClipCenterX, qt.Equals, float32(199)*0.5)
	c.Assert(s.ClipCenterY, qt.Equals, float32(99)*0.5)
}

func TestApplyClipClamping(t *testing.T) {
	c := qt.New(t)

	s := NewScreen(640, 480)

	// Negative origins clamp to zero, oversize extents to the screen.
	s.ApplyClip(-20, -20, 5000, 5000, ResizeNone)
	c.Assert(s.OffsetX, qt.Equals, 0)
	c.Assert(s.OffsetY, qt.Equals, 0)
	c.Assert(s.ClipWidth, qt.Equals, 640)
	c.Assert(s.ClipHeight, qt.Equals, 480)

	// An origin past the edge pins to the last pixel.
	s.ApplyClip(700, 500, 10, 10, ResizeNone)
	c.Assert(s.OffsetX, qt.Equals, 639)
	c.Assert(s.OffsetY, qt.Equals, 479)
	c.Assert(s.ClipWidth, qt.Equals, 1)
	c.Assert(s.ClipHeight, qt.Equals, 1)

	// Degenerate extents become one pixel.
	s.ApplyClip(10, 10, 0, -5, ResizeNone)
	c.Assert(s.ClipWidth, qt.Equals, 1)
	c.Assert(s.ClipHeight, qt.Equals, 1)
}

func TestApplyClipReplaceSkipsClamping(t *testing.T) {
	c := qt.New(t)

	s := NewScreen(640, 480)
	s.ApplyClip(0, 0, 2000, 1500, ResizeReplace)
	c.Assert(s.ClipWidth, qt.Equals, 2000)
	c.Assert(s.ClipHeight, qt.Equals, 1500)
}

func TestResetClip(t *testing.T) {
	c := qt.New(t)

	s := NewScreen(800, 600)
	s.ApplyClip(10, 20, 30, 40, ResizeNone)
	s.ResetClip()

	c.Assert(s.OffsetX, qt.Equals, 0)
	c.Assert(s.OffsetY, qt.Equals, 0)
	c.Assert(s.ClipWidth, qt.Equals, 800)
	c.Assert(s.ClipHeight, qt.Equals, 600)
	c.Assert(s.ClipRight, qt.Equals, 799)
	c.Assert(s.ClipBottom, qt.Equals, 599)
}
