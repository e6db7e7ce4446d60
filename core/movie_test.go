package core

import (
	"testing"
	"unsafe"

	qt "github.com/frankban/quicktest"
)

func TestMovieStagingLayout(t *testing.T) {
	c := qt.New(t)

	tex := &movieTexture{width: 10, height: 10}
	tex.initStagingLayout()

	// Strides round up to the copy alignment; chroma planes are half
	// size in both dimensions.
	c.Assert(tex.yStride, qt.Equals, uint32(12))
	c.Assert(tex.uvStride, qt.Equals, uint32(8))
	c.Assert(tex.yOffset, qt.Equals, uint64(0))
	c.Assert(tex.uOffset, qt.Equals, uint64(120))
	c.Assert(tex.vOffset, qt.Equals, uint64(160))
	c.Assert(tex.frameSize, qt.Equals, uint64(200))
}

func TestMovieStagingLayoutAligned(t *testing.T) {
	c := qt.New(t)

	tex := &movieTexture{width: 64, height: 64}
	tex.initStagingLayout()

	c.Assert(tex.yStride, qt.Equals, uint32(64))
	c.Assert(tex.uvStride, qt.Equals, uint32(32))
	c.Assert(tex.uOffset, qt.Equals, uint64(64*64))
	c.Assert(tex.vOffset, qt.Equals, uint64(64*64+32*32))
	c.Assert(tex.frameSize, qt.Equals, uint64(64*64+2*32*32))
}

func TestCopyPlanePacked(t *testing.T) {
	c := qt.New(t)

	// 3x2 plane with a padded source stride of 4.
	src := []byte{
		1, 2, 3, 0,
		4, 5, 6, 0,
	}
	dst := make([]byte, 8)
	copyPlanePacked(unsafe.Pointer(&dst[0]), 4, src, 4, 3, 2)
	c.Assert(dst, qt.DeepEquals, []byte{1, 2, 3, 0, 4, 5, 6, 0})
}

func TestCopyPlanePackedBottomUp(t *testing.T) {
	c := qt.New(t)

	// Negative stride: rows are stored bottom-up and must flip.
	src := []byte{
		4, 5, 6, 0,
		1, 2, 3, 0,
	}
	dst := make([]byte, 8)
	copyPlanePacked(unsafe.Pointer(&dst[0]), 4, src, -4, 3, 2)
	c.Assert(dst, qt.DeepEquals, []byte{1, 2, 3, 0, 4, 5, 6, 0})
}
