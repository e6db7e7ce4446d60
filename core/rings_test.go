package core

import (
	"testing"
	"unsafe"

	qt "github.com/frankban/quicktest"
)

func TestAlignUp(t *testing.T) {
	c := qt.New(t)

	c.Assert(alignUp(0, 16), qt.Equals, uint64(0))
	c.Assert(alignUp(1, 16), qt.Equals, uint64(16))
	c.Assert(alignUp(16, 16), qt.Equals, uint64(16))
	c.Assert(alignUp(17, 16), qt.Equals, uint64(32))
	c.Assert(alignUp(7, 1), qt.Equals, uint64(7))
	c.Assert(alignUp(7, 0), qt.Equals, uint64(7))
}

func testRing(size uint64, alignment uint64) (*RingBuffer, []byte) {
	backing := make([]byte, size)
	return &RingBuffer{
		mapped:    unsafe.Pointer(&backing[0]),
		size:      size,
		alignment: alignment,
	}, backing
}

func TestRingBufferAlignment(t *testing.T) {
	c := qt.New(t)
	ring, _ := testRing(256, 64)

	a, err := ring.Allocate(10)
	c.Assert(err, qt.IsNil)
	c.Assert(a.Offset, qt.Equals, uint64(0))

	b, err := ring.Allocate(10)
	c.Assert(err, qt.IsNil)
	c.Assert(b.Offset, qt.Equals, uint64(64))

	// Explicit alignment overrides the default.
	d, err := ring.AllocateAligned(4, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(d.Offset, qt.Equals, uint64(76))
	c.Assert(ring.Used(), qt.Equals, uint64(80))
}

func TestRingBufferOverflow(t *testing.T) {
	c := qt.New(t)
	ring, _ := testRing(64, 16)

	_, err := ring.Allocate(48)
	c.Assert(err, qt.IsNil)
	_, err = ring.Allocate(32)
	c.Assert(err, qt.IsNotNil)

	ring.Reset()
	c.Assert(ring.Used(), qt.Equals, uint64(0))
	_, err = ring.Allocate(32)
	c.Assert(err, qt.IsNil)
}

func TestRingBufferWrite(t *testing.T) {
	c := qt.New(t)
	ring, backing := testRing(64, 16)

	alloc, err := ring.Write([]byte{1, 2, 3, 4})
	c.Assert(err, qt.IsNil)
	c.Assert(alloc.Offset, qt.Equals, uint64(0))
	c.Assert(backing[:4], qt.DeepEquals, []byte{1, 2, 3, 4})
}
