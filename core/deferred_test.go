package core

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDeferredTrackerNormalSequence(t *testing.T) {
	c := qt.New(t)

	var tracker deferredTracker
	tracker.begin()
	c.Assert(tracker.end(), qt.IsTrue)

	needEnd, ok := tracker.finish()
	c.Assert(ok, qt.IsTrue)
	c.Assert(needEnd, qt.IsFalse)
}

func TestDeferredTrackerFinishWithoutEnd(t *testing.T) {
	c := qt.New(t)

	var tracker deferredTracker
	tracker.begin()

	// The geometry phase is still open; finish must close it itself.
	needEnd, ok := tracker.finish()
	c.Assert(ok, qt.IsTrue)
	c.Assert(needEnd, qt.IsTrue)
}

func TestDeferredTrackerStrayCalls(t *testing.T) {
	c := qt.New(t)

	var tracker deferredTracker
	c.Assert(tracker.end(), qt.IsFalse)

	_, ok := tracker.finish()
	c.Assert(ok, qt.IsFalse)
}

func TestBuildCylinderMesh(t *testing.T) {
	c := qt.New(t)

	verts, indices := buildCylinderMesh(12)

	// Two rings of 12 plus the two cap centers.
	c.Assert(verts, qt.HasLen, (2*12+2)*3)
	// Twelve side quads at six indices each, plus two caps of twelve
	// triangles.
	c.Assert(indices, qt.HasLen, 12*6+2*12*3)

	for _, idx := range indices {
		c.Assert(int(idx) < len(verts)/3, qt.IsTrue)
	}

	// Top ring sits at z=0, bottom ring at z=-1.
	c.Assert(verts[2], qt.Equals, float32(0))
	c.Assert(verts[12*3+2], qt.Equals, float32(-1))
}

func TestLightVolumeLayout(t *testing.T) {
	c := qt.New(t)

	layout := lightVolumeLayout()
	c.Assert(layout.Components(), qt.HasLen, 1)
	c.Assert(layout.Stride(0), qt.Equals, 12)
	// The hash keys the deferred pipeline; it must be stable.
	c.Assert(layout.Hash(), qt.Equals, lightVolumeLayout().Hash())
}
