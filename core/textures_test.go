package core

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/voidworks/pulsar/vk"
)

func TestLayerSize(t *testing.T) {
	c := qt.New(t)

	c.Assert(LayerSize(64, 32, vk.FormatB8G8R8A8Unorm), qt.Equals, uint64(64*32*4))
	c.Assert(LayerSize(64, 32, vk.FormatR8Unorm), qt.Equals, uint64(64*32))

	// BC1 is 8 bytes per 4x4 block, the rest 16.
	c.Assert(LayerSize(64, 32, vk.FormatBc1RgbaUnorm), qt.Equals, uint64(16*8*8))
	c.Assert(LayerSize(64, 32, vk.FormatBc3Unorm), qt.Equals, uint64(16*8*16))

	// Non-multiple-of-four sizes round up to whole blocks.
	c.Assert(LayerSize(5, 5, vk.FormatBc1RgbaUnorm), qt.Equals, uint64(2*2*8))
}

func TestBuildUploadLayout(t *testing.T) {
	c := qt.New(t)

	layout := BuildUploadLayout(3, 3, vk.FormatR8Unorm, 3)
	c.Assert(layout.LayerSize, qt.Equals, uint64(9))
	// Layers start on copy-aligned offsets.
	c.Assert(layout.LayerOffsets, qt.DeepEquals, []uint64{0, 12, 24})
	c.Assert(layout.TotalSize, qt.Equals, uint64(36))
}

func TestBuildUploadLayoutSingleLayer(t *testing.T) {
	c := qt.New(t)

	layout := BuildUploadLayout(16, 16, vk.FormatB8G8R8A8Unorm, 1)
	c.Assert(layout.LayerOffsets, qt.DeepEquals, []uint64{0})
	c.Assert(layout.TotalSize, qt.Equals, uint64(16*16*4))
}

func TestBindlessSlotsReservations(t *testing.T) {
	c := qt.New(t)

	slots := newBindlessSlots()

	seen := make(map[uint32]bool)
	for {
		slot, ok := slots.acquire()
		if !ok {
			break
		}
		c.Assert(slot >= BindlessFirstDynamicSlot, qt.IsTrue)
		c.Assert(slot < MaxBindlessTextures, qt.IsTrue)
		c.Assert(seen[slot], qt.IsFalse)
		seen[slot] = true
	}
	c.Assert(seen, qt.HasLen, MaxBindlessTextures-BindlessFirstDynamicSlot)

	// Releasing a reserved built-in slot must not recycle it.
	slots.release(BindlessSlotFallback)
	slots.release(BindlessSlotDefaultBase)
	_, ok := slots.acquire()
	c.Assert(ok, qt.IsFalse)

	slots.release(BindlessFirstDynamicSlot)
	slot, ok := slots.acquire()
	c.Assert(ok, qt.IsTrue)
	c.Assert(slot, qt.Equals, uint32(BindlessFirstDynamicSlot))
}
