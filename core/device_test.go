package core

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/voidworks/pulsar/vk"
)

func packVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

func TestScoreDeviceOrdering(t *testing.T) {
	c := qt.New(t)

	discrete14 := ScoreDevice(vk.DeviceTypeDiscrete, packVersion(1, 4, 0))
	integrated14 := ScoreDevice(vk.DeviceTypeIntegrated, packVersion(1, 4, 0))
	discrete13 := ScoreDevice(vk.DeviceTypeDiscrete, packVersion(1, 3, 290))
	virtual14 := ScoreDevice(vk.DeviceTypeVirtual, packVersion(1, 4, 0))
	cpu14 := ScoreDevice(vk.DeviceTypeCPU, packVersion(1, 4, 0))

	// Type dominates the API version.
	c.Assert(discrete13 > integrated14, qt.IsTrue)
	c.Assert(integrated14 > virtual14, qt.IsTrue)
	c.Assert(virtual14 > cpu14, qt.IsTrue)

	// Within a type, newer API wins.
	c.Assert(discrete14 > discrete13, qt.IsTrue)
}

func TestScoreDeviceIgnoresPatch(t *testing.T) {
	c := qt.New(t)

	a := ScoreDevice(vk.DeviceTypeDiscrete, packVersion(1, 3, 0))
	b := ScoreDevice(vk.DeviceTypeDiscrete, packVersion(1, 3, 999))
	c.Assert(a, qt.Equals, b)
}

func TestPipelineCacheBlobRoundTrip(t *testing.T) {
	c := qt.New(t)

	uuid := [vk.UUIDSize]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	header := encodePipelineCacheHeader(0x1002, 0xABCD, uuid)
	blob := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	data := append(header[:], blob...)

	c.Assert(validatePipelineCacheBlob(data, 0x1002, 0xABCD, uuid), qt.DeepEquals, blob)
}

func TestPipelineCacheBlobMismatch(t *testing.T) {
	c := qt.New(t)

	uuid := [vk.UUIDSize]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	header := encodePipelineCacheHeader(0x1002, 0xABCD, uuid)
	data := append(header[:], 1, 2, 3)

	otherUUID := uuid
	otherUUID[15] = 0x42

	c.Assert(validatePipelineCacheBlob(data, 0x10DE, 0xABCD, uuid), qt.IsNil)
	c.Assert(validatePipelineCacheBlob(data, 0x1002, 0x1234, uuid), qt.IsNil)
	c.Assert(validatePipelineCacheBlob(data, 0x1002, 0xABCD, otherUUID), qt.IsNil)
	c.Assert(validatePipelineCacheBlob(data[:10], 0x1002, 0xABCD, uuid), qt.IsNil)
}
