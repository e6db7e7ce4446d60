package core

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/voidworks/pulsar/vk"
)

func TestStageAccessForLayout(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		layout vk.ImageLayout
		stage  vk.PipelineStageFlags2
		access vk.AccessFlags2
	}{
		{vk.LayoutUndefined, vk.StageTopOfPipe, vk.AccessNone},
		{vk.LayoutColorAttachment, vk.StageColorAttachmentOutput, vk.AccessColorAttachmentRead | vk.AccessColorAttachmentWrite},
		{vk.LayoutDepthStencilAttachment, vk.StageEarlyFragmentTests | vk.StageLateFragmentTests, vk.AccessDepthStencilRead | vk.AccessDepthStencilWrite},
		{vk.LayoutShaderReadOnly, vk.StageFragmentShader, vk.AccessShaderRead},
		{vk.LayoutTransferSrc, vk.StageTransfer, vk.AccessTransferRead},
		{vk.LayoutTransferDst, vk.StageTransfer, vk.AccessTransferWrite},
		{vk.LayoutPresentSrc, vk.StageNone, vk.AccessNone},
	}
	for _, tt := range tests {
		stage, access := StageAccessForLayout(tt.layout)
		c.Assert(stage, qt.Equals, tt.stage)
		c.Assert(access, qt.Equals, tt.access)
	}
}

func TestImageLayoutBarrier(t *testing.T) {
	c := qt.New(t)

	barrier := ImageLayoutBarrier(vk.Image{}, vk.AspectColor, vk.LayoutColorAttachment, vk.LayoutShaderReadOnly)
	c.Assert(barrier.OldLayout, qt.Equals, vk.LayoutColorAttachment)
	c.Assert(barrier.NewLayout, qt.Equals, vk.LayoutShaderReadOnly)
	c.Assert(barrier.SrcStageMask, qt.Equals, vk.StageColorAttachmentOutput)
	c.Assert(barrier.DstStageMask, qt.Equals, vk.StageFragmentShader)
	c.Assert(barrier.Subresource.AspectMask, qt.Equals, vk.AspectColor)
	c.Assert(barrier.Subresource.LevelCount, qt.Equals, uint32(vk.RemainingMipLevels))
	c.Assert(barrier.Subresource.LayerCount, qt.Equals, uint32(vk.RemainingArrayLayers))
}
