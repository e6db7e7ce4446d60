package core

import (
	"github.com/voidworks/pulsar/vk"
)

// StageAccessForLayout returns the conservative synchronization2 stage
// and access masks for work touching an image in the given layout. The
// pair is used as the source mask when transitioning away from the
// layout and as the destination mask when transitioning into it.
func StageAccessForLayout(layout vk.ImageLayout) (vk.PipelineStageFlags2, vk.AccessFlags2) {
	switch layout {
	case vk.LayoutUndefined:
		return vk.StageTopOfPipe, vk.AccessNone
	case vk.LayoutColorAttachment:
		return vk.StageColorAttachmentOutput, vk.AccessColorAttachmentRead | vk.AccessColorAttachmentWrite
	case vk.LayoutDepthStencilAttachment, vk.LayoutDepthAttachment:
		return vk.StageEarlyFragmentTests | vk.StageLateFragmentTests, vk.AccessDepthStencilRead | vk.AccessDepthStencilWrite
	case vk.LayoutShaderReadOnly, vk.LayoutDepthStencilReadOnly:
		return vk.StageFragmentShader, vk.AccessShaderRead
	case vk.LayoutTransferSrc:
		return vk.StageTransfer, vk.AccessTransferRead
	case vk.LayoutTransferDst:
		return vk.StageTransfer, vk.AccessTransferWrite
	case vk.LayoutPresentSrc:
		// Presentation synchronizes externally.
		return vk.StageNone, vk.AccessNone
	default:
		return vk.StageAllCommands, vk.AccessMemoryRead | vk.AccessMemoryWrite
	}
}

// ImageLayoutBarrier builds a full-subresource barrier between two
// tracked layouts.
func ImageLayoutBarrier(image vk.Image, aspect vk.ImageAspectFlags, oldLayout, newLayout vk.ImageLayout) vk.ImageMemoryBarrier2 {
	srcStage, srcAccess := StageAccessForLayout(oldLayout)
	dstStage, dstAccess := StageAccessForLayout(newLayout)
	return vk.ImageMemoryBarrier2{
		SrcStageMask:  srcStage,
		SrcAccessMask: srcAccess,
		DstStageMask:  dstStage,
		DstAccessMask: dstAccess,
		OldLayout:     oldLayout,
		NewLayout:     newLayout,
		Image:         image,
		Subresource: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: vk.RemainingMipLevels,
			LayerCount: vk.RemainingArrayLayers,
		},
	}
}

// transitionImageLayout records a layout transition, no-op when the
// layouts already match.
func transitionImageLayout(cmd vk.CommandBuffer, image vk.Image, aspect vk.ImageAspectFlags, oldLayout, newLayout vk.ImageLayout) {
	if oldLayout == newLayout {
		return
	}
	cmd.CmdPipelineBarrier2(ImageLayoutBarrier(image, aspect, oldLayout, newLayout))
}
