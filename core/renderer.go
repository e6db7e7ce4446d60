package core

import (
	"math"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// stressBufferCount is how many dynamic buffers stress mode churns per
// frame to exercise the deferred-release path.
const stressBufferCount = 64

// RecordingFrame is the capability token for an open recording. Only
// BeginRecording mints one, so draw entry points taking a FrameCtx
// cannot run outside a recording.
type RecordingFrame struct {
	frame      *Frame
	frameIndex uint32
	imageIndex uint32
}

// FrameCtx is what the public draw API operates on.
type FrameCtx struct {
	Renderer  *Renderer
	Recording *RecordingFrame
}

// Cmd returns the recording's command buffer.
func (c FrameCtx) Cmd() vk.CommandBuffer { return c.Recording.frame.Cmd() }

type inFlightSubmission struct {
	frameIndex uint32
	imageIndex uint32
	serial     uint64
}

// sceneTextureState tracks an open scene capture window. hdr selects
// the real tone curve at SceneTextureEnd; without it the tonemapper
// runs as a clamp-only passthrough.
type sceneTextureState struct {
	active bool
	hdr    bool
}

// ScreenshotHook receives the swapchain image outside any rendering
// scope, in ColorAttachment layout, and must leave it in that layout.
type ScreenshotHook func(cmd vk.CommandBuffer, image vk.Image, extent vk.Extent2D)

// Renderer drives the frame loop: N frames in flight, a device-wide
// timeline semaphore whose value is the submission serial, and deferred
// resource retirement collected at every recording boundary.
type Renderer struct {
	cfg Configuration

	deviceCtx *DeviceContext
	device    vk.Device
	queue     vk.Queue

	layouts   *DescriptorLayouts
	targets   *RenderTargets
	session   *Session
	shaders   *ShaderManager
	pipelines *PipelineManager
	buffers   *BufferManager
	textures  *TextureManager
	movies    *MovieManager
	volumes   *LightVolumes

	frames    [MaxFramesInFlight]*Frame
	available []uint32
	inFlight  []inFlightSubmission

	timeline        vk.Semaphore
	submitSerial    uint64
	completedSerial uint64

	// cpuFrame is the monotonic recording counter feeding texture LRU
	// bookkeeping. Unlike frameIndex it never repeats.
	cpuFrame uint64

	globalSet vk.DescriptorSet
	deferred  deferredTracker
	scene     sceneTextureState
	smaa      smaaLookups

	tonemap     TonemapperUBO
	lightshafts *LightshaftsUBO
	postFx      *PostEffectsUBO

	vertexHeap    gfx.BufferHandle
	stressBuffers []gfx.BufferHandle

	screenshot ScreenshotHook

	recording *RecordingFrame

	loggedNoSceneCapture bool
}

// NewRenderer brings up the whole core. createSurface runs against the
// freshly created instance; instanceExtensions come from the windowing
// host.
func NewRenderer(cfg Configuration, instanceExtensions []string, createSurface func(vk.Instance) (vk.Surface, error), bitmaps gfx.BitmapSource) (*Renderer, error) {
	deviceCtx, err := NewDeviceContext(cfg, instanceExtensions, createSurface)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:       cfg,
		deviceCtx: deviceCtx,
		tonemap:   TonemapperUBO{Tonemapper: TonemapperLinear, Exposure: 1},
	}
	if err := r.initialize(bitmaps); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) initialize(bitmaps gfx.BitmapSource) error {
	ok, err := r.deviceCtx.CreateSwapchain()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("surface has zero extent at init")
	}
	r.device = r.deviceCtx.Device()
	r.queue = r.deviceCtx.Queue()
	caps := r.deviceCtx.Caps()
	memProps := r.deviceCtx.MemoryProperties()
	limits := r.deviceCtx.Properties().Limits

	r.layouts, err = NewDescriptorLayouts(r.device)
	if err != nil {
		return err
	}

	r.targets, err = NewRenderTargets(r.device, r.deviceCtx.Physical(), memProps, r.deviceCtx.SwapchainExtent())
	if err != nil {
		return err
	}
	if caps.SwapchainTransferSrc {
		if err := r.targets.CreateSceneColor(r.deviceCtx.SwapchainFormat(), len(r.deviceCtx.SwapchainImages())); err != nil {
			return err
		}
	}

	r.session = NewSession(r.targets, r.layouts, caps.SupportsEDS3, caps.EDS3)
	r.session.SetSwapchain(r.deviceCtx.SwapchainImages(), r.deviceCtx.SwapchainViews(),
		r.deviceCtx.SwapchainFormat(), r.deviceCtx.SwapchainExtent())

	r.shaders = NewShaderManager(r.device, r.cfg.ShaderDirectory)
	r.pipelines = NewPipelineManager(r.device, r.layouts, r.deviceCtx.PipelineCache(),
		caps.SupportsEDS3, caps.EDS3, caps.VertexDivisor)

	r.buffers, err = NewBufferManager(r.device, memProps, r.queue, r.deviceCtx.QueueFamily())
	if err != nil {
		return err
	}
	r.textures, err = NewTextureManager(r.device, r.deviceCtx.Physical(), memProps,
		r.queue, r.deviceCtx.QueueFamily(), bitmaps)
	if err != nil {
		return err
	}
	r.movies = NewMovieManager(r.device, r.deviceCtx.Physical(), memProps,
		caps.SamplerYcbcr, r.deviceCtx.SwapchainFormat(), r.deviceCtx.PipelineCache(), r.shaders)

	r.volumes, err = NewLightVolumes(r.buffers)
	if err != nil {
		return err
	}

	for i := range r.frames {
		frame, err := NewFrame(r.device, memProps, r.deviceCtx.QueueFamily(), r.layouts, limits)
		if err != nil {
			return err
		}
		r.frames[i] = frame
		r.available = append(r.available, uint32(i))
	}

	r.timeline, err = r.device.CreateTimelineSemaphore(0)
	if err != nil {
		return errors.Wrap(err, "vk.CreateTimelineSemaphore()")
	}

	r.globalSet, err = r.layouts.AllocateGlobalSet()
	if err != nil {
		return err
	}
	r.writeGlobalDescriptors()

	if err := r.createSmaaLookups(); err != nil {
		log.WithError(err).Warn("SMAA lookup tables unavailable, falling back to FXAA")
	}
	return nil
}

// writeGlobalDescriptors points the global set at the current G-buffer
// and depth attachments. Rewritten after every render-target resize.
func (r *Renderer) writeGlobalDescriptors() {
	writes := make([]vk.WriteDescriptorSet, 0, GBufferCount+1)
	sampler := r.targets.GBufferSampler()

	gbufferWrite := func(binding uint32, index int) vk.WriteDescriptorSet {
		return vk.WriteDescriptorSet{
			DstBinding: binding,
			Type:       vk.DescriptorCombinedImageSampler,
			Images: []vk.DescriptorImageInfo{{
				Sampler:     sampler,
				ImageView:   r.targets.GBufferView(index),
				ImageLayout: vk.LayoutShaderReadOnly,
			}},
		}
	}

	writes = append(writes,
		gbufferWrite(0, 0),
		gbufferWrite(1, 1),
		gbufferWrite(2, 2),
		vk.WriteDescriptorSet{
			DstBinding: 3,
			Type:       vk.DescriptorCombinedImageSampler,
			Images: []vk.DescriptorImageInfo{{
				Sampler:     r.targets.DepthSampler(),
				ImageView:   r.targets.DepthSampledView(),
				ImageLayout: r.targets.DepthReadLayout(),
			}},
		},
		gbufferWrite(4, 3),
		gbufferWrite(5, GBufferEmissiveIndex),
	)
	r.device.UpdateDescriptorSets(r.globalSet, writes)
}

// BeginRecording opens the next frame per the frame-loop contract:
// recycle a completed frame if none is available, acquire an image,
// collect deferred releases, flush texture uploads, re-sync the model
// set and start the session. Returns nil when the surface is 0x0 and no
// frame can be produced.
func (r *Renderer) BeginRecording() (*RecordingFrame, error) {
	if r.recording != nil {
		return nil, errors.New("recording already open")
	}

	if len(r.available) == 0 {
		if err := r.recycleOldestFrame(); err != nil {
			return nil, err
		}
	}
	frameIndex := r.available[0]
	frame := r.frames[frameIndex]

	imageIndex, ok, err := r.acquireImage(frame)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	r.available = r.available[1:]

	cmd := frame.Cmd()
	if err := cmd.Begin(vk.CommandBufferOneTimeSubmit); err != nil {
		return nil, errors.Wrap(err, "vk.BeginCommandBuffer()")
	}

	// Anything retired during this recording outlives the *next*
	// submission, not the current completed one.
	safeSerial := r.submitSerial + 1
	r.buffers.CollectGarbage(r.completedSerial)
	r.textures.CollectGarbage(r.completedSerial)
	r.movies.CollectGarbage(r.completedSerial)
	r.buffers.SetSafeRetireSerial(safeSerial)
	r.textures.SetSafeRetireSerial(safeSerial)
	r.movies.SetSafeRetireSerial(safeSerial)
	r.cpuFrame++
	r.textures.SetCurrentFrame(r.cpuFrame)

	if r.cfg.Stress {
		r.churnStressBuffers()
	}

	// New residents must land before the model set is rebuilt.
	r.textures.FlushPendingUploads(cmd, frame.Staging())
	frame.SyncModelDescriptors(r.vertexHeapBuffer(), r.textures.BindlessImages())

	r.session.BeginFrame(cmd, imageIndex)

	r.recording = &RecordingFrame{frame: frame, frameIndex: frameIndex, imageIndex: imageIndex}
	return r.recording, nil
}

func (r *Renderer) recycleOldestFrame() error {
	popped := r.inFlight[0]
	r.inFlight = r.inFlight[1:]
	frame := r.frames[popped.frameIndex]

	if err := r.device.WaitForFence(frame.Fence(), math.MaxUint64); err != nil {
		return errors.Wrap(err, "vk.WaitForFences(): frame recycle")
	}
	value, err := r.device.GetSemaphoreCounterValue(r.timeline)
	if err != nil {
		return errors.Wrap(err, "vk.GetSemaphoreCounterValue()")
	}
	if value > r.completedSerial {
		r.completedSerial = value
	}
	if r.completedSerial < popped.serial {
		log.Errorf("timeline value %d behind fenced submission %d", r.completedSerial, popped.serial)
		r.completedSerial = popped.serial
	}

	if err := frame.Reset(); err != nil {
		return err
	}
	r.available = append(r.available, popped.frameIndex)
	return nil
}

// acquireImage acquires the next swapchain image, recreating the
// swapchain once on out-of-date. ok is false when the surface is 0x0.
func (r *Renderer) acquireImage(frame *Frame) (uint32, bool, error) {
	for attempt := 0; ; attempt++ {
		index, err := r.device.AcquireNextImage(r.deviceCtx.Swapchain(), math.MaxUint64, frame.ImageAvailable())
		switch {
		case err == nil:
			return index, true, nil
		case errors.Is(err, vk.Suboptimal):
			// The image is still valid; recreate after presenting it.
			return index, true, nil
		case errors.Is(err, vk.ErrOutOfDate) && attempt == 0:
			ok, err := r.recreateSwapchain()
			if err != nil {
				return 0, false, err
			}
			if !ok {
				return 0, false, nil
			}
		default:
			return 0, false, errors.Wrap(err, "vk.AcquireNextImage()")
		}
	}
}

// recreateSwapchain rebuilds the swapchain and everything sized to it.
// ok is false for a 0x0 surface.
func (r *Renderer) recreateSwapchain() (bool, error) {
	if err := r.device.WaitIdle(); err != nil {
		return false, errors.Wrap(err, "vk.DeviceWaitIdle(): swapchain recreate")
	}
	ok, err := r.deviceCtx.CreateSwapchain()
	if err != nil || !ok {
		return ok, err
	}

	extent := r.deviceCtx.SwapchainExtent()
	if err := r.targets.Resize(extent); err != nil {
		return false, err
	}
	if r.deviceCtx.Caps().SwapchainTransferSrc {
		if err := r.targets.CreateSceneColor(r.deviceCtx.SwapchainFormat(), len(r.deviceCtx.SwapchainImages())); err != nil {
			return false, err
		}
	}
	r.session.SetSwapchain(r.deviceCtx.SwapchainImages(), r.deviceCtx.SwapchainViews(),
		r.deviceCtx.SwapchainFormat(), extent)
	r.writeGlobalDescriptors()
	return true, nil
}

// AdvanceFrame closes the recording, submits it and presents. The next
// recording is the caller's move; a dropped frame (0x0 surface at
// recreate) leaves no recording open either.
func (r *Renderer) AdvanceFrame() error {
	rec := r.recording
	if rec == nil {
		return errors.New("no recording open")
	}
	r.recording = nil
	frame := rec.frame
	cmd := frame.Cmd()

	if r.scene.active {
		log.Error("scene texture still open at frame end, dropping it")
		r.scene = sceneTextureState{}
	}
	r.lightshafts = nil

	if prev, bound := r.session.BitmapTarget(); bound {
		log.Error("render target still bound at frame end, finalizing it")
		r.session.SuspendRendering(cmd)
		if err := r.textures.TransitionRenderTarget(cmd, prev.ID, vk.LayoutShaderReadOnly); err != nil {
			log.WithError(err).Error("render target finalize skipped")
		}
	}

	if r.screenshot != nil {
		r.session.SuspendRendering(cmd)
		r.screenshot(cmd, r.deviceCtx.SwapchainImages()[rec.imageIndex], r.deviceCtx.SwapchainExtent())
	}

	r.session.EndFrame(cmd, rec.imageIndex)
	if err := cmd.End(); err != nil {
		return errors.Wrap(err, "vk.EndCommandBuffer()")
	}

	if err := r.device.ResetFence(frame.Fence()); err != nil {
		return errors.Wrap(err, "vk.ResetFences()")
	}

	serial := r.submitSerial + 1
	renderFinished := r.deviceCtx.RenderFinished(rec.imageIndex)
	err := r.queue.Submit2(
		[]vk.SemaphoreSubmitInfo{{
			Semaphore: frame.ImageAvailable(),
			StageMask: vk.StageColorAttachmentOutput,
		}},
		[]vk.CommandBuffer{cmd},
		[]vk.SemaphoreSubmitInfo{
			{Semaphore: renderFinished, StageMask: vk.StageColorAttachmentOutput},
			{Semaphore: r.timeline, Value: serial, StageMask: vk.StageAllCommands},
		},
		frame.Fence())
	if err != nil {
		return errors.Wrap(err, "vk.QueueSubmit2()")
	}
	r.submitSerial = serial
	r.inFlight = append(r.inFlight, inFlightSubmission{
		frameIndex: rec.frameIndex,
		imageIndex: rec.imageIndex,
		serial:     serial,
	})

	err = r.queue.Present(r.deviceCtx.Swapchain(), rec.imageIndex, renderFinished)
	if errors.Is(err, vk.ErrOutOfDate) || errors.Is(err, vk.Suboptimal) {
		if _, err := r.recreateSwapchain(); err != nil {
			return err
		}
		return nil
	}
	return errors.Wrap(err, "vk.QueuePresent()")
}

// submitInitCommandsAndWait records one-shot setup work (lookup-texture
// uploads and similar) and blocks until the GPU ran it.
func (r *Renderer) submitInitCommandsAndWait(record func(cmd vk.CommandBuffer) error) error {
	pool, err := r.device.CreateCommandPool(r.deviceCtx.QueueFamily(), vk.CommandPoolTransient)
	if err != nil {
		return errors.Wrap(err, "vk.CreateCommandPool(): init")
	}
	defer r.device.DestroyCommandPool(pool)

	cmd, err := r.device.AllocateCommandBuffer(pool)
	if err != nil {
		return errors.Wrap(err, "vk.AllocateCommandBuffer(): init")
	}
	if err := cmd.Begin(vk.CommandBufferOneTimeSubmit); err != nil {
		return errors.Wrap(err, "vk.BeginCommandBuffer(): init")
	}
	if err := record(cmd); err != nil {
		return err
	}
	if err := cmd.End(); err != nil {
		return errors.Wrap(err, "vk.EndCommandBuffer(): init")
	}

	serial := r.submitSerial + 1
	err = r.queue.Submit2(nil, []vk.CommandBuffer{cmd},
		[]vk.SemaphoreSubmitInfo{{Semaphore: r.timeline, Value: serial, StageMask: vk.StageAllCommands}},
		vk.Fence{})
	if err != nil {
		return errors.Wrap(err, "vk.QueueSubmit2(): init")
	}
	r.submitSerial = serial

	if err := r.device.WaitSemaphore(r.timeline, serial, math.MaxUint64); err != nil {
		return errors.Wrap(err, "vk.WaitSemaphores(): init")
	}
	if serial > r.completedSerial {
		r.completedSerial = serial
	}
	return nil
}

// churnStressBuffers deletes and recreates a batch of dynamic buffers
// every frame so the deferred-release path runs constantly.
func (r *Renderer) churnStressBuffers() {
	for _, handle := range r.stressBuffers {
		if err := r.buffers.Delete(handle); err != nil {
			log.WithError(err).Warn("stress buffer delete failed")
		}
	}
	r.stressBuffers = r.stressBuffers[:0]

	payload := make([]byte, 256)
	for i := 0; i < stressBufferCount; i++ {
		handle, err := r.buffers.CreateBuffer(gfx.UniformBuffer, gfx.DynamicUsage)
		if err != nil {
			log.WithError(err).Warn("stress buffer create failed")
			return
		}
		if err := r.buffers.UpdateData(handle, payload); err != nil {
			log.WithError(err).Warn("stress buffer update failed")
			return
		}
		r.stressBuffers = append(r.stressBuffers, handle)
	}
}

// RegisterModelVertexHeap records the engine's vertex heap buffer. The
// VkBuffer behind it resolves lazily: the buffer manager may not have
// created it until the first upload.
func (r *Renderer) RegisterModelVertexHeap(handle gfx.BufferHandle) {
	r.vertexHeap = handle
}

func (r *Renderer) vertexHeapBuffer() vk.Buffer {
	if !r.vertexHeap.IsValid() {
		return vk.Buffer{}
	}
	buffer, err := r.buffers.Buffer(r.vertexHeap)
	if err != nil {
		return vk.Buffer{}
	}
	return buffer
}

// SetScreenshotHook installs the saved-screenshot blit callback.
func (r *Renderer) SetScreenshotHook(hook ScreenshotHook) { r.screenshot = hook }

// SetTonemapper installs the tone curve applied when an HDR scene
// capture ends. Sticky across frames.
func (r *Renderer) SetTonemapper(curve TonemapperUBO) { r.tonemap = curve }

// SetLightshafts schedules an additive light-shaft pass for this
// frame's scene capture end. The request never carries over: call it
// each frame the sun is on screen.
func (r *Renderer) SetLightshafts(params LightshaftsUBO) { r.lightshafts = &params }

// SetPostEffects installs the post-effect values applied at scene
// capture end. Sticky across frames; nil reverts to a plain copy
// resolve.
func (r *Renderer) SetPostEffects(effects *PostEffectsUBO) { r.postFx = effects }

// Buffers exposes the buffer protocol implementation.
func (r *Renderer) Buffers() *BufferManager { return r.buffers }

// Textures exposes the texture manager.
func (r *Renderer) Textures() *TextureManager { return r.textures }

// Movies exposes the movie manager.
func (r *Renderer) Movies() *MovieManager { return r.movies }

// Session exposes the rendering session.
func (r *Renderer) Session() *Session { return r.session }

// Caps returns the device capability flags.
func (r *Renderer) Caps() DeviceCaps { return r.deviceCtx.Caps() }

// Destroy drains the device and tears the core down in reverse order.
func (r *Renderer) Destroy() {
	if r.device != (vk.Device{}) {
		if err := r.device.WaitIdle(); err != nil {
			log.WithError(err).Warn("device wait on shutdown")
		}
	}
	for _, frame := range r.frames {
		if frame != nil {
			frame.Destroy()
		}
	}
	if r.timeline != (vk.Semaphore{}) {
		r.device.DestroySemaphore(r.timeline)
		r.timeline = vk.Semaphore{}
	}
	if r.movies != nil {
		r.movies.Destroy()
	}
	r.smaa.destroy(r.device)
	if r.textures != nil {
		r.textures.Destroy()
	}
	if r.buffers != nil {
		r.buffers.Destroy()
	}
	if r.pipelines != nil {
		r.pipelines.Destroy()
	}
	if r.shaders != nil {
		r.shaders.Destroy()
	}
	if r.targets != nil {
		r.targets.Destroy()
	}
	if r.layouts != nil {
		r.layouts.Destroy()
	}
	if r.deviceCtx != nil {
		r.deviceCtx.Destroy()
	}
}
