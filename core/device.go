package core

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/voidworks/pulsar/vk"
)

var requiredDeviceExtensions = []string{
	vk.ExtSwapchain,
	vk.ExtPushDescriptor,
	vk.ExtMaintenance5,
}

var optionalDeviceExtensions = []string{
	vk.ExtMaintenance6,
	vk.ExtExtendedDynamicState3,
	vk.ExtDynamicRenderingLocalRead,
	vk.ExtVertexAttributeDivisor,
}

// DeviceCaps are the optional capabilities the renderer adapts to.
type DeviceCaps struct {
	SupportsEDS3 bool
	EDS3         EDS3Caps

	SamplerYcbcr              bool
	VertexDivisor             bool
	Maintenance6              bool
	DynamicRenderingLocalRead bool

	// Set at swapchain creation; gates the pre-deferred scene capture.
	SwapchainTransferSrc bool
}

// PhysicalDeviceValues is everything the selector learned about one
// candidate device.
type PhysicalDeviceValues struct {
	Device      vk.PhysicalDevice
	Properties  vk.PhysicalDeviceProperties
	Features    vk.PhysicalDeviceFeatures
	Extensions  map[string]bool
	QueueFamily uint32
}

// ScoreDevice ranks a device: type dominates, then API major and minor.
// The patch version does not participate.
func ScoreDevice(deviceType vk.PhysicalDeviceType, apiVersion uint32) uint64 {
	var typeScore uint64
	switch deviceType {
	case vk.DeviceTypeDiscrete:
		typeScore = 4
	case vk.DeviceTypeIntegrated:
		typeScore = 3
	case vk.DeviceTypeVirtual:
		typeScore = 2
	default:
		typeScore = 1
	}
	return typeScore*1_000_000 +
		uint64(vk.VersionMajor(apiVersion))*100 +
		uint64(vk.VersionMinor(apiVersion))
}

// DeviceContext owns the instance, device, queue, swapchain and pipeline
// cache. Everything above it (managers, frames, session) borrows from
// here.
type DeviceContext struct {
	instance  vk.Instance
	messenger vk.DebugUtilsMessenger
	debug     bool

	surface     vk.Surface
	physical    vk.PhysicalDevice
	props       vk.PhysicalDeviceProperties
	memProps    vk.MemoryProperties
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32
	caps        DeviceCaps
	vsync       bool

	swapchain      vk.Swapchain
	swapImages     []vk.Image
	swapViews      []vk.ImageView
	swapFormat     vk.Format
	swapColorSpace vk.ColorSpace
	swapExtent     vk.Extent2D
	// One render-finished semaphore per swapchain image; binary
	// semaphores cannot be reused across images safely.
	renderFinished []vk.Semaphore

	pipelineCache vk.PipelineCache
	cacheFile     string
}

// NewDeviceContext brings up the instance, selects and creates the
// device, adopts the surface and seeds the pipeline cache. The swapchain
// is created separately once the host knows its extent.
func NewDeviceContext(cfg Configuration, instanceExtensions []string, createSurface func(vk.Instance) (vk.Surface, error)) (*DeviceContext, error) {
	ctx := &DeviceContext{debug: cfg.Debug, vsync: cfg.VSync, cacheFile: cfg.PipelineCacheFile}

	var layers []string
	extensions := append([]string{}, instanceExtensions...)
	if cfg.Debug {
		layers = append(layers, "VK_LAYER_KHRONOS_validation")
		extensions = append(extensions, vk.ExtDebugUtils)
	}

	instance, err := vk.CreateInstance(vk.InstanceCreateInfo{
		ApplicationName: "pulsar",
		EngineName:      "pulsar",
		APIVersion:      vk.APIVersion14,
		Extensions:      extensions,
		Layers:          layers,
	})
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	ctx.instance = instance

	if cfg.Debug {
		vk.SetDebugHandler(newDebugLog().handle)
		messenger, err := instance.CreateDebugUtilsMessenger(
			vk.DebugSeverityInfo|vk.DebugSeverityWarning|vk.DebugSeverityError,
			vk.DebugTypeGeneral|vk.DebugTypeValidation|vk.DebugTypePerformance)
		if err != nil {
			log.WithError(err).Warn("debug messenger unavailable")
		} else {
			ctx.messenger = messenger
		}
	}

	surface, err := createSurface(instance)
	if err != nil {
		ctx.Destroy()
		return nil, errors.Wrap(err, "surface creation")
	}
	ctx.surface = surface

	picked, err := selectPhysicalDevice(instance, surface)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	ctx.physical = picked.Device
	ctx.props = picked.Properties
	ctx.memProps = picked.Device.GetMemoryProperties()
	ctx.queueFamily = picked.QueueFamily

	if err := ValidateDeviceLimits(ctx.props.Limits); err != nil {
		ctx.Destroy()
		return nil, err
	}

	if err := ctx.createLogicalDevice(picked); err != nil {
		ctx.Destroy()
		return nil, err
	}

	if err := ctx.createPipelineCache(); err != nil {
		ctx.Destroy()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"device": ctx.props.DeviceName,
		"api": logrus.Fields{
			"major": vk.VersionMajor(ctx.props.APIVersion),
			"minor": vk.VersionMinor(ctx.props.APIVersion),
		},
	}).Info("device selected")
	return ctx, nil
}

// selectPhysicalDevice filters by required extensions and features and
// keeps the highest score.
func selectPhysicalDevice(instance vk.Instance, surface vk.Surface) (PhysicalDeviceValues, error) {
	devices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return PhysicalDeviceValues{}, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}

	var best PhysicalDeviceValues
	var bestScore uint64
	found := false

	for _, physical := range devices {
		values, ok := evaluateDevice(physical, surface)
		if !ok {
			continue
		}
		score := ScoreDevice(values.Properties.DeviceType, values.Properties.APIVersion)
		if !found || score > bestScore {
			best = values
			bestScore = score
			found = true
		}
	}

	if !found {
		return PhysicalDeviceValues{}, errors.New("no suitable physical device")
	}
	return best, nil
}

func evaluateDevice(physical vk.PhysicalDevice, surface vk.Surface) (PhysicalDeviceValues, bool) {
	props := physical.GetProperties()
	entry := log.WithField("device", props.DeviceName)

	names, err := physical.EnumerateExtensions()
	if err != nil {
		entry.WithError(err).Debug("extension enumeration failed")
		return PhysicalDeviceValues{}, false
	}
	available := make(map[string]bool, len(names))
	for _, name := range names {
		available[name] = true
	}
	for _, required := range requiredDeviceExtensions {
		if !available[required] {
			entry.Debugf("rejected: missing %s", required)
			return PhysicalDeviceValues{}, false
		}
	}

	features := physical.GetFeatures(available[vk.ExtExtendedDynamicState3], available[vk.ExtVertexAttributeDivisor])
	switch {
	case !features.DynamicRendering:
		entry.Debug("rejected: no dynamicRendering")
		return PhysicalDeviceValues{}, false
	case !features.Synchronization2:
		entry.Debug("rejected: no synchronization2")
		return PhysicalDeviceValues{}, false
	case !features.TimelineSemaphore:
		entry.Debug("rejected: no timelineSemaphore")
		return PhysicalDeviceValues{}, false
	case !features.ShaderSampledImageArrayNonUniformIndexing ||
		!features.RuntimeDescriptorArray ||
		!features.DescriptorBindingPartiallyBound:
		entry.Debug("rejected: missing descriptor indexing features")
		return PhysicalDeviceValues{}, false
	}

	family, ok := findQueueFamily(physical, surface)
	if !ok {
		entry.Debug("rejected: no graphics+present queue family")
		return PhysicalDeviceValues{}, false
	}

	return PhysicalDeviceValues{
		Device:      physical,
		Properties:  props,
		Features:    features,
		Extensions:  available,
		QueueFamily: family,
	}, true
}

func findQueueFamily(physical vk.PhysicalDevice, surface vk.Surface) (uint32, bool) {
	for i, family := range physical.GetQueueFamilyProperties() {
		if family.QueueFlags&vk.QueueGraphics == 0 {
			continue
		}
		supported, err := physical.GetSurfaceSupport(uint32(i), surface)
		if err != nil || !supported {
			continue
		}
		return uint32(i), true
	}
	return 0, false
}

func (c *DeviceContext) createLogicalDevice(picked PhysicalDeviceValues) error {
	extensions := append([]string{}, requiredDeviceExtensions...)
	for _, optional := range optionalDeviceExtensions {
		if picked.Extensions[optional] {
			extensions = append(extensions, optional)
		}
	}

	features := vk.DeviceFeatures{
		SamplerAnisotropy:                         picked.Features.SamplerAnisotropy,
		SamplerYcbcrConversion:                    picked.Features.SamplerYcbcrConversion,
		ShaderSampledImageArrayNonUniformIndexing: true,
		RuntimeDescriptorArray:                    true,
		DescriptorBindingPartiallyBound:           true,
		TimelineSemaphore:                         true,
		DynamicRendering:                          true,
		Synchronization2:                          true,
		ExtDyn3ColorBlendEnable:                   picked.Features.ExtDyn3ColorBlendEnable,
		ExtDyn3ColorWriteMask:                     picked.Features.ExtDyn3ColorWriteMask,
		ExtDyn3PolygonMode:                        picked.Features.ExtDyn3PolygonMode,
		ExtDyn3RasterizationSamples:               picked.Features.ExtDyn3RasterizationSamples,
		VertexAttributeInstanceRateDivisor:        picked.Features.VertexAttributeInstanceRateDivisor,
	}

	device, err := picked.Device.CreateDevice(vk.DeviceCreateInfo{
		QueueCreateInfos: []vk.QueueCreateInfo{{
			QueueFamilyIndex: picked.QueueFamily,
			QueuePriorities:  []float32{1},
		}},
		Extensions: extensions,
		Features:   features,
	})
	if err != nil {
		return errors.Wrap(err, "vk.CreateDevice()")
	}
	c.device = device
	c.queue = device.GetQueue(picked.QueueFamily, 0)

	eds3 := EDS3Caps{
		ColorBlendEnable:     picked.Features.ExtDyn3ColorBlendEnable,
		ColorWriteMask:       picked.Features.ExtDyn3ColorWriteMask,
		PolygonMode:          picked.Features.ExtDyn3PolygonMode,
		RasterizationSamples: picked.Features.ExtDyn3RasterizationSamples,
	}
	c.caps = DeviceCaps{
		SupportsEDS3: picked.Extensions[vk.ExtExtendedDynamicState3] &&
			(eds3.ColorBlendEnable || eds3.ColorWriteMask || eds3.PolygonMode || eds3.RasterizationSamples),
		EDS3:                      eds3,
		SamplerYcbcr:              picked.Features.SamplerYcbcrConversion,
		VertexDivisor:             picked.Features.VertexAttributeInstanceRateDivisor,
		Maintenance6:              picked.Extensions[vk.ExtMaintenance6],
		DynamicRenderingLocalRead: picked.Extensions[vk.ExtDynamicRenderingLocalRead],
	}
	return nil
}

// CreateSwapchain creates or recreates the swapchain. Returns false
// without error when the surface is currently 0x0 (minimized window);
// the caller drops the frame and retries later.
func (c *DeviceContext) CreateSwapchain() (bool, error) {
	surfaceCaps, err := c.physical.GetSurfaceCapabilities(c.surface)
	if err != nil {
		return false, errors.Wrap(err, "vk.GetSurfaceCapabilities()")
	}
	extent := surfaceCaps.CurrentExtent
	if extent.Width == 0 || extent.Height == 0 {
		return false, nil
	}

	format, colorSpace, err := c.chooseSurfaceFormat()
	if err != nil {
		return false, err
	}
	presentMode, err := c.choosePresentMode()
	if err != nil {
		return false, err
	}

	imageCount := surfaceCaps.MinImageCount + 1
	if surfaceCaps.MaxImageCount > 0 && imageCount > surfaceCaps.MaxImageCount {
		imageCount = surfaceCaps.MaxImageCount
	}

	usage := vk.ImageUsageColorAttachment
	c.caps.SwapchainTransferSrc = surfaceCaps.SupportedUsageFlags&vk.ImageUsageTransferSrc != 0
	if c.caps.SwapchainTransferSrc {
		usage |= vk.ImageUsageTransferSrc
	} else {
		log.Info("swapchain TransferSrc unsupported, scene capture disabled")
	}

	old := c.swapchain
	swapchain, err := c.device.CreateSwapchain(vk.SwapchainCreateInfo{
		Surface:       c.surface,
		MinImageCount: imageCount,
		Format:        format,
		ColorSpace:    colorSpace,
		Extent:        extent,
		Usage:         usage,
		Transform:     surfaceCaps.CurrentTransform,
		PresentMode:   presentMode,
		OldSwapchain:  old,
	})
	if err != nil {
		return false, errors.Wrap(err, "vk.CreateSwapchain()")
	}
	c.destroySwapchainViews()
	if !old.Null() {
		c.device.DestroySwapchain(old)
	}
	c.swapchain = swapchain
	c.swapFormat = format
	c.swapColorSpace = colorSpace
	c.swapExtent = extent

	images, err := c.device.GetSwapchainImages(swapchain)
	if err != nil {
		return false, errors.Wrap(err, "vk.GetSwapchainImages()")
	}
	c.swapImages = images

	c.swapViews = make([]vk.ImageView, len(images))
	c.renderFinished = make([]vk.Semaphore, len(images))
	for i, image := range images {
		view, err := c.device.CreateImageView(vk.ImageViewCreateInfo{
			Image:    image,
			ViewType: vk.ViewType2D,
			Format:   format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.AspectColor,
				LevelCount: 1,
				LayerCount: 1,
			},
		})
		if err != nil {
			return false, errors.Wrap(err, "vk.CreateImageView(): swapchain")
		}
		c.swapViews[i] = view

		semaphore, err := c.device.CreateSemaphore()
		if err != nil {
			return false, errors.Wrap(err, "vk.CreateSemaphore(): render finished")
		}
		c.renderFinished[i] = semaphore
	}
	return true, nil
}

func (c *DeviceContext) chooseSurfaceFormat() (vk.Format, vk.ColorSpace, error) {
	formats, err := c.physical.GetSurfaceFormats(c.surface)
	if err != nil {
		return 0, 0, errors.Wrap(err, "vk.GetSurfaceFormats()")
	}
	if len(formats) == 0 {
		return 0, 0, errors.New("surface offers no formats")
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8G8R8A8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f.Format, f.ColorSpace, nil
		}
	}
	return formats[0].Format, formats[0].ColorSpace, nil
}

func (c *DeviceContext) choosePresentMode() (vk.PresentMode, error) {
	modes, err := c.physical.GetSurfacePresentModes(c.surface)
	if err != nil {
		return 0, errors.Wrap(err, "vk.GetSurfacePresentModes()")
	}
	want := vk.PresentModeImmediate
	if c.vsync {
		want = vk.PresentModeMailbox
	}
	for _, mode := range modes {
		if mode == want {
			return mode, nil
		}
	}
	// FIFO is the only mode Vulkan guarantees.
	return vk.PresentModeFifo, nil
}

func (c *DeviceContext) destroySwapchainViews() {
	for _, view := range c.swapViews {
		c.device.DestroyImageView(view)
	}
	c.swapViews = nil
	for _, semaphore := range c.renderFinished {
		c.device.DestroySemaphore(semaphore)
	}
	c.renderFinished = nil
	c.swapImages = nil
}

// Pipeline cache file header. The driver blob follows it.
const pipelineCacheHeaderSize = 32

func encodePipelineCacheHeader(vendorID, deviceID uint32, uuid [vk.UUIDSize]byte) [pipelineCacheHeaderSize]byte {
	var header [pipelineCacheHeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:], pipelineCacheHeaderSize)
	binary.LittleEndian.PutUint32(header[4:], 1)
	binary.LittleEndian.PutUint32(header[8:], vendorID)
	binary.LittleEndian.PutUint32(header[12:], deviceID)
	copy(header[16:], uuid[:])
	return header
}

// validatePipelineCacheBlob checks a cache file against the device
// identity and returns the driver blob, or nil when anything mismatches.
func validatePipelineCacheBlob(data []byte, vendorID, deviceID uint32, uuid [vk.UUIDSize]byte) []byte {
	if len(data) < pipelineCacheHeaderSize {
		return nil
	}
	expected := encodePipelineCacheHeader(vendorID, deviceID, uuid)
	for i := range expected {
		if data[i] != expected[i] {
			return nil
		}
	}
	return data[pipelineCacheHeaderSize:]
}

func (c *DeviceContext) createPipelineCache() error {
	var initial []byte
	if data, err := os.ReadFile(c.cacheFile); err == nil {
		initial = validatePipelineCacheBlob(data, c.props.VendorID, c.props.DeviceID, c.props.PipelineCacheUUID)
		if initial == nil {
			log.Info("pipeline cache file does not match this device, starting fresh")
		}
	}

	cache, err := c.device.CreatePipelineCache(initial)
	if err != nil {
		return errors.Wrap(err, "vk.CreatePipelineCache()")
	}
	c.pipelineCache = cache
	return nil
}

// WritePipelineCache persists the driver blob with the identity header.
func (c *DeviceContext) WritePipelineCache() error {
	data, err := c.device.GetPipelineCacheData(c.pipelineCache)
	if err != nil {
		return errors.Wrap(err, "vk.GetPipelineCacheData()")
	}
	header := encodePipelineCacheHeader(c.props.VendorID, c.props.DeviceID, c.props.PipelineCacheUUID)
	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header[:]...)
	out = append(out, data...)
	return errors.Wrap(os.WriteFile(c.cacheFile, out, 0o644), "writing pipeline cache")
}

// Accessors.

func (c *DeviceContext) Device() vk.Device                  { return c.device }
func (c *DeviceContext) Physical() vk.PhysicalDevice        { return c.physical }
func (c *DeviceContext) Properties() vk.PhysicalDeviceProperties {
	return c.props
}
func (c *DeviceContext) MemoryProperties() vk.MemoryProperties { return c.memProps }
func (c *DeviceContext) Queue() vk.Queue                       { return c.queue }
func (c *DeviceContext) QueueFamily() uint32                   { return c.queueFamily }
func (c *DeviceContext) Caps() DeviceCaps                      { return c.caps }
func (c *DeviceContext) PipelineCache() vk.PipelineCache       { return c.pipelineCache }
func (c *DeviceContext) Swapchain() vk.Swapchain               { return c.swapchain }
func (c *DeviceContext) SwapchainImages() []vk.Image           { return c.swapImages }
func (c *DeviceContext) SwapchainViews() []vk.ImageView        { return c.swapViews }
func (c *DeviceContext) SwapchainFormat() vk.Format            { return c.swapFormat }
func (c *DeviceContext) SwapchainExtent() vk.Extent2D          { return c.swapExtent }

// RenderFinished returns the per-image render-finished semaphore.
func (c *DeviceContext) RenderFinished(imageIndex uint32) vk.Semaphore {
	return c.renderFinished[imageIndex]
}

// Destroy tears everything down. The caller drains the device first.
func (c *DeviceContext) Destroy() {
	if c.pipelineCache != (vk.PipelineCache{}) {
		if err := c.WritePipelineCache(); err != nil {
			log.WithError(err).Warn("pipeline cache not persisted")
		}
		c.device.DestroyPipelineCache(c.pipelineCache)
		c.pipelineCache = vk.PipelineCache{}
	}
	c.destroySwapchainViews()
	if !c.swapchain.Null() {
		c.device.DestroySwapchain(c.swapchain)
		c.swapchain = vk.Swapchain{}
	}
	if c.device != (vk.Device{}) {
		c.device.Destroy()
		c.device = vk.Device{}
	}
	if c.surface != (vk.Surface{}) {
		c.instance.DestroySurface(c.surface)
		c.surface = vk.Surface{}
	}
	if c.messenger != (vk.DebugUtilsMessenger{}) {
		c.instance.DestroyDebugUtilsMessenger(c.messenger)
		c.messenger = vk.DebugUtilsMessenger{}
	}
	if c.instance != (vk.Instance{}) {
		c.instance.Destroy()
		c.instance = vk.Instance{}
	}
}
