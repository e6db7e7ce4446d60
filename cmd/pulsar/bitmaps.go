package main

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/voidworks/pulsar/gfx"
)

var bitmapExtensions = []string{".png", ".jpg", ".bmp"}

// BitmapDirectory resolves texture IDs against a directory of image
// files. A base frame N loads "N.png" (or .jpg/.bmp); animated bitmaps
// use "N_0.png", "N_1.png" and so on. Decoded frames are cached for
// the process lifetime.
type BitmapDirectory struct {
	root string

	mu    sync.Mutex
	cache map[int32][]gfx.Bitmap
}

// NewBitmapDirectory creates a source over the given directory.
func NewBitmapDirectory(root string) *BitmapDirectory {
	return &BitmapDirectory{
		root:  root,
		cache: make(map[int32][]gfx.Bitmap),
	}
}

// Frames implements gfx.BitmapSource.
func (d *BitmapDirectory) Frames(id gfx.TextureID) ([]gfx.Bitmap, error) {
	base := id.BaseFrame()

	d.mu.Lock()
	defer d.mu.Unlock()
	if frames, ok := d.cache[base]; ok {
		return frames, nil
	}

	frames, err := d.load(base)
	if err != nil {
		return nil, err
	}
	d.cache[base] = frames
	return frames, nil
}

func (d *BitmapDirectory) load(base int32) ([]gfx.Bitmap, error) {
	name := strconv.Itoa(int(base))

	if path, ok := d.find(name); ok {
		frame, err := loadFrame(path)
		if err != nil {
			return nil, err
		}
		return []gfx.Bitmap{frame}, nil
	}

	var frames []gfx.Bitmap
	for i := 0; ; i++ {
		path, ok := d.find(name + "_" + strconv.Itoa(i))
		if !ok {
			break
		}
		frame, err := loadFrame(path)
		if err != nil {
			return nil, err
		}
		if len(frames) > 0 && (frame.Width != frames[0].Width || frame.Height != frames[0].Height) {
			return nil, errors.Errorf("animated bitmap %d: frame %d size differs", base, i)
		}
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return nil, errors.Errorf("no bitmap for base frame %d", base)
	}
	return frames, nil
}

func (d *BitmapDirectory) find(name string) (string, bool) {
	for _, ext := range bitmapExtensions {
		path := filepath.Join(d.root, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func loadFrame(path string) (gfx.Bitmap, error) {
	file, err := os.Open(path)
	if err != nil {
		return gfx.Bitmap{}, errors.Wrap(err, "os.Open(): bitmap")
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return gfx.Bitmap{}, errors.Wrap(err, "image.Decode(): "+path)
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), src, bounds.Min, xdraw.Src)

	return gfx.Bitmap{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Format: gfx.PixelRGBA8,
		Data:   rgba.Pix,
	}, nil
}
