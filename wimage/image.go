// Package wimage implements the grayscale image operators used to locate a
// well bottom in a camera frame: point transforms, thresholding, morphology,
// binary topology (labeling, hole filling, border-blob removal), watershed
// and blob metrology, plus the evaluation pipeline composing them.
package wimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// View describes how the sample values of a buffer should be interpreted.
// Operators set it on their destination to document their output contract;
// operators with a view precondition reject buffers that don't carry it.
type View int

const (
	// ViewClip holds raw intensities in [0,255].
	ViewClip View = iota
	// ViewStretch holds contrast-stretched intensities.
	ViewStretch
	// ViewBinary holds 0 (background) and 1 (foreground) only.
	ViewBinary
	// ViewLabeled holds 0 (background) and blob labels 1..254.
	ViewLabeled
)

// GrayBuffer is a width x height grid of 8-bit samples in row-major order,
// top-to-bottom, left-to-right.
type GrayBuffer struct {
	width, height int
	data          []uint8

	// View tags the semantics of the current contents.
	View View
}

// NewGrayBuffer allocates a zeroed buffer.
func NewGrayBuffer(width, height int) (*GrayBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	return &GrayBuffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
		View:   ViewClip,
	}, nil
}

// NewGrayBufferFromData wraps a flat row-major sample slice. This is the
// boundary constructor for host callers that marshal a flat pixel array.
// The slice is copied, not retained.
func NewGrayBufferFromData(data []uint8, width, height int) (*GrayBuffer, error) {
	b, err := NewGrayBuffer(width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, errors.Errorf("got %d samples, want %d for %dx%d", len(data), width*height, width, height)
	}
	copy(b.data, data)
	return b, nil
}

// Width returns the number of columns.
func (b *GrayBuffer) Width() int {
	return b.width
}

// Height returns the number of rows.
func (b *GrayBuffer) Height() int {
	return b.height
}

// In returns whether (x, y) lies inside the buffer.
func (b *GrayBuffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

func (b *GrayBuffer) kxy(x, y int) int {
	return y*b.width + x
}

// GetXY returns the sample at (x, y).
func (b *GrayBuffer) GetXY(x, y int) uint8 {
	return b.data[b.kxy(x, y)]
}

// SetXY sets the sample at (x, y).
func (b *GrayBuffer) SetXY(x, y int, v uint8) {
	b.data[b.kxy(x, y)] = v
}

// Bounds returns the buffer rectangle for stdlib image interop.
func (b *GrayBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Clone returns an independent copy.
func (b *GrayBuffer) Clone() *GrayBuffer {
	data := make([]uint8, len(b.data))
	copy(data, b.data)
	return &GrayBuffer{width: b.width, height: b.height, data: data, View: b.View}
}

// Fill sets every sample to v.
func (b *GrayBuffer) Fill(v uint8) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Data returns a copy of the flat sample slice.
func (b *GrayBuffer) Data() []uint8 {
	out := make([]uint8, len(b.data))
	copy(out, b.data)
	return out
}

// ToGray converts the buffer to a stdlib grayscale image. Binary and labeled
// views are emitted as-is; callers wanting a visible mask should scale first.
func (b *GrayBuffer) ToGray() *image.Gray {
	out := image.NewGray(b.Bounds())
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			out.SetGray(x, y, color.Gray{b.GetXY(x, y)})
		}
	}
	return out
}

// ConvertGrayImage copies a stdlib grayscale image into a buffer.
func ConvertGrayImage(img *image.Gray) (*GrayBuffer, error) {
	bounds := img.Bounds()
	b, err := NewGrayBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			b.SetXY(x, y, img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
		}
	}
	return b, nil
}

// ConvertImage grayscales an arbitrary image and copies it into a buffer.
func ConvertImage(img image.Image) (*GrayBuffer, error) {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	b, err := NewGrayBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			// imaging.Grayscale yields NRGBA with R==G==B
			b.SetXY(x, y, gray.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y).R)
		}
	}
	return b, nil
}

// checkSameSize rejects operator calls whose source and destination
// dimensions differ. Continuing on mismatched buffers is unsafe, so this is
// an error rather than a warning.
func checkSameSize(src, dst *GrayBuffer) error {
	if src.width != dst.width || src.height != dst.height {
		return errors.Errorf("dimension mismatch: src %dx%d, dst %dx%d",
			src.width, src.height, dst.width, dst.height)
	}
	return nil
}

// checkDistinct rejects aliased source and destination buffers. Windowed
// operators need stable neighbor reads while writing.
func checkDistinct(src, dst *GrayBuffer) error {
	if src == dst || (len(src.data) > 0 && len(dst.data) > 0 && &src.data[0] == &dst.data[0]) {
		return errors.New("src and dst must be distinct buffers")
	}
	return nil
}

// checkView rejects a source buffer that does not carry the view an
// operator requires.
func checkView(src *GrayBuffer, want View) error {
	if src.View != want {
		return errors.Errorf("source has view %d, want %d", src.View, want)
	}
	return nil
}
