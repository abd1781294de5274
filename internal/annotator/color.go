package annotator

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"
)

// MaxHue is the top of OpenCV's 8-bit hue scale (degrees halved).
const MaxHue = 180

// HSV is a point in OpenCV's 8-bit HSV space: H in [0,180], S and V in [0,255].
type HSV struct {
	H, S, V uint8
}

// Scalar converts the point to a gocv scalar for range operations.
func (c HSV) Scalar() gocv.Scalar {
	return gocv.NewScalar(float64(c.H), float64(c.S), float64(c.V), 0)
}

func (c HSV) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.H, c.S, c.V)
}

// HSVRange is an inclusive lower/upper bound pair.
type HSVRange struct {
	Lower HSV
	Upper HSV
}

func (r HSVRange) validate() error {
	if r.Upper.H > MaxHue {
		return fmt.Errorf("upper hue %d exceeds %d", r.Upper.H, MaxHue)
	}
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("lower bound %s above upper bound %s", r.Lower, r.Upper)
	}
	return nil
}

// contains reports whether a single HSV pixel falls inside the range.
func (r HSVRange) contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// ColorRange is a named color made of one or more HSV sub-ranges.
// A pixel matches when any sub-range contains it, which is how hues that
// wrap around 0/180 (red) are expressed.
type ColorRange struct {
	Name   string
	Ranges []HSVRange
}

// contains reports whether any sub-range contains c.
func (r ColorRange) contains(c HSV) bool {
	for _, sub := range r.Ranges {
		if sub.contains(c) {
			return true
		}
	}
	return false
}

// Mask writes into dst a single-channel 0/255 mask of the pixels of hsv
// that fall inside any sub-range. dst must be a valid Mat owned by the caller.
// A range without sub-ranges yields an all-zero mask.
func (r ColorRange) Mask(hsv gocv.Mat, dst *gocv.Mat) {
	if len(r.Ranges) == 0 {
		zeros := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8UC1)
		defer zeros.Close()
		zeros.CopyTo(dst)
		return
	}

	first := r.Ranges[0]
	gocv.InRangeWithScalar(hsv, first.Lower.Scalar(), first.Upper.Scalar(), dst)

	part := gocv.NewMat()
	defer part.Close()
	for _, sub := range r.Ranges[1:] {
		gocv.InRangeWithScalar(hsv, sub.Lower.Scalar(), sub.Upper.Scalar(), &part)
		gocv.BitwiseOr(*dst, part, dst)
	}
}

// Target pairs a color range with the outline color its contours are drawn in.
type Target struct {
	Range   ColorRange
	Outline color.RGBA
}

// Name returns the name of the target's color range.
func (t Target) Name() string {
	return t.Range.Name
}

// Default color ranges for the pillars on the course.
var (
	Green = ColorRange{
		Name: "green",
		Ranges: []HSVRange{
			{Lower: HSV{35, 100, 100}, Upper: HSV{85, 255, 255}},
		},
	}

	Red = ColorRange{
		Name: "red",
		Ranges: []HSVRange{
			{Lower: HSV{0, 120, 70}, Upper: HSV{10, 255, 255}},
			{Lower: HSV{170, 120, 70}, Upper: HSV{180, 255, 255}},
		},
	}
)

// Outline colors. gocv maps color.RGBA onto BGR frames, so these are the
// pure channel colors in the frame.
var (
	OutlineGreen = color.RGBA{G: 255, A: 255}
	OutlineRed   = color.RGBA{R: 255, A: 255}
)
