// Package analyzer finds the dominant colored pillar in a video frame.
package analyzer

import (
	"image"
	"image/color"

	"github.com/wroteam/pillarcam/internal/annotator"
	"gocv.io/x/gocv"
)

// Detector defines the interface for pillar analysis implementations.
type Detector interface {
	// Analyze inspects a frame, outlines the dominant object on it and
	// returns what was found. Color is ColorNone when nothing qualifies.
	Analyze(frame *gocv.Mat) (*Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Color identifies a pillar color.
type Color string

// Pillar colors, in tie-break priority order.
const (
	ColorNone    Color = ""
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorMagenta Color = "magenta"
)

// Target binds a pillar color to the HSV range that detects it.
type Target struct {
	Color Color
	Range annotator.ColorRange
}

// Point is a sub-pixel position.
type Point struct {
	X, Y float64
}

// Object is the largest accepted contour of one color.
type Object struct {
	Color   Color
	Area    float64
	Center  Point // ROI coordinates
	Bounds  image.Rectangle
	Contour []image.Point
}

// Result describes the dominant object of a frame.
type Result struct {
	Color  Color
	Area   float64
	Center Point           // ROI coordinates
	ROI    image.Rectangle // frame coordinates
	// Relative is Center normalized by the ROI size (0..1).
	Relative Point
	// Objects holds the largest object of every color that had one,
	// largest first.
	Objects []Object
}

// Found reports whether an object was detected.
func (r *Result) Found() bool {
	return r != nil && r.Color != ColorNone
}

// Width returns the ROI width the center is measured against.
func (r *Result) Width() int {
	return r.ROI.Dx()
}

// Height returns the ROI height the center is measured against.
func (r *Result) Height() int {
	return r.ROI.Dy()
}

// Config holds configuration options for pillar analysis.
type Config struct {
	// ROIFraction is the share of each frame dimension analyzed, centered.
	ROIFraction float64

	// EqualizeV enables illumination normalization of the V channel.
	EqualizeV bool
	// UseCLAHE selects CLAHE over global histogram equalization.
	UseCLAHE     bool
	CLAHEClip    float64
	CLAHETile    image.Point
	MorphKernel  image.Point
	Targets      []Target
	MinArea      float64
	Smoothing    float64 // ApproxPolyDP epsilon as a share of the perimeter
	DoubleSmooth bool

	ShapeFilter    bool
	AdvancedFilter bool
	SpikeFilter    bool
	Shape          ShapeLimits

	Outline   color.RGBA
	Thickness int
	// Debug draws the centroid and bounding box of the dominant object.
	Debug bool
}

// Default analysis ranges. These are wider than the annotator defaults to
// survive the lighting of the course.
var (
	RangeRed = annotator.ColorRange{
		Name: string(ColorRed),
		Ranges: []annotator.HSVRange{
			{Lower: annotator.HSV{H: 0, S: 100, V: 80}, Upper: annotator.HSV{H: 10, S: 255, V: 255}},
			{Lower: annotator.HSV{H: 172, S: 100, V: 80}, Upper: annotator.HSV{H: 180, S: 255, V: 255}},
		},
	}
	RangeGreen = annotator.ColorRange{
		Name: string(ColorGreen),
		Ranges: []annotator.HSVRange{
			{Lower: annotator.HSV{H: 30, S: 40, V: 25}, Upper: annotator.HSV{H: 90, S: 255, V: 255}},
		},
	}
	RangeMagenta = annotator.ColorRange{
		Name: string(ColorMagenta),
		Ranges: []annotator.HSVRange{
			{Lower: annotator.HSV{H: 145, S: 90, V: 60}, Upper: annotator.HSV{H: 170, S: 255, V: 255}},
		},
	}
)

// DefaultConfig returns a Config with the values tuned on the course.
func DefaultConfig() Config {
	return Config{
		ROIFraction: 0.8,
		EqualizeV:   true,
		UseCLAHE:    true,
		CLAHEClip:   2.0,
		CLAHETile:   image.Pt(8, 8),
		MorphKernel: image.Pt(5, 5),
		Targets: []Target{
			{Color: ColorRed, Range: RangeRed},
			{Color: ColorGreen, Range: RangeGreen},
			{Color: ColorMagenta, Range: RangeMagenta},
		},
		MinArea:        800,
		Smoothing:      0.008,
		DoubleSmooth:   true,
		ShapeFilter:    true,
		AdvancedFilter: true,
		SpikeFilter:    true,
		Shape:          DefaultShapeLimits(),
		Outline:        color.RGBA{G: 255, A: 255},
		Thickness:      2,
	}
}
