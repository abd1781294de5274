// Package annotator detects colored regions in BGR video frames and outlines
// them in place using GoCV (OpenCV).
package annotator

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrInvalidInput is returned when a frame is nil, empty or not 8-bit BGR.
var ErrInvalidInput = errors.New("invalid input frame")

// Detection holds the external contours found for one target.
type Detection struct {
	Target   string
	Outline  color.RGBA
	Contours [][]image.Point
}

// Annotator outlines the regions of a frame that match its configured
// color targets. It keeps no per-frame state; the same Annotator may be used
// for every frame of a stream, but callers must not hand it a frame that is
// being mutated elsewhere.
type Annotator struct {
	config DetectionConfig
}

// New validates config and returns an Annotator using it.
func New(config DetectionConfig) (*Annotator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	targets := make([]Target, len(config.Targets))
	copy(targets, config.Targets)
	config.Targets = targets

	return &Annotator{config: config}, nil
}

// NewDefault returns an Annotator using DefaultConfig.
func NewDefault() *Annotator {
	return &Annotator{config: DefaultConfig()}
}

// Config returns the configuration the Annotator was built with.
func (a *Annotator) Config() DetectionConfig {
	return a.config
}

// Process detects every target in frame and draws their outlines onto it.
// On error the frame is left untouched.
func (a *Annotator) Process(frame *gocv.Mat) error {
	detections, err := a.Detect(frame)
	if err != nil {
		return err
	}
	return a.Draw(frame, detections)
}

// Detect returns the external contours of every target, in target order,
// without modifying frame.
//
// Algorithm:
// 1. Convert BGR to HSV
// 2. Build one mask per target, OR-ing its sub-ranges
// 3. Extract external contours with simplified polylines
func (a *Annotator) Detect(frame *gocv.Mat) ([]Detection, error) {
	if err := ValidateFrame(frame); err != nil {
		return nil, err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(*frame, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()

	detections := make([]Detection, 0, len(a.config.Targets))
	for _, t := range a.config.Targets {
		t.Range.Mask(hsv, &mask)
		detections = append(detections, Detection{
			Target:   t.Name(),
			Outline:  t.Outline,
			Contours: externalContours(mask),
		})
	}

	return detections, nil
}

// Draw outlines every contour of detections onto frame, in slice order.
func (a *Annotator) Draw(frame *gocv.Mat, detections []Detection) error {
	if err := ValidateFrame(frame); err != nil {
		return err
	}

	for _, d := range detections {
		if len(d.Contours) == 0 {
			continue
		}
		contours := gocv.NewPointsVectorFromPoints(d.Contours)
		gocv.DrawContours(frame, contours, -1, d.Outline, a.config.Thickness)
		contours.Close()
	}

	return nil
}

// ValidateFrame returns ErrInvalidInput unless frame is a non-empty 8-bit,
// 3-channel Mat.
func ValidateFrame(frame *gocv.Mat) error {
	if frame == nil {
		return errors.Wrap(ErrInvalidInput, "frame is nil")
	}
	if frame.Empty() {
		return errors.Wrap(ErrInvalidInput, "frame is empty")
	}
	if frame.Type() != gocv.MatTypeCV8UC3 {
		return errors.Wrapf(ErrInvalidInput, "want 8-bit 3-channel frame, got type %d with %d channels",
			int(frame.Type()), frame.Channels())
	}
	return nil
}

func externalContours(mask gocv.Mat) [][]image.Point {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil
	}
	return contours.ToPoints()
}
