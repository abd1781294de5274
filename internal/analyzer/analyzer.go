package analyzer

import (
	"cmp"
	"image"
	"image/color"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/wroteam/pillarcam/internal/annotator"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

var (
	centerColor = color.RGBA{B: 255, A: 255}
	boxColor    = color.RGBA{G: 255, B: 255, A: 255}
)

// Analyzer implements Detector with OpenCV color segmentation and
// geometric shape filtering. It is not safe for concurrent use.
type Analyzer struct {
	config Config
	log    *zap.SugaredLogger
	clahe  *gocv.CLAHE
	kernel gocv.Mat
}

// New creates an Analyzer. A nil logger disables logging.
func New(config Config, logger *zap.SugaredLogger) (*Analyzer, error) {
	if config.ROIFraction <= 0 || config.ROIFraction > 1 {
		return nil, errors.Errorf("roi fraction %.2f out of (0,1]", config.ROIFraction)
	}
	if len(config.Targets) == 0 {
		return nil, errors.New("at least one target is required")
	}
	for _, t := range config.Targets {
		if len(t.Range.Ranges) == 0 {
			return nil, errors.Errorf("target %q has no hsv ranges", t.Color)
		}
	}
	if config.MorphKernel.X <= 0 || config.MorphKernel.Y <= 0 {
		return nil, errors.Errorf("invalid morphology kernel %v", config.MorphKernel)
	}
	if config.Thickness < 1 {
		config.Thickness = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	a := &Analyzer{
		config: config,
		log:    logger.Named("analyzer"),
		kernel: gocv.GetStructuringElement(gocv.MorphRect, config.MorphKernel),
	}
	if config.EqualizeV && config.UseCLAHE {
		clahe := gocv.NewCLAHEWithParams(config.CLAHEClip, config.CLAHETile)
		a.clahe = &clahe
	}
	return a, nil
}

// Config returns the configuration the Analyzer was built with.
func (a *Analyzer) Config() Config {
	return a.config
}

// Analyze finds the dominant pillar inside the centered ROI of frame.
//
// Pipeline:
// 1. Crop the ROI and convert it to HSV
// 2. Equalize the V channel
// 3. Threshold each target and clean the mask with open then close
// 4. Smooth external contours and filter them by area and shape
// 5. Keep the largest object per color and pick the dominant one
// 6. Outline it on the frame
func (a *Analyzer) Analyze(frame *gocv.Mat) (*Result, error) {
	if err := annotator.ValidateFrame(frame); err != nil {
		return nil, err
	}

	rect := roiRect(frame.Cols(), frame.Rows(), a.config.ROIFraction)
	roi := frame.Region(rect)
	defer roi.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)
	if a.config.EqualizeV {
		a.equalize(&hsv)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	var objects []Object
	for _, t := range a.config.Targets {
		t.Range.Mask(hsv, &mask)
		gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, a.kernel)
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, a.kernel)

		if obj, ok := a.largest(t.Color, mask); ok {
			objects = append(objects, obj)
		}
	}

	result := &Result{ROI: rect}
	if len(objects) == 0 {
		return result, nil
	}

	dominant := dominantObject(objects)
	result.Color = dominant.Color
	result.Area = dominant.Area
	result.Center = dominant.Center
	result.Relative = Point{
		X: dominant.Center.X / float64(rect.Dx()),
		Y: dominant.Center.Y / float64(rect.Dy()),
	}
	result.Objects = sortedBySize(objects)

	a.draw(&roi, dominant)

	a.log.Debugw("dominant object",
		"color", dominant.Color,
		"area", dominant.Area,
		"x", dominant.Center.X,
		"y", dominant.Center.Y,
	)
	return result, nil
}

// Close releases the OpenCV resources held by the Analyzer.
func (a *Analyzer) Close() error {
	if a.clahe != nil {
		a.clahe.Close()
		a.clahe = nil
	}
	return a.kernel.Close()
}

func (a *Analyzer) equalize(hsv *gocv.Mat) {
	channels := gocv.Split(*hsv)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	v := gocv.NewMat()
	defer v.Close()
	if a.clahe != nil {
		a.clahe.Apply(channels[2], &v)
	} else {
		gocv.EqualizeHist(channels[2], &v)
	}
	v.CopyTo(&channels[2])

	gocv.Merge(channels, hsv)
}

// largest returns the biggest contour of mask that passes every filter.
func (a *Analyzer) largest(c Color, mask gocv.Mat) (Object, bool) {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return Object{}, false
	}

	candidates := lo.FilterMap(contours.ToPoints(), func(points []image.Point, _ int) (Object, bool) {
		if a.config.Smoothing > 0 {
			points = smooth(points, a.config.Smoothing, a.config.DoubleSmooth)
		}
		return a.accept(c, points)
	})
	if len(candidates) == 0 {
		return Object{}, false
	}

	return lo.MaxBy(candidates, func(x, best Object) bool {
		return x.Area > best.Area
	}), true
}

func (a *Analyzer) accept(c Color, points []image.Point) (Object, bool) {
	m := a.config.Shape.Measure(points)
	if m.Area <= a.config.MinArea {
		return Object{}, false
	}

	if a.config.ShapeFilter {
		if err := a.config.Shape.Regular(m); err != nil {
			a.log.Debugw("contour rejected", "color", c, "area", m.Area, "reason", err)
			return Object{}, false
		}
		if a.config.AdvancedFilter {
			if err := a.config.Shape.Rectangular(m, a.config.SpikeFilter); err != nil {
				a.log.Debugw("contour rejected", "color", c, "area", m.Area, "reason", err)
				return Object{}, false
			}
		}
	}

	return Object{
		Color:   c,
		Area:    m.Area,
		Center:  centroid(points),
		Bounds:  m.Bounds,
		Contour: points,
	}, true
}

func (a *Analyzer) draw(roi *gocv.Mat, obj Object) {
	contours := gocv.NewPointsVectorFromPoints([][]image.Point{obj.Contour})
	defer contours.Close()
	gocv.DrawContours(roi, contours, -1, a.config.Outline, a.config.Thickness)

	if a.config.Debug {
		center := image.Pt(int(obj.Center.X), int(obj.Center.Y))
		gocv.Circle(roi, center, 10, centerColor, -1)
		gocv.Rectangle(roi, obj.Bounds, boxColor, 2)
	}
}

// dominantObject picks the largest object. Ties go to the earlier color in
// red, green, magenta order.
func dominantObject(objects []Object) Object {
	best := objects[0]
	for _, o := range objects[1:] {
		if o.Area > best.Area || (o.Area == best.Area && priority(o.Color) < priority(best.Color)) {
			best = o
		}
	}
	return best
}

func priority(c Color) int {
	switch c {
	case ColorRed:
		return 0
	case ColorGreen:
		return 1
	case ColorMagenta:
		return 2
	default:
		return 3
	}
}

func sortedBySize(objects []Object) []Object {
	out := slices.Clone(objects)
	slices.SortStableFunc(out, func(x, y Object) int {
		return cmp.Compare(y.Area, x.Area)
	})
	return out
}

// roiRect returns the centered rectangle covering fraction of each
// dimension, never smaller than one pixel.
func roiRect(width, height int, fraction float64) image.Rectangle {
	w := max(1, int(float64(width)*fraction))
	h := max(1, int(float64(height)*fraction))
	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
