package annotator

import (
	"image"
	"image/color"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// bgr converts an OpenCV-scale HSV triple into a BGR scalar.
func bgr(h, s, v float64) gocv.Scalar {
	c := colorful.Hsv(h*2, s/255, v/255)
	r, g, b := c.RGB255()
	return gocv.NewScalar(float64(b), float64(g), float64(r), 0)
}

// fill converts an OpenCV-scale HSV triple into the color.RGBA gocv uses
// when drawing onto a BGR frame.
func fill(h, s, v float64) color.RGBA {
	r, g, b := colorful.Hsv(h*2, s/255, v/255).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func solidFrame(t *testing.T, rows, cols int, s gocv.Scalar) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(s, rows, cols, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func blackFrame(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	return solidFrame(t, rows, cols, gocv.NewScalar(0, 0, 0, 0))
}

func pixel(frame gocv.Mat, x, y int) [3]uint8 {
	v := frame.GetVecbAt(y, x)
	return [3]uint8{v[0], v[1], v[2]}
}

func bounds(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

func detectionFor(t *testing.T, detections []Detection, name string) Detection {
	t.Helper()
	for _, d := range detections {
		if d.Target == name {
			return d
		}
	}
	t.Fatalf("no detection for target %q", name)
	return Detection{}
}
