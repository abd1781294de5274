package analyzer

import (
	"fmt"
	"image"
	"math"
	"slices"

	"gocv.io/x/gocv"
)

// ShapeLimits are the geometric bounds a contour must respect to count as
// a pillar rather than foliage or clutter.
type ShapeLimits struct {
	MinSolidity           float64
	MinAspect             float64
	MaxAspect             float64
	MinExtent             float64
	MaxPerimeterAreaRatio float64

	MinRectangularity float64
	MinConvexity      float64
	MaxDefects        int
	SharpAngle        float64 // degrees
	SharpWindow       int
	MaxSharpAngles    int
	VertexEpsilon     float64
	MinVertices       int
	MaxVertices       int
}

// DefaultShapeLimits returns limits that accept upright rectangular pillars.
func DefaultShapeLimits() ShapeLimits {
	return ShapeLimits{
		MinSolidity:           0.5,
		MinAspect:             0.25,
		MaxAspect:             4.0,
		MinExtent:             0.4,
		MaxPerimeterAreaRatio: 20,
		MinRectangularity:     0.6,
		MinConvexity:          0.85,
		MaxDefects:            3,
		SharpAngle:            45,
		SharpWindow:           20,
		MaxSharpAngles:        2,
		VertexEpsilon:         0.02,
		MinVertices:           4,
		MaxVertices:           12,
	}
}

// Metrics are the measurements the shape filters run on.
type Metrics struct {
	Area      float64
	Perimeter float64
	Bounds    image.Rectangle
	HullArea  float64
	Defects   int
	Sharp     int
	Vertices  int
}

// Solidity is the contour area over its convex hull area.
func (m Metrics) Solidity() float64 {
	if m.HullArea <= 0 {
		return 0
	}
	return m.Area / m.HullArea
}

// Aspect is the bounding box width over its height.
func (m Metrics) Aspect() float64 {
	if m.Bounds.Dy() == 0 {
		return math.Inf(1)
	}
	return float64(m.Bounds.Dx()) / float64(m.Bounds.Dy())
}

// Extent is the contour area over its bounding box area.
func (m Metrics) Extent() float64 {
	box := m.Bounds.Dx() * m.Bounds.Dy()
	if box == 0 {
		return 0
	}
	return m.Area / float64(box)
}

// Complexity is perimeter squared over area.
func (m Metrics) Complexity() float64 {
	if m.Area <= 0 {
		return math.Inf(1)
	}
	return m.Perimeter * m.Perimeter / m.Area
}

// Measure computes the metrics of a closed contour.
func (l ShapeLimits) Measure(points []image.Point) Metrics {
	pv := gocv.NewPointVectorFromPoints(points)
	defer pv.Close()

	m := Metrics{
		Area:      gocv.ContourArea(pv),
		Perimeter: gocv.ArcLength(pv, true),
		Bounds:    gocv.BoundingRect(pv),
	}

	hull := convexHull(pv)
	m.HullArea = math.Abs(polygonArea(pick(points, hull)))
	m.Defects = countDefects(points, hull)
	m.Sharp = sharpAngles(points, l.SharpWindow, l.SharpAngle)

	approx := gocv.ApproxPolyDP(pv, l.VertexEpsilon*m.Perimeter, true)
	m.Vertices = approx.Size()
	approx.Close()

	return m
}

// Regular applies the basic filters and returns the first one that fails.
func (l ShapeLimits) Regular(m Metrics) error {
	if s := m.Solidity(); s < l.MinSolidity {
		return fmt.Errorf("solidity %.2f below %.2f", s, l.MinSolidity)
	}
	if a := m.Aspect(); a < l.MinAspect || a > l.MaxAspect {
		return fmt.Errorf("aspect ratio %.2f outside [%.2f,%.2f]", a, l.MinAspect, l.MaxAspect)
	}
	if e := m.Extent(); e < l.MinExtent {
		return fmt.Errorf("extent %.2f below %.2f", e, l.MinExtent)
	}
	if c := m.Complexity(); c > l.MaxPerimeterAreaRatio {
		return fmt.Errorf("perimeter²/area %.1f above %.1f", c, l.MaxPerimeterAreaRatio)
	}
	return nil
}

// Rectangular applies the advanced filters and returns the first one that
// fails. spikes disables the sharp angle check when false.
func (l ShapeLimits) Rectangular(m Metrics, spikes bool) error {
	if r := m.Extent(); r < l.MinRectangularity {
		return fmt.Errorf("rectangularity %.2f below %.2f", r, l.MinRectangularity)
	}
	if c := m.Solidity(); c < l.MinConvexity {
		return fmt.Errorf("convexity %.2f below %.2f", c, l.MinConvexity)
	}
	if m.Defects > l.MaxDefects {
		return fmt.Errorf("%d convexity defects, max %d", m.Defects, l.MaxDefects)
	}
	if spikes && m.Sharp > l.MaxSharpAngles {
		return fmt.Errorf("%d sharp vertices, max %d", m.Sharp, l.MaxSharpAngles)
	}
	if m.Vertices < l.MinVertices || m.Vertices > l.MaxVertices {
		return fmt.Errorf("%d vertices outside [%d,%d]", m.Vertices, l.MinVertices, l.MaxVertices)
	}
	return nil
}

// smooth simplifies a contour with ApproxPolyDP, optionally in a second,
// finer pass. Degenerate results fall back to the input.
func smooth(points []image.Point, epsilon float64, double bool) []image.Point {
	pv := gocv.NewPointVectorFromPoints(points)
	defer pv.Close()

	first := gocv.ApproxPolyDP(pv, epsilon*gocv.ArcLength(pv, true), true)
	defer first.Close()

	out := first.ToPoints()
	if double && first.Size() > 4 {
		second := gocv.ApproxPolyDP(first, epsilon/2*gocv.ArcLength(first, true), true)
		out = second.ToPoints()
		second.Close()
	}

	if len(out) < 3 {
		return points
	}
	return out
}

// convexHull returns the contour indices of the hull in ascending order.
func convexHull(pv gocv.PointVector) []int {
	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(pv, &hull, false, false)

	idx := make([]int, hull.Rows())
	for i := range idx {
		idx[i] = int(hull.GetIntAt(i, 0))
	}
	slices.Sort(idx)
	return idx
}

func pick(points []image.Point, idx []int) []image.Point {
	out := make([]image.Point, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(points) {
			out = append(out, points[i])
		}
	}
	return out
}

// countDefects counts the hull edges that skip over contour points lying
// strictly inside the hull.
func countDefects(points []image.Point, hull []int) int {
	n := len(points)
	if len(hull) < 3 || n < 4 {
		return 0
	}

	defects := 0
	for i, start := range hull {
		end := hull[(i+1)%len(hull)]
		a, b := points[start], points[end]

		depth := 0.0
		for j := (start + 1) % n; j != end; j = (j + 1) % n {
			depth = math.Max(depth, lineDistance(points[j], a, b))
		}
		if depth > 0 {
			defects++
		}
	}
	return defects
}

func lineDistance(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	return math.Abs(dx*float64(a.Y-p.Y)-dy*float64(a.X-p.X)) / length
}

// sharpAngles counts vertices among the first window whose interior angle
// is below threshold degrees.
func sharpAngles(points []image.Point, window int, threshold float64) int {
	n := len(points)
	if n < 3 {
		return 0
	}

	count := 0
	for i := 0; i < min(n, window); i++ {
		p1 := points[i]
		p2 := points[(i+1)%n]
		p3 := points[(i+2)%n]

		v1x, v1y := float64(p1.X-p2.X), float64(p1.Y-p2.Y)
		v2x, v2y := float64(p3.X-p2.X), float64(p3.Y-p2.Y)
		mag1, mag2 := math.Hypot(v1x, v1y), math.Hypot(v2x, v2y)
		if mag1 == 0 || mag2 == 0 {
			continue
		}

		cos := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
		angle := math.Acos(math.Max(-1, math.Min(1, cos))) * 180 / math.Pi
		if angle < threshold {
			count++
		}
	}
	return count
}

// polygonArea returns the signed shoelace area.
func polygonArea(points []image.Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := range points {
		p, q := points[i], points[(i+1)%n]
		sum += float64(p.X*q.Y - q.X*p.Y)
	}
	return sum / 2
}

// centroid returns the center of mass of a closed polygon, falling back to
// the vertex mean for degenerate polygons.
func centroid(points []image.Point) Point {
	n := len(points)
	if n == 0 {
		return Point{}
	}

	a := polygonArea(points)
	if a == 0 {
		var sx, sy float64
		for _, p := range points {
			sx += float64(p.X)
			sy += float64(p.Y)
		}
		return Point{X: sx / float64(n), Y: sy / float64(n)}
	}

	var cx, cy float64
	for i := range points {
		p, q := points[i], points[(i+1)%n]
		cross := float64(p.X*q.Y - q.X*p.Y)
		cx += float64(p.X+q.X) * cross
		cy += float64(p.Y+q.Y) * cross
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}
