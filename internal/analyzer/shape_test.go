package analyzer

import (
	"image"
	"math"
	"testing"
)

func rectPoints(r image.Rectangle) []image.Point {
	return []image.Point{
		{r.Min.X, r.Min.Y},
		{r.Max.X, r.Min.Y},
		{r.Max.X, r.Max.Y},
		{r.Min.X, r.Max.Y},
	}
}

func starPoints(cx, cy int, outer, inner float64) []image.Point {
	points := make([]image.Point, 0, 10)
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		theta := float64(i)*math.Pi/5 - math.Pi/2
		points = append(points, image.Pt(
			cx+int(math.Round(r*math.Cos(theta))),
			cy+int(math.Round(r*math.Sin(theta))),
		))
	}
	return points
}

func TestShapeLimits_AcceptsRectangle(t *testing.T) {
	limits := DefaultShapeLimits()
	m := limits.Measure(rectPoints(image.Rect(10, 10, 70, 130)))

	if m.Area != 60*120 {
		t.Errorf("Area = %f, want %d", m.Area, 60*120)
	}
	if m.Defects != 0 {
		t.Errorf("Defects = %d, want 0", m.Defects)
	}
	if m.Vertices != 4 {
		t.Errorf("Vertices = %d, want 4", m.Vertices)
	}
	if err := limits.Regular(m); err != nil {
		t.Errorf("Regular() error = %v", err)
	}
	if err := limits.Rectangular(m, true); err != nil {
		t.Errorf("Rectangular() error = %v", err)
	}
}

func TestShapeLimits_RejectsStar(t *testing.T) {
	limits := DefaultShapeLimits()
	m := limits.Measure(starPoints(200, 200, 100, 40))

	if m.Defects != 5 {
		t.Errorf("Defects = %d, want 5", m.Defects)
	}
	if m.Solidity() > 0.6 {
		t.Errorf("Solidity() = %f, want a concave shape", m.Solidity())
	}
	if err := limits.Rectangular(m, true); err == nil {
		t.Error("expected star to fail the rectangular filter")
	}
}

func TestShapeLimits_Regular(t *testing.T) {
	limits := DefaultShapeLimits()

	tests := []struct {
		name    string
		metrics Metrics
		wantErr bool
	}{
		{
			name:    "square",
			metrics: Metrics{Area: 100, Perimeter: 40, Bounds: image.Rect(0, 0, 10, 10), HullArea: 100},
		},
		{
			name:    "too wide",
			metrics: Metrics{Area: 500, Perimeter: 120, Bounds: image.Rect(0, 0, 50, 10), HullArea: 500},
			wantErr: true,
		},
		{
			name:    "too tall",
			metrics: Metrics{Area: 500, Perimeter: 120, Bounds: image.Rect(0, 0, 10, 50), HullArea: 500},
			wantErr: true,
		},
		{
			name:    "hollow",
			metrics: Metrics{Area: 30, Perimeter: 40, Bounds: image.Rect(0, 0, 10, 10), HullArea: 100},
			wantErr: true,
		},
		{
			name:    "ragged outline",
			metrics: Metrics{Area: 100, Perimeter: 60, Bounds: image.Rect(0, 0, 10, 10), HullArea: 100},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.Regular(tt.metrics)
			if (err != nil) != tt.wantErr {
				t.Errorf("Regular() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShapeLimits_Rectangular(t *testing.T) {
	limits := DefaultShapeLimits()
	base := Metrics{Area: 100, Perimeter: 40, Bounds: image.Rect(0, 0, 10, 10), HullArea: 100, Vertices: 4}

	tests := []struct {
		name    string
		mutate  func(m *Metrics)
		spikes  bool
		wantErr bool
	}{
		{name: "rectangle", mutate: func(m *Metrics) {}},
		{name: "too many defects", mutate: func(m *Metrics) { m.Defects = 4 }, wantErr: true},
		{name: "triangle", mutate: func(m *Metrics) { m.Vertices = 3 }, wantErr: true},
		{name: "too many vertices", mutate: func(m *Metrics) { m.Vertices = 13 }, wantErr: true},
		{name: "spiky", mutate: func(m *Metrics) { m.Sharp = 3 }, spikes: true, wantErr: true},
		{name: "spiky with spike check off", mutate: func(m *Metrics) { m.Sharp = 3 }},
		{name: "concave", mutate: func(m *Metrics) { m.HullArea = 125 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base
			tt.mutate(&m)
			err := limits.Rectangular(m, tt.spikes)
			if (err != nil) != tt.wantErr {
				t.Errorf("Rectangular() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSharpAngles(t *testing.T) {
	square := rectPoints(image.Rect(0, 0, 10, 10))
	if got := sharpAngles(square, 20, 45); got != 0 {
		t.Errorf("sharpAngles(square) = %d, want 0", got)
	}

	spike := []image.Point{{0, 0}, {100, 5}, {0, 10}}
	if got := sharpAngles(spike, 20, 45); got != 1 {
		t.Errorf("sharpAngles(spike) = %d, want 1", got)
	}

	// The tip is the third vertex checked, outside a window of one.
	rotated := []image.Point{{0, 10}, {0, 0}, {100, 5}}
	if got := sharpAngles(rotated, 1, 45); got != 0 {
		t.Errorf("sharpAngles(rotated, window 1) = %d, want 0", got)
	}
}

func TestCountDefects(t *testing.T) {
	// L shape: one notch where the hull cuts the corner.
	points := []image.Point{{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}}
	hull := []int{0, 1, 2, 4, 5}

	if got := countDefects(points, hull); got != 1 {
		t.Errorf("countDefects() = %d, want 1", got)
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name   string
		points []image.Point
		want   Point
	}{
		{name: "rectangle", points: rectPoints(image.Rect(78, 66, 177, 125)), want: Point{127.5, 95.5}},
		{name: "triangle", points: []image.Point{{0, 0}, {6, 0}, {0, 6}}, want: Point{2, 2}},
		{name: "degenerate line", points: []image.Point{{0, 0}, {4, 0}}, want: Point{2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := centroid(tt.points)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("centroid() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSmooth_CollapsesCollinearPoints(t *testing.T) {
	var points []image.Point
	for x := 0; x < 100; x += 10 {
		points = append(points, image.Pt(x, 0))
	}
	for y := 0; y < 60; y += 10 {
		points = append(points, image.Pt(100, y))
	}
	for x := 100; x > 0; x -= 10 {
		points = append(points, image.Pt(x, 60))
	}
	for y := 60; y > 0; y -= 10 {
		points = append(points, image.Pt(0, y))
	}

	got := smooth(points, 0.008, true)
	if len(got) != 4 {
		t.Errorf("smooth() returned %d points, want 4: %v", len(got), got)
	}
}
