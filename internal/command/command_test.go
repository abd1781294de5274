package command

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wroteam/pillarcam/internal/analyzer"
)

// Areas that land in the middle of each zone.
const (
	frontArea  = 9000.0 // 50cm
	middleArea = 2850.0 // 90cm
	backArea   = 1600.0 // 120cm
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		area float64
		want int
	}{
		{name: "reference", area: ReferenceArea, want: 30},
		{name: "front", area: frontArea, want: 50},
		{name: "middle", area: middleArea, want: 90},
		{name: "back", area: backArea, want: 120},
		{name: "clamped far", area: 1, want: MaxDistance},
		{name: "clamped near", area: 1e6, want: MinDistance},
		{name: "zero area", area: 0, want: MaxDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.area))
		})
	}
}

func TestOrientationOf(t *testing.T) {
	assert.Equal(t, Left, OrientationOf(0, 100))
	assert.Equal(t, Left, OrientationOf(59.9, 100))
	assert.Equal(t, Right, OrientationOf(60, 100))
	assert.Equal(t, Right, OrientationOf(99, 100))
	assert.Equal(t, Right, OrientationOf(10, 0))
}

func TestZoneOf(t *testing.T) {
	tests := map[int]Zone{
		39: ZoneNone, 40: ZoneFront, 60: ZoneFront, 61: ZoneNone,
		80: ZoneMiddle, 100: ZoneMiddle, 105: ZoneNone,
		110: ZoneBack, 130: ZoneBack, 131: ZoneNone,
	}
	for distance, want := range tests {
		assert.Equal(t, want, ZoneOf(distance), "distance %d", distance)
	}

	low, high := ZoneBack.Bounds()
	assert.Equal(t, 110, low)
	assert.Equal(t, 130, high)
}

func TestDetermine(t *testing.T) {
	tests := []struct {
		placement Placement
		want      string
	}{
		{Placement{analyzer.ColorGreen, Right, 50}, "C01"},
		{Placement{analyzer.ColorRed, Right, 40}, "C02"},
		{Placement{analyzer.ColorGreen, Left, 60}, "C07"},
		{Placement{analyzer.ColorRed, Left, 45}, "C08"},
		{Placement{analyzer.ColorGreen, Right, 80}, "C03"},
		{Placement{analyzer.ColorRed, Right, 90}, "C04"},
		{Placement{analyzer.ColorGreen, Left, 100}, "C09"},
		{Placement{analyzer.ColorRed, Left, 85}, "C10"},
		{Placement{analyzer.ColorGreen, Right, 110}, "C05"},
		{Placement{analyzer.ColorRed, Right, 130}, "C06"},
		{Placement{analyzer.ColorGreen, Left, 120}, "C37"},
		{Placement{analyzer.ColorRed, Left, 125}, "C38"},
		{Placement{analyzer.ColorRed, Left, 70}, NoDetection},
		{Placement{analyzer.ColorMagenta, Left, 50}, NoDetection},
	}

	for _, tt := range tests {
		t.Run(tt.placement.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Determine(tt.placement))
		})
	}
}

func TestSafe(t *testing.T) {
	tests := []struct {
		name        string
		color       string
		orientation string
		distance    int
		want        string
	}{
		{name: "spanish red", color: "Rojo", orientation: "L", distance: 50, want: "C08"},
		{name: "spanish green", color: " verde ", orientation: "R", distance: 120, want: "C05"},
		{name: "english", color: "GREEN", orientation: "L", distance: 90, want: "C09"},
		{name: "bad orientation", color: "red", orientation: "C", distance: 50, want: NoDetection},
		{name: "too close", color: "red", orientation: "L", distance: 9, want: NoDetection},
		{name: "too far", color: "red", orientation: "L", distance: 201, want: NoDetection},
		{name: "unknown color", color: "blue", orientation: "L", distance: 50, want: NoDetection},
		{name: "magenta has no case", color: "purple", orientation: "R", distance: 50, want: NoDetection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, info := Safe(tt.color, tt.orientation, tt.distance)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, info)
		})
	}
}

func TestDetermineDual(t *testing.T) {
	front := func(c analyzer.Color, o Orientation) Placement { return Placement{c, o, 50} }
	back := func(c analyzer.Color, o Orientation) Placement { return Placement{c, o, 120} }

	tests := []struct {
		name               string
		primary, secondary Placement
		want               string
	}{
		{name: "C13", primary: front(analyzer.ColorGreen, Left), secondary: back(analyzer.ColorGreen, Right), want: "C13"},
		{name: "C14", primary: front(analyzer.ColorGreen, Left), secondary: back(analyzer.ColorRed, Right), want: "C14"},
		{name: "C15", primary: front(analyzer.ColorRed, Left), secondary: back(analyzer.ColorGreen, Right), want: "C15"},
		{name: "C18", primary: front(analyzer.ColorRed, Left), secondary: back(analyzer.ColorRed, Right), want: "C18"},
		{name: "C31", primary: front(analyzer.ColorGreen, Left), secondary: back(analyzer.ColorGreen, Left), want: "C31"},
		{name: "C32", primary: front(analyzer.ColorGreen, Left), secondary: back(analyzer.ColorRed, Left), want: "C32"},
		{name: "C33", primary: front(analyzer.ColorRed, Left), secondary: back(analyzer.ColorGreen, Left), want: "C33"},
		{name: "C36", primary: front(analyzer.ColorRed, Left), secondary: back(analyzer.ColorRed, Left), want: "C36"},
		{name: "C19", primary: front(analyzer.ColorGreen, Right), secondary: back(analyzer.ColorGreen, Left), want: "C19"},
		{name: "C20", primary: front(analyzer.ColorGreen, Right), secondary: back(analyzer.ColorRed, Left), want: "C20"},
		{name: "C21", primary: front(analyzer.ColorRed, Right), secondary: back(analyzer.ColorGreen, Left), want: "C21"},
		{name: "C24", primary: front(analyzer.ColorRed, Right), secondary: back(analyzer.ColorRed, Left), want: "C24"},
		{name: "C25", primary: front(analyzer.ColorGreen, Right), secondary: back(analyzer.ColorGreen, Right), want: "C25"},
		{name: "C26", primary: front(analyzer.ColorGreen, Right), secondary: back(analyzer.ColorRed, Right), want: "C26"},
		{name: "C27", primary: front(analyzer.ColorRed, Right), secondary: back(analyzer.ColorGreen, Right), want: "C27"},
		{name: "C30", primary: front(analyzer.ColorRed, Right), secondary: back(analyzer.ColorRed, Right), want: "C30"},
		{
			name:      "secondary not in back zone",
			primary:   front(analyzer.ColorRed, Left),
			secondary: Placement{analyzer.ColorGreen, Right, 90},
			want:      "C08",
		},
		{
			name:      "primary not in front zone",
			primary:   Placement{analyzer.ColorGreen, Right, 90},
			secondary: back(analyzer.ColorRed, Left),
			want:      "C03",
		},
		{
			name:      "magenta pair",
			primary:   front(analyzer.ColorGreen, Right),
			secondary: back(analyzer.ColorMagenta, Left),
			want:      "C01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, info := DetermineDual(tt.primary, tt.secondary)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, info)
		})
	}
}

func TestInfo(t *testing.T) {
	info, ok := Info("C01")
	require.True(t, ok)
	assert.Equal(t, "green, front right", info)

	info, ok = Info("C15")
	require.True(t, ok)
	assert.Equal(t, "red front left + green back right", info)

	_, ok = Info("C99")
	assert.False(t, ok)
}

func TestCasesByZone(t *testing.T) {
	zones := CasesByZone()
	assert.Len(t, zones, 3)
	for _, z := range []Zone{ZoneFront, ZoneMiddle, ZoneBack} {
		assert.Len(t, zones[z], 4, "zone %s", z)
	}
}

func TestPillarCommand(t *testing.T) {
	assert.Equal(t, "G,50,L", PillarCommand(analyzer.ColorGreen, 50, Left))
	assert.Equal(t, "R,120,R", PillarCommand(analyzer.ColorRed, 120, Right))
	assert.Equal(t, "E,30,R", PillarCommand(analyzer.ColorMagenta, 30, Right))
	assert.Equal(t, "N,10,L", PillarCommand(analyzer.ColorNone, 10, Left))
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, analyzer.ColorRed, NormalizeColor("RED"))
	assert.Equal(t, analyzer.ColorRed, NormalizeColor("rojo"))
	assert.Equal(t, analyzer.ColorGreen, NormalizeColor("Verde"))
	assert.Equal(t, analyzer.ColorMagenta, NormalizeColor("purple"))
	assert.Equal(t, analyzer.ColorNone, NormalizeColor("azul"))
}

func TestMapper_Map(t *testing.T) {
	roi := image.Rect(0, 0, 256, 192)
	obj := func(c analyzer.Color, area, x float64) analyzer.Object {
		return analyzer.Object{Color: c, Area: area, Center: analyzer.Point{X: x, Y: 96}}
	}
	result := func(objects ...analyzer.Object) *analyzer.Result {
		d := objects[0]
		return &analyzer.Result{Color: d.Color, Area: d.Area, Center: d.Center, ROI: roi, Objects: objects}
	}

	tests := []struct {
		name       string
		result     *analyzer.Result
		wantPillar string
		wantCase   string
	}{
		{
			name:       "single red on the left",
			result:     result(obj(analyzer.ColorRed, frontArea, 50)),
			wantPillar: "R,50,L",
			wantCase:   "C08",
		},
		{
			name:       "single green far right",
			result:     result(obj(analyzer.ColorGreen, backArea, 200)),
			wantPillar: "G,120,R",
			wantCase:   "C05",
		},
		{
			name:       "front red with back green",
			result:     result(obj(analyzer.ColorRed, frontArea, 50), obj(analyzer.ColorGreen, backArea, 200)),
			wantPillar: "R,50,L",
			wantCase:   "C15",
		},
		{
			name:       "second pillar in middle zone",
			result:     result(obj(analyzer.ColorRed, frontArea, 50), obj(analyzer.ColorGreen, middleArea, 200)),
			wantPillar: "R,50,L",
			wantCase:   "C08",
		},
		{
			name:       "second pillar too small",
			result:     result(obj(analyzer.ColorGreen, frontArea, 200), obj(analyzer.ColorRed, 700, 20)),
			wantPillar: "G,50,R",
			wantCase:   "C01",
		},
		{
			name:       "magenta parking marker",
			result:     result(obj(analyzer.ColorMagenta, ReferenceArea, 128)),
			wantPillar: "E,30,L",
			wantCase:   NoDetection,
		},
	}

	m := NewMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := m.Map(tt.result)
			require.True(t, ok)
			assert.Equal(t, tt.wantPillar, cmd.Pillar)
			assert.Equal(t, tt.wantCase, cmd.Case)
		})
	}
}

func TestMapper_MapRejects(t *testing.T) {
	m := NewMapper()

	_, ok := m.Map(nil)
	assert.False(t, ok)

	_, ok = m.Map(&analyzer.Result{})
	assert.False(t, ok)

	_, ok = m.Map(&analyzer.Result{Color: analyzer.ColorRed, Area: 799, ROI: image.Rect(0, 0, 100, 100)})
	assert.False(t, ok)
}
