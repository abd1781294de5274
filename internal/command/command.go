// Package command turns detected pillars into the short serial commands the
// drive controller understands.
package command

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/wroteam/pillarcam/internal/analyzer"
)

// Distance calibration: an object of ReferenceArea px² is ReferenceDistance
// centimeters away.
const (
	ReferenceArea     = 26000.0
	ReferenceDistance = 30.0
	MinDistance       = 10
	MaxDistance       = 135

	// Safe rejects distances outside this window.
	MinSafeDistance = 10
	MaxSafeDistance = 200

	// LeftThreshold is the relative X below which an object is on the left.
	LeftThreshold = 0.60
)

// NoDetection is sent when nothing valid is in view.
const NoDetection = "N"

// Orientation is the side of the image an object is on.
type Orientation string

// Orientations.
const (
	Left  Orientation = "L"
	Right Orientation = "R"
)

// Valid reports whether o is Left or Right.
func (o Orientation) Valid() bool {
	return o == Left || o == Right
}

// Zone is a distance band on the course.
type Zone int

// Zones, nearest first.
const (
	ZoneNone Zone = iota
	ZoneFront
	ZoneMiddle
	ZoneBack
)

var zoneBounds = map[Zone][2]int{
	ZoneFront:  {40, 60},
	ZoneMiddle: {80, 100},
	ZoneBack:   {110, 130},
}

// ZoneOf returns the zone containing distance, or ZoneNone.
func ZoneOf(distance int) Zone {
	for _, z := range []Zone{ZoneFront, ZoneMiddle, ZoneBack} {
		b := zoneBounds[z]
		if distance >= b[0] && distance <= b[1] {
			return z
		}
	}
	return ZoneNone
}

// Bounds returns the inclusive distance range of the zone.
func (z Zone) Bounds() (low, high int) {
	b := zoneBounds[z]
	return b[0], b[1]
}

func (z Zone) String() string {
	switch z {
	case ZoneFront:
		return "front"
	case ZoneMiddle:
		return "middle"
	case ZoneBack:
		return "back"
	default:
		return "none"
	}
}

// Distance estimates how far away an object of the given pixel area is,
// in centimeters, clamped to [MinDistance, MaxDistance].
func Distance(area float64) int {
	if area <= 0 {
		return MaxDistance
	}
	d := int(math.Sqrt(ReferenceArea/area) * ReferenceDistance)
	return lo.Clamp(d, MinDistance, MaxDistance)
}

// OrientationOf returns Left when centerX lies in the left 60% of width.
func OrientationOf(centerX float64, width int) Orientation {
	if width <= 0 {
		return Right
	}
	if centerX/float64(width) < LeftThreshold {
		return Left
	}
	return Right
}

// NormalizeColor maps English and Spanish color names to a pillar color.
// Unknown names yield ColorNone.
func NormalizeColor(name string) analyzer.Color {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "red", "rojo":
		return analyzer.ColorRed
	case "green", "verde":
		return analyzer.ColorGreen
	case "magenta", "purple":
		return analyzer.ColorMagenta
	default:
		return analyzer.ColorNone
	}
}

// PillarCommand formats the serial line "<code>,<distance>,<orientation>".
// The code is G for green, R for red, E for magenta (parking) and N otherwise.
func PillarCommand(c analyzer.Color, distance int, o Orientation) string {
	return fmt.Sprintf("%s,%d,%s", colorCode(c), distance, o)
}

func colorCode(c analyzer.Color) string {
	switch c {
	case analyzer.ColorRed:
		return "R"
	case analyzer.ColorGreen:
		return "G"
	case analyzer.ColorMagenta:
		return "E"
	default:
		return NoDetection
	}
}
