package command

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/wroteam/pillarcam/internal/analyzer"
)

// Placement is where one pillar was seen.
type Placement struct {
	Color       analyzer.Color
	Orientation Orientation
	Distance    int
}

func (p Placement) String() string {
	return fmt.Sprintf("%s %s %dcm", p.Color, p.Orientation, p.Distance)
}

// Case is a single-pillar maneuver.
type Case struct {
	Code        string
	Color       analyzer.Color
	Orientation Orientation
	Zone        Zone
}

// Matches reports whether the case covers the placement.
func (c Case) Matches(p Placement) bool {
	return c.Color == p.Color && c.Orientation == p.Orientation && ZoneOf(p.Distance) == c.Zone
}

// Description returns a human readable summary of the case.
func (c Case) Description() string {
	return fmt.Sprintf("%s, %s %s", c.Color, c.Zone, side(c.Orientation))
}

// DualCase is a maneuver for a front pillar followed by a back pillar.
type DualCase struct {
	Code                   string
	Primary, Secondary     analyzer.Color
	PrimarySide, OtherSide Orientation
}

// Description returns a human readable summary of the case.
func (c DualCase) Description() string {
	return fmt.Sprintf("%s front %s + %s back %s",
		c.Primary, side(c.PrimarySide), c.Secondary, side(c.OtherSide))
}

func side(o Orientation) string {
	if o == Left {
		return "left"
	}
	return "right"
}

// SingleCases lists every single-pillar case.
var SingleCases = []Case{
	{"C01", analyzer.ColorGreen, Right, ZoneFront},
	{"C02", analyzer.ColorRed, Right, ZoneFront},
	{"C07", analyzer.ColorGreen, Left, ZoneFront},
	{"C08", analyzer.ColorRed, Left, ZoneFront},

	{"C03", analyzer.ColorGreen, Right, ZoneMiddle},
	{"C04", analyzer.ColorRed, Right, ZoneMiddle},
	{"C09", analyzer.ColorGreen, Left, ZoneMiddle},
	{"C10", analyzer.ColorRed, Left, ZoneMiddle},

	{"C05", analyzer.ColorGreen, Right, ZoneBack},
	{"C06", analyzer.ColorRed, Right, ZoneBack},
	{"C37", analyzer.ColorGreen, Left, ZoneBack},
	{"C38", analyzer.ColorRed, Left, ZoneBack},
}

// DualCases lists every front/back pillar pair.
var DualCases = []DualCase{
	{"C13", analyzer.ColorGreen, analyzer.ColorGreen, Left, Right},
	{"C14", analyzer.ColorGreen, analyzer.ColorRed, Left, Right},
	{"C15", analyzer.ColorRed, analyzer.ColorGreen, Left, Right},
	{"C18", analyzer.ColorRed, analyzer.ColorRed, Left, Right},
	{"C31", analyzer.ColorGreen, analyzer.ColorGreen, Left, Left},
	{"C32", analyzer.ColorGreen, analyzer.ColorRed, Left, Left},
	{"C33", analyzer.ColorRed, analyzer.ColorGreen, Left, Left},
	{"C36", analyzer.ColorRed, analyzer.ColorRed, Left, Left},

	{"C19", analyzer.ColorGreen, analyzer.ColorGreen, Right, Left},
	{"C20", analyzer.ColorGreen, analyzer.ColorRed, Right, Left},
	{"C21", analyzer.ColorRed, analyzer.ColorGreen, Right, Left},
	{"C24", analyzer.ColorRed, analyzer.ColorRed, Right, Left},
	{"C25", analyzer.ColorGreen, analyzer.ColorGreen, Right, Right},
	{"C26", analyzer.ColorGreen, analyzer.ColorRed, Right, Right},
	{"C27", analyzer.ColorRed, analyzer.ColorGreen, Right, Right},
	{"C30", analyzer.ColorRed, analyzer.ColorRed, Right, Right},
}

// Determine returns the code of the single case matching p, or NoDetection.
func Determine(p Placement) string {
	c, ok := lo.Find(SingleCases, func(c Case) bool { return c.Matches(p) })
	if !ok {
		return NoDetection
	}
	return c.Code
}

// Safe validates raw inputs before looking up a single case. The color name
// is normalized first. It returns the code and a description of the outcome.
func Safe(color string, orientation string, distance int) (string, string) {
	c := NormalizeColor(color)
	o := Orientation(orientation)

	if !o.Valid() {
		return NoDetection, fmt.Sprintf("invalid orientation %q", orientation)
	}
	if distance < MinSafeDistance || distance > MaxSafeDistance {
		return NoDetection, fmt.Sprintf("distance %dcm out of range", distance)
	}

	p := Placement{Color: c, Orientation: o, Distance: distance}
	code := Determine(p)
	if code == NoDetection {
		return code, fmt.Sprintf("no case for %s", p)
	}
	info, _ := Info(code)
	return code, info
}

// DetermineDual returns the dual case for a front primary and a back
// secondary pillar. Any other arrangement falls back to the primary's
// single case.
func DetermineDual(primary, secondary Placement) (string, string) {
	if ZoneOf(primary.Distance) != ZoneFront || ZoneOf(secondary.Distance) != ZoneBack {
		code, info := Safe(string(primary.Color), string(primary.Orientation), primary.Distance)
		return code, "not a front/back pair, using primary: " + info
	}

	dual, ok := lo.Find(DualCases, func(c DualCase) bool {
		return c.Primary == primary.Color && c.PrimarySide == primary.Orientation &&
			c.Secondary == secondary.Color && c.OtherSide == secondary.Orientation
	})
	if ok {
		return dual.Code, dual.Description()
	}

	code, info := Safe(string(primary.Color), string(primary.Orientation), primary.Distance)
	return code, "no dual case, using primary: " + info
}

// Info returns the description of a case code.
func Info(code string) (string, bool) {
	if c, ok := lo.Find(SingleCases, func(c Case) bool { return c.Code == code }); ok {
		return c.Description(), true
	}
	if c, ok := lo.Find(DualCases, func(c DualCase) bool { return c.Code == code }); ok {
		return c.Description(), true
	}
	return "", false
}

// CasesByZone groups the single cases by distance zone.
func CasesByZone() map[Zone][]Case {
	return lo.GroupBy(SingleCases, func(c Case) Zone { return c.Zone })
}
