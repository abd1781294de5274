package command

import (
	"github.com/wroteam/pillarcam/internal/analyzer"
)

// MinArea is the smallest object area, in px², that produces a command.
const MinArea = 800.0

// Command is the outcome of mapping one analysis result.
type Command struct {
	// Pillar is the serial line sent to the controller.
	Pillar string
	// Case is the maneuver code, or NoDetection.
	Case string
	Info string
}

// Mapper converts analyzer results into commands.
type Mapper struct {
	MinArea float64
}

// NewMapper returns a Mapper with the default area threshold.
func NewMapper() *Mapper {
	return &Mapper{MinArea: MinArea}
}

// Locate places an object relative to the analyzed region.
func Locate(obj analyzer.Object, width int) Placement {
	return Placement{
		Color:       obj.Color,
		Orientation: OrientationOf(obj.Center.X, width),
		Distance:    Distance(obj.Area),
	}
}

// Map returns the command for r. ok is false when nothing large enough was
// detected; the caller decides when that becomes NoDetection.
func (m *Mapper) Map(r *analyzer.Result) (Command, bool) {
	if !r.Found() || r.Area < m.MinArea {
		return Command{}, false
	}

	primary := analyzer.Object{Color: r.Color, Area: r.Area, Center: r.Center}
	p := Locate(primary, r.Width())

	cmd := Command{Pillar: PillarCommand(p.Color, p.Distance, p.Orientation)}

	secondary, ok := m.secondary(r)
	if ok {
		cmd.Case, cmd.Info = DetermineDual(p, Locate(secondary, r.Width()))
	} else {
		cmd.Case, cmd.Info = Safe(string(p.Color), string(p.Orientation), p.Distance)
	}
	return cmd, true
}

// secondary returns the largest object other than the dominant one.
func (m *Mapper) secondary(r *analyzer.Result) (analyzer.Object, bool) {
	for _, o := range r.Objects {
		if o.Color == r.Color || o.Area < m.MinArea {
			continue
		}
		return o, true
	}
	return analyzer.Object{}, false
}
