package phase

import "fmt"

// Phase tracks how far one compilation got.
//
// Progression is strictly sequential:
// NotStarted -> Decoded -> Checked -> Emitted
//
// Transitions are validated by Tracker.Advance against the
// PhasePrerequisites map.
type Phase int

const (
	PhaseNotStarted Phase = iota // Nothing done yet
	PhaseDecoded                 // Tree available (decoded from JSON or handed in)
	PhaseChecked                 // Every expression carries its type
	PhaseEmitted                 // Module bytes produced
)

// PhasePrerequisites maps each phase to its required predecessor phase
var PhasePrerequisites = map[Phase]Phase{
	PhaseDecoded: PhaseNotStarted,
	PhaseChecked: PhaseDecoded,
	PhaseEmitted: PhaseChecked,
}

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseDecoded:
		return "Decoded"
	case PhaseChecked:
		return "Checked"
	case PhaseEmitted:
		return "Emitted"
	default:
		return "Unknown"
	}
}

// Tracker records the phase of one compilation.
type Tracker struct {
	current Phase
}

// Current returns the last phase reached.
func (t *Tracker) Current() Phase { return t.current }

// CanProcess reports whether target directly follows the current phase.
func (t *Tracker) CanProcess(target Phase) bool {
	prerequisite, exists := PhasePrerequisites[target]
	if !exists {
		return false
	}
	return t.current == prerequisite
}

// Advance moves to target, or fails when a phase would be skipped or
// repeated.
func (t *Tracker) Advance(target Phase) error {
	if !t.CanProcess(target) {
		return fmt.Errorf("cannot advance from %s to %s", t.current, target)
	}
	t.current = target
	return nil
}
