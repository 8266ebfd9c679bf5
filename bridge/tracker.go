package bridge

import (
	"fmt"
	"sort"
)

type TransitionKind int

const (
	Started TransitionKind = iota + 1
	Stopped
)

func (k TransitionKind) String() string {
	switch k {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// Label is what a notification says about a slip.
type Label struct {
	Project string
	Slip    string
}

type Transition struct {
	Kind   TransitionKind
	SlipID int64
	Label  Label
}

// Message renders the chat line for the transition.
func (t Transition) Message(actor string) string {
	verb := "is now working on"
	if t.Kind == Stopped {
		verb = "is no longer working on"
	}
	return fmt.Sprintf("%s %s %s: %s", actor, verb, t.Label.Project, t.Label.Slip)
}

// Tracker holds the per-slip ACTIVE/INACTIVE state between cycles. Slips
// start INACTIVE. Labels of active slips are kept so a stop can be announced
// even when the slip is missing from the latest observation.
type Tracker struct {
	active map[int64]Label
}

func NewTracker() *Tracker {
	return &Tracker{active: make(map[int64]Label)}
}

// Advance applies one cycle and returns the transitions it caused: stops
// first, then starts, each group in ascending slip id order.
func (t *Tracker) Advance(cycle Cycle) []Transition {
	stopped := make([]int64, 0)
	for id := range t.active {
		if !cycle.Active.Contains(id) {
			stopped = append(stopped, id)
		}
	}
	sort.Slice(stopped, func(i, j int) bool { return stopped[i] < stopped[j] })

	transitions := make([]Transition, 0, len(stopped)+len(cycle.Active))
	for _, id := range stopped {
		transitions = append(transitions, Transition{Kind: Stopped, SlipID: id, Label: t.active[id]})
		delete(t.active, id)
	}

	for _, id := range cycle.Active.IDs() {
		if _, already := t.active[id]; already {
			continue
		}
		label := Label{}
		if slip, ok := cycle.Slips[id]; ok {
			label = Label{Project: slip.Project.DisplayName(), Slip: slip.Name}
		}
		t.active[id] = label
		transitions = append(transitions, Transition{Kind: Started, SlipID: id, Label: label})
	}

	return transitions
}

// Active returns the ids currently in the ACTIVE state, ascending.
func (t *Tracker) Active() []int64 {
	ids := make([]int64, 0, len(t.active))
	for id := range t.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
