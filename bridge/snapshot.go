package bridge

import (
	"blib/billings"
	"sort"
)

// Snapshot maps a time slip id to the end timestamp of its most recent
// entry at one observation. Slips without entries are not recorded.
type Snapshot map[int64]billings.EndTime

// ActiveSet holds the ids of slips seen being timed during one cycle.
type ActiveSet map[int64]struct{}

func TakeSnapshot(slips []billings.TimeSlip) Snapshot {
	snapshot := make(Snapshot, len(slips))
	for _, slip := range slips {
		if end, ok := slip.LastEnd(); ok {
			snapshot[slip.ID] = end
		}
	}
	return snapshot
}

// Diff reports the slips present in both snapshots whose last end timestamp
// changed. A slip only seen in after is never active.
func Diff(before, after Snapshot) ActiveSet {
	active := make(ActiveSet)
	for id, end := range after {
		previous, ok := before[id]
		if !ok {
			continue
		}
		if !previous.Equal(end) {
			active[id] = struct{}{}
		}
	}
	return active
}

func (a ActiveSet) Contains(id int64) bool {
	_, ok := a[id]
	return ok
}

// IDs returns the members in ascending order.
func (a ActiveSet) IDs() []int64 {
	ids := make([]int64, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
