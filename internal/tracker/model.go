// Package tracker implements per-user tuition attendance records:
// named classes with monotonically increasing attended-day counters,
// persisted through a pluggable Store backend.
package tracker

// TuitionEntry is a single registered tuition class.
type TuitionEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Days int    `json:"days"`
}

// UserRecord holds all tuition entries registered by one user.
type UserRecord struct {
	Tuitions []TuitionEntry `json:"tuitions"`
}

// NewUserRecord returns an empty record with no tuitions.
func NewUserRecord() *UserRecord {
	return &UserRecord{Tuitions: []TuitionEntry{}}
}

// Clone returns a deep copy so callers can mutate freely.
func (r *UserRecord) Clone() *UserRecord {
	if r == nil {
		return NewUserRecord()
	}
	cp := &UserRecord{Tuitions: make([]TuitionEntry, len(r.Tuitions))}
	copy(cp.Tuitions, r.Tuitions)
	return cp
}

// Find returns the index of the tuition with the given name, or -1.
// Names are matched exactly, case sensitive.
func (r *UserRecord) Find(name string) int {
	if r == nil {
		return -1
	}
	for i := range r.Tuitions {
		if r.Tuitions[i].Name == name {
			return i
		}
	}
	return -1
}
