// Package snooze holds the transient snooze registry. Entries live only in
// memory: a process restart forgets all snoozes, which is accepted behavior.
package snooze

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is one pending snooze: a (medication, slot) pair suppressed until
// the wake-up instant.
type Entry struct {
	MedicationID  string
	ScheduledTime string
	WakeUp        time.Time
}

type key struct {
	medicationID  string
	scheduledTime string
}

// Registry is the in-memory snooze set. At most one entry exists per
// (medication, slot); setting a new snooze for an existing key replaces it.
type Registry struct {
	mu      sync.Mutex
	entries map[key]Entry
	logger  *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[key]Entry),
		logger:  logger,
	}
}

// Set inserts or replaces the snooze for (medicationID, scheduledTime).
func (r *Registry) Set(medicationID, scheduledTime string, wakeUp time.Time) {
	r.mu.Lock()
	r.entries[key{medicationID, scheduledTime}] = Entry{
		MedicationID:  medicationID,
		ScheduledTime: scheduledTime,
		WakeUp:        wakeUp,
	}
	r.mu.Unlock()

	r.logger.Debug("snooze set",
		zap.String("medication_id", medicationID),
		zap.String("scheduled_time", scheduledTime),
		zap.Time("wake_up", wakeUp),
	)
}

// IsSnoozed reports whether an unexpired snooze exists for the slot.
func (r *Registry) IsSnoozed(medicationID, scheduledTime string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key{medicationID, scheduledTime}]
	return ok && e.WakeUp.After(now)
}

// ClearMedication removes every pending snooze for the medication. A
// successful log of any slot cancels all of its snoozes.
func (r *Registry) ClearMedication(medicationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.entries {
		if k.medicationID == medicationID {
			delete(r.entries, k)
		}
	}
}

// TakeDue removes and returns every entry whose wake-up instant has
// elapsed. The registry is rebuilt as a filter in one pass so an entry can
// never fire twice.
func (r *Registry) TakeDue(now time.Time) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []Entry
	remaining := make(map[key]Entry, len(r.entries))
	for k, e := range r.entries {
		if e.WakeUp.After(now) {
			remaining[k] = e
		} else {
			due = append(due, e)
		}
	}
	r.entries = remaining

	return due
}

// Len returns the number of pending snoozes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
