package snooze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func TestRegistry_SuppressesUntilWakeUp(t *testing.T) {
	r := NewRegistry(nil)

	r.Set("med-1", "09:00", now.Add(10*time.Minute))

	assert.True(t, r.IsSnoozed("med-1", "09:00", now))
	assert.True(t, r.IsSnoozed("med-1", "09:00", now.Add(9*time.Minute)))
	assert.False(t, r.IsSnoozed("med-1", "09:00", now.Add(10*time.Minute)))
	assert.False(t, r.IsSnoozed("med-1", "12:00", now))
	assert.False(t, r.IsSnoozed("med-2", "09:00", now))
}

func TestRegistry_SetReplacesExisting(t *testing.T) {
	r := NewRegistry(nil)

	r.Set("med-1", "09:00", now.Add(10*time.Minute))
	r.Set("med-1", "09:00", now.Add(30*time.Minute))

	assert.Equal(t, 1, r.Len())
	assert.True(t, r.IsSnoozed("med-1", "09:00", now.Add(20*time.Minute)))
}

func TestRegistry_TakeDueFiresOnce(t *testing.T) {
	r := NewRegistry(nil)

	r.Set("med-1", "09:00", now.Add(5*time.Minute))
	r.Set("med-2", "10:00", now.Add(30*time.Minute))

	due := r.TakeDue(now.Add(5 * time.Minute))
	assert.Len(t, due, 1)
	assert.Equal(t, "med-1", due[0].MedicationID)
	assert.Equal(t, "09:00", due[0].ScheduledTime)

	// Already taken; a second pass at the same instant returns nothing.
	assert.Empty(t, r.TakeDue(now.Add(5*time.Minute)))
	assert.Equal(t, 1, r.Len())

	due = r.TakeDue(now.Add(time.Hour))
	assert.Len(t, due, 1)
	assert.Equal(t, "med-2", due[0].MedicationID)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ClearMedication(t *testing.T) {
	r := NewRegistry(nil)

	r.Set("med-1", "09:00", now.Add(10*time.Minute))
	r.Set("med-1", "21:00", now.Add(12*time.Hour))
	r.Set("med-2", "09:00", now.Add(10*time.Minute))

	r.ClearMedication("med-1")

	assert.Equal(t, 1, r.Len())
	assert.False(t, r.IsSnoozed("med-1", "09:00", now))
	assert.False(t, r.IsSnoozed("med-1", "21:00", now))
	assert.True(t, r.IsSnoozed("med-2", "09:00", now))
}
