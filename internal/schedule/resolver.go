// Package schedule resolves medication frequency models into concrete
// time-slots: which HH:mm slots are due on a given day, whether a dose is
// due at an exact instant, and which unlogged slot a profile should be
// prompted with next.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/dosewise/dosewise/pkg/model"
)

// GraceMinutes is how far in the past an unlogged slot is still surfaced
// as the "next dose". Older slots stay loggable but drop out of the prompt.
const GraceMinutes = 60

const lastMinuteOfDay = 23*60 + 59

// DateString formats t as the local calendar day key (YYYY-MM-DD).
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockTime formats t as a local HH:mm slot.
func ClockTime(t time.Time) string {
	return t.Format("15:04")
}

// MinuteOfDay parses an HH:mm slot into minutes since midnight.
func MinuteOfDay(slot string) (int, error) {
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return 0, fmt.Errorf("invalid time slot %q: %w", slot, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidSlot reports whether slot is a well-formed HH:mm string.
func ValidSlot(slot string) bool {
	_, err := MinuteOfDay(slot)
	return err == nil
}

// ExpandInterval walks from startTime in fixed increments of
// intervalMinutes and returns every slot up to and including 23:59.
// Returns nil for a non-positive interval or malformed start time.
func ExpandInterval(startTime string, intervalMinutes int) []string {
	if intervalMinutes <= 0 {
		return nil
	}

	start, err := MinuteOfDay(startTime)
	if err != nil {
		return nil
	}

	var slots []string
	for m := start; m <= lastMinuteOfDay; m += intervalMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// DueSlots returns the set of HH:mm slots scheduled for the medication on
// the day of now. AS_NEEDED medications have no timer-driven slots. A
// WEEKLY medication with an empty day-of-week set degrades to every day.
// A medication whose start date is after today is entirely inactive.
func DueSlots(med model.Medication, now time.Time) []string {
	if !med.ActiveOn(DateString(now)) {
		return nil
	}

	switch med.Frequency {
	case model.FrequencyAsNeeded:
		return nil
	case model.FrequencyWeekly:
		if len(med.DaysOfWeek) > 0 && !containsWeekday(med.DaysOfWeek, now.Weekday()) {
			return nil
		}
	case model.FrequencyDaily, model.FrequencyInterval:
	default:
		return nil
	}

	slots := make([]string, len(med.Times))
	copy(slots, med.Times)
	return slots
}

// IsDueAt reports whether a dose of the medication is scheduled at the
// exact local HH:mm of now.
func IsDueAt(med model.Medication, now time.Time) bool {
	slot := ClockTime(now)
	for _, s := range DueSlots(med, now) {
		if s == slot {
			return true
		}
	}
	return false
}

// NextDose is the slot a profile should be prompted with next.
type NextDose struct {
	Medication   model.Medication `json:"medication"`
	Time         string           `json:"time"`
	MinutesUntil int              `json:"minutes_until"`
}

// LoggedFunc reports whether a log entry already exists for the slot.
type LoggedFunc func(medicationID, date, slot string) bool

// Next picks the upcoming dose across the given medications: among all
// unlogged slots due today whose signed distance from now is at least
// -GraceMinutes, the slot with the smallest signed difference wins, so the
// most overdue-but-recent slot beats the soonest future one.
func Next(meds []model.Medication, logged LoggedFunc, now time.Time) *NextDose {
	date := DateString(now)
	nowMin := now.Hour()*60 + now.Minute()

	var best *NextDose
	for _, med := range meds {
		for _, slot := range DueSlots(med, now) {
			if logged != nil && logged(med.ID, date, slot) {
				continue
			}

			slotMin, err := MinuteOfDay(slot)
			if err != nil {
				continue
			}

			diff := slotMin - nowMin
			if diff < -GraceMinutes {
				continue
			}

			if best == nil || diff < best.MinutesUntil {
				best = &NextDose{Medication: med, Time: slot, MinutesUntil: diff}
			}
		}
	}
	return best
}

// SortSlots orders HH:mm slots chronologically in place. Lexicographic
// order coincides with chronological order for zero-padded HH:mm.
func SortSlots(slots []string) {
	sort.Strings(slots)
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, day := range days {
		if day == d {
			return true
		}
	}
	return false
}
