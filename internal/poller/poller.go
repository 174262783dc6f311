// Package poller drives the reminder engine: on a fixed cadence it wakes
// elapsed snoozes, scans every profile's medications for slots due at the
// current minute, suppresses anything already logged or snoozed, and
// dispatches notifications. The per-tick decision is a pure function;
// dispatch is layered on top.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/dosewise/dosewise/internal/metrics"
	"github.com/dosewise/dosewise/internal/notify"
	"github.com/dosewise/dosewise/internal/schedule"
	"github.com/dosewise/dosewise/internal/snooze"
	"github.com/dosewise/dosewise/pkg/model"
	"go.uber.org/zap"
)

// DefaultInterval is the poll cadence. It is shorter than the
// minute-resolution dedup key, so the per-minute guard in Tick is what
// keeps reminders from firing five times a minute.
const DefaultInterval = 5 * time.Second

// MedicationSource provides the full medication set. The poller scans all
// profiles regardless of which one the UI is showing.
type MedicationSource interface {
	All() []model.Medication
}

// ProfileSource resolves profile preferences for sound fallback.
type ProfileSource interface {
	Get(id string) (*model.Profile, error)
}

// LogIndex answers whether a slot was already logged. It must be consulted
// fresh at firing time, not cached earlier in the tick.
type LogIndex interface {
	Exists(medicationID, date, slot string) bool
}

// SnoozeSource is the registry view the poller needs.
type SnoozeSource interface {
	TakeDue(now time.Time) []snooze.Entry
	IsSnoozed(medicationID, scheduledTime string, now time.Time) bool
	Len() int
}

// Reminder is one notification decision: fire for this medication's slot
// with this sound.
type Reminder struct {
	Medication model.Medication
	Slot       string
	Sound      model.Sound
	Snoozed    bool
}

// Poller evaluates reminders on a fixed cadence.
type Poller struct {
	meds     MedicationSource
	profiles ProfileSource
	logs     LogIndex
	snoozes  SnoozeSource
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	interval time.Duration

	// lastMinute gates the due scan to once per distinct (date, HH:mm).
	lastMinute string
}

// New creates a Poller. A non-positive interval falls back to the default.
func New(
	meds MedicationSource,
	profiles ProfileSource,
	logs LogIndex,
	snoozes SnoozeSource,
	notifier notify.Notifier,
	m *metrics.Metrics,
	interval time.Duration,
	logger *zap.Logger,
) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		meds:     meds,
		profiles: profiles,
		logs:     logs,
		snoozes:  snoozes,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		interval: interval,
	}
}

// Run evaluates once immediately, then on every tick until the context is
// cancelled. It blocks, so launch it in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("reminder poller started", zap.Duration("interval", p.interval))

	p.Tick(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reminder poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx, time.Now())
		}
	}
}

// Tick runs one evaluation pass at now and returns the reminders fired.
// Snooze wake-ups fire on every tick; the due-medication scan runs at most
// once per distinct minute.
func (p *Poller) Tick(ctx context.Context, now time.Time) []Reminder {
	if p.metrics != nil {
		p.metrics.PollTicks.Inc()
	}

	var fired []Reminder

	for _, e := range p.snoozes.TakeDue(now) {
		med, ok := p.findMedication(e.MedicationID)
		if !ok {
			// Medication deleted while snoozed; nothing to remind about.
			continue
		}
		r := Reminder{
			Medication: med,
			Slot:       e.ScheduledTime,
			Sound:      p.resolveSound(med),
			Snoozed:    true,
		}
		p.dispatch(ctx, r)
		fired = append(fired, r)
	}

	minuteKey := now.Format("2006-01-02 15:04")
	if minuteKey != p.lastMinute {
		p.lastMinute = minuteKey

		due := DueReminders(p.meds.All(), p.logs, p.snoozes, p.soundFor, now)
		for _, r := range due {
			p.dispatch(ctx, r)
			fired = append(fired, r)
		}
	}

	if p.metrics != nil {
		p.metrics.PendingSnoozes.Set(float64(p.snoozes.Len()))
	}

	return fired
}

// DueReminders is the pure per-minute decision: for every medication due
// at the exact HH:mm of now, with no log entry for (medication, today,
// slot) and no pending snooze for (medication, slot), emit a reminder.
func DueReminders(
	meds []model.Medication,
	logs LogIndex,
	snoozes interface {
		IsSnoozed(medicationID, scheduledTime string, now time.Time) bool
	},
	soundFor func(model.Medication) model.Sound,
	now time.Time,
) []Reminder {
	date := schedule.DateString(now)
	slot := schedule.ClockTime(now)

	var out []Reminder
	for _, med := range meds {
		if !schedule.IsDueAt(med, now) {
			continue
		}
		if logs != nil && logs.Exists(med.ID, date, slot) {
			continue
		}
		if snoozes != nil && snoozes.IsSnoozed(med.ID, slot, now) {
			continue
		}
		out = append(out, Reminder{
			Medication: med,
			Slot:       slot,
			Sound:      soundFor(med),
		})
	}
	return out
}

// dispatch delivers one reminder. Failures are logged and abandoned: the
// next tick re-evaluates the slot if it is still unlogged, which makes
// delivery at-least-once rather than exactly-once.
func (p *Poller) dispatch(ctx context.Context, r Reminder) {
	title := "Time for your medication"
	if r.Snoozed {
		title = "Snoozed reminder"
	}
	body := fmt.Sprintf("%s %s at %s", r.Medication.Name, r.Medication.Dosage, r.Slot)

	if err := p.notifier.Notify(ctx, title, body, r.Sound); err != nil {
		p.logger.Warn("reminder delivery failed",
			zap.Error(err),
			zap.String("medication_id", r.Medication.ID),
			zap.String("slot", r.Slot),
		)
		if p.metrics != nil {
			p.metrics.NotifyFailures.Inc()
		}
		return
	}

	p.logger.Info("reminder fired",
		zap.String("medication_id", r.Medication.ID),
		zap.String("profile_id", r.Medication.ProfileID),
		zap.String("slot", r.Slot),
		zap.String("sound", string(r.Sound)),
		zap.Bool("snoozed", r.Snoozed),
	)
	if p.metrics != nil {
		if r.Snoozed {
			p.metrics.SnoozeWakeups.Inc()
		} else {
			p.metrics.RemindersFired.Inc()
		}
	}
}

func (p *Poller) findMedication(id string) (model.Medication, bool) {
	for _, med := range p.meds.All() {
		if med.ID == id {
			return med, true
		}
	}
	return model.Medication{}, false
}

func (p *Poller) soundFor(med model.Medication) model.Sound {
	return p.resolveSound(med)
}

// resolveSound applies the precedence medication sound, then owning
// profile's preferred sound, then system default.
func (p *Poller) resolveSound(med model.Medication) model.Sound {
	var profileSound model.Sound
	if p.profiles != nil {
		if profile, err := p.profiles.Get(med.ProfileID); err == nil {
			profileSound = profile.Sound
		}
	}
	return model.ResolveSound(med.Sound, profileSound)
}
