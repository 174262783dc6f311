package poller

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dosewise/dosewise/internal/snooze"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var nineAM = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type fakeMedSource struct {
	meds []model.Medication
}

func (f *fakeMedSource) All() []model.Medication {
	return f.meds
}

type fakeProfileSource struct {
	profiles map[string]*model.Profile
}

func (f *fakeProfileSource) Get(id string) (*model.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("profile not found: %s", id)
}

type fakeLogIndex struct {
	logged map[string]bool
}

func (f *fakeLogIndex) Exists(medicationID, date, slot string) bool {
	return f.logged[medicationID+"|"+date+"|"+slot]
}

type sentNotification struct {
	title string
	body  string
	sound model.Sound
}

type fakeNotifier struct {
	sent []sentNotification
	fail bool
}

func (f *fakeNotifier) Notify(ctx context.Context, title, body string, sound model.Sound) error {
	if f.fail {
		return fmt.Errorf("delivery failed")
	}
	f.sent = append(f.sent, sentNotification{title: title, body: body, sound: sound})
	return nil
}

func newTestPoller(meds []model.Medication, logs *fakeLogIndex, notifier *fakeNotifier) (*Poller, *snooze.Registry) {
	if logs == nil {
		logs = &fakeLogIndex{logged: map[string]bool{}}
	}
	registry := snooze.NewRegistry(nil)
	p := New(
		&fakeMedSource{meds: meds},
		&fakeProfileSource{profiles: map[string]*model.Profile{}},
		logs,
		registry,
		notifier,
		nil,
		0,
		zap.NewNop(),
	)
	return p, registry
}

func dailyAtNine(id string) model.Medication {
	return model.Medication{
		ID:        id,
		ProfileID: model.DefaultProfileID,
		Name:      "Aspirin",
		Dosage:    "100mg",
		Frequency: model.FrequencyDaily,
		Times:     []string{"09:00"},
	}
}

func TestTick_FiresDueSlotOncePerMinute(t *testing.T) {
	notifier := &fakeNotifier{}
	p, _ := newTestPoller([]model.Medication{dailyAtNine("med-1")}, nil, notifier)

	fired := p.Tick(context.Background(), nineAM)
	assert.Len(t, fired, 1)
	assert.Equal(t, "med-1", fired[0].Medication.ID)
	assert.Equal(t, "09:00", fired[0].Slot)

	// Subsequent ticks within the same minute stay quiet.
	assert.Empty(t, p.Tick(context.Background(), nineAM.Add(5*time.Second)))
	assert.Empty(t, p.Tick(context.Background(), nineAM.Add(30*time.Second)))
	assert.Len(t, notifier.sent, 1)
}

func TestTick_LoggedSlotSuppressed(t *testing.T) {
	logs := &fakeLogIndex{logged: map[string]bool{
		"med-1|2025-06-02|09:00": true,
	}}
	notifier := &fakeNotifier{}
	p, _ := newTestPoller([]model.Medication{dailyAtNine("med-1")}, logs, notifier)

	assert.Empty(t, p.Tick(context.Background(), nineAM))
	assert.Empty(t, notifier.sent)
}

func TestTick_SnoozedSlotSuppressedThenWakes(t *testing.T) {
	notifier := &fakeNotifier{}
	p, registry := newTestPoller([]model.Medication{dailyAtNine("med-1")}, nil, notifier)

	registry.Set("med-1", "09:00", nineAM.Add(10*time.Minute))

	assert.Empty(t, p.Tick(context.Background(), nineAM))

	fired := p.Tick(context.Background(), nineAM.Add(10*time.Minute))
	assert.Len(t, fired, 1)
	assert.True(t, fired[0].Snoozed)
	assert.Equal(t, "09:00", fired[0].Slot)

	// The wake-up consumed the entry; it cannot fire twice.
	assert.Empty(t, p.Tick(context.Background(), nineAM.Add(10*time.Minute+5*time.Second)))
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, "Snoozed reminder", notifier.sent[0].title)
}

func TestTick_SnoozeForDeletedMedicationDropped(t *testing.T) {
	notifier := &fakeNotifier{}
	p, registry := newTestPoller(nil, nil, notifier)

	registry.Set("gone", "09:00", nineAM.Add(-time.Minute))

	assert.Empty(t, p.Tick(context.Background(), nineAM))
	assert.Equal(t, 0, registry.Len())
	assert.Empty(t, notifier.sent)
}

func TestTick_DeliveryFailureDoesNotBlockTick(t *testing.T) {
	notifier := &fakeNotifier{fail: true}
	p, _ := newTestPoller([]model.Medication{dailyAtNine("med-1"), dailyAtNine("med-2")}, nil, notifier)

	// Both decisions are made even though every delivery fails.
	assert.Len(t, p.Tick(context.Background(), nineAM), 2)
	assert.Empty(t, notifier.sent)
}

func TestTick_WeeklyOffDayQuiet(t *testing.T) {
	med := dailyAtNine("med-1")
	med.Frequency = model.FrequencyWeekly
	med.DaysOfWeek = []time.Weekday{time.Tuesday}

	notifier := &fakeNotifier{}
	p, _ := newTestPoller([]model.Medication{med}, nil, notifier)

	// 2025-06-02 is a Monday.
	assert.Empty(t, p.Tick(context.Background(), nineAM))
}

func TestDueReminders_Pure(t *testing.T) {
	meds := []model.Medication{dailyAtNine("med-1"), dailyAtNine("med-2")}
	logs := &fakeLogIndex{logged: map[string]bool{
		"med-2|2025-06-02|09:00": true,
	}}

	soundFor := func(m model.Medication) model.Sound { return model.SoundChime }

	out := DueReminders(meds, logs, nil, soundFor, nineAM)
	assert.Len(t, out, 1)
	assert.Equal(t, "med-1", out[0].Medication.ID)
	assert.Equal(t, model.SoundChime, out[0].Sound)
	assert.False(t, out[0].Snoozed)
}

func TestResolveSound_Precedence(t *testing.T) {
	profiles := &fakeProfileSource{profiles: map[string]*model.Profile{
		"p1": {ID: "p1", Sound: model.SoundBell},
	}}
	p := New(&fakeMedSource{}, profiles, &fakeLogIndex{logged: map[string]bool{}}, snooze.NewRegistry(nil), &fakeNotifier{}, nil, 0, zap.NewNop())

	tests := []struct {
		name     string
		med      model.Medication
		expected model.Sound
	}{
		{
			name:     "medication sound wins",
			med:      model.Medication{ProfileID: "p1", Sound: model.SoundAlarm},
			expected: model.SoundAlarm,
		},
		{
			name:     "default medication sound falls to profile",
			med:      model.Medication{ProfileID: "p1", Sound: model.SoundDefault},
			expected: model.SoundBell,
		},
		{
			name:     "unset medication sound falls to profile",
			med:      model.Medication{ProfileID: "p1"},
			expected: model.SoundBell,
		},
		{
			name:     "unknown profile falls to system default",
			med:      model.Medication{ProfileID: "missing"},
			expected: model.SoundDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.resolveSound(tt.med))
		})
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	notifier := &fakeNotifier{}
	p, _ := newTestPoller(nil, nil, notifier)
	p.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
