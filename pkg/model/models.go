package model

import "time"

// Frequency describes how a medication's doses are scheduled.
type Frequency string

const (
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyAsNeeded Frequency = "AS_NEEDED"
	FrequencyInterval Frequency = "INTERVAL"
)

// Valid reports whether f is one of the known frequency kinds.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyAsNeeded, FrequencyInterval:
		return true
	}
	return false
}

// DoseStatus is the recorded outcome of a scheduled dose.
type DoseStatus string

const (
	DoseTaken   DoseStatus = "TAKEN"
	DoseSkipped DoseStatus = "SKIPPED"
)

// Valid reports whether s is a known dose status.
func (s DoseStatus) Valid() bool {
	return s == DoseTaken || s == DoseSkipped
}

// Sound is a notification sound identifier. The set is closed; anything
// else arriving at the API boundary is coerced to SoundDefault.
type Sound string

const (
	SoundDefault Sound = "default"
	SoundChime   Sound = "chime"
	SoundBell    Sound = "bell"
	SoundBeep    Sound = "beep"
	SoundAlarm   Sound = "alarm"
)

// Valid reports whether s is a known sound identifier.
func (s Sound) Valid() bool {
	switch s {
	case SoundDefault, SoundChime, SoundBell, SoundBeep, SoundAlarm:
		return true
	}
	return false
}

// NormalizeSound coerces unknown or empty sound identifiers to the default.
func NormalizeSound(s Sound) Sound {
	if !s.Valid() {
		return SoundDefault
	}
	return s
}

// ResolveSound picks the sound for a medication's reminder: the
// medication's own sound wins unless it is unset or default, then the
// owning profile's preferred sound, then the system default.
func ResolveSound(medSound, profileSound Sound) Sound {
	if medSound != "" && medSound != SoundDefault && medSound.Valid() {
		return medSound
	}
	if profileSound != "" && profileSound.Valid() {
		return profileSound
	}
	return SoundDefault
}

// DefaultProfileID is the implicit owner of medications created without an
// explicit profile assignment.
const DefaultProfileID = "default"

// Profile represents one tracked person within the application.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar,omitempty"`
	Sound       Sound     `json:"sound,omitempty"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	Conditions  []string  `json:"conditions,omitempty"`
	Allergies   []string  `json:"allergies,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Medication represents a scheduled medication owned by one profile.
//
// For INTERVAL medications, Times is a derived cache expanded from
// IntervalMinutes and StartTime up to 23:59; it is recomputed on every
// create/update and must not be edited independently.
type Medication struct {
	ID              string         `json:"id"`
	ProfileID       string         `json:"profile_id"`
	Name            string         `json:"name"`
	Dosage          string         `json:"dosage"`
	Frequency       Frequency      `json:"frequency"`
	Times           []string       `json:"times,omitempty"`
	DaysOfWeek      []time.Weekday `json:"days_of_week,omitempty"`
	IntervalMinutes int            `json:"interval_minutes,omitempty"`
	StartTime       string         `json:"start_time,omitempty"`
	StartDate       *string        `json:"start_date,omitempty"`
	ExpiryDate      *string        `json:"expiry_date,omitempty"`
	Stock           int            `json:"stock"`
	LowStockAt      int            `json:"low_stock_at"`
	RefillDate      *string        `json:"refill_date,omitempty"`
	Sound           Sound          `json:"sound,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// LowStock reports whether the current stock is at or below the refill
// threshold. Derived on read, never stored.
func (m *Medication) LowStock() bool {
	return m.Stock <= m.LowStockAt
}

// ActiveOn reports whether the medication is active on the given local
// calendar day (YYYY-MM-DD). A medication whose start date is strictly
// after that day is entirely inactive.
func (m *Medication) ActiveOn(dateStr string) bool {
	return m.StartDate == nil || *m.StartDate <= dateStr
}

// LogEntry records the outcome of one dose. At most one entry exists per
// (MedicationID, Date, ScheduledTime); re-logging the same slot overwrites
// status and timestamp in place.
type LogEntry struct {
	ID            string     `json:"id"`
	MedicationID  string     `json:"medication_id"`
	ProfileID     string     `json:"profile_id"`
	Status        DoseStatus `json:"status"`
	ScheduledTime string     `json:"scheduled_time"`
	Date          string     `json:"date"`
	Timestamp     time.Time  `json:"timestamp"`
}

// Vital is a single health measurement for a profile. Secondary carries
// the diastolic value for blood pressure readings.
type Vital struct {
	ID         string    `json:"id"`
	ProfileID  string    `json:"profile_id"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	Secondary  *float64  `json:"secondary,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	Note       *string   `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Appointment is an upcoming medical appointment for a profile.
type Appointment struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Title     string    `json:"title"`
	Doctor    *string   `json:"doctor,omitempty"`
	Location  *string   `json:"location,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodEntry is a daily mood record for a profile.
type MoodEntry struct {
	ID         string    `json:"id"`
	ProfileID  string    `json:"profile_id"`
	Date       string    `json:"date"`
	Mood       string    `json:"mood"`
	Note       *string   `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
