package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dosewise/dosewise/internal/kvstore"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogRepository is the dose log store. The invariant it enforces: at most
// one entry exists per (medicationID, date, scheduledTime); logging the
// same slot again overwrites status and timestamp in place.
type LogRepository struct {
	store  kvstore.Store
	logger *zap.Logger

	mu      sync.RWMutex
	entries []model.LogEntry
	index   map[logKey]int
}

type logKey struct {
	medicationID  string
	date          string
	scheduledTime string
}

// NewLogRepository creates a LogRepository and loads the persisted log.
func NewLogRepository(ctx context.Context, store kvstore.Store, logger *zap.Logger) *LogRepository {
	r := &LogRepository{
		store:  store,
		logger: logger,
	}

	if _, err := store.Load(ctx, kvstore.KeyLogs, &r.entries); err != nil {
		logger.Warn("failed to load dose log, starting empty", zap.Error(err))
		r.entries = nil
	}
	r.reindex()

	return r
}

// Upsert records a dose outcome. If an entry already exists for the slot
// it is overwritten in place and the previous status is returned so the
// caller can invert the stock adjustment exactly once. A nil previous
// status means a new entry was created.
func (r *LogRepository) Upsert(ctx context.Context, entry model.LogEntry) (*model.DoseStatus, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := logKey{entry.MedicationID, entry.Date, entry.ScheduledTime}
	if i, ok := r.index[k]; ok {
		prev := r.entries[i].Status
		entry.ID = r.entries[i].ID
		r.entries[i] = entry
		if err := r.persist(ctx); err != nil {
			return nil, err
		}
		return &prev, nil
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.entries = append(r.entries, entry)
	r.index[k] = len(r.entries) - 1

	if err := r.persist(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

// Find returns the entry for (medicationID, date, slot), if any.
func (r *LogRepository) Find(medicationID, date, slot string) (*model.LogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i, ok := r.index[logKey{medicationID, date, slot}]; ok {
		e := r.entries[i]
		return &e, true
	}
	return nil, false
}

// Exists reports whether a log entry exists for the slot. This is the
// duplicate-suppression check the poller re-evaluates at firing time.
func (r *LogRepository) Exists(medicationID, date, slot string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.index[logKey{medicationID, date, slot}]
	return ok
}

// ListByProfile returns a profile's entries, optionally restricted to one
// calendar day (empty date means all days).
func (r *LogRepository) ListByProfile(profileID, date string) []model.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.LogEntry
	for i := range r.entries {
		if r.entries[i].ProfileID != profileID {
			continue
		}
		if date != "" && r.entries[i].Date != date {
			continue
		}
		out = append(out, r.entries[i])
	}
	return out
}

// ListRange returns a profile's entries with dates in [from, to] inclusive.
func (r *LogRepository) ListRange(profileID, from, to string) []model.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.LogEntry
	for i := range r.entries {
		e := r.entries[i]
		if e.ProfileID == profileID && e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	return out
}

func (r *LogRepository) reindex() {
	r.index = make(map[logKey]int, len(r.entries))
	for i := range r.entries {
		e := r.entries[i]
		r.index[logKey{e.MedicationID, e.Date, e.ScheduledTime}] = i
	}
}

// persist writes the log. Callers must hold the write lock.
func (r *LogRepository) persist(ctx context.Context) error {
	if err := r.store.Save(ctx, kvstore.KeyLogs, r.entries); err != nil {
		r.logger.Error("failed to persist dose log", zap.Error(err))
		return fmt.Errorf("failed to persist dose log: %w", err)
	}
	return nil
}
