// Package kvstore provides the durable key-value persistence contract used
// by the repositories: one key per collection, each value a JSON-serialized
// ordered list of entities.
package kvstore

import "context"

// Collection keys. Every repository persists its whole collection under a
// single key on each mutation.
const (
	KeyProfiles     = "profiles"
	KeyMedications  = "medications"
	KeyLogs         = "logs"
	KeyVitals       = "vitals"
	KeyAppointments = "appointments"
	KeyMoods        = "moods"
)

// Store is the load/save contract. Load decodes the stored value into out
// and reports whether the key existed; a decode failure is returned as an
// error so callers can fall back to an empty collection instead of failing
// startup.
type Store interface {
	Load(ctx context.Context, key string, out any) (bool, error)
	Save(ctx context.Context, key string, value any) error
}
