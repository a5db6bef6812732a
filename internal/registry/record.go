// Package registry persists the capped, ordered list of connected targets.
//
// Records are kept as a single JSON array under one key of a key/value
// Store. The newest connection comes first and the list never holds more
// than MaxRecords entries.
package registry

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// MinCredentialLength is the shortest credential accepted on load or save.
// Anything at or below it is treated as garbage.
const MinCredentialLength = 6

// Record is one connected target.
type Record struct {
	TargetID   int64
	Credential string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	Enabled    bool
}

// Valid reports whether the record survives normalization.
func (r Record) Valid() bool {
	return r.TargetID > 0 && len(r.Credential) >= MinCredentialLength
}

// LastChanged returns UpdatedAt when set, otherwise CreatedAt.
func (r Record) LastChanged() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// Fingerprint returns a short, stable digest of the credential that is safe to
// print. The credential itself never leaves the registry in output.
func (r Record) Fingerprint() string {
	sum := blake2b.Sum256([]byte(r.Credential))
	return hex.EncodeToString(sum[:4])
}

// Upsert returns a new list with rec applied. An existing record for the same
// target is replaced in place, keeping its CreatedAt and stamping UpdatedAt
// with now. Otherwise rec is prepended. The input slice is not modified.
func Upsert(list []Record, rec Record, now time.Time) []Record {
	out := make([]Record, 0, len(list)+1)
	replaced := false
	for _, existing := range list {
		if existing.TargetID != rec.TargetID || replaced {
			out = append(out, existing)
			continue
		}
		merged := rec
		merged.CreatedAt = existing.CreatedAt
		stamp := now
		merged.UpdatedAt = &stamp
		out = append(out, merged)
		replaced = true
	}
	if replaced {
		return out
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	return append([]Record{rec}, out...)
}

// Without returns list minus every record for targetID, and whether anything
// was removed.
func Without(list []Record, targetID int64) ([]Record, bool) {
	out := make([]Record, 0, len(list))
	removed := false
	for _, r := range list {
		if r.TargetID == targetID {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out, removed
}

// Find returns the record for targetID.
func Find(list []Record, targetID int64) (Record, bool) {
	for _, r := range list {
		if r.TargetID == targetID {
			return r, true
		}
	}
	return Record{}, false
}

// CountEnabled returns how many records are enabled.
func CountEnabled(list []Record) int {
	n := 0
	for _, r := range list {
		if r.Enabled {
			n++
		}
	}
	return n
}
