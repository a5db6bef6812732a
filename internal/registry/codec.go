package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// wireRecord is the persisted JSON shape. Timestamps are millisecond epochs.
type wireRecord struct {
	ID        json.RawMessage `json:"id"`
	Token     string          `json:"token"`
	CreatedAt int64           `json:"createdAt,omitempty"`
	UpdatedAt *int64          `json:"updatedAt,omitempty"`
	Enabled   *bool           `json:"enabled,omitempty"`
}

// Decode parses a stored value into normalized records.
//
// An empty value is an empty list. A value of the form "<id>:<token>" is read
// as a single enabled record. Entries that fail to parse or normalize are
// dropped individually; only a value that is not a JSON array is an error.
func Decode(raw string, now time.Time) ([]Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Record{}, nil
	}

	if !strings.HasPrefix(raw, "[") && strings.Contains(raw, ":") {
		return decodeLegacy(raw, now), nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	out := make([]Record, 0, len(items))
	for _, item := range items {
		var w wireRecord
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		rec, ok := w.record(now)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeLegacy(raw string, now time.Time) []Record {
	idStr, token, _ := strings.Cut(raw, ":")
	id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
	if err != nil {
		return []Record{}
	}
	rec := Record{TargetID: id, Credential: token, CreatedAt: now, Enabled: true}
	if !rec.Valid() {
		return []Record{}
	}
	return []Record{rec}
}

func (w wireRecord) record(now time.Time) (Record, bool) {
	id, ok := parseID(w.ID)
	if !ok {
		return Record{}, false
	}
	rec := Record{
		TargetID:   id,
		Credential: w.Token,
		Enabled:    true,
	}
	if w.Enabled != nil {
		rec.Enabled = *w.Enabled
	}
	if w.CreatedAt > 0 {
		rec.CreatedAt = time.UnixMilli(w.CreatedAt)
	} else {
		rec.CreatedAt = now
	}
	if w.UpdatedAt != nil && *w.UpdatedAt > 0 {
		t := time.UnixMilli(*w.UpdatedAt)
		rec.UpdatedAt = &t
	}
	return rec, rec.Valid()
}

// parseID accepts a JSON number or a numeric string.
func parseID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n = json.Number(strings.TrimSpace(s))
	}
	id, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		id = int64(f)
	}
	return id, true
}

// Encode normalizes list, truncates it to max entries and serializes it.
// A max of zero or less means no cap.
func Encode(list []Record, max int, now time.Time) (string, error) {
	wire := make([]wireRecord, 0, len(list))
	for _, r := range Normalize(list, now) {
		if max > 0 && len(wire) >= max {
			break
		}
		w := wireRecord{
			ID:        json.RawMessage(strconv.FormatInt(r.TargetID, 10)),
			Token:     r.Credential,
			CreatedAt: r.CreatedAt.UnixMilli(),
			Enabled:   boolPtr(r.Enabled),
		}
		if r.UpdatedAt != nil {
			ms := r.UpdatedAt.UnixMilli()
			w.UpdatedAt = &ms
		}
		wire = append(wire, w)
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return string(data), nil
}

// Normalize drops invalid records and fills a missing CreatedAt with now.
// Order is preserved.
func Normalize(list []Record, now time.Time) []Record {
	out := make([]Record, 0, len(list))
	for _, r := range list {
		if !r.Valid() {
			continue
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		out = append(out, r)
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
