package scheduler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Meta is the persisted tracking record of one question.
type Meta struct {
	AskedCount    int
	LastAskedAt   *time.Time
	DisabledUntil *time.Time
}

// CoolingDown reports whether the question is excluded from selection at now.
func (m Meta) CoolingDown(now time.Time) bool {
	return m.DisabledUntil != nil && m.DisabledUntil.After(now)
}

// wireMeta is the stored shape. Timestamps are Unix epoch milliseconds so
// the mapping stays readable by the web pages sharing the same keys.
type wireMeta struct {
	AskedCount    int    `json:"askedCount"`
	LastAskedAt   *int64 `json:"lastAskedAt,omitempty"`
	DisabledUntil *int64 `json:"disabledUntil,omitempty"`
}

func (m Meta) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMeta{
		AskedCount:    m.AskedCount,
		LastAskedAt:   toMillis(m.LastAskedAt),
		DisabledUntil: toMillis(m.DisabledUntil),
	})
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var w wireMeta
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.AskedCount = max(w.AskedCount, 0)
	m.LastAskedAt = fromMillis(w.LastAskedAt)
	m.DisabledUntil = fromMillis(w.DisabledUntil)
	return nil
}

func toMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms)
	return &t
}

// encodeMetaMap serializes the mapping with decimal string ids as keys.
func encodeMetaMap(m map[int]*Meta) ([]byte, error) {
	out := make(map[string]Meta, len(m))
	for id, meta := range m {
		out[strconv.Itoa(id)] = *meta
	}
	return json.Marshal(out)
}

// decodeMetaMap parses a stored mapping. Entries that cannot be decoded are
// dropped and reported; a document that is not a JSON object fails as a whole.
func decodeMetaMap(data []byte) (map[int]*Meta, []error, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode meta mapping: %w", err)
	}

	out := make(map[int]*Meta, len(raw))
	var bad []error
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			bad = append(bad, fmt.Errorf("entry %q: invalid id", k))
			continue
		}
		var m Meta
		if err := json.Unmarshal(v, &m); err != nil {
			bad = append(bad, fmt.Errorf("entry %q: %w", k, err))
			continue
		}
		out[id] = &m
	}
	return out, bad, nil
}
