package override

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Record is the persisted form of an Override, keyed externally by
// stringified circuit id.
type Record struct {
	Temperature float64    `json:"temperature"`
	CreatedAt   Timestamp  `json:"created_at"`
	StopAt      *Timestamp `json:"stop_at"`
	DisabledAt  *Timestamp `json:"disabled_at"`
	LastSet     *Timestamp `json:"last_set"`
}

// Timestamp serializes as epoch-seconds floats. Deserialization also
// accepts the timezone-less ISO strings older releases wrote, so an
// existing store keeps loading after an upgrade.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	secs := float64(time.Time(t).UnixNano()) / float64(time.Second)
	return []byte(strconv.FormatFloat(secs, 'f', -1, 64)), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		parsed, err := parseLegacyTime(str)
		if err != nil {
			return err
		}
		*t = Timestamp(parsed)
		return nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("timestamp is neither epoch seconds nor a string: %s", s)
	}
	*t = Timestamp(time.Unix(0, int64(secs*float64(time.Second))))
	return nil
}

func parseLegacyTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Record returns the persistable view of the override.
func (o *Override) Record() Record {
	r := Record{
		Temperature: o.Temperature,
		CreatedAt:   Timestamp(o.CreatedAt),
		StopAt:      optTimestamp(o.StopAt),
		DisabledAt:  optTimestamp(o.DisabledAt),
	}
	ls := Timestamp(o.LastSet)
	r.LastSet = &ls
	return r
}

// FromRecord rebuilds an override. Records written before LastSet was
// persisted default it to CreatedAt, same as a fresh override.
func FromRecord(r Record) *Override {
	o := &Override{
		Temperature: r.Temperature,
		CreatedAt:   time.Time(r.CreatedAt),
		LastSet:     time.Time(r.CreatedAt),
	}
	if r.StopAt != nil {
		t := time.Time(*r.StopAt)
		o.StopAt = &t
	}
	if r.DisabledAt != nil {
		t := time.Time(*r.DisabledAt)
		o.DisabledAt = &t
	}
	if r.LastSet != nil {
		o.LastSet = time.Time(*r.LastSet)
	}
	return o
}

// Records returns the persistable view of the whole map.
func (m *Map) Records() map[string]Record {
	out := make(map[string]Record, len(m.m))
	for id, o := range m.m {
		out[strconv.Itoa(id)] = o.Record()
	}
	return out
}

// MapFromRecords rebuilds the override map from persisted records, skipping
// entries with unusable keys.
func MapFromRecords(records map[string]Record) *Map {
	m := NewMap()
	for key, r := range records {
		id, err := strconv.Atoi(key)
		if err != nil {
			log.Warn().Str("key", key).Msg("Skipping persisted override with non-numeric circuit id")
			continue
		}
		m.Set(id, FromRecord(r))
	}
	return m
}

// DecodeRecords decodes a persisted override document entry by entry. A
// single malformed value is skipped with a log line so one corrupt record
// cannot take down the whole load.
func DecodeRecords(raw map[string]json.RawMessage) map[string]Record {
	out := make(map[string]Record, len(raw))
	for key, blob := range raw {
		var r Record
		if err := json.Unmarshal(blob, &r); err != nil {
			log.Warn().Str("circuit", key).Err(err).Msg("Skipping malformed persisted override")
			continue
		}
		out[key] = r
	}
	return out
}

func optTimestamp(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := Timestamp(*t)
	return &ts
}
