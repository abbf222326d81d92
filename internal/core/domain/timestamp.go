package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pmtool/pmctl/pkg/logger"
)

// timestampLayouts are tried in order when decoding. The API emits RFC3339
// for seeded data and RFC1123 for values serialized by the server framework.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a time.Time that tolerates the formats the API emits.
// Missing, null and empty values decode to the zero time, and so do values
// in a shape it does not recognise.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s with any of the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		log := logger.Get()
		log.Debug().Str("raw", string(b)).Msg("timestamp is not a string, using zero value")
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		log := logger.Get()
		log.Debug().Err(err).Msg("using zero value")
		*ts = Timestamp{}
		return nil
	}
	*ts = parsed
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}

// DateString renders the date part only, or "" for the zero value.
func (ts Timestamp) DateString() string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format("2006-01-02")
}
