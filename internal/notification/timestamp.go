package notification

import (
	"encoding/json"
	"time"
)

// Timestamp is a time.Time that marshals as ISO-8601 (RFC 3339) normalized
// to UTC, the wire format both the list response and the delivery push use.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// Time returns the underlying time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Time(t).UTC()
}
