package models

import (
	"encoding/json"
	"fmt"
)

// MinutesPerDay is the exclusive upper bound for a start minute and the
// inclusive upper bound for the end of a range ("24:00").
const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM" into minutes since midnight. Both parts must be
// exactly two digits. "24:00" is accepted so a range can run until midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("invalid clock %q: expected HH:MM", s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock %q: out of range", s)
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// clockValue decodes either a JSON number of minutes or an "HH:MM" string.
type clockValue int

func (c *clockValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m, err := ParseClock(s)
		if err != nil {
			return err
		}
		*c = clockValue(m)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("clock must be \"HH:MM\" or minutes: %w", err)
	}
	*c = clockValue(n)
	return nil
}
