package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidArgument, s)
	}
	return t, nil
}

// RawText holds a cell exactly as exported. JSON numbers and strings are both accepted.
type RawText string

func (r *RawText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RawText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("raw value must be a string or number: %w", err)
	}
	*r = RawText(n.String())
	return nil
}

func (r RawText) String() string {
	return strings.TrimSpace(string(r))
}

// Float returns the numeric value of the cell, if it is a plain number.
func (r RawText) Float() (float64, bool) {
	s := r.String()
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type DailyMetricSample struct {
	Date             string   `json:"date" db:"day"`
	HRV              *float64 `json:"hrv,omitempty" db:"hrv"`
	RestingHeartRate *float64 `json:"resting_heart_rate,omitempty" db:"resting_heart_rate"`
	RespiratoryRate  *float64 `json:"respiratory_rate,omitempty" db:"respiratory_rate"`
	Steps            *int64   `json:"steps,omitempty" db:"steps"`
	ActiveEnergyKcal *float64 `json:"active_energy_kcal,omitempty" db:"active_energy_kcal"`
}

func (s *DailyMetricSample) Validate() error {
	if _, err := ParseDay(s.Date); err != nil {
		return fmt.Errorf("%w: daily metric: %v", ErrInvalidSample, err)
	}
	if s.HRV != nil && *s.HRV < 0 {
		return fmt.Errorf("%w: daily metric %s: hrv cannot be negative", ErrInvalidSample, s.Date)
	}
	return nil
}

// SleepSample keeps durations in their exported encoding ("7h:30m", "07:30", 7.5 or 450).
// EfficiencyPct of 0 means the exporter did not provide one.
type SleepSample struct {
	Date          string  `json:"date" db:"day"`
	Asleep        RawText `json:"asleep" db:"asleep"`
	InBed         RawText `json:"in_bed" db:"in_bed"`
	Awake         RawText `json:"awake" db:"awake"`
	WakeCount     int     `json:"wake_count" db:"wake_count"`
	EfficiencyPct float64 `json:"efficiency_pct" db:"efficiency_pct"`
	Bedtime       string  `json:"bedtime" db:"bedtime"`
}

func (s *SleepSample) Validate() error {
	if _, err := ParseDay(s.Date); err != nil {
		return fmt.Errorf("%w: sleep: %v", ErrInvalidSample, err)
	}
	if s.WakeCount < 0 {
		return fmt.Errorf("%w: sleep %s: wake_count cannot be negative", ErrInvalidSample, s.Date)
	}
	if s.EfficiencyPct < 0 || s.EfficiencyPct > 100 {
		return fmt.Errorf("%w: sleep %s: efficiency_pct must be within 0-100", ErrInvalidSample, s.Date)
	}
	return nil
}
