package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryRun      Category = "run"
	CategoryCycle    Category = "cycle"
	CategorySwim     Category = "swim"
	CategoryStrength Category = "strength"
	CategoryOther    Category = "other"
)

// RawQuantity accepts a flat value (12.4, "12.4") or the nested export shape {"qty": 7.7, "units": "mi"}.
// Units is empty when the source did not say.
type RawQuantity struct {
	Value RawText `json:"qty"`
	Units string  `json:"units,omitempty"`
}

func (q *RawQuantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*q = RawQuantity{}
		return nil
	}
	if b[0] != '{' {
		var v RawText
		if err := v.UnmarshalJSON(b); err != nil {
			return err
		}
		*q = RawQuantity{Value: v}
		return nil
	}

	var nested struct {
		Qty   RawText `json:"qty"`
		Units string  `json:"units"`
	}
	if err := json.Unmarshal(b, &nested); err != nil {
		return fmt.Errorf("distance: %w", err)
	}
	*q = RawQuantity{Value: nested.Qty, Units: strings.ToLower(strings.TrimSpace(nested.Units))}
	return nil
}

func (q RawQuantity) IsZero() bool {
	return q.Value.String() == ""
}

// RawWorkout is one exported workout or strength-set row before normalization.
type RawWorkout struct {
	Date      RawText     `json:"date"`
	Label     string      `json:"type"`
	Duration  RawText     `json:"duration"`
	Distance  RawQuantity `json:"distance"`
	Weight    RawText     `json:"weight,omitempty"`
	Reps      RawText     `json:"reps,omitempty"`
	Sets      RawText     `json:"sets,omitempty"`
	SetNumber RawText     `json:"set_number,omitempty"`
	Notes     string      `json:"notes,omitempty"`

	// Occurrence numbers rows with identical content inside one export, so repeated
	// sets stay separate rows while re-sending the same export stays idempotent.
	Occurrence int `json:"-"`
}

// ContentKey joins the exported fields. Rows with equal keys differ only by Occurrence.
func (w *RawWorkout) ContentKey() string {
	return strings.Join([]string{
		w.Date.String(),
		strings.ToLower(strings.TrimSpace(w.Label)),
		w.Duration.String(),
		w.Distance.Value.String(),
		w.Distance.Units,
		w.Weight.String(),
		w.Reps.String(),
		w.Sets.String(),
		w.SetNumber.String(),
	}, "|")
}

type NormalizedWorkout struct {
	Date            time.Time `json:"date"`
	Category        Category  `json:"category"`
	DurationMinutes float64   `json:"duration_minutes"`
	DistanceKm      float64   `json:"distance_km"`
	Tonnage         float64   `json:"tonnage"`
}
