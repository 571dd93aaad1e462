package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Layouts for the date and time-of-day fields as they appear on the wire and
// in forms.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// SetType classifies an exercise's sets as working or warm-up sets.
type SetType int

const (
	SetTypeWork SetType = iota
	SetTypeWarmUp
)

func (t SetType) String() string {
	switch t {
	case SetTypeWork:
		return "work"
	case SetTypeWarmUp:
		return "warmup"
	}
	return fmt.Sprintf("SetType(%d)", int(t))
}

// ParseSetType parses the wire representation of a set type.
func ParseSetType(s string) (SetType, error) {
	switch s {
	case "work":
		return SetTypeWork, nil
	case "warmup":
		return SetTypeWarmUp, nil
	}
	return SetTypeWork, fmt.Errorf("unknown set type %q", s)
}

func (t SetType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSetType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ExerciseItem is one exercise entry within a training session, in session
// order. Sets must equal len(Reps) and every rep count must be positive for
// the item to validate.
type ExerciseItem struct {
	Exercise string   `json:"exercise"`
	SetType  SetType  `json:"setType"`
	Sets     int      `json:"sets"`
	Reps     []int    `json:"reps"`
	WeightKG *float64 `json:"weight,omitempty"`
	Comments string   `json:"comments,omitempty"`
}

// TrainingSession is one workout event owned by an account. Date and Time
// combined with the id form the identity; listing sorts newest-first by the
// combined date-time.
type TrainingSession struct {
	ID           uuid.UUID      `json:"id"`
	OwnerID      uuid.UUID      `json:"-"`
	Date         string         `json:"date"`
	Time         string         `json:"time"`
	ShortTitle   string         `json:"shortTitle,omitempty"`
	DurationMin  *int           `json:"duration,omitempty"`
	BodyweightKG *float64       `json:"bodyweight,omitempty"`
	Comments     string         `json:"comments,omitempty"`
	Exercises    []ExerciseItem `json:"exercises"`
}

// DateTime combines the date and time-of-day fields into a single value.
func (s *TrainingSession) DateTime() (time.Time, error) {
	return ParseDateTime(s.Date, s.Time)
}

// FullTitle is the display title: date and time, plus the short title when set.
func (s *TrainingSession) FullTitle() string {
	title := s.Date + " " + s.Time
	if s.ShortTitle != "" {
		title += ": " + s.ShortTitle
	}
	return title
}

// ParseDateTime parses a DateLayout date and a TimeLayout time-of-day into one
// time.Time in UTC.
func ParseDateTime(date, timeOfDay string) (time.Time, error) {
	t, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing session date-time: %w", err)
	}
	return t, nil
}
