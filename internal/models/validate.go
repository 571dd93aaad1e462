package models

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
)

// Business-rule rejections, distinct from per-field validation errors. These
// surface as a page-level status banner rather than inline field messages.
var (
	// ErrNoExercises marks a session with no valid exercise items; such a
	// session is not persistable.
	ErrNoExercises = errors.New("training session must contain at least one exercise")
	// ErrEmailTaken marks an attempt to register an already-used email.
	ErrEmailTaken = errors.New("an account with this email already exists")
)

// Field length limits.
const (
	MaxShortTitleLen      = 50
	MaxSessionCommentsLen = 280
	MaxExerciseNameLen    = 50
	MaxItemCommentsLen    = 140
)

// Allowed characters for exercise names and item comments.
var textFieldRe = regexp.MustCompile(`^[\pL0-9 \-().,'/+]*$`)

// FieldErrors maps field names to human-readable messages. It satisfies error
// so validation can be returned and unwrapped by handlers that render errors
// inline next to the offending field.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for f := range e {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Validate checks the session-level fields and every exercise item. It
// returns FieldErrors for per-field problems, or ErrNoExercises when the
// session has no exercise items at all.
func (s *TrainingSession) Validate() error {
	fe := FieldErrors{}

	if s.Date == "" {
		fe["date"] = "date is required"
	}
	if s.Time == "" {
		fe["time"] = "time is required"
	}
	if s.Date != "" && s.Time != "" {
		if _, err := s.DateTime(); err != nil {
			fe["date"] = "date and time must form a valid date-time"
		}
	}
	if len(s.ShortTitle) > MaxShortTitleLen {
		fe["shortTitle"] = fmt.Sprintf("must be at most %d characters", MaxShortTitleLen)
	}
	if s.DurationMin != nil && *s.DurationMin < 0 {
		fe["duration"] = "duration must not be negative"
	}
	if s.BodyweightKG != nil && *s.BodyweightKG < 0 {
		fe["bodyweight"] = "bodyweight must not be negative"
	}
	if len(s.Comments) > MaxSessionCommentsLen {
		fe["comments"] = fmt.Sprintf("must be at most %d characters", MaxSessionCommentsLen)
	}

	for i, item := range s.Exercises {
		for field, msg := range item.validate() {
			fe[fmt.Sprintf("exercises[%d].%s", i, field)] = msg
		}
	}

	if len(fe) > 0 {
		return fe
	}
	if len(s.Exercises) == 0 {
		return ErrNoExercises
	}
	return nil
}

func (item *ExerciseItem) validate() FieldErrors {
	fe := FieldErrors{}

	if item.Exercise == "" {
		fe["exercise"] = "exercise name is required"
	} else if len(item.Exercise) > MaxExerciseNameLen {
		fe["exercise"] = fmt.Sprintf("must be at most %d characters", MaxExerciseNameLen)
	} else if !textFieldRe.MatchString(item.Exercise) {
		fe["exercise"] = "contains unsupported characters"
	}

	if item.Sets < 0 {
		fe["sets"] = "sets must not be negative"
	} else if item.Sets != len(item.Reps) {
		fe["sets"] = fmt.Sprintf("sets (%d) must match the number of rep entries (%d)", item.Sets, len(item.Reps))
	}
	for i, reps := range item.Reps {
		if reps <= 0 {
			fe[fmt.Sprintf("reps[%d]", i)] = "reps must be a positive number"
		}
	}

	if item.WeightKG != nil && *item.WeightKG < 0 {
		fe["weight"] = "weight must not be negative"
	}
	if len(item.Comments) > MaxItemCommentsLen {
		fe["comments"] = fmt.Sprintf("must be at most %d characters", MaxItemCommentsLen)
	} else if !textFieldRe.MatchString(item.Comments) {
		fe["comments"] = "contains unsupported characters"
	}

	return fe
}

// Valid reports whether the item passes all field checks.
func (item *ExerciseItem) Valid() bool {
	return len(item.validate()) == 0
}

// ValidateSignUp checks the account registration fields.
func ValidateSignUp(email, firstName, lastName, password string) error {
	fe := FieldErrors{}
	if _, err := mail.ParseAddress(email); err != nil {
		fe["email"] = "must be a valid email address"
	}
	if firstName == "" {
		fe["firstName"] = "first name is required"
	}
	if lastName == "" {
		fe["lastName"] = "last name is required"
	}
	if len(password) < 8 {
		fe["password"] = "must be at least 8 characters"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}
