package editor

import (
	"strconv"
	"strings"

	"github.com/claude/replog/internal/models"
)

// RowData is the raw field content of one row. Values are kept as entered;
// conversion to a domain item and validation happen separately, so extraction
// never fails on malformed input.
type RowData struct {
	Exercise string   `json:"exercise"`
	SetType  string   `json:"setType"`
	Weight   string   `json:"weight"`
	Sets     int      `json:"sets"`
	Reps     []string `json:"reps"`
	Comments string   `json:"comments"`
}

// SessionFields are the session-level form values, raw as entered.
type SessionFields struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	ShortTitle string `json:"shortTitle"`
	Duration   string `json:"duration"`
	Bodyweight string `json:"bodyweight"`
	Comments   string `json:"comments"`
}

// SessionData is the full extracted form: session fields plus every row in
// on-screen order, which is the persisted order.
type SessionData struct {
	SessionFields
	Exercises []RowData `json:"exercises"`
}

// Item converts the raw row content into a domain exercise item. An error
// means the content cannot be represented at all (unparseable set type or
// numbers); a representable but rule-breaking item is returned as-is for the
// caller to validate.
func (d RowData) Item() (models.ExerciseItem, error) {
	setType, err := models.ParseSetType(d.SetType)
	if err != nil {
		return models.ExerciseItem{}, err
	}

	item := models.ExerciseItem{
		Exercise: strings.TrimSpace(d.Exercise),
		SetType:  setType,
		Sets:     d.Sets,
		Comments: strings.TrimSpace(d.Comments),
	}

	if w := strings.TrimSpace(d.Weight); w != "" {
		weight, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return models.ExerciseItem{}, err
		}
		item.WeightKG = &weight
	}

	item.Reps = make([]int, 0, len(d.Reps))
	for _, raw := range d.Reps {
		reps, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return models.ExerciseItem{}, err
		}
		item.Reps = append(item.Reps, reps)
	}
	return item, nil
}

// dataFromItem formats a domain item back into row field values, used to
// pre-fill the editor when editing an existing session.
func dataFromItem(item models.ExerciseItem) RowData {
	d := RowData{
		Exercise: item.Exercise,
		SetType:  item.SetType.String(),
		Sets:     item.Sets,
		Comments: item.Comments,
	}
	if item.WeightKG != nil {
		d.Weight = strconv.FormatFloat(*item.WeightKG, 'f', -1, 64)
	}
	d.Reps = make([]string, len(item.Reps))
	for i, reps := range item.Reps {
		d.Reps[i] = strconv.Itoa(reps)
	}
	return d
}

// Session converts extracted form data into a domain session. Rows whose
// content cannot form an exercise item are skipped, never fatal; their
// 1-based numbers are returned so the caller can flag them. Unparseable
// session-level numerics come back as field errors.
func (d SessionData) Session() (models.TrainingSession, []int, models.FieldErrors) {
	fe := models.FieldErrors{}

	s := models.TrainingSession{
		Date:       strings.TrimSpace(d.Date),
		Time:       strings.TrimSpace(d.Time),
		ShortTitle: strings.TrimSpace(d.ShortTitle),
		Comments:   strings.TrimSpace(d.Comments),
	}

	if v := strings.TrimSpace(d.Duration); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			fe["duration"] = "duration must be a whole number of minutes"
		} else {
			s.DurationMin = &minutes
		}
	}
	if v := strings.TrimSpace(d.Bodyweight); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fe["bodyweight"] = "bodyweight must be a number"
		} else {
			s.BodyweightKG = &weight
		}
	}

	var skipped []int
	for i, row := range d.Exercises {
		item, err := row.Item()
		if err != nil || !item.Valid() {
			skipped = append(skipped, i+1)
			continue
		}
		s.Exercises = append(s.Exercises, item)
	}
	return s, skipped, fe
}
