package editor

import (
	"testing"

	"github.com/claude/replog/internal/models"
)

// TestRowDataItem verifies conversion of raw row content into a domain item,
// including optional weight handling.
func TestRowDataItem(t *testing.T) {
	d := RowData{
		Exercise: "  Front Squat ",
		SetType:  "work",
		Weight:   "92.5",
		Sets:     2,
		Reps:     []string{"5", "5"},
		Comments: "paused",
	}
	item, err := d.Item()
	if err != nil {
		t.Fatal(err)
	}
	if item.Exercise != "Front Squat" {
		t.Errorf("exercise = %q", item.Exercise)
	}
	if item.SetType != models.SetTypeWork {
		t.Errorf("setType = %v", item.SetType)
	}
	if item.WeightKG == nil || *item.WeightKG != 92.5 {
		t.Errorf("weight = %v", item.WeightKG)
	}
	if len(item.Reps) != 2 || item.Reps[0] != 5 {
		t.Errorf("reps = %v", item.Reps)
	}
	if !item.Valid() {
		t.Error("expected valid item")
	}

	d.Weight = ""
	item, err = d.Item()
	if err != nil {
		t.Fatal(err)
	}
	if item.WeightKG != nil {
		t.Errorf("empty weight should stay unset, got %v", *item.WeightKG)
	}
}

// TestRowDataItemUnparseable verifies that content which cannot be
// represented as an item reports an error instead of a mangled value.
func TestRowDataItemUnparseable(t *testing.T) {
	tests := []struct {
		name string
		d    RowData
	}{
		{"bad set type", RowData{Exercise: "X", SetType: "cooldown", Sets: 1, Reps: []string{"5"}}},
		{"bad weight", RowData{Exercise: "X", SetType: "work", Weight: "heavy", Sets: 1, Reps: []string{"5"}}},
		{"bad reps", RowData{Exercise: "X", SetType: "work", Sets: 1, Reps: []string{"five"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.d.Item(); err == nil {
				t.Error("expected conversion error")
			}
		})
	}
}

// TestSessionDataSession verifies the extracted form converts into a domain
// session, skipping malformed rows by number rather than failing outright.
func TestSessionDataSession(t *testing.T) {
	data := SessionData{
		SessionFields: SessionFields{
			Date: "2026-03-14", Time: "18:30", Duration: "75", Bodyweight: "81.4",
		},
		Exercises: []RowData{
			{Exercise: "Squat", SetType: "work", Sets: 1, Reps: []string{"5"}},
			{Exercise: "", SetType: "work", Sets: 1, Reps: []string{"5"}},       // invalid: no name
			{Exercise: "Curl", SetType: "work", Sets: 1, Reps: []string{"ten"}}, // unparseable reps
			{Exercise: "Press", SetType: "warmup", Sets: 1, Reps: []string{"8"}},
		},
	}

	s, skipped, fe := data.Session()
	if len(fe) != 0 {
		t.Fatalf("unexpected field errors: %v", fe)
	}
	if s.DurationMin == nil || *s.DurationMin != 75 {
		t.Errorf("duration = %v", s.DurationMin)
	}
	if s.BodyweightKG == nil || *s.BodyweightKG != 81.4 {
		t.Errorf("bodyweight = %v", s.BodyweightKG)
	}
	if len(s.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2 (invalid rows excluded)", len(s.Exercises))
	}
	if len(skipped) != 2 || skipped[0] != 2 || skipped[1] != 3 {
		t.Errorf("skipped = %v, want [2 3]", skipped)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("converted session failed validation: %v", err)
	}
}

// TestSessionDataFieldErrors verifies unparseable session-level numerics come
// back as field errors, keeping the rest of the conversion intact.
func TestSessionDataFieldErrors(t *testing.T) {
	data := SessionData{
		SessionFields: SessionFields{Date: "2026-03-14", Time: "18:30", Duration: "an hour"},
		Exercises: []RowData{
			{Exercise: "Squat", SetType: "work", Sets: 1, Reps: []string{"5"}},
		},
	}
	s, _, fe := data.Session()
	if _, ok := fe["duration"]; !ok {
		t.Errorf("field errors = %v, want duration", fe)
	}
	if len(s.Exercises) != 1 {
		t.Errorf("exercises = %d, conversion must continue past field errors", len(s.Exercises))
	}
}

// TestFromSessionRoundTrip verifies an editor pre-filled from a session
// extracts back to equivalent data.
func TestFromSessionRoundTrip(t *testing.T) {
	weight := 100.0
	duration := 60
	s := &models.TrainingSession{
		Date:         "2026-03-14",
		Time:         "07:15",
		ShortTitle:   "Morning",
		DurationMin:  &duration,
		BodyweightKG: nil,
		Exercises: []models.ExerciseItem{
			{Exercise: "Deadlift", SetType: models.SetTypeWork, Sets: 2, Reps: []int{3, 3}, WeightKG: &weight},
		},
	}

	e := FromSession(s)
	if e.RowCount() != 1 {
		t.Fatalf("RowCount() = %d", e.RowCount())
	}
	got, skipped, fe := e.ExtractSession().Session()
	if len(skipped) != 0 || len(fe) != 0 {
		t.Fatalf("skipped = %v, fe = %v", skipped, fe)
	}
	if got.ShortTitle != "Morning" || got.DurationMin == nil || *got.DurationMin != 60 {
		t.Errorf("session fields = %+v", got)
	}
	if len(got.Exercises) != 1 || got.Exercises[0].Exercise != "Deadlift" ||
		got.Exercises[0].WeightKG == nil || *got.Exercises[0].WeightKG != 100.0 {
		t.Errorf("exercises = %+v", got.Exercises)
	}
}

// TestFromSessionEmpty verifies a session without items still yields the
// mandatory single empty row.
func TestFromSessionEmpty(t *testing.T) {
	e := FromSession(&models.TrainingSession{Date: "2026-03-14", Time: "08:00"})
	if e.RowCount() != 1 {
		t.Errorf("RowCount() = %d, want 1", e.RowCount())
	}
}
