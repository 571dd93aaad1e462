// Package editor implements the exercise-item row editor behind the training
// session form: an ordered list of rows that can be added, removed,
// duplicated, and reordered, with row field identifiers kept consistent with
// each row's 1-based position and the number of reps sub-fields tracking each
// row's sets count.
//
// The editor itself is the source of truth; rendered markup is a projection
// of its state. Rows are contiguously numbered 1..N after every operation.
package editor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/claude/replog/internal/models"
)

// ErrSyncInProgress is returned when a reps synchronization is requested for
// a row whose previous synchronization has not finished. The trigger field is
// disabled for the duration, so this only happens on re-entrant invocation.
var ErrSyncInProgress = errors.New("reps synchronization already in progress for this row")

// Editor holds the form state for one training session draft: the
// session-level fields and the ordered exercise rows. At least one row always
// exists. A single row may be selected; operations act on the selection.
//
// Editor is not safe for concurrent use; callers own it from a single
// goroutine or serialize access themselves.
type Editor struct {
	session  SessionFields
	rows     []*Row
	selected int // 1-based row number, 0 = none
}

// New creates an editor with one empty row and no selection.
func New() *Editor {
	return &Editor{rows: []*Row{newRow(1, nil)}}
}

// FromSession creates an editor pre-filled from an existing session, one row
// per exercise item. A session without items still yields one empty row.
func FromSession(s *models.TrainingSession) *Editor {
	e := &Editor{session: SessionFields{
		Date:       s.Date,
		Time:       s.Time,
		ShortTitle: s.ShortTitle,
		Comments:   s.Comments,
	}}
	if s.DurationMin != nil {
		e.session.Duration = strconv.Itoa(*s.DurationMin)
	}
	if s.BodyweightKG != nil {
		e.session.Bodyweight = strconv.FormatFloat(*s.BodyweightKG, 'f', -1, 64)
	}
	for i, item := range s.Exercises {
		data := dataFromItem(item)
		e.rows = append(e.rows, newRow(i+1, &data))
	}
	if len(e.rows) == 0 {
		e.rows = []*Row{newRow(1, nil)}
	}
	return e
}

// RowCount is the current number of rows.
func (e *Editor) RowCount() int { return len(e.rows) }

// Rows returns the rows in on-screen order.
func (e *Editor) Rows() []*Row {
	rows := make([]*Row, len(e.rows))
	copy(rows, e.rows)
	return rows
}

// Selected is the selected row number, 0 when nothing is selected.
func (e *Editor) Selected() int { return e.selected }

// Select marks the given row as the selected one.
func (e *Editor) Select(num int) error {
	if num < 1 || num > len(e.rows) {
		return fmt.Errorf("no row %d to select (have %d)", num, len(e.rows))
	}
	e.selected = num
	return nil
}

// ClearSelection deselects any selected row.
func (e *Editor) ClearSelection() { e.selected = 0 }

// SetSessionFields replaces the session-level field values.
func (e *Editor) SetSessionFields(fields SessionFields) { e.session = fields }

// SessionFields returns the current session-level field values.
func (e *Editor) SessionFields() SessionFields { return e.session }

// AddRow inserts a new empty row immediately after the selected row, or at
// the end when nothing or the last row is selected. Rows after the insertion
// point are renumbered up by one before the new row takes its place. The
// selection is left unchanged.
func (e *Editor) AddRow() {
	at := len(e.rows)
	if e.selected > 0 {
		at = e.selected
	}
	for i := at; i < len(e.rows); i++ {
		e.rows[i].setNum(i + 2)
	}
	row := newRow(at+1, nil)
	e.rows = append(e.rows, nil)
	copy(e.rows[at+1:], e.rows[at:])
	e.rows[at] = row
}

// RemoveRow deletes the selected row and renumbers the rows after it down by
// one. It is a no-op when nothing is selected or only one row remains; a row
// editor always keeps at least one row. The selection is cleared afterwards.
func (e *Editor) RemoveRow() {
	if e.selected == 0 || len(e.rows) == 1 {
		return
	}
	idx := e.selected - 1
	e.rows = append(e.rows[:idx], e.rows[idx+1:]...)
	for i := idx; i < len(e.rows); i++ {
		e.rows[i].setNum(i + 1)
	}
	e.selected = 0
}

// DuplicateRow inserts a copy of the selected row's current field data
// immediately after it, renumbering subsequent rows as AddRow does. No-op
// when nothing is selected. The selection stays on the original row.
func (e *Editor) DuplicateRow() {
	if e.selected == 0 {
		return
	}
	data := e.rows[e.selected-1].extract()
	at := e.selected
	for i := at; i < len(e.rows); i++ {
		e.rows[i].setNum(i + 2)
	}
	row := newRow(at+1, &data)
	e.rows = append(e.rows, nil)
	copy(e.rows[at+1:], e.rows[at:])
	e.rows[at] = row
}

// MoveUp swaps the selected row with its predecessor. No-op when nothing is
// selected or row 1 is selected. The selection follows the moved row.
func (e *Editor) MoveUp() {
	if e.selected <= 1 {
		return
	}
	i := e.selected - 1
	e.rows[i-1], e.rows[i] = e.rows[i], e.rows[i-1]
	e.rows[i-1].setNum(i)
	e.rows[i].setNum(i + 1)
	e.selected--
}

// MoveDown swaps the selected row with its successor. No-op when nothing is
// selected or the last row is selected. The selection follows the moved row.
func (e *Editor) MoveDown() {
	if e.selected == 0 || e.selected == len(e.rows) {
		return
	}
	i := e.selected - 1
	e.rows[i], e.rows[i+1] = e.rows[i+1], e.rows[i]
	e.rows[i].setNum(i + 1)
	e.rows[i+1].setNum(i + 2)
	e.selected++
}

// ButtonStates is the enabled/disabled state of the editor's action controls.
type ButtonStates struct {
	Add       bool `json:"add"`
	Remove    bool `json:"remove"`
	Duplicate bool `json:"duplicate"`
	MoveUp    bool `json:"moveUp"`
	MoveDown  bool `json:"moveDown"`
}

// ButtonStates recomputes the action controls from the current selection and
// row count. Add is always enabled; everything else needs a selection, remove
// additionally needs more than one row, and the move controls disable at the
// respective edge.
func (e *Editor) ButtonStates() ButtonStates {
	bs := ButtonStates{Add: true}
	if e.selected == 0 {
		return bs
	}
	bs.Duplicate = true
	bs.Remove = len(e.rows) > 1
	bs.MoveUp = e.selected > 1
	bs.MoveDown = e.selected < len(e.rows)
	return bs
}

// OnSetsChanged resizes the reps sub-field list of the given row to exactly
// newSets fields, numbered contiguously from 1. Growing appends empty
// sub-fields; shrinking removes from the end, preserving the leading values.
// A second invocation for the same row while one is in flight is rejected
// with ErrSyncInProgress.
func (e *Editor) OnSetsChanged(rowNum, newSets int) error {
	if rowNum < 1 || rowNum > len(e.rows) {
		return fmt.Errorf("no row %d (have %d)", rowNum, len(e.rows))
	}
	if newSets < 0 {
		return fmt.Errorf("sets count must not be negative (got %d)", newSets)
	}

	row := e.rows[rowNum-1]
	if row.syncing {
		return ErrSyncInProgress
	}
	row.syncing = true
	defer func() { row.syncing = false }()

	row.sets.Value = strconv.Itoa(newSets)
	for set := len(row.reps) + 1; set <= newSets; set++ {
		row.reps = append(row.reps, Field{ID: RepsFieldID(rowNum, set)})
	}
	if newSets < len(row.reps) {
		row.reps = row.reps[:newSets]
	}
	return nil
}

// SetRowValues writes raw field values into the given row. The sets count
// and the number of reps sub-fields are not touched here; OnSetsChanged owns
// those. Reps values beyond the row's current sub-field count are ignored.
func (e *Editor) SetRowValues(rowNum int, data RowData) error {
	if rowNum < 1 || rowNum > len(e.rows) {
		return fmt.Errorf("no row %d (have %d)", rowNum, len(e.rows))
	}
	row := e.rows[rowNum-1]
	row.exercise.Value = data.Exercise
	row.setType.Value = data.SetType
	row.weight.Value = data.Weight
	row.comments.Value = data.Comments
	for i := range row.reps {
		if i < len(data.Reps) {
			row.reps[i].Value = data.Reps[i]
		}
	}
	return nil
}

// RepsCount is the number of rendered reps sub-fields for the given row.
func (e *Editor) RepsCount(rowNum int) (int, error) {
	if rowNum < 1 || rowNum > len(e.rows) {
		return 0, fmt.Errorf("no row %d (have %d)", rowNum, len(e.rows))
	}
	return len(e.rows[rowNum-1].reps), nil
}

// ExtractRow reads the given row's current field values regardless of
// validity.
func (e *Editor) ExtractRow(rowNum int) (RowData, error) {
	if rowNum < 1 || rowNum > len(e.rows) {
		return RowData{}, fmt.Errorf("no row %d (have %d)", rowNum, len(e.rows))
	}
	return e.rows[rowNum-1].extract(), nil
}

// ExtractSession reads the session-level fields and every row in on-screen
// order.
func (e *Editor) ExtractSession() SessionData {
	data := SessionData{SessionFields: e.session}
	data.Exercises = make([]RowData, len(e.rows))
	for i, row := range e.rows {
		data.Exercises[i] = row.extract()
	}
	return data
}
