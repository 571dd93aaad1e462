package editor

import "strconv"

// Form field name prefixes. A row's full identifier is the prefix plus the
// 1-based row number; reps sub-fields additionally carry the 1-based set
// number. These are the names a template layer projects into inputs.
const (
	FieldExercise = "exercise"
	FieldSetType  = "set-type"
	FieldWeight   = "weight"
	FieldSets     = "sets"
	FieldComments = "exercise-comments"
	FieldReps     = "reps"
)

// FieldID returns the identifier for a row-scoped field, e.g. "exercise3".
func FieldID(field string, row int) string {
	return field + strconv.Itoa(row)
}

// RepsFieldID returns the identifier for one reps sub-field, e.g. "reps3-2"
// for row 3, set 2.
func RepsFieldID(row, set int) string {
	return FieldReps + strconv.Itoa(row) + "-" + strconv.Itoa(set)
}

// Field is one named form value belonging to a row.
type Field struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Row is one exercise entry in the editor. The row itself is the source of
// truth; rendered markup is a projection of its fields. Identifiers are
// stored, not derived on read, so renumbering must rewrite every one of them.
type Row struct {
	num      int
	exercise Field
	setType  Field
	weight   Field
	sets     Field
	comments Field
	reps     []Field
	syncing  bool
}

// newRow builds a row's field set. With nil data all fields start empty and
// the row has no reps sub-fields. With data every field is pre-populated and
// data.Sets reps sub-fields are created, pre-filled from data.Reps where
// present.
func newRow(num int, data *RowData) *Row {
	r := &Row{num: num}
	r.exercise.ID = FieldID(FieldExercise, num)
	r.setType.ID = FieldID(FieldSetType, num)
	r.weight.ID = FieldID(FieldWeight, num)
	r.sets.ID = FieldID(FieldSets, num)
	r.comments.ID = FieldID(FieldComments, num)
	if data == nil {
		return r
	}

	r.exercise.Value = data.Exercise
	r.setType.Value = data.SetType
	r.weight.Value = data.Weight
	r.sets.Value = strconv.Itoa(data.Sets)
	r.comments.Value = data.Comments
	r.reps = make([]Field, data.Sets)
	for i := range r.reps {
		r.reps[i].ID = RepsFieldID(num, i+1)
		if i < len(data.Reps) {
			r.reps[i].Value = data.Reps[i]
		}
	}
	return r
}

// Num is the row's current 1-based position.
func (r *Row) Num() int { return r.num }

// Fields returns the row's fields in form order: exercise, set type, weight,
// sets, reps sub-fields, comments.
func (r *Row) Fields() []Field {
	fields := []Field{r.exercise, r.setType, r.weight, r.sets}
	fields = append(fields, r.reps...)
	return append(fields, r.comments)
}

// setNum renumbers the row, rewriting every field identifier so none is left
// referencing the old number.
func (r *Row) setNum(num int) {
	r.num = num
	r.exercise.ID = FieldID(FieldExercise, num)
	r.setType.ID = FieldID(FieldSetType, num)
	r.weight.ID = FieldID(FieldWeight, num)
	r.sets.ID = FieldID(FieldSets, num)
	r.comments.ID = FieldID(FieldComments, num)
	for i := range r.reps {
		r.reps[i].ID = RepsFieldID(num, i+1)
	}
}

// extract reads the row's current field values regardless of validity.
func (r *Row) extract() RowData {
	sets, _ := strconv.Atoi(r.sets.Value)
	reps := make([]string, len(r.reps))
	for i, f := range r.reps {
		reps[i] = f.Value
	}
	return RowData{
		Exercise: r.exercise.Value,
		SetType:  r.setType.Value,
		Weight:   r.weight.Value,
		Sets:     sets,
		Reps:     reps,
		Comments: r.comments.Value,
	}
}
