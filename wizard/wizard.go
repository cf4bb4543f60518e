// Package wizard drives a linear, step-gated form flow. The same engine
// backs the staff registration, rental preferences and booking flows; each
// flow only supplies its own step validators.
//
// Validation runs when the user tries to advance, not on every field change.
// Corrections after a failed advance are not re-checked until the next
// Next() call.
package wizard

// Kind discriminates the value held by a field.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindSet
)

// Value is a tagged variant: exactly one of Text, Number or Set is
// meaningful, per Kind.
type Value struct {
	Kind   Kind
	Text   string
	Number int
	Set    []string
}

func Text(s string) Value   { return Value{Kind: KindText, Text: s} }
func Number(n int) Value    { return Value{Kind: KindNumber, Number: n} }
func Set(s ...string) Value { return Value{Kind: KindSet, Set: s} }

// Fields is the accumulated form state across all steps.
type Fields map[string]Value

func (f Fields) Text(name string) string {
	return f[name].Text
}

func (f Fields) Number(name string) int {
	return f[name].Number
}

func (f Fields) Set(name string) []string {
	return f[name].Set
}

// StepValidator checks the field subset owned by one step. A nil or empty
// result means the step passes; otherwise the map is field -> message.
type StepValidator func(f Fields) map[string]string

// Wizard is the step state machine. Steps are 1-indexed; the last step is
// the review/complete step whose outcome is rendered from the submission
// result, not from another Next().
type Wizard struct {
	validators []StepValidator
	current    int
	fields     Fields
	errors     map[string]string
}

// New builds a wizard with one validator per step. len(validators) is N;
// the validator for the final step may be nil.
func New(validators ...StepValidator) *Wizard {
	return &Wizard{
		validators: validators,
		current:    1,
		fields:     Fields{},
	}
}

func (w *Wizard) Current() int { return w.current }

func (w *Wizard) Steps() int { return len(w.validators) }

// Fields returns the live form state.
func (w *Wizard) Fields() Fields { return w.fields }

// Errs returns the field errors from the last failed Next(), or nil.
func (w *Wizard) Errs() map[string]string { return w.errors }

// Next validates the current step and advances on success. On failure the
// step stays put and Errs() carries the per-field messages. No-op at the
// final step.
func (w *Wizard) Next() bool {
	if w.current >= len(w.validators) {
		return false
	}
	if v := w.validators[w.current-1]; v != nil {
		if errs := v(w.fields); len(errs) > 0 {
			w.errors = errs
			return false
		}
	}
	w.errors = nil
	w.current++
	return true
}

// Back moves to the previous step unconditionally. Field values and errors
// of the step left behind are kept.
func (w *Wizard) Back() {
	if w.current > 1 {
		w.current--
	}
}

// SetField writes a value without triggering validation.
func (w *Wizard) SetField(name string, v Value) {
	w.fields[name] = v
}

// AddToSet appends value to a set field if not already present.
func (w *Wizard) AddToSet(name, value string) {
	cur := w.fields[name]
	for _, v := range cur.Set {
		if v == value {
			return
		}
	}
	w.fields[name] = Value{Kind: KindSet, Set: append(cur.Set, value)}
}

// RemoveFromSet drops value from a set field.
func (w *Wizard) RemoveFromSet(name, value string) {
	cur := w.fields[name]
	var kept []string
	for _, v := range cur.Set {
		if v != value {
			kept = append(kept, v)
		}
	}
	w.fields[name] = Value{Kind: KindSet, Set: kept}
}

// Require is a helper for validators: adds a "required" error for every
// named text field that is empty.
func Require(f Fields, errs map[string]string, message string, names ...string) {
	for _, name := range names {
		if f.Text(name) == "" {
			errs[name] = message
		}
	}
}
