package validation

import (
	"fmt"

	"credflow/internal/domain"
)

type field struct {
	value  *string
	errors domain.Errors
	rules  []Rule
}

type edge struct {
	id     int
	target domain.FieldID
}

type listener struct {
	id int
	fn func(*string)
}

// Form holds field values, their validation errors and cross-field dependencies.
// It is owned by a single session loop and is not safe for concurrent use.
type Form struct {
	fields     map[domain.FieldID]*field
	order      []domain.FieldID
	edges      map[domain.FieldID][]edge
	listeners  map[domain.FieldID][]listener
	formErrors domain.Errors
	disabled   bool
	nextID     int
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{
		fields:     make(map[domain.FieldID]*field),
		edges:      make(map[domain.FieldID][]edge),
		listeners:  make(map[domain.FieldID][]listener),
		formErrors: domain.NewErrors(),
	}
}

// AddField registers a field with an initial value and validates it
func (f *Form) AddField(id domain.FieldID, initial *string, rules ...Rule) {
	if _, exists := f.fields[id]; !exists {
		f.order = append(f.order, id)
	}
	fl := &field{value: initial, rules: rules}
	fl.errors = f.run(fl.rules, initial)
	f.fields[id] = fl
}

// Validate runs the rules of field id against candidate without storing it
func (f *Form) Validate(id domain.FieldID, candidate *string) domain.Errors {
	fl, ok := f.fields[id]
	if !ok {
		return domain.NewErrors()
	}
	return f.run(fl.rules, candidate)
}

// SetValue stores value, revalidates the field and everything depending on it,
// then notifies change listeners
func (f *Form) SetValue(id domain.FieldID, value *string) error {
	fl, ok := f.fields[id]
	if !ok {
		return fmt.Errorf("unknown field %q", id)
	}
	if f.disabled {
		return domain.ErrFieldDisabled
	}

	fl.value = value
	fl.errors = f.run(fl.rules, value)
	for _, e := range f.edges[id] {
		f.Revalidate(e.target)
	}
	f.formErrors = domain.NewErrors()

	for _, l := range f.listeners[id] {
		l.fn(value)
	}
	return nil
}

// Revalidate recomputes errors of field id from its current value
func (f *Form) Revalidate(id domain.FieldID) {
	fl, ok := f.fields[id]
	if !ok {
		return
	}
	fl.errors = f.run(fl.rules, fl.value)
}

// DependOn makes every change of source revalidate target.
// The returned func removes the dependency.
func (f *Form) DependOn(target, source domain.FieldID) func() {
	id := f.nextID
	f.nextID++
	f.edges[source] = append(f.edges[source], edge{id: id, target: target})

	return func() {
		edges := f.edges[source]
		for i, e := range edges {
			if e.id == id {
				f.edges[source] = append(edges[:i:i], edges[i+1:]...)
				return
			}
		}
	}
}

// OnChange registers fn to be called after every SetValue of field id.
// The returned func removes the listener.
func (f *Form) OnChange(id domain.FieldID, fn func(*string)) func() {
	lid := f.nextID
	f.nextID++
	f.listeners[id] = append(f.listeners[id], listener{id: lid, fn: fn})

	return func() {
		ls := f.listeners[id]
		for i, l := range ls {
			if l.id == lid {
				f.listeners[id] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Close removes all dependencies and listeners
func (f *Form) Close() {
	f.edges = make(map[domain.FieldID][]edge)
	f.listeners = make(map[domain.FieldID][]listener)
}

// Value returns the current value of field id
func (f *Form) Value(id domain.FieldID) *string {
	if fl, ok := f.fields[id]; ok {
		return fl.value
	}
	return nil
}

// StringValue returns the current value of field id or empty string
func (f *Form) StringValue(id domain.FieldID) string {
	if v := f.Value(id); v != nil {
		return *v
	}
	return ""
}

// Errors returns a copy of the current errors of field id
func (f *Form) Errors(id domain.FieldID) domain.Errors {
	fl, ok := f.fields[id]
	if !ok {
		return domain.NewErrors()
	}
	return domain.NewErrors(fl.errors.Kinds()...)
}

// HasError reports whether field id currently has kind
func (f *Form) HasError(id domain.FieldID, kind domain.ErrorKind) bool {
	fl, ok := f.fields[id]
	return ok && fl.errors.Has(kind)
}

// Field returns a snapshot of field id
func (f *Form) Field(id domain.FieldID) domain.FieldState {
	return domain.FieldState{
		Value:    f.Value(id),
		Errors:   f.Errors(id),
		Disabled: f.disabled,
	}
}

// Valid reports whether no field and no form-level error is active
func (f *Form) Valid() bool {
	if !f.formErrors.Empty() {
		return false
	}
	for _, id := range f.order {
		if !f.fields[id].errors.Empty() {
			return false
		}
	}
	return true
}

// SetFormError attaches a form-level error, cleared by the next SetValue
func (f *Form) SetFormError(kind domain.ErrorKind) {
	f.formErrors[kind] = struct{}{}
}

// FormErrors returns a copy of the form-level errors
func (f *Form) FormErrors() domain.Errors {
	return domain.NewErrors(f.formErrors.Kinds()...)
}

// Disable rejects further edits until Enable
func (f *Form) Disable() {
	f.disabled = true
}

// Enable accepts edits again
func (f *Form) Enable() {
	f.disabled = false
}

// Disabled reports whether edits are rejected
func (f *Form) Disabled() bool {
	return f.disabled
}

func (f *Form) run(rules []Rule, value *string) domain.Errors {
	errs := domain.NewErrors()
	for _, rule := range rules {
		for _, kind := range rule(value) {
			errs[kind] = struct{}{}
		}
	}
	return errs
}
