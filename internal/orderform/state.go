// Package orderform holds the state and validation rules for the order form
// an assistant message can embed in the transcript. One form exists per
// request id; its state lives in the conversation store so a form keeps its
// edits and its outcome across re-renders of the same message.
package orderform

// Status is the submission outcome for a form.
type Status string

const (
	// StatusIdle means the form has not been submitted successfully yet.
	StatusIdle Status = "idle"

	// StatusSuccess is terminal: the form renders a confirmation from this
	// point on and never becomes editable again within the session.
	StatusSuccess Status = "success"

	// StatusError means the last submission failed; the user may retry.
	StatusError Status = "error"
)

// Line is one product selection in the order.
type Line struct {
	ProductSelection string
	Quantity         int
}

// Customer holds the contact details collected with the order.
// Address and Notes are optional.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// State is the full form state for one request id.
type State struct {
	// Items always holds at least one line.
	Items []Line

	Customer Customer

	// FormError is the last validation or submission error, or empty.
	FormError string

	Status Status

	// Submitting is true only while a submit request is in flight.
	Submitting bool
}

// NewState returns the default form state: one empty line, empty customer
// details, idle, not submitting. An optional prefill populates the first
// line's product.
func NewState(prefillProduct string) State {
	return State{
		Items:  []Line{{ProductSelection: prefillProduct, Quantity: 1}},
		Status: StatusIdle,
	}
}

// AddLine appends an empty line with quantity 1.
func (s *State) AddLine() {
	s.Items = append(s.Items, Line{Quantity: 1})
}

// RemoveLine deletes the line at index i. Removing the last remaining line
// is a no-op, not an error: the form never has zero lines.
func (s *State) RemoveLine(i int) {
	if len(s.Items) <= 1 || i < 0 || i >= len(s.Items) {
		return
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
}

// Patch is a shallow merge into a State. Nil fields are left untouched.
// The accepted field set is scoped to exactly the State attributes;
// anything else has no way in.
type Patch struct {
	Items      *[]Line
	Customer   *Customer
	FormError  *string
	Status     *Status
	Submitting *bool
}

// Apply merges the patch into s. A form that already reached StatusSuccess
// is permanent: patches against it are dropped entirely.
func (s *State) Apply(p Patch) {
	if s.Status == StatusSuccess {
		return
	}
	if p.Items != nil {
		s.Items = *p.Items
	}
	if p.Customer != nil {
		s.Customer = *p.Customer
	}
	if p.FormError != nil {
		s.FormError = *p.FormError
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Submitting != nil {
		s.Submitting = *p.Submitting
	}
}
