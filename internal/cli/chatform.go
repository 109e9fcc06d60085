package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/raphaelgruber/shopchat/internal/orderform"
)

// customer field order inside the form
const (
	custName = iota
	custEmail
	custPhone
	custAddress
	custNotes
	customerFields
)

var customerPlaceholders = [customerFields]string{
	"Name *",
	"Email *",
	"Phone * (10 digits)",
	"Address (optional)",
	"Notes (optional)",
}

// lineInputs is one order line: a product selection and a quantity.
type lineInputs struct {
	product  textinput.Model
	quantity textinput.Model
}

// formModel drives the inline order form embedded in one assistant bubble.
// The durable state lives in the conversation store keyed by requestID; the
// model only holds the text inputs and focus while the form is on screen.
type formModel struct {
	requestID string
	theme     Theme
	products  []client.Product

	lines    []lineInputs
	customer [customerFields]textinput.Model
	focus    int
}

// newFormModel builds the input fields from the stored form state.
func newFormModel(requestID string, st orderform.State, products []client.Product, theme Theme) *formModel {
	f := &formModel{
		requestID: requestID,
		theme:     theme,
		products:  products,
	}

	for _, item := range st.Items {
		f.lines = append(f.lines, newLineInputs(item))
	}
	if len(f.lines) == 0 {
		f.lines = append(f.lines, newLineInputs(orderform.Line{Quantity: 1}))
	}

	values := [customerFields]string{
		st.Customer.Name, st.Customer.Email, st.Customer.Phone,
		st.Customer.Address, st.Customer.Notes,
	}
	for i := range f.customer {
		ti := textinput.New()
		ti.Placeholder = customerPlaceholders[i]
		ti.Prompt = ""
		ti.SetValue(values[i])
		f.customer[i] = ti
	}

	f.setFocus(0)
	return f
}

func newLineInputs(item orderform.Line) lineInputs {
	product := textinput.New()
	product.Placeholder = "Select a product..."
	product.Prompt = ""
	product.SetValue(item.ProductSelection)

	qty := textinput.New()
	qty.Prompt = ""
	if item.Quantity > 0 {
		qty.SetValue(strconv.Itoa(item.Quantity))
	} else {
		qty.SetValue("1")
	}

	return lineInputs{product: product, quantity: qty}
}

// Focus layout: line fields first (product, quantity per line), then the
// customer fields, then the submit control.
func (f *formModel) fieldCount() int { return len(f.lines)*2 + customerFields }

func (f *formModel) submitIndex() int { return f.fieldCount() }

func (f *formModel) setFocus(i int) {
	if i < 0 {
		i = f.submitIndex()
	}
	if i > f.submitIndex() {
		i = 0
	}
	f.focus = i

	for li := range f.lines {
		f.lines[li].product.Blur()
		f.lines[li].quantity.Blur()
	}
	for ci := range f.customer {
		f.customer[ci].Blur()
	}

	if input := f.focusedInput(); input != nil {
		input.Focus()
	}
}

// focusedInput returns the focused text input, or nil on the submit control.
func (f *formModel) focusedInput() *textinput.Model {
	if f.focus < len(f.lines)*2 {
		line := &f.lines[f.focus/2]
		if f.focus%2 == 0 {
			return &line.product
		}
		return &line.quantity
	}
	ci := f.focus - len(f.lines)*2
	if ci < customerFields {
		return &f.customer[ci]
	}
	return nil
}

// focusedLine returns the order-line index the focus is on, or -1.
func (f *formModel) focusedLine() int {
	if f.focus < len(f.lines)*2 {
		return f.focus / 2
	}
	return -1
}

// cycleProduct steps the focused product field through the catalog.
// With an empty catalog the field simply stays free text, so an order can
// still be placed when the catalog fetch failed.
func (f *formModel) cycleProduct() {
	li := f.focusedLine()
	if li < 0 || f.focus%2 != 0 || len(f.products) == 0 {
		return
	}

	current := f.lines[li].product.Value()
	next := 0
	for i, p := range f.products {
		if p.Name == current {
			next = (i + 1) % len(f.products)
			break
		}
	}
	f.lines[li].product.SetValue(f.products[next].Name)
}

// addLine appends an empty order line and focuses its product field.
func (f *formModel) addLine() {
	f.lines = append(f.lines, newLineInputs(orderform.Line{Quantity: 1}))
	f.setFocus((len(f.lines) - 1) * 2)
}

// removeLine deletes the focused order line. The last remaining line stays;
// removing it is a no-op.
func (f *formModel) removeLine() {
	li := f.focusedLine()
	if li < 0 || len(f.lines) <= 1 {
		return
	}
	f.lines = append(f.lines[:li], f.lines[li+1:]...)
	f.setFocus(0)
}

// state collects the current input values into a form state patch.
func (f *formModel) state() ([]orderform.Line, orderform.Customer) {
	items := make([]orderform.Line, 0, len(f.lines))
	for _, line := range f.lines {
		qty, err := strconv.Atoi(strings.TrimSpace(line.quantity.Value()))
		if err != nil || qty < 1 {
			qty = 1
		}
		items = append(items, orderform.Line{
			ProductSelection: line.product.Value(),
			Quantity:         qty,
		})
	}

	customer := orderform.Customer{
		Name:    f.customer[custName].Value(),
		Email:   f.customer[custEmail].Value(),
		Phone:   f.customer[custPhone].Value(),
		Address: f.customer[custAddress].Value(),
		Notes:   f.customer[custNotes].Value(),
	}
	return items, customer
}

// updateForm routes a key press to the focused inline form.
func (m chatModel) updateForm(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	f := m.form

	// While a submission is in flight every control is disabled, preventing
	// a duplicate request.
	if st := m.store.GetOrInitForm(f.requestID, m.prefills[f.requestID]); st.Submitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.syncForm()
		m.form = nil
		m.input.Focus()
		return m, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	case "ctrl+a":
		m.syncForm()
		f.addLine()
		return m, nil
	case "ctrl+x":
		f.removeLine()
		m.syncForm()
		return m, nil
	case "ctrl+p":
		f.cycleProduct()
		return m, nil
	case "enter":
		if f.focus == f.submitIndex() {
			return m.submitForm()
		}
		f.setFocus(f.focus + 1)
		return m, nil
	}

	input := f.focusedInput()
	if input == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return m, cmd
}

// syncForm writes the current input values through to the store so edits
// survive leaving and re-entering the form.
func (m chatModel) syncForm() orderform.State {
	items, customer := m.form.state()
	return m.store.PatchForm(m.form.requestID, orderform.Patch{
		Items:    &items,
		Customer: &customer,
	})
}

// submitForm validates and, on success, fires the order request. Validation
// stops at the first failing rule and no network call is made.
func (m chatModel) submitForm() (tea.Model, tea.Cmd) {
	st := m.syncForm()
	requestID := m.form.requestID

	if msg := orderform.Validate(st); msg != "" {
		m.store.PatchForm(requestID, orderform.Patch{
			FormError:  &msg,
			Submitting: boolptr(false),
		})
		return m, nil
	}

	st = m.store.PatchForm(requestID, orderform.Patch{
		FormError:  strptr(""),
		Submitting: boolptr(true),
	})

	api := m.api
	order := buildOrderRequest(st)
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		err := api.SubmitOrder(context.Background(), order)
		return orderResultMsg{requestID: requestID, err: err}
	})
}

// buildOrderRequest translates form state into the wire payload. Customer
// fields are trimmed here, at the boundary.
func buildOrderRequest(st orderform.State) client.OrderRequest {
	items := make([]client.OrderItem, 0, len(st.Items))
	for _, item := range st.Items {
		items = append(items, client.OrderItem{
			ProductName: strings.TrimSpace(item.ProductSelection),
			Quantity:    item.Quantity,
		})
	}

	return client.OrderRequest{
		Items:           items,
		CustomerName:    strings.TrimSpace(st.Customer.Name),
		CustomerEmail:   strings.TrimSpace(st.Customer.Email),
		CustomerPhone:   strings.TrimSpace(st.Customer.Phone),
		CustomerAddress: strings.TrimSpace(st.Customer.Address),
		Notes:           strings.TrimSpace(st.Customer.Notes),
	}
}

// view renders the focused form.
func (f *formModel) view(st orderform.State, spin spinner.Model) string {
	var b strings.Builder
	hint := f.theme.hintStyle()

	b.WriteString(hint.Render("  ── Quick Order Form ──"))
	b.WriteString("\n")

	if st.FormError != "" {
		b.WriteString("  ")
		b.WriteString(f.theme.errorStyle().Render(st.FormError))
		b.WriteString("\n")
	}

	b.WriteString(hint.Render("  Items"))
	b.WriteString("\n")
	for _, line := range f.lines {
		fmt.Fprintf(&b, "    Product: %s  Qty: %s\n", line.product.View(), line.quantity.View())
	}

	b.WriteString(hint.Render("  Your Details"))
	b.WriteString("\n")
	for i := range f.customer {
		fmt.Fprintf(&b, "    %s\n", f.customer[i].View())
	}

	b.WriteString("    ")
	switch {
	case st.Submitting:
		b.WriteString(spin.View())
		b.WriteString(hint.Render(" Submitting..."))
	case f.focus == f.submitIndex():
		b.WriteString(f.theme.userStyle().Render("[ Submit Order ]"))
	default:
		b.WriteString("[ Submit Order ]")
	}
	b.WriteString("\n")

	return b.String()
}
