package cli

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/raphaelgruber/shopchat/internal/conversation"
	"github.com/raphaelgruber/shopchat/internal/directive"
	"github.com/raphaelgruber/shopchat/internal/orderform"
)

// Error texts shown in the transcript and banner, shared with the web client.
const (
	errAnswerText = "Sorry, I encountered an error processing your request. Please try again."
	errSendBanner = "Failed to get response from server"
	errClearText  = "Failed to clear chat history"
	errCatalog    = "Failed to load products."
	errSubmit     = "An error occurred while submitting your order."
)

// Theme holds the color scheme for the chat screen.
type Theme struct {
	User      lipgloss.Color
	Assistant lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
	Success   lipgloss.Color
	Link      lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	User:      lipgloss.Color("#5FAFD7"), // light blue
	Assistant: lipgloss.Color("#FFFFFF"),
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
	Success:   lipgloss.Color("#00D787"), // green
	Link:      lipgloss.Color("#5FAFD7"),
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

// renderer adapts the theme to the display-text enrichment.
func (t Theme) renderer() directive.Renderer {
	linkStyle := lipgloss.NewStyle().Foreground(t.Link).Underline(true)
	boldStyle := lipgloss.NewStyle().Bold(true)
	return directive.Renderer{
		Link: func(label, url string) string {
			if label == url {
				return linkStyle.Render(url)
			}
			return linkStyle.Render(label) + t.hintStyle().Render(" ("+url+")")
		},
		Bold: func(text string) string {
			return boldStyle.Render(text)
		},
		LineBreak: "\n",
	}
}

// answerMsg carries the assistant's reply to one chat turn.
type answerMsg struct {
	text string
	err  error
}

// clearedMsg reports the outcome of a conversation clear.
type clearedMsg struct {
	err error
}

// catalogMsg carries the product catalog fetched for one order form.
type catalogMsg struct {
	requestID string
	products  []client.Product
	err       error
}

// orderResultMsg reports the outcome of one order submission.
type orderResultMsg struct {
	requestID string
	err       error
}

// chatModel is the bubbletea model for the chat screen.
type chatModel struct {
	api       *client.Client
	store     *conversation.Store
	sessionID string
	theme     Theme

	input textinput.Model
	spin  spinner.Model

	// in-flight flags; input is locked while a chat request is outstanding
	// so replies can never race or arrive out of order
	sending  bool
	clearing bool

	confirmClear bool
	banner       string

	// transcript message id -> order form request id
	msgForms map[int]string
	// directive prefill by request id, needed when re-initializing after a
	// re-render
	prefills map[string]string

	// per-request-id catalog state; the fetch runs once per request id
	catalogs        map[string][]client.Product
	catalogFetching map[string]bool

	// focused inline form, nil while the chat input has focus
	form *formModel

	width    int
	quitting bool
	fatal    error
}

// newChatModel creates the chat screen model.
func newChatModel(api *client.Client, store *conversation.Store, sessionID string) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about products, prices, or company information..."
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		api:             api,
		store:           store,
		sessionID:       sessionID,
		theme:           defaultTheme,
		input:           ti,
		spin:            sp,
		msgForms:        make(map[int]string),
		prefills:        make(map[string]string),
		catalogs:        make(map[string][]client.Product),
		catalogFetching: make(map[string]bool),
		width:           80,
	}
}

// Init returns the initial command.
func (m chatModel) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case answerMsg:
		return m.handleAnswer(msg)

	case clearedMsg:
		m.clearing = false
		if msg.err != nil {
			m.banner = errClearText
		}
		return m, nil

	case catalogMsg:
		m.catalogFetching[msg.requestID] = false
		if msg.err != nil {
			// Degrade to an empty catalog with a visible form error; the form
			// stays usable with free-text product names.
			m.store.PatchForm(msg.requestID, orderform.Patch{FormError: strptr(errCatalog)})
			return m, nil
		}
		m.catalogs[msg.requestID] = msg.products
		if m.form != nil && m.form.requestID == msg.requestID {
			m.form.products = msg.products
		}
		return m, nil

	case orderResultMsg:
		return m.handleOrderResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m chatModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirmClear {
		switch key {
		case "y", "Y":
			m.confirmClear = false
			return m.startClear()
		case "n", "N", "esc":
			m.confirmClear = false
		}
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	switch key {
	case "enter":
		return m.startSend()
	case "ctrl+l":
		if m.store.Len() > 0 {
			m.confirmClear = true
		}
		return m, nil
	case "tab":
		if rid, ok := m.pendingForm(); ok {
			m.form = newFormModel(rid, m.store.GetOrInitForm(rid, m.prefills[rid]), m.catalogs[rid], m.theme)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startSend appends the user turn and fires the chat request. Input stays
// locked until the reply lands.
func (m chatModel) startSend() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.sending {
		return m, nil
	}

	m.store.Append(conversation.RoleUser, question)
	m.input.SetValue("")
	m.sending = true
	m.banner = ""

	api, sessionID := m.api, m.sessionID
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		answer, err := api.Chat(context.Background(), sessionID, question)
		return answerMsg{text: answer, err: err}
	})
}

func (m chatModel) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	m.sending = false

	if msg.err != nil {
		if errors.Is(msg.err, client.ErrUnauthorized) {
			m.fatal = msg.err
			return m, tea.Quit
		}
		m.banner = errSendBanner
		m.store.Append(conversation.RoleError, errAnswerText)
		return m, nil
	}

	display, d := directive.Parse(msg.text)
	entry := m.store.Append(conversation.RoleAssistant, display)
	if d == nil {
		return m, nil
	}

	m.msgForms[entry.ID] = d.RequestID
	m.prefills[d.RequestID] = d.PrefillProduct
	st := m.store.GetOrInitForm(d.RequestID, d.PrefillProduct)

	// Focus the fresh form right away, like the web client mounting it
	// inside the new bubble.
	m.form = newFormModel(d.RequestID, st, m.catalogs[d.RequestID], m.theme)

	return m, m.fetchCatalog(d.RequestID)
}

// fetchCatalog loads the sellable products for one form, once. Re-renders
// of the same request id never start a second fetch.
func (m chatModel) fetchCatalog(requestID string) tea.Cmd {
	if m.catalogFetching[requestID] {
		return nil
	}
	if _, ok := m.catalogs[requestID]; ok {
		return nil
	}
	m.catalogFetching[requestID] = true

	api := m.api
	return func() tea.Msg {
		products, err := api.ProductsForOrderForm(context.Background())
		return catalogMsg{requestID: requestID, products: products, err: err}
	}
}

func (m chatModel) startClear() (tea.Model, tea.Cmd) {
	m.clearing = true
	m.form = nil
	m.msgForms = make(map[int]string)
	m.prefills = make(map[string]string)
	m.banner = ""

	store, api, sessionID := m.store, m.api, m.sessionID
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		err := store.Clear(context.Background(), func(ctx context.Context) error {
			return api.ClearHistory(ctx, sessionID)
		})
		return clearedMsg{err: err}
	})
}

func (m chatModel) handleOrderResult(msg orderResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, client.ErrUnauthorized) {
			m.fatal = msg.err
			return m, tea.Quit
		}

		detail := errSubmit
		var apiErr *client.APIError
		if errors.As(msg.err, &apiErr) && apiErr.Detail != "" {
			detail = apiErr.Detail
		}
		m.store.PatchForm(msg.requestID, orderform.Patch{
			FormError:  &detail,
			Status:     statusptr(orderform.StatusError),
			Submitting: boolptr(false),
		})
		return m, nil
	}

	// Success is terminal: the bubble renders a permanent confirmation from
	// here on.
	m.store.PatchForm(msg.requestID, orderform.Patch{
		FormError:  strptr(""),
		Status:     statusptr(orderform.StatusSuccess),
		Submitting: boolptr(false),
	})
	if m.form != nil && m.form.requestID == msg.requestID {
		m.form = nil
		m.input.Focus()
	}
	return m, nil
}

// pendingForm finds the most recent form that has not succeeded yet.
func (m chatModel) pendingForm() (string, bool) {
	msgs := m.store.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		rid, ok := m.msgForms[msgs[i].ID]
		if !ok {
			continue
		}
		st := m.store.GetOrInitForm(rid, m.prefills[rid])
		if st.Status != orderform.StatusSuccess {
			return rid, true
		}
	}
	return "", false
}

// View renders the chat screen.
func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	var b strings.Builder

	b.WriteString(m.theme.userStyle().Render("shopchat"))
	b.WriteString(m.theme.hintStyle().Render("  " + m.sessionID))
	b.WriteString("\n\n")

	msgs := m.store.Messages()
	if len(msgs) == 0 && !m.clearing {
		b.WriteString(m.theme.hintStyle().Render("Ask about products, prices or services. Try: \"What security cameras do you offer?\""))
		b.WriteString("\n")
	}

	enrich := m.theme.renderer()
	for _, msg := range msgs {
		switch msg.Role {
		case conversation.RoleUser:
			b.WriteString(m.theme.userStyle().Render("You: "))
			b.WriteString(msg.Text)
		case conversation.RoleAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(directive.Enrich(msg.Text, enrich))
		case conversation.RoleError:
			b.WriteString(m.theme.errorStyle().Render(msg.Text))
		}
		b.WriteString("\n")

		if rid, ok := m.msgForms[msg.ID]; ok {
			b.WriteString(m.renderFormSlot(rid))
		}
	}

	if m.sending {
		b.WriteString(m.spin.View())
		b.WriteString(m.theme.hintStyle().Render(" Thinking..."))
		b.WriteString("\n")
	}
	if m.clearing {
		b.WriteString(m.spin.View())
		b.WriteString(m.theme.hintStyle().Render(" Clearing history..."))
		b.WriteString("\n")
	}
	if m.banner != "" {
		b.WriteString(m.theme.errorStyle().Render(m.banner))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.confirmClear:
		b.WriteString("Delete all chat history? This cannot be undone. ")
		b.WriteString(m.theme.userStyle().Render("(y/n)"))
		b.WriteString("\n")
	case m.form != nil:
		// The focused form renders in its transcript slot above.
		b.WriteString(m.theme.hintStyle().Render("tab/shift+tab fields • ctrl+a add line • ctrl+x remove line • ctrl+p cycle product • enter submit • esc back"))
		b.WriteString("\n")
	default:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render("enter send • ctrl+l clear • ctrl+c quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFormSlot renders the order-form area below one assistant bubble:
// a permanent confirmation after success, the full form while focused, or
// a hint otherwise.
func (m chatModel) renderFormSlot(requestID string) string {
	st := m.store.GetOrInitForm(requestID, m.prefills[requestID])

	if st.Status == orderform.StatusSuccess {
		return m.theme.successStyle().Render("  ✓ Order Request Sent!") +
			m.theme.hintStyle().Render(" Thank you for your request.") + "\n"
	}

	if m.form != nil && m.form.requestID == requestID {
		return m.form.view(st, m.spin)
	}

	return m.theme.hintStyle().Render("  [order form available — press tab to fill it in]") + "\n"
}

func strptr(s string) *string { return &s }

func boolptr(b bool) *bool { return &b }

func statusptr(s orderform.Status) *orderform.Status { return &s }
