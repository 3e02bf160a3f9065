// Package jobwizard is the terminal front-end of the job-creation wizard:
// one screen per step over a wizard.Controller, with organization search,
// scoped pickers, a cancel confirmation and a rendered review.
package jobwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/recruitdash/recruitdash/internal/ats"
	"github.com/recruitdash/recruitdash/internal/lookup"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

// Outcome is how a wizard run ended.
type Outcome int

const (
	// OutcomeClosed means the wizard closed with nothing worth keeping.
	OutcomeClosed Outcome = iota
	// OutcomeCreated means a job was created.
	OutcomeCreated
	// OutcomeSaved means the draft was kept for a later session.
	OutcomeSaved
	// OutcomeDiscarded means the draft was thrown away.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeSaved:
		return "saved"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "closed"
	}
}

// Result is returned by Run.
type Result struct {
	Outcome Outcome
	Job     *wizard.Job
}

// submitDoneMsg carries the outcome of GoNext on the review step.
type submitDoneMsg struct {
	tr  wizard.Transition
	err error
}

// Model is the BubbleTea model of the job wizard.
type Model struct {
	ctx  context.Context
	ctrl *wizard.Controller
	dir  Directory

	debounce    *lookup.Debouncer
	departments *lookup.Keyed[int64, []ats.Department]
	contacts    *lookup.Keyed[int64, []ats.Contact]

	fields []*field
	focus  int

	options    map[string][]option
	optionErrs map[string]string

	orgResults []ats.Organization
	orgCursor  int
	searchErr  string

	review *reviewPane

	width      int
	height     int
	status     string
	submitting bool
	done       bool
	result     Result
}

// Option configures a Model.
type Option func(*Model)

// WithDebounce sets the organization search debounce.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = lookup.NewDebouncer(d) }
}

// New creates the wizard model. ctx bounds lookups and the submission.
func New(ctx context.Context, ctrl *wizard.Controller, dir Directory, opts ...Option) *Model {
	m := &Model{
		ctx:         ctx,
		ctrl:        ctrl,
		dir:         dir,
		debounce:    lookup.NewDebouncer(lookup.DefaultDebounce),
		departments: lookup.NewKeyed[int64, []ats.Department](0),
		contacts:    lookup.NewKeyed[int64, []ats.Contact](0),
		options:     map[string][]option{keyJobType: jobTypeOptions()},
		optionErrs:  map[string]string{},
		width:       100,
		height:      40,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run shows the wizard until it closes and reports how it ended.
func Run(ctx context.Context, ctrl *wizard.Controller, dir Directory, opts ...Option) (Result, error) {
	m := New(ctx, ctrl, dir, opts...)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return Result{}, fmt.Errorf("wizard failed: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type %T", final)
	}
	return fm.result, nil
}

// Result reports how the wizard ended. It is only meaningful once Done.
func (m *Model) Result() Result { return m.result }

// Done reports whether the wizard has finished.
func (m *Model) Done() bool { return m.done }

// Init loads the reference lists and shows the current step.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.enterStep(), m.loadUnscoped(), m.loadScoped())
}

// enterStep rebuilds the screen for the controller's current step.
func (m *Model) enterStep() tea.Cmd {
	m.status = ""
	m.focus = 0
	m.orgResults, m.orgCursor, m.searchErr = nil, 0, ""

	step := m.ctrl.Step()
	if step == wizard.StepReview {
		m.fields = nil
		m.review = newReviewPane(m.ctrl.Store().Snapshot())
		m.review.setSize(m.contentWidth(), m.contentHeight())
		return nil
	}
	m.review = nil
	m.fields = newStepFields(step)
	for _, f := range m.fields {
		f.setWidth(m.contentWidth())
	}
	m.sync(false)
	if len(m.fields) == 0 {
		return nil
	}
	return m.fields[0].focus()
}

// sync copies draft values into the inputs. The focused input keeps what
// the user is typing.
func (m *Model) sync(skipFocused bool) {
	d := m.ctrl.Store().Draft()
	for i, f := range m.fields {
		if f.kind != kindText && f.kind != kindArea {
			continue
		}
		if skipFocused && i == m.focus {
			continue
		}
		if v := readText(f.key, d); f.value() != v {
			f.setValue(v)
		}
	}
}

func (m *Model) finish(o Outcome, job *wizard.Job) tea.Cmd {
	m.done = true
	m.result = Result{Outcome: o, Job: job}
	return tea.Quit
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, f := range m.fields {
			f.setWidth(m.contentWidth())
		}
		if m.review != nil {
			m.review.setSize(m.contentWidth(), m.contentHeight())
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.ctrl.CancelPending() {
			return m, m.handleCancelKey(msg)
		}
		return m, m.handleKey(msg)

	case orgResultsMsg:
		if !m.debounce.IsCurrent(msg.query) {
			return m, nil
		}
		m.orgResults, m.orgCursor, m.searchErr = msg.orgs, 0, ""
		if msg.err != nil {
			m.searchErr = msg.err.Error()
		}
		return m, nil

	case optionsMsg:
		if msg.orgID != 0 && msg.orgID != m.ctrl.Store().Draft().OrganizationID {
			return m, nil
		}
		if msg.err != nil {
			m.optionErrs[msg.key] = msg.err.Error()
			return m, nil
		}
		delete(m.optionErrs, msg.key)
		m.options[msg.key] = msg.options
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			if !errors.As(msg.err, new(*wizard.SubmitError)) {
				m.status = msg.err.Error()
			}
			return m, nil
		}
		if msg.tr.Submitted {
			return m, m.finish(OutcomeCreated, msg.tr.Job)
		}
		return m, nil

	case editedMsg:
		for _, f := range m.fields {
			if f.key == msg.key {
				f.setValue(msg.content)
				m.applyText(f)
			}
		}
		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "ctrl+c", "esc":
		if m.submitting {
			m.status = "Creating job, please wait"
			return nil
		}
		switch m.ctrl.Cancel() {
		case wizard.CancelClosed:
			return m.finish(OutcomeClosed, nil)
		case wizard.CancelPrompt:
			if key == "ctrl+c" {
				_ = m.ctrl.ResolveCancel(wizard.ContinueLater)
				return m.finish(OutcomeSaved, nil)
			}
		}
		return nil
	case "ctrl+n":
		return m.next()
	case "ctrl+b":
		return m.back()
	case "tab":
		return m.moveFocus(1)
	case "shift+tab":
		return m.moveFocus(-1)
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6":
		return m.jump(int(key[len(key)-1]-'1'))
	}

	if m.review != nil {
		if msg.String() == "enter" {
			return m.next()
		}
		return m.review.update(msg)
	}
	return m.handleFieldKey(msg)
}

func (m *Model) handleCancelKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "c", "enter":
		if err := m.ctrl.ResolveCancel(wizard.ContinueLater); err == nil {
			return m.finish(OutcomeSaved, nil)
		}
	case "d":
		if err := m.ctrl.ResolveCancel(wizard.Discard); err == nil {
			return m.finish(OutcomeDiscarded, nil)
		}
	case "esc", "n":
		m.ctrl.DismissCancel()
	}
	return nil
}

func (m *Model) handleFieldKey(msg tea.KeyPressMsg) tea.Cmd {
	f := m.focused()
	if f == nil {
		return nil
	}
	key := msg.String()

	if key == "ctrl+e" && f.editable() {
		return openEditor(f.key, f.value())
	}

	switch f.kind {
	case kindToggle:
		switch key {
		case "space", " ", "enter":
			on := !readToggle(f.key, m.ctrl.Store().Draft())
			m.ctrl.Store().UpdateDraft(togglePatch(f.key, on))
			m.sync(true)
		}
		return nil

	case kindChoice:
		switch key {
		case "left", "h":
			m.cycleChoice(f, -1)
		case "right", "l", "space", " ":
			m.cycleChoice(f, 1)
		case "enter":
			return m.moveFocus(1)
		}
		return nil

	case kindSearch:
		switch key {
		case "up":
			if m.orgCursor > 0 {
				m.orgCursor--
			}
			return nil
		case "down":
			if m.orgCursor < len(m.orgResults)-1 {
				m.orgCursor++
			}
			return nil
		case "enter":
			if len(m.orgResults) > 0 {
				return m.selectOrganization(m.orgResults[m.orgCursor])
			}
			return m.moveFocus(1)
		case "ctrl+x":
			m.ctrl.Store().SetOrganization(nil)
			m.status = "Organization cleared"
			return nil
		}

	case kindText:
		if key == "enter" {
			if m.focus == len(m.fields)-1 {
				return m.next()
			}
			return m.moveFocus(1)
		}
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused input and applies any change.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	f := m.focused()
	if f == nil {
		if m.review != nil {
			return m.review.update(msg)
		}
		return nil
	}

	before := f.value()
	var cmd tea.Cmd
	switch f.kind {
	case kindText, kindSearch:
		f.input, cmd = f.input.Update(msg)
	case kindArea:
		f.area, cmd = f.area.Update(msg)
	default:
		return nil
	}
	if f.value() == before {
		return cmd
	}

	if f.kind == kindSearch {
		m.orgResults, m.orgCursor, m.searchErr = nil, 0, ""
		token := m.debounce.Trigger(f.value())
		return tea.Batch(cmd, m.searchOrganizations(token))
	}
	m.applyText(f)
	return cmd
}

func (m *Model) applyText(f *field) {
	p, err := textPatch(f.key, f.value())
	if err != nil {
		f.err = err.Error()
		return
	}
	f.err = ""
	m.ctrl.Store().UpdateDraft(p)
	m.sync(true)
}

// choiceOptions lists what a choice field cycles through. Lookup pickers
// start with "none"; scoped pickers are empty without an organization.
func (m *Model) choiceOptions(key string) ([]option, bool) {
	if key == keyJobType {
		return m.options[keyJobType], true
	}
	gate := wizard.GateFor(m.ctrl.Store().Draft())
	if (key == keyDepartment && !gate.Departments) || (key == keyContact && !gate.Contacts) {
		return nil, false
	}
	return append([]option{{label: wizard.Label{}}}, m.options[key]...), true
}

func (m *Model) cycleChoice(f *field, delta int) {
	opts, enabled := m.choiceOptions(f.key)
	if !enabled {
		m.status = "Select an organization first"
		return
	}
	if len(opts) == 0 {
		return
	}

	id, value := readChoice(f.key, m.ctrl.Store().Draft())
	cur := 0
	for i, o := range opts {
		if (value != "" && o.value == value) || (value == "" && o.label.ID == id) {
			cur = i
			break
		}
	}
	next := opts[(cur+delta+len(opts))%len(opts)]

	p, meta := choicePatch(f.key, next)
	m.ctrl.Store().UpdateDraft(p)
	m.ctrl.Store().SetReviewMetadata(meta)
}

func (m *Model) selectOrganization(org ats.Organization) tea.Cmd {
	m.ctrl.Store().SetOrganization(&org)
	m.orgResults, m.orgCursor = nil, 0
	if f := m.focused(); f != nil && f.kind == kindSearch {
		f.setValue("")
	}
	m.debounce.Trigger("")
	m.status = "Selected " + org.Name
	return m.loadScoped()
}

func (m *Model) focused() *field {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return nil
	}
	return m.fields[m.focus]
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	m.fields[m.focus].blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].focus()
}

func (m *Model) next() tea.Cmd {
	if m.ctrl.Step() == wizard.StepReview {
		if m.submitting {
			return nil
		}
		m.submitting = true
		m.status = ""
		ctx, ctrl := m.ctx, m.ctrl
		return func() tea.Msg {
			tr, err := ctrl.GoNext(ctx)
			return submitDoneMsg{tr: tr, err: err}
		}
	}

	tr, err := m.ctrl.GoNext(m.ctx)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	if !tr.Moved {
		m.status = "Complete this step to continue"
		return nil
	}
	return m.enterStep()
}

func (m *Model) back() tea.Cmd {
	if m.submitting || !m.ctrl.GoBack().Moved {
		return nil
	}
	return m.enterStep()
}

func (m *Model) jump(i int) tea.Cmd {
	steps := wizard.Steps()
	if m.submitting || i < 0 || i >= len(steps) {
		return nil
	}
	if !m.ctrl.Jump(steps[i]) {
		m.status = fmt.Sprintf("%s is not reachable yet", steps[i])
		return nil
	}
	return m.enterStep()
}

func (m *Model) contentWidth() int {
	return max(40, min(m.width-14, 96))
}

func (m *Model) contentHeight() int {
	return max(10, m.height-16)
}

// View renders the wizard.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.render()).Draw(canvas, uv.Rect(0, 0, m.width, m.height))

	if m.ctrl.CancelPending() {
		modal := renderCancelModal()
		w, h := lipgloss.Width(modal), lipgloss.Height(modal)
		x, y := max(0, (m.width-w)/2), max(0, (m.height-h)/2)
		uv.NewStyledString(modal).Draw(canvas, uv.Rect(x, y, w, h))
	}

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render draws the step screen as a centered modal.
func (m *Model) render() string {
	step := m.ctrl.Step()
	def, _ := wizard.DefinitionFor(step)
	width := m.contentWidth()

	sections := []string{
		styleModalTitle.Render(fmt.Sprintf("New Job - Step %d of %d: %s", step.Index()+1, len(wizard.Steps()), def.Label)),
		m.renderProgress(),
		styleStepDescription.Render(def.Description),
		"",
	}

	if m.review != nil {
		sections = append(sections, m.review.view())
	} else {
		for i, f := range m.fields {
			sections = append(sections, m.renderField(i, f))
		}
	}
	sections = append(sections, "")

	if problems := m.ctrl.Problems(); len(problems) > 0 {
		for _, p := range problems {
			sections = append(sections, styleProblem.Render("• "+p))
		}
	}
	if err := m.ctrl.LastError(); err != nil && !m.submitting {
		sections = append(sections, styleError.Render("✗ Job was not created: "+err.Error()))
	}
	if m.submitting {
		sections = append(sections, styleMuted.Render("Creating job..."))
	} else if m.status != "" {
		sections = append(sections, styleMuted.Render(m.status))
	}

	nextLabel := "Next →"
	if step == wizard.StepReview {
		nextLabel = "Create job"
	}
	sections = append(sections, "",
		renderButtons(width,
			button{label: "← Back", enabled: step.Index() > 0 && !m.submitting},
			button{label: nextLabel, enabled: m.ctrl.CurrentValid() && !m.submitting, primary: true},
		),
		m.renderHints(),
	)

	modal := styleModalContainer.Width(width + 6).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func (m *Model) renderProgress() string {
	cur := m.ctrl.Step()
	parts := make([]string, 0, len(wizard.Steps()))
	for _, def := range wizard.Definitions() {
		switch {
		case def.Key == cur:
			parts = append(parts, styleLabelFocused.UnsetWidth().Render("● "+def.Label))
		case m.ctrl.Store().IsComplete(def.Key):
			parts = append(parts, styleSuccess.Render("✓ "+def.Label))
		default:
			parts = append(parts, styleMuted.Render("○ "+def.Label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderHints() string {
	if m.review != nil {
		return renderHintBar("↑↓", "scroll", "enter", "create", "ctrl+b", "back", "alt+1-6", "jump", "esc", "cancel")
	}
	pairs := []string{"tab", "next field", "ctrl+n", "next step", "ctrl+b", "back"}
	if f := m.focused(); f != nil {
		switch f.kind {
		case kindChoice:
			pairs = append(pairs, "←→", "choose")
		case kindToggle:
			pairs = append(pairs, "space", "toggle")
		case kindSearch:
			pairs = append(pairs, "↑↓", "results", "enter", "select", "ctrl+x", "clear")
		case kindArea:
			pairs = append(pairs, "ctrl+e", "editor")
		}
	}
	return renderHintBar(append(pairs, "esc", "cancel")...)
}

func (m *Model) renderField(i int, f *field) string {
	focused := i == m.focus
	label := styleLabel.Render(f.label)
	if focused {
		label = styleLabelFocused.Render(f.label)
	}

	d := m.ctrl.Store().Draft()
	var value string
	switch f.kind {
	case kindText:
		value = f.input.View()
	case kindArea:
		if focused {
			value = f.area.View()
		} else {
			value = summarizeText(f.value(), m.contentWidth()-20)
		}
	case kindToggle:
		value = styleValue.Render("[ ] no")
		if readToggle(f.key, d) {
			value = styleValue.Render("[x] yes")
		}
	case kindChoice:
		value = m.renderChoice(f, focused)
	case kindSearch:
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, label, f.input.View()),
			m.renderOrganization(focused),
		)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, label, value)
	if f.err != "" {
		row += "\n" + styleLabel.Render("") + styleError.Render("✗ "+f.err)
	}
	return row
}

func (m *Model) renderChoice(f *field, focused bool) string {
	if msg, failed := m.optionErrs[f.key]; failed {
		return styleError.Render("failed to load: " + msg)
	}
	if _, enabled := m.choiceOptions(f.key); !enabled {
		return styleMuted.Render("select an organization first")
	}

	d := m.ctrl.Store().Draft()
	id, value := readChoice(f.key, d)
	var text string
	switch {
	case value != "":
		text = option{value: value}.text()
	case id == 0:
		text = "none"
	default:
		text = fmt.Sprintf("#%d", id)
		for _, o := range m.options[f.key] {
			if o.label.ID == id {
				text = o.label.Name
				break
			}
		}
	}
	if focused {
		return styleValue.Render("‹ " + text + " ›")
	}
	return styleValue.Render(text)
}

func (m *Model) renderOrganization(focused bool) string {
	indent := styleLabel.Render("")
	var lines []string

	if org := m.ctrl.Store().Organization(); org != nil {
		lines = append(lines, indent+styleSuccess.Render(fmt.Sprintf("✓ %s (%s, %s)", org.Name, org.Address.City, org.Address.State)))
	} else {
		lines = append(lines, indent+styleMuted.Render("no organization selected"))
	}
	if m.searchErr != "" {
		lines = append(lines, indent+styleError.Render("search failed: "+m.searchErr))
	}
	if focused {
		for i, org := range m.orgResults {
			if i == 6 {
				lines = append(lines, indent+styleMuted.Render(fmt.Sprintf("… %d more", len(m.orgResults)-6)))
				break
			}
			line := fmt.Sprintf("%s (%s, %s)", org.Name, org.Address.City, org.Address.State)
			if i == m.orgCursor {
				line = styleSelected.Render("› " + line)
			} else {
				line = styleValue.Render("  " + line)
			}
			lines = append(lines, indent+line)
		}
	}
	return strings.Join(lines, "\n")
}

// summarizeText shows the first line of a multi-line value.
func summarizeText(v string, width int) string {
	if strings.TrimSpace(v) == "" {
		return styleMuted.Render("empty")
	}
	first, _, more := strings.Cut(v, "\n")
	if width > 1 && len([]rune(first)) > width {
		first = string([]rune(first)[:width-1]) + "…"
		more = true
	}
	if more {
		return styleValue.Render(first) + styleMuted.Render(" (more)")
	}
	return styleValue.Render(first)
}
