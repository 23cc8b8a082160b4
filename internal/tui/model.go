package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"policyrag/internal/domain"
)

// Pipeline is the TUI-facing subset of the orchestrator.
type Pipeline interface {
	Process(user, question string, policies domain.UserPolicies) domain.PipelineResponse
}

// UserDirectory is the TUI-facing subset of the user directory.
type UserDirectory interface {
	Users() []string
	Policies(user string) (domain.UserPolicies, bool)
}

type responseMsg struct {
	response domain.PipelineResponse
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	pipeline  Pipeline
	directory UserDirectory
	users     []string
	userIdx   int
	input     textinput.Model
	viewport  viewport.Model
	response  *domain.PipelineResponse
	status    string
	busy      bool
	showTrace bool
	ready     bool
}

// New creates a new TUI model instance.
func New(pipeline Pipeline, directory UserDirectory) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a coverage question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline:  pipeline,
		directory: directory,
		users:     directory.Users(),
		input:     ti,
		viewport:  vp,
		status:    "Ready. Tab switches user, Ctrl+T toggles the trace.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + user line, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResponse())
		return m, nil
	case responseMsg:
		m.busy = false
		resp := msg.response
		m.response = &resp
		if resp.NeedsClarification {
			m.status = "Clarification needed"
		} else {
			m.status = fmt.Sprintf("Verdict: %s", resp.CoverageResult)
		}
		m.viewport.SetContent(m.renderResponse())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy && len(m.users) > 0 {
				m.busy = true
				m.status = "Analyzing coverage..."
				user := m.users[m.userIdx]
				pipeline := m.pipeline
				directory := m.directory
				return m, func() tea.Msg {
					policies, _ := directory.Policies(user)
					return responseMsg{response: pipeline.Process(user, q, policies)}
				}
			}
		case "tab":
			if len(m.users) > 0 && !m.busy {
				m.userIdx = (m.userIdx + 1) % len(m.users)
				m.response = nil
				m.status = "Switched to " + m.users[m.userIdx]
				m.viewport.SetContent(m.renderResponse())
				return m, nil
			}
		case "ctrl+t":
			m.showTrace = !m.showTrace
			m.viewport.SetContent(m.renderResponse())
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current response.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Policy Coverage Assistant")
	userLine := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.userLine())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + userLine + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) userLine() string {
	if len(m.users) == 0 {
		return "No users configured."
	}
	user := m.users[m.userIdx]
	policies, _ := m.directory.Policies(user)
	labels := make([]string, 0, len(policies))
	for _, t := range policies.Types() {
		labels = append(labels, t.Label())
	}
	if len(labels) == 0 {
		return fmt.Sprintf("User: %s (no policies on file)", user)
	}
	return fmt.Sprintf("User: %s (%s)", user, strings.Join(labels, " & "))
}

func (m Model) renderResponse() string {
	if m.response == nil {
		return "Ask a question about your coverage, for example:\n" +
			"  Am I covered if my car is stolen?\n" +
			"  What if my house catches fire?\n" +
			"  Is flood damage covered?"
	}
	r := m.response
	var b strings.Builder

	if r.NeedsClarification {
		b.WriteString(clarifyStyle.Render("Clarification needed: "+r.ClarificationQuestion) + "\n\n")
	}
	b.WriteString("Policy applied: " + r.PolicyApplied + "\n")
	b.WriteString("Coverage: " + verdictBadge(r.CoverageResult) + "\n\n")
	b.WriteString(r.Explanation + "\n")
	if len(r.PolicyReferences) > 0 {
		b.WriteString("\nReferences:\n")
		for _, ref := range r.PolicyReferences {
			b.WriteString("  - " + ref + "\n")
		}
	}
	s := r.ScenarioDetails
	b.WriteString(fmt.Sprintf("\nScenario: asset=%s event=%s location=%s\n", s.Asset, s.Event, s.Location))
	if m.showTrace && len(r.Trace) > 0 {
		b.WriteString("\nTrace:\n")
		for _, line := range r.Trace {
			b.WriteString("  " + line + "\n")
		}
		for i, chunk := range r.RetrievedChunks {
			if i == 3 {
				break
			}
			b.WriteString(fmt.Sprintf("\n  [%d] %s (%.0f%%)\n", i+1, chunk.Chunk.SectionName, chunk.Similarity*100))
		}
	}
	b.WriteString("\n" + disclaimerStyle.Render(r.Disclaimer))
	return b.String()
}

func verdictBadge(v domain.CoverageResult) string {
	switch v {
	case domain.CoverageYes:
		return coveredStyle.Render("COVERED")
	case domain.CoverageNo:
		return notCoveredStyle.Render("NOT COVERED")
	default:
		return dependsStyle.Render("IT DEPENDS")
	}
}

var (
	resultBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	coveredStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	notCoveredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dependsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	clarifyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	disclaimerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
