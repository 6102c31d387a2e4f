package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			PaddingLeft(1)

	matchGutter        = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Render("▌") // yellow
	currentMatchGutter = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("▌") // red
	emptyGutter        = " "

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(1)
)

type searchState struct {
	active  bool
	input   textinput.Model
	query   string
	matches []int // line numbers
	current int
}

// pagerModel shows rendered table output with line search.
type pagerModel struct {
	viewport viewport.Model
	title    string
	lines    []string
	plain    []string // lines without ANSI sequences, used for matching
	ready    bool
	search   searchState
}

// NewPager creates a new pager model with the given content
func NewPager(title, content string) *pagerModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	plain := make([]string, len(lines))
	for i, l := range lines {
		plain[i] = ansi.Strip(l)
	}
	return &pagerModel{
		title:  title,
		lines:  lines,
		plain:  plain,
		search: searchState{input: ti},
	}
}

// Init initializes the pager model
func (m *pagerModel) Init() tea.Cmd {
	return nil
}

// Update handles user input and updates the model state
func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.search.active {
			switch msg.Type {
			case tea.KeyEscape:
				m.search.active = false
				m.search.input.Reset()
			case tea.KeyEnter:
				m.search.active = false
				m.performSearch(m.search.input.Value())
				m.search.input.Reset()
			default:
				var cmd tea.Cmd
				m.search.input, cmd = m.search.input.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.clearSearch()
			return m, nil
		case "/":
			m.search.active = true
			m.search.input.Focus()
			return m, textinput.Blink
		case "n":
			m.jump(1)
			return m, nil
		case "N":
			m.jump(-1)
			return m, nil
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		// title line and help line
		height := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.render()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the current state of the model
func (m *pagerModel) View() string {
	if !m.ready {
		return "\nInitializing..."
	}

	var help string
	switch {
	case m.search.active:
		help = m.search.input.View()
	case m.search.query != "" && len(m.search.matches) == 0:
		help = helpStyle.Render(fmt.Sprintf("no match for %q • esc clear • q quit", m.search.query))
	case len(m.search.matches) > 0:
		help = helpStyle.Render(fmt.Sprintf("%q %d/%d • n next • N previous • esc clear • q quit",
			m.search.query, m.search.current+1, len(m.search.matches)))
	default:
		help = helpStyle.Render("↑/k ↓/j scroll • g/G top/bottom • / search • q quit")
	}
	return titleStyle.Render(m.title) + "\n" + m.viewport.View() + "\n" + help
}

// performSearch finds lines containing query. Matching is case-insensitive
// unless the query has an upper-case letter.
func (m *pagerModel) performSearch(query string) {
	m.search.query = query
	m.search.matches = nil
	m.search.current = 0
	if query == "" {
		m.render()
		return
	}

	caseSensitive := strings.ToLower(query) != query
	if !caseSensitive {
		query = strings.ToLower(query)
	}
	for i, l := range m.plain {
		if !caseSensitive {
			l = strings.ToLower(l)
		}
		if strings.Contains(l, query) {
			m.search.matches = append(m.search.matches, i)
		}
	}

	// start from the first match at or below the top of the screen
	for i, line := range m.search.matches {
		if line >= m.viewport.YOffset {
			m.search.current = i
			break
		}
	}
	m.render()
	m.scrollToCurrent()
}

// jump moves to the next (dir=1) or previous (dir=-1) match, wrapping around.
func (m *pagerModel) jump(dir int) {
	n := len(m.search.matches)
	if n == 0 {
		return
	}
	m.search.current = (m.search.current + dir + n) % n
	m.render()
	m.scrollToCurrent()
}

func (m *pagerModel) scrollToCurrent() {
	if len(m.search.matches) == 0 || !m.ready {
		return
	}
	line := m.search.matches[m.search.current]
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(max(line-m.viewport.Height/3, 0))
	}
}

func (m *pagerModel) clearSearch() {
	m.search.query = ""
	m.search.matches = nil
	m.search.current = 0
	m.render()
}

// render rebuilds the viewport content with a gutter marking matched lines.
func (m *pagerModel) render() {
	if !m.ready {
		return
	}
	marks := make(map[int]string, len(m.search.matches))
	for i, line := range m.search.matches {
		if i == m.search.current {
			marks[line] = currentMatchGutter
		} else {
			marks[line] = matchGutter
		}
	}

	var b strings.Builder
	for i, l := range m.lines {
		if g, ok := marks[i]; ok {
			b.WriteString(g)
		} else {
			b.WriteString(emptyGutter)
		}
		b.WriteString(l)
		if i < len(m.lines)-1 {
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
}

// RunPager starts the pager program with the given content
func RunPager(title, content string) error {
	p := tea.NewProgram(
		NewPager(title, content),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
