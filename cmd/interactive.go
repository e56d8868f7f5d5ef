package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/sskr"
	"github.com/spf13/cobra"
)

// Styles
var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	cursorStyle  = focusedStyle.Copy()
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
)

type fileItem struct {
	path     string
	name     string
	isDir    bool
	selected bool
}

type model struct {
	path       string
	files      []fileItem
	cursor     int
	status     string
	textInput  textinput.Model
	quitting   bool
	processing bool
}

func initialModel() model {
	cwd, _ := os.Getwd()
	m := model{
		path:   cwd,
		status: "Navigate: ↑/↓ | Enter: Open Dir | Space: Select | 'c': Combine Selected",
	}
	m.loadFiles()
	return m
}

func (m *model) loadFiles() {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		m.status = "Error reading directory"
		return
	}

	m.files = []fileItem{}
	m.files = append(m.files, fileItem{name: "..", isDir: true, path: filepath.Dir(m.path)})

	for _, e := range entries {
		name := e.Name()
		isRel := e.IsDir() || strings.HasSuffix(name, ".share") || strings.HasSuffix(name, ".png")
		if isRel {
			m.files = append(m.files, fileItem{
				name:  name,
				isDir: e.IsDir(),
				path:  filepath.Join(m.path, name),
			})
		}
	}
	m.cursor = 0
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.files)-1 {
				m.cursor++
			}

		case "enter":
			selected := m.files[m.cursor]
			if selected.isDir {
				m.path = selected.path
				m.loadFiles()
			}

		case " ":
			if !m.files[m.cursor].isDir {
				m.files[m.cursor].selected = !m.files[m.cursor].selected
			}

		case "c":
			return m, m.combineSelected()
		}

	case statusMsg:
		m.status = string(msg)
		if strings.HasPrefix(m.status, "Success") {
			for i := range m.files {
				m.files[i].selected = false
			}
		}
	}

	return m, nil
}

type statusMsg string

func (m model) combineSelected() tea.Cmd {
	return func() tea.Msg {
		var selectedPaths []string
		for _, f := range m.files {
			if f.selected {
				selectedPaths = append(selectedPaths, f.path)
			}
		}

		if len(selectedPaths) == 0 {
			return statusMsg("No files selected!")
		}

		secret, err := runInteractiveCombine(selectedPaths)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", err))
		}

		return statusMsg(fmt.Sprintf("Success! Recovered %d-byte secret: %x", len(secret), secret))
	}
}

func (m model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	s := fmt.Sprintf("Directory: %s\n\n", m.path)

	for i, file := range m.files {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
			s += cursorStyle.Render(cursor)
		} else {
			s += cursor
		}

		checked := " "
		if file.selected {
			checked = "x"
		}

		line := ""
		if file.isDir {
			line = fmt.Sprintf("[DIR] %s", file.name)
		} else {
			line = fmt.Sprintf("[%s] %s", checked, file.name)
		}

		if file.selected {
			line = checkedStyle.Render(line)
		}

		s += " " + line + "\n"
	}

	s += fmt.Sprintf("\n%s\n", m.status)
	return docStyle.Render(s)
}

// runInteractiveCombine loads every selected file as a share (via the
// same .share/image loaders the non-interactive combine command uses)
// and attempts recovery against a single envelope.
func runInteractiveCombine(paths []string) ([]byte, error) {
	var shares []sskr.Share
	var envelopeID string

	for _, path := range paths {
		var (
			share sskr.Share
			id    string
			err   error
		)
		if strings.HasSuffix(strings.ToLower(path), ".png") {
			share, id, err = loadStegoShare(path)
		} else {
			share, id, err = loadFormattedShare(path)
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}

		if envelopeID == "" {
			envelopeID = id
		} else if id != envelopeID {
			return nil, fmt.Errorf("selection mixes shares from different envelopes: %s vs %s", envelopeID, id)
		}
		shares = append(shares, share)
	}

	buf, err := sskr.SerializeAll(shares)
	if err != nil {
		return nil, fmt.Errorf("serializing selected shares: %w", err)
	}

	acc := sskr.NewAccumulator(mac.HMACSHA256{})
	secret, ok, err := acc.CombineShares(len(shares), buf)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("not enough shares selected to recover this secret")
	}
	return secret, nil
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Interactive terminal UI for combining shares",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(initialModel())
		if _, err := p.Run(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
