package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tripletuploader/internal/csv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ImportModel struct {
	state         ImportState
	csvFileInput  textinput.Model
	endpointInput textinput.Model
	outputInput   textinput.Model
	focusedInput  int
	files         []string
	selectedFile  int
	width         int
	height        int
}

type ImportState int

const (
	ImportInputState ImportState = iota
	ImportFileSelectState
)

func NewImportModel(cfg Config) *ImportModel {
	csvInput := textinput.New()
	csvInput.Placeholder = "path/to/file.csv"
	csvInput.Focus()

	endpointInput := textinput.New()
	endpointInput.Placeholder = cfg.Endpoint
	endpointInput.SetValue(cfg.Endpoint)

	outputInput := textinput.New()
	outputInput.Placeholder = csv.DefaultExportName
	outputInput.SetValue(cfg.Output)

	return &ImportModel{
		state:         ImportInputState,
		csvFileInput:  csvInput,
		endpointInput: endpointInput,
		outputInput:   outputInput,
		focusedInput:  0,
	}
}

// Browsing reports whether the file selector is open, so the root model
// routes Esc here instead of jumping back to the menu.
func (m *ImportModel) Browsing() bool {
	return m.state == ImportFileSelectState
}

func (m *ImportModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ImportModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case ImportInputState:
			return m.updateInputState(msg)
		case ImportFileSelectState:
			return m.updateFileSelectState(msg)
		}
	}
	return m, nil
}

func (m *ImportModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "tab", "down":
		m.focusedInput = (m.focusedInput + 1) % 3
		m.updateInputFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusedInput = (m.focusedInput - 1 + 3) % 3
		m.updateInputFocus()
		return m, nil
	case "ctrl+f":
		return m.browseFiles()
	case "enter":
		if strings.TrimSpace(m.csvFileInput.Value()) != "" {
			return m, m.performImport()
		}
		return m, nil
	}

	switch m.focusedInput {
	case 0:
		m.csvFileInput, cmd = m.csvFileInput.Update(msg)
	case 1:
		m.endpointInput, cmd = m.endpointInput.Update(msg)
	case 2:
		m.outputInput, cmd = m.outputInput.Update(msg)
	}

	return m, cmd
}

func (m *ImportModel) updateFileSelectState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedFile > 0 {
			m.selectedFile--
		}
	case "down", "j":
		if m.selectedFile < len(m.files)-1 {
			m.selectedFile++
		}
	case "enter":
		if len(m.files) > 0 {
			m.csvFileInput.SetValue(m.files[m.selectedFile])
			m.state = ImportInputState
		}
	case "esc":
		m.state = ImportInputState
	}
	return m, nil
}

func (m *ImportModel) browseFiles() (tea.Model, tea.Cmd) {
	cwd, _ := os.Getwd()
	files, err := filepath.Glob(filepath.Join(cwd, "*.csv"))
	if err != nil {
		return m, ShowError(err)
	}

	for i, file := range files {
		rel, _ := filepath.Rel(cwd, file)
		files[i] = rel
	}

	m.files = files
	m.selectedFile = 0
	m.state = ImportFileSelectState
	return m, nil
}

func (m *ImportModel) updateInputFocus() {
	inputs := []*textinput.Model{&m.csvFileInput, &m.endpointInput, &m.outputInput}
	for i, input := range inputs {
		if i == m.focusedInput {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (m *ImportModel) performImport() tea.Cmd {
	return func() tea.Msg {
		filename := strings.TrimSpace(m.csvFileInput.Value())

		parser := csv.NewParser(filename)
		ds, err := parser.ParseDataset()
		if err != nil {
			return ErrorMsg{Err: err}
		}

		return DatasetLoadedMsg{
			Dataset:  ds,
			Endpoint: strings.TrimSpace(m.endpointInput.Value()),
			Output:   strings.TrimSpace(m.outputInput.Value()),
		}
	}
}

func (m *ImportModel) View() string {
	switch m.state {
	case ImportFileSelectState:
		return m.renderFileSelector()
	default:
		return m.renderInputForm()
	}
}

func (m *ImportModel) renderInputForm() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("📥 Import CSV")

	form := adaptiveFormStyle.Render(
		labelStyle.Render("CSV File:") + "\n" + m.csvFileInput.View() + "\n\n" +
			labelStyle.Render("Endpoint URL:") + "\n" + m.endpointInput.View() + "\n\n" +
			labelStyle.Render("Result File:") + "\n" + m.outputInput.View(),
	)

	help := adaptiveHelpStyle.Render("Tab/Shift+Tab: Navigate • Ctrl+F: Browse files • Enter: Import • Esc: Back to menu")

	content := lipgloss.JoinVertical(lipgloss.Left, title, form, help)

	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Top,
			content,
		)
	}

	return content
}

func (m *ImportModel) renderFileSelector() string {
	title := titleStyle.Render("📁 Select CSV File")

	if len(m.files) == 0 {
		content := warningStyle.Render("No CSV files found in current directory")
		help := helpStyle.Render("Esc: Back to form")
		return lipgloss.JoinVertical(lipgloss.Left, title, content, help)
	}

	var fileList string
	for i, file := range m.files {
		cursor := " "
		style := menuItemStyle
		if i == m.selectedFile {
			cursor = ">"
			style = selectedMenuItemStyle
		}
		fileList += fmt.Sprintf("%s %s\n", cursor, style.Render(file))
	}

	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • Esc: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, fileList, help)
}
