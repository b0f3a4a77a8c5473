package tui

import (
	"fmt"
	"time"

	"tripletuploader/internal/csv"
	"tripletuploader/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

type Screen int

const (
	MenuScreen Screen = iota
	ImportScreen
	ReviewScreen
	SubmitScreen
)

// Config carries the submission settings into the interactive flow.
type Config struct {
	Endpoint string
	Output   string
	NestKeys bool
	Timeout  time.Duration
}

type Model struct {
	cfg           Config
	currentScreen Screen
	menuModel     *MenuModel
	importModel   *ImportModel
	reviewModel   *ReviewModel
	submitModel   *SubmitModel
	dataset       *models.Dataset
	exported      bool
	exportPath    string
	confirmQuit   bool
	err           error
	quitting      bool
	width         int
	height        int
}

func NewModel(cfg Config) Model {
	if cfg.Output == "" {
		cfg.Output = csv.DefaultExportName
	}
	return Model{
		cfg:           cfg,
		currentScreen: MenuScreen,
		menuModel:     NewMenuModel(),
		importModel:   NewImportModel(cfg),
		reviewModel:   NewReviewModel(),
		submitModel:   NewSubmitModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menuModel.SetSize(msg.Width, msg.Height)
		m.importModel.SetSize(msg.Width, msg.Height)
		m.reviewModel.SetSize(msg.Width, msg.Height)
		m.submitModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			// Leaving with an unexported dataset loses it, so ask once.
			if m.unsavedWork() && !m.confirmQuit {
				m.confirmQuit = true
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.confirmQuit = false
			if m.currentScreen == ReviewScreen && m.reviewModel.Editing() {
				break // let the review model cancel the cell edit
			}
			if m.currentScreen == ImportScreen && m.importModel.Browsing() {
				break // let the import model close the file selector
			}
			if m.currentScreen == SubmitScreen && m.submitModel.Running() {
				return m, nil
			}
			if m.currentScreen != MenuScreen {
				m.currentScreen = MenuScreen
				m.err = nil
				return m, nil
			}
		default:
			m.confirmQuit = false
		}

	case ScreenChangeMsg:
		if (msg.Screen == ReviewScreen || msg.Screen == SubmitScreen) && m.dataset.Empty() {
			m.err = fmt.Errorf("no dataset imported yet")
			return m, nil
		}
		m.err = nil
		m.currentScreen = msg.Screen
		if msg.Screen == SubmitScreen {
			return m, m.submitModel.Start(m.dataset, m.cfg)
		}
		return m, nil

	case DatasetLoadedMsg:
		m.dataset = msg.Dataset
		m.exported = false
		m.err = nil
		if msg.Endpoint != "" {
			m.cfg.Endpoint = msg.Endpoint
		}
		if msg.Output != "" {
			m.cfg.Output = msg.Output
		}
		m.reviewModel.SetDataset(m.dataset)
		m.currentScreen = ReviewScreen
		return m, nil

	case ExportRequestMsg:
		if m.dataset.Empty() {
			m.err = fmt.Errorf("no dataset to export")
			return m, nil
		}
		if err := csv.ExportFile(m.cfg.Output, m.dataset); err != nil {
			m.err = err
			return m, nil
		}
		m.exported = true
		m.exportPath = m.cfg.Output
		m.err = nil
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	switch m.currentScreen {
	case MenuScreen:
		newMenuModel, cmd := m.menuModel.Update(msg)
		m.menuModel = newMenuModel.(*MenuModel)
		return m, cmd
	case ImportScreen:
		newImportModel, cmd := m.importModel.Update(msg)
		m.importModel = newImportModel.(*ImportModel)
		return m, cmd
	case ReviewScreen:
		newReviewModel, cmd := m.reviewModel.Update(msg)
		m.reviewModel = newReviewModel.(*ReviewModel)
		return m, cmd
	case SubmitScreen:
		newSubmitModel, cmd := m.submitModel.Update(msg)
		m.submitModel = newSubmitModel.(*SubmitModel)
		return m, cmd
	}

	return m, cmd
}

func (m Model) unsavedWork() bool {
	return !m.dataset.Empty() && !m.exported
}

func (m Model) View() string {
	if m.quitting {
		return "Bye! 👋\n"
	}

	var content string
	switch m.currentScreen {
	case MenuScreen:
		content = m.menuModel.View()
	case ImportScreen:
		content = m.importModel.View()
	case ReviewScreen:
		content = m.reviewModel.View()
	case SubmitScreen:
		content = m.submitModel.View()
	}

	if m.exported && m.exportPath != "" {
		content += "\n" + successStyle.Render(fmt.Sprintf("Result written to %s", m.exportPath))
	}
	if m.confirmQuit {
		content += "\n" + warningStyle.Render("Dataset not exported yet. Press Ctrl+C again to quit anyway.")
	}
	if m.err != nil {
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return content
}

type ScreenChangeMsg struct {
	Screen Screen
}

type DatasetLoadedMsg struct {
	Dataset  *models.Dataset
	Endpoint string
	Output   string
}

type ExportRequestMsg struct{}

type ErrorMsg struct {
	Err error
}

func ChangeScreen(screen Screen) tea.Cmd {
	return func() tea.Msg {
		return ScreenChangeMsg{Screen: screen}
	}
}

func RequestExport() tea.Cmd {
	return func() tea.Msg {
		return ExportRequestMsg{}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
