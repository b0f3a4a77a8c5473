package tui

import (
	"context"
	"fmt"

	"tripletuploader/internal/models"
	"tripletuploader/internal/uploader"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SubmitModel runs the sequential submission and renders a progress bar
// followed by the per-status tally.
type SubmitModel struct {
	dataset     *models.Dataset
	progress    progress.Model
	progressVal float64
	current     int
	settled     int
	total       int
	running     bool
	completed   bool
	result      uploader.SubmitResult
	width       int
	height      int
}

type submitEvent struct {
	progress *uploader.Progress
	result   *uploader.SubmitResult
}

type SubmitProgressMsg struct {
	Progress uploader.Progress
}

type SubmitCompleteMsg struct {
	Result uploader.SubmitResult
}

func NewSubmitModel() *SubmitModel {
	progressBar := progress.New(
		progress.WithSolidFill("#00aadd"),
		progress.WithoutPercentage(),
	)
	return &SubmitModel{progress: progressBar}
}

func (m *SubmitModel) Init() tea.Cmd {
	return nil
}

func (m *SubmitModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Running reports whether a submission pass is still in flight.
func (m *SubmitModel) Running() bool {
	return m.running
}

// Start kicks off one sequential pass over the dataset. Status transitions
// stream back into the update loop through a channel so the table and the
// progress bar stay live.
func (m *SubmitModel) Start(ds *models.Dataset, cfg Config) tea.Cmd {
	m.dataset = ds
	m.progressVal = 0
	m.current = 0
	m.settled = 0
	m.total = len(ds.Records)
	m.running = true
	m.completed = false
	m.result = uploader.SubmitResult{}

	client := uploader.NewClient(cfg.Endpoint, cfg.Timeout, cfg.NestKeys)
	submitter := uploader.NewSubmitter(client)

	events := make(chan submitEvent)
	go func() {
		result := submitter.SubmitDataset(context.Background(), ds, func(p uploader.Progress) {
			events <- submitEvent{progress: &p}
		})
		events <- submitEvent{result: &result}
		close(events)
	}()

	return waitForSubmitEvent(events)
}

func waitForSubmitEvent(events chan submitEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		if ev.result != nil {
			return SubmitCompleteMsg{Result: *ev.result}
		}
		return submitProgressMsgWithChannel{msg: SubmitProgressMsg{Progress: *ev.progress}, events: events}
	}
}

// submitProgressMsgWithChannel carries the channel along so Update can keep
// listening without storing it on the model.
type submitProgressMsgWithChannel struct {
	msg    SubmitProgressMsg
	events chan submitEvent
}

func (m *SubmitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitProgressMsgWithChannel:
		// The submit goroutine owns the dataset until completion; progress
		// messages carry everything the view needs.
		p := msg.msg.Progress
		m.current = p.Index + 1
		if p.Status.Terminal() && p.Total > 0 {
			m.settled++
			m.progressVal = float64(m.settled) / float64(p.Total)
		}
		return m, waitForSubmitEvent(msg.events)

	case SubmitCompleteMsg:
		m.result = msg.Result
		m.running = false
		m.completed = true
		m.progressVal = 1
		return m, nil

	case tea.KeyMsg:
		if m.completed {
			switch msg.String() {
			case "e":
				return m, RequestExport()
			case "r":
				return m, ChangeScreen(ReviewScreen)
			}
		}
	}

	return m, nil
}

func (m *SubmitModel) View() string {
	if m.completed {
		return m.renderResult()
	}
	return m.renderProgress()
}

func (m *SubmitModel) renderProgress() string {
	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("🚀 Submitting Rows...")

	progressWidth := m.width - 10
	if progressWidth < 20 {
		progressWidth = 20
	}
	if progressWidth > 80 {
		progressWidth = 80
	}

	progressBar := lipgloss.NewStyle().Width(progressWidth).Render(m.progress.ViewAs(m.progressVal))
	progressText := fmt.Sprintf("Row %d of %d", m.current, m.total)

	content := progressStyle.Render(progressBar + "\n" + progressText)
	help := adaptiveHelpStyle.Render("Rows are submitted one at a time, in order...")

	result := lipgloss.JoinVertical(lipgloss.Left, title, content, help)

	if m.width > 0 && m.height > 0 {
		result = lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			result,
		)
	}

	return result
}

func (m *SubmitModel) renderResult() string {
	title := titleStyle.Render("🚀 Submission Complete")

	var status string
	if m.result.Failed > 0 || m.result.DataIncorrect > 0 {
		status = warningStyle.Render("⚠ Some rows did not go through")
	} else {
		status = successStyle.Render("✅ All rows submitted successfully!")
	}

	stats := fmt.Sprintf(
		"📊 Results:\n"+
			"   Total rows: %d\n"+
			"   %s: %d\n"+
			"   %s: %d\n"+
			"   %s: %d",
		m.result.TotalRows,
		StatusView(models.StatusSuccess), m.result.Succeeded,
		StatusView(models.StatusFailed), m.result.Failed,
		StatusView(models.StatusDataIncorrect), m.result.DataIncorrect,
	)

	help := helpStyle.Render("e: Export result CSV • r: Back to table • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, stats, help)
}
