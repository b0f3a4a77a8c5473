package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tripletuploader/internal/models"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxCellWidth = 24

// ReviewModel renders the dataset as an editable grid. Any cell can be
// overwritten in place before submission; the status column is read-only.
type ReviewModel struct {
	dataset   *models.Dataset
	cursorRow int
	cursorCol int
	offset    int
	editing   bool
	editInput textinput.Model
	width     int
	height    int
}

func NewReviewModel() *ReviewModel {
	input := textinput.New()
	input.CharLimit = 256
	return &ReviewModel{editInput: input}
}

func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

func (m *ReviewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetDataset swaps in a freshly imported dataset and resets the cursor.
func (m *ReviewModel) SetDataset(ds *models.Dataset) {
	m.dataset = ds
	m.cursorRow = 0
	m.cursorCol = 0
	m.offset = 0
	m.editing = false
}

// Editing reports whether a cell edit is in flight, so the root model
// routes Esc here instead of jumping back to the menu.
func (m *ReviewModel) Editing() bool {
	return m.editing
}

func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dataset.Empty() {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNavigation(msg)
	}

	return m, nil
}

func (m *ReviewModel) updateNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "down", "j":
		if m.cursorRow < len(m.dataset.Records)-1 {
			m.cursorRow++
		}
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "right", "l":
		if m.cursorCol < len(m.dataset.Headers)-1 {
			m.cursorCol++
		}
	case "home", "g":
		m.cursorRow = 0
	case "end", "G":
		m.cursorRow = len(m.dataset.Records) - 1
	case "enter":
		column := m.dataset.Headers[m.cursorCol]
		m.editInput.SetValue(m.dataset.Records[m.cursorRow].Get(column))
		m.editInput.CursorEnd()
		m.editInput.Focus()
		m.editing = true
		return m, textinput.Blink
	case "s":
		return m, ChangeScreen(SubmitScreen)
	case "e":
		return m, RequestExport()
	}

	m.scrollIntoView()
	return m, nil
}

func (m *ReviewModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		column := m.dataset.Headers[m.cursorCol]
		if err := m.dataset.SetCell(m.cursorRow, column, m.editInput.Value()); err != nil {
			m.editing = false
			return m, ShowError(err)
		}
		m.editing = false
		return m, nil
	case "esc":
		m.editing = false
		return m, nil
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m *ReviewModel) visibleRows() int {
	// Title, header row, edit line, help and margins eat some lines.
	rows := m.height - 10
	if rows < 5 {
		rows = 5
	}
	return rows
}

func (m *ReviewModel) scrollIntoView() {
	visible := m.visibleRows()
	if m.cursorRow < m.offset {
		m.offset = m.cursorRow
	}
	if m.cursorRow >= m.offset+visible {
		m.offset = m.cursorRow - visible + 1
	}
}

func (m *ReviewModel) columnWidths() []int {
	widths := make([]int, len(m.dataset.Headers))
	for i, h := range m.dataset.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, rec := range m.dataset.Records {
		for i, h := range m.dataset.Headers {
			if l := utf8.RuneCountInString(rec.Fields[h]); l > widths[i] {
				widths[i] = l
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}
	return widths
}

// pad counts runes rather than bytes so multi-byte cell values keep the
// grid columns aligned instead of truncating mid-rune.
func pad(value string, width int) string {
	runes := []rune(value)
	if len(runes) > width {
		if width > 1 {
			return string(runes[:width-1]) + "…"
		}
		return string(runes[:width])
	}
	return value + strings.Repeat(" ", width-len(runes))
}

func (m *ReviewModel) View() string {
	if m.dataset.Empty() {
		return warningStyle.Render("No dataset imported") + "\n" +
			helpStyle.Render("Esc: Back to menu")
	}

	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)
	title := adaptiveTitleStyle.Render(fmt.Sprintf("📝 Review Rows (%d)", len(m.dataset.Records)))

	widths := m.columnWidths()

	var b strings.Builder
	b.WriteString("    ")
	for i, h := range m.dataset.Headers {
		b.WriteString(headerCellStyle.Render(pad(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString(headerCellStyle.Render("Status"))
	b.WriteString("\n")

	visible := m.visibleRows()
	end := m.offset + visible
	if end > len(m.dataset.Records) {
		end = len(m.dataset.Records)
	}

	for row := m.offset; row < end; row++ {
		rec := m.dataset.Records[row]
		b.WriteString(fmt.Sprintf("%3d ", row+1))
		for col, h := range m.dataset.Headers {
			cell := pad(rec.Fields[h], widths[col])
			if row == m.cursorRow && col == m.cursorCol {
				cell = selectedCellStyle.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString("  ")
		}
		b.WriteString(StatusView(rec.Status))
		b.WriteString("\n")
	}

	if end < len(m.dataset.Records) {
		b.WriteString(helpStyle.Render(fmt.Sprintf("… %d more rows", len(m.dataset.Records)-end)))
		b.WriteString("\n")
	}

	var editLine string
	if m.editing {
		column := m.dataset.Headers[m.cursorCol]
		editLine = labelStyle.Render(fmt.Sprintf("Edit %s (row %d):", column, m.cursorRow+1)) + " " + m.editInput.View()
	}

	help := adaptiveHelpStyle.Render("↑/↓/←/→: Move • Enter: Edit cell • s: Submit • e: Export • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, b.String(), editLine, help)
}
