// Package reportui provides the Bubble Tea report viewer.
package reportui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/stats"
)

const (
	tabOverview = iota
	tabContent
	tabVisits
	tabDevices
	tabTimeframes
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	sectionTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tableMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea report viewer.
type Model struct {
	report model.Report

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	contentTable table.Model
	tableLayout  tableLayout

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
	filter      string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a viewer for a built report.
func NewModel(report model.Report) *Model {
	m := &Model{
		report: report,
		tabs:   []string{"Overview", "Content", "Visits", "Devices", "Timeframes"},
	}
	m.filterInput = newFilterInput("Filter: ")
	m.contentTable = buildContentTable(nil, 0, 1)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			if m.activeTab != tabContent {
				return m, nil
			}
			m.filterMode = true
			m.filterInput.SetValue(m.filter)
			return m, m.filterInput.Focus()
		case "g", "home":
			if m.activeTab == tabContent {
				m.contentTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabContent {
				m.contentTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabContent {
				var cmd tea.Cmd
				m.contentTable, cmd = m.contentTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Placeholder = "content or type"
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setTableSize(m.width, vpHeight)
	promptWidth := lipgloss.Width(m.filterInput.Prompt)
	m.filterInput.Width = max(10, m.width-promptWidth-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabContent {
		m.contentTable.Focus()
	} else {
		m.contentTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	source := fmt.Sprintf("Input: %s  files=%d", m.report.InputDir, len(m.report.Files))
	if m.report.LatestFile != "" {
		source += "  latest=" + m.report.LatestFile
	}
	if m.filter != "" {
		source += fmt.Sprintf("  filter=%q", m.filter)
	}
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(source, m.width)), m.width)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	if m.activeTab == tabContent {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabContent {
		switch {
		case len(m.report.Content.Records) == 0:
			return fitLines("No content rows found.", m.width, height)
		case m.tableLayout.rowCount == 0:
			return fitLines(fmt.Sprintf("No content matches %q.", m.filter), m.width, height)
		default:
			return fitLines(tableMutedStyle.Render(m.contentTable.View()), m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabVisits].SetContent(renderSections(
		stats.VisitsSection(m.report),
		stats.PivotSection("Visits by Weekday", m.report.TotalPivot),
	))
	devices := stats.DeviceSections(m.report)
	if len(devices) == 0 {
		m.viewports[tabDevices].SetContent("No device usage found.")
	} else {
		m.viewports[tabDevices].SetContent(renderSections(devices...))
	}
	m.viewports[tabTimeframes].SetContent(renderSections(stats.TimeframeSection(m.report, width)))
}

func renderOverview(report model.Report, width int) string {
	cards := []string{
		metricCard("Files", fmt.Sprintf("%d", len(report.Files))),
		metricCard("Content", fmt.Sprintf("%d", len(report.Content.Records))),
		metricCard("Viewers", fmt.Sprintf("%d", lo.SumBy(report.Content.Records, func(r model.ContentRecord) int64 { return r.Viewers }))),
		metricCard("Usage Days", fmt.Sprintf("%d", len(report.Usage))),
	}
	var row string
	if width < 80 {
		row = strings.Join(cards, "\n")
	} else {
		row = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	return strings.TrimRight(row+"\n\n"+renderSections(stats.TypesSection(report, width)), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderSections(sections ...stats.Section) string {
	parts := make([]string, 0, len(sections))
	for _, sec := range sections {
		parts = append(parts, sectionTitleStyle.Render(sec.Title)+"\n"+strings.Join(sec.Lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.filter = strings.TrimSpace(m.filterInput.Value())
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) applyFilter() {
	records := filterRecords(m.report.Content.Records, m.filter)
	rows := lo.Map(stats.ContentRows(records), func(cells []string, _ int) table.Row {
		return table.Row(cells)
	})
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.contentTable.SetColumns(contentColumns(width))
	m.contentTable.SetRows(rows)
	m.contentTable.GotoTop()
	m.tableLayout.rowCount = len(rows)
	m.tableLayout.width = 0
	m.setTableSize(width, bodyHeight)
}

// filterRecords keeps records whose content or type contains query,
// ignoring case.
func filterRecords(records []model.ContentRecord, query string) []model.ContentRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}
	return lo.Filter(records, func(rec model.ContentRecord, _ int) bool {
		return strings.Contains(strings.ToLower(rec.Key.Content), query) ||
			strings.Contains(strings.ToLower(rec.Key.Type), query)
	})
}

func contentColumns(width int) []table.Column {
	const typeW, numW = 14, 14
	contentW := max(16, width-typeW-2*numW-4)
	titles := stats.ContentHeaders
	return []table.Column{
		{Title: titles[0], Width: contentW},
		{Title: titles[1], Width: typeW},
		{Title: titles[2], Width: numW},
		{Title: titles[3], Width: numW},
	}
}

func buildContentTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(contentColumns(width)),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(contentTableStyles())
	return t
}

func (m *Model) setTableSize(width, height int) {
	viewportHeight := max(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.contentTable.SetColumns(contentColumns(width))
	m.contentTable.SetWidth(width)
	m.contentTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustTableHeight(height)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.contentTable.SetHeight(viewportHeight)
	}
}

func contentTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// adjustTableHeight corrects for header borders so the rendered table fills
// the body exactly.
func (m *Model) adjustTableHeight(bodyHeight int) int {
	target := max(1, bodyHeight)
	height := m.contentTable.Height()
	viewHeight := lipgloss.Height(m.contentTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.contentTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.contentTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
