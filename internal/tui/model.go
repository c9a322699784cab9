// Package tui provides the Bubble Tea plate mapping interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/verte-zerg/platemap/internal/export"
	"github.com/verte-zerg/platemap/internal/grid"
	"github.com/verte-zerg/platemap/internal/plate"
	"github.com/verte-zerg/platemap/internal/session"
)

type mode int

const (
	modeSelect mode = iota
	modeGrid
	modeEditCell
	modeRename
	modeImport
)

const (
	combinedTab     = "Combined"
	minPreviewWidth = 4
	maxPreviewWidth = 24
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// selectorItems mirrors the plate drop-down: reset first, largest plate next.
var selectorItems = []plate.Type{
	plate.None,
	plate.Wells384,
	plate.Wells96,
	plate.Wells48,
	plate.Wells24,
	plate.Wells12,
	plate.Wells6,
}

type exportDoneMsg struct {
	result export.Result
	err    error
}

// mergedSource hands an already merged table to the publisher so the export
// goroutine never reads live grids.
type mergedSource struct {
	plate plate.Type
	table export.Table
}

func (s mergedSource) Plate() plate.Type            { return s.plate }
func (s mergedSource) Merge() (export.Table, error) { return s.table, nil }

// Model implements the Bubble Tea plate mapping UI.
type Model struct {
	ctx       context.Context
	session   *session.Session
	publisher *export.Publisher
	logger    *zap.Logger

	mode      mode
	selectIdx int
	activeTab int
	cur       cellCursor
	view      gridView
	input     textinput.Model
	preview   table.Model

	previewRows int
	status      string
	errMsg      string
	exporting   bool

	width  int
	height int
}

// NewModel constructs the UI around sess. A session with an active plate
// opens straight into the grid editor.
func NewModel(ctx context.Context, sess *session.Session, pub *export.Publisher, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		ctx:       ctx,
		session:   sess,
		publisher: pub,
		logger:    logger,
	}
	m.input = textinput.New()
	m.input.CharLimit = 0
	m.input.Cursor.SetMode(cursor.CursorBlink)
	m.preview = table.New(table.WithFocused(true), table.WithStyles(previewStyles()))
	m.selectIdx = selectorIndex(sess.Plate())
	if sess.Plate() != plate.None {
		m.mode = modeGrid
		m.refreshPreview()
	}
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
		return m, nil
	case exportDoneMsg:
		m.finishExport(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSelect:
			return m.updateSelect(msg)
		case modeEditCell, modeRename, modeImport:
			return m.updateInput(msg)
		default:
			return m.updateGrid(msg)
		}
	}
	if m.inputActive() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.mode == modeSelect {
		return fitLines(m.renderSelector(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) inputActive() bool {
	return m.mode == modeEditCell || m.mode == modeRename || m.mode == modeImport
}

func (m *Model) onCombinedTab() bool {
	return m.activeTab == len(m.session.Labels())
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 1 + lipgloss.Height(activeTabStyle.Render("X"))
	footerHeight = 2
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
	_, bodyHeight, _ := m.layoutHeights()
	m.preview.SetWidth(m.width)
	m.preview.SetHeight(bodyHeight)
	m.input.Width = clamp(m.width-lipgloss.Width(m.input.Prompt)-2, 10, m.width)
}

func (m *Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.selectIdx = clamp(m.selectIdx-1, 0, len(selectorItems)-1)
	case "down", "j":
		m.selectIdx = clamp(m.selectIdx+1, 0, len(selectorItems)-1)
	case "esc":
		if m.session.Plate() != plate.None {
			m.mode = modeGrid
		}
	case "enter":
		m.selectPlate(selectorItems[m.selectIdx])
	}
	return m, nil
}

func (m *Model) selectPlate(t plate.Type) {
	prev := m.session.Plate()
	if err := m.session.SelectPlate(t); err != nil {
		m.setError(err)
		return
	}
	m.logger.Info("plate selected", zap.Stringer("plate", t), zap.Stringer("previous", prev))
	m.activeTab = 0
	m.cur = cellCursor{}
	m.view = gridView{}
	m.errMsg = ""
	if t == plate.None {
		m.mode = modeSelect
		m.status = "Session reset."
		return
	}
	m.mode = modeGrid
	m.status = fmt.Sprintf("%s ready.", t.Title())
	m.refreshPreview()
}

func (m *Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	geom := m.session.Geometry()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "p", "esc":
		m.selectIdx = selectorIndex(m.session.Plate())
		m.mode = modeSelect
		return m, nil
	case "tab", "]":
		m.moveTab(1)
		return m, nil
	case "shift+tab", "[":
		m.moveTab(-1)
		return m, nil
	case "a":
		m.addLabel()
		return m, nil
	case "D":
		m.removeLabel()
		return m, nil
	case "x":
		return m, m.startExport(export.FormatSpreadsheet)
	case "t":
		return m, m.startExport(export.FormatText)
	}

	if m.onCombinedTab() {
		switch msg.String() {
		case "enter", "r", "i", "backspace", "delete":
			m.setError(errors.New("select a label tab first"))
			return m, nil
		}
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		m.cur = m.cur.move(geom, -1, 0)
	case "down", "j":
		m.cur = m.cur.move(geom, 1, 0)
	case "left", "h":
		m.cur = m.cur.move(geom, 0, -1)
	case "right", "l":
		m.cur = m.cur.move(geom, 0, 1)
	case "home", "g":
		m.cur = cellCursor{}
	case "end", "G":
		m.cur = cellCursor{row: geom.RowCount() - 1, col: geom.ColCount() - 1}
	case "backspace", "delete":
		m.commitCell("")
	case "enter":
		g, err := m.session.Grid(m.activeTab)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		value, _ := g.Get(m.cur.well(geom))
		return m, m.startInput(modeEditCell, m.cur.well(geom).String()+": ", value)
	case "r":
		return m, m.startInput(modeRename, "Label: ", m.session.Labels()[m.activeTab])
	case "i":
		return m, m.startInput(modeImport, "Layout file: ", "")
	}
	return m, nil
}

func (m *Model) startInput(md mode, prompt, value string) tea.Cmd {
	m.mode = md
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.updateLayout()
	return m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeGrid
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		md := m.mode
		m.input.Blur()
		m.mode = modeGrid
		switch md {
		case modeEditCell:
			m.commitCell(value)
			m.cur = m.cur.move(m.session.Geometry(), 1, 0)
		case modeRename:
			m.renameLabel(value)
		case modeImport:
			m.importLayout(strings.TrimSpace(value))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitCell(value string) {
	w := m.cur.well(m.session.Geometry())
	if err := m.session.SetCell(m.activeTab, w, value); err != nil {
		m.setError(err)
		return
	}
	m.errMsg = ""
	m.refreshPreview()
}

func (m *Model) addLabel() {
	name, err := m.session.AddLabel()
	if err != nil {
		m.setError(err)
		return
	}
	m.activeTab = len(m.session.Labels()) - 1
	m.status = fmt.Sprintf("Added %q.", name)
	m.errMsg = ""
	m.refreshPreview()
}

func (m *Model) renameLabel(name string) {
	if err := m.session.RenameLabel(m.activeTab, name); err != nil {
		m.setError(err)
		return
	}
	m.status = fmt.Sprintf("Renamed label to %q.", name)
	m.errMsg = ""
	m.refreshPreview()
}

func (m *Model) removeLabel() {
	if m.onCombinedTab() {
		m.setError(errors.New("select a label tab first"))
		return
	}
	name := m.session.Labels()[m.activeTab]
	if err := m.session.RemoveLabel(m.activeTab); err != nil {
		m.setError(err)
		return
	}
	if m.activeTab >= len(m.session.Labels()) {
		m.activeTab = len(m.session.Labels()) - 1
	}
	m.status = fmt.Sprintf("Removed %q.", name)
	m.errMsg = ""
	m.refreshPreview()
}

func (m *Model) importLayout(path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		m.setError(fmt.Errorf("failed to open layout: %w", err))
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	g, err := grid.ReadLayout(f, m.session.Geometry())
	if err != nil {
		m.setError(err)
		return
	}
	if err := m.session.ApplySnapshot(m.activeTab, g.Snapshot()); err != nil {
		m.setError(err)
		return
	}
	m.status = fmt.Sprintf("Imported %d values from %s.", g.Filled(), path)
	m.errMsg = ""
	m.refreshPreview()
}

func (m *Model) startExport(format export.Format) tea.Cmd {
	if m.publisher == nil {
		m.setError(errors.New("export is not configured"))
		return nil
	}
	if m.exporting {
		m.status = "Export already running."
		return nil
	}
	merged, err := m.session.Merge()
	if err != nil {
		m.setError(err)
		return nil
	}
	m.exporting = true
	m.errMsg = ""
	m.status = fmt.Sprintf("Exporting %s...", format.Filename())
	src := mergedSource{plate: m.session.Plate(), table: merged}
	ctx := m.ctx
	pub := m.publisher
	return func() tea.Msg {
		res, err := pub.Publish(ctx, src, format)
		return exportDoneMsg{result: res, err: err}
	}
}

func (m *Model) finishExport(msg exportDoneMsg) {
	m.exporting = false
	if msg.err != nil {
		m.setError(fmt.Errorf("export failed: %w", msg.err))
		return
	}
	m.errMsg = ""
	m.status = fmt.Sprintf("Wrote %s (%d rows) to %s", msg.result.Artifact.Name, msg.result.Rows, msg.result.Artifact.Location)
}

func (m *Model) setError(err error) {
	m.errMsg = err.Error()
	m.logger.Debug("ui error", zap.Error(err))
}

func (m *Model) moveTab(delta int) {
	count := len(m.session.Labels()) + 1
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.onCombinedTab() {
		m.refreshPreview()
		m.preview.GotoTop()
	}
}

func (m *Model) refreshPreview() {
	merged, err := m.session.Merge()
	m.preview.SetRows(nil)
	if err != nil {
		m.previewRows = 0
		return
	}
	records := merged.Records()
	rows := make([]table.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(table.Row, len(rec))
		for i, v := range rec {
			row[i] = strings.Join(strings.Fields(v), " ")
		}
		rows = append(rows, row)
	}
	m.preview.SetColumns(previewColumns(records))
	m.preview.SetRows(rows)
	m.previewRows = len(rows)
}

func previewColumns(records [][]string) []table.Column {
	header := records[0]
	cols := make([]table.Column, len(header))
	for i, title := range header {
		w := runewidth.StringWidth(title)
		for _, rec := range records[1:] {
			if cw := runewidth.StringWidth(rec[i]); cw > w {
				w = cw
			}
		}
		cols[i] = table.Column{Title: title, Width: clamp(w, minPreviewWidth, maxPreviewWidth)}
	}
	return cols
}

func previewStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func selectorIndex(t plate.Type) int {
	for i, item := range selectorItems {
		if item == t {
			return i
		}
	}
	return 0
}

func (m *Model) renderSelector() string {
	lines := []string{titleStyle.Render("Plate Type Selection"), ""}
	for i, t := range selectorItems {
		label := t.Title()
		if t != plate.None {
			label = fmt.Sprintf("%s  (%d x %d)", label, t.Geometry().RowCount(), t.Geometry().ColCount())
		}
		if i == m.selectIdx {
			lines = append(lines, selectedStyle.Render("> "+label))
		} else {
			lines = append(lines, optionStyle.Render("  "+label))
		}
	}
	lines = append(lines, "")
	help := "Move: up/down  Select: enter  Quit: q"
	if m.session.Plate() != plate.None {
		help = "Move: up/down  Select: enter (clears grids)  Back: esc  Quit: q"
	}
	lines = append(lines, helpStyle.Render(help))
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTabs() string {
	labels := m.session.Labels()
	parts := make([]string, 0, len(labels)+1)
	for i, name := range labels {
		title := name
		if g, err := m.session.Grid(i); err == nil && g.Filled() > 0 {
			title = fmt.Sprintf("%s (%d)", name, g.Filled())
		}
		if title == "" {
			title = " "
		}
		if i == m.activeTab {
			parts = append(parts, activeTabStyle.Render(title))
		} else {
			parts = append(parts, inactiveTabStyle.Render(title))
		}
	}
	combined := fmt.Sprintf("%s (%d)", combinedTab, m.previewRows)
	if m.onCombinedTab() {
		parts = append(parts, activeTabStyle.Render(combined))
	} else {
		parts = append(parts, inactiveTabStyle.Render(combined))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	pt := m.session.Plate()
	title := titleStyle.Render(pt.Title())
	if !m.onCombinedTab() {
		title += statusStyle.Render("  " + m.cur.well(pt.Geometry()).String())
	}
	return title + "\n" + m.renderTabs()
}

func (m *Model) renderBody() string {
	if m.onCombinedTab() {
		if m.previewRows == 0 {
			return statusStyle.Render("No wells filled yet.")
		}
		return m.preview.View()
	}
	g, err := m.session.Grid(m.activeTab)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	_, bodyHeight, _ := m.layoutHeights()
	return m.view.render(g, m.cur, m.width, bodyHeight)
}

func (m *Model) renderHelp() string {
	if m.inputActive() {
		return m.input.View()
	}
	help := "Move: arrows  Edit: enter  Clear: del  Tabs: tab  Label: a add, r rename, D remove  Import: i  Export: x xlsx, t txt  Plate: p  Quit: q"
	if m.onCombinedTab() {
		help = "Scroll: up/down  Tabs: tab  Label: a add  Export: x xlsx, t txt  Plate: p  Quit: q"
	}
	return helpStyle.Render(help)
}

func (m *Model) renderFooter() string {
	status := statusStyle.Render(m.status)
	switch {
	case m.errMsg != "":
		status = errorStyle.Render(m.errMsg)
	case len(m.session.Duplicates()) > 0:
		status = warnStyle.Render("Duplicate labels: " + strings.Join(m.session.Duplicates(), ", "))
	}
	return m.renderHelp() + "\n" + status
}
