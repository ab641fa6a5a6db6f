// Package tui provides the interactive Bubble Tea dashboard for safedrive.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/tui/components"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab indexes into components.Tabs.
const (
	tabDashboard = iota
	tabFatigue
	tabEmotions
	tabDrivers
	tabEvents
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 180
	minContentHeight = 5

	loadTimeout        = 30 * time.Second
	minRefreshInterval = 5 * time.Second
)

// dayOptions are the lookbacks cycled with + and -.
var dayOptions = []int{7, 30, 90}

// Config configures the dashboard.
type Config struct {
	Loader          *view.Loader
	Filter          view.Filter // initial filter, e.g. from flags
	AutoRefresh     bool
	RefreshInterval time.Duration
	Changes         <-chan struct{} // database change signals; nil disables watching
}

// loadedMsg carries one tab's view for the ticket that requested it.
type loadedMsg struct {
	ticket view.Ticket
	view   any
	err    error
	took   time.Duration
	at     time.Time
}

type refreshTickMsg struct{}

type dbChangedMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	loader  *view.Loader
	tracker *view.Tracker
	ticket  view.Ticket
	filter  view.Filter
	loc     *time.Location

	autoRefresh     bool
	refreshInterval time.Duration
	changes         <-chan struct{}

	// Last applied view per tab.
	dashboard *view.Dashboard
	fatigue   *view.Fatigue
	emotions  *view.Emotions
	drivers   *view.DriverList
	driver    *view.DriverDetail
	events    *view.RecentEvents

	loadErr  error
	updated  time.Time
	loadTime time.Duration
	loading  bool
	spinner  spinner.Model

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Drivers tab
	searching bool
	search    textinput.Model
	cursor    int
	detail    bool
	driverID  int64
}

// NewApp creates the dashboard model. The first load is requested by Init.
func NewApp(cfg Config) App {
	opts := cfg.Loader.Options()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	ti := textinput.New()
	ti.Placeholder = "name or email"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	f := cfg.Filter
	if f.Days < 1 && !f.HasRange() {
		f.Days = opts.DefaultDays
	}
	interval := cfg.RefreshInterval
	if interval < minRefreshInterval {
		interval = 30 * time.Second
	}

	a := App{
		loader:          cfg.Loader,
		tracker:         &view.Tracker{},
		filter:          f,
		loc:             opts.Location,
		autoRefresh:     cfg.AutoRefresh,
		refreshInterval: interval,
		changes:         cfg.Changes,
		spinner:         sp,
		search:          ti,
		loading:         true,
	}
	a.ticket = a.tracker.Begin()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.loadCmd(),
		a.spinner.Tick,
		waitForChange(a.changes),
	}
	if a.autoRefresh {
		cmds = append(cmds, a.refreshTick())
	}
	return tea.Batch(cmds...)
}

// reload invalidates any load in flight and requests the active tab again.
func (a *App) reload() tea.Cmd {
	wasIdle := !a.loading
	a.ticket = a.tracker.Begin()
	a.loading = true
	if wasIdle {
		return tea.Batch(a.loadCmd(), a.spinner.Tick)
	}
	return a.loadCmd()
}

// loadCmd loads the active tab for the current ticket and filter.
func (a App) loadCmd() tea.Cmd {
	loader, f, ticket := a.loader, a.filter, a.ticket
	tab, detail := a.activeTab, a.detail
	if detail {
		f.DriverID = a.driverID
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		start := time.Now()
		msg := loadedMsg{ticket: ticket}
		switch {
		case tab == tabDashboard:
			msg.view, msg.err = loader.Dashboard(ctx)
		case tab == tabFatigue:
			msg.view, msg.err = loader.Fatigue(ctx, f)
		case tab == tabEmotions:
			msg.view, msg.err = loader.Emotions(ctx, f)
		case tab == tabDrivers && detail:
			msg.view, msg.err = loader.Driver(ctx, f)
		case tab == tabDrivers:
			msg.view = loader.Drivers(ctx, f)
		case tab == tabEvents:
			msg.view, msg.err = loader.RecentEvents(ctx, f)
		}
		msg.took = time.Since(start)
		msg.at = time.Now()
		return msg
	}
}

func (a App) refreshTick() tea.Cmd {
	return tea.Tick(a.refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// waitForChange blocks until the watcher reports a database change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return dbChangedMsg{}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case loadedMsg:
		return a.applyLoad(msg), nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case refreshTickMsg:
		if !a.autoRefresh {
			return a, nil
		}
		cmds := []tea.Cmd{a.refreshTick()}
		if !a.loading && !a.searching {
			cmds = append(cmds, a.reload())
		}
		return a, tea.Batch(cmds...)

	case dbChangedMsg:
		return a, tea.Batch(waitForChange(a.changes), a.reload())

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)
	}
	return a, nil
}

// applyLoad stores a finished load unless a newer filter state superseded it.
func (a App) applyLoad(msg loadedMsg) App {
	if !a.tracker.Current(msg.ticket) {
		return a
	}
	a.loading = false
	a.loadTime = msg.took
	a.loadErr = msg.err
	if msg.err != nil {
		return a
	}
	a.updated = msg.at

	switch v := msg.view.(type) {
	case *view.Dashboard:
		a.dashboard = v
	case *view.Fatigue:
		a.fatigue = v
	case *view.Emotions:
		a.emotions = v
	case *view.DriverList:
		a.drivers = v
		a.cursor = min(a.cursor, max(len(v.Drivers)-1, 0))
	case *view.DriverDetail:
		a.driver = v
	case *view.RecentEvents:
		a.events = v
	}
	return a
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.searching {
		return a.updateSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		if a.detail {
			a.detail = false
			return a, a.reload()
		}
		return a, tea.Quit
	case "esc":
		if a.detail {
			a.detail = false
			return a, a.reload()
		}
		if a.activeTab == tabDrivers && a.filter.Search != "" {
			a.filter.Search = ""
			a.cursor = 0
			return a, a.reload()
		}
		return a, nil
	case "r":
		return a, a.reload()
	case "+", "=":
		return a, a.cycleDays(1)
	case "-":
		return a, a.cycleDays(-1)
	case "/":
		var cmd tea.Cmd
		if a.activeTab != tabDrivers || a.detail {
			cmd = a.switchTab(tabDrivers)
		}
		a.searching = true
		a.search.SetValue(a.filter.Search)
		a.search.CursorEnd()
		return a, tea.Batch(cmd, a.search.Focus())
	case "tab", "right", "l":
		return a, a.switchTab((a.activeTab + 1) % len(components.Tabs))
	case "shift+tab", "left", "h":
		return a, a.switchTab((a.activeTab + len(components.Tabs) - 1) % len(components.Tabs))
	case "n", "pgdown":
		return a, a.turnPage(1)
	case "p", "pgup":
		return a, a.turnPage(-1)
	}

	if a.activeTab == tabDrivers && !a.detail {
		switch key {
		case "j", "down":
			a.moveCursor(1)
			return a, nil
		case "k", "up":
			a.moveCursor(-1)
			return a, nil
		case "g":
			a.cursor = 0
			return a, nil
		case "G":
			a.moveCursor(len(a.driverRows()))
			return a, nil
		case "enter":
			rows := a.driverRows()
			if a.cursor >= len(rows) {
				return a, nil
			}
			a.detail = true
			a.driverID = rows[a.cursor].ID
			a.driver = nil
			return a, a.reload()
		}
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			return a, a.switchTab(idx)
		}
	}
	return a, nil
}

// updateSearch handles keys while the driver search box is focused.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searching = false
		a.search.Blur()
		a.filter.Search = strings.TrimSpace(a.search.Value())
		a.cursor = 0
		return a, a.reload()
	case "esc":
		a.searching = false
		a.search.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showHelp || a.searching {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabDrivers && !a.detail {
			a.moveCursor(-1)
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabDrivers && !a.detail {
			a.moveCursor(1)
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				return a, a.switchTab(tab)
			}
		}
	}
	return a, nil
}

func (a *App) switchTab(idx int) tea.Cmd {
	if idx == a.activeTab && !a.detail {
		return nil
	}
	a.activeTab = idx
	a.detail = false
	a.filter.Page = 0
	return a.reload()
}

// cycleDays steps through dayOptions and drops any explicit date range.
func (a *App) cycleDays(dir int) tea.Cmd {
	cur := 0
	for i, d := range dayOptions {
		if d <= a.filter.Days {
			cur = i
		}
	}
	next := min(max(cur+dir, 0), len(dayOptions)-1)
	if dayOptions[next] == a.filter.Days && !a.filter.HasRange() {
		return nil
	}
	a.filter.Days = dayOptions[next]
	a.filter.From, a.filter.To = "", ""
	a.filter.Page = 0
	return a.reload()
}

// turnPage moves the paginated log on the Events or Emotions tab.
func (a *App) turnPage(dir int) tea.Cmd {
	var page, total int
	switch {
	case a.activeTab == tabEvents && a.events != nil:
		page, total = a.events.Page.PageNumber, a.events.Page.TotalPages
	case a.activeTab == tabEmotions && a.emotions != nil:
		page, total = a.emotions.Rows.PageNumber, a.emotions.Rows.TotalPages
	default:
		return nil
	}
	next := page + dir
	if next < 1 || next > total {
		return nil
	}
	a.filter.Page = next
	return a.reload()
}

func (a App) driverRows() []model.Driver {
	if a.drivers == nil {
		return nil
	}
	return a.drivers.Drivers
}

func (a *App) moveCursor(delta int) {
	n := len(a.driverRows())
	a.cursor = min(max(a.cursor+delta, 0), max(n-1, 0))
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths used by RenderTabBar plus one separator column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.loading && !a.hasData() {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) hasData() bool {
	return a.dashboard != nil || a.fatigue != nil || a.emotions != nil ||
		a.drivers != nil || a.driver != nil || a.events != nil || a.loadErr != nil
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  safedrive needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderHot).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ safedrive"))
	b.WriteString(subtitleStyle.Render(" · Fleet Safety Analytics"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading " + strings.ToLower(components.Tabs[a.activeTab].Name) + "..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"d f e i v", "switch tab"},
		{"tab / ←→", "next / previous tab"},
		{"+ / -", "cycle lookback 7 / 30 / 90 days"},
		{"/", "search drivers by name or email"},
		{"j / k", "move selection (Drivers)"},
		{"enter", "open driver detail"},
		{"esc", "close detail or clear search"},
		{"n / p", "next / previous page (Emotions, Events)"},
		{"r", "reload now"},
		{"q", "quit"},
	}
	lines := make([]string, len(bindings))
	for i, kb := range bindings {
		lines[i] = keyStyle.Render(fmt.Sprintf("%-12s", kb.key)) + descStyle.Render(kb.desc)
	}

	card := components.Panel("Keys", strings.Join(lines, "\n"), 60, true)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFilterRow(w)

	info := components.StatusInfo{
		Loading:     a.loading,
		Spinner:     a.spinner.View(),
		AutoRefresh: a.autoRefresh,
		Watching:    a.changes != nil,
	}
	if !a.updated.IsZero() {
		info.Updated = fmt.Sprintf("%s (%.1fs)", a.updated.Format("15:04:05"), a.loadTime.Seconds())
	}
	if a.loadErr != nil {
		info.Problem = "load failed"
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = components.Panel("Error", components.FailedNotice(strings.ToLower(components.Tabs[a.activeTab].Name), a.loadErr.Error()), cw, true)
	case a.activeTab == tabDashboard:
		content = a.renderDashboardTab(cw)
	case a.activeTab == tabFatigue:
		content = a.renderFatigueTab(cw, contentH)
	case a.activeTab == tabEmotions:
		content = a.renderEmotionsTab(cw)
	case a.activeTab == tabDrivers && a.detail:
		content = a.renderDriverDetail(cw)
	case a.activeTab == tabDrivers:
		content = a.renderDriversTab(cw, contentH)
	case a.activeTab == tabEvents:
		content = a.renderEventsTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderFilterRow shows the active window and search below the tabs.
func (a App) renderFilterRow(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	var s string
	switch {
	case a.activeTab == tabDashboard:
		s = dim.Render(" fleet overview ") + accent.Render(fmt.Sprintf("%dd", a.loader.Options().DashboardDays))
	case a.filter.HasRange():
		s = dim.Render(" ") + accent.Render(a.filter.From+" → "+a.filter.To)
	default:
		s = dim.Render(" ") + accent.Render(fmt.Sprintf("%dd", a.filter.Days))
	}
	if a.searching {
		s += dim.Render(" │ ") + a.search.View()
	} else if a.filter.Search != "" && a.activeTab == tabDrivers {
		s += dim.Render(" │ search ") + accent.Render(a.filter.Search)
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(s)
}

// sectionBody renders a section's content, or its failure or empty notice.
func sectionBody(s view.Section, what, empty string, render func() string) string {
	switch s.Status {
	case view.StatusFailed:
		return components.FailedNotice(what, s.Error)
	case view.StatusEmpty:
		return components.EmptyNotice(empty)
	}
	return render()
}

func windowLabel(w view.WindowInfo) string {
	if w.From == "" {
		return ""
	}
	return fmt.Sprintf("%s → %s", w.From, w.To)
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
