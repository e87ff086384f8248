// Package tui provides the interactive Bubble Tea dashboard for omrisk.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"
	"github.com/theirongolddev/omrisk/internal/theme"
	"github.com/theirongolddev/omrisk/internal/tui/components"
)

// ScoredMsg is sent when a background simulation finishes.
type ScoredMsg struct {
	Result *pipeline.Result
	Err    error
}

// Options configures the dashboard.
type Options struct {
	ConfigPath string
	NSims      *int
	Seed       *int64
	Bins       int
	Logger     zerolog.Logger

	// OnResult is called with every successful run, e.g. to record history.
	OnResult func(*pipeline.Result)
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// seed is the override currently in effect; nil means the file's seed.
	seed *int64

	res      *pipeline.Result
	prev     *pipeline.Result
	monthly  []model.MonthStats
	bins     []model.HistogramBin
	err      error
	scoring  bool
	lastRun  time.Time
	runCount int

	width     int
	height    int
	activeTab int
	showHelp  bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	defaultBins      = 24
)

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	if opts.Bins <= 0 {
		opts.Bins = defaultBins
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		opts:    opts,
		seed:    opts.Seed,
		scoring: true,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		scoreCmd(a.opts, a.seed),
	)
}

// scoreCmd re-reads the assumptions file and runs the pipeline off the UI
// goroutine.
func scoreCmd(opts Options, seed *int64) tea.Cmd {
	return func() tea.Msg {
		file, err := config.Load(opts.ConfigPath)
		if err != nil {
			return ScoredMsg{Err: err}
		}
		cfg := file.CostModel().WithOverrides(opts.NSims, seed)
		res, err := pipeline.Run(cfg, pipeline.Options{Logger: opts.Logger})
		return ScoredMsg{Result: res, Err: err}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg.String())

	case ScoredMsg:
		a.scoring = false
		a.err = msg.Err
		if msg.Err != nil {
			return a, nil
		}
		a.prev = a.res
		a.res = msg.Result
		a.monthly = pipeline.MonthlyProfile(a.res.Monthly)
		a.bins = pipeline.Histogram(a.res.Annual.Totals(), a.opts.Bins)
		a.lastRun = time.Now()
		a.runCount++
		if a.opts.OnResult != nil {
			a.opts.OnResult(a.res)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "?":
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "r":
		return a.rescore(a.seed)
	case "n", "p":
		if a.res == nil {
			return a, nil
		}
		next := a.res.Config.RandomSeed + 1
		if key == "p" {
			next = a.res.Config.RandomSeed - 1
		}
		return a.rescore(&next)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) rescore(seed *int64) (tea.Model, tea.Cmd) {
	if a.scoring {
		return a, nil
	}
	a.scoring = true
	a.seed = seed
	return a, tea.Batch(a.spinner.Tick, scoreCmd(a.opts, seed))
}

func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
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
		return fmt.Sprintf("\n  Terminal too narrow (%d cols, need %d)\n", a.width, minTerminalWidth)
	}
	if a.res == nil {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	if a.err != nil {
		return "\n  " + lipgloss.NewStyle().Foreground(theme.Active.Over).Render(a.err.Error()) +
			"\n\n  Fix the assumptions file and press r to retry, q to quit.\n"
	}
	return "\n  " + a.spinner.View() + " Simulating scenarios...\n"
}

func (a App) viewHelp() string {
	t := theme.Active
	key := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Width(12)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary)

	rows := [][2]string{
		{"o d m h", "switch tab"},
		{"tab, arrows", "next or previous tab"},
		{"r", "re-read assumptions and rescore"},
		{"n / p", "rescore with the next or previous seed"},
		{"?", "toggle help"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString("  " + key.Render(r[0]) + text.Render(r[1]) + "\n")
	}
	return components.ContentCard("Keys", b.String(), min(a.contentWidth(), 60))
}

func (a App) viewMain() string {
	w := a.contentWidth()

	var body string
	switch a.activeTab {
	case 0:
		body = a.renderOverview(w)
	case 1:
		body = a.renderDrivers(w)
	case 2:
		body = a.renderMonthly(w)
	case 3:
		body = a.renderHistogram(w)
	}

	status := fmt.Sprintf("seed %d  %s sims  %s",
		a.res.Config.RandomSeed, cli.FormatNumber(int64(a.res.Config.NSims)), a.res.Elapsed.Round(time.Millisecond))
	if a.scoring {
		status = a.spinner.View() + " scoring  " + status
	}
	if a.err != nil {
		status = "error: " + a.err.Error()
	}

	return components.RenderTabBar(a.activeTab) + "\n\n" +
		body + "\n" +
		components.RenderStatusBar(w, status)
}

func (a App) renderOverview(w int) string {
	s := a.res.Summary
	metrics := []components.Metric{
		{Label: "Budget", Value: cli.FormatCostCompact(s.Budget)},
		{Label: "Mean annual", Value: cli.FormatCostCompact(s.MeanAnnualCost)},
		{Label: "P95 annual", Value: cli.FormatCostCompact(s.P95AnnualCost)},
		{Label: "P(over budget)", Value: cli.FormatPercent(s.ProbOverBudget)},
		{Label: "Expected overrun", Value: cli.FormatCostCompact(s.ExpectedOverrun)},
	}
	if a.prev != nil {
		p := a.prev.Summary
		metrics[1].Delta = cli.FormatDelta(s.MeanAnnualCost, p.MeanAnnualCost)
		metrics[2].Delta = cli.FormatDelta(s.P95AnnualCost, p.P95AnnualCost)
		metrics[3].Delta = cli.FormatPointDelta(s.ProbOverBudget, p.ProbOverBudget)
		metrics[4].Delta = cli.FormatDelta(s.ExpectedOverrun, p.ExpectedOverrun)
	}

	tail := fmt.Sprintf("P50 %s   P90 %s   P99 %s   Std %s\nAvg overrun when over: %s",
		cli.FormatCost(s.P50AnnualCost), cli.FormatCost(s.P90AnnualCost),
		cli.FormatCost(s.P99AnnualCost), cli.FormatCost(s.StdAnnualCost),
		cli.FormatCost(s.AvgOverrunIfOverBudget))

	return components.MetricCardRow(metrics, w) + "\n" +
		components.ContentCard("Distribution", tail, w)
}

func (a App) renderDrivers(w int) string {
	inner := components.CardInnerWidth(w)
	nameW := 0
	for _, d := range a.res.Drivers {
		nameW = max(nameW, lipgloss.Width(d.Category))
	}
	barW := max(inner-nameW-14-10, 10)

	muted := lipgloss.NewStyle().Foreground(theme.Active.TextMuted)
	var b strings.Builder
	for i, d := range a.res.Drivers {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-*s  %s  %s", nameW, d.Category,
			components.ShareBar(d.VarianceShare, barW),
			muted.Render("σ "+cli.FormatCostCompact(math.Sqrt(d.AnnualVariance))))
	}
	return components.ContentCard("Share of annual variance", b.String(), w)
}

func (a App) renderMonthly(w int) string {
	rows := make([][]string, 0, len(a.monthly))
	means := make([]float64, 0, len(a.monthly))
	for _, m := range a.monthly {
		rows = append(rows, []string{
			time.Month(m.Month).String()[:3],
			cli.FormatCostCompact(m.Mean),
			cli.FormatCostCompact(m.P50),
			cli.FormatCostCompact(m.P90),
		})
		means = append(means, m.Mean)
	}
	table := cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Mean", "P50", "P90"},
		Rows:    rows,
	})
	return components.ContentCard("Monthly total", table+"\n Mean by month  "+cli.RenderSparkline(means), w)
}

func (a App) renderHistogram(w int) string {
	barW := max(components.CardInnerWidth(w)-40, 10)
	return components.ContentCard(
		"Simulated annual cost",
		cli.RenderHistogram(a.bins, a.res.Budget, barW),
		w,
	)
}
