// Package tui renders live scan and clean progress from bus events.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/styles"
	"github.com/hay-kot/rnclean/internal/core/task"
)

const (
	maxBarWidth      = 60
	maxNotifications = 3
	finishGrace      = time.Second
)

// Task identifies one row of the view.
type Task struct {
	ID   string
	Name string
}

type row struct {
	Task
	status task.Status
	size   uint64
	err    string
}

// workDoneMsg is sent once the work function returns.
type workDoneMsg struct{ err error }

// resumeMsg ends a pacing pause.
type resumeMsg struct{}

// graceMsg fires when work has returned but the final event never arrived.
type graceMsg struct{}

// Model is the bubbletea model for a scan or clean run.
type Model struct {
	title  string
	rows   []row
	byID   map[string]int
	events <-chan tea.Msg
	pace   time.Duration
	stages int
	cancel context.CancelFunc

	spinner  spinner.Model
	progress progress.Model

	cleaning  bool
	done, of  int
	found     uint64
	freed     uint64
	finished  int
	canceling bool
	workDone  bool
	quitting  bool

	summaries     []string
	notifications []eventbus.NotificationPublishedPayload
	err           error
}

// Options configures a Model.
type Options struct {
	Title string
	Tasks []Task
	// Pace is the pause after each task settles.
	Pace time.Duration
	// Stages is how many ScanFinished or CleanFinished events end the run.
	Stages int
}

// New creates a Model reading events from ch. cancel is called when the
// user interrupts the run.
func New(opts Options, ch <-chan tea.Msg, cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.TextPrimaryStyle

	rows := make([]row, len(opts.Tasks))
	byID := make(map[string]int, len(opts.Tasks))
	for i, t := range opts.Tasks {
		rows[i] = row{Task: t, status: task.StatusPending}
		byID[t.ID] = i
	}

	stages := opts.Stages
	if stages <= 0 {
		stages = 1
	}

	return Model{
		title:    opts.Title,
		rows:     rows,
		byID:     byID,
		events:   ch,
		pace:     opts.Pace,
		stages:   stages,
		cancel:   cancel,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Err returns the error the work function ended with.
func (m Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.canceling {
				m.quitting = true
				return m, tea.Quit
			}
			m.canceling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resumeMsg:
		return m, waitForEvent(m.events)

	case workDoneMsg:
		m.workDone = true
		if msg.err != nil {
			m.err = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		if m.finished >= m.stages {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tea.Tick(finishGrace, func(time.Time) tea.Msg { return graceMsg{} })

	case graceMsg:
		m.quitting = true
		return m, tea.Quit

	case eventbus.ScanStartedPayload:
		m.cleaning = false
		m.done, m.of, m.found = 0, msg.Tasks, 0
		for i := range m.rows {
			m.rows[i].status = task.StatusPending
			m.rows[i].size = 0
			m.rows[i].err = ""
		}

	case eventbus.CleanStartedPayload:
		m.cleaning = true
		m.done, m.of, m.freed = 0, msg.Tasks, 0

	case eventbus.TaskChangedPayload:
		i, ok := m.byID[msg.ID]
		if !ok {
			return m, waitForEvent(m.events)
		}
		m.rows[i].status = msg.State.Status
		m.rows[i].size = msg.State.Size
		m.rows[i].err = msg.State.Err
		if m.pace > 0 && !msg.State.Status.IsActive() && msg.State.Status != task.StatusPending {
			return m, tea.Tick(m.pace, func(time.Time) tea.Msg { return resumeMsg{} })
		}

	case eventbus.TotalChangedPayload:
		m.done, m.of = msg.Done, msg.Of
		m.found = msg.TotalFound
		m.freed = msg.Freed

	case eventbus.ScanFinishedPayload:
		m.found = msg.TotalFound
		line := fmt.Sprintf("Scan found %s reclaimable in %s", humanize.IBytes(msg.TotalFound), msg.Duration.Round(time.Millisecond))
		if msg.Canceled {
			line = "Scan canceled, " + humanize.IBytes(msg.TotalFound) + " found so far"
		}
		return m.finish(line)

	case eventbus.CleanFinishedPayload:
		line := fmt.Sprintf("Cleaned %s across %d file(s), %s session, %s",
			humanize.IBytes(msg.SpaceCleaned), msg.FilesDeleted, msg.Type, msg.Status)
		if msg.Errors > 0 {
			line += fmt.Sprintf(" with %d error(s)", msg.Errors)
		}
		return m.finish(line)

	case eventbus.NotificationPublishedPayload:
		m.notifications = append(m.notifications, msg)
		if len(m.notifications) > maxNotifications {
			m.notifications = m.notifications[len(m.notifications)-maxNotifications:]
		}
	}

	return m, waitForEvent(m.events)
}

func (m Model) finish(summary string) (tea.Model, tea.Cmd) {
	m.summaries = append(m.summaries, summary)
	m.finished++
	if m.finished >= m.stages {
		m.quitting = true
		return m, tea.Quit
	}
	return m, waitForEvent(m.events)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(styles.CommandHeaderStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	nameWidth := 0
	for _, r := range m.rows {
		nameWidth = max(nameWidth, lipgloss.Width(r.Name))
	}

	for _, r := range m.rows {
		b.WriteString(m.renderRow(r, nameWidth))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if !m.quitting {
		pct := 0.0
		if m.of > 0 {
			pct = float64(m.done) / float64(m.of)
		}
		b.WriteString(m.progress.ViewAs(pct))
		b.WriteString("\n")
	}

	if m.cleaning {
		b.WriteString(styles.TextMutedStyle.Render("Freed ") + styles.TextSuccessStyle.Render(humanize.IBytes(m.freed)))
	} else {
		b.WriteString(styles.TextMutedStyle.Render("Found ") + styles.TextPrimaryBoldStyle.Render(humanize.IBytes(m.found)))
	}
	b.WriteString("\n")

	for _, s := range m.summaries {
		b.WriteString(styles.TextForegroundBoldStyle.Render(s))
		b.WriteString("\n")
	}

	for _, n := range m.notifications {
		b.WriteString(renderNotification(n))
		b.WriteString("\n")
	}

	if m.canceling && !m.quitting {
		b.WriteString(styles.TextWarningStyle.Render("Canceling, press again to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderRow(r row, nameWidth int) string {
	name := r.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(r.Name))

	var icon, detail string
	switch r.status {
	case task.StatusScanning, task.StatusCleaning:
		icon = m.spinner.View()
		detail = styles.TextMutedStyle.Render(string(r.status) + "...")
	case task.StatusFound:
		icon = styles.TextPrimaryStyle.Render("●")
		detail = humanize.IBytes(r.size)
	case task.StatusCompleted:
		icon = styles.TextSuccessStyle.Render("✔")
		detail = styles.TextSuccessStyle.Render("cleaned")
	case task.StatusError:
		icon = styles.TextErrorStyle.Render("✘")
		detail = styles.TextErrorStyle.Render(r.err)
	default:
		icon = styles.TextMutedStyle.Render("○")
		name = styles.TextMutedStyle.Render(name)
	}

	return fmt.Sprintf(" %s %s  %s", icon, name, detail)
}

func renderNotification(n eventbus.NotificationPublishedPayload) string {
	switch n.Level {
	case eventbus.LevelError:
		return styles.TextErrorStyle.Render("✘ " + n.Message)
	case eventbus.LevelWarning:
		return styles.TextWarningStyle.Render("● " + n.Message)
	default:
		return styles.TextPrimaryStyle.Render("• " + n.Message)
	}
}
