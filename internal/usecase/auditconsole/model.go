package auditconsole

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"juryboard/internal/ports"
	"juryboard/internal/usecase/audit"
)

const maxShownEntries = 15

type Options struct {
	Limit           int
	RefreshInterval time.Duration
}

type consoleModel struct {
	ctx             context.Context
	service         *audit.Service
	limit           int
	refreshInterval time.Duration

	entries       []ports.AuditEntry
	stats         ports.AuditStatistics
	selectedIndex int
	status        string
}

type entriesLoadedMsg struct {
	entries []ports.AuditEntry
	stats   ports.AuditStatistics
	err     error
}

type tickMsg struct{}

func NewModel(ctx context.Context, service *audit.Service, options Options) tea.Model {
	limit := options.Limit
	if limit <= 0 {
		limit = 100
	}
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &consoleModel{
		ctx:             ctx,
		service:         service,
		limit:           limit,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(m.loadEntriesCmd(), m.tickCmd())
}

func (m *consoleModel) loadEntriesCmd() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.service.Recent(m.ctx, m.limit)
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		stats, err := m.service.Statistics(m.ctx)
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		return entriesLoadedMsg{entries: entries, stats: stats}
	}
}

func (m *consoleModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.entries)-1 {
				m.selectedIndex++
			}
			return m, nil
		case "r":
			m.status = "refreshing"
			return m, m.loadEntriesCmd()
		}
		return m, nil

	case entriesLoadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		m.stats = msg.stats
		if m.selectedIndex >= len(m.entries) {
			m.selectedIndex = 0
		}
		m.status = fmt.Sprintf("loaded %d entries", len(m.entries))
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadEntriesCmd(), m.tickCmd())
	}

	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m *consoleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("juryboard audit log"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"total %d | last 30 days %d | rows affected %d",
		m.stats.TotalResets, m.stats.Recent30Days, m.stats.TotalRowsAffected,
	)))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("no audit entries"))
		b.WriteString("\n")
	}

	start := 0
	if m.selectedIndex >= maxShownEntries {
		start = m.selectedIndex - maxShownEntries + 1
	}
	end := start + maxShownEntries
	if end > len(m.entries) {
		end = len(m.entries)
	}

	for i := start; i < end; i++ {
		entry := m.entries[i]
		line := fmt.Sprintf("#%d %-16s actor=%d rows=%d %s",
			entry.AuditID, entry.ResetType, entry.InitiatedBy, entry.VotesAffected, entry.CreatedAt)
		if i == m.selectedIndex {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.selectedIndex < len(m.entries) {
		entry := m.entries[m.selectedIndex]
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("detail"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  role=%s reason=%q\n", entry.InitiatorRole, entry.Reason))
		if entry.CandidateID != nil {
			b.WriteString(fmt.Sprintf("  candidate=%d\n", *entry.CandidateID))
		}
		if entry.ReviewerID != nil {
			b.WriteString(fmt.Sprintf("  reviewer=%d\n", *entry.ReviewerID))
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ip=%s ua=%s", entry.IPAddress, entry.UserAgent)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.status + " | up/down navigate, r refresh, q quit"))
	b.WriteString("\n")

	return b.String()
}
