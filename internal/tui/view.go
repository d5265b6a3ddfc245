package tui

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/ledger"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
	"github.com/Iron-Ham/hivecouncil/internal/tui/styles"
	"github.com/Iron-Ham/hivecouncil/internal/util"
	"github.com/charmbracelet/lipgloss"
)

// maxTitleLength bounds the prompt excerpt shown in the header.
const maxTitleLength = 72

// View renders the viewer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	header := "HiveCouncil"
	if m.title != "" {
		header += "  " + styles.Muted.Render(util.Excerpt(m.title, maxTitleLength))
	}
	b.WriteString(styles.Header.Render(header))
	b.WriteString("\n")

	b.WriteString(util.TruncateANSI(m.renderStatusLine(), m.width))
	b.WriteString("\n")
	b.WriteString(m.renderLedgerLine())
	b.WriteString("\n")

	if m.snap.Error != "" {
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.snap.Error))
	}
	b.WriteString("\n")

	b.WriteString(styles.OutputArea.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(renderHelp(m.snap.Status))

	return b.String()
}

func (m Model) renderStatusLine() string {
	status := string(m.snap.Status)
	badge := styles.StatusBadge.
		Foreground(styles.StatusColor(status)).
		Render(styles.StatusIcon(status) + " " + status)

	parts := []string{badge}
	if m.snap.Status == council.StatusRunning {
		parts = append(parts, m.spinner.View())
	}
	if m.snap.Status != council.StatusIdle && m.snap.TotalIterations > 0 {
		parts = append(parts, fmt.Sprintf("Iteration %d of %d", m.snap.CurrentIteration, m.snap.TotalIterations))
	}
	if m.snap.StatusMessage != "" {
		parts = append(parts, styles.Muted.Render(m.snap.StatusMessage))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderLedgerLine() string {
	summary := m.snap.Ledger().Summary()
	line := styles.Text.Render(summary)
	if m.costWarning > 0 && m.snap.TotalCost >= m.costWarning {
		line = styles.WarningMsg.Render(summary + " (over " + ledger.FormatCost(m.costWarning) + ")")
	}
	if m.snap.Status == council.StatusPaused && m.snap.QueuedEvents > 0 {
		line += styles.Muted.Render(fmt.Sprintf("  %d events held", m.snap.QueuedEvents))
	}
	return line
}

// renderTranscript renders every iteration's responses and merged
// consensus, wrapped to width.
func renderTranscript(snap council.Snapshot, width int) string {
	rounds := snap.Rounds()
	if len(rounds) == 0 {
		if snap.Status == council.StatusIdle {
			return styles.Muted.Render("No session running.")
		}
		return styles.Muted.Render("Waiting for responses...")
	}

	wrap := lipgloss.NewStyle().Width(max(width-2, 10))

	var b strings.Builder
	for i, round := range rounds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.RoundTitle.Render(fmt.Sprintf("Iteration %d", round.Iteration)))
		b.WriteString("\n")

		for _, rec := range round.Responses {
			b.WriteString(styles.ResponseAuthor.Render(author(rec)))
			if rec.Kind == stream.KindFeedback {
				b.WriteString(styles.Muted.Render(" · feedback"))
			}
			if usage := usageLabel(rec); usage != "" {
				b.WriteString(styles.Muted.Render(" · " + usage))
			}
			b.WriteString("\n")
			b.WriteString(wrap.Render(rec.Content))
			b.WriteString("\n")
		}

		if round.Merge != nil {
			title := styles.Secondary.Render("Consensus · " + author(*round.Merge))
			body := wrap.Width(max(width-4, 10)).Render(round.Merge.Content)
			b.WriteString(styles.Consensus.Render(title + "\n" + body))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func author(rec council.ResponseRecord) string {
	if rec.Model != "" {
		return fmt.Sprintf("%s (%s)", rec.Provider, rec.Model)
	}
	return rec.Provider
}

func usageLabel(rec council.ResponseRecord) string {
	total := rec.Tokens.Input + rec.Tokens.Output
	if total == 0 && rec.Cost == 0 {
		return ""
	}
	return ledger.FormatTokens(total) + " tokens · " + ledger.FormatCost(rec.Cost)
}

type helpEntry struct {
	key, desc string
}

func renderHelp(status council.Status) string {
	var keys []helpEntry
	switch status {
	case council.StatusRunning:
		keys = append(keys, helpEntry{"p", "pause"})
	case council.StatusPaused:
		keys = append(keys, helpEntry{"r", "resume"})
	}
	keys = append(keys, helpEntry{"c", "clear"}, helpEntry{"↑/↓", "scroll"}, helpEntry{"q", "quit"})

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, styles.HelpKey.Render(k.key)+" "+k.desc)
	}
	return styles.HelpBar.Render(strings.Join(parts, "  "))
}
