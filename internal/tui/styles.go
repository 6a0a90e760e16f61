package tui

import (
	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/ema-avatar/core"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	recordStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	logFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statusColors = map[orchestration.ConnectionStatus]lipgloss.Color{
		orchestration.ConnectionStatusConnecting: lipgloss.Color("214"),
		orchestration.ConnectionStatusReady:      lipgloss.Color("42"),
		orchestration.ConnectionStatusDegraded:   lipgloss.Color("196"),
	}
)

func statusDot(status orchestration.ConnectionStatus) string {
	return lipgloss.NewStyle().Foreground(statusColors[status]).Render("●") + " " + status.String()
}
