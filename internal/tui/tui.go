// Package tui is the terminal surface of the avatar client: a text input, a
// push-to-talk toggle, the connection status and the conversation log.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/ema-avatar/core/events"
)

// Subscriber is implemented by the orchestrator.
type Subscriber interface {
	Subscribe(callback func(events.Event)) (unsubscribe func())
}

type Source interface {
	Controller
	Subscriber
}

// Run shows the terminal surface until the user quits or ctx is done.
func Run(ctx context.Context, source Source) error {
	program := tea.NewProgram(NewModel(ctx, source), tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := source.Subscribe(func(event events.Event) {
		program.Send(eventMsg{event: event})
	})
	defer unsubscribe()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
