package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/wizard"
)

// Run drives the upload wizard interactively and returns the final job.
func Run(ctx context.Context, session *wizard.Session) (*model.UploadJob, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}

	p := tea.NewProgram(New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard interface failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected final model type %T", final)
	}
	if m.Err() != nil {
		return m.Result(), m.Err()
	}
	if session.Cancelled() {
		return nil, wizard.ErrSessionCancelled
	}
	return m.Result(), nil
}
