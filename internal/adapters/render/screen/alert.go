package screen

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Alerter prints non-fatal notices, such as the backend's rate-limit
// message, as a styled block on out.
type Alerter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewAlerter(out io.Writer) *Alerter {
	return &Alerter{out: out}
}

func (a *Alerter) Alert(title, message string) {
	s := newStyles()
	block := lipgloss.JoinVertical(lipgloss.Left, s.warning.Render(title), s.detail.Render(message))

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = fmt.Fprintln(a.out, block)
}
