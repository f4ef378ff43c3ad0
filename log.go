package k8s

import (
	"log/slog"

	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// SetLogger overrides the logger every internal component (discovery, auth
// refreshers, streaming runners) uses. Passing nil restores the lazily
// derived default (slog.Default().With("component", "k8s")).
func SetLogger(l *slog.Logger) {
	xlog.SetLogger(l)
}
