//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/cargobump/internal/domain/commands"
	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

// StubCurrentCommand is a stub implementation of commands.Current.
type StubCurrentCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Version          entities.Version
	LastOpts         commands.CurrentOptions
}

var _ commands.Current = (*StubCurrentCommand)(nil)

func (s *StubCurrentCommand) Execute(
	_ context.Context,
	opts commands.CurrentOptions,
) (entities.Version, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Version, s.ExecuteErr
}
