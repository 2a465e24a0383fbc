package commands

import (
	"context"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

// Current is the interface for the current command.
type Current interface {
	Execute(ctx context.Context, opts CurrentOptions) (entities.Version, error)
}

// CurrentOptions locates the manifest and the table holding its version.
type CurrentOptions struct {
	ManifestPath string
	Table        []string
}

// CurrentCommand reads the version recorded in a manifest.
type CurrentCommand struct {
	manifests repositories.ManifestRepository
}

// NewCurrentCommand creates a new CurrentCommand.
func NewCurrentCommand(manifests repositories.ManifestRepository) *CurrentCommand {
	return &CurrentCommand{manifests: manifests}
}

// Execute returns the manifest's current version.
func (it *CurrentCommand) Execute(ctx context.Context, opts CurrentOptions) (entities.Version, error) {
	if err := ctx.Err(); err != nil {
		return entities.Version{}, err
	}

	doc, err := it.manifests.Load(opts.ManifestPath, opts.Table)
	if err != nil {
		return entities.Version{}, fail(StepLoadManifest, err)
	}

	version, err := doc.CurrentVersion()
	if err != nil {
		return entities.Version{}, fail(StepReadVersion, err)
	}
	return version, nil
}
