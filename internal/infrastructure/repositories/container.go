package repositories

import (
	"github.com/spf13/afero"
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/cargobump/internal/domain/repositories"
	gitRepo "github.com/rios0rios0/cargobump/internal/infrastructure/repositories/git"
	manifestRepo "github.com/rios0rios0/cargobump/internal/infrastructure/repositories/manifest"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(afero.NewOsFs); err != nil {
		return err
	}

	// Register repository constructors
	if err := container.Provide(manifestRepo.NewTOMLManifestRepository); err != nil {
		return err
	}
	if err := container.Provide(gitRepo.NewGitRepository); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *manifestRepo.TOMLManifestRepository) domainRepos.ManifestRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *gitRepo.GitRepository) domainRepos.VersionControlRepository {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
