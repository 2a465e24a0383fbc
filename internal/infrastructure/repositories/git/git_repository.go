package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

// GitRepository opens on-disk repositories through go-git, without shelling
// out to the git binary.
type GitRepository struct{}

var _ repositories.VersionControlRepository = (*GitRepository)(nil)

// NewGitRepository creates a new GitRepository.
func NewGitRepository() *GitRepository {
	return &GitRepository{}
}

// Open discovers the repository that encloses manifestPath, walking up from
// the manifest's directory.
func (it *GitRepository) Open(
	ctx context.Context,
	manifestPath string,
	opts repositories.OpenOptions,
) (repositories.RepositoryHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest path %q: %w", manifestPath, err)
	}

	repo, err := gogit.PlainOpenWithOptions(filepath.Dir(absManifest), &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: no repository encloses %s", entities.ErrNotARepository, absManifest)
		}
		return nil, fmt.Errorf("%w: %w", entities.ErrNotARepository, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: repository has no working tree: %w", entities.ErrNotARepository, err)
	}

	root, err := filepath.EvalSymlinks(worktree.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrNotARepository, err)
	}

	handle := &Handle{
		repo:         repo,
		worktree:     worktree,
		root:         root,
		targetBranch: opts.TargetBranch,
		state:        repositories.StateOpened,
	}

	if handle.manifest, err = handle.relPath(absManifest); err != nil {
		return nil, err
	}

	logger.Debugf("[git] Opened repository at %s (manifest %s)", root, handle.manifest)
	return handle, nil
}
