package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

// Steps reported by ReleaseError.
const (
	StepRenderMessage   = "render message"
	StepLoadManifest    = "load manifest"
	StepReadVersion     = "read version"
	StepBump            = "bump version"
	StepOpenRepository  = "open repository"
	StepValidate        = "validate repository"
	StepResolveIdentity = "resolve identity"
	StepCheckTag        = "check tag"
	StepWriteManifest   = "write manifest"
	StepStage           = "stage"
	StepCommit          = "commit"
	StepTag             = "tag"
)

// Release is the interface for the release command.
type Release interface {
	Execute(ctx context.Context, opts ReleaseOptions) (*ReleaseResult, error)
}

// ReleaseOptions holds everything one release run needs. Process state such
// as the working directory and environment identity is resolved by the
// caller.
type ReleaseOptions struct {
	ManifestPath string
	Table        []string
	Bump         entities.BumpKind
	Message      entities.CommitMessageTemplate
	Author       entities.Identity
	TagPrefix    string
	Annotate     bool
	TargetBranch string
	Commit       bool // when false only the manifest is rewritten
	DryRun       bool
}

// ReleaseResult describes a completed (or, for dry runs, planned) release.
type ReleaseResult struct {
	OldVersion entities.Version
	NewVersion entities.Version
	CommitID   repositories.CommitID
	TagName    string
	DryRun     bool
}

// ReleaseError reports the step a release failed at. It unwraps to the
// step's own error.
type ReleaseError struct {
	Step string
	Err  error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

func fail(step string, err error) error {
	return &ReleaseError{Step: step, Err: err}
}

// ReleaseCommand reads the manifest version, bumps it, writes it back,
// then stages, commits and tags the change. It stops at the first failing
// step and does not roll back completed ones.
type ReleaseCommand struct {
	manifests repositories.ManifestRepository
	vcs       repositories.VersionControlRepository
	now       func() time.Time
}

// NewReleaseCommand creates a new ReleaseCommand.
func NewReleaseCommand(
	manifests repositories.ManifestRepository,
	vcs repositories.VersionControlRepository,
) *ReleaseCommand {
	return &ReleaseCommand{
		manifests: manifests,
		vcs:       vcs,
		now:       time.Now,
	}
}

// Execute runs one release. Every precondition (repository state, identity,
// tag availability) is checked before the manifest is touched.
func (it *ReleaseCommand) Execute(ctx context.Context, opts ReleaseOptions) (*ReleaseResult, error) {
	message := opts.Message.OrDefault()
	if err := message.Validate(); err != nil {
		return nil, fail(StepRenderMessage, err)
	}

	doc, err := it.manifests.Load(opts.ManifestPath, opts.Table)
	if err != nil {
		return nil, fail(StepLoadManifest, err)
	}

	current, err := doc.CurrentVersion()
	if err != nil {
		return nil, fail(StepReadVersion, err)
	}

	next, err := entities.Bump(current, opts.Bump)
	if err != nil {
		return nil, fail(StepBump, err)
	}
	logger.Infof("[release] %s: %s -> %s (%s)", filepath.Base(opts.ManifestPath), current, next, opts.Bump)

	result := &ReleaseResult{OldVersion: current, NewVersion: next, DryRun: opts.DryRun}

	if !opts.Commit {
		if opts.DryRun {
			logger.Infof("[release] [DRY RUN] Would write %s to %s", next, opts.ManifestPath)
			return result, nil
		}
		return result, it.writeManifest(doc, next, opts.ManifestPath)
	}

	result.TagName = opts.TagPrefix + next.String()

	handle, author, err := it.prepareRepository(ctx, opts, result.TagName)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		logger.Infof(
			"[release] [DRY RUN] Would write %s, commit %q as %s and tag %s",
			opts.ManifestPath, message.Render(next), author, result.TagName,
		)
		return result, nil
	}

	if writeErr := it.writeManifest(doc, next, opts.ManifestPath); writeErr != nil {
		return nil, writeErr
	}

	if stageErr := handle.Stage(opts.ManifestPath); stageErr != nil {
		return nil, fail(StepStage, stageErr)
	}

	when := it.now()
	commitID, err := handle.Commit(message.Render(next), author, when)
	if err != nil {
		return nil, fail(StepCommit, err)
	}
	result.CommitID = commitID

	tagErr := handle.Tag(result.TagName, commitID, repositories.TagOptions{
		Annotate: opts.Annotate,
		Message:  message.Render(next),
		Tagger:   author,
		When:     when,
	})
	if tagErr != nil {
		return nil, fail(StepTag, tagErr)
	}

	logger.Infof("[release] Released %s", next)
	return result, nil
}

// prepareRepository opens and validates the repository, refuses a manifest
// that already carries uncommitted changes (an interrupted earlier run),
// resolves the commit identity and makes sure the tag is free.
func (it *ReleaseCommand) prepareRepository(
	ctx context.Context,
	opts ReleaseOptions,
	tagName string,
) (repositories.RepositoryHandle, entities.Identity, error) {
	handle, err := it.vcs.Open(ctx, opts.ManifestPath, repositories.OpenOptions{TargetBranch: opts.TargetBranch})
	if err != nil {
		return nil, entities.Identity{}, fail(StepOpenRepository, err)
	}

	if validateErr := handle.Validate(); validateErr != nil {
		return nil, entities.Identity{}, fail(StepValidate, validateErr)
	}

	modified, err := handle.IsModified(opts.ManifestPath)
	if err != nil {
		return nil, entities.Identity{}, fail(StepValidate, err)
	}
	if modified {
		return nil, entities.Identity{}, fail(StepValidate, fmt.Errorf(
			"%w: %s has uncommitted changes", entities.ErrDirtyWorkingTree, opts.ManifestPath,
		))
	}

	author := opts.Author
	if author.Name == "" || author.Email == "" {
		configured, identityErr := handle.ConfiguredIdentity()
		if identityErr != nil {
			logger.Debugf("[release] No identity in git config: %v", identityErr)
		}
		author = author.Merge(configured)
	}
	if identityErr := author.Validate(); identityErr != nil {
		return nil, entities.Identity{}, fail(StepResolveIdentity, identityErr)
	}

	exists, err := handle.HasTag(tagName)
	if err != nil {
		return nil, entities.Identity{}, fail(StepCheckTag, err)
	}
	if exists {
		return nil, entities.Identity{}, fail(StepCheckTag, fmt.Errorf("%w: %s", entities.ErrTagExists, tagName))
	}

	return handle, author, nil
}

func (it *ReleaseCommand) writeManifest(
	doc repositories.ManifestDocument,
	next entities.Version,
	path string,
) error {
	if err := doc.SetVersion(next); err != nil {
		return fail(StepWriteManifest, err)
	}
	if err := it.manifests.Save(doc, path); err != nil {
		return fail(StepWriteManifest, err)
	}
	return nil
}
