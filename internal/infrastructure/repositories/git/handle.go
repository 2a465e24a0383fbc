package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

// Handle is the single-run state machine over one repository. Operations
// must be called in order: Validate, Stage, Commit, Tag.
type Handle struct {
	repo         *gogit.Repository
	worktree     *gogit.Worktree
	root         string
	manifest     string // slash-separated, relative to root
	targetBranch string

	state repositories.GateState
	head  *plumbing.Reference
}

var _ repositories.RepositoryHandle = (*Handle)(nil)

func (h *Handle) Root() string { return h.root }

func (h *Handle) State() repositories.GateState { return h.state }

// Validate checks HEAD and the working tree. Untracked files are ignored; the
// manifest is exempt because it is the file about to be rewritten.
func (h *Handle) Validate() error {
	if err := h.expect(repositories.StateOpened, repositories.StateValidated); err != nil {
		return err
	}

	head, err := h.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: the repository has no commits yet", entities.ErrUnbornHead)
		}
		return fmt.Errorf("%w: %w", entities.ErrUnbornHead, err)
	}

	if branchErr := h.checkBranch(head); branchErr != nil {
		return branchErr
	}

	dirty, err := h.dirtyFiles()
	if err != nil {
		return err
	}
	if len(dirty) > 0 {
		return fmt.Errorf("%w: %s", entities.ErrDirtyWorkingTree, strings.Join(dirty, ", "))
	}

	h.head = head
	h.state = repositories.StateValidated
	logger.Debugf("[git] Validated HEAD %s at %s", head.Name(), head.Hash())
	return nil
}

// checkBranch enforces the commit target policy. A detached HEAD is only
// accepted when a target branch is named and that branch, if it exists,
// already points at HEAD.
func (h *Handle) checkBranch(head *plumbing.Reference) error {
	if head.Name().IsBranch() {
		if h.targetBranch != "" && h.targetBranch != head.Name().Short() {
			return fmt.Errorf(
				"%w: HEAD is on branch %q but the target branch is %q",
				entities.ErrDetachedHead, head.Name().Short(), h.targetBranch,
			)
		}
		return nil
	}

	if h.targetBranch == "" {
		return fmt.Errorf(
			"%w: at %s; name a target branch to commit onto",
			entities.ErrDetachedHead, head.Hash(),
		)
	}

	ref, err := h.repo.Reference(plumbing.NewBranchReferenceName(h.targetBranch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil
		}
		return fmt.Errorf("%w: resolving branch %q: %w", entities.ErrDetachedHead, h.targetBranch, err)
	}
	if ref.Hash() != head.Hash() {
		return fmt.Errorf(
			"%w: branch %q is at %s but HEAD is at %s",
			entities.ErrDetachedHead, h.targetBranch, ref.Hash(), head.Hash(),
		)
	}
	return nil
}

// dirtyFiles lists tracked paths, other than the manifest, with staged or
// unstaged changes.
func (h *Handle) dirtyFiles() ([]string, error) {
	status, err := h.worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("%w: reading status: %w", entities.ErrDirtyWorkingTree, err)
	}

	var dirty []string
	for path, fileStatus := range status {
		if path == h.manifest || !isTrackedChange(fileStatus) {
			continue
		}
		dirty = append(dirty, path)
	}
	sort.Strings(dirty)
	return dirty, nil
}

func isTrackedChange(fileStatus *gogit.FileStatus) bool {
	if fileStatus.Staging == gogit.Untracked && fileStatus.Worktree == gogit.Untracked {
		return false
	}
	return fileStatus.Staging != gogit.Unmodified || fileStatus.Worktree != gogit.Unmodified
}

// IsModified reports whether the tracked file at path has staged or unstaged
// changes relative to HEAD.
func (h *Handle) IsModified(path string) (bool, error) {
	rel, err := h.relPath(path)
	if err != nil {
		return false, err
	}

	status, err := h.worktree.Status()
	if err != nil {
		return false, fmt.Errorf("%w: reading status: %w", entities.ErrDirtyWorkingTree, err)
	}

	fileStatus, ok := status[rel]
	if !ok {
		return false, nil
	}
	return isTrackedChange(fileStatus), nil
}

// HasTag reports whether the tag already exists.
func (h *Handle) HasTag(name string) (bool, error) {
	_, err := h.repo.Tag(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gogit.ErrTagNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("%w: looking up tag %q: %w", entities.ErrTagFailed, name, err)
}

// ConfiguredIdentity reads user.name and user.email from the repository
// config merged with the global one.
func (h *Handle) ConfiguredIdentity() (entities.Identity, error) {
	cfg, err := h.repo.ConfigScoped(gitconfig.GlobalScope)
	if err != nil {
		return entities.Identity{}, fmt.Errorf("%w: reading git config: %w", entities.ErrMissingIdentity, err)
	}
	return entities.Identity{Name: cfg.User.Name, Email: cfg.User.Email}, nil
}

// Stage adds exactly path to the index.
func (h *Handle) Stage(path string) error {
	if err := h.expect(repositories.StateValidated, repositories.StateStaged); err != nil {
		return err
	}

	rel, err := h.relPath(path)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStageFailed, err)
	}

	if _, addErr := h.worktree.Add(rel); addErr != nil {
		return fmt.Errorf("%w: %s: %w", entities.ErrStageFailed, rel, addErr)
	}

	h.state = repositories.StateStaged
	logger.Debugf("[git] Staged %s", rel)
	return nil
}

// Commit records the index with author as both author and committer. On a
// detached HEAD the target branch is moved to the new commit and HEAD is
// attached to it.
func (h *Handle) Commit(
	message string,
	author entities.Identity,
	when time.Time,
) (repositories.CommitID, error) {
	if err := h.expect(repositories.StateStaged, repositories.StateCommitted); err != nil {
		return "", err
	}
	if err := author.Validate(); err != nil {
		return "", err
	}

	signature := &object.Signature{Name: author.Name, Email: author.Email, When: when}
	hash, err := h.worktree.Commit(message, &gogit.CommitOptions{
		Author:    signature,
		Committer: signature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrCommitFailed, err)
	}

	if !h.head.Name().IsBranch() {
		if moveErr := h.moveTargetBranch(hash); moveErr != nil {
			return "", moveErr
		}
	}

	h.state = repositories.StateCommitted
	logger.Infof("[git] Committed %s", hash)
	return repositories.CommitID(hash.String()), nil
}

func (h *Handle) moveTargetBranch(hash plumbing.Hash) error {
	branch := plumbing.NewBranchReferenceName(h.targetBranch)
	if err := h.repo.Storer.SetReference(plumbing.NewHashReference(branch, hash)); err != nil {
		return fmt.Errorf("%w: updating %s: %w", entities.ErrCommitFailed, branch, err)
	}
	if err := h.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		return fmt.Errorf("%w: attaching HEAD to %s: %w", entities.ErrCommitFailed, branch, err)
	}
	return nil
}

// Tag creates the tag, lightweight unless opts.Annotate is set. An existing
// tag is reported before any state change.
func (h *Handle) Tag(name string, target repositories.CommitID, opts repositories.TagOptions) error {
	exists, err := h.HasTag(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", entities.ErrTagExists, name)
	}

	if expectErr := h.expect(repositories.StateCommitted, repositories.StateTagged); expectErr != nil {
		return expectErr
	}
	if !plumbing.IsHash(string(target)) {
		return fmt.Errorf("%w: %q is not a commit id", entities.ErrTagFailed, target)
	}

	var createOpts *gogit.CreateTagOptions
	if opts.Annotate {
		message := opts.Message
		if message == "" {
			message = name
		}
		createOpts = &gogit.CreateTagOptions{
			Tagger:  &object.Signature{Name: opts.Tagger.Name, Email: opts.Tagger.Email, When: opts.When},
			Message: message,
		}
	}

	if _, createErr := h.repo.CreateTag(name, plumbing.NewHash(string(target)), createOpts); createErr != nil {
		if errors.Is(createErr, gogit.ErrTagExists) {
			return fmt.Errorf("%w: %s", entities.ErrTagExists, name)
		}
		return fmt.Errorf("%w: %s: %w", entities.ErrTagFailed, name, createErr)
	}

	h.state = repositories.StateTagged
	logger.Infof("[git] Tagged %s as %s", target, name)
	return nil
}

func (h *Handle) expect(from, to repositories.GateState) error {
	if h.state != from {
		return fmt.Errorf("%w: cannot move from %s to %s", entities.ErrInvalidTransition, h.state, to)
	}
	return nil
}

// relPath converts path into the slash-separated form go-git uses for
// worktree entries.
func (h *Handle) relPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	resolved, err := resolvePath(abs)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(h.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the working tree %s", path, h.root)
	}
	return filepath.ToSlash(rel), nil
}

// resolvePath follows symlinks in the directory part of path so that paths
// under a symlinked temp dir compare equal to the worktree root. The file
// itself may not exist.
func resolvePath(path string) (string, error) {
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return filepath.Clean(path), nil
		}
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return filepath.Join(dir, filepath.Base(path)), nil
}
