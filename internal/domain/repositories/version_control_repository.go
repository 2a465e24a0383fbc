package repositories

import (
	"context"
	"time"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

// GateState is a step of the repository state machine. A handle only moves
// forward: Opened, Validated, Staged, Committed, Tagged.
type GateState int

const (
	StateOpened GateState = iota
	StateValidated
	StateStaged
	StateCommitted
	StateTagged
)

func (s GateState) String() string {
	switch s {
	case StateOpened:
		return "opened"
	case StateValidated:
		return "validated"
	case StateStaged:
		return "staged"
	case StateCommitted:
		return "committed"
	case StateTagged:
		return "tagged"
	default:
		return "unknown"
	}
}

// CommitID identifies a commit by its hex object name.
type CommitID string

// OpenOptions configures how a repository is opened.
type OpenOptions struct {
	// TargetBranch allows committing from a detached HEAD by naming the
	// branch that receives the commit. When HEAD is attached it must match
	// the current branch.
	TargetBranch string
}

// TagOptions controls tag creation. A lightweight tag is created unless
// Annotate is set.
type TagOptions struct {
	Annotate bool
	Message  string
	Tagger   entities.Identity
	When     time.Time
}

// VersionControlRepository opens repositories on disk.
type VersionControlRepository interface {
	// Open locates the repository enclosing manifestPath. It fails with
	// entities.ErrNotARepository when there is none.
	Open(ctx context.Context, manifestPath string, opts OpenOptions) (RepositoryHandle, error)
}

// RepositoryHandle is a transient, single-run view of a repository.
type RepositoryHandle interface {
	// Root returns the working tree root.
	Root() string

	// State returns the current position in the state machine.
	State() GateState

	// Validate checks that HEAD can receive a commit and that no tracked file
	// other than the manifest has uncommitted changes.
	Validate() error

	// IsModified reports whether the tracked file at path differs from HEAD.
	IsModified(path string) (bool, error)

	// HasTag reports whether a tag named name exists.
	HasTag(name string) (bool, error)

	// ConfiguredIdentity returns user.name and user.email from git config.
	ConfiguredIdentity() (entities.Identity, error)

	// Stage adds exactly path to the index.
	Stage(path string) error

	// Commit records the index on top of HEAD.
	Commit(message string, author entities.Identity, when time.Time) (CommitID, error)

	// Tag points a new tag named name at target.
	Tag(name string, target CommitID, opts TagOptions) error
}
