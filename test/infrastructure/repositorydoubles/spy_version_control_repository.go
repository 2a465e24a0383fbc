//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"time"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

// SpyVersionControlRepository implements repositories.VersionControlRepository
// as a configurable spy.
type SpyVersionControlRepository struct {
	Handle    *SpyRepositoryHandle
	OpenErr   error
	OpenPaths []string
	OpenOpts  []repositories.OpenOptions
}

var _ repositories.VersionControlRepository = (*SpyVersionControlRepository)(nil)

func (r *SpyVersionControlRepository) Open(
	_ context.Context,
	manifestPath string,
	opts repositories.OpenOptions,
) (repositories.RepositoryHandle, error) {
	r.OpenPaths = append(r.OpenPaths, manifestPath)
	r.OpenOpts = append(r.OpenOpts, opts)
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	return r.Handle, nil
}

// SpyRepositoryHandle implements repositories.RepositoryHandle. Every call
// is appended to Calls so tests can assert ordering.
type SpyRepositoryHandle struct {
	RootDir string
	Current repositories.GateState

	ValidateErr   error
	Modified      bool
	IsModifiedErr error
	TagExists     bool
	HasTagErr     error
	Identity      entities.Identity
	IdentityErr   error
	StageErr      error
	CommitID      repositories.CommitID
	CommitErr     error
	TagErr        error

	Calls         []string
	StagedPaths   []string
	CommitMessage string
	CommitAuthor  entities.Identity
	CommitWhen    time.Time
	TagName       string
	TagTarget     repositories.CommitID
	TagOpts       repositories.TagOptions
}

var _ repositories.RepositoryHandle = (*SpyRepositoryHandle)(nil)

// NewSpyRepositoryHandle creates a handle whose operations all succeed.
func NewSpyRepositoryHandle() *SpyRepositoryHandle {
	return &SpyRepositoryHandle{
		RootDir:  "/repo",
		CommitID: "0123456789abcdef0123456789abcdef01234567",
	}
}

func (h *SpyRepositoryHandle) Root() string { return h.RootDir }

func (h *SpyRepositoryHandle) State() repositories.GateState { return h.Current }

func (h *SpyRepositoryHandle) Validate() error {
	h.Calls = append(h.Calls, "validate")
	if h.ValidateErr == nil {
		h.Current = repositories.StateValidated
	}
	return h.ValidateErr
}

func (h *SpyRepositoryHandle) IsModified(_ string) (bool, error) {
	h.Calls = append(h.Calls, "is-modified")
	return h.Modified, h.IsModifiedErr
}

func (h *SpyRepositoryHandle) HasTag(_ string) (bool, error) {
	h.Calls = append(h.Calls, "has-tag")
	return h.TagExists, h.HasTagErr
}

func (h *SpyRepositoryHandle) ConfiguredIdentity() (entities.Identity, error) {
	h.Calls = append(h.Calls, "identity")
	return h.Identity, h.IdentityErr
}

func (h *SpyRepositoryHandle) Stage(path string) error {
	h.Calls = append(h.Calls, "stage")
	h.StagedPaths = append(h.StagedPaths, path)
	if h.StageErr == nil {
		h.Current = repositories.StateStaged
	}
	return h.StageErr
}

func (h *SpyRepositoryHandle) Commit(
	message string,
	author entities.Identity,
	when time.Time,
) (repositories.CommitID, error) {
	h.Calls = append(h.Calls, "commit")
	h.CommitMessage = message
	h.CommitAuthor = author
	h.CommitWhen = when
	if h.CommitErr != nil {
		return "", h.CommitErr
	}
	h.Current = repositories.StateCommitted
	return h.CommitID, nil
}

func (h *SpyRepositoryHandle) Tag(name string, target repositories.CommitID, opts repositories.TagOptions) error {
	h.Calls = append(h.Calls, "tag")
	h.TagName = name
	h.TagTarget = target
	h.TagOpts = opts
	if h.TagErr == nil {
		h.Current = repositories.StateTagged
	}
	return h.TagErr
}
