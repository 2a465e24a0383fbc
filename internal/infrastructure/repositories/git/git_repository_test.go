//go:build unit

package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
	"github.com/rios0rios0/cargobump/internal/infrastructure/repositories/git"
)

var releaser = entities.Identity{Name: "Release Bot", Email: "release@example.com"}

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// initRepository creates a repository with one commit holding Cargo.toml and
// README.md.
func initRepository(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"1.2.3\"\n")
	writeFile(t, dir, "README.md", "# demo\n")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("Cargo.toml")
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: fixedTime},
	})
	require.NoError(t, err)

	return dir, repo
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func openHandle(t *testing.T, dir string, opts repositories.OpenOptions) repositories.RepositoryHandle {
	t.Helper()
	handle, err := git.NewGitRepository().Open(context.Background(), filepath.Join(dir, "Cargo.toml"), opts)
	require.NoError(t, err)
	return handle
}

func detachHead(t *testing.T, repo *gogit.Repository) plumbing.Hash {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, head.Hash())))
	return head.Hash()
}

func TestGitRepositoryOpen(t *testing.T) {
	t.Parallel()

	t.Run("should fail outside a repository", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "Cargo.toml", "[package]\nversion = \"1.0.0\"\n")

		// when
		_, err := git.NewGitRepository().Open(context.Background(), filepath.Join(dir, "Cargo.toml"), repositories.OpenOptions{})

		// then
		require.ErrorIs(t, err, entities.ErrNotARepository)
		assert.Equal(t, entities.KindGit, entities.KindOf(err))
	})

	t.Run("should discover the repository from a nested manifest", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "crates", "core"), 0o755))
		nested := filepath.Join(dir, "crates", "core", "Cargo.toml")
		writeFile(t, filepath.Dir(nested), "Cargo.toml", "[package]\nversion = \"0.1.0\"\n")

		// when
		handle, err := git.NewGitRepository().Open(context.Background(), nested, repositories.OpenOptions{})

		// then
		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		assert.Equal(t, resolved, handle.Root())
		assert.Equal(t, repositories.StateOpened, handle.State())
	})

	t.Run("should honour a cancelled context", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		_, err := git.NewGitRepository().Open(ctx, filepath.Join(dir, "Cargo.toml"), repositories.OpenOptions{})

		// then
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestHandleValidate(t *testing.T) {
	t.Parallel()

	t.Run("should accept a clean tree with a modified manifest", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"1.2.4\"\n")
		writeFile(t, dir, "notes.txt", "untracked files are ignored\n")
		handle := openHandle(t, dir, repositories.OpenOptions{})

		// when
		err := handle.Validate()

		// then
		require.NoError(t, err)
		assert.Equal(t, repositories.StateValidated, handle.State())
		modified, err := handle.IsModified(filepath.Join(dir, "Cargo.toml"))
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("should reject other modified tracked files", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		writeFile(t, dir, "README.md", "# changed\n")
		handle := openHandle(t, dir, repositories.OpenOptions{})

		// when
		err := handle.Validate()

		// then
		require.ErrorIs(t, err, entities.ErrDirtyWorkingTree)
		assert.Contains(t, err.Error(), "README.md")
		assert.Equal(t, repositories.StateOpened, handle.State())
	})

	t.Run("should reject a repository without commits", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		_, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)
		writeFile(t, dir, "Cargo.toml", "[package]\nversion = \"1.0.0\"\n")
		handle := openHandle(t, dir, repositories.OpenOptions{})

		// when
		err = handle.Validate()

		// then
		require.ErrorIs(t, err, entities.ErrUnbornHead)
	})

	t.Run("should reject a detached HEAD without a target branch", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initRepository(t)
		detachHead(t, repo)
		handle := openHandle(t, dir, repositories.OpenOptions{})

		// when
		err := handle.Validate()

		// then
		require.ErrorIs(t, err, entities.ErrDetachedHead)
	})

	t.Run("should reject a target branch that differs from the current one", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		handle := openHandle(t, dir, repositories.OpenOptions{TargetBranch: "release"})

		// when
		err := handle.Validate()

		// then
		require.ErrorIs(t, err, entities.ErrDetachedHead)
	})

	t.Run("should reject a target branch that is not at HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initRepository(t)
		head := detachHead(t, repo)
		other := plumbing.NewHash("1111111111111111111111111111111111111111")
		require.NotEqual(t, head, other)
		require.NoError(t, repo.Storer.SetReference(
			plumbing.NewHashReference(plumbing.NewBranchReferenceName("release"), other),
		))
		handle := openHandle(t, dir, repositories.OpenOptions{TargetBranch: "release"})

		// when
		err := handle.Validate()

		// then
		require.ErrorIs(t, err, entities.ErrDetachedHead)
	})

	t.Run("should refuse to validate twice", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		handle := openHandle(t, dir, repositories.OpenOptions{})
		require.NoError(t, handle.Validate())

		// when
		err := handle.Validate()

		// then
		require.ErrorIs(t, err, entities.ErrInvalidTransition)
	})
}

func TestHandleRelease(t *testing.T) {
	t.Parallel()

	t.Run("should stage commit and tag the manifest", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initRepository(t)
		manifest := filepath.Join(dir, "Cargo.toml")
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"1.3.0\"\n")
		handle := openHandle(t, dir, repositories.OpenOptions{})
		require.NoError(t, handle.Validate())

		// when
		require.NoError(t, handle.Stage(manifest))
		commitID, err := handle.Commit("1.3.0", releaser, fixedTime)
		require.NoError(t, err)
		err = handle.Tag("1.3.0", commitID, repositories.TagOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, repositories.StateTagged, handle.State())

		head, err := repo.Head()
		require.NoError(t, err)
		assert.Equal(t, string(commitID), head.Hash().String())

		commit, err := repo.CommitObject(head.Hash())
		require.NoError(t, err)
		assert.Equal(t, "1.3.0", commit.Message)
		assert.Equal(t, "Release Bot", commit.Author.Name)
		assert.Equal(t, "release@example.com", commit.Committer.Email)
		assert.Equal(t, 1, commit.NumParents())

		tag, err := repo.Tag("1.3.0")
		require.NoError(t, err)
		assert.Equal(t, head.Hash(), tag.Hash())
		_, err = repo.TagObject(tag.Hash())
		require.ErrorIs(t, err, plumbing.ErrObjectNotFound)

		status, err := mustWorktree(t, repo).Status()
		require.NoError(t, err)
		assert.True(t, status.IsClean())
	})

	t.Run("should create an annotated tag when requested", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initRepository(t)
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"2.0.0\"\n")
		handle := openHandle(t, dir, repositories.OpenOptions{})
		require.NoError(t, handle.Validate())
		require.NoError(t, handle.Stage(filepath.Join(dir, "Cargo.toml")))
		commitID, err := handle.Commit("release 2.0.0", releaser, fixedTime)
		require.NoError(t, err)

		// when
		err = handle.Tag("v2.0.0", commitID, repositories.TagOptions{
			Annotate: true,
			Message:  "release 2.0.0",
			Tagger:   releaser,
			When:     fixedTime,
		})

		// then
		require.NoError(t, err)
		ref, err := repo.Tag("v2.0.0")
		require.NoError(t, err)
		tagObject, err := repo.TagObject(ref.Hash())
		require.NoError(t, err)
		assert.Equal(t, "release 2.0.0\n", tagObject.Message)
		assert.Equal(t, string(commitID), tagObject.Target.String())
		assert.Equal(t, "Release Bot", tagObject.Tagger.Name)
	})

	t.Run("should report an existing tag on a second attempt", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"1.2.4\"\n")
		handle := openHandle(t, dir, repositories.OpenOptions{})
		require.NoError(t, handle.Validate())
		require.NoError(t, handle.Stage(filepath.Join(dir, "Cargo.toml")))
		commitID, err := handle.Commit("1.2.4", releaser, fixedTime)
		require.NoError(t, err)
		require.NoError(t, handle.Tag("1.2.4", commitID, repositories.TagOptions{}))

		// when
		err = handle.Tag("1.2.4", commitID, repositories.TagOptions{})

		// then
		require.ErrorIs(t, err, entities.ErrTagExists)
		exists, err := handle.HasTag("1.2.4")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("should refuse operations out of order", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		handle := openHandle(t, dir, repositories.OpenOptions{})

		// when
		stageErr := handle.Stage(filepath.Join(dir, "Cargo.toml"))
		_, commitErr := handle.Commit("1.2.4", releaser, fixedTime)
		tagErr := handle.Tag("1.2.4", "0123456789abcdef0123456789abcdef01234567", repositories.TagOptions{})

		// then
		require.ErrorIs(t, stageErr, entities.ErrInvalidTransition)
		require.ErrorIs(t, commitErr, entities.ErrInvalidTransition)
		require.ErrorIs(t, tagErr, entities.ErrInvalidTransition)
		assert.Equal(t, repositories.StateOpened, handle.State())
	})

	t.Run("should require an identity to commit", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initRepository(t)
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"1.2.4\"\n")
		handle := openHandle(t, dir, repositories.OpenOptions{})
		require.NoError(t, handle.Validate())
		require.NoError(t, handle.Stage(filepath.Join(dir, "Cargo.toml")))

		// when
		_, err := handle.Commit("1.2.4", entities.Identity{Name: "Nobody"}, fixedTime)

		// then
		require.ErrorIs(t, err, entities.ErrMissingIdentity)
		assert.Equal(t, repositories.StateStaged, handle.State())
	})

	t.Run("should move the target branch when committing from a detached HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initRepository(t)
		parent := detachHead(t, repo)
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"1.2.4\"\n")
		handle := openHandle(t, dir, repositories.OpenOptions{TargetBranch: "release"})
		require.NoError(t, handle.Validate())
		require.NoError(t, handle.Stage(filepath.Join(dir, "Cargo.toml")))

		// when
		commitID, err := handle.Commit("1.2.4", releaser, fixedTime)

		// then
		require.NoError(t, err)
		branch, err := repo.Reference(plumbing.NewBranchReferenceName("release"), true)
		require.NoError(t, err)
		assert.Equal(t, string(commitID), branch.Hash().String())

		head, err := repo.Head()
		require.NoError(t, err)
		assert.Equal(t, plumbing.NewBranchReferenceName("release"), head.Name())

		commit, err := repo.CommitObject(branch.Hash())
		require.NoError(t, err)
		assert.Equal(t, []plumbing.Hash{parent}, commit.ParentHashes)
	})
}

func mustWorktree(t *testing.T, repo *gogit.Repository) *gogit.Worktree {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return wt
}
