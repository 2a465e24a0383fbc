//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/cargobump/internal/domain/commands"
	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

// ReleaseOptionsBuilder helps create release options with a fluent interface.
type ReleaseOptionsBuilder struct {
	*testkit.BaseBuilder
	manifestPath string
	table        []string
	bump         entities.BumpKind
	message      entities.CommitMessageTemplate
	author       entities.Identity
	tagPrefix    string
	annotate     bool
	targetBranch string
	commit       bool
	dryRun       bool
}

// NewReleaseOptionsBuilder creates a builder for a committed patch release.
func NewReleaseOptionsBuilder() *ReleaseOptionsBuilder {
	b := &ReleaseOptionsBuilder{BaseBuilder: testkit.NewBaseBuilder()}
	b.defaults()
	return b
}

func (b *ReleaseOptionsBuilder) defaults() {
	b.manifestPath = "/repo/Cargo.toml"
	b.table = []string{"package"}
	b.bump = entities.Patch{}
	b.message = ""
	b.author = entities.Identity{Name: "Release Bot", Email: "release@example.com"}
	b.tagPrefix = ""
	b.annotate = false
	b.targetBranch = ""
	b.commit = true
	b.dryRun = false
}

// WithManifestPath sets the manifest path.
func (b *ReleaseOptionsBuilder) WithManifestPath(path string) *ReleaseOptionsBuilder {
	b.manifestPath = path
	return b
}

// WithWorkspace targets the [workspace.package] table.
func (b *ReleaseOptionsBuilder) WithWorkspace() *ReleaseOptionsBuilder {
	b.table = []string{"workspace", "package"}
	return b
}

// WithBump sets the bump kind.
func (b *ReleaseOptionsBuilder) WithBump(kind entities.BumpKind) *ReleaseOptionsBuilder {
	b.bump = kind
	return b
}

// WithMessage sets the commit message template.
func (b *ReleaseOptionsBuilder) WithMessage(message string) *ReleaseOptionsBuilder {
	b.message = entities.CommitMessageTemplate(message)
	return b
}

// WithAuthor sets the commit identity.
func (b *ReleaseOptionsBuilder) WithAuthor(name, email string) *ReleaseOptionsBuilder {
	b.author = entities.Identity{Name: name, Email: email}
	return b
}

// WithTagPrefix sets the tag prefix.
func (b *ReleaseOptionsBuilder) WithTagPrefix(prefix string) *ReleaseOptionsBuilder {
	b.tagPrefix = prefix
	return b
}

// WithAnnotate requests an annotated tag.
func (b *ReleaseOptionsBuilder) WithAnnotate() *ReleaseOptionsBuilder {
	b.annotate = true
	return b
}

// WithTargetBranch sets the branch that receives the commit.
func (b *ReleaseOptionsBuilder) WithTargetBranch(branch string) *ReleaseOptionsBuilder {
	b.targetBranch = branch
	return b
}

// WithoutCommit only rewrites the manifest.
func (b *ReleaseOptionsBuilder) WithoutCommit() *ReleaseOptionsBuilder {
	b.commit = false
	return b
}

// WithDryRun enables dry-run mode.
func (b *ReleaseOptionsBuilder) WithDryRun() *ReleaseOptionsBuilder {
	b.dryRun = true
	return b
}

// Build creates the options (satisfies testkit.Builder interface).
func (b *ReleaseOptionsBuilder) Build() interface{} {
	return b.BuildReleaseOptions()
}

// BuildReleaseOptions creates the options with a concrete return type.
func (b *ReleaseOptionsBuilder) BuildReleaseOptions() commands.ReleaseOptions {
	return commands.ReleaseOptions{
		ManifestPath: b.manifestPath,
		Table:        append([]string(nil), b.table...),
		Bump:         b.bump,
		Message:      b.message,
		Author:       b.author,
		TagPrefix:    b.tagPrefix,
		Annotate:     b.annotate,
		TargetBranch: b.targetBranch,
		Commit:       b.commit,
		DryRun:       b.dryRun,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ReleaseOptionsBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.defaults()
	return b
}

// Clone creates a deep copy of the ReleaseOptionsBuilder.
func (b *ReleaseOptionsBuilder) Clone() testkit.Builder {
	clone := *b
	clone.BaseBuilder = b.BaseBuilder.Clone().(*testkit.BaseBuilder)
	clone.table = append([]string(nil), b.table...)
	return &clone
}
