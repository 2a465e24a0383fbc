package controllers

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/cargobump/internal/domain/commands"
	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

const (
	selectorMajor      = "major"
	selectorMinor      = "minor"
	selectorPatch      = "patch"
	selectorPreRelease = "prerelease"
	selectorSet        = "set"
)

// BumpController handles one bump selector: major, minor, patch,
// prerelease or set.
type BumpController struct {
	selector string
	command  commands.Release
}

// NewBumpController creates a controller for the given selector.
func NewBumpController(selector string, command commands.Release) *BumpController {
	return &BumpController{selector: selector, command: command}
}

// NewBumpControllers creates one controller per bump selector.
func NewBumpControllers(command commands.Release) []*BumpController {
	selectors := []string{selectorMajor, selectorMinor, selectorPatch, selectorPreRelease, selectorSet}
	result := make([]*BumpController, 0, len(selectors))
	for _, selector := range selectors {
		result = append(result, NewBumpController(selector, command))
	}
	return result
}

const releaseLong = `Bumps the version in the manifest, commits the change and tags the commit
with the new version. The working tree must be clean apart from the manifest.

The commit message defaults to the bare version. With -m, every message must
contain exactly one %s, replaced by the new version:

  cargobump patch -m "chore(release): %s

  [skip ci]"`

// GetBind returns the Cobra command metadata for this selector.
func (it *BumpController) GetBind() entities.ControllerBind {
	switch it.selector {
	case selectorPreRelease:
		return entities.ControllerBind{
			Use:   "prerelease [label]",
			Short: "Bump to the next pre-release (1.2.3 -> 1.2.4-label.0 -> 1.2.4-label.1)",
			Long:  releaseLong,
			Args:  cobra.MaximumNArgs(1),
		}
	case selectorSet:
		return entities.ControllerBind{
			Use:   "set <version>",
			Short: "Set an explicit version, which must be greater than the current one",
			Long:  releaseLong,
			Args:  cobra.ExactArgs(1),
		}
	default:
		return entities.ControllerBind{
			Use:   it.selector,
			Short: fmt.Sprintf("Bump the %s version", it.selector),
			Long:  releaseLong,
			Args:  cobra.NoArgs,
		}
	}
}

// AddFlags adds the release flags to the given Cobra command.
func (it *BumpController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("message", "m", "",
		"Commit message template; %s is replaced with the new version")
	cmd.Flags().Bool("git-tag-version", true,
		"Commit and tag the change; false only rewrites the manifest")
	cmd.Flags().String("tag-prefix", "", "Prefix for the tag name (e.g. v)")
	cmd.Flags().Bool("annotate", false, "Create an annotated tag instead of a lightweight one")
	cmd.Flags().String("branch", "",
		"Branch that receives the commit; required when HEAD is detached")
	cmd.Flags().String("author-name", "", "Author and committer name (default: $GIT_AUTHOR_NAME)")
	cmd.Flags().String("author-email", "", "Author and committer email (default: $GIT_AUTHOR_EMAIL)")
	cmd.Flags().Bool("dry-run", false, "Show what would be done without making changes")
}

// Execute runs the release and prints the new version.
func (it *BumpController) Execute(cmd *cobra.Command, args []string) error {
	proj, err := resolveProject(cmd)
	if err != nil {
		return err
	}

	kind, err := it.bumpKind(args)
	if err != nil {
		return err
	}

	opts := it.releaseOptions(cmd, proj)
	opts.Bump = kind

	result, err := it.command.Execute(commandContext(cmd), opts)
	if err != nil {
		return err
	}

	if result.DryRun {
		logger.Info("Dry run complete, no files were modified.")
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.NewVersion)
	return nil
}

func (it *BumpController) bumpKind(args []string) (entities.BumpKind, error) {
	switch it.selector {
	case selectorPreRelease:
		label := ""
		if len(args) > 0 {
			label = args[0]
		}
		return entities.ParseBumpKind(selectorPreRelease, label)
	case selectorSet:
		target, err := entities.ParseVersion(args[0])
		if err != nil {
			return nil, err
		}
		return entities.Explicit{Target: target}, nil
	default:
		return entities.ParseBumpKind(it.selector, "")
	}
}

// releaseOptions merges flags over the config file; identity falls back to
// the git environment variables before the config file.
func (it *BumpController) releaseOptions(cmd *cobra.Command, proj *project) commands.ReleaseOptions {
	settings := proj.Settings
	flags := cmd.Flags()

	message := settings.Message
	if flags.Changed("message") {
		message, _ = flags.GetString("message")
	}
	commit := settings.ShouldCommit()
	if flags.Changed("git-tag-version") {
		commit, _ = flags.GetBool("git-tag-version")
	}
	tagPrefix := settings.TagPrefix
	if flags.Changed("tag-prefix") {
		tagPrefix, _ = flags.GetString("tag-prefix")
	}
	annotate := settings.Annotate
	if flags.Changed("annotate") {
		annotate, _ = flags.GetBool("annotate")
	}
	branch := settings.Branch
	if flags.Changed("branch") {
		branch, _ = flags.GetString("branch")
	}

	authorName, _ := flags.GetString("author-name")
	authorEmail, _ := flags.GetString("author-email")
	dryRun, _ := flags.GetBool("dry-run")

	author := entities.Identity{Name: authorName, Email: authorEmail}.
		Merge(identityFromEnv()).
		Merge(settings.AuthorIdentity())

	return commands.ReleaseOptions{
		ManifestPath: proj.ManifestPath,
		Table:        proj.Table,
		Message:      entities.CommitMessageTemplate(message),
		Author:       author,
		TagPrefix:    tagPrefix,
		Annotate:     annotate,
		TargetBranch: branch,
		Commit:       commit,
		DryRun:       dryRun,
	}
}

// identityFromEnv reads the identity git itself honours, author variables
// first.
func identityFromEnv() entities.Identity {
	return entities.Identity{
		Name:  os.Getenv("GIT_AUTHOR_NAME"),
		Email: os.Getenv("GIT_AUTHOR_EMAIL"),
	}.Merge(entities.Identity{
		Name:  os.Getenv("GIT_COMMITTER_NAME"),
		Email: os.Getenv("GIT_COMMITTER_EMAIL"),
	})
}
