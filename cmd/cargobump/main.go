package main

import (
	"errors"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/cargobump/internal"
	"github.com/rios0rios0/cargobump/internal/domain/commands"
	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/infrastructure/controllers"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "cargobump",
		Short: "Bump the version of a Cargo package, commit and tag it",
		Long: `Rewrites the version field of a Cargo.toml in place, keeping every other byte
of the file, then commits the change and tags the commit with the new version.

Usage:
  cargobump current              Print the current version
  cargobump patch                1.2.3 -> 1.2.4
  cargobump minor                1.2.3 -> 1.3.0
  cargobump major                1.2.3 -> 2.0.0
  cargobump prerelease rc        1.2.3 -> 1.2.4-rc.0
  cargobump set 2.0.0-beta.1     Set an explicit, greater version`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	// Global persistent flags
	controllers.AddPersistentFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		rootCmd.AddCommand(controllers.NewCommand(controller))
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()

	// Add all subcommands
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		fields := logger.Fields{}
		var releaseErr *commands.ReleaseError
		if errors.As(err, &releaseErr) {
			fields["step"] = releaseErr.Step
		}
		if kind := entities.KindOf(err); kind != "" {
			fields["kind"] = kind
		}
		logger.WithFields(fields).Errorf("Error executing 'cargobump': %s", err)
		os.Exit(1)
	}
}
