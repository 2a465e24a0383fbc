package controllers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

// project is the manifest location and configuration resolved from the
// global flags, the working directory and an optional config file.
type project struct {
	Dir          string
	ManifestPath string
	Table        []string
	Settings     *entities.Settings
}

// AddPersistentFlags adds the flags shared by every subcommand.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("directory", "C", "",
		"Project directory (default: current directory)")
	cmd.PersistentFlags().String("manifest", "",
		"Manifest file name inside the project directory (default: Cargo.toml)")
	cmd.PersistentFlags().Bool("workspace", false,
		"Use the [workspace.package] version instead of [package]")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")
}

// NewCommand mounts a controller as a cobra subcommand.
func NewCommand(controller entities.Controller) *cobra.Command {
	bind := controller.GetBind()
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:           bind.Use,
		Short:         bind.Short,
		Long:          bind.Long,
		Args:          bind.Args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return controller.Execute(command, arguments)
		},
	}
	controller.AddFlags(cmd)
	return cmd
}

func resolveProject(cmd *cobra.Command) (*project, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	dir, _ := cmd.Flags().GetString("directory")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to read working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %q: %w", dir, err)
	}

	settings, err := loadSettings(cmd, dir)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("manifest") {
		settings.Manifest, _ = cmd.Flags().GetString("manifest")
	}
	if cmd.Flags().Changed("workspace") {
		settings.Workspace, _ = cmd.Flags().GetBool("workspace")
	}

	table := []string{"package"}
	if settings.Workspace {
		table = []string{"workspace", "package"}
	}

	return &project{
		Dir:          dir,
		ManifestPath: filepath.Join(dir, settings.ManifestName()),
		Table:        table,
		Settings:     settings,
	}, nil
}

func loadSettings(cmd *cobra.Command, dir string) (*entities.Settings, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		found, err := entities.FindConfigFile(dir)
		if err != nil {
			logger.Debugf("No config file found, using defaults: %v", err)
			return entities.DefaultSettings(), nil
		}
		cfgPath = found
	}

	logger.Debugf("Using config file: %s", cfgPath)
	settings, err := entities.NewSettings(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return settings, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
