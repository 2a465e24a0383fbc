package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/cargobump/internal/domain/commands"
	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

// CurrentController prints the version recorded in the manifest.
type CurrentController struct {
	command commands.Current
}

// NewCurrentController creates a new CurrentController.
func NewCurrentController(command commands.Current) *CurrentController {
	return &CurrentController{command: command}
}

// GetBind returns the Cobra command metadata for the current controller.
func (it *CurrentController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "current",
		Short: "Print the current manifest version",
		Args:  cobra.NoArgs,
	}
}

func (it *CurrentController) AddFlags(_ *cobra.Command) {}

// Execute prints the current version.
func (it *CurrentController) Execute(cmd *cobra.Command, _ []string) error {
	proj, err := resolveProject(cmd)
	if err != nil {
		return err
	}

	version, err := it.command.Execute(commandContext(cmd), commands.CurrentOptions{
		ManifestPath: proj.ManifestPath,
		Table:        proj.Table,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
