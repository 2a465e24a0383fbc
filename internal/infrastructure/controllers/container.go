package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewCurrentController); err != nil {
		return err
	}
	if err := container.Provide(NewBumpControllers); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	currentController *CurrentController,
	bumpControllers []*BumpController,
) *[]entities.Controller {
	controllers := []entities.Controller{currentController}
	for _, bump := range bumpControllers {
		controllers = append(controllers, bump)
	}
	return &controllers
}
