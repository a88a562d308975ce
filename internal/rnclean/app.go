// Package rnclean wires the cleaning orchestrator, its stores, and the
// supporting services into one App shared by every command.
package rnclean

import (
	"github.com/hay-kot/rnclean/internal/cleaning"
	"github.com/hay-kot/rnclean/internal/core/config"
	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/settings"
	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/internal/data/db"
)

// App is the central entry point for all rnclean operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Cleaning    *cleaning.Orchestrator
	Catalog     *task.Catalog
	Settings    settings.Store
	Preferences Preferences
	Doctor      *DoctorService

	Bus    *eventbus.EventBus
	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	orch *cleaning.Orchestrator,
	catalog *task.Catalog,
	settingsStore settings.Store,
	prefs Preferences,
	doctor *DoctorService,
	bus *eventbus.EventBus,
	cfg *config.Config,
	database *db.DB,
) *App {
	return &App{
		Cleaning:    orch,
		Catalog:     catalog,
		Settings:    settingsStore,
		Preferences: prefs,
		Doctor:      doctor,
		Bus:         bus,
		Config:      cfg,
		DB:          database,
	}
}
