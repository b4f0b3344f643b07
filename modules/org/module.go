package org

import (
	"embed"
	"io/fs"

	"github.com/standin-hq/standin/modules/org/infrastructure/persistence"
	"github.com/standin-hq/standin/modules/org/presentation/controllers"
	"github.com/standin-hq/standin/modules/org/services"
	"github.com/standin-hq/standin/pkg/application"
)

//go:embed infrastructure/persistence/migrations/*.sql
var migrationFiles embed.FS

// MigrationsFS exposes the module's embedded migrations, rooted at the
// directory goose reads from.
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(migrationFiles, "infrastructure/persistence/migrations")
}

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	migrations, err := MigrationsFS()
	if err != nil {
		return err
	}
	app.RegisterMigrations(migrations)

	edges := persistence.NewHierarchyRepository()
	hierarchyService := services.NewHierarchyService(edges)

	app.RegisterServices(
		services.NewOrganizationService(persistence.NewOrganizationRepository()),
		hierarchyService,
		services.NewUserService(
			persistence.NewUserRepository(),
			edges,
			hierarchyService,
			app.EventPublisher(),
		),
	)

	app.RegisterControllers(
		controllers.NewOrgAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "org"
}
