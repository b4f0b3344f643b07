package delegation

import (
	"embed"
	"io/fs"

	"github.com/standin-hq/standin/modules/delegation/infrastructure/persistence"
	"github.com/standin-hq/standin/modules/delegation/presentation/controllers"
	"github.com/standin-hq/standin/modules/delegation/services"
	orgpersistence "github.com/standin-hq/standin/modules/org/infrastructure/persistence"
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

	engine := services.NewDelegationService(
		persistence.NewDelegationRepository(),
		orgpersistence.NewUserRepository(),
		orgpersistence.NewHierarchyRepository(),
		app.EventPublisher(),
	)

	app.RegisterServices(
		engine,
		services.NewSweeperService(persistence.NewDelegationRepository(), engine),
	)

	app.RegisterControllers(
		controllers.NewDelegationAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "delegation"
}
