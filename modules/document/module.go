package document

import (
	"context"
	"embed"
	"io/fs"

	"github.com/standin-hq/standin/modules/document/infrastructure/persistence"
	"github.com/standin-hq/standin/modules/document/infrastructure/storage"
	"github.com/standin-hq/standin/modules/document/presentation/controllers"
	"github.com/standin-hq/standin/modules/document/services"
	"github.com/standin-hq/standin/pkg/application"
	"github.com/standin-hq/standin/pkg/configuration"
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

	store, err := storage.NewMinioStorage(configuration.Use().Minio)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		return err
	}

	app.RegisterServices(
		services.NewDocumentService(persistence.NewDocumentRepository(), store),
	)

	app.RegisterControllers(
		controllers.NewDocumentAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "document"
}
