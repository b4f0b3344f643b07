package application

import (
	"fmt"
	"io/fs"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/standin-hq/standin/pkg/eventbus"
)

// Controller registers a group of HTTP routes on the shared router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module is a self-contained feature slice: it wires its repositories,
// services, and controllers into the application at startup.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	Logger() *logrus.Logger

	RegisterServices(services ...any)
	Service(service any) any
	RegisterControllers(controllers ...Controller)
	Controllers() []Controller
	RegisterMigrations(fsys fs.FS)
	Migrations() []fs.FS
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:     opts.Pool,
		eventBus: opts.EventBus,
		logger:   opts.Logger,
		services: map[reflect.Type]any{},
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	services    map[reflect.Type]any
	controllers []Controller
	migrations  []fs.FS
}

func (app *application) DB() *pgxpool.Pool                 { return app.pool }
func (app *application) EventPublisher() eventbus.EventBus { return app.eventBus }
func (app *application) Logger() *logrus.Logger            { return app.logger }

func (app *application) RegisterServices(services ...any) {
	for _, service := range services {
		app.services[reflect.TypeOf(service).Elem()] = service
	}
}

// Service looks a service up by the type of its zero value, e.g.
// app.Service(services.DelegationService{}).
func (app *application) Service(service any) any {
	svc, ok := app.services[reflect.TypeOf(service)]
	if !ok {
		panic(fmt.Sprintf("service %T not registered", service))
	}
	return svc
}

func (app *application) RegisterControllers(controllers ...Controller) {
	app.controllers = append(app.controllers, controllers...)
}

func (app *application) Controllers() []Controller {
	return app.controllers
}

func (app *application) RegisterMigrations(fsys fs.FS) {
	app.migrations = append(app.migrations, fsys)
}

func (app *application) Migrations() []fs.FS {
	return app.migrations
}
