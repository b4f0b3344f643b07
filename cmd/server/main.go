package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/standin-hq/standin/internal/server"
	"github.com/standin-hq/standin/modules"
	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/pkg/application"
	"github.com/standin-hq/standin/pkg/configuration"
	"github.com/standin-hq/standin/pkg/eventbus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf := configuration.Use()
	log := conf.Logger()

	if err := run(conf, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(conf *configuration.Configuration, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer pool.Close()

	bus := eventbus.NewEventPublisher(log)
	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: bus,
		Logger:   log,
	})
	if err := modules.Load(app); err != nil {
		return err
	}
	if err := applyMigrations(app); err != nil {
		return err
	}
	subscribeAuditLog(bus, log)

	srv := server.Default(conf, app)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", conf.Address).Info("server listening")
		errCh <- srv.ListenAndServe(conf.Address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func applyMigrations(app application.Application) error {
	db := stdlib.OpenDBFromPool(app.DB())
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	for _, fsys := range app.Migrations() {
		goose.SetBaseFS(fsys)
		if err := goose.Up(db, "."); err != nil {
			return err
		}
	}
	goose.SetBaseFS(nil)
	return nil
}

// subscribeAuditLog writes one structured line per domain event, which is the
// sole consumer the event bus ships with.
func subscribeAuditLog(bus eventbus.EventBus, log *logrus.Logger) {
	bus.Subscribe(func(e user.CreatedEvent) {
		log.WithFields(logrus.Fields{
			"user_id":         e.User.ID(),
			"organization_id": e.User.OrganizationID(),
		}).Info("user created")
	})
	bus.Subscribe(func(e user.AvailabilityChangedEvent) {
		log.WithFields(logrus.Fields{
			"user_id":   e.UserID,
			"available": e.Available,
		}).Info("user availability changed")
	})
	bus.Subscribe(func(e user.ThresholdChangedEvent) {
		log.WithFields(logrus.Fields{
			"user_id":   e.UserID,
			"threshold": e.Threshold,
		}).Info("delegation threshold changed")
	})
	bus.Subscribe(func(e delegation.CreatedEvent) {
		log.WithFields(logrus.Fields{
			"owner_id":    e.Delegation.OwnerID,
			"delegate_id": e.Delegation.DelegateID,
			"bounded":     e.Delegation.Bounded,
		}).Info("delegation created")
	})
	bus.Subscribe(func(e delegation.RevokedEvent) {
		log.WithFields(logrus.Fields{
			"owner_id":    e.OwnerID,
			"delegate_id": e.DelegateID,
		}).Info("delegation revoked")
	})
}
