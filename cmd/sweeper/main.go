package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/standin-hq/standin/modules/delegation/infrastructure/persistence"
	"github.com/standin-hq/standin/modules/delegation/services"
	orgpersistence "github.com/standin-hq/standin/modules/org/infrastructure/persistence"
	"github.com/standin-hq/standin/pkg/composables"
	"github.com/standin-hq/standin/pkg/configuration"
	"github.com/standin-hq/standin/pkg/eventbus"
)

// The sweeper is a one-shot batch binary meant to run from cron: it retires
// expired delegations and re-propagates chains for owners that are still
// away, then exits.
func main() {
	conf := configuration.Use()
	log := conf.Logger()

	timeout, err := time.ParseDuration(conf.Sweeper.BatchTimeout)
	if err != nil {
		log.WithError(err).Fatal("invalid sweeper timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		log.WithError(err).Fatal("connecting to postgres")
	}
	defer pool.Close()

	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithLogger(ctx, logrus.NewEntry(log))

	engine := services.NewDelegationService(
		persistence.NewDelegationRepository(),
		orgpersistence.NewUserRepository(),
		orgpersistence.NewHierarchyRepository(),
		eventbus.NewEventPublisher(log),
	)
	sweeper := services.NewSweeperService(persistence.NewDelegationRepository(), engine)

	var swept int
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		var sweepErr error
		swept, sweepErr = sweeper.Sweep(txCtx)
		return sweepErr
	})
	if err != nil {
		log.WithError(err).Fatal("sweep failed")
	}
	log.WithField("swept", swept).Info("sweep finished")
}
