package services

import (
	"context"
	"time"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/pkg/composables"
	"github.com/standin-hq/standin/pkg/metrics"
)

// SweeperService retires time-boxed delegations whose expiration has passed.
// Sweep is the single entry point the scheduler calls; the interval itself is
// owned by cron or an equivalent external timer.
type SweeperService struct {
	delegations delegation.Repository
	engine      *DelegationService
	now         func() time.Time
}

func NewSweeperService(delegations delegation.Repository, engine *DelegationService) *SweeperService {
	return &SweeperService{
		delegations: delegations,
		engine:      engine,
		now:         time.Now,
	}
}

// Sweep processes every expired delegation in the caller's transaction scope:
// manual time-boxed rows simply lapse and are deleted; automatic ones keep
// the substitute and only lose their expiration. When the row's owner is
// still absent and ends up with no delegations at all, the chain is
// propagated anew.
func (s *SweeperService) Sweep(ctx context.Context) (int, error) {
	log := composables.UseLogger(ctx)

	expired, err := s.delegations.ListExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	for _, row := range expired {
		if row.Bounded {
			if err := s.delegations.SetExpiration(ctx, row.OwnerID, row.DelegateID, nil); err != nil {
				return 0, err
			}
		} else {
			if err := s.delegations.DeletePair(ctx, row.OwnerID, row.DelegateID); err != nil {
				return 0, err
			}
		}
		metrics.SweepExpired.Inc()

		if !row.OwnerAvailable {
			if err := s.engine.RepropagateIfUncovered(ctx, row.OwnerID); err != nil {
				return 0, err
			}
		}
	}

	metrics.SweepRuns.Inc()
	if len(expired) > 0 {
		log.WithField("expired", len(expired)).Info("expiration sweep completed")
	}
	return len(expired), nil
}
