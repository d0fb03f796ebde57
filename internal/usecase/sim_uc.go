package usecase

import (
	"context"

	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/adapter"
	"sim-activation-portal/internal/infra/logging"
	"sim-activation-portal/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SimUseCase = (*simUC)(nil)

// SimUseCase resolves SIM serials against the inventory. Lookup fails
// closed: every failure mode collapses to model.NotEligible.
type SimUseCase interface {
	Lookup(ctx context.Context, serial string) model.SimLookup
}

type simUC struct {
	inventory adapter.SimInventory
	log       *zerolog.Logger
	dev       bool
}

func NewSimUseCase(inventory adapter.SimInventory, logger *zerolog.Logger, dev bool) *simUC {
	l := logger.With().Str("component", "SimUC").Logger()
	return &simUC{inventory: inventory, log: &l, dev: dev}
}

func (s *simUC) Lookup(ctx context.Context, serial string) model.SimLookup {
	defer logging.TraceDuration(s.log, "SimUC.Lookup")()

	if serial == "" {
		return model.NotEligible()
	}
	if !model.ValidSerial(serial) {
		metrics.IncSimLookup("invalid")
		return model.NotEligible()
	}

	a, err := s.inventory.Availability(ctx, serial)
	if err != nil {
		metrics.IncSimLookup("error")
		logging.With(ctx, s.log).Warn().Err(err).
			Str("sim", logging.Redact(serial, s.dev)).
			Msg("sim availability lookup failed")
		return model.NotEligible()
	}
	if a == nil || !a.Available {
		metrics.IncSimLookup("unavailable")
		return model.NotEligible()
	}

	metrics.IncSimLookup("eligible")
	return model.Eligible(*a)
}
