package adapter

import (
	"context"

	"sim-activation-portal/internal/domain/model"
)

// SimInventory is the port for the upstream SIM inventory service.
// Implementations return an error for transport failures, non-2xx answers
// and undecodable bodies; an unavailable SIM is a successful answer.
type SimInventory interface {
	Availability(ctx context.Context, serial string) (*model.SimAvailability, error)
}
