package guild

import (
	"context"

	"github.com/google/uuid"
)

// PermissionNotifier is told when a player's guild membership or role
// changed so cached permission data can be refreshed. Failures are
// best-effort and never affect the triggering operation.
type PermissionNotifier interface {
	Refresh(ctx context.Context, playerUUID uuid.UUID) error
}

// Currency integrates with the host economy: refunds on dissolution and
// display formatting of amounts.
type Currency interface {
	Deposit(ctx context.Context, playerUUID uuid.UUID, amount int64) error
	Format(amount int64) string
}

// WorldResolver reports whether a world is currently available. A guild
// home in an unavailable world reads as absent.
type WorldResolver interface {
	Resolve(name string) bool
}

// WorldList is a WorldResolver backed by a fixed set of world names.
type WorldList []string

// Resolve reports whether name is in the list.
func (w WorldList) Resolve(name string) bool {
	for _, n := range w {
		if n == name {
			return true
		}
	}
	return false
}

// Location is a guild home position within a world.
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}
