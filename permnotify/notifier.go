// Package permnotify propagates guild membership changes to permission
// caches. The authoritative permission data lives with the host; this
// package only invalidates the cached view and announces the change so
// other nodes can do the same.
package permnotify

import (
	"context"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/cache"
	"go.uber.org/zap"
)

// RefreshChannel carries the UUIDs of players whose cached permissions are
// stale.
const RefreshChannel = "guild.perm.refresh"

const keyPrefix = "perm:"

// Notifier invalidates a player's cached permission entry and publishes the
// refresh so every subscribed node drops its copy too.
type Notifier struct {
	cache  cache.Cache
	pubsub cache.PubSub
	logger *zap.Logger
}

// New creates a Notifier. pubsub may be nil; then only the local cache
// entry is invalidated.
func New(c cache.Cache, ps cache.PubSub, logger *zap.Logger) *Notifier {
	return &Notifier{cache: c, pubsub: ps, logger: logger}
}

// Refresh drops the player's cached permission entry and announces the
// change. The first error encountered is returned; the caller treats it as
// best-effort.
func (n *Notifier) Refresh(ctx context.Context, playerUUID uuid.UUID) error {
	if err := n.cache.Del(ctx, keyPrefix+playerUUID.String()); err != nil {
		return err
	}
	if n.pubsub == nil {
		return nil
	}
	if err := n.pubsub.Publish(ctx, RefreshChannel, playerUUID.String()); err != nil {
		return err
	}
	n.logger.Debug("permission refresh published",
		zap.String("player_uuid", playerUUID.String()))
	return nil
}
