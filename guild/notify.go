package guild

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/player"
	"go.uber.org/zap"
)

// notifyPlayersDetached delivers a packet to the given players' sessions as
// a detached task. Offline players are skipped.
func (svc *Service) notifyPlayersDetached(players []uuid.UUID, pktType string, payload interface{}) {
	if svc.sessions == nil || len(players) == 0 {
		return
	}
	svc.detach("notify", func(_ context.Context) {
		raw, err := json.Marshal(payload)
		if err != nil {
			svc.logger.Warn("notification payload not serializable",
				zap.String("type", pktType), zap.Error(err))
			return
		}
		svc.sessions.NotifyPlayers(players, &player.Packet{Type: pktType, Payload: raw})
	})
}

// notifyGuildDetached looks up the guild's current members and delivers a
// packet to the online ones, all as a detached task.
func (svc *Service) notifyGuildDetached(guildID int64, pktType string, payload interface{}) {
	if svc.sessions == nil {
		return
	}
	svc.detach("notify_guild", func(ctx context.Context) {
		members := svc.GetGuildMembers(ctx, guildID)
		if len(members) == 0 {
			return
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			svc.logger.Warn("notification payload not serializable",
				zap.String("type", pktType), zap.Error(err))
			return
		}
		svc.sessions.NotifyPlayers(memberUUIDs(members), &player.Packet{Type: pktType, Payload: raw})
	})
}
