package guild

import (
	"context"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/guildlog"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
)

// SetGuildHome sets the guild's home location. LEADER only. The world must
// resolve when a world resolver is wired.
func (svc *Service) SetGuildHome(ctx context.Context, guildID int64, loc Location, requester uuid.UUID) bool {
	if loc.World == "" {
		return false
	}
	if svc.worlds != nil && !svc.worlds.Resolve(loc.World) {
		return false
	}
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil {
		return false
	}
	req := svc.GetGuildMember(ctx, requester)
	if req == nil || req.GuildID != guildID || req.Role != model.RoleLeader {
		return false
	}

	err := svc.db.WithContext(ctx).Model(&model.Guild{}).
		Where("id = ?", guildID).
		Updates(map[string]interface{}{
			"home_world": loc.World,
			"home_x":     loc.X,
			"home_y":     loc.Y,
			"home_z":     loc.Z,
			"home_yaw":   loc.Yaw,
			"home_pitch": loc.Pitch,
		}).Error
	if err != nil {
		svc.logger.Error("guild home update failed",
			zap.Int64("guild_id", guildID), zap.Error(err))
		return false
	}

	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   g.Name,
		PlayerUUID:  requester,
		PlayerName:  req.PlayerName,
		Type:        model.LogHomeSet,
		Description: "guild home set in " + loc.World,
		Details: map[string]interface{}{
			"world": loc.World,
			"x":     loc.X,
			"y":     loc.Y,
			"z":     loc.Z,
		},
	})
	return true
}

// GetGuildHome returns the guild's home location, or nil when no home is set
// or its world no longer resolves.
func (svc *Service) GetGuildHome(ctx context.Context, guildID int64) *Location {
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil || !g.HasHome() {
		return nil
	}
	if svc.worlds != nil && !svc.worlds.Resolve(g.HomeWorld) {
		return nil
	}
	return &Location{
		World: g.HomeWorld,
		X:     g.HomeX,
		Y:     g.HomeY,
		Z:     g.HomeZ,
		Yaw:   g.HomeYaw,
		Pitch: g.HomePitch,
	}
}
