package guild

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/guildlog"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddGuildMember adds a player to a guild with the given role. It fails when
// the player already belongs to any guild, the guild is frozen, or the guild
// is at capacity. The unique index on player_uuid backs the exclusivity
// check, so a racing double-join cannot both commit.
func (svc *Service) AddGuildMember(ctx context.Context, guildID int64, p PlayerRef, role model.GuildRole) bool {
	if !role.Valid() || p.UUID == uuid.Nil {
		return false
	}
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil || g.Frozen {
		return false
	}
	if svc.GetGuildMember(ctx, p.UUID) != nil {
		return false
	}
	var count int64
	if err := svc.db.WithContext(ctx).Model(&model.GuildMember{}).
		Where("guild_id = ?", guildID).Count(&count).Error; err != nil {
		svc.logger.Error("member count failed", zap.Int64("guild_id", guildID), zap.Error(err))
		return false
	}
	if count >= int64(g.MaxMembers) {
		return false
	}

	member := &model.GuildMember{
		GuildID:    guildID,
		PlayerUUID: p.UUID,
		PlayerName: p.Name,
		Role:       role,
	}
	if err := svc.db.WithContext(ctx).Create(member).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			svc.logger.Error("member insert failed",
				zap.Int64("guild_id", guildID),
				zap.String("player_uuid", p.UUID.String()),
				zap.Error(err))
		}
		return false
	}

	svc.detach("perm_refresh", func(ctx context.Context) {
		svc.refreshPermissions(ctx, p.UUID)
	})
	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   g.Name,
		PlayerUUID:  p.UUID,
		PlayerName:  p.Name,
		Type:        model.LogMemberJoined,
		Description: p.Name + " joined the guild",
	})
	svc.notifyGuildDetached(g.ID, "member_joined", map[string]interface{}{
		"guild_id":    g.ID,
		"player_uuid": p.UUID,
		"player_name": p.Name,
	})
	return true
}

// RemoveGuildMember removes a player from their guild. The LEADER can only
// be removed by leaving themselves; otherwise the requester must be the
// player, or hold LEADER/OFFICER authority in the same guild.
func (svc *Service) RemoveGuildMember(ctx context.Context, playerUUID, requester uuid.UUID) bool {
	m := svc.GetGuildMember(ctx, playerUUID)
	if m == nil {
		return false
	}
	self := playerUUID == requester
	if m.Role == model.RoleLeader && !self {
		return false
	}
	reqName := m.PlayerName
	if !self {
		req := svc.GetGuildMember(ctx, requester)
		if req == nil || req.GuildID != m.GuildID || !req.Role.CanManage() {
			return false
		}
		reqName = req.PlayerName
	}

	if err := svc.db.WithContext(ctx).Delete(&model.GuildMember{}, m.ID).Error; err != nil {
		svc.logger.Error("member removal failed",
			zap.String("player_uuid", playerUUID.String()), zap.Error(err))
		return false
	}

	g := svc.GetGuildByID(ctx, m.GuildID)
	guildName := ""
	if g != nil {
		guildName = g.Name
	}
	svc.detach("perm_refresh", func(ctx context.Context) {
		svc.refreshPermissions(ctx, playerUUID)
	})
	logType := model.LogMemberKicked
	desc := m.PlayerName + " was kicked by " + reqName
	if self {
		logType = model.LogMemberLeft
		desc = m.PlayerName + " left the guild"
	}
	svc.journal.Record(guildlog.Entry{
		GuildID:     m.GuildID,
		GuildName:   guildName,
		PlayerUUID:  requester,
		PlayerName:  reqName,
		Type:        logType,
		Description: desc,
	})
	svc.notifyGuildDetached(m.GuildID, "member_removed", map[string]interface{}{
		"guild_id":    m.GuildID,
		"player_uuid": playerUUID,
		"player_name": m.PlayerName,
		"kicked":      !self,
	})
	return true
}

// UpdateMemberRole changes a member's role. Only the guild's LEADER may do
// so. Transferring leadership demotes the previous leader to OFFICER in the
// same transaction, so a guild never ends up with two leaders.
func (svc *Service) UpdateMemberRole(ctx context.Context, playerUUID uuid.UUID, newRole model.GuildRole, requester uuid.UUID) bool {
	if !newRole.Valid() {
		return false
	}
	m := svc.GetGuildMember(ctx, playerUUID)
	if m == nil || m.Role == newRole {
		return false
	}
	req := svc.GetGuildMember(ctx, requester)
	if req == nil || req.GuildID != m.GuildID || req.Role != model.RoleLeader {
		return false
	}
	// The leader's own role only changes through a transfer.
	if m.Role == model.RoleLeader {
		return false
	}

	var logType model.GuildLogType
	var desc string
	if newRole == model.RoleLeader {
		err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&model.GuildMember{}).
				Where("id = ?", req.ID).
				Update("role", model.RoleOfficer).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.GuildMember{}).
				Where("id = ?", m.ID).
				Update("role", model.RoleLeader).Error; err != nil {
				return err
			}
			return tx.Model(&model.Guild{}).
				Where("id = ?", m.GuildID).
				Updates(map[string]interface{}{
					"leader_uuid": m.PlayerUUID,
					"leader_name": m.PlayerName,
				}).Error
		})
		if err != nil {
			svc.logger.Error("leader transfer failed",
				zap.Int64("guild_id", m.GuildID), zap.Error(err))
			return false
		}
		logType = model.LogLeaderTransferred
		desc = "leadership transferred from " + req.PlayerName + " to " + m.PlayerName
	} else {
		if err := svc.db.WithContext(ctx).Model(&model.GuildMember{}).
			Where("id = ?", m.ID).
			Update("role", newRole).Error; err != nil {
			svc.logger.Error("role update failed",
				zap.String("player_uuid", playerUUID.String()), zap.Error(err))
			return false
		}
		if newRole == model.RoleOfficer {
			logType = model.LogMemberPromoted
			desc = m.PlayerName + " promoted to officer"
		} else {
			logType = model.LogMemberDemoted
			desc = m.PlayerName + " demoted to member"
		}
	}

	g := svc.GetGuildByID(ctx, m.GuildID)
	guildName := ""
	if g != nil {
		guildName = g.Name
	}
	svc.detach("perm_refresh", func(ctx context.Context) {
		svc.refreshPermissions(ctx, playerUUID)
		if newRole == model.RoleLeader {
			svc.refreshPermissions(ctx, requester)
		}
	})
	svc.journal.Record(guildlog.Entry{
		GuildID:     m.GuildID,
		GuildName:   guildName,
		PlayerUUID:  requester,
		PlayerName:  req.PlayerName,
		Type:        logType,
		Description: desc,
		Details: map[string]interface{}{
			"player_uuid": m.PlayerUUID,
			"new_role":    newRole,
		},
	})
	svc.notifyGuildDetached(m.GuildID, "role_changed", map[string]interface{}{
		"guild_id":    m.GuildID,
		"player_uuid": m.PlayerUUID,
		"player_name": m.PlayerName,
		"new_role":    newRole,
	})
	return true
}
