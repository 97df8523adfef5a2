package guild

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
)

// SendInvitation invites a player into the inviter's guild. The inviter
// needs LEADER/OFFICER authority, the target must be guild-less, and at most
// one live (pending, unexpired) invitation may exist per guild and player.
func (svc *Service) SendInvitation(ctx context.Context, target PlayerRef, inviter uuid.UUID) bool {
	if target.UUID == uuid.Nil || target.UUID == inviter {
		return false
	}
	inv := svc.GetGuildMember(ctx, inviter)
	if inv == nil || !inv.Role.CanManage() {
		return false
	}
	if svc.GetGuildMember(ctx, target.UUID) != nil {
		return false
	}
	now := time.Now()
	var live int64
	err := svc.db.WithContext(ctx).Model(&model.GuildInvite{}).
		Where("guild_id = ? AND player_uuid = ? AND status = ? AND expires_at > ?",
			inv.GuildID, target.UUID, model.InvitePending, now).
		Count(&live).Error
	if err != nil {
		svc.logger.Error("invite dedup check failed",
			zap.Int64("guild_id", inv.GuildID), zap.Error(err))
		return false
	}
	if live > 0 {
		return false
	}

	invite := &model.GuildInvite{
		GuildID:     inv.GuildID,
		PlayerUUID:  target.UUID,
		PlayerName:  target.Name,
		InviterUUID: inviter,
		InviterName: inv.PlayerName,
		Status:      model.InvitePending,
		ExpiresAt:   now.Add(svc.cfg.InviteExpiry),
	}
	if err := svc.db.WithContext(ctx).Create(invite).Error; err != nil {
		svc.logger.Error("invite insert failed",
			zap.Int64("guild_id", inv.GuildID), zap.Error(err))
		return false
	}

	g := svc.GetGuildByID(ctx, inv.GuildID)
	guildName := ""
	if g != nil {
		guildName = g.Name
	}
	svc.notifyPlayersDetached([]uuid.UUID{target.UUID}, "guild_invite", map[string]interface{}{
		"invite_id":    invite.ID,
		"guild_id":     invite.GuildID,
		"guild_name":   guildName,
		"inviter_name": inv.PlayerName,
		"expires_at":   invite.ExpiresAt,
	})
	return true
}

// ProcessInvitation accepts or declines an invitation. Only the invited
// player may respond, and only while the invitation is pending and
// unexpired. Acceptance runs the regular join path; when the join fails the
// invitation stays PENDING.
func (svc *Service) ProcessInvitation(ctx context.Context, inviteID int64, accept bool, responder uuid.UUID) bool {
	var invite model.GuildInvite
	if err := svc.db.WithContext(ctx).First(&invite, inviteID).Error; err != nil {
		svc.logReadError("invite", err)
		return false
	}
	if invite.PlayerUUID != responder || invite.Status != model.InvitePending {
		return false
	}
	if time.Now().After(invite.ExpiresAt) {
		return false
	}

	status := model.InviteDeclined
	if accept {
		if !svc.AddGuildMember(ctx, invite.GuildID, PlayerRef{UUID: invite.PlayerUUID, Name: invite.PlayerName}, model.RoleMember) {
			return false
		}
		status = model.InviteAccepted
	}
	err := svc.db.WithContext(ctx).Model(&model.GuildInvite{}).
		Where("id = ?", invite.ID).
		Update("status", status).Error
	if err != nil {
		svc.logger.Error("invite status update failed",
			zap.Int64("invite_id", invite.ID), zap.Error(err))
		return false
	}

	svc.notifyPlayersDetached([]uuid.UUID{invite.InviterUUID}, "invite_processed", map[string]interface{}{
		"invite_id":   invite.ID,
		"guild_id":    invite.GuildID,
		"player_name": invite.PlayerName,
		"status":      status,
	})
	return true
}

// PendingInvitations returns a player's live invitations, newest first.
// Expired rows stay in the store but never surface here.
func (svc *Service) PendingInvitations(ctx context.Context, playerUUID uuid.UUID) []model.GuildInvite {
	var invites []model.GuildInvite
	err := svc.db.WithContext(ctx).
		Where("player_uuid = ? AND status = ? AND expires_at > ?",
			playerUUID, model.InvitePending, time.Now()).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		svc.logReadError("pending invites", err)
		return nil
	}
	return invites
}
