package guild

import (
	"context"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
)

// SubmitApplication files a join request from a player to a guild. A player
// may hold at most one pending application per guild; already-guilded
// players are rejected up front.
func (svc *Service) SubmitApplication(ctx context.Context, guildID int64, applicant PlayerRef, message string) bool {
	if applicant.UUID == uuid.Nil {
		return false
	}
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil {
		return false
	}
	if svc.GetGuildMember(ctx, applicant.UUID) != nil {
		return false
	}
	var pending int64
	err := svc.db.WithContext(ctx).Model(&model.GuildApplication{}).
		Where("guild_id = ? AND player_uuid = ? AND status = ?",
			guildID, applicant.UUID, model.ApplicationPending).
		Count(&pending).Error
	if err != nil {
		svc.logger.Error("application dedup check failed",
			zap.Int64("guild_id", guildID), zap.Error(err))
		return false
	}
	if pending > 0 {
		return false
	}

	app := &model.GuildApplication{
		GuildID:    guildID,
		PlayerUUID: applicant.UUID,
		PlayerName: applicant.Name,
		Message:    message,
		Status:     model.ApplicationPending,
	}
	if err := svc.db.WithContext(ctx).Create(app).Error; err != nil {
		svc.logger.Error("application insert failed",
			zap.Int64("guild_id", guildID), zap.Error(err))
		return false
	}

	svc.notifyGuildDetached(guildID, "application_received", map[string]interface{}{
		"guild_id":    guildID,
		"player_uuid": applicant.UUID,
		"player_name": applicant.Name,
		"message":     message,
	})
	return true
}

// ProcessApplication approves or rejects a pending application. The
// requester needs LEADER/OFFICER authority in the application's guild.
// Approval runs the regular join path, so capacity, frozen state and
// membership exclusivity still apply; when the join fails the application
// stays PENDING.
func (svc *Service) ProcessApplication(ctx context.Context, applicationID int64, approve bool, requester uuid.UUID) bool {
	var app model.GuildApplication
	if err := svc.db.WithContext(ctx).First(&app, applicationID).Error; err != nil {
		svc.logReadError("application", err)
		return false
	}
	if app.Status != model.ApplicationPending {
		return false
	}
	req := svc.GetGuildMember(ctx, requester)
	if req == nil || req.GuildID != app.GuildID || !req.Role.CanManage() {
		return false
	}

	status := model.ApplicationRejected
	if approve {
		if !svc.AddGuildMember(ctx, app.GuildID, PlayerRef{UUID: app.PlayerUUID, Name: app.PlayerName}, model.RoleMember) {
			return false
		}
		status = model.ApplicationApproved
	}
	err := svc.db.WithContext(ctx).Model(&model.GuildApplication{}).
		Where("id = ?", app.ID).
		Update("status", status).Error
	if err != nil {
		svc.logger.Error("application status update failed",
			zap.Int64("application_id", app.ID), zap.Error(err))
		return false
	}

	svc.notifyPlayersDetached([]uuid.UUID{app.PlayerUUID}, "application_processed", map[string]interface{}{
		"guild_id": app.GuildID,
		"status":   status,
	})
	return true
}

// GetGuildApplications returns a guild's pending applications, oldest first.
func (svc *Service) GetGuildApplications(ctx context.Context, guildID int64) []model.GuildApplication {
	var apps []model.GuildApplication
	err := svc.db.WithContext(ctx).
		Where("guild_id = ? AND status = ?", guildID, model.ApplicationPending).
		Order("created_at ASC").
		Find(&apps).Error
	if err != nil {
		svc.logReadError("guild applications", err)
		return nil
	}
	return apps
}
