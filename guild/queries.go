package guild

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Read accessors. Each is a direct mapped query with no side effects;
// store failures are logged and yield nil / empty results.

// GetGuildByID returns the guild with the given id, or nil.
func (svc *Service) GetGuildByID(ctx context.Context, id int64) *model.Guild {
	var g model.Guild
	if err := svc.db.WithContext(ctx).First(&g, id).Error; err != nil {
		svc.logReadError("guild by id", err)
		return nil
	}
	return &g
}

// GetGuildByName returns the guild with the given name, or nil.
func (svc *Service) GetGuildByName(ctx context.Context, name string) *model.Guild {
	var g model.Guild
	if err := svc.db.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		svc.logReadError("guild by name", err)
		return nil
	}
	return &g
}

// GetGuildByTag returns the guild with the given tag, or nil.
func (svc *Service) GetGuildByTag(ctx context.Context, tag string) *model.Guild {
	var g model.Guild
	if err := svc.db.WithContext(ctx).Where("tag = ?", tag).First(&g).Error; err != nil {
		svc.logReadError("guild by tag", err)
		return nil
	}
	return &g
}

// GetGuildMember returns the membership record for a player, or nil when the
// player belongs to no guild.
func (svc *Service) GetGuildMember(ctx context.Context, playerUUID uuid.UUID) *model.GuildMember {
	var m model.GuildMember
	if err := svc.db.WithContext(ctx).Where("player_uuid = ?", playerUUID).First(&m).Error; err != nil {
		svc.logReadError("guild member", err)
		return nil
	}
	return &m
}

// GetPlayerGuild returns the guild a player belongs to, or nil.
func (svc *Service) GetPlayerGuild(ctx context.Context, playerUUID uuid.UUID) *model.Guild {
	m := svc.GetGuildMember(ctx, playerUUID)
	if m == nil {
		return nil
	}
	return svc.GetGuildByID(ctx, m.GuildID)
}

// GetGuildMembers returns all members of a guild.
func (svc *Service) GetGuildMembers(ctx context.Context, guildID int64) []model.GuildMember {
	var members []model.GuildMember
	err := svc.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		svc.logReadError("guild members", err)
		return nil
	}
	return members
}

// GetAllGuilds returns every guild.
func (svc *Service) GetAllGuilds(ctx context.Context) []model.Guild {
	var guilds []model.Guild
	if err := svc.db.WithContext(ctx).Order("name ASC").Find(&guilds).Error; err != nil {
		svc.logReadError("all guilds", err)
		return nil
	}
	return guilds
}

// logReadError logs store failures; "record not found" is an expected
// lookup miss, not an error.
func (svc *Service) logReadError(what string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	svc.logger.Error("store read failed", zap.String("query", what), zap.Error(err))
}
