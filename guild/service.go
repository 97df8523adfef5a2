package guild

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/cache"
	"github.com/soratane/guildcore/config"
	"github.com/soratane/guildcore/guildlog"
	"github.com/soratane/guildcore/model"
	"github.com/soratane/guildcore/player"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	startingLevel      = 1
	startingMaxMembers = 6
	detachedTimeout    = 10 * time.Second

	// leaderboardKey is the cache sorted set ranking guilds by balance.
	leaderboardKey = "guild:leaderboard"
)

// PlayerRef identifies the player performing or targeted by an operation.
type PlayerRef struct {
	UUID uuid.UUID
	Name string
}

// GuildUpdate carries partial guild updates. Nil fields keep the existing
// value.
type GuildUpdate struct {
	Name        *string
	Tag         *string
	Description *string
}

// Service is the guild domain service. Every mutating operation follows the
// same shape: validate authorization and invariants, perform the write, then
// fire detached side effects (audit log, permission refresh, leveling check,
// notifications) that never block or fail the caller.
//
// Validation and store failures both surface as a false result; errors are
// logged internally and never propagated.
type Service struct {
	db       *gorm.DB
	cfg      config.GuildConfig
	journal  *guildlog.Writer
	cache    cache.Cache
	sessions *player.SessionManager
	logger   *zap.Logger

	perms  PermissionNotifier
	wallet Currency
	worlds WorldResolver
}

// NewService creates a guild Service. The cache, session manager and the
// collaborators set afterwards are all optional; missing ones disable the
// corresponding side effect.
func NewService(db *gorm.DB, cfg config.GuildConfig, journal *guildlog.Writer, c cache.Cache, sessions *player.SessionManager, logger *zap.Logger) *Service {
	if cfg.InviteExpiry <= 0 {
		cfg.InviteExpiry = 30 * time.Minute
	}
	if cfg.RelationExpiry <= 0 {
		cfg.RelationExpiry = 7 * 24 * time.Hour
	}
	return &Service{
		db:       db,
		cfg:      cfg,
		journal:  journal,
		cache:    c,
		sessions: sessions,
		logger:   logger,
	}
}

// SetPermissionNotifier wires the permission-cache collaborator.
func (svc *Service) SetPermissionNotifier(n PermissionNotifier) { svc.perms = n }

// SetCurrency wires the currency collaborator used for refunds and amount
// formatting.
func (svc *Service) SetCurrency(c Currency) { svc.wallet = c }

// SetWorldResolver wires the world-resolution collaborator for guild homes.
func (svc *Service) SetWorldResolver(r WorldResolver) { svc.worlds = r }

// detach runs fn on its own goroutine with a fresh context. A detached task
// can neither block nor fail the operation that started it.
func (svc *Service) detach(name string, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				svc.logger.Error("detached task panicked",
					zap.String("task", name),
					zap.Any("recover", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// CreateGuild creates a guild with the given leader. It fails when the name
// or tag is already taken. The leader is inserted directly as a LEADER
// member: the caller is guild-less by construction, so the membership check
// is skipped. Name and tag uniqueness is additionally enforced by store
// indexes, so two racing creations cannot both commit.
func (svc *Service) CreateGuild(ctx context.Context, name, tag, description string, leader PlayerRef) bool {
	if name == "" || tag == "" || leader.UUID == uuid.Nil {
		return false
	}
	if svc.GetGuildByName(ctx, name) != nil || svc.GetGuildByTag(ctx, tag) != nil {
		return false
	}

	g := &model.Guild{
		Name:        name,
		Tag:         tag,
		Description: description,
		LeaderUUID:  leader.UUID,
		LeaderName:  leader.Name,
		Level:       startingLevel,
		MaxMembers:  startingMaxMembers,
	}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		member := &model.GuildMember{
			GuildID:    g.ID,
			PlayerUUID: leader.UUID,
			PlayerName: leader.Name,
			Role:       model.RoleLeader,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		economy := &model.GuildEconomy{
			GuildID:    g.ID,
			Level:      startingLevel,
			MaxMembers: startingMaxMembers,
		}
		return tx.Create(economy).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			svc.logger.Info("guild creation lost uniqueness race",
				zap.String("name", name), zap.String("tag", tag))
		} else {
			svc.logger.Error("guild creation failed",
				zap.String("name", name), zap.Error(err))
		}
		return false
	}

	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   g.Name,
		PlayerUUID:  leader.UUID,
		PlayerName:  leader.Name,
		Type:        model.LogGuildCreated,
		Description: "guild " + g.Name + " [" + g.Tag + "] created",
	})
	svc.detach("perm_refresh", func(ctx context.Context) {
		svc.refreshPermissions(ctx, leader.UUID)
	})
	svc.detach("leaderboard", func(ctx context.Context) {
		svc.updateLeaderboard(ctx, g.Name, 0)
	})
	return true
}

// DeleteGuild dissolves a guild. Only the current LEADER may do so. Member
// rows are removed with the guild; a positive balance is refunded to the
// leader best-effort through the currency collaborator.
func (svc *Service) DeleteGuild(ctx context.Context, guildID int64, requester uuid.UUID) bool {
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil {
		return false
	}
	req := svc.GetGuildMember(ctx, requester)
	if req == nil || req.GuildID != guildID || req.Role != model.RoleLeader {
		return false
	}

	members := svc.GetGuildMembers(ctx, guildID)

	// Pending applications, invitations and relations go with the guild;
	// a dissolved guild must not linger in another guild's relation list.
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("guild_id = ?", guildID).Delete(&model.GuildMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("guild_id = ?", guildID).Delete(&model.GuildEconomy{}).Error; err != nil {
			return err
		}
		if err := tx.Where("guild_id = ?", guildID).Delete(&model.GuildApplication{}).Error; err != nil {
			return err
		}
		if err := tx.Where("guild_id = ?", guildID).Delete(&model.GuildInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("guild1_id = ? OR guild2_id = ?", guildID, guildID).
			Delete(&model.GuildRelation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Guild{}, guildID).Error
	})
	if err != nil {
		svc.logger.Error("guild dissolution failed",
			zap.Int64("guild_id", guildID), zap.Error(err))
		return false
	}

	if g.Balance > 0 && svc.wallet != nil {
		balance := g.Balance
		leaderUUID := g.LeaderUUID
		svc.detach("refund", func(ctx context.Context) {
			if err := svc.wallet.Deposit(ctx, leaderUUID, balance); err != nil {
				svc.logger.Warn("dissolution refund failed",
					zap.Int64("guild_id", guildID),
					zap.Int64("amount", balance),
					zap.Error(err))
			}
		})
	}
	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   g.Name,
		PlayerUUID:  requester,
		PlayerName:  req.PlayerName,
		Type:        model.LogGuildDissolved,
		Description: "guild " + g.Name + " dissolved",
		Details:     map[string]interface{}{"refunded_balance": g.Balance},
	})
	uuids := memberUUIDs(members)
	svc.detach("perm_refresh", func(ctx context.Context) {
		for _, u := range uuids {
			svc.refreshPermissions(ctx, u)
		}
	})
	svc.detach("leaderboard", func(ctx context.Context) {
		if svc.cache == nil {
			return
		}
		if err := svc.cache.ZRem(ctx, leaderboardKey, g.Name); err != nil {
			svc.logger.Warn("leaderboard removal failed", zap.Error(err))
		}
	})
	svc.notifyPlayersDetached(uuids, "guild_disbanded", map[string]interface{}{
		"guild_id":   g.ID,
		"guild_name": g.Name,
	})
	return true
}

// UpdateGuild applies a partial update. LEADER or OFFICER authority is
// required; name/tag changes re-validate global uniqueness.
func (svc *Service) UpdateGuild(ctx context.Context, guildID int64, upd GuildUpdate, requester uuid.UUID) bool {
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil {
		return false
	}
	req := svc.GetGuildMember(ctx, requester)
	if req == nil || req.GuildID != guildID || !req.Role.CanManage() {
		return false
	}

	updates := map[string]interface{}{}
	if upd.Name != nil && *upd.Name != g.Name {
		if *upd.Name == "" || svc.GetGuildByName(ctx, *upd.Name) != nil {
			return false
		}
		updates["name"] = *upd.Name
	}
	if upd.Tag != nil && *upd.Tag != g.Tag {
		if *upd.Tag == "" || svc.GetGuildByTag(ctx, *upd.Tag) != nil {
			return false
		}
		updates["tag"] = *upd.Tag
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if len(updates) == 0 {
		return true
	}

	err := svc.db.WithContext(ctx).Model(&model.Guild{}).
		Where("id = ?", guildID).
		Updates(updates).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			svc.logger.Error("guild update failed",
				zap.Int64("guild_id", guildID), zap.Error(err))
		}
		return false
	}

	name := g.Name
	if upd.Name != nil && *upd.Name != "" {
		name = *upd.Name
	}
	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   name,
		PlayerUUID:  requester,
		PlayerName:  req.PlayerName,
		Type:        model.LogGuildUpdated,
		Description: "guild settings updated",
		Details:     updates,
	})
	return true
}

// UpdateGuildFrozenStatus sets the administrative frozen flag. The write is
// idempotent but each call records its own log entry.
func (svc *Service) UpdateGuildFrozenStatus(ctx context.Context, guildID int64, frozen bool, actor PlayerRef) bool {
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil {
		return false
	}
	err := svc.db.WithContext(ctx).Model(&model.Guild{}).
		Where("id = ?", guildID).
		Update("frozen", frozen).Error
	if err != nil {
		svc.logger.Error("frozen status update failed",
			zap.Int64("guild_id", guildID), zap.Error(err))
		return false
	}

	logType := model.LogGuildFrozen
	desc := "guild frozen"
	if !frozen {
		logType = model.LogGuildUnfrozen
		desc = "guild unfrozen"
	}
	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   g.Name,
		PlayerUUID:  actor.UUID,
		PlayerName:  actor.Name,
		Type:        logType,
		Description: desc,
	})
	return true
}

// GetGuildLogs returns the guild's audit log, newest first.
func (svc *Service) GetGuildLogs(ctx context.Context, guildID int64, limit, offset int) []model.GuildLog {
	return svc.journal.Logs(ctx, guildID, limit, offset)
}

// CleanOldLogs removes audit entries older than daysToKeep days.
func (svc *Service) CleanOldLogs(ctx context.Context, daysToKeep int) int64 {
	return svc.journal.CleanOldLogs(ctx, daysToKeep)
}

// refreshPermissions notifies the permission cache; failures are swallowed.
func (svc *Service) refreshPermissions(ctx context.Context, playerUUID uuid.UUID) {
	if svc.perms == nil {
		return
	}
	if err := svc.perms.Refresh(ctx, playerUUID); err != nil {
		svc.logger.Warn("permission refresh failed",
			zap.String("player_uuid", playerUUID.String()),
			zap.Error(err))
	}
}

func memberUUIDs(members []model.GuildMember) []uuid.UUID {
	out := make([]uuid.UUID, len(members))
	for i := range members {
		out[i] = members[i].PlayerUUID
	}
	return out
}
