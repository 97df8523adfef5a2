package guild

import (
	"context"
	"strconv"

	"github.com/soratane/guildcore/guildlog"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UpdateGuildBalance applies a signed delta to the guild treasury. Frozen
// guilds and withdrawals past zero are rejected. The guild row and the
// economy record move together in one transaction; the leveling check and
// leaderboard refresh run detached afterwards.
func (svc *Service) UpdateGuildBalance(ctx context.Context, guildID int64, delta int64, actor PlayerRef) bool {
	return svc.applyBalanceChange(ctx, guildID, delta, actor, nil)
}

// Contribute deposits or withdraws on behalf of a player and records the
// movement in the append-only contribution ledger. The ledger row commits
// in the same transaction as the balance, so the two never diverge.
func (svc *Service) Contribute(ctx context.Context, guildID int64, amount int64, ctype model.ContributionType, actor PlayerRef, description string) bool {
	if amount <= 0 {
		return false
	}
	delta := amount
	if ctype == model.ContributionWithdraw {
		delta = -amount
	} else if ctype != model.ContributionDeposit {
		return false
	}
	contrib := &model.GuildContribution{
		GuildID:          guildID,
		PlayerUUID:       actor.UUID,
		PlayerName:       actor.Name,
		Amount:           amount,
		ContributionType: ctype,
		Description:      description,
	}
	return svc.applyBalanceChange(ctx, guildID, delta, actor, func(tx *gorm.DB) error {
		return tx.Create(contrib).Error
	})
}

// applyBalanceChange validates and commits a treasury movement. extra, when
// set, runs inside the same transaction and rolls everything back on error.
func (svc *Service) applyBalanceChange(ctx context.Context, guildID int64, delta int64, actor PlayerRef, extra func(tx *gorm.DB) error) bool {
	if delta == 0 {
		return false
	}
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil || g.Frozen {
		return false
	}
	newBalance := g.Balance + delta
	if newBalance < 0 {
		return false
	}

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Guild{}).
			Where("id = ?", guildID).
			Update("balance", newBalance).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.GuildEconomy{}).
			Where("guild_id = ?", guildID).
			Update("balance", newBalance).Error; err != nil {
			return err
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
	if err != nil {
		svc.logger.Error("balance update failed",
			zap.Int64("guild_id", guildID),
			zap.Int64("delta", delta),
			zap.Error(err))
		return false
	}

	logType := model.LogFundDeposited
	amount := delta
	verb := "deposited"
	if delta < 0 {
		logType = model.LogFundWithdrawn
		amount = -delta
		verb = "withdrew"
	}
	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   g.Name,
		PlayerUUID:  actor.UUID,
		PlayerName:  actor.Name,
		Type:        logType,
		Description: actor.Name + " " + verb + " " + svc.formatAmount(amount),
		Details: map[string]interface{}{
			"amount":      amount,
			"new_balance": newBalance,
		},
	})
	name := g.Name
	svc.detach("level_check", func(ctx context.Context) {
		svc.CheckLevelUp(ctx, guildID)
	})
	svc.detach("leaderboard", func(ctx context.Context) {
		svc.updateLeaderboard(ctx, name, newBalance)
	})
	return true
}

// GetGuildEconomy returns a guild's economy record, or nil.
func (svc *Service) GetGuildEconomy(ctx context.Context, guildID int64) *model.GuildEconomy {
	var eco model.GuildEconomy
	if err := svc.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&eco).Error; err != nil {
		svc.logReadError("guild economy", err)
		return nil
	}
	return &eco
}

// GetGuildContributions returns a guild's contribution ledger, newest first.
func (svc *Service) GetGuildContributions(ctx context.Context, guildID int64, limit, offset int) []model.GuildContribution {
	if limit <= 0 {
		limit = 50
	}
	var contribs []model.GuildContribution
	err := svc.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contribs).Error
	if err != nil {
		svc.logReadError("guild contributions", err)
		return nil
	}
	return contribs
}

// TopGuilds returns up to n guild names ranked by treasury balance, richest
// first, from the cache leaderboard.
func (svc *Service) TopGuilds(ctx context.Context, n int) []string {
	if svc.cache == nil || n <= 0 {
		return nil
	}
	names, err := svc.cache.ZRevRange(ctx, leaderboardKey, 0, int64(n-1))
	if err != nil {
		svc.logger.Warn("leaderboard read failed", zap.Error(err))
		return nil
	}
	return names
}

// RebuildLeaderboard rescans every guild into the cache leaderboard. Used at
// startup and on a periodic schedule to repair drift.
func (svc *Service) RebuildLeaderboard(ctx context.Context) {
	if svc.cache == nil {
		return
	}
	for _, g := range svc.GetAllGuilds(ctx) {
		svc.updateLeaderboard(ctx, g.Name, g.Balance)
	}
}

// updateLeaderboard writes one guild's score; failures are best-effort.
func (svc *Service) updateLeaderboard(ctx context.Context, name string, balance int64) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.ZAdd(ctx, leaderboardKey, float64(balance), name); err != nil {
		svc.logger.Warn("leaderboard update failed",
			zap.String("guild", name), zap.Error(err))
	}
}

// formatAmount renders an amount through the currency collaborator when one
// is wired.
func (svc *Service) formatAmount(amount int64) string {
	if svc.wallet != nil {
		return svc.wallet.Format(amount)
	}
	return strconv.FormatInt(amount, 10)
}
