package guild

import (
	"context"
	"errors"
	"strconv"

	"github.com/soratane/guildcore/guildlog"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errLevelRace marks a level-up transaction that lost against a concurrent
// advance of the same guild.
var errLevelRace = errors.New("guild level changed concurrently")

// levelThresholds[i] is the treasury balance required to advance from level
// i+1 to level i+2. The ladder tops out at level 10.
var levelThresholds = [...]int64{
	5000, 10000, 20000, 35000, 50000, 75000, 100000, 150000, 200000,
}

// levelCapacity[i] is the member capacity at level i+1.
var levelCapacity = [...]int{
	6, 12, 18, 25, 35, 45, 60, 75, 90, 100,
}

// MaxLevel is the highest level a guild can reach.
const MaxLevel = len(levelCapacity)

// RequiredBalance returns the treasury balance needed to advance past the
// given level. ok is false at or above the level cap.
func RequiredBalance(level int) (int64, bool) {
	if level < 1 || level >= MaxLevel {
		return 0, false
	}
	return levelThresholds[level-1], true
}

// CapacityForLevel returns the member capacity at a level, clamped to the
// ladder's bounds.
func CapacityForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelCapacity[level-1]
}

// CheckLevelUp advances the guild one level when its balance meets the next
// threshold, raising member capacity on both the guild and its economy
// record. At most one step per call; repeated balance writes walk a rich
// guild up the ladder one level at a time.
func (svc *Service) CheckLevelUp(ctx context.Context, guildID int64) bool {
	g := svc.GetGuildByID(ctx, guildID)
	if g == nil {
		return false
	}
	required, ok := RequiredBalance(g.Level)
	if !ok || g.Balance < required {
		return false
	}

	newLevel := g.Level + 1
	newCapacity := CapacityForLevel(newLevel)
	nextRequired, _ := RequiredBalance(newLevel)
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The level guard loses against a concurrent advance; abort so the
		// winner's economy record, log entry and notification stand alone.
		res := tx.Model(&model.Guild{}).
			Where("id = ? AND level = ?", guildID, g.Level).
			Updates(map[string]interface{}{
				"level":       newLevel,
				"max_members": newCapacity,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errLevelRace
		}
		return tx.Model(&model.GuildEconomy{}).
			Where("guild_id = ?", guildID).
			Updates(map[string]interface{}{
				"level":          newLevel,
				"max_members":    newCapacity,
				"max_experience": nextRequired,
			}).Error
	})
	if err != nil {
		if !errors.Is(err, errLevelRace) {
			svc.logger.Error("level up failed",
				zap.Int64("guild_id", guildID), zap.Error(err))
		}
		return false
	}

	svc.journal.Record(guildlog.Entry{
		GuildID:     g.ID,
		GuildName:   g.Name,
		Type:        model.LogGuildLevelUp,
		Description: "guild reached level " + strconv.Itoa(newLevel),
		Details: map[string]interface{}{
			"level":       newLevel,
			"max_members": newCapacity,
		},
	})
	svc.notifyGuildDetached(g.ID, "guild_level_up", map[string]interface{}{
		"guild_id":    g.ID,
		"level":       newLevel,
		"max_members": newCapacity,
	})
	return true
}
