package model

import (
	"time"

	"github.com/google/uuid"
)

// GuildEconomy is the one-to-one economy record for a guild.
type GuildEconomy struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID       int64     `gorm:"uniqueIndex;not null" json:"guild_id"`
	Balance       int64     `gorm:"default:0" json:"balance"`
	Level         int       `gorm:"default:1" json:"level"`
	Experience    int64     `gorm:"default:0" json:"experience"`
	MaxExperience int64     `gorm:"default:0" json:"max_experience"`
	MaxMembers    int       `gorm:"default:6" json:"max_members"`
	LastUpdated   time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

// ContributionType categorizes a treasury contribution.
type ContributionType string

const (
	ContributionDeposit  ContributionType = "DEPOSIT"
	ContributionWithdraw ContributionType = "WITHDRAW"
)

// GuildContribution is an append-only record of a player's treasury
// contribution. Never mutated or deleted.
type GuildContribution struct {
	ID               int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID          int64            `gorm:"index:idx_contribution_guild;not null" json:"guild_id"`
	PlayerUUID       uuid.UUID        `gorm:"type:char(36);index:idx_contribution_player;not null" json:"player_uuid"`
	PlayerName       string           `gorm:"size:32" json:"player_name"`
	Amount           int64            `gorm:"not null" json:"amount"`
	ContributionType ContributionType `gorm:"size:16;not null" json:"contribution_type"`
	Description      string           `gorm:"type:text" json:"description"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}
