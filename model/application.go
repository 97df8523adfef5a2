package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle state of a join application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// GuildApplication is a player-initiated request to join a guild.
// Status is terminal once set to APPROVED or REJECTED.
type GuildApplication struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID    int64             `gorm:"index:idx_application_guild;not null" json:"guild_id"`
	PlayerUUID uuid.UUID         `gorm:"type:char(36);index:idx_application_player;not null" json:"player_uuid"`
	PlayerName string            `gorm:"size:32" json:"player_name"`
	Message    string            `gorm:"type:text" json:"message"`
	Status     ApplicationStatus `gorm:"size:16;default:PENDING" json:"status"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}
