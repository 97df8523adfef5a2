package model

import (
	"time"

	"github.com/google/uuid"
)

// InviteStatus is the lifecycle state of an invitation.
type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
	InviteDeclined InviteStatus = "DECLINED"
)

// GuildInvite is a guild-initiated offer to a player. Invites expire at
// ExpiresAt; expired rows are filtered out by lookups, never deleted.
type GuildInvite struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID     int64        `gorm:"index:idx_invite_guild;not null" json:"guild_id"`
	PlayerUUID  uuid.UUID    `gorm:"type:char(36);index:idx_invite_player;not null" json:"player_uuid"`
	PlayerName  string       `gorm:"size:32" json:"player_name"`
	InviterUUID uuid.UUID    `gorm:"type:char(36);not null" json:"inviter_uuid"`
	InviterName string       `gorm:"size:32" json:"inviter_name"`
	Status      InviteStatus `gorm:"size:16;default:PENDING" json:"status"`
	ExpiresAt   time.Time    `gorm:"index:idx_invite_expiry;not null" json:"expires_at"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
}
