package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GuildLogType identifies the domain event a log entry records.
type GuildLogType string

const (
	LogGuildCreated      GuildLogType = "GUILD_CREATED"
	LogGuildDissolved    GuildLogType = "GUILD_DISSOLVED"
	LogGuildUpdated      GuildLogType = "GUILD_UPDATED"
	LogGuildFrozen       GuildLogType = "GUILD_FROZEN"
	LogGuildUnfrozen     GuildLogType = "GUILD_UNFROZEN"
	LogGuildLevelUp      GuildLogType = "GUILD_LEVEL_UP"
	LogMemberJoined      GuildLogType = "MEMBER_JOINED"
	LogMemberLeft        GuildLogType = "MEMBER_LEFT"
	LogMemberKicked      GuildLogType = "MEMBER_KICKED"
	LogMemberPromoted    GuildLogType = "MEMBER_PROMOTED"
	LogMemberDemoted     GuildLogType = "MEMBER_DEMOTED"
	LogLeaderTransferred GuildLogType = "LEADER_TRANSFERRED"
	LogFundDeposited     GuildLogType = "FUND_DEPOSITED"
	LogFundWithdrawn     GuildLogType = "FUND_WITHDRAWN"
	LogHomeSet           GuildLogType = "HOME_SET"
	LogRelationCreated   GuildLogType = "RELATION_CREATED"
	LogRelationUpdated   GuildLogType = "RELATION_UPDATED"
	LogRelationDeleted   GuildLogType = "RELATION_DELETED"
)

// GuildLog is an append-only audit record of a guild domain action.
// GuildName is a denormalized snapshot so entries survive guild dissolution.
type GuildLog struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID     int64          `gorm:"index:idx_log_guild;not null" json:"guild_id"`
	GuildName   string         `gorm:"size:32" json:"guild_name"`
	PlayerUUID  uuid.UUID      `gorm:"type:char(36)" json:"player_uuid"`
	PlayerName  string         `gorm:"size:32" json:"player_name"`
	LogType     GuildLogType   `gorm:"size:32;not null" json:"log_type"`
	Description string         `gorm:"type:text" json:"description"`
	Details     datatypes.JSON `json:"details"`
	CreatedAt   time.Time      `gorm:"index:idx_log_created;autoCreateTime:milli" json:"created_at"`
}
