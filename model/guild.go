package model

import (
	"time"

	"github.com/google/uuid"
)

// GuildRole is a member's role within a guild.
type GuildRole string

const (
	RoleLeader  GuildRole = "LEADER"
	RoleOfficer GuildRole = "OFFICER"
	RoleMember  GuildRole = "MEMBER"
)

// Valid reports whether r is one of the known roles.
func (r GuildRole) Valid() bool {
	switch r {
	case RoleLeader, RoleOfficer, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role carries officer-level authority.
func (r GuildRole) CanManage() bool {
	return r == RoleLeader || r == RoleOfficer
}

// Guild is a persistent player organization.
type Guild struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Tag         string    `gorm:"uniqueIndex;size:8;not null" json:"tag"`
	Description string    `gorm:"type:text" json:"description"`
	LeaderUUID  uuid.UUID `gorm:"type:char(36);not null" json:"leader_uuid"`
	LeaderName  string    `gorm:"size:32" json:"leader_name"`

	// Home location. An empty HomeWorld means no home is set.
	HomeWorld string  `gorm:"size:64" json:"home_world"`
	HomeX     float64 `json:"home_x"`
	HomeY     float64 `json:"home_y"`
	HomeZ     float64 `json:"home_z"`
	HomeYaw   float32 `json:"home_yaw"`
	HomePitch float32 `json:"home_pitch"`

	Balance    int64 `gorm:"default:0" json:"balance"`
	Level      int   `gorm:"default:1" json:"level"`
	MaxMembers int   `gorm:"default:6" json:"max_members"`
	Frozen     bool  `gorm:"default:false" json:"frozen"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasHome reports whether a home location has been set.
func (g *Guild) HasHome() bool {
	return g.HomeWorld != ""
}

// GuildMember links a player to a guild with a role.
// PlayerUUID is unique across all guilds: a player belongs to at most one.
type GuildMember struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID    int64     `gorm:"index:idx_member_guild;not null" json:"guild_id"`
	PlayerUUID uuid.UUID `gorm:"type:char(36);uniqueIndex;not null" json:"player_uuid"`
	PlayerName string    `gorm:"size:32" json:"player_name"`
	Role       GuildRole `gorm:"size:16;default:MEMBER" json:"role"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
