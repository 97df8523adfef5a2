package model

import (
	"time"

	"github.com/google/uuid"
)

// RelationType is the kind of diplomatic link between two guilds.
type RelationType string

const (
	RelationAlly  RelationType = "ALLY"
	RelationEnemy RelationType = "ENEMY"
)

// Valid reports whether t is a known relation type.
func (t RelationType) Valid() bool {
	return t == RelationAlly || t == RelationEnemy
}

// RelationStatus is the lifecycle state of a relation proposal.
type RelationStatus string

const (
	RelationPending  RelationStatus = "PENDING"
	RelationAccepted RelationStatus = "ACCEPTED"
	RelationDeclined RelationStatus = "DECLINED"
)

// GuildRelation links two guilds. The pair is unordered: either guild may be
// stored as side 1 or side 2, and lookups check both orders. Pending
// proposals carry an ExpiresAt; accepted relations have it cleared.
type GuildRelation struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Guild1ID      int64          `gorm:"index:idx_relation_g1;not null" json:"guild1_id"`
	Guild2ID      int64          `gorm:"index:idx_relation_g2;not null" json:"guild2_id"`
	Guild1Name    string         `gorm:"size:32" json:"guild1_name"`
	Guild2Name    string         `gorm:"size:32" json:"guild2_name"`
	RelationType  RelationType   `gorm:"size:16;not null" json:"relation_type"`
	Status        RelationStatus `gorm:"size:16;default:PENDING" json:"status"`
	InitiatorUUID uuid.UUID      `gorm:"type:char(36)" json:"initiator_uuid"`
	InitiatorName string         `gorm:"size:32" json:"initiator_name"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	ExpiresAt     *time.Time     `json:"expires_at"`
}

// Involves reports whether the relation links the given pair, in either order.
func (r *GuildRelation) Involves(a, b int64) bool {
	return (r.Guild1ID == a && r.Guild2ID == b) || (r.Guild1ID == b && r.Guild2ID == a)
}
