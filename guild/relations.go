package guild

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/guildlog"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
)

// activeRelation scopes a relation query to rows that have not expired.
const activeRelationCond = "(expires_at IS NULL OR expires_at > ?)"

// CreateGuildRelation proposes a diplomatic relation between two guilds. The
// initiator needs LEADER/OFFICER authority in the first guild, and at most
// one active relation may exist per guild pair in either order. Proposals
// expire unless accepted.
func (svc *Service) CreateGuildRelation(ctx context.Context, guild1ID, guild2ID int64, relType model.RelationType, initiator uuid.UUID) bool {
	if guild1ID == guild2ID || !relType.Valid() {
		return false
	}
	g1 := svc.GetGuildByID(ctx, guild1ID)
	g2 := svc.GetGuildByID(ctx, guild2ID)
	if g1 == nil || g2 == nil {
		return false
	}
	init := svc.GetGuildMember(ctx, initiator)
	if init == nil || init.GuildID != guild1ID || !init.Role.CanManage() {
		return false
	}
	if svc.GetGuildRelation(ctx, guild1ID, guild2ID) != nil {
		return false
	}

	expires := time.Now().Add(svc.cfg.RelationExpiry)
	rel := &model.GuildRelation{
		Guild1ID:      guild1ID,
		Guild2ID:      guild2ID,
		Guild1Name:    g1.Name,
		Guild2Name:    g2.Name,
		RelationType:  relType,
		Status:        model.RelationPending,
		InitiatorUUID: initiator,
		InitiatorName: init.PlayerName,
		ExpiresAt:     &expires,
	}
	if err := svc.db.WithContext(ctx).Create(rel).Error; err != nil {
		svc.logger.Error("relation insert failed",
			zap.Int64("guild1_id", guild1ID),
			zap.Int64("guild2_id", guild2ID),
			zap.Error(err))
		return false
	}

	desc := string(relType) + " relation proposed between " + g1.Name + " and " + g2.Name
	details := map[string]interface{}{
		"relation_id":   rel.ID,
		"relation_type": relType,
		"other_guild":   g2.ID,
	}
	svc.journal.Record(guildlog.Entry{
		GuildID:     g1.ID,
		GuildName:   g1.Name,
		PlayerUUID:  initiator,
		PlayerName:  init.PlayerName,
		Type:        model.LogRelationCreated,
		Description: desc,
		Details:     details,
	})
	details["other_guild"] = g1.ID
	svc.journal.Record(guildlog.Entry{
		GuildID:     g2.ID,
		GuildName:   g2.Name,
		PlayerUUID:  initiator,
		PlayerName:  init.PlayerName,
		Type:        model.LogRelationCreated,
		Description: desc,
		Details:     details,
	})
	svc.notifyGuildDetached(g2.ID, "relation_proposed", map[string]interface{}{
		"relation_id":   rel.ID,
		"guild_id":      g1.ID,
		"guild_name":    g1.Name,
		"relation_type": relType,
	})
	return true
}

// GetGuildRelation returns the active relation between two guilds, checking
// both storage orders, or nil.
func (svc *Service) GetGuildRelation(ctx context.Context, guild1ID, guild2ID int64) *model.GuildRelation {
	var rel model.GuildRelation
	err := svc.db.WithContext(ctx).
		Where("((guild1_id = ? AND guild2_id = ?) OR (guild1_id = ? AND guild2_id = ?)) AND "+activeRelationCond,
			guild1ID, guild2ID, guild2ID, guild1ID, time.Now()).
		First(&rel).Error
	if err != nil {
		svc.logReadError("guild relation", err)
		return nil
	}
	return &rel
}

// GetGuildRelations returns all active relations a guild is party to.
func (svc *Service) GetGuildRelations(ctx context.Context, guildID int64) []model.GuildRelation {
	var rels []model.GuildRelation
	err := svc.db.WithContext(ctx).
		Where("(guild1_id = ? OR guild2_id = ?) AND "+activeRelationCond,
			guildID, guildID, time.Now()).
		Order("created_at DESC").
		Find(&rels).Error
	if err != nil {
		svc.logReadError("guild relations", err)
		return nil
	}
	return rels
}

// UpdateGuildRelationStatus responds to a relation proposal. The requester
// needs LEADER/OFFICER authority in either guild of the pair. Acceptance
// clears the expiry, making the relation permanent until deleted.
func (svc *Service) UpdateGuildRelationStatus(ctx context.Context, relationID int64, status model.RelationStatus, requester uuid.UUID) bool {
	if status != model.RelationAccepted && status != model.RelationDeclined {
		return false
	}
	var rel model.GuildRelation
	if err := svc.db.WithContext(ctx).First(&rel, relationID).Error; err != nil {
		svc.logReadError("relation", err)
		return false
	}
	if rel.Status != model.RelationPending {
		return false
	}
	req := svc.GetGuildMember(ctx, requester)
	if req == nil || !req.Role.CanManage() ||
		(req.GuildID != rel.Guild1ID && req.GuildID != rel.Guild2ID) {
		return false
	}

	updates := map[string]interface{}{"status": status}
	if status == model.RelationAccepted {
		updates["expires_at"] = nil
	}
	err := svc.db.WithContext(ctx).Model(&model.GuildRelation{}).
		Where("id = ?", rel.ID).
		Updates(updates).Error
	if err != nil {
		svc.logger.Error("relation status update failed",
			zap.Int64("relation_id", rel.ID), zap.Error(err))
		return false
	}

	desc := string(rel.RelationType) + " relation " + statusWord(status) +
		" between " + rel.Guild1Name + " and " + rel.Guild2Name
	for _, side := range []struct {
		id   int64
		name string
	}{{rel.Guild1ID, rel.Guild1Name}, {rel.Guild2ID, rel.Guild2Name}} {
		svc.journal.Record(guildlog.Entry{
			GuildID:     side.id,
			GuildName:   side.name,
			PlayerUUID:  requester,
			PlayerName:  req.PlayerName,
			Type:        model.LogRelationUpdated,
			Description: desc,
			Details: map[string]interface{}{
				"relation_id": rel.ID,
				"status":      status,
			},
		})
	}
	svc.notifyGuildDetached(rel.Guild1ID, "relation_updated", map[string]interface{}{
		"relation_id": rel.ID,
		"status":      status,
	})
	svc.notifyGuildDetached(rel.Guild2ID, "relation_updated", map[string]interface{}{
		"relation_id": rel.ID,
		"status":      status,
	})
	return true
}

// DeleteGuildRelation removes a relation. The requester needs LEADER/OFFICER
// authority in either guild of the pair.
func (svc *Service) DeleteGuildRelation(ctx context.Context, relationID int64, requester uuid.UUID) bool {
	var rel model.GuildRelation
	if err := svc.db.WithContext(ctx).First(&rel, relationID).Error; err != nil {
		svc.logReadError("relation", err)
		return false
	}
	req := svc.GetGuildMember(ctx, requester)
	if req == nil || !req.Role.CanManage() ||
		(req.GuildID != rel.Guild1ID && req.GuildID != rel.Guild2ID) {
		return false
	}

	if err := svc.db.WithContext(ctx).Delete(&model.GuildRelation{}, rel.ID).Error; err != nil {
		svc.logger.Error("relation delete failed",
			zap.Int64("relation_id", rel.ID), zap.Error(err))
		return false
	}

	desc := string(rel.RelationType) + " relation removed between " +
		rel.Guild1Name + " and " + rel.Guild2Name
	for _, side := range []struct {
		id   int64
		name string
	}{{rel.Guild1ID, rel.Guild1Name}, {rel.Guild2ID, rel.Guild2Name}} {
		svc.journal.Record(guildlog.Entry{
			GuildID:     side.id,
			GuildName:   side.name,
			PlayerUUID:  requester,
			PlayerName:  req.PlayerName,
			Type:        model.LogRelationDeleted,
			Description: desc,
			Details:     map[string]interface{}{"relation_id": rel.ID},
		})
	}
	return true
}

func statusWord(s model.RelationStatus) string {
	if s == model.RelationAccepted {
		return "accepted"
	}
	return "declined"
}
