package guild

import (
	"context"
	"testing"
	"time"

	"github.com/soratane/guildcore/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGuildRelation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	bob := ref("Bob")
	g1 := mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", bob)

	require.True(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, model.RelationAlly, alice.UUID))

	rel := svc.GetGuildRelation(ctx, g1.ID, g2.ID)
	require.NotNil(t, rel)
	assert.Equal(t, model.RelationAlly, rel.RelationType)
	assert.Equal(t, model.RelationPending, rel.Status)
	require.NotNil(t, rel.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *rel.ExpiresAt, 5*time.Second)
	assert.True(t, rel.Involves(g2.ID, g1.ID))

	// Symmetric lookup finds it in either order.
	assert.NotNil(t, svc.GetGuildRelation(ctx, g2.ID, g1.ID))
}

func TestCreateGuildRelation_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	bob := ref("Bob")
	g1 := mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", bob)

	assert.False(t, svc.CreateGuildRelation(ctx, g1.ID, g1.ID, model.RelationAlly, alice.UUID))
	assert.False(t, svc.CreateGuildRelation(ctx, g1.ID, 9999, model.RelationAlly, alice.UUID))
	assert.False(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, "FRENEMY", alice.UUID))
	// Initiator must manage the first guild.
	assert.False(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, model.RelationAlly, bob.UUID))
}

func TestCreateGuildRelation_OneActivePerPair(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	bob := ref("Bob")
	g1 := mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", bob)

	require.True(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, model.RelationAlly, alice.UUID))
	assert.False(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, model.RelationEnemy, alice.UUID))
	// Same pair from the other side is still blocked.
	assert.False(t, svc.CreateGuildRelation(ctx, g2.ID, g1.ID, model.RelationEnemy, bob.UUID))

	// An expired proposal frees the pair.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, svc.db.Model(&model.GuildRelation{}).
		Where("guild1_id = ?", g1.ID).
		Update("expires_at", past).Error)
	assert.True(t, svc.CreateGuildRelation(ctx, g2.ID, g1.ID, model.RelationEnemy, bob.UUID))
}

func TestUpdateGuildRelationStatus_AcceptClearsExpiry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	bob := ref("Bob")
	g1 := mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", bob)
	require.True(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, model.RelationAlly, alice.UUID))
	rel := svc.GetGuildRelation(ctx, g1.ID, g2.ID)
	require.NotNil(t, rel)

	// Outsider cannot respond.
	assert.False(t, svc.UpdateGuildRelationStatus(ctx, rel.ID, model.RelationAccepted, ref("Mallory").UUID))

	require.True(t, svc.UpdateGuildRelationStatus(ctx, rel.ID, model.RelationAccepted, bob.UUID))

	got := svc.GetGuildRelation(ctx, g1.ID, g2.ID)
	require.NotNil(t, got)
	assert.Equal(t, model.RelationAccepted, got.Status)
	assert.Nil(t, got.ExpiresAt, "accepted relations never expire")

	// Terminal state cannot be processed again.
	assert.False(t, svc.UpdateGuildRelationStatus(ctx, rel.ID, model.RelationDeclined, bob.UUID))
}

func TestDeleteGuildRelation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	bob := ref("Bob")
	g1 := mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", bob)
	require.True(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, model.RelationAlly, alice.UUID))
	rel := svc.GetGuildRelation(ctx, g1.ID, g2.ID)
	require.NotNil(t, rel)

	assert.False(t, svc.DeleteGuildRelation(ctx, rel.ID, ref("Mallory").UUID))
	// Either side may remove it.
	assert.True(t, svc.DeleteGuildRelation(ctx, rel.ID, bob.UUID))
	assert.Nil(t, svc.GetGuildRelation(ctx, g1.ID, g2.ID))
}

func TestGetGuildRelations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	g1 := mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", ref("Bob"))
	g3 := mustCreateGuild(t, svc, "Krakens", "KRK", ref("Carol"))

	require.True(t, svc.CreateGuildRelation(ctx, g1.ID, g2.ID, model.RelationAlly, alice.UUID))
	require.True(t, svc.CreateGuildRelation(ctx, g1.ID, g3.ID, model.RelationEnemy, alice.UUID))

	assert.Len(t, svc.GetGuildRelations(ctx, g1.ID), 2)
	assert.Len(t, svc.GetGuildRelations(ctx, g2.ID), 1)
	assert.Empty(t, svc.GetGuildRelations(ctx, 9999))
}
