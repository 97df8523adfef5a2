package guild

import (
	"context"
	"testing"
	"time"

	"github.com/soratane/guildcore/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendInvitation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	mustCreateGuild(t, svc, "Dragons", "DRG", leader)

	require.True(t, svc.SendInvitation(ctx, bob, leader.UUID))

	invites := svc.PendingInvitations(ctx, bob.UUID)
	require.Len(t, invites, 1)
	assert.Equal(t, leader.UUID, invites[0].InviterUUID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), invites[0].ExpiresAt, 5*time.Second)
}

func TestSendInvitation_Authorization(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	member := ref("Bob")
	target := ref("Carol")
	g := mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	require.True(t, svc.AddGuildMember(ctx, g.ID, member, model.RoleMember))

	// Plain members cannot invite, nor can outsiders.
	assert.False(t, svc.SendInvitation(ctx, target, member.UUID))
	assert.False(t, svc.SendInvitation(ctx, target, ref("Nobody").UUID))
	// Guilded players cannot be invited.
	assert.False(t, svc.SendInvitation(ctx, member, leader.UUID))
}

func TestSendInvitation_LiveDedup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	mustCreateGuild(t, svc, "Dragons", "DRG", leader)

	require.True(t, svc.SendInvitation(ctx, bob, leader.UUID))
	assert.False(t, svc.SendInvitation(ctx, bob, leader.UUID))

	// Once the live invite expires, a new one may be sent.
	require.NoError(t, svc.db.Model(&model.GuildInvite{}).
		Where("player_uuid = ?", bob.UUID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	assert.True(t, svc.SendInvitation(ctx, bob, leader.UUID))
}

func TestProcessInvitation_Accept(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	g := mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	require.True(t, svc.SendInvitation(ctx, bob, leader.UUID))
	invite := svc.PendingInvitations(ctx, bob.UUID)[0]

	require.True(t, svc.ProcessInvitation(ctx, invite.ID, true, bob.UUID))

	m := svc.GetGuildMember(ctx, bob.UUID)
	require.NotNil(t, m)
	assert.Equal(t, g.ID, m.GuildID)
	assert.Empty(t, svc.PendingInvitations(ctx, bob.UUID))
	// Terminal state cannot be processed again.
	assert.False(t, svc.ProcessInvitation(ctx, invite.ID, true, bob.UUID))
}

func TestProcessInvitation_Decline(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	require.True(t, svc.SendInvitation(ctx, bob, leader.UUID))
	invite := svc.PendingInvitations(ctx, bob.UUID)[0]

	require.True(t, svc.ProcessInvitation(ctx, invite.ID, false, bob.UUID))
	assert.Nil(t, svc.GetGuildMember(ctx, bob.UUID))
	assert.Empty(t, svc.PendingInvitations(ctx, bob.UUID))
}

func TestProcessInvitation_OnlyTargetWhileUnexpired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	require.True(t, svc.SendInvitation(ctx, bob, leader.UUID))
	invite := svc.PendingInvitations(ctx, bob.UUID)[0]

	// Someone else cannot respond.
	assert.False(t, svc.ProcessInvitation(ctx, invite.ID, true, ref("Mallory").UUID))

	// Expired invitations cannot be accepted.
	require.NoError(t, svc.db.Model(&model.GuildInvite{}).
		Where("id = ?", invite.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	assert.False(t, svc.ProcessInvitation(ctx, invite.ID, true, bob.UUID))
	assert.Nil(t, svc.GetGuildMember(ctx, bob.UUID))
}

func TestPendingInvitations_FiltersExpired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	bob := ref("Bob")
	carol := ref("Carol")
	mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	mustCreateGuild(t, svc, "Phoenix", "PHX", bob)

	require.True(t, svc.SendInvitation(ctx, carol, alice.UUID))
	require.True(t, svc.SendInvitation(ctx, carol, bob.UUID))
	require.Len(t, svc.PendingInvitations(ctx, carol.UUID), 2)

	// Age one of them past its expiry; it no longer surfaces but the row
	// stays in the store.
	require.NoError(t, svc.db.Model(&model.GuildInvite{}).
		Where("player_uuid = ? AND inviter_uuid = ?", carol.UUID, alice.UUID).
		Update("expires_at", time.Now().Add(-time.Second)).Error)

	live := svc.PendingInvitations(ctx, carol.UUID)
	require.Len(t, live, 1)
	assert.Equal(t, bob.UUID, live[0].InviterUUID)

	var total int64
	require.NoError(t, svc.db.Model(&model.GuildInvite{}).
		Where("player_uuid = ?", carol.UUID).Count(&total).Error)
	assert.Equal(t, int64(2), total)
}
