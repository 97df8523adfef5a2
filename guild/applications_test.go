package guild

import (
	"context"
	"testing"

	"github.com/soratane/guildcore/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitApplication(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	g := mustCreateGuild(t, svc, "Dragons", "DRG", ref("Alice"))
	bob := ref("Bob")

	require.True(t, svc.SubmitApplication(ctx, g.ID, bob, "let me in"))

	apps := svc.GetGuildApplications(ctx, g.ID)
	require.Len(t, apps, 1)
	assert.Equal(t, bob.UUID, apps[0].PlayerUUID)
	assert.Equal(t, model.ApplicationPending, apps[0].Status)
	assert.Equal(t, "let me in", apps[0].Message)
}

func TestSubmitApplication_PendingDedup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	g := mustCreateGuild(t, svc, "Dragons", "DRG", ref("Alice"))
	bob := ref("Bob")

	require.True(t, svc.SubmitApplication(ctx, g.ID, bob, "first"))
	assert.False(t, svc.SubmitApplication(ctx, g.ID, bob, "second"))
	assert.Len(t, svc.GetGuildApplications(ctx, g.ID), 1)
}

func TestSubmitApplication_GuildedPlayerRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := ref("Alice")
	mustCreateGuild(t, svc, "Dragons", "DRG", alice)
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", ref("Bob"))

	assert.False(t, svc.SubmitApplication(ctx, g2.ID, alice, "defecting"))
	assert.False(t, svc.SubmitApplication(ctx, 9999, ref("Carol"), "nowhere"))
}

func TestProcessApplication_Approve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	g := mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	require.True(t, svc.SubmitApplication(ctx, g.ID, bob, ""))
	app := svc.GetGuildApplications(ctx, g.ID)[0]

	require.True(t, svc.ProcessApplication(ctx, app.ID, true, leader.UUID))

	m := svc.GetGuildMember(ctx, bob.UUID)
	require.NotNil(t, m)
	assert.Equal(t, g.ID, m.GuildID)
	assert.Equal(t, model.RoleMember, m.Role)
	// No longer pending.
	assert.Empty(t, svc.GetGuildApplications(ctx, g.ID))
	// Terminal state cannot be processed again.
	assert.False(t, svc.ProcessApplication(ctx, app.ID, true, leader.UUID))
}

func TestProcessApplication_Reject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	g := mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	require.True(t, svc.SubmitApplication(ctx, g.ID, bob, ""))
	app := svc.GetGuildApplications(ctx, g.ID)[0]

	require.True(t, svc.ProcessApplication(ctx, app.ID, false, leader.UUID))
	assert.Nil(t, svc.GetGuildMember(ctx, bob.UUID))
	assert.Empty(t, svc.GetGuildApplications(ctx, g.ID))
}

func TestProcessApplication_RequiresManagerOfSameGuild(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	other := ref("Bob")
	carol := ref("Carol")
	g := mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	mustCreateGuild(t, svc, "Phoenix", "PHX", other)
	require.True(t, svc.SubmitApplication(ctx, g.ID, carol, ""))
	app := svc.GetGuildApplications(ctx, g.ID)[0]

	assert.False(t, svc.ProcessApplication(ctx, app.ID, true, other.UUID))
	assert.False(t, svc.ProcessApplication(ctx, app.ID, true, carol.UUID))
}

func TestProcessApplication_ApproveStaysPendingWhenJoinFails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	leader := ref("Alice")
	bob := ref("Bob")
	g := mustCreateGuild(t, svc, "Dragons", "DRG", leader)
	require.True(t, svc.SubmitApplication(ctx, g.ID, bob, ""))
	app := svc.GetGuildApplications(ctx, g.ID)[0]

	// Applicant joined another guild in the meantime.
	g2 := mustCreateGuild(t, svc, "Phoenix", "PHX", ref("Carol"))
	require.True(t, svc.AddGuildMember(ctx, g2.ID, bob, model.RoleMember))

	assert.False(t, svc.ProcessApplication(ctx, app.ID, true, leader.UUID))
	apps := svc.GetGuildApplications(ctx, g.ID)
	require.Len(t, apps, 1)
	assert.Equal(t, model.ApplicationPending, apps[0].Status)
}
