package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soratane/guildcore/guild"
	"github.com/soratane/guildcore/middleware"
	"github.com/soratane/guildcore/model"
)

// GuildHandler exposes the guild service over REST. Service-level failures
// surface uniformly as 400/404; the reasons live in the server log.
type GuildHandler struct {
	svc *guild.Service
}

// NewGuildHandler creates a GuildHandler.
func NewGuildHandler(svc *guild.Service) *GuildHandler {
	return &GuildHandler{svc: svc}
}

// Register mounts the player-facing routes. The group is expected to carry
// the Auth middleware.
func (h *GuildHandler) Register(g *gin.RouterGroup) {
	g.POST("/guilds", h.createGuild)
	g.GET("/guilds", h.listGuilds)
	g.GET("/guilds/:id", h.getGuild)
	g.PATCH("/guilds/:id", h.updateGuild)
	g.DELETE("/guilds/:id", h.deleteGuild)

	g.GET("/guilds/:id/members", h.listMembers)
	g.POST("/guilds/:id/leave", h.leaveGuild)
	g.DELETE("/guilds/:id/members/:uuid", h.kickMember)
	g.PUT("/guilds/:id/members/:uuid/role", h.updateRole)

	g.POST("/guilds/:id/applications", h.submitApplication)
	g.GET("/guilds/:id/applications", h.listApplications)
	g.POST("/applications/:id/process", h.processApplication)

	g.POST("/invitations", h.sendInvitation)
	g.GET("/invitations", h.myInvitations)
	g.POST("/invitations/:id/process", h.processInvitation)

	g.POST("/guilds/:id/relations", h.createRelation)
	g.GET("/guilds/:id/relations", h.listRelations)
	g.POST("/relations/:id/process", h.processRelation)
	g.DELETE("/relations/:id", h.deleteRelation)

	g.POST("/guilds/:id/contribute", h.contribute)
	g.GET("/guilds/:id/economy", h.getEconomy)
	g.GET("/guilds/:id/contributions", h.listContributions)
	g.GET("/guilds/:id/logs", h.listLogs)

	g.PUT("/guilds/:id/home", h.setHome)
	g.GET("/guilds/:id/home", h.getHome)

	g.GET("/leaderboard", h.leaderboard)
	g.GET("/me/guild", h.myGuild)
}

// RegisterAdmin mounts operator routes. The group is expected to carry the
// AdminKey middleware.
func (h *GuildHandler) RegisterAdmin(g *gin.RouterGroup) {
	g.PUT("/guilds/:id/frozen", h.setFrozen)
	g.POST("/logs/clean", h.cleanLogs)
}

func actor(c *gin.Context) guild.PlayerRef {
	return guild.PlayerRef{
		UUID: middleware.GetPlayerUUID(c),
		Name: middleware.GetPlayerName(c),
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

func (h *GuildHandler) createGuild(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Tag         string `json:"tag" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.CreateGuild(c.Request.Context(), req.Name, req.Tag, req.Description, actor(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guild creation failed"})
		return
	}
	c.JSON(http.StatusCreated, h.svc.GetGuildByName(c.Request.Context(), req.Name))
}

func (h *GuildHandler) listGuilds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"guilds": h.svc.GetAllGuilds(c.Request.Context())})
}

func (h *GuildHandler) getGuild(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	g := h.svc.GetGuildByID(c.Request.Context(), id)
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GuildHandler) updateGuild(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Tag         *string `json:"tag"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upd := guild.GuildUpdate{Name: req.Name, Tag: req.Tag, Description: req.Description}
	if !h.svc.UpdateGuild(c.Request.Context(), id, upd, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guild update failed"})
		return
	}
	c.JSON(http.StatusOK, h.svc.GetGuildByID(c.Request.Context(), id))
}

func (h *GuildHandler) deleteGuild(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !h.svc.DeleteGuild(c.Request.Context(), id, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guild dissolution failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) listMembers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": h.svc.GetGuildMembers(c.Request.Context(), id)})
}

func (h *GuildHandler) leaveGuild(c *gin.Context) {
	me := middleware.GetPlayerUUID(c)
	if !h.svc.RemoveGuildMember(c.Request.Context(), me, me) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leave failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) kickMember(c *gin.Context) {
	target, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player uuid"})
		return
	}
	if !h.svc.RemoveGuildMember(c.Request.Context(), target, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kick failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) updateRole(c *gin.Context) {
	target, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player uuid"})
		return
	}
	var req struct {
		Role model.GuildRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.UpdateMemberRole(c.Request.Context(), target, req.Role, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) submitApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	_ = c.ShouldBindJSON(&req)
	if !h.svc.SubmitApplication(c.Request.Context(), id, actor(c), req.Message) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application failed"})
		return
	}
	c.Status(http.StatusCreated)
}

func (h *GuildHandler) listApplications(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": h.svc.GetGuildApplications(c.Request.Context(), id)})
}

func (h *GuildHandler) processApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.ProcessApplication(c.Request.Context(), id, req.Approve, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application processing failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) sendInvitation(c *gin.Context) {
	var req struct {
		PlayerUUID uuid.UUID `json:"player_uuid" binding:"required"`
		PlayerName string    `json:"player_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target := guild.PlayerRef{UUID: req.PlayerUUID, Name: req.PlayerName}
	if !h.svc.SendInvitation(c.Request.Context(), target, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitation failed"})
		return
	}
	c.Status(http.StatusCreated)
}

func (h *GuildHandler) myInvitations(c *gin.Context) {
	me := middleware.GetPlayerUUID(c)
	c.JSON(http.StatusOK, gin.H{"invitations": h.svc.PendingInvitations(c.Request.Context(), me)})
}

func (h *GuildHandler) processInvitation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.ProcessInvitation(c.Request.Context(), id, req.Accept, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitation processing failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) createRelation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		OtherGuildID int64              `json:"other_guild_id" binding:"required"`
		RelationType model.RelationType `json:"relation_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.CreateGuildRelation(c.Request.Context(), id, req.OtherGuildID, req.RelationType, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "relation creation failed"})
		return
	}
	c.Status(http.StatusCreated)
}

func (h *GuildHandler) listRelations(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"relations": h.svc.GetGuildRelations(c.Request.Context(), id)})
}

func (h *GuildHandler) processRelation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status model.RelationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.UpdateGuildRelationStatus(c.Request.Context(), id, req.Status, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "relation update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) deleteRelation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !h.svc.DeleteGuildRelation(c.Request.Context(), id, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "relation removal failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) contribute(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Amount      int64                  `json:"amount" binding:"required"`
		Type        model.ContributionType `json:"type" binding:"required"`
		Description string                 `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.Contribute(c.Request.Context(), id, req.Amount, req.Type, actor(c), req.Description) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contribution failed"})
		return
	}
	c.JSON(http.StatusOK, h.svc.GetGuildEconomy(c.Request.Context(), id))
}

func (h *GuildHandler) getEconomy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	eco := h.svc.GetGuildEconomy(c.Request.Context(), id)
	if eco == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}
	c.JSON(http.StatusOK, eco)
}

func (h *GuildHandler) listContributions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)
	c.JSON(http.StatusOK, gin.H{
		"contributions": h.svc.GetGuildContributions(c.Request.Context(), id, limit, offset),
	})
}

func (h *GuildHandler) listLogs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)
	c.JSON(http.StatusOK, gin.H{
		"logs": h.svc.GetGuildLogs(c.Request.Context(), id, limit, offset),
	})
}

func (h *GuildHandler) setHome(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var loc guild.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.svc.SetGuildHome(c.Request.Context(), id, loc, middleware.GetPlayerUUID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "home update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) getHome(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	home := h.svc.GetGuildHome(c.Request.Context(), id)
	if home == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no home set"})
		return
	}
	c.JSON(http.StatusOK, home)
}

func (h *GuildHandler) leaderboard(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))
	c.JSON(http.StatusOK, gin.H{"guilds": h.svc.TopGuilds(c.Request.Context(), n)})
}

func (h *GuildHandler) myGuild(c *gin.Context) {
	g := h.svc.GetPlayerGuild(c.Request.Context(), middleware.GetPlayerUUID(c))
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no guild"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GuildHandler) setFrozen(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Frozen bool   `json:"frozen"`
		Actor  string `json:"actor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin := guild.PlayerRef{Name: req.Actor}
	if !h.svc.UpdateGuildFrozenStatus(c.Request.Context(), id, req.Frozen, admin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frozen status update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) cleanLogs(c *gin.Context) {
	var req struct {
		DaysToKeep int `json:"days_to_keep" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	removed := h.svc.CleanOldLogs(c.Request.Context(), req.DaysToKeep)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
