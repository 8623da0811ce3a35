package delivery

import (
	"net/http"
	"strconv"

	authdelivery "questlog-backend/internal/auth/delivery"
	"questlog-backend/internal/guild/usecase"
	"questlog-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const cacheControl = "public, max-age=600"

// GuildHandler handles guild-related HTTP requests
type GuildHandler struct {
	guildUsecase usecase.GuildUsecase
}

func NewGuildHandler(guildUsecase usecase.GuildUsecase) *GuildHandler {
	return &GuildHandler{guildUsecase: guildUsecase}
}

// GetGuilds returns one page of guilds
// GET /guilds?limit=50&offset=0
func (h *GuildHandler) GetGuilds(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	guilds, total, err := h.guildUsecase.ListGuilds(c.Request.Context(), limit, offset)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Header("Cache-Control", cacheControl)
	c.JSON(http.StatusOK, gin.H{
		"guilds": guilds,
		"total":  total,
	})
}

// GetGuildByID returns a specific guild
// GET /guilds/:id
func (h *GuildHandler) GetGuildByID(c *gin.Context) {
	guild, err := h.guildUsecase.GetGuild(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Header("Cache-Control", cacheControl)
	c.JSON(http.StatusOK, guild)
}

// CreateGuild founds a guild owned by the caller
// POST /guilds
func (h *GuildHandler) CreateGuild(c *gin.Context) {
	identity, _ := authdelivery.IdentityFrom(c)
	var req usecase.CreateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	guild, err := h.guildUsecase.CreateGuild(c.Request.Context(), identity.UserID, req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusCreated, guild)
}

// DeleteGuild removes a guild
// DELETE /guilds/:id
func (h *GuildHandler) DeleteGuild(c *gin.Context) {
	if err := h.guildUsecase.DeleteGuild(c.Request.Context(), c.Param("id")); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Guild deleted"})
}
