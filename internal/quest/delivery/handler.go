package delivery

import (
	"net/http"
	"strconv"

	authdelivery "questlog-backend/internal/auth/delivery"
	"questlog-backend/internal/quest/domain"
	"questlog-backend/internal/quest/usecase"
	"questlog-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	listCacheControl = "public, max-age=300, stale-while-revalidate=30"
	itemCacheControl = "public, max-age=300"
)

// QuestHandler handles quest-related HTTP requests
type QuestHandler struct {
	questUsecase usecase.QuestUsecase
}

// NewQuestHandler creates a new QuestHandler
func NewQuestHandler(questUsecase usecase.QuestUsecase) *QuestHandler {
	return &QuestHandler{
		questUsecase: questUsecase,
	}
}

// GetQuests returns one page of quests
// GET /quests?owner=<id>&completed=false&limit=50&offset=0
func (h *QuestHandler) GetQuests(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := domain.QuestFilter{Limit: limit, Offset: offset}

	if owner := c.Query("owner"); owner != "" {
		filter.OwnerID = &owner
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			apperror.Respond(c, apperror.Validation(map[string]string{"completed": "must be true or false"}))
			return
		}
		filter.Completed = &completed
	}

	quests, total, err := h.questUsecase.ListQuests(c.Request.Context(), filter)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Header("Cache-Control", listCacheControl)
	c.JSON(http.StatusOK, gin.H{
		"quests": quests,
		"total":  total,
	})
}

// GetQuestByID returns a specific quest
// GET /quests/:id
func (h *QuestHandler) GetQuestByID(c *gin.Context) {
	quest, err := h.questUsecase.GetQuest(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Header("Cache-Control", itemCacheControl)
	c.JSON(http.StatusOK, quest)
}

// CreateQuest creates a quest for the caller
// POST /quests
func (h *QuestHandler) CreateQuest(c *gin.Context) {
	var req usecase.CreateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	quest, err := h.questUsecase.CreateQuest(c.Request.Context(), actorOf(c), req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusCreated, gin.H{"message": "Quest added", "quest": quest})
}

// UpdateQuest updates an existing quest
// PUT /quests/:id
func (h *QuestHandler) UpdateQuest(c *gin.Context) {
	var updates usecase.QuestUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		apperror.Respond(c, apperror.FromBinding(err))
		return
	}

	quest, err := h.questUsecase.UpdateQuest(c.Request.Context(), actorOf(c), c.Param("id"), updates)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, quest)
}

// DeleteQuest deletes a quest
// DELETE /quests/:id
func (h *QuestHandler) DeleteQuest(c *gin.Context) {
	if err := h.questUsecase.DeleteQuest(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quest deleted"})
}

func actorOf(c *gin.Context) usecase.Actor {
	identity, ok := authdelivery.IdentityFrom(c)
	if !ok {
		return usecase.Actor{}
	}
	return usecase.Actor{UserID: identity.UserID, Role: identity.Role}
}
