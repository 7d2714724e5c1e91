package handler

import (
	"net/http"

	"musichub/internal/microservices/http-api/middleware"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LikeHandler struct {
	likeService service.LikeService
}

func NewLikeHandler(likeService service.LikeService) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
	}
}

func (h *LikeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/reviews/:id/toggle_like", middleware.RequireAuth(), h.Toggle)
	router.GET("/reviews/:id/like_status", h.Status)
	router.GET("/likes", h.List)
}

// Toggle likes or unlikes a review for the caller
// POST /api/reviews/:id/toggle_like
func (h *LikeHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c, "id", "review")
	if !ok {
		return
	}

	resp, err := h.likeService.ToggleLike(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status reports the like count and whether the caller likes the review
// GET /api/reviews/:id/like_status
func (h *LikeHandler) Status(c *gin.Context) {
	id, ok := parseID(c, "id", "review")
	if !ok {
		return
	}

	resp, err := h.likeService.LikeStatus(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List returns likes filtered by review and/or user
// GET /api/likes?review_id=1&user_id=<uuid>
func (h *LikeHandler) List(c *gin.Context) {
	reviewID, ok := parseOptionalID(c, "review_id", "review")
	if !ok {
		return
	}

	filter := repository.LikeFilter{ReviewID: reviewID}
	if raw := c.Query("user_id"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			badRequest(c, "Invalid user ID")
			return
		}
		filter.UserID = &raw
	}

	likes, err := h.likeService.ListLikes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, likes)
}
