package handler

import (
	"net/http"

	"musichub/internal/microservices/http-api/dto"
	"musichub/internal/microservices/http-api/middleware"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// RegisterRoutes registers review routes. The group must already run
// middleware.Authenticate.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/reviews")
	{
		reviews.GET("", h.List)
		reviews.GET("/:id", h.Get)

		reviews.POST("", middleware.RequireAuth(), h.Create)
		reviews.PUT("/:id", middleware.RequireAuth(), h.Replace)
		reviews.PATCH("/:id", middleware.RequireAuth(), h.Update)
		reviews.DELETE("/:id", middleware.RequireAuth(), h.Delete)
	}

	router.GET("/albums/:id/reviews", h.ListForAlbum)
}

// Create submits a review
// POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), middleware.CallerFromContext(c), service.SubmitReviewInput{
		AlbumID:    req.AlbumRef(),
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Replace overwrites rating and text
// PUT /api/reviews/:id
func (h *ReviewHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

// Update changes the supplied fields
// PATCH /api/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	h.update(c, false)
}

func (h *ReviewHandler) update(c *gin.Context, full bool) {
	id, ok := parseID(c, "id", "review")
	if !ok {
		return
	}

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if full {
		if req.Rating == nil {
			badRequest(c, "Rating is required")
			return
		}
		if req.ReviewText == nil {
			badRequest(c, "Review text is required")
			return
		}
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), middleware.CallerFromContext(c), id, service.UpdateReviewInput{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Delete removes a review with its likes
// DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "review")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Get returns one review
// GET /api/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "review")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// List filters reviews
// GET /api/reviews?album_id=1&user_id=<uuid>&ordering=-rating
func (h *ReviewHandler) List(c *gin.Context) {
	albumID, ok := parseOptionalID(c, "album_id", "album")
	if !ok {
		return
	}

	filter := repository.ReviewFilter{
		AlbumID:  albumID,
		Ordering: c.Query("ordering"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			badRequest(c, "Invalid user ID")
			return
		}
		filter.UserID = &raw
	}

	reviews, err := h.reviewService.ListReviews(c.Request.Context(), middleware.CallerFromContext(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// ListForAlbum lists the reviews of one album
// GET /api/albums/:id/reviews
func (h *ReviewHandler) ListForAlbum(c *gin.Context) {
	albumID, ok := parseID(c, "id", "album")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListAlbumReviews(c.Request.Context(), middleware.CallerFromContext(c), albumID, c.Query("ordering"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}
