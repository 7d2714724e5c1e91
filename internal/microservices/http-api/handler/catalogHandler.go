package handler

import (
	"net/http"
	"strings"

	"musichub/internal/microservices/http-api/dto"
	"musichub/internal/microservices/http-api/middleware"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// RegisterRoutes registers artist and album routes. Writes need the admin role.
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	artists := router.Group("/artists")
	{
		artists.GET("", h.ListArtists)
		artists.GET("/:id", h.GetArtist)
		artists.GET("/:id/albums", h.ListArtistAlbums)
		artists.POST("", middleware.RequireAdmin(), h.CreateArtist)
		artists.PUT("/:id", middleware.RequireAdmin(), h.UpdateArtist)
		artists.DELETE("/:id", middleware.RequireAdmin(), h.DeleteArtist)
	}

	albums := router.Group("/albums")
	{
		albums.GET("", h.ListAlbums)
		albums.GET("/:id", h.GetAlbum)
		albums.POST("", middleware.RequireAdmin(), h.CreateAlbum)
		albums.PUT("/:id", middleware.RequireAdmin(), h.UpdateAlbum)
		albums.DELETE("/:id", middleware.RequireAdmin(), h.DeleteAlbum)
	}
}

// ListArtists GET /api/artists?page=1&page_size=20
func (h *CatalogHandler) ListArtists(c *gin.Context) {
	page, pageSize := parsePage(c)

	resp, err := h.catalogService.ListArtists(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetArtist GET /api/artists/:id
func (h *CatalogHandler) GetArtist(c *gin.Context) {
	id, ok := parseID(c, "id", "artist")
	if !ok {
		return
	}

	resp, err := h.catalogService.GetArtist(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateArtist POST /api/artists
func (h *CatalogHandler) CreateArtist(c *gin.Context) {
	var req dto.CreateArtistDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.catalogService.CreateArtist(c.Request.Context(), middleware.CallerFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateArtist PUT /api/artists/:id
func (h *CatalogHandler) UpdateArtist(c *gin.Context) {
	id, ok := parseID(c, "id", "artist")
	if !ok {
		return
	}

	var req dto.CreateArtistDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.catalogService.UpdateArtist(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteArtist DELETE /api/artists/:id
func (h *CatalogHandler) DeleteArtist(c *gin.Context) {
	id, ok := parseID(c, "id", "artist")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteArtist(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListArtistAlbums GET /api/artists/:id/albums?page=1&page_size=20
func (h *CatalogHandler) ListArtistAlbums(c *gin.Context) {
	id, ok := parseID(c, "id", "artist")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	resp, err := h.catalogService.ListArtistAlbums(c.Request.Context(), id, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListAlbums GET /api/albums?artist_id=1&genre=rock&page=1&page_size=20
func (h *CatalogHandler) ListAlbums(c *gin.Context) {
	artistID, ok := parseOptionalID(c, "artist_id", "artist")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	filter := repository.AlbumFilter{
		ArtistID: artistID,
		Genre:    strings.TrimSpace(c.Query("genre")),
	}
	resp, err := h.catalogService.ListAlbums(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAlbum GET /api/albums/:id
func (h *CatalogHandler) GetAlbum(c *gin.Context) {
	id, ok := parseID(c, "id", "album")
	if !ok {
		return
	}

	resp, err := h.catalogService.GetAlbum(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAlbum POST /api/albums
func (h *CatalogHandler) CreateAlbum(c *gin.Context) {
	var req dto.CreateAlbumDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.catalogService.CreateAlbum(c.Request.Context(), middleware.CallerFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateAlbum PUT /api/albums/:id
func (h *CatalogHandler) UpdateAlbum(c *gin.Context) {
	id, ok := parseID(c, "id", "album")
	if !ok {
		return
	}

	var req dto.CreateAlbumDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.catalogService.UpdateAlbum(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteAlbum DELETE /api/albums/:id
func (h *CatalogHandler) DeleteAlbum(c *gin.Context) {
	id, ok := parseID(c, "id", "album")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteAlbum(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
