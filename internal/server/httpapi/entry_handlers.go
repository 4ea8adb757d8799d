package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/services"
)

type createEntryRequest struct {
	Type        string `json:"type" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateEntryRequest struct {
	Title         *string                `json:"title"`
	Description   *string                `json:"description"`
	Content       *string                `json:"content"`
	Metadata      []models.MetadataField `json:"metadata"`
	CoverImageURL *string                `json:"coverImageUrl"`
}

func (s *Server) createEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	entry, err := s.entries.Create(c.Request.Context(), c.Param("worldId"), currentUserID(c),
		models.EntryType(req.Type), req.Title, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) listEntries(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 0)
	result, err := s.entries.List(c.Request.Context(), c.Param("worldId"), currentUserID(c),
		c.Query("type"), c.Query("search"), page, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) searchEntries(c *gin.Context) {
	refs, err := s.entries.SearchForLinking(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": refs})
}

func (s *Server) getEntry(c *gin.Context) {
	entry, err := s.entries.Get(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("entryId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) updateEntry(c *gin.Context) {
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	entry, err := s.entries.Update(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("entryId"),
		services.EntryUpdate{
			Title:         req.Title,
			Description:   req.Description,
			Content:       req.Content,
			Metadata:      req.Metadata,
			CoverImageURL: req.CoverImageURL,
		})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteEntry(c *gin.Context) {
	if err := s.entries.Delete(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("entryId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
