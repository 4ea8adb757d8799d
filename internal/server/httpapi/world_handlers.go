package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/moduleforge/moduleforge/internal/server/services"
)

type createWorldRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateWorldRequest struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	Content       *string         `json:"content"`
	Metadata      json.RawMessage `json:"metadata"`
	CoverImageURL *string         `json:"coverImageUrl"`
}

func (s *Server) createWorld(c *gin.Context) {
	var req createWorldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	world, err := s.worlds.Create(c.Request.Context(), currentUserID(c), req.Title, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, world)
}

func (s *Server) listWorlds(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 0)
	result, err := s.worlds.List(c.Request.Context(), currentUserID(c), c.Query("search"), page, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getWorld(c *gin.Context) {
	world, counts, err := s.worlds.Get(c.Request.Context(), c.Param("worldId"), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"world": world, "entryCounts": counts})
}

func (s *Server) updateWorld(c *gin.Context) {
	var req updateWorldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	world, err := s.worlds.Update(c.Request.Context(), c.Param("worldId"), currentUserID(c), services.WorldUpdate{
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
	c.JSON(http.StatusOK, world)
}

func (s *Server) deleteWorld(c *gin.Context) {
	if err := s.worlds.Delete(c.Request.Context(), c.Param("worldId"), currentUserID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
