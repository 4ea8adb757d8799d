package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moduleforge/moduleforge/internal/server/services"
)

type createLoreRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	SortOrder int    `json:"sortOrder"`
}

type updateLoreRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Category  *string `json:"category"`
	SortOrder *int    `json:"sortOrder"`
}

func (s *Server) listLore(c *gin.Context) {
	articles, err := s.lore.List(c.Request.Context(), c.Param("worldId"), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (s *Server) createLore(c *gin.Context) {
	var req createLoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	article, err := s.lore.Create(c.Request.Context(), c.Param("worldId"), currentUserID(c),
		req.Title, req.Content, req.Category, req.SortOrder)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (s *Server) getLore(c *gin.Context) {
	article, err := s.lore.Get(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (s *Server) updateLore(c *gin.Context) {
	var req updateLoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	article, err := s.lore.Update(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id"),
		services.LoreUpdate{
			Title:     req.Title,
			Content:   req.Content,
			Category:  req.Category,
			SortOrder: req.SortOrder,
		})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (s *Server) deleteLore(c *gin.Context) {
	if err := s.lore.Delete(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
