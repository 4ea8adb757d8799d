package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/services"
)

type createRelationshipRequest struct {
	SourceID string `json:"sourceId" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Label    string `json:"label"`
}

type updateRelationshipRequest struct {
	Label *string `json:"label"`
	Type  *string `json:"type"`
}

type bulkSaveRequest struct {
	Relationships []services.RelationshipInput `json:"relationships"`
	DeletedIDs    []string                     `json:"deletedIds"`
}

func (s *Server) listRelationships(c *gin.Context) {
	rels, err := s.relationships.List(c.Request.Context(), c.Param("worldId"), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relationships": rels})
}

func (s *Server) createRelationship(c *gin.Context) {
	var req createRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rel, err := s.relationships.Create(c.Request.Context(), c.Param("worldId"), currentUserID(c),
		services.RelationshipInput{
			SourceID: req.SourceID,
			TargetID: req.TargetID,
			Type:     models.RelationshipType(req.Type),
			Label:    req.Label,
		})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rel)
}

func (s *Server) bulkSaveRelationships(c *gin.Context) {
	var req bulkSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := s.relationships.BulkSave(c.Request.Context(), c.Param("worldId"), currentUserID(c),
		req.Relationships, req.DeletedIDs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) updateRelationship(c *gin.Context) {
	var req updateRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	upd := services.RelationshipUpdate{Label: req.Label}
	if req.Type != nil {
		t := models.RelationshipType(*req.Type)
		upd.Type = &t
	}
	rel, err := s.relationships.Update(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id"), upd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rel)
}

func (s *Server) deleteRelationship(c *gin.Context) {
	if err := s.relationships.Delete(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
