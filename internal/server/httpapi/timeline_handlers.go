package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moduleforge/moduleforge/internal/server/models"
	"github.com/moduleforge/moduleforge/internal/server/services"
)

type createTimelineRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Date        string `json:"date" binding:"required"`
	SortOrder   int    `json:"sortOrder"`
	Importance  string `json:"importance"`
}

type updateTimelineRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Date        *string `json:"date"`
	SortOrder   *int    `json:"sortOrder"`
	Importance  *string `json:"importance"`
}

func (s *Server) listTimeline(c *gin.Context) {
	events, err := s.timeline.List(c.Request.Context(), c.Param("worldId"), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) createTimeline(c *gin.Context) {
	var req createTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	event, err := s.timeline.Create(c.Request.Context(), c.Param("worldId"), currentUserID(c),
		services.TimelineCreate{
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
			Date:        req.Date,
			SortOrder:   req.SortOrder,
			Importance:  models.Importance(req.Importance),
		})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (s *Server) getTimeline(c *gin.Context) {
	event, err := s.timeline.Get(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (s *Server) updateTimeline(c *gin.Context) {
	var req updateTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	upd := services.TimelineUpdate{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Date:        req.Date,
		SortOrder:   req.SortOrder,
	}
	if req.Importance != nil {
		imp := models.Importance(*req.Importance)
		upd.Importance = &imp
	}
	event, err := s.timeline.Update(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id"), upd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (s *Server) deleteTimeline(c *gin.Context) {
	if err := s.timeline.Delete(c.Request.Context(), c.Param("worldId"), currentUserID(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
