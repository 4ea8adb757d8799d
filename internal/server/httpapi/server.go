// Package httpapi exposes the REST surface of ModuleForge over gin. It
// binds and validates request payloads, delegates to the services layer and
// translates sentinel errors into HTTP status codes. No business rule lives
// here.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moduleforge/moduleforge/internal/logging"
	"github.com/moduleforge/moduleforge/internal/server/services"
)

// Server wires the gin engine to the services layer.
type Server struct {
	addr      string
	logger    logging.Logger
	jwtSecret []byte

	users         *services.UserService
	worlds        *services.WorldService
	entries       *services.EntryService
	relationships *services.RelationshipService
	lore          *services.LoreService
	timeline      *services.TimelineService
	uploads       *services.UploadService
}

// NewServer constructs the HTTP server.
func NewServer(
	addr string,
	logger logging.Logger,
	jwtSecret []byte,
	users *services.UserService,
	worlds *services.WorldService,
	entries *services.EntryService,
	relationships *services.RelationshipService,
	lore *services.LoreService,
	timeline *services.TimelineService,
	uploads *services.UploadService,
) *Server {
	return &Server{
		addr:          addr,
		logger:        logger,
		jwtSecret:     jwtSecret,
		users:         users,
		worlds:        worlds,
		entries:       entries,
		relationships: relationships,
		lore:          lore,
		timeline:      timeline,
		uploads:       uploads,
	}
}

// Router builds the gin engine with all routes registered. Everything under
// /api except register and login sits behind the bearer middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")

	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.authMiddleware())
	authed.GET("/auth/me", s.me)

	authed.POST("/uploads/presign", s.presignUpload)

	authed.POST("/worlds", s.createWorld)
	authed.GET("/worlds", s.listWorlds)
	authed.GET("/worlds/:worldId", s.getWorld)
	authed.PATCH("/worlds/:worldId", s.updateWorld)
	authed.DELETE("/worlds/:worldId", s.deleteWorld)

	authed.POST("/worlds/:worldId/entries", s.createEntry)
	authed.GET("/worlds/:worldId/entries", s.listEntries)
	authed.GET("/worlds/:worldId/entries/search", s.searchEntries)
	authed.GET("/worlds/:worldId/entries/:entryId", s.getEntry)
	authed.PATCH("/worlds/:worldId/entries/:entryId", s.updateEntry)
	authed.DELETE("/worlds/:worldId/entries/:entryId", s.deleteEntry)

	authed.GET("/worlds/:worldId/relationships", s.listRelationships)
	authed.POST("/worlds/:worldId/relationships", s.createRelationship)
	authed.POST("/worlds/:worldId/relationships/bulk", s.bulkSaveRelationships)
	authed.PATCH("/worlds/:worldId/relationships/:id", s.updateRelationship)
	authed.DELETE("/worlds/:worldId/relationships/:id", s.deleteRelationship)

	authed.GET("/worlds/:worldId/lore", s.listLore)
	authed.POST("/worlds/:worldId/lore", s.createLore)
	authed.GET("/worlds/:worldId/lore/:id", s.getLore)
	authed.PATCH("/worlds/:worldId/lore/:id", s.updateLore)
	authed.DELETE("/worlds/:worldId/lore/:id", s.deleteLore)

	authed.GET("/worlds/:worldId/timeline", s.listTimeline)
	authed.POST("/worlds/:worldId/timeline", s.createTimeline)
	authed.GET("/worlds/:worldId/timeline/:id", s.getTimeline)
	authed.PATCH("/worlds/:worldId/timeline/:id", s.updateTimeline)
	authed.DELETE("/worlds/:worldId/timeline/:id", s.deleteTimeline)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
