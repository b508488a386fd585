package http

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/pipeline"
)

// commandTimeout bounds how long a request waits for the session loop.
const commandTimeout = 5 * time.Second

type selectionRequest struct {
	Value string `json:"value" binding:"required"`
}

type visibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.State())
}

func (s *Server) handleSelection(c *gin.Context) {
	var set func(context.Context, string) error
	switch c.Param("dimension") {
	case "period":
		set = s.session.SetPeriod
	case "magnitude":
		set = s.session.SetMagnitude
	case "depth":
		set = s.session.SetDepth
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown selection dimension"})
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"value\": \"...\"}"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
	defer cancel()
	if err := set(ctx, req.Value); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.State())
}

func (s *Server) handleMenus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"menus": s.menus.All()})
}

func (s *Server) handleLayers(c *gin.Context) {
	crs, ok := parseCRS(c)
	if !ok {
		return
	}
	names := s.session.Layers()
	out := make([]mapview.LayerSnapshot, 0, len(names))
	for _, name := range names {
		if snap, found := s.layers.Snapshot(name); found {
			out = append(out, snap.Project(crs))
		}
	}
	c.JSON(http.StatusOK, gin.H{"layers": out})
}

func (s *Server) handleLayer(c *gin.Context) {
	crs, ok := parseCRS(c)
	if !ok {
		return
	}
	snap, found := s.layers.Snapshot(c.Param("name"))
	if !found || !s.hasLayer(snap.Name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "layer not found"})
		return
	}
	c.JSON(http.StatusOK, snap.Project(crs))
}

func (s *Server) handleVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"visible\": true|false}"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
	defer cancel()
	name := c.Param("name")
	if err := s.session.SetLayerVisible(ctx, name, *req.Visible); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "visible": *req.Visible})
}

func (s *Server) handleLegend(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"title": "Depth (km)", "entries": domain.DepthLegend()})
}

func (s *Server) hasLayer(name string) bool {
	return slices.Contains(s.session.Layers(), name)
}

func parseCRS(c *gin.Context) (string, bool) {
	crs, err := mapview.ParseCRS(c.Query("crs"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return crs, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownPeriod),
		errors.Is(err, domain.ErrUnknownBand):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrUnknownLayer):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
