package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultStoryLimit = 20

// topStoriesByEnergyHandler handles GET /api/v1/stories/top?limit=&status=.
func (s *Server) topStoriesByEnergyHandler(c *gin.Context) {
	limit := parseLimit(c, defaultStoryLimit)
	stories, err := s.reader.TopStoriesByEnergy(c.Request.Context(), limit, c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

// topStoriesForScopeHandler handles GET /api/v1/stories/scope?lat=&lng=&radius_km=&limit=.
func (s *Server) topStoriesForScopeHandler(c *gin.Context) {
	var q scopeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	stories, err := s.reader.TopStoriesForScope(c.Request.Context(), q.Lat, q.Lng, q.RadiusKM, q.limitOrDefault(defaultStoryLimit))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

// storyWithSignalsHandler handles GET /api/v1/stories/:id.
func (s *Server) storyWithSignalsHandler(c *gin.Context) {
	story, signals, found, err := s.reader.StoryWithSignals(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !found {
		writeServiceError(c, errNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story, "signals": signals})
}

// tensionResponsesHandler handles GET /api/v1/tensions/:id/responses.
func (s *Server) tensionResponsesHandler(c *gin.Context) {
	rows, err := s.reader.TensionResponses(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
