package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// actorDetailHandler handles GET /api/v1/actors/:id.
func (s *Server) actorDetailHandler(c *gin.Context) {
	actor, found, err := s.reader.ActorDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !found {
		writeServiceError(c, errNotFound)
		return
	}
	c.JSON(http.StatusOK, actor)
}

// actorStoriesHandler handles GET /api/v1/actors/:id/stories.
func (s *Server) actorStoriesHandler(c *gin.Context) {
	stories, err := s.reader.ActorStories(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

// actorsActiveInAreaHandler handles GET /api/v1/actors/scope?lat=&lng=&radius_km=&limit=.
func (s *Server) actorsActiveInAreaHandler(c *gin.Context) {
	var q scopeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	actors, err := s.reader.ActorsActiveInArea(c.Request.Context(), q.Lat, q.Lng, q.RadiusKM, q.limitOrDefault(defaultListLimit))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, actors)
}
