package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

// listRecentHandler handles GET /api/v1/nodes?limit=&types=gathering,aid.
func (s *Server) listRecentHandler(c *gin.Context) {
	limit := parseLimit(c, defaultListLimit)
	var kinds []string
	if raw := c.Query("types"); raw != "" {
		kinds = strings.Split(raw, ",")
	}

	nodes, err := s.reader.ListRecent(c.Request.Context(), limit, kinds)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// listRecentForScopeHandler handles GET /api/v1/nodes/scope?lat=&lng=&radius_km=&limit=.
func (s *Server) listRecentForScopeHandler(c *gin.Context) {
	var q scopeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	nodes, err := s.reader.ListRecentForScope(c.Request.Context(), q.Lat, q.Lng, q.RadiusKM, q.limitOrDefault(defaultListLimit))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// getNodeDetailHandler handles GET /api/v1/nodes/:id.
func (s *Server) getNodeDetailHandler(c *gin.Context) {
	node, citations, found, err := s.reader.GetNodeDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !found {
		writeServiceError(c, errNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node, "citations": citations})
}

func parseLimit(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
