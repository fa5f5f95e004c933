package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/gin-gonic/gin"
)

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) scan(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	scan, err := s.scans.ScanEmail(c.Request.Context(), userID(c), req.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (s *Server) scanSelf(c *gin.Context) {
	scan, err := s.scans.ScanSelf(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (s *Server) quickLookup(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	result, err := s.scans.QuickLookup(c.Request.Context(), userID(c), req.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) saveLookup(c *gin.Context) {
	var result models.ScanResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	scan, err := s.scans.SaveLookup(c.Request.Context(), userID(c), &result)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (s *Server) listScans(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid limit", "field": "limit"})
			return
		}
		limit = n
	}

	scans, err := s.scans.ListScans(c.Request.Context(), userID(c), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scans)
}

func (s *Server) latestScan(c *gin.Context) {
	scan, err := s.scans.LatestScan(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (s *Server) latestBreaches(c *gin.Context) {
	breaches, err := s.scans.GetLatestBreaches(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, breaches)
}

func (s *Server) scanBreaches(c *gin.Context) {
	breaches, err := s.scans.GetBreachesForScan(c.Request.Context(), userID(c), c.Param("scanId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, breaches)
}

func (s *Server) regenerateAnalysis(c *gin.Context) {
	scan, err := s.scans.RegenerateAnalysis(c.Request.Context(), userID(c), c.Param("scanId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (s *Server) exportReport(c *gin.Context) {
	exp, err := s.reports.Export(c.Request.Context(), userID(c), c.Param("scanId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}
