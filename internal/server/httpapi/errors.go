package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/gin-gonic/gin"
)

func (s *Server) writeError(c *gin.Context, err error) {
	var verr *common.ValidationError
	var rl *common.RateLimitError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message, "field": verr.Field})

	case errors.As(err, &rl):
		secs := int(math.Ceil(rl.RetryAfter(s.now()).Seconds()))
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message":              "Quick lookup limit reached. Next lookup available at " + rl.NextAvailableDisplay() + ".",
			"nextAvailableAt":      rl.NextAvailableISO(),
			"nextAvailableDisplay": rl.NextAvailableDisplay(),
		})

	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})

	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
