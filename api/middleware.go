package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-relay/http_utils"
	"go.uber.org/zap"
)

type contextkey string

const authContextKey contextkey = "auth_payload"

func (s *Server) AuthMiddleware(c *gin.Context) {
	header := c.Request.Header.Get("authorization")

	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, http_utils.NewBaseResponse(false, "unauthorized"))
		return
	}

	sArr := strings.Split(header, " ")

	if len(sArr) < 2 || !strings.EqualFold(sArr[0], "bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, http_utils.NewBaseResponse(false, "invalid authorization header"))
		return
	}

	payload, err := s.tokenMaker.VerifyToken(sArr[1])

	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, http_utils.NewBaseResponse(false, err.Error()))
		return
	}

	c.Set(string(authContextKey), payload)

	c.Next()
}

// RequestLogger writes one line per request.
func (s *Server) RequestLogger(c *gin.Context) {
	start := time.Now()

	c.Next()

	s.logger.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}
