package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-relay/http_utils"
	"go.uber.org/zap"
)

type usernameRequest struct {
	Username string `json:"username" binding:"required,max=32"`
}

// Issues a token carrying the username passed as request body. Connecting to
// /ws with it presets the display name.
func (s *Server) TokenGenerator(c *gin.Context) {
	var data usernameRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		response, _ := http_utils.ValidationErrors(err)
		c.JSON(http.StatusBadRequest, response)
		return
	}

	token, payload, err := s.tokenMaker.CreateToken(data.Username, s.config.TokenDuration)

	if err != nil {
		s.logger.Error("cannot create token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, http_utils.NewBaseResponse(false, ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, http_utils.NewDataResponse("token created", gin.H{
		"id":       payload.ID.String(),
		"username": payload.Username,
		"token":    token,
	}))
}

func (s *Server) GetTokenData(c *gin.Context) {
	payload, ok := GetPayload(c)

	if !ok {
		s.logger.Error("auth payload missing from context",
			zap.Error(errors.New("value in auth_payload key of request context could not be casted to *tokens.Payload")),
		)
		c.JSON(http.StatusInternalServerError, http_utils.NewBaseResponse(false, ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, http_utils.NewDataResponse("auth data", gin.H{
		"id":       payload.ID.String(),
		"username": payload.Username,
	}))
}

type checkRoomRequest struct {
	RoomID string `uri:"id" binding:"required"`
}

func (s *Server) CheckRoom(c *gin.Context) {
	var data checkRoomRequest

	if err := c.ShouldBindUri(&data); err != nil {
		response, _ := http_utils.ValidationErrors(err)
		c.JSON(http.StatusBadRequest, response)
		return
	}

	snap, err := s.coordinator.Snapshot(data.RoomID)

	if err != nil {
		c.JSON(http.StatusNotFound, http_utils.NewBaseResponse(false, "room not found"))
		return
	}

	c.JSON(http.StatusOK, http_utils.NewDataResponse("room data", gin.H{
		"id":      snap.RoomID,
		"players": snap.Players,
		"full":    snap.Full(),
	}))
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, http_utils.NewDataResponse("ok", gin.H{
		"rooms":       s.coordinator.Len(),
		"connections": s.wsManager.Len(),
	}))
}
