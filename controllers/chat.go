package controllers

import (
	"net/http"

	"smartagro/chat"
	"smartagro/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Chat answers one chat turn: POST {message, language, mode}.
func (s *Server) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := s.Proxy.Answer(c.Request.Context(), req)
	if err != nil {
		if chat.IsBadRequest(err) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		s.Log.Error("AI chat error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
