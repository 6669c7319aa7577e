package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docintake/internal/app"
	"docintake/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SelectModelRequest struct {
	Model string `json:"model" binding:"required"`
}

type StreamRequest struct {
	Content   string `json:"content" binding:"required"`
	MaxTokens int    `json:"max_tokens" binding:"min=0"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SelectModel(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}

	var req SelectModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	updated, err := h.chatService.SelectModel(c.Request.Context(), sess.ID, req.Model)
	if err != nil {
		writeError(c, err, "select model failed")
		return
	}
	response.OK(c, gin.H{
		"model":           updated.Model,
		"history_cleared": updated.Model != sess.Model,
	})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"model":    sess.Model,
		"messages": sess.History(),
	})
}

// StreamMessage answers with server-sent events once the first chunk arrives. Failures
// before that point are ordinary JSON errors.
func (h *ChatHandler) StreamMessage(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}

	var req StreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	started := false
	begin := func() {
		if started {
			return
		}
		started = true
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
	}

	full, err := h.chatService.Stream(c.Request.Context(), app.StreamInput{
		SessionID: sess.ID,
		Content:   req.Content,
		MaxTokens: req.MaxTokens,
	}, func(chunk string) error {
		begin()
		if _, writeErr := c.Writer.Write([]byte("data: " + sanitizeSSE(chunk) + "\n\n")); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if !started {
			writeError(c, err, "stream message failed")
			return
		}
		if _, writeErr := c.Writer.Write([]byte(fmt.Sprintf("event: error\ndata: %s\n\n", sanitizeSSE(err.Error())))); writeErr == nil {
			flusher.Flush()
		}
		return
	}

	begin()
	if _, writeErr := c.Writer.Write([]byte("event: done\ndata: " + sanitizeSSE(full) + "\n\n")); writeErr == nil {
		flusher.Flush()
	}
}

func sanitizeSSE(input string) string {
	replaced := strings.ReplaceAll(input, "\r\n", "\\n")
	replaced = strings.ReplaceAll(replaced, "\n", "\\n")
	return replaced
}
