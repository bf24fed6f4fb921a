package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatbot-router/internal/domain"
)

const eventTimeout = 2 * time.Minute

// EventHandler procesa un evento de mensajeria ya decodificado.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev domain.InboundEvent) domain.EventKind
}

// WebhookHandler atiende el handshake y los POST de la plataforma.
type WebhookHandler struct {
	logger      *zap.Logger
	bot         EventHandler
	verifyToken string
	wg          sync.WaitGroup
}

func NewWebhookHandler(logger *zap.Logger, bot EventHandler, verifyToken string) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		logger:      logger,
		bot:         bot,
		verifyToken: verifyToken,
	}
}

// Index maneja GET /.
func (h *WebhookHandler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, "Hello world, I am a chat bot")
}

// Verify maneja GET /webhook/.
func (h *WebhookHandler) Verify(c *gin.Context) {
	if c.Query("hub.mode") == "subscribe" && h.verifyToken != "" && c.Query("hub.verify_token") == h.verifyToken {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	h.logger.Warn("webhook verification failed", zap.String("mode", c.Query("hub.mode")))
	c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
}

// Receive maneja POST /webhook/. Responde enseguida y procesa cada evento en background.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var batch domain.WebhookBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.logger.Warn("invalid webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if batch.Object != "page" {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported object"})
		return
	}

	events := 0
	for _, entry := range batch.Entry {
		for _, ev := range entry.Messaging {
			events++
			h.wg.Add(1)
			go func(ev domain.InboundEvent) {
				defer h.wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
				defer cancel()
				h.bot.HandleEvent(ctx, ev)
			}(ev)
		}
	}
	h.logger.Debug("webhook batch accepted", zap.Int("entries", len(batch.Entry)), zap.Int("events", events))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Wait bloquea hasta que terminen los eventos en curso. Se usa al apagar.
func (h *WebhookHandler) Wait() {
	h.wg.Wait()
}
