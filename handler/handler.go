package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopping-list-bot/internal/integrations/line"
	"shopping-list-bot/internal/logger"
)

const (
	headerSignature     = "X-Line-Signature"
	headerCorrelationID = "X-Correlation-Id"
	ackBody             = "OK"
)

type WebhookService interface {
	HandleWebhook(ctx context.Context, body []byte)
}

// Handler acknowledges every LINE callback with 200 OK. Bodies that fail
// signature validation are dropped without being processed.
type Handler struct {
	svc           WebhookService
	channelSecret string
	log           *logger.Logger
}

func NewHandler(svc WebhookService, channelSecret string, log *logger.Logger) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: webhook service must not be nil")
	}
	if log == nil {
		log = logger.New("info")
	}
	return &Handler{svc: svc, channelSecret: channelSecret, log: log}, nil
}

// Handle is the API Gateway proxy entry point used by the Lambda runtime.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, headerCorrelationID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	log := h.log.WithField("correlation_id", correlationID)

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			log.WithError(err).Warn("discarding undecodable request body")
			return ack(correlationID), nil
		}
		body = decoded
	}

	h.process(ctx, log, headerValue(req.Headers, headerSignature), body)
	return ack(correlationID), nil
}

// ServeGin is the POST /callback route of the standalone server.
func (h *Handler) ServeGin(c *gin.Context) {
	correlationID := c.GetHeader(headerCorrelationID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	log := h.log.WithField("correlation_id", correlationID)
	c.Header(headerCorrelationID, correlationID)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.WithError(err).Warn("failed to read request body")
		c.String(http.StatusOK, ackBody)
		return
	}

	h.process(c.Request.Context(), log, c.GetHeader(headerSignature), body)
	c.String(http.StatusOK, ackBody)
}

func (h *Handler) process(ctx context.Context, log *logger.Logger, signature string, body []byte) {
	if err := line.VerifySignature(h.channelSecret, signature, body); err != nil {
		log.WithError(err).Warn("webhook signature rejected")
		return
	}
	h.svc.HandleWebhook(ctx, body)
}

func ack(correlationID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":      "text/plain; charset=utf-8",
			headerCorrelationID: correlationID,
		},
		Body: ackBody,
	}
}

// headerValue looks a header up case-insensitively; API Gateway passes
// headers through with whatever casing the client used.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
