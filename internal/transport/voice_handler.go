package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"compara-mercado/internal/ai"
	"compara-mercado/internal/metrics"
	"compara-mercado/internal/service"
	"compara-mercado/internal/voice"
	"compara-mercado/internal/websocket"

	ws "github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	VoiceMessageTranscript = "transcript"
	VoiceMessageClosed     = "closed"

	// voiceStopCommand is the text frame a client sends to end the session
	voiceStopCommand  = "stop"
	voiceWriteTimeout = 5 * time.Second
)

// VoiceMessage is sent to the client during a voice search
type VoiceMessage struct {
	Type    string                      `json:"type"`
	Text    string                      `json:"text,omitempty"`
	Results []service.ProductComparison `json:"results,omitempty"`
}

// VoiceHandler streams microphone audio to the transcriber and answers each fragment with search results
type VoiceHandler struct {
	transcriber    ai.Transcriber
	catalog        service.CatalogService
	allowedOrigins []string
	metrics        *metrics.Metrics
	logger         *zap.Logger

	autoCloseDelay time.Duration
}

// NewVoiceHandler creates a new VoiceHandler
func NewVoiceHandler(
	transcriber ai.Transcriber,
	catalog service.CatalogService,
	allowedOrigins []string,
	m *metrics.Metrics,
	logger *zap.Logger,
) *VoiceHandler {
	return &VoiceHandler{
		transcriber:    transcriber,
		catalog:        catalog,
		allowedOrigins: allowedOrigins,
		metrics:        m,
		logger:         logger,
	}
}

// RegisterRoutes registers the voice socket
func (h *VoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/voice", h.Voice)
}

// Voice runs one voice search session over a websocket.
// Binary frames carry 16 kHz mono PCM audio.
func (h *VoiceHandler) Voice(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		OriginPatterns: websocket.OriginPatterns(h.allowedOrigins),
	})
	if err != nil {
		h.logger.Warn("Voice websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := voice.Start(ctx, h.transcriber, voice.Options{
		OnQuery:        func(text string) { h.answer(ctx, conn, text) },
		AutoCloseDelay: h.autoCloseDelay,
	}, h.logger)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			h.logger.Warn("Voice session could not start", zap.Error(err))
		}
		h.metrics.VoiceSessions.WithLabelValues("failed").Inc()
		h.finish(ctx, conn)
		return
	}

	go h.readAudio(ctx, conn, session)
	<-session.Done()

	outcome := "completed"
	if session.Err() != nil {
		outcome = "failed"
	}
	h.metrics.VoiceSessions.WithLabelValues(outcome).Inc()
	h.finish(ctx, conn)
}

// readAudio forwards audio frames until the client stops or disconnects
func (h *VoiceHandler) readAudio(ctx context.Context, conn *ws.Conn, session *voice.Session) {
	defer session.Close()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		switch typ {
		case ws.MessageBinary:
			if err := session.SendAudio(data); err != nil {
				return
			}
		case ws.MessageText:
			if strings.TrimSpace(string(data)) == voiceStopCommand {
				return
			}
		}
	}
}

// answer runs the transcribed fragment as a product search
func (h *VoiceHandler) answer(ctx context.Context, conn *ws.Conn, text string) {
	results, err := h.catalog.Compare(ctx, service.Filters{Query: text})
	if err != nil {
		h.logger.Warn("Voice search failed", zap.String("query", text), zap.Error(err))
		return
	}
	h.write(ctx, conn, VoiceMessage{Type: VoiceMessageTranscript, Text: text, Results: results})
}

func (h *VoiceHandler) finish(ctx context.Context, conn *ws.Conn) {
	h.write(ctx, conn, VoiceMessage{Type: VoiceMessageClosed})
	conn.Close(ws.StatusNormalClosure, "session closed")
}

func (h *VoiceHandler) write(ctx context.Context, conn *ws.Conn, msg VoiceMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal voice message", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, voiceWriteTimeout)
	defer cancel()
	if err := conn.Write(ctx, ws.MessageText, data); err != nil {
		h.logger.Debug("Voice message not delivered", zap.Error(err))
	}
}
