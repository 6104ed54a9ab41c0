package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"compara-mercado/internal/ai"
	"compara-mercado/internal/metrics"

	ws "github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// echoStream answers every audio frame with the next scripted transcript
type echoStream struct {
	mu     sync.Mutex
	script []ai.Transcript
	out    chan ai.Transcript
	done   chan struct{}
	once   sync.Once
	frames int
}

func newEchoStream(script ...ai.Transcript) *echoStream {
	return &echoStream{script: script, out: make(chan ai.Transcript, len(script)), done: make(chan struct{})}
}

func (s *echoStream) SendAudio(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	if len(s.script) > 0 {
		s.out <- s.script[0]
		s.script = s.script[1:]
	}
	return nil
}

func (s *echoStream) Recv() (ai.Transcript, error) {
	select {
	case tr := <-s.out:
		return tr, nil
	case <-s.done:
		return ai.Transcript{}, io.EOF
	}
}

func (s *echoStream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

type stubTranscriber struct {
	stream ai.TranscriptionStream
}

func (t stubTranscriber) Start(context.Context) (ai.TranscriptionStream, error) {
	return t.stream, nil
}

func newVoiceServer(t *testing.T, transcriber ai.Transcriber, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	f := newAPIFixture(t, stubGenerator{})
	h := NewVoiceHandler(transcriber, f.catalog, []string{"*"}, m, zap.NewNop())
	h.autoCloseDelay = 20 * time.Millisecond

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialVoice(t *testing.T, srv *httptest.Server) (*ws.Conn, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/voice", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func readVoiceMessage(t *testing.T, ctx context.Context, conn *ws.Conn) VoiceMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg VoiceMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestVoice_TranscriptRunsSearchAndAutoCloses(t *testing.T) {
	m := metrics.New()
	stream := newEchoStream(ai.Transcript{Text: " café ", TurnComplete: true})
	srv := newVoiceServer(t, stubTranscriber{stream: stream}, m)
	conn, ctx := dialVoice(t, srv)

	require.NoError(t, conn.Write(ctx, ws.MessageBinary, make([]byte, 320)))

	msg := readVoiceMessage(t, ctx, conn)
	assert.Equal(t, VoiceMessageTranscript, msg.Type)
	assert.Equal(t, "café", msg.Text)
	require.Len(t, msg.Results, 1)
	assert.Equal(t, "p2", msg.Results[0].ID)

	msg = readVoiceMessage(t, ctx, conn)
	assert.Equal(t, VoiceMessageClosed, msg.Type)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.VoiceSessions.WithLabelValues("completed")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestVoice_StopCommandClosesSession(t *testing.T) {
	m := metrics.New()
	stream := newEchoStream()
	srv := newVoiceServer(t, stubTranscriber{stream: stream}, m)
	conn, ctx := dialVoice(t, srv)

	require.NoError(t, conn.Write(ctx, ws.MessageText, []byte("stop")))

	msg := readVoiceMessage(t, ctx, conn)
	assert.Equal(t, VoiceMessageClosed, msg.Type)
	select {
	case <-stream.done:
	case <-time.After(time.Second):
		t.Fatal("stream was not released")
	}
}

func TestVoice_NotConfigured(t *testing.T) {
	m := metrics.New()
	srv := newVoiceServer(t, ai.NoTranscriber{}, m)
	conn, ctx := dialVoice(t, srv)

	msg := readVoiceMessage(t, ctx, conn)
	assert.Equal(t, VoiceMessageClosed, msg.Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VoiceSessions.WithLabelValues("failed")))
}
