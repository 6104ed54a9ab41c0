// Package voice runs voice search sessions: audio goes to a transcriber and each
// recognized fragment becomes a search query.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"compara-mercado/internal/ai"

	"go.uber.org/zap"
)

// AutoCloseDelay is how long a session stays open after the end of the user's turn
const AutoCloseDelay = 500 * time.Millisecond

var ErrSessionClosed = errors.New("voice session is closed")

// Options configures a session
type Options struct {
	// OnQuery receives every non-empty transcribed fragment.
	OnQuery func(text string)
	// AutoCloseDelay overrides the default delay; zero means AutoCloseDelay.
	AutoCloseDelay time.Duration
}

// Session is one voice search interaction
type Session struct {
	stream  ai.TranscriptionStream
	onQuery func(string)
	delay   time.Duration
	logger  *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error

	mu      sync.Mutex
	closing bool
	timer   *time.Timer
	err     error
}

// Start opens a transcription stream and begins receiving transcripts
func Start(ctx context.Context, transcriber ai.Transcriber, opts Options, logger *zap.Logger) (*Session, error) {
	stream, err := transcriber.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transcription: %w", err)
	}

	delay := opts.AutoCloseDelay
	if delay <= 0 {
		delay = AutoCloseDelay
	}
	onQuery := opts.OnQuery
	if onQuery == nil {
		onQuery = func(string) {}
	}

	s := &Session{
		stream:  stream,
		onQuery: onQuery,
		delay:   delay,
		logger:  logger,
		done:    make(chan struct{}),
	}

	go s.receive()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

// SendAudio forwards a frame of 16 kHz mono PCM audio
func (s *Session) SendAudio(pcm []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	if err := s.stream.SendAudio(pcm); err != nil {
		s.fail(err)
		return ErrSessionClosed
	}
	return nil
}

// Done is closed when the session has ended
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the stream error that ended the session, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the session and releases the stream. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closing = true
		if s.timer != nil {
			s.timer.Stop()
		}
		s.mu.Unlock()

		s.closeErr = s.stream.Close()
		close(s.done)
	})
	return s.closeErr
}

func (s *Session) receive() {
	for {
		tr, err := s.stream.Recv()
		if err != nil {
			s.fail(err)
			return
		}

		if text := strings.TrimSpace(tr.Text); text != "" {
			s.onQuery(text)
		}
		if tr.TurnComplete {
			s.scheduleClose()
		}
	}
}

func (s *Session) scheduleClose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, func() { s.Close() })
	}
}

// fail records err and ends the session. Errors raised by a local Close are ignored.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.err = err
	s.mu.Unlock()

	s.logger.Warn("Voice session failed", zap.Error(err))
	s.Close()
}
