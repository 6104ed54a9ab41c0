package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// AudioMIMEType is the format of voice frames: 16 kHz mono 16-bit PCM
const AudioMIMEType = "audio/pcm;rate=16000"

const transcriptionInstruction = "Você é um assistente de busca para um supermercado. " +
	"Transcreva apenas o que o usuário quer comprar. Não responda com voz, apenas transcreva."

// Transcript is a fragment of recognized speech
type Transcript struct {
	Text         string
	TurnComplete bool
}

// TranscriptionStream is one open speech recognition session
type TranscriptionStream interface {
	SendAudio(pcm []byte) error
	Recv() (Transcript, error)
	Close() error
}

// Transcriber opens speech recognition sessions
type Transcriber interface {
	Start(ctx context.Context) (TranscriptionStream, error)
}

// LiveTranscriber transcribes speech over the Gemini Live API
type LiveTranscriber struct {
	client *genai.Client
	model  string
}

// NewLiveTranscriber creates a LiveTranscriber. An empty API key yields ErrNotConfigured.
func NewLiveTranscriber(ctx context.Context, apiKey, model string) (*LiveTranscriber, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &LiveTranscriber{client: client, model: model}, nil
}

// Start opens a live session that transcribes the user's audio input
func (t *LiveTranscriber) Start(ctx context.Context) (TranscriptionStream, error) {
	session, err := t.client.Live.Connect(ctx, t.model, &genai.LiveConnectConfig{
		ResponseModalities:      []genai.Modality{genai.ModalityAudio},
		InputAudioTranscription: &genai.AudioTranscriptionConfig{},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(transcriptionInstruction)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open live session: %w", err)
	}
	return &liveStream{session: session}, nil
}

type liveStream struct {
	session *genai.Session
}

func (s *liveStream) SendAudio(pcm []byte) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: pcm, MIMEType: AudioMIMEType},
	})
}

// Recv blocks until the server reports transcribed input or the end of a turn.
// Messages carrying neither are skipped.
func (s *liveStream) Recv() (Transcript, error) {
	for {
		msg, err := s.session.Receive()
		if err != nil {
			return Transcript{}, err
		}
		content := msg.ServerContent
		if content == nil {
			continue
		}

		var tr Transcript
		if content.InputTranscription != nil {
			tr.Text = content.InputTranscription.Text
		}
		tr.TurnComplete = content.TurnComplete
		if tr.Text != "" || tr.TurnComplete {
			return tr, nil
		}
	}
}

func (s *liveStream) Close() error {
	return s.session.Close()
}

// NoTranscriber refuses every session; used when the AI service is not configured
type NoTranscriber struct{}

func (NoTranscriber) Start(context.Context) (TranscriptionStream, error) {
	return nil, ErrNotConfigured
}
