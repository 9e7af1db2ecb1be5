package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"curie-dashboard/internal/llm"
	"curie-dashboard/pkg"
)

var (
	// ErrEmptyInput rejects whitespace-only sends before any network
	// call is made.
	ErrEmptyInput = errors.New("empty message")
	// ErrSessionBusy rejects a send issued while a previous turn is
	// still awaiting completion. The transcript is unchanged.
	ErrSessionBusy = errors.New("session busy")
)

// ChatService assembles telemetry-grounded context and forwards it to
// the completion service. Failures never reach the interactive layer as
// raw errors: every failed completion degrades to FallbackMessage.
type ChatService struct {
	LLM     llm.Client
	Persona Persona
	Log     *zap.Logger
}

// NewChatService constructs a ChatService with the given completion
// client, persona literals and logger.
func NewChatService(client llm.Client, persona Persona, log *zap.Logger) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{LLM: client, Persona: persona, Log: log}
}

// BuildMessages prepends the populated system instruction to the visible
// transcript. The system entry is never part of the transcript itself.
func (s *ChatService) BuildMessages(snap pkg.TelemetrySnapshot, transcript []pkg.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(transcript)+1)
	out = append(out, llm.Message{Role: string(pkg.RoleSystem), Content: systemPrompt(s.Persona, snap)})
	for _, m := range transcript {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// Complete performs one non-streaming completion call for the given
// request. On success the response carries exactly the generated text.
// On any transport or shape failure the response carries the fixed
// fallback message and the error is returned for status mapping; the
// failure detail is logged here, never surfaced to the caller.
func (s *ChatService) Complete(ctx context.Context, req pkg.ChatRequest) (pkg.ChatResponse, error) {
	messages := s.BuildMessages(req.Telemetry, req.Messages)
	reply, err := s.LLM.Chat(ctx, messages)
	if err != nil {
		// err already carries endpoint, model, status and body excerpt
		// from the llm client
		s.Log.Error("completion call failed",
			zap.Error(err),
			zap.Int("transcript_len", len(req.Messages)),
			zap.Float64("weight", req.Telemetry.Weight),
		)
		return pkg.ChatResponse{Content: FallbackMessage}, err
	}
	return pkg.ChatResponse{Content: reply}, nil
}

// Send runs one full chat turn against a session: reject empty input,
// take the busy guard, append the user message, assemble context, await
// the completion and append the assistant reply (or the fallback). The
// assistant message is always appended strictly after the triggering
// user message; no partial appends occur.
func (s *ChatService) Send(ctx context.Context, sess *Session, input string) (pkg.Message, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return pkg.Message{}, ErrEmptyInput
	}
	if !sess.beginTurn() {
		return pkg.Message{}, ErrSessionBusy
	}
	defer sess.endTurn()

	sess.Append(pkg.RoleUser, input)

	transcript := sess.Transcript()
	wire := make([]pkg.ChatMessage, 0, len(transcript))
	for _, m := range transcript {
		wire = append(wire, pkg.ChatMessage{Role: m.Role, Content: m.Content})
	}

	// A failed completion still yields a message: Complete substitutes
	// the fallback text and the session stays usable for the next turn.
	resp, _ := s.Complete(ctx, pkg.ChatRequest{Messages: wire, Telemetry: sess.Telemetry})
	return sess.Append(pkg.RoleAssistant, resp.Content), nil
}
