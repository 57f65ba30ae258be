// Package announce turns announcer requests into the messages pushed to
// viewers.
//
// Requests are never rejected: a body that is not a JSON object, or fields
// of the wrong type, degrade to absent values. A request that carries a
// non-null result is a DISPLAY_RESULT; everything else is a DISPLAY_PROGRAM
// whose payload has no result key at all.
package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/playperu/resultboard/internal/metrics"
	"github.com/playperu/resultboard/internal/resultboard"
)

// Request is the decoded /announce body. Result is kept verbatim so viewers
// receive exactly what the announcer sent.
type Request struct {
	ProgramName *string         `json:"program_name"`
	Section     *string         `json:"section"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type Message struct {
	Type    resultboard.MessageType `json:"type"`
	Payload Payload                 `json:"payload"`
}

type Payload struct {
	ProgramName *string         `json:"program_name"`
	Section     *string         `json:"section"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Decode parses body leniently. It never fails.
func Decode(body []byte) Request {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Request{}
	}

	return Request{
		ProgramName: optionalString(fields["program_name"]),
		Section:     optionalString(fields["section"]),
		Result:      fields["result"],
	}
}

func optionalString(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

// HasResult reports whether r carries a non-null result.
func (r Request) HasResult() bool {
	trimmed := bytes.TrimSpace(r.Result)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Classify builds the viewer message for r.
func Classify(r Request) Message {
	msg := Message{
		Type: resultboard.MessageDisplayProgram,
		Payload: Payload{
			ProgramName: r.ProgramName,
			Section:     r.Section,
		},
	}
	if r.HasResult() {
		msg.Type = resultboard.MessageDisplayResult
		msg.Payload.Result = bytes.TrimSpace(r.Result)
	}
	return msg
}

// Publisher hands an encoded message to the broadcast domain.
type Publisher interface {
	Publish(ctx context.Context, msg []byte) error
}

type Service struct {
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Announce
}

// NewService creates an announcement service. m may be nil.
func NewService(logger *slog.Logger, publisher Publisher, m *metrics.Announce) *Service {
	return &Service{publisher: publisher, logger: logger, metrics: m}
}

// Announce classifies r and initiates the broadcast. It does not wait for,
// or report on, delivery to individual viewers.
func (s *Service) Announce(ctx context.Context, r Request) (Message, error) {
	msg := Classify(r)

	data, err := json.Marshal(msg)
	if err != nil {
		return msg, fmt.Errorf("encoding announcement: %w", err)
	}

	if err := s.publisher.Publish(ctx, data); err != nil {
		return msg, fmt.Errorf("publishing announcement: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Announcements.WithLabelValues(string(msg.Type)).Inc()
	}
	s.logger.Info("announcement broadcast", "type", msg.Type, "program_name", deref(msg.Payload.ProgramName))
	return msg, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
