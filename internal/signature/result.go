// Package signature builds and signs the canonical messages that authorize
// RTM session and conversation operations.
package signature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	ErrMissingMasterKey    = errors.New("master key is required")
	ErrMissingMembers      = errors.New("members are required")
	ErrMissingConversation = errors.New("conversation id is required")
	ErrInvalidUTF8         = errors.New("value is not valid UTF-8")
)

// Request carries the caller-supplied parameters of one signing operation.
type Request struct {
	Action         Action
	AppID          string
	ClientID       string
	ConversationID string
	Members        string // colon-separated, in caller order
	MasterKey      string
}

// Validate checks that the fields the action signs over are present.
func (r Request) Validate() error {
	if r.MasterKey == "" {
		return ErrMissingMasterKey
	}
	// JSON encoding replaces invalid bytes, so the command would no longer
	// match the signed message.
	for _, f := range []struct{ name, value string }{
		{"app id", r.AppID},
		{"client id", r.ClientID},
		{"conversation id", r.ConversationID},
		{"members", r.Members},
	} {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%s: %w", f.name, ErrInvalidUTF8)
		}
	}
	if r.Action.NeedsMembers() && r.Members == "" {
		return fmt.Errorf("%s: %w", r.Action.Raw(), ErrMissingMembers)
	}
	if r.Action.NeedsConversation() && r.ConversationID == "" {
		return fmt.Errorf("%s: %w", r.Action.Raw(), ErrMissingConversation)
	}
	return nil
}

// Result is a signed request. It never holds the master key.
type Result struct {
	Action         Action
	AppID          string
	ClientID       string
	ConversationID string
	Members        string
	Timestamp      int64
	Nonce          string
	Signature      string
}

// Assemble bundles the request fields with the values that were signed.
func Assemble(req Request, timestamp int64, nonce, sig string) *Result {
	return &Result{
		Action:         req.Action,
		AppID:          req.AppID,
		ClientID:       req.ClientID,
		ConversationID: req.ConversationID,
		Members:        req.Members,
		Timestamp:      timestamp,
		Nonce:          nonce,
		Signature:      sig,
	}
}

// Signer produces signed results using an injectable clock and random source.
type Signer struct {
	clock  Clock
	nonces *NonceSource
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Signer) { s.clock = c }
}

// WithRandom overrides the random source nonces are drawn from.
func WithRandom(r io.Reader) Option {
	return func(s *Signer) { s.nonces = NewNonceSource(r) }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Signer) { s.logger = l }
}

// WithTracer sets the tracer that records one span per signed request.
func WithTracer(t trace.Tracer) Option {
	return func(s *Signer) { s.tracer = t }
}

// NewSigner returns a Signer backed by the system clock and crypto/rand
// unless overridden.
func NewSigner(opts ...Option) *Signer {
	s := &Signer{
		clock:  SystemClock,
		nonces: NewNonceSource(nil),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign validates req, then reads the clock, draws a nonce, builds the
// canonical message and signs it.
func (s *Signer) Sign(ctx context.Context, req Request) (*Result, error) {
	_, span := s.tracer.Start(ctx, "rtm.sign")
	defer span.End()

	if err := req.Validate(); err != nil {
		failSpan(span, err)
		return nil, err
	}

	ts := s.clock.Timestamp()
	nonce, err := s.nonces.Generate()
	if err != nil {
		failSpan(span, err)
		return nil, err
	}

	msg := BuildMessage(req.Action, req.AppID, req.ClientID, req.ConversationID, req.Members, ts, nonce)
	sig := Sign(msg, req.MasterKey)

	span.SetAttributes(
		attribute.String("rtm.action", req.Action.String()),
		attribute.String("rtm.app_id", req.AppID),
		attribute.Int64("rtm.timestamp", ts),
	)
	s.logger.Debug("signed request",
		"action", req.Action.String(),
		"app_id", req.AppID,
		"client_id", req.ClientID,
		"timestamp", ts,
		"nonce", nonce,
	)

	return Assemble(req, ts, nonce, sig), nil
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
