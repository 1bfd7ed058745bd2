package signature

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

func newTestSigner(opts ...Option) *Signer {
	base := []Option{
		WithClock(fixedClock),
		WithRandom(bytes.NewReader(bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6}, 8))),
	}
	return NewSigner(append(base, opts...)...)
}

func TestSigner_Sign(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantSig string
	}{
		{
			name:    "open",
			req:     Request{Action: Open, AppID: "app", ClientID: "client", Members: "b:a", MasterKey: "masterkey"},
			wantSig: "1ca15bd91e0d85a8229fdcb5c958c6a7224fcc4e",
		},
		{
			name:    "start",
			req:     Request{Action: Start, AppID: "app", ClientID: "client", Members: "b:a", MasterKey: "masterkey"},
			wantSig: "ba2a1e55b1bbb385d1704ad2af1812df80af25e9",
		},
		{
			name:    "add",
			req:     Request{Action: Add, AppID: "app", ClientID: "client", ConversationID: "conv", Members: "b:a", MasterKey: "masterkey"},
			wantSig: "abc0d545389d1e61a0eaa474f4678a6dc775d334",
		},
		{
			name:    "remove",
			req:     Request{Action: Remove, AppID: "app", ClientID: "client", ConversationID: "conv", Members: "a:b", MasterKey: "masterkey"},
			wantSig: "269b4bc7d18e767b8190b972373252bde7f31cbf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestSigner().Sign(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, int64(1700000000), res.Timestamp)
			assert.Equal(t, "abc123d", res.Nonce)
			assert.Equal(t, tt.wantSig, res.Signature)
			assert.Equal(t, tt.req.Members, res.Members, "members must keep caller order")
			assert.Equal(t, tt.req.Action, res.Action)
		})
	}
}

func TestSigner_ResultMatchesCanonicalMessage(t *testing.T) {
	req := Request{Action: Add, AppID: "A1", ClientID: "C1", ConversationID: "CV1", Members: "z:y", MasterKey: "k"}
	res, err := NewSigner().Sign(context.Background(), req)
	require.NoError(t, err)

	msg := BuildMessage(res.Action, res.AppID, res.ClientID, res.ConversationID, res.Members, res.Timestamp, res.Nonce)
	assert.Equal(t, Sign(msg, "k"), res.Signature)
}

func TestSigner_UsesSystemClock(t *testing.T) {
	before := time.Now().Unix()
	res, err := NewSigner().Sign(context.Background(), Request{Action: Open, MasterKey: "k"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Timestamp, before)
	assert.LessOrEqual(t, res.Timestamp, time.Now().Unix())
}

func TestClock_TimestampIsUTCEpoch(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	c := Clock(func() time.Time { return time.Date(2023, 11, 15, 7, 13, 20, 999, loc) })
	assert.Equal(t, int64(1700000000), c.Timestamp())
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"missing key", Request{Action: Open}, ErrMissingMasterKey},
		{"open without members", Request{Action: Open, MasterKey: "k"}, nil},
		{"start without members", Request{Action: Start, MasterKey: "k"}, ErrMissingMembers},
		{"add without members", Request{Action: Add, ConversationID: "c", MasterKey: "k"}, ErrMissingMembers},
		{"add without conversation", Request{Action: Add, Members: "a", MasterKey: "k"}, ErrMissingConversation},
		{"remove without conversation", Request{Action: Remove, Members: "a", MasterKey: "k"}, ErrMissingConversation},
		{"start without conversation", Request{Action: Start, Members: "a", MasterKey: "k"}, nil},
		{"unsupported needs members", Request{Action: ParseAction("join"), MasterKey: "k"}, ErrMissingMembers},
		{"invalid utf8 member", Request{Action: Start, Members: "b\xff:a", MasterKey: "k"}, ErrInvalidUTF8},
		{"invalid utf8 app id", Request{Action: Open, AppID: "app\xc3", MasterKey: "k"}, ErrInvalidUTF8},
		{"invalid utf8 client id", Request{Action: Open, ClientID: "\xfe", MasterKey: "k"}, ErrInvalidUTF8},
		{"invalid utf8 conversation", Request{Action: Add, ConversationID: "c\x80", Members: "a", MasterKey: "k"}, ErrInvalidUTF8},
		{"non-ascii utf8 is fine", Request{Action: Start, AppID: "äpp", Members: "zoë:日本", MasterKey: "k"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSigner_ValidationStopsBeforeSigning(t *testing.T) {
	s := NewSigner(WithRandom(failingReader{}))
	_, err := s.Sign(context.Background(), Request{Action: Start, MasterKey: "k"})
	assert.ErrorIs(t, err, ErrMissingMembers)
}

func TestSigner_NonceError(t *testing.T) {
	s := NewSigner(WithRandom(failingReader{}))
	_, err := s.Sign(context.Background(), Request{Action: Open, MasterKey: "k"})
	require.Error(t, err)
}

func TestAssemble(t *testing.T) {
	req := Request{Action: Add, AppID: "A", ClientID: "C", ConversationID: "V", Members: "m2:m1", MasterKey: "secret"}
	res := Assemble(req, 42, "nnnnnnn", "sig")
	assert.Equal(t, &Result{
		Action:         Add,
		AppID:          "A",
		ClientID:       "C",
		ConversationID: "V",
		Members:        "m2:m1",
		Timestamp:      42,
		Nonce:          "nnnnnnn",
		Signature:      "sig",
	}, res)
}

func TestSigner_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := newTestSigner(WithTracer(tp.Tracer("test")))
	_, err := s.Sign(context.Background(), Request{Action: Start, AppID: "app", Members: "a", MasterKey: "k"})
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "rtm.sign", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("rtm.action", "start"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("rtm.timestamp", 1700000000))
}

func TestSigner_FailedSpanHasErrorStatus(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := newTestSigner(WithTracer(tp.Tracer("test")))
	_, err := s.Sign(context.Background(), Request{Action: Start, MasterKey: "k"})
	require.ErrorIs(t, err, ErrMissingMembers)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Status().Description, "members are required")
}
