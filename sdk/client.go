// Package sdk provides a Go client for producing signed RTM commands.
//
// Basic usage:
//
//	c := sdk.NewClient("app-id", masterKey)
//	cmd, err := c.Start(ctx, "alice", "bob", "carol")
//	data, _ := json.Marshal(cmd) // {"cmd":"conv","op":"start",...}
//
// The client only signs; delivering the command to the RTM server is up to
// the caller.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oktsec/rtmsign/internal/render"
	"github.com/oktsec/rtmsign/internal/signature"
)

// Command is a signed RTM command ready to be JSON encoded.
type Command = render.CommandPayload

// ErrInvalidMember is returned for member ids that contain the list separator.
var ErrInvalidMember = errors.New("member id must not contain ':'")

// Option configures a Client.
type Option func(*options)

type options struct {
	clock  func() time.Time
	random io.Reader
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithRandom overrides the random source nonces are drawn from.
func WithRandom(r io.Reader) Option {
	return func(o *options) { o.random = r }
}

// Client signs RTM commands for one application.
type Client struct {
	appID     string
	masterKey string
	signer    *signature.Signer
}

// NewClient creates a client signing with masterKey on behalf of appID.
func NewClient(appID, masterKey string, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var signerOpts []signature.Option
	if o.clock != nil {
		signerOpts = append(signerOpts, signature.WithClock(o.clock))
	}
	if o.random != nil {
		signerOpts = append(signerOpts, signature.WithRandom(o.random))
	}
	return &Client{
		appID:     appID,
		masterKey: masterKey,
		signer:    signature.NewSigner(signerOpts...),
	}
}

// Open signs a session open for clientID.
func (c *Client) Open(ctx context.Context, clientID string) (*Command, error) {
	return c.sign(ctx, signature.Open, clientID, "", nil)
}

// Start signs the creation of a conversation with members.
func (c *Client) Start(ctx context.Context, clientID string, members ...string) (*Command, error) {
	return c.sign(ctx, signature.Start, clientID, "", members)
}

// Add signs an invitation of members into convID.
func (c *Client) Add(ctx context.Context, clientID, convID string, members ...string) (*Command, error) {
	return c.sign(ctx, signature.Add, clientID, convID, members)
}

// Remove signs the removal of members from convID.
func (c *Client) Remove(ctx context.Context, clientID, convID string, members ...string) (*Command, error) {
	return c.sign(ctx, signature.Remove, clientID, convID, members)
}

func (c *Client) sign(ctx context.Context, action signature.Action, clientID, convID string, members []string) (*Command, error) {
	for _, m := range members {
		if strings.Contains(m, ":") {
			return nil, fmt.Errorf("%q: %w", m, ErrInvalidMember)
		}
	}
	res, err := c.signer.Sign(ctx, signature.Request{
		Action:         action,
		AppID:          c.appID,
		ClientID:       clientID,
		ConversationID: convID,
		Members:        strings.Join(members, ":"),
		MasterKey:      c.masterKey,
	})
	if err != nil {
		return nil, fmt.Errorf("rtmsign: %w", err)
	}
	return render.Command(res)
}
