// Package mcp exposes rtmsign as an MCP tool server so agents can request
// signed RTM commands without holding the master key.
package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oktsec/rtmsign/internal/signature"
)

// Version is reported to MCP clients.
var Version = "dev"

// KeyFunc returns the master key used for signing.
type KeyFunc func() string

// NewServer creates an MCP server exposing the rtm_sign tool.
func NewServer(signer *signature.Signer, key KeyFunc, defaults Defaults, logger *slog.Logger) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "rtmsign",
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: "rtmsign signs RTM session and conversation operations. " +
			"Use rtm_sign to get a signature or a ready-to-send command. " +
			"The master key is configured on the server and never accepted as input.",
	})

	h := &handlers{
		signer:   signer,
		key:      key,
		defaults: defaults,
		logger:   logger,
	}
	mcp.AddTool(s, signTool(), h.handleSign)
	return s
}

// Serve runs the MCP server on stdio until the client disconnects.
func Serve(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
