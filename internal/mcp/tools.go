package mcp

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oktsec/rtmsign/internal/render"
	"github.com/oktsec/rtmsign/internal/signature"
)

// Defaults fill tool arguments the caller leaves empty.
type Defaults struct {
	AppID    string
	ClientID string
}

type handlers struct {
	signer   *signature.Signer
	key      KeyFunc
	defaults Defaults
	logger   *slog.Logger
}

// SignInput is the rtm_sign tool input.
type SignInput struct {
	Action         string `json:"action" jsonschema:"one of open, start, add, remove"`
	AppID          string `json:"app_id,omitempty" jsonschema:"application id, defaults to the server config"`
	ClientID       string `json:"client_id,omitempty" jsonschema:"client (peer) id, defaults to the server config"`
	ConversationID string `json:"conv_id,omitempty" jsonschema:"conversation id, required for add and remove"`
	Members        string `json:"members,omitempty" jsonschema:"colon-separated member ids, required except for open"`
	Output         string `json:"output,omitempty" jsonschema:"debug or command, default command"`
}

// SignOutput is the structured result of rtm_sign.
type SignOutput struct {
	RequestID string `json:"request_id"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

func signTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "rtm_sign",
		Description: "Sign an RTM session or conversation operation. " +
			"Returns the signature, nonce and timestamp, and the rendered debug record or JSON command.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint: true,
		},
	}
}

func (h *handlers) handleSign(ctx context.Context, _ *mcp.CallToolRequest, in SignInput) (*mcp.CallToolResult, SignOutput, error) {
	reqID := uuid.New().String()
	logger := h.logger.With("request_id", reqID, "tool", "rtm_sign")

	format := render.FormatCommand
	if in.Output != "" {
		f, err := render.ParseFormat(in.Output)
		if err != nil {
			return toolError(err), SignOutput{}, nil
		}
		format = f
	}

	action := signature.ParseAction(in.Action)
	if !action.Supported() {
		logger.Warn("rejected unsupported action", "action", in.Action)
		return toolError(fmt.Errorf("%q: %w", in.Action, render.ErrUnsupportedAction)), SignOutput{}, nil
	}

	req := signature.Request{
		Action:         action,
		AppID:          cmp.Or(in.AppID, h.defaults.AppID),
		ClientID:       cmp.Or(in.ClientID, h.defaults.ClientID),
		ConversationID: in.ConversationID,
		Members:        in.Members,
		MasterKey:      h.key(),
	}
	res, err := h.signer.Sign(ctx, req)
	if err != nil {
		logger.Warn("signing failed", "action", action.String(), "error", err)
		return toolError(err), SignOutput{}, nil
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, format, res); err != nil {
		return toolError(err), SignOutput{}, nil
	}
	msg := string(bytes.TrimRight(buf.Bytes(), "\n"))

	logger.Info("signed", "action", action.String(), "app_id", req.AppID, "output", format.String())
	out := SignOutput{
		RequestID: reqID,
		Signature: res.Signature,
		Nonce:     res.Nonce,
		Timestamp: res.Timestamp,
		Message:   msg,
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}, out, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
