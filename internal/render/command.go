package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/oktsec/rtmsign/internal/signature"
)

// CommandPayload is the JSON command the RTM server accepts for a signed
// operation. Member and conversation fields are omitted for session opens.
type CommandPayload struct {
	Cmd            string   `json:"cmd"`
	Op             string   `json:"op"`
	AppID          string   `json:"appId"`
	PeerID         string   `json:"peerId"`
	Timestamp      int64    `json:"t"`
	Nonce          string   `json:"n"`
	Signature      string   `json:"s"`
	Members        []string `json:"m,omitempty"`
	ConversationID string   `json:"cid,omitempty"`
}

// Command builds the command payload for r. Members keep the caller's order;
// only the signed message sorts them.
func Command(r *signature.Result) (*CommandPayload, error) {
	if err := CheckAction(FormatCommand, r.Action); err != nil {
		return nil, err
	}

	p := &CommandPayload{
		Cmd:       "conv",
		Op:        r.Action.Raw(),
		AppID:     r.AppID,
		PeerID:    r.ClientID,
		Timestamp: r.Timestamp,
		Nonce:     r.Nonce,
		Signature: r.Signature,
	}
	switch {
	case r.Action.IsOpen():
		p.Cmd = "session"
		return p, nil
	case r.Action.NeedsConversation():
		p.ConversationID = r.ConversationID
	}
	p.Members = signature.SplitMembers(r.Members)
	return p, nil
}

// WriteCommand writes the command payload for r as one line of JSON.
func WriteCommand(w io.Writer, r *signature.Result) error {
	p, err := Command(r)
	if err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling command: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
