// Package render turns signed results into the debug record or the JSON
// command sent to the RTM server.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oktsec/rtmsign/internal/signature"
)

// ErrUnsupportedAction is returned when a command is requested for an action
// the RTM server does not understand.
var ErrUnsupportedAction = errors.New("unsupported action for command rendering")

// Format selects how a result is written.
type Format int

const (
	FormatDebug Format = iota
	FormatCommand
)

// ParseFormat accepts "debug" and "command".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "debug":
		return FormatDebug, nil
	case "command", "cmd":
		return FormatCommand, nil
	}
	return FormatDebug, fmt.Errorf("unknown output format %q", s)
}

func (f Format) String() string {
	if f == FormatCommand {
		return "command"
	}
	return "debug"
}

// CheckAction reports whether results for action can be written in format f.
func CheckAction(f Format, action signature.Action) error {
	if f == FormatCommand && !action.Supported() {
		return fmt.Errorf("%q: %w", action.Raw(), ErrUnsupportedAction)
	}
	return nil
}

// Write renders r in format f as a single line.
func Write(w io.Writer, f Format, r *signature.Result) error {
	if f == FormatCommand {
		return WriteCommand(w, r)
	}
	return Debug(w, r)
}

// Debug writes every field of r as a readable record.
func Debug(w io.Writer, r *signature.Result) error {
	_, err := io.WriteString(w, DebugString(r)+"\n")
	return err
}

// DebugString formats r without a trailing newline.
func DebugString(r *signature.Result) string {
	var b strings.Builder
	b.WriteString("Signature { ")
	field := func(name, value string, last bool) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		if !last {
			b.WriteString(", ")
		}
	}
	field("appid", strconv.Quote(r.AppID), false)
	field("clientid", strconv.Quote(r.ClientID), false)
	field("convid", strconv.Quote(r.ConversationID), false)
	field("action", strconv.Quote(r.Action.Raw()), false)
	field("members", strconv.Quote(r.Members), false)
	field("timestamp", strconv.FormatInt(r.Timestamp, 10), false)
	field("nonce", strconv.Quote(r.Nonce), false)
	field("signature", strconv.Quote(r.Signature), true)
	b.WriteString(" }")
	return b.String()
}
