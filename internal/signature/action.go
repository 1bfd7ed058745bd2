package signature

import "strings"

// Action is a signed RTM operation. The zero value is an unsupported action
// with an empty name.
type Action struct {
	kind actionKind
	raw  string
}

type actionKind int

const (
	kindUnsupported actionKind = iota
	kindOpen
	kindStart
	kindAdd
	kindRemove
)

var (
	Open   = Action{kind: kindOpen, raw: "open"}
	Start  = Action{kind: kindStart, raw: "start"}
	Add    = Action{kind: kindAdd, raw: "add"}
	Remove = Action{kind: kindRemove, raw: "remove"}
)

// ParseAction maps a case-insensitive action name onto an Action. Unknown
// names produce an unsupported Action that keeps the caller's input.
func ParseAction(s string) Action {
	switch strings.ToLower(s) {
	case "open":
		return Open
	case "start":
		return Start
	case "add":
		return Add
	case "remove":
		return Remove
	}
	return Action{kind: kindUnsupported, raw: s}
}

// Supported reports whether the action is one of open, start, add, remove.
func (a Action) Supported() bool { return a.kind != kindUnsupported }

// Raw returns the action name as given by the caller for unsupported actions
// and the lowercase name otherwise.
func (a Action) Raw() string { return a.raw }

func (a Action) String() string {
	if a.Supported() {
		return a.raw
	}
	return "unsupported(" + a.raw + ")"
}

// IsOpen reports whether a opens a session.
func (a Action) IsOpen() bool { return a.kind == kindOpen }

// IsAdd reports whether a invites members into a conversation.
func (a Action) IsAdd() bool { return a.kind == kindAdd }

// IsRemove reports whether a kicks members from a conversation.
func (a Action) IsRemove() bool { return a.kind == kindRemove }

// NeedsConversation reports whether the conversation id is part of the
// canonical message.
func (a Action) NeedsConversation() bool { return a.kind == kindAdd || a.kind == kindRemove }

// NeedsMembers reports whether the member list is part of the canonical
// message. Only open signs an empty member segment.
func (a Action) NeedsMembers() bool { return a.kind != kindOpen }
