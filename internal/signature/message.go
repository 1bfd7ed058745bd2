package signature

import (
	"sort"
	"strconv"
	"strings"
)

const (
	separator   = ":"
	inviteToken = "invite"
	kickToken   = "kick"
)

// BuildMessage builds the colon-joined string the RTM server recomputes and
// verifies. Field order and the per-action segments must not change.
func BuildMessage(action Action, appID, clientID, convID, members string, timestamp int64, nonce string) string {
	parts := make([]string, 0, 7)
	parts = append(parts, appID, clientID)
	if action.NeedsConversation() {
		parts = append(parts, convID)
	}
	if action.IsOpen() {
		parts = append(parts, "")
	} else {
		parts = append(parts, SortMembers(members))
	}
	parts = append(parts, strconv.FormatInt(timestamp, 10), nonce)

	switch {
	case action.IsAdd():
		parts = append(parts, inviteToken)
	case action.IsRemove():
		parts = append(parts, kickToken)
	}
	return strings.Join(parts, separator)
}

// SplitMembers splits a colon-separated member list in caller order.
// An empty list yields one empty member.
func SplitMembers(members string) []string {
	return strings.Split(members, separator)
}

// SortMembers sorts a colon-separated member list by byte order and joins it
// back together.
func SortMembers(members string) string {
	m := SplitMembers(members)
	sort.Strings(m)
	return strings.Join(m, separator)
}
