package chathub

// Room keys are the only naming scheme sockets agree on; both sides of a
// conversation must compute the same key no matter who joins first.

// PrivateRoomKey returns the canonical room key for a two-party chat:
// the pair sorted lexicographically and joined with "-". Commutative in its
// arguments and stable for the same pair.
func PrivateRoomKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

// GroupRoomKey returns the room key for a group chat, derived from the
// group's persistent identifier.
func GroupRoomKey(groupID string) string {
	return "group-" + groupID
}
