package redis

import "strings"

// Key joins a prefix and key parts with ':'. Empty parts are skipped.
//
//	Key("billing", "usage", orgID, "2025-09") // billing:usage:<org>:2025-09
func Key(prefix string, parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	if prefix != "" {
		all = append(all, prefix)
	}
	for _, p := range parts {
		if p != "" {
			all = append(all, p)
		}
	}
	return strings.Join(all, ":")
}
