package thread

import "strings"

// ResolveThreadID derives the conversation key for a record. Precedence:
// the last entry of the References chain (the root-most ancestor, assuming
// the RFC 5322 oldest-first header order), then In-Reply-To, then the
// message's own ID. Returns "" when none of the three is present; such a
// record cannot be grouped into any conversation.
func ResolveThreadID(r *MessageRecord) string {
	if len(r.References) > 0 {
		return strings.TrimSpace(r.References[len(r.References)-1])
	}
	if r.ParentID != "" {
		return strings.TrimSpace(r.ParentID)
	}
	if r.ID != "" {
		return strings.TrimSpace(r.ID)
	}
	return ""
}

// GroupByThread assigns each record's ThreadID and groups records by it.
// Records with no resolvable conversation key are left out of the result;
// callers keep them in flat listings only. The second return value lists the
// conversation keys in first-seen input order: map iteration order is
// randomized, and callers that concatenate per-conversation results must
// stay deterministic for a given input order.
func GroupByThread(records []*MessageRecord) (map[string][]*MessageRecord, []string) {
	groups := make(map[string][]*MessageRecord)
	var order []string
	for _, r := range records {
		threadID := ResolveThreadID(r)
		if threadID == "" {
			continue
		}
		r.ThreadID = threadID
		if _, seen := groups[threadID]; !seen {
			order = append(order, threadID)
		}
		groups[threadID] = append(groups[threadID], r)
	}
	return groups, order
}
