// Package thread reconstructs conversation trees from flat message records
// using only header-derived identifiers: a message's own Message-ID, its
// In-Reply-To parent, and its References ancestor chain.
package thread

import "time"

// MessageRecord is a single fetched message. Identifier fields use the empty
// string to mark absence; Date uses the zero time, which also sorts as the
// earliest possible value.
type MessageRecord struct {
	// ID is the message's own Message-ID header value. An empty ID means the
	// message can never be matched as a reply target.
	ID string `json:"id"`
	// ParentID is the In-Reply-To header value: the one message this record
	// directly replies to. It shapes the tree, independent of ThreadID.
	ParentID string `json:"in_reply_to"`
	// References is the ancestor chain from the References header, oldest
	// entry first. Not serialized; it only feeds thread-id resolution.
	References []string `json:"-"`

	Subject string    `json:"subject"`
	From    string    `json:"from"`
	Date    time.Time `json:"date"`
	Body    string    `json:"body"`
	Topic   string    `json:"topic,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`

	// Children is populated by BuildForest only; records whose ParentID
	// equals this record's ID, ordered by Date ascending.
	Children []*MessageRecord `json:"children,omitempty"`

	// ThreadID is the conversation key assigned by GroupByThread.
	ThreadID string `json:"-"`
}

// Attachment describes one attachment of a message. Content carries the raw
// bytes between fetch and export; it is never serialized.
type Attachment struct {
	Name    string `json:"name"`
	SavedAs string `json:"saved_as,omitempty"`
	Path    string `json:"path,omitempty"`
	Content []byte `json:"-"`
}
