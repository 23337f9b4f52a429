// Package fetcher orchestrates one fetch pass: for each configured topic it
// searches the mailbox, fetches and parses the matching messages, and builds
// the per-conversation reply trees.
package fetcher

import (
	"fmt"
	"log"

	"github.com/emersion/go-imap/client"

	"github.com/avolkov/mailharvest/internal/config"
	"github.com/avolkov/mailharvest/internal/export"
	"github.com/avolkov/mailharvest/internal/imap"
	"github.com/avolkov/mailharvest/internal/thread"
)

// Fetcher runs topic searches over a single authenticated IMAP connection.
type Fetcher struct {
	cfg    *config.Config
	client *client.Client
}

// New creates a Fetcher. The client must already be authenticated.
func New(cfg *config.Config, c *client.Client) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: c,
	}
}

// Run selects the configured mailbox and fetches every configured topic.
// Topics with no matching messages are skipped.
func (f *Fetcher) Run() (*export.Document, error) {
	mbox, err := f.client.Select(f.cfg.Mailbox, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", f.cfg.Mailbox, err)
	}

	log.Printf("Selected mailbox %s: %d messages", f.cfg.Mailbox, mbox.Messages)

	doc := &export.Document{}
	for _, topic := range f.cfg.Topics {
		result, err := f.FetchTopic(topic)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch topic %q: %w", topic, err)
		}
		if result == nil {
			continue
		}
		doc.Topics = append(doc.Topics, result)
	}

	return doc, nil
}

// FetchTopic searches the selected mailbox for one topic and returns its
// flat email list and reply forest. Returns nil when no messages match.
// Individual messages that fail to parse are logged and skipped.
func (f *Fetcher) FetchTopic(topic string) (*export.Topic, error) {
	log.Printf("Searching messages for topic %q", topic)

	uids, err := imap.SearchSubjectNewestFirst(f.client, topic)
	if err != nil {
		return nil, err
	}

	log.Printf("Found %d messages for topic %q", len(uids), topic)
	if len(uids) == 0 {
		return nil, nil
	}

	uids = imap.LimitUIDs(uids, f.cfg.FetchLimit)

	messages, err := imap.FetchFullMessages(f.client, uids)
	if err != nil {
		return nil, err
	}

	records := make([]*thread.MessageRecord, 0, len(messages))
	for _, msg := range messages {
		record, err := imap.ParseMessage(msg, topic)
		if err != nil {
			log.Printf("Warning: failed to parse message UID %d, skipping: %v", msg.Uid, err)
			continue
		}
		records = append(records, record)
	}

	groups, order := thread.GroupByThread(records)
	if len(groups) == 0 {
		log.Printf("Warning: no conversations found for topic %q", topic)
	} else {
		log.Printf("Found %d conversations for topic %q", len(groups), topic)
	}

	var tree []*thread.MessageRecord
	for _, threadID := range order {
		tree = append(tree, thread.BuildForest(groups[threadID])...)
	}
	thread.SortByDate(tree)

	return &export.Topic{
		Topic:   topic,
		Emails:  records,
		Threads: tree,
	}, nil
}
