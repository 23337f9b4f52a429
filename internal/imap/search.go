package imap

import (
	"fmt"
	"sort"

	"github.com/emersion/go-imap"
	sortthread "github.com/emersion/go-imap-sortthread"
	"github.com/emersion/go-imap/client"
)

// SearchSubject runs a UID SEARCH for messages whose Subject header contains
// topic. IMAP header search is a case-insensitive substring match, so this
// behaves like a "subject contains" filter.
func SearchSubject(c *client.Client, topic string) ([]uint32, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Subject", topic)

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search IMAP: %w", err)
	}

	return uids, nil
}

// SearchSubjectNewestFirst returns the UIDs of messages matching topic,
// newest first, so that a fetch limit keeps the most recent messages. Uses
// the server-side SORT extension when available; otherwise falls back to a
// plain search ordered by descending UID, which approximates delivery order.
// Final chronological ordering happens client-side when trees are built, so
// the fallback only affects which messages a limit cuts off.
func SearchSubjectNewestFirst(c *client.Client, topic string) ([]uint32, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}

	sortClient := sortthread.NewSortClient(c)

	supported, err := sortClient.SupportSort()
	if err != nil {
		return nil, fmt.Errorf("failed to check SORT capability: %w", err)
	}

	if !supported {
		uids, err := SearchSubject(c, topic)
		if err != nil {
			return nil, err
		}
		sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
		return uids, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Subject", topic)

	sortCriteria := []sortthread.SortCriterion{
		{Field: sortthread.SortDate, Reverse: true},
	}

	uids, err := sortClient.UidSort(sortCriteria, criteria)
	if err != nil {
		return nil, fmt.Errorf("SORT command returned error: %w", err)
	}

	return uids, nil
}

// LimitUIDs caps a newest-first UID list at limit entries. A limit of zero
// or less means no limit.
func LimitUIDs(uids []uint32, limit int) []uint32 {
	if limit <= 0 || len(uids) <= limit {
		return uids
	}
	return uids[:limit]
}
