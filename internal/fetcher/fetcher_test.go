package fetcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/mailharvest/internal/config"
	"github.com/avolkov/mailharvest/internal/imap"
	"github.com/avolkov/mailharvest/internal/testutil"
	"github.com/avolkov/mailharvest/internal/thread"
)

func recordIDs(records []*thread.MessageRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

func newTestFetcher(t *testing.T, server *testutil.TestIMAPServer, topics []string, fetchLimit int) *Fetcher {
	t.Helper()

	c, err := imap.ConnectToIMAP(server.Address, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Logout()
	})
	require.NoError(t, imap.Login(c, server.Username(), server.Password()))

	cfg := &config.Config{
		Server:     server.Address,
		Mailbox:    "INBOX",
		Topics:     topics,
		FetchLimit: fetchLimit,
	}

	return New(cfg, c)
}

func TestFetchTopic(t *testing.T) {
	t.Run("builds a reply tree for one conversation", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)
		server.EnsureINBOX(t)

		base := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		server.AddMessage(t, "INBOX", testutil.TestMessage{
			MessageID: "<m1@test>",
			Subject:   "project epsilon planning",
			From:      "alice@test.com",
			To:        "bob@test.com",
			Body:      "kickoff",
			SentAt:    base,
		})
		server.AddMessage(t, "INBOX", testutil.TestMessage{
			MessageID:  "<m2@test>",
			InReplyTo:  "<m1@test>",
			References: []string{"<m1@test>"},
			Subject:    "Re: project epsilon planning",
			From:       "bob@test.com",
			To:         "alice@test.com",
			Body:       "late reply",
			SentAt:     base.Add(20 * time.Minute),
		})
		server.AddMessage(t, "INBOX", testutil.TestMessage{
			MessageID:  "<m3@test>",
			InReplyTo:  "<m1@test>",
			References: []string{"<m1@test>"},
			Subject:    "Re: project epsilon planning",
			From:       "carol@test.com",
			To:         "alice@test.com",
			Body:       "early reply",
			SentAt:     base.Add(10 * time.Minute),
		})

		f := newTestFetcher(t, server, []string{"project epsilon"}, 1000)
		_, err := f.client.Select("INBOX", true)
		require.NoError(t, err)

		result, err := f.FetchTopic("project epsilon")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, "project epsilon", result.Topic)
		assert.Len(t, result.Emails, 3)

		require.Len(t, result.Threads, 1)
		root := result.Threads[0]
		assert.Equal(t, "<m1@test>", root.ID)
		require.Len(t, root.Children, 2)
		assert.Equal(t, "<m3@test>", root.Children[0].ID, "earlier reply sorts first")
		assert.Equal(t, "<m2@test>", root.Children[1].ID)
	})

	t.Run("topic-level root order is deterministic for equal dates", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)
		server.EnsureINBOX(t)

		// Six unrelated single-message conversations, all sent at the same
		// instant, so only the stable tie-break decides the root order.
		sameInstant := time.Date(2024, 4, 4, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 6; i++ {
			server.AddMessage(t, "INBOX", testutil.TestMessage{
				MessageID: fmt.Sprintf("<root%d@test>", i),
				Subject:   "project iota digest",
				From:      "alice@test.com",
				To:        "bob@test.com",
				Body:      "digest",
				SentAt:    sameInstant,
			})
		}

		f := newTestFetcher(t, server, []string{"project iota"}, 1000)
		_, err := f.client.Select("INBOX", true)
		require.NoError(t, err)

		first, err := f.FetchTopic("project iota")
		require.NoError(t, err)
		require.NotNil(t, first)
		require.Len(t, first.Threads, 6)

		// Equal dates keep the supplied record order, so the forest must
		// list roots exactly as the flat email list does.
		wantOrder := recordIDs(first.Emails)
		assert.Equal(t, wantOrder, recordIDs(first.Threads))

		for i := 0; i < 5; i++ {
			again, err := f.FetchTopic("project iota")
			require.NoError(t, err)
			require.NotNil(t, again)
			assert.Equal(t, wantOrder, recordIDs(again.Threads), "root order changed between identical runs")
		}
	})

	t.Run("returns nil for a topic with no matches", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)
		server.EnsureINBOX(t)

		f := newTestFetcher(t, server, []string{"nothing here"}, 1000)
		_, err := f.client.Select("INBOX", true)
		require.NoError(t, err)

		result, err := f.FetchTopic("nothing here")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("reply to an unfetched message becomes a root", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)
		server.EnsureINBOX(t)

		server.AddMessage(t, "INBOX", testutil.TestMessage{
			MessageID:  "<reply@test>",
			InReplyTo:  "<never-fetched@test>",
			References: []string{"<never-fetched@test>"},
			Subject:    "Re: project zeta numbers",
			From:       "alice@test.com",
			To:         "bob@test.com",
			Body:       "orphaned reply",
			SentAt:     time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC),
		})

		f := newTestFetcher(t, server, []string{"project zeta"}, 1000)
		_, err := f.client.Select("INBOX", true)
		require.NoError(t, err)

		result, err := f.FetchTopic("project zeta")
		require.NoError(t, err)
		require.NotNil(t, result)

		require.Len(t, result.Threads, 1)
		assert.Equal(t, "<reply@test>", result.Threads[0].ID)
		assert.Empty(t, result.Threads[0].Children)
	})
}

func TestRun(t *testing.T) {
	t.Run("collects topics and skips empty ones", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)
		server.EnsureINBOX(t)

		server.AddMessage(t, "INBOX", testutil.TestMessage{
			MessageID: "<only@test>",
			Subject:   "project eta report",
			From:      "alice@test.com",
			To:        "bob@test.com",
			Body:      "report attached",
			SentAt:    time.Date(2024, 4, 3, 8, 0, 0, 0, time.UTC),
		})

		f := newTestFetcher(t, server, []string{"project eta", "no matches for this"}, 1000)

		doc, err := f.Run()
		require.NoError(t, err)
		require.Len(t, doc.Topics, 1)
		assert.Equal(t, "project eta", doc.Topics[0].Topic)
	})

	t.Run("fails on unknown mailbox", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)

		f := newTestFetcher(t, server, []string{"anything"}, 1000)
		f.cfg.Mailbox = "NoSuchBox"

		_, err := f.Run()
		require.Error(t, err)
	})
}
