package imap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/mailharvest/internal/testutil"
)

func TestFetchFullMessages(t *testing.T) {
	t.Run("returns error for nil client", func(t *testing.T) {
		_, err := FetchFullMessages(nil, []uint32{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "client is nil")
	})

	t.Run("returns empty result for no UIDs", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)
		c, cleanup := server.Connect(t)
		t.Cleanup(cleanup)

		messages, err := FetchFullMessages(c, nil)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("fetches envelope and body for seeded messages", func(t *testing.T) {
		server := testutil.NewTestIMAPServer(t)
		t.Cleanup(server.Close)
		server.EnsureINBOX(t)

		uid := server.AddMessage(t, "INBOX", testutil.TestMessage{
			MessageID: "<fetch-me@test>",
			Subject:   "fetch me",
			From:      "from@test.com",
			To:        "to@test.com",
			Body:      "hello body",
			SentAt:    time.Now(),
		})

		c, cleanup := server.Connect(t)
		t.Cleanup(cleanup)
		_, err := c.Select("INBOX", true)
		require.NoError(t, err)

		messages, err := FetchFullMessages(c, []uint32{uid})
		require.NoError(t, err)
		require.Len(t, messages, 1)

		msg := messages[0]
		require.NotNil(t, msg.Envelope)
		assert.Equal(t, "<fetch-me@test>", msg.Envelope.MessageId)
		assert.Equal(t, "fetch me", msg.Envelope.Subject)

		record, err := ParseMessage(msg, "topic")
		require.NoError(t, err)
		assert.Equal(t, "hello body", record.Body)
	})
}
