package imap

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/jhillyerd/enmime"

	"github.com/avolkov/mailharvest/internal/mailtext"
	"github.com/avolkov/mailharvest/internal/thread"
)

// ParseMessage converts an IMAP message into a thread.MessageRecord for the
// given topic. Identity headers come from the envelope first and are refined
// from the raw MIME headers (the References chain only exists there); body
// text and attachments are parsed with enmime. Body parse failures degrade
// to an envelope-only record rather than an error.
func ParseMessage(imapMsg *imap.Message, topic string) (*thread.MessageRecord, error) {
	if imapMsg == nil {
		return nil, fmt.Errorf("imap message is nil")
	}

	record := &thread.MessageRecord{
		Topic: topic,
	}

	if imapMsg.Envelope != nil {
		record.ID = strings.TrimSpace(imapMsg.Envelope.MessageId)
		record.ParentID = strings.TrimSpace(imapMsg.Envelope.InReplyTo)
		record.Subject = imapMsg.Envelope.Subject
		if len(imapMsg.Envelope.From) > 0 {
			record.From = formatAddress(imapMsg.Envelope.From[0])
		}
		if !imapMsg.Envelope.Date.IsZero() {
			record.Date = imapMsg.Envelope.Date
		}
	}

	if imapMsg.Body != nil {
		section := &imap.BodySectionName{}
		bodyReader := imapMsg.GetBody(section)
		if bodyReader != nil {
			if err := parseBody(bodyReader, record); err != nil {
				// Don't fail - we still have the envelope
				log.Printf("Warning: failed to parse body of message UID %d: %v", imapMsg.Uid, err)
			}
		}
	}

	return record, nil
}

// parseBody parses the raw message with enmime, filling in the header chain,
// body text, and attachments.
func parseBody(bodyReader io.Reader, record *thread.MessageRecord) error {
	envelope, err := enmime.ReadEnvelope(bodyReader)
	if err != nil {
		return fmt.Errorf("failed to parse email body: %w", err)
	}

	if id := strings.TrimSpace(envelope.GetHeader("Message-Id")); id != "" {
		record.ID = id
	}
	if parentID := strings.TrimSpace(envelope.GetHeader("In-Reply-To")); parentID != "" {
		record.ParentID = parentID
	}
	record.References = parseReferences(envelope.GetHeader("References"))

	record.Body = mailtext.NormalizeBody(envelope.Text)

	for _, part := range envelope.Attachments {
		record.Attachments = append(record.Attachments, thread.Attachment{
			Name:    part.FileName,
			Content: part.Content,
		})
	}

	return nil
}

// parseReferences splits a References header into its identifier chain.
// The header lists ancestors oldest first, whitespace-separated.
func parseReferences(header string) []string {
	return strings.Fields(header)
}

// formatAddress formats an IMAP address to a string.
func formatAddress(address *imap.Address) string {
	if address == nil {
		return ""
	}

	if address.MailboxName == "" && address.HostName == "" {
		return ""
	}

	if address.PersonalName != "" {
		return fmt.Sprintf("%s <%s@%s>", address.PersonalName, address.MailboxName, address.HostName)
	}

	return fmt.Sprintf("%s@%s", address.MailboxName, address.HostName)
}
