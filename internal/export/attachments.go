package export

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/avolkov/mailharvest/internal/mailtext"
	"github.com/avolkov/mailharvest/internal/thread"
)

// SaveAttachments writes every attachment of every email in the document to
// dir, creating it if needed. Filenames are sanitized and prefixed with a
// fragment of the owning message's id so that same-named attachments from
// different messages do not collide. Each saved attachment's SavedAs and
// Path fields are filled in; per-file errors are logged and the rest are
// still written.
func SaveAttachments(dir string, doc *Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create attachments directory: %w", err)
	}

	for _, topic := range doc.Topics {
		for _, record := range topic.Emails {
			saveRecordAttachments(dir, record)
		}
	}

	return nil
}

func saveRecordAttachments(dir string, record *thread.MessageRecord) {
	for i := range record.Attachments {
		attachment := &record.Attachments[i]

		fileName := attachmentFilename(record.ID, attachment.Name)
		path := filepath.Join(dir, fileName)

		if err := os.WriteFile(path, attachment.Content, 0o644); err != nil {
			log.Printf("Warning: failed to save attachment %s: %v", attachment.Name, err)
			continue
		}

		attachment.SavedAs = fileName
		attachment.Path = path
		log.Printf("Saved attachment: %s", fileName)
	}
}

// attachmentFilename builds the on-disk name for an attachment: a prefix
// derived from the owning message's id, then the sanitized original name.
func attachmentFilename(messageID, name string) string {
	return idPrefix(messageID) + "_" + mailtext.SanitizeFilename(name)
}

// idPrefix derives a short filesystem-safe fragment from a message id.
// The cap counts runes, not bytes, so a non-ASCII id is never cut mid-rune.
func idPrefix(messageID string) string {
	prefix := mailtext.SanitizeFilename(messageID)
	prefix = strings.NewReplacer("-", "_", "@", "_", ".", "_").Replace(prefix)
	if runes := []rune(prefix); len(runes) > 10 {
		prefix = string(runes[:10])
	}
	if prefix == "" {
		prefix = "noid"
	}
	return prefix
}
