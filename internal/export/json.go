// Package export writes fetch results to disk: a JSON document grouping
// emails and reply trees by topic, a flat CSV listing, and the attachment
// files themselves.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avolkov/mailharvest/internal/thread"
)

// JSONFilename is the name of the JSON document inside the output directory.
const JSONFilename = "emails_data.json"

// Document is the top-level output structure.
type Document struct {
	Topics []*Topic `json:"topics"`
}

// Topic holds one search topic's results: the flat email list and the
// per-conversation reply forest, both ordered by date ascending.
type Topic struct {
	Topic   string                  `json:"topic"`
	Emails  []*thread.MessageRecord `json:"emails"`
	Threads []*thread.MessageRecord `json:"threads"`
}

// WriteJSON writes the document to dir/emails_data.json, creating dir if
// needed. Returns the written path.
func WriteJSON(dir string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}

	path := filepath.Join(dir, JSONFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
