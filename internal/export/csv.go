package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVFilename is the name of the CSV listing inside the output directory.
const CSVFilename = "emails_data.csv"

var csvHeader = []string{"topic", "subject", "from", "date", "id", "in_reply_to", "attachments"}

// WriteCSV writes a flat listing of every topic's emails to
// dir/emails_data.csv, creating dir if needed. Returns the written path.
func WriteCSV(dir string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, CSVFilename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, topic := range doc.Topics {
		for _, record := range topic.Emails {
			date := ""
			if !record.Date.IsZero() {
				date = record.Date.Format(time.RFC3339)
			}
			row := []string{
				topic.Topic,
				record.Subject,
				record.From,
				date,
				record.ID,
				record.ParentID,
				strconv.Itoa(len(record.Attachments)),
			}
			if err := writer.Write(row); err != nil {
				return "", fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return path, nil
}
