package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment       string
	Server            string
	Username          string
	Mailbox           string
	Topics            []string
	FetchLimit        int
	OutputDir         string
	AttachmentsSubdir string
	SaveJSON          bool
	SaveCSV           bool
	SaveAttachments   bool
	UseTLS            bool
}

func NewConfig() (*Config, error) {
	env := os.Getenv("MAILHARVEST_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	fetchLimit, err := getEnvIntOrDefault("MAILHARVEST_FETCH_LIMIT", 1000)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Environment:       env,
		Server:            os.Getenv("MAILHARVEST_SERVER"),
		Username:          os.Getenv("MAILHARVEST_USER"),
		Mailbox:           getEnvOrDefault("MAILHARVEST_MAILBOX", "INBOX"),
		Topics:            splitTopics(os.Getenv("MAILHARVEST_TOPICS")),
		FetchLimit:        fetchLimit,
		OutputDir:         getEnvOrDefault("MAILHARVEST_OUTPUT_DIR", "fetched_emails_output"),
		AttachmentsSubdir: getEnvOrDefault("MAILHARVEST_ATTACHMENTS_SUBDIR", "attachments"),
		SaveJSON:          getEnvBoolOrDefault("MAILHARVEST_SAVE_JSON", true),
		SaveCSV:           getEnvBoolOrDefault("MAILHARVEST_SAVE_CSV", true),
		SaveAttachments:   getEnvBoolOrDefault("MAILHARVEST_SAVE_ATTACHMENTS", true),
		UseTLS:            getEnvBoolOrDefault("MAILHARVEST_TLS", true),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("MAILHARVEST_SERVER is required")
	}

	if len(c.Topics) == 0 {
		return fmt.Errorf("MAILHARVEST_TOPICS is required")
	}

	if c.FetchLimit < 1 {
		return fmt.Errorf("MAILHARVEST_FETCH_LIMIT must be at least 1")
	}

	return nil
}

// splitTopics parses the comma-separated topic list, dropping empty entries.
func splitTopics(value string) []string {
	var topics []string
	for _, topic := range strings.Split(value, ",") {
		topic = strings.TrimSpace(topic)
		if topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid number: %w", key, err)
	}
	return n, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
