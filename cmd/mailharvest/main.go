package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/avolkov/mailharvest/internal/config"
	"github.com/avolkov/mailharvest/internal/credential"
	"github.com/avolkov/mailharvest/internal/export"
	"github.com/avolkov/mailharvest/internal/fetcher"
	"github.com/avolkov/mailharvest/internal/imap"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	username := cfg.Username
	if username == "" {
		username = promptUsername()
	}
	if username == "" {
		log.Fatalf("No email account given")
	}

	password, err := credential.Password(username)
	if err != nil {
		log.Fatalf("Failed to resolve password: %v", err)
	}

	log.Printf("Connecting to %s ...", cfg.Server)
	client, err := imap.ConnectToIMAP(cfg.Server, cfg.UseTLS)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() {
		_ = client.Logout()
	}()

	if err := imap.Login(client, username, password); err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}

	doc, err := fetcher.New(cfg, client).Run()
	if err != nil {
		log.Fatalf("Failed to fetch messages: %v", err)
	}

	if cfg.SaveAttachments {
		attachmentsDir := filepath.Join(cfg.OutputDir, cfg.AttachmentsSubdir)
		if err := export.SaveAttachments(attachmentsDir, doc); err != nil {
			log.Fatalf("Failed to save attachments: %v", err)
		}
	}

	if cfg.SaveJSON {
		path, err := export.WriteJSON(cfg.OutputDir, doc)
		if err != nil {
			log.Fatalf("Failed to write JSON: %v", err)
		}
		log.Printf("Saved email data to %s", path)
	}

	if cfg.SaveCSV {
		path, err := export.WriteCSV(cfg.OutputDir, doc)
		if err != nil {
			log.Fatalf("Failed to write CSV: %v", err)
		}
		log.Printf("Saved email listing to %s", path)
	}
}

func promptUsername() string {
	fmt.Fprint(os.Stderr, "Email (e.g. name@mail.com): ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
