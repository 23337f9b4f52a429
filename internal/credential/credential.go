// Package credential resolves the mail account password. Lookup order:
// system keyring, then the MAILHARVEST_PASSWORD environment variable, then an
// interactive terminal prompt.
package credential

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

const serviceName = "mailharvest"

// passwordEnvVar is the environment fallback consulted after the keyring.
const passwordEnvVar = "MAILHARVEST_PASSWORD"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailharvest/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailharvest-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Password resolves the password for username, trying the keyring, then the
// environment, then prompting on the terminal.
func Password(username string) (string, error) {
	if pw, err := fromKeyring(username); err == nil && pw != "" {
		log.Printf("Password loaded from keyring")
		return pw, nil
	}

	if pw := os.Getenv(passwordEnvVar); pw != "" {
		log.Printf("Password loaded from environment variable %s", passwordEnvVar)
		return pw, nil
	}

	return prompt(username)
}

// Store saves the password for username in the system keyring.
func Store(username, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  username,
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("storing credential %q: %w", username, err)
	}

	return nil
}

func fromKeyring(username string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(username)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", username, err)
	}

	return string(item.Data), nil
}

// prompt reads the password from the terminal without echoing it. It keeps
// asking until a non-empty password is entered.
func prompt(username string) (string, error) {
	for {
		fmt.Fprintf(os.Stderr, "Password for %s: ", username)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		pw := strings.TrimSpace(string(raw))
		if pw != "" {
			return pw, nil
		}
		fmt.Fprintln(os.Stderr, "Password must not be empty.")
	}
}
