package credential

import "testing"

func TestPasswordFromEnvironment(t *testing.T) {
	// A username the keyring has never seen, so lookup falls through to the
	// environment without reaching the terminal prompt.
	username := "env-fallback-user@example.test"

	t.Setenv(passwordEnvVar, "hunter2")

	got, err := Password(username)
	if err != nil {
		t.Fatalf("Password() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("Password() = %q, want %q", got, "hunter2")
	}
}
