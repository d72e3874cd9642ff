package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"todo-tracker/internal/credential"
)

var credentialKeys = []string{credential.RedisPassword}

func (a *App) manageCredential(_ context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: todo credential set|delete <key>")
	}
	action, key := args[0], args[1]
	if !slices.Contains(credentialKeys, key) {
		return fmt.Errorf("unknown credential %q (known: %s)", key, strings.Join(credentialKeys, ", "))
	}

	switch action {
	case "set":
		value, err := a.readSecret(key)
		if err != nil {
			return err
		}
		if value == "" {
			return errors.New("credential value cannot be empty")
		}
		secrets, err := a.secrets()
		if err != nil {
			return err
		}
		if err := secrets.Set(key, value); err != nil {
			return err
		}
		a.success("✓ Stored %s", key)
	case "delete", "rm":
		secrets, err := a.secrets()
		if err != nil {
			return err
		}
		if err := secrets.Delete(key); err != nil {
			if errors.Is(err, credential.ErrNotFound) {
				return fmt.Errorf("no credential stored for %s", key)
			}
			return err
		}
		a.success("✓ Deleted %s", key)
	default:
		return fmt.Errorf("unknown credential action %q: use set or delete", action)
	}
	return nil
}

// readSecret prompts with hidden input on a terminal and otherwise reads the
// first line of stdin.
func (a *App) readSecret(key string) (string, error) {
	if a.interactive {
		value, err := a.prompter.Secret("Value for " + key)
		return strings.TrimSpace(value), err
	}
	sc := bufio.NewScanner(a.in)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", sc.Err()
}
