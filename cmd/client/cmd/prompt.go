package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/passvault/passvault-server/internal/crypto"
)

func promptLine(label string) (string, error) {
	fmt.Print(label + ": ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	fmt.Print(label + ": ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(secret), nil
}

// promptNewSecret reads a secret twice and reports its strength.
func promptNewSecret(label string) (string, error) {
	secret, err := promptSecret(label)
	if err != nil {
		return "", err
	}

	score, feedback := crypto.ScoreStrength(secret)
	if len(feedback) > 0 {
		fmt.Printf("Strength: %d/5\n", score)
		for _, hint := range feedback {
			fmt.Println("  - " + hint)
		}
	}

	confirm, err := promptSecret(label + " (confirm)")
	if err != nil {
		return "", err
	}
	if secret != confirm {
		return "", fmt.Errorf("entries do not match")
	}

	return secret, nil
}
