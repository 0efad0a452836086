// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// receiptFileName is the provisioning record written into the environment on
// publish. Its presence is informational; the idempotence gate remains the
// interpreter binary itself.
const receiptFileName = "bootlace-receipt.toml"

// Receipt records what a provisioning run produced, so a later
// 'bootlace setup' can tell a complete environment from one whose dependency
// install failed or whose manifest has changed since.
type Receipt struct {
	// BaseInterpreter is the interpreter the environment was created with.
	BaseInterpreter string `toml:"base_interpreter"`
	// ManifestSHA256 is the hash of the dependency manifest at install time
	// ("" when no manifest existed).
	ManifestSHA256 string `toml:"manifest_sha256"`
	// DepsInstalled is false when the install failed under the best-effort
	// policy and the environment was published anyway.
	DepsInstalled bool `toml:"deps_installed"`
	// CreatedAt is the publish timestamp.
	CreatedAt time.Time `toml:"created_at"`
}

// receiptPath returns the receipt location inside an environment directory.
func receiptPath(envDir string) string {
	return filepath.Join(envDir, receiptFileName)
}

// writeReceipt serializes the receipt into the (staging) environment directory.
func writeReceipt(envDir string, r Receipt) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}
	if err := os.WriteFile(receiptPath(envDir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	return nil
}

// readReceipt loads the receipt from an environment directory.
// A missing or corrupt receipt returns (nil, nil): environments provisioned
// by older builds simply have no record, which callers treat as "unknown".
func readReceipt(envDir string) (*Receipt, error) {
	data, err := os.ReadFile(receiptPath(envDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}

	var r Receipt
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, nil
	}
	return &r, nil
}

// hashFile calculates the SHA256 hash of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
