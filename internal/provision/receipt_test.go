// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReceiptRoundTrip(t *testing.T) {
	envDir := t.TempDir()
	want := Receipt{
		BaseInterpreter: "/usr/bin/python3",
		ManifestSHA256:  "abc123",
		DepsInstalled:   true,
		CreatedAt:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	if err := writeReceipt(envDir, want); err != nil {
		t.Fatalf("writeReceipt() error = %v", err)
	}
	got, err := readReceipt(envDir)
	if err != nil {
		t.Fatalf("readReceipt() error = %v", err)
	}
	if got == nil {
		t.Fatal("readReceipt() = nil for freshly written receipt")
	}
	if *got != want {
		t.Errorf("readReceipt() = %+v, want %+v", *got, want)
	}
}

func TestReadReceiptMissing(t *testing.T) {
	got, err := readReceipt(t.TempDir())
	if err != nil {
		t.Fatalf("readReceipt() error = %v", err)
	}
	if got != nil {
		t.Errorf("readReceipt() = %+v for missing receipt, want nil", got)
	}
}

func TestReadReceiptCorrupt(t *testing.T) {
	envDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(envDir, receiptFileName), []byte("not = [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readReceipt(envDir)
	if err != nil {
		t.Fatalf("readReceipt() error = %v, want corrupt receipts treated as absent", err)
	}
	if got != nil {
		t.Errorf("readReceipt() = %+v for corrupt receipt, want nil", got)
	}
}

func TestHashFileStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte("requests==2.32.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile() error = %v", err)
	}
	second, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile() error = %v", err)
	}
	if first != second || first == "" {
		t.Errorf("hashFile() not stable: %q vs %q", first, second)
	}

	if err := os.WriteFile(path, []byte("rich==13.7.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile() error = %v", err)
	}
	if changed == first {
		t.Error("hashFile() unchanged after content change")
	}
}
