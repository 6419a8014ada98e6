// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.md")
	data := []byte("# Transcript\n")

	if err := AtomicWriteFile(path, data, 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", content, data)
	}
}

func TestAtomicWriteFile_CreatesParentDirAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.toml")

	if err := AtomicWriteFile(path, []byte("first"), 0600); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0600); err != nil {
		t.Fatalf("second write: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "second" {
		t.Errorf("got %q, want second", content)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestAtomicWriteFile_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "secret.json")
	if err := AtomicWriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
}

// =============================================================================
// TRUNCATION TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		input    string
		max      int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"Übermittlung", 5, "Üb..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}

	for _, tc := range testCases {
		if got := TruncateRunes(tc.input, tc.max); got != tc.expected {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.expected)
		}
	}
}

func TestTruncateWidth_NeverExceeds(t *testing.T) {
	inputs := []string{"hello world", "日本語のテキスト", "GDPR Art. 5", ""}
	for _, in := range inputs {
		for w := 0; w < 14; w++ {
			got := TruncateWidth(in, w)
			if runewidth.StringWidth(got) > w {
				t.Errorf("TruncateWidth(%q, %d) = %q exceeds width", in, w, got)
			}
		}
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("ab", 4); got != "ab  " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := PadWidth("abcdef", 4); StringWidth(got) != 4 {
		t.Errorf("PadWidth width = %d", StringWidth(got))
	}
}

// =============================================================================
// WRAP TESTS
// =============================================================================

func TestWrapWidth(t *testing.T) {
	lines := WrapWidth("Personal data shall be processed lawfully", 15)
	for _, l := range lines {
		if StringWidth(l) > 15 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "Personal data shall be processed lawfully" {
		t.Errorf("words lost: %q", lines)
	}
}

func TestWrapWidth_KeepsNewlinesAndSplitsLongWords(t *testing.T) {
	lines := WrapWidth("a\n\nabcdefghij", 4)
	want := []string{"a", "", "abcd", "efgh", "ij"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExcerpt(t *testing.T) {
	text := strings.Repeat("word ", 40)
	lines := Excerpt(text, 20, 4)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if !strings.HasSuffix(lines[3], "...") {
		t.Errorf("last line %q should end with ellipsis", lines[3])
	}
	if StringWidth(lines[3]) > 20 {
		t.Errorf("last line exceeds width: %q", lines[3])
	}

	short := Excerpt("short text", 20, 4)
	if len(short) != 1 || short[0] != "short text" {
		t.Errorf("short excerpt = %q", short)
	}
}
