package common

import (
	"fmt"
	"strings"
	"unicode"
)

// invalidSegmentChars are excluded character-wise from every folder segment.
// They cover the union of Windows and POSIX reserved path characters.
const invalidSegmentChars = `/\:*?"<>|`

// fallbackSegmentPrefix is the deterministic placeholder prefix used when a
// segment is empty after sanitization. The full name encodes the record and
// level index, so fallback segments never collide within one run.
const fallbackSegmentPrefix = "文件夹"

// PathUtils provides segment and column helpers shared by the resolver.
type PathUtils struct{}

// NewPathUtils creates a new PathUtils instance
func NewPathUtils() *PathUtils {
	return &PathUtils{}
}

// SanitizeSegment strips reserved path characters from a candidate folder
// segment. Exclusion, not replacement: "a/b" becomes "ab".
func (pu *PathUtils) SanitizeSegment(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if strings.ContainsRune(invalidSegmentChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FallbackSegment returns the placeholder for a segment that sanitized to
// nothing, unique per (record, level) pair.
func (pu *PathUtils) FallbackSegment(recordIdx, levelIdx int) string {
	return fmt.Sprintf("%s_%d_%d", fallbackSegmentPrefix, recordIdx, levelIdx)
}

// CleanSegment sanitizes a candidate segment and substitutes the deterministic
// fallback when nothing survives.
func (pu *PathUtils) CleanSegment(segment string, recordIdx, levelIdx int) string {
	clean := pu.SanitizeSegment(segment)
	if clean == "" {
		clean = pu.FallbackSegment(recordIdx, levelIdx)
	}
	return clean
}

// ColumnIndex converts a single-letter column reference to its zero-based
// offset (A=0, B=1, ...). Returns -1 for anything that is not one letter.
func (pu *PathUtils) ColumnIndex(column string) int {
	if len(column) != 1 {
		return -1
	}
	c := unicode.ToUpper(rune(column[0]))
	if c < 'A' || c > 'Z' {
		return -1
	}
	return int(c - 'A')
}

// IsAlphabetic reports whether s is non-empty and purely alphabetic. The
// legacy level policy keys on this to decide literal vs substitution.
func (pu *PathUtils) IsAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ValidatePath validates that a path is safe and accessible
func (pu *PathUtils) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// Check for invalid characters (basic check)
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null character")
	}

	// Check path length (reasonable limit)
	if len(path) > 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	return nil
}
