package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadNameList reads a name list text file: one record per line, surrounding
// whitespace trimmed, blank lines and '#' comment lines skipped.
func ReadNameList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open name file %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read name file %s: %w", path, err)
	}

	return names, nil
}
