package jobs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

const maxLineSize = 4 << 20

// LoadRaw reads raw records from a JSON array file or a JSON Lines file.
// Unparseable JSON Lines entries are kept as their raw text so that Normalize
// reports them as malformed records instead of failing the whole file.
func LoadRaw(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records file %q: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parsing records file %q: %w", path, err)
		}
		return items, nil
	}

	var items []any
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var item any
		if err := json.Unmarshal(line, &item); err != nil {
			items = append(items, string(line))
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning records file %q: %w", path, err)
	}

	return items, nil
}
