package advisory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/rhea/internal/logging"
)

// Record is one advisory line of a JSONL file.
type Record struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// LoadFromJSONL loads advisories from a JSONL file. Malformed lines and
// lines without title or content are skipped with a warning.
func LoadFromJSONL(path string, logger *zap.Logger) ([]Record, error) {
	logger = logging.OrNop(logger)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("skipping malformed advisory line",
				zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		rec.Title = strings.TrimSpace(rec.Title)
		rec.Content = strings.TrimSpace(rec.Content)
		if rec.Title == "" || rec.Content == "" {
			logger.Warn("skipping advisory without title or content",
				zap.String("path", path), zap.Int("line", lineNo))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid advisories found in %s", path)
	}
	return records, nil
}
