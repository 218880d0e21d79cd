package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/cognicore/rhea/internal/advisory"
)

// FileFetch returns a FetchFunc reading advisories from a JSONL file.
func FileFetch(path string, logger *zap.Logger) FetchFunc {
	return func(ctx context.Context) ([]Advisory, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := advisory.LoadFromJSONL(path, logger)
		if err != nil {
			return nil, err
		}
		out := make([]Advisory, len(records))
		for i, r := range records {
			out[i] = Advisory{Title: r.Title, Content: r.Content, Category: r.Category}
		}
		return out, nil
	}
}

// NewFile creates a provider for a local advisories file. A missing or
// unreadable file yields an empty fallback feed.
func NewFile(path, source string, logger *zap.Logger) *Live {
	return NewLive(source, CategoryAdvisory, FileFetch(path, logger), Feed{}, logger)
}
