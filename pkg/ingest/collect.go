package ingest

import (
	"log/slog"

	"github.com/soundprediction/hskg/pkg/types"
)

// Sources names the inputs of one acquisition run. Every field is optional.
type Sources struct {
	FeedbackCSV    string
	FeedbackColumn string
	DesignFiles    []string
	ItemFiles      []string
	ChunkSize      int
	ChunkOverlap   int
}

// Collect loads every configured source and returns UX items first, then
// design items, then pre-built items in file order.
func Collect(src Sources, logger *slog.Logger) ([]types.HeterogeneousItem, error) {
	if logger == nil {
		logger = slog.Default()
	}
	extractor := NewExtractor(nil, 2)
	var items []types.HeterogeneousItem

	if src.FeedbackCSV != "" {
		feedback, err := LoadFeedbackCSV(src.FeedbackCSV, src.FeedbackColumn)
		if err != nil {
			return nil, err
		}
		ux := ToItems(extractor.Extract(feedback), types.UXSource)
		logger.Info("Loaded feedback", "path", src.FeedbackCSV, "rows", len(feedback), "concepts", len(ux))
		items = append(items, ux...)
	}

	overlap := src.ChunkOverlap
	if src.ChunkSize == 0 && overlap == 0 {
		overlap = DefaultChunkOverlap
	}
	for _, path := range src.DesignFiles {
		chunks, err := LoadTextChunks(path, src.ChunkSize, overlap)
		if err != nil {
			return nil, err
		}
		design := ToItems(extractor.Extract(chunks), types.DesignSource)
		logger.Info("Loaded design reference", "path", path, "chunks", len(chunks), "concepts", len(design))
		items = append(items, design...)
	}

	for _, path := range src.ItemFiles {
		batch, err := LoadItemsFile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded item batch", "path", path, "items", len(batch))
		items = append(items, batch...)
	}
	return items, nil
}
