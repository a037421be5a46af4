package ingest

import "github.com/soundprediction/hskg/pkg/types"

// Summary counts items by modality and source.
type Summary struct {
	TotalItems  int       `json:"total_items"`
	TextCount   int       `json:"text_count"`
	ImageCount  int       `json:"image_count"`
	UXCount     int       `json:"ux_count"`
	DesignCount int       `json:"design_count"`
	Categorized int       `json:"categorized"`
	Breakdown   Breakdown `json:"breakdown"`
}

// Breakdown crosses source with modality.
type Breakdown struct {
	UXText       int `json:"ux_text"`
	UXImages     int `json:"ux_images"`
	DesignText   int `json:"design_text"`
	DesignImages int `json:"design_images"`
}

// Summarize returns extraction statistics for items.
func Summarize(items []types.HeterogeneousItem) Summary {
	s := Summary{TotalItems: len(items)}
	for _, it := range items {
		text := it.Modality == types.TextModality
		if text {
			s.TextCount++
		} else if it.Modality == types.ImageModality {
			s.ImageCount++
		}
		if it.HasCategory() {
			s.Categorized++
		}
		switch it.Source {
		case types.UXSource:
			s.UXCount++
			if text {
				s.Breakdown.UXText++
			} else {
				s.Breakdown.UXImages++
			}
		case types.DesignSource:
			s.DesignCount++
			if text {
				s.Breakdown.DesignText++
			} else {
				s.Breakdown.DesignImages++
			}
		}
	}
	return s
}
