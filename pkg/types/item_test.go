package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeterogeneousItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    HeterogeneousItem
		wantErr error
	}{
		{
			name: "text item",
			item: HeterogeneousItem{Text: "the settings page is confusing", Modality: TextModality, Source: UXSource, Category: "setting"},
		},
		{
			name: "image item with raw data",
			item: HeterogeneousItem{Text: "primary button", Modality: ImageModality, Source: DesignSource, RawData: []byte{0x89, 0x50}},
		},
		{
			name: "image item without recognised text",
			item: HeterogeneousItem{Modality: ImageModality, Source: DesignSource},
		},
		{
			name:    "text item without text",
			item:    HeterogeneousItem{Modality: TextModality, Source: UXSource},
			wantErr: ErrEmptyText,
		},
		{
			name:    "unknown modality",
			item:    HeterogeneousItem{Text: "x", Modality: "audio", Source: UXSource},
			wantErr: ErrInvalidModality,
		},
		{
			name:    "unknown source",
			item:    HeterogeneousItem{Text: "x", Modality: TextModality, Source: "marketing"},
			wantErr: ErrInvalidSource,
		},
		{
			name:    "raw data on text item",
			item:    HeterogeneousItem{Text: "x", Modality: TextModality, Source: UXSource, RawData: []byte("x")},
			wantErr: ErrRawDataOnText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHeterogeneousItemHelpers(t *testing.T) {
	item := HeterogeneousItem{Text: "x", Modality: TextModality, Source: UXSource}
	assert.False(t, item.HasCategory())
	assert.False(t, item.HasEmbedding())

	item.Category = "user"
	item.Embedding = []float32{}
	assert.True(t, item.HasCategory())
	assert.True(t, item.HasEmbedding())
}
