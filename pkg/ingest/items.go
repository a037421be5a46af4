package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/soundprediction/hskg/pkg/types"
	"gopkg.in/yaml.v3"
)

// itemFile is the envelope form of an item batch; a bare list is accepted too.
type itemFile struct {
	Items []types.HeterogeneousItem `yaml:"items"`
}

// LoadItemsFile reads a YAML or JSON item batch from path.
func LoadItemsFile(path string) ([]types.HeterogeneousItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}
	items, err := ParseItems(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ReadItems reads a YAML or JSON item batch from r.
func ReadItems(r io.Reader) ([]types.HeterogeneousItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return ParseItems(data)
}

// ParseItems decodes either a top-level list of items or a document with an
// "items" key, then validates every item. JSON input is decoded as YAML.
func ParseItems(data []byte) ([]types.HeterogeneousItem, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var items []types.HeterogeneousItem
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to decode items: %w", err)
		}
	case yaml.MappingNode:
		var f itemFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode items: %w", err)
		}
		items = f.Items
	default:
		return nil, fmt.Errorf("failed to decode items: expected a list or an items mapping")
	}

	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return items, nil
}

// WriteItems encodes items as YAML.
func WriteItems(w io.Writer, items []types.HeterogeneousItem) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(itemFile{Items: items}); err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
