package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Modality is the medium an item was acquired from.
type Modality string

const (
	TextModality  Modality = "text"
	ImageModality Modality = "image"
)

// Source is the corpus an item belongs to.
type Source string

const (
	UXSource     Source = "ux"
	DesignSource Source = "design"
)

// HeterogeneousItem is one unit of acquired content: a feedback sentence, a
// design-guideline chunk, or text recognised from an image.
type HeterogeneousItem struct {
	Text     string   `json:"text" yaml:"text" validate:"required_if=Modality text"`
	Modality Modality `json:"modality" yaml:"modality" validate:"required,oneof=text image"`
	Source   Source   `json:"source" yaml:"source" validate:"required,oneof=ux design"`
	// Category is empty when the item is uncategorised.
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Embedding []float32 `json:"embedding,omitempty" yaml:"embedding,omitempty"`
	// RawData holds the original bytes of image items.
	RawData []byte `json:"raw_data,omitempty" yaml:"-"`
}

var validate = validator.New()

// Validate checks the item's tags and the rule that raw data belongs to image items only.
func (i *HeterogeneousItem) Validate() error {
	if err := validate.Struct(i); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		messages := make([]string, 0, len(validationErrors))
		var first error
		for _, e := range validationErrors {
			if first == nil {
				first = fieldError(e.Field())
			}
			messages = append(messages, fmt.Sprintf("field '%s' failed rule '%s' (value: '%v')", e.Field(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%w: %s", first, strings.Join(messages, "; "))
	}
	if i.Modality == TextModality && len(i.RawData) > 0 {
		return ErrRawDataOnText
	}
	return nil
}

func fieldError(field string) error {
	switch field {
	case "Modality":
		return ErrInvalidModality
	case "Source":
		return ErrInvalidSource
	case "Text":
		return ErrEmptyText
	default:
		return fmt.Errorf("invalid %s", strings.ToLower(field))
	}
}

// HasCategory reports whether the item is categorised.
func (i *HeterogeneousItem) HasCategory() bool { return i.Category != "" }

// HasEmbedding reports whether the item carries a vector.
func (i *HeterogeneousItem) HasEmbedding() bool { return i.Embedding != nil }
