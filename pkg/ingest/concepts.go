package ingest

import (
	"strings"
	"unicode"

	"github.com/soundprediction/hskg/pkg/types"
)

// Concept categories.
const (
	CategoryProduct = "product"
	CategorySetting = "setting"
	CategoryState   = "state"
	CategoryUser    = "user"
	CategoryGoal    = "goal"
	CategoryFix     = "fix"
	CategoryItem    = "item"
)

var (
	// UXCategories are assigned to user feedback concepts.
	UXCategories = []string{CategoryProduct, CategorySetting, CategoryState, CategoryUser}
	// DesignCategories are assigned to design reference concepts.
	DesignCategories = []string{CategoryGoal, CategoryFix, CategoryItem}
)

// DefaultLexicon maps lower-case keywords to the category they signal.
var DefaultLexicon = map[string]string{
	"product": CategoryProduct, "app": CategoryProduct, "application": CategoryProduct,
	"website": CategoryProduct, "site": CategoryProduct, "page": CategoryProduct,

	"setting": CategorySetting, "settings": CategorySetting, "option": CategorySetting,
	"options": CategorySetting, "preference": CategorySetting, "preferences": CategorySetting,
	"configuration": CategorySetting,

	"state": CategoryState, "error": CategoryState, "crash": CategoryState,
	"crashes": CategoryState, "slow": CategoryState, "loading": CategoryState,
	"broken": CategoryState, "bug": CategoryState,

	"user": CategoryUser, "users": CategoryUser, "customer": CategoryUser,
	"account": CategoryUser, "profile": CategoryUser,

	"goal": CategoryGoal, "goals": CategoryGoal, "purpose": CategoryGoal,
	"objective": CategoryGoal, "intent": CategoryGoal,

	"fix": CategoryFix, "fixes": CategoryFix, "solution": CategoryFix,
	"improve": CategoryFix, "improvement": CategoryFix, "resolve": CategoryFix,

	"item": CategoryItem, "items": CategoryItem, "button": CategoryItem,
	"buttons": CategoryItem, "element": CategoryItem, "component": CategoryItem,
	"icon": CategoryItem, "menu": CategoryItem, "link": CategoryItem,
}

// Concept is a span of source text with an optional category ("" when none).
type Concept struct {
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	// Start and End are byte offsets into the source text.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Extractor pulls sentence-level concepts out of texts and categorises them
// by the first lexicon keyword they contain.
type Extractor struct {
	lexicon  map[string]string
	minWords int
}

// NewExtractor creates an Extractor. A nil lexicon uses DefaultLexicon.
// Spans with fewer than minWords words are skipped.
func NewExtractor(lexicon map[string]string, minWords int) *Extractor {
	if lexicon == nil {
		lexicon = DefaultLexicon
	}
	if minWords < 1 {
		minWords = 1
	}
	return &Extractor{lexicon: lexicon, minWords: minWords}
}

// ExtractConcepts runs the default extractor over texts.
func ExtractConcepts(texts []string) []Concept {
	return NewExtractor(nil, 2).Extract(texts)
}

// Extract returns the concepts of every text, in input order.
func (e *Extractor) Extract(texts []string) []Concept {
	var concepts []Concept
	for _, text := range texts {
		for _, span := range sentenceSpans(text) {
			words := Tokenize(text[span[0]:span[1]])
			if len(words) < e.minWords {
				continue
			}
			concepts = append(concepts, Concept{
				Text:     text[span[0]:span[1]],
				Category: e.Categorize(words),
				Start:    span[0],
				End:      span[1],
			})
		}
	}
	return concepts
}

// Categorize returns the category of the first word found in the lexicon.
func (e *Extractor) Categorize(words []string) string {
	for _, w := range words {
		if c, ok := e.lexicon[w]; ok {
			return c
		}
	}
	return ""
}

// ToItems wraps concepts as text items from source.
func ToItems(concepts []Concept, source types.Source) []types.HeterogeneousItem {
	items := make([]types.HeterogeneousItem, len(concepts))
	for i, c := range concepts {
		items[i] = types.HeterogeneousItem{
			Text:     c.Text,
			Modality: types.TextModality,
			Source:   source,
			Category: c.Category,
		}
	}
	return items
}

// Tokenize lower-cases text and splits it into runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// Preprocess lower-cases text, strips everything but letters and drops stopwords.
func Preprocess(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r)
	})
	kept := words[:0]
	for _, w := range words {
		if _, stop := stopwords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// sentenceSpans returns trimmed [start, end) byte ranges split on sentence
// punctuation and line breaks.
func sentenceSpans(text string) [][2]int {
	var spans [][2]int
	start := 0
	flush := func(end int) {
		s, e := start, end
		for s < e && isSpace(text[s]) {
			s++
		}
		for e > s && isSpace(text[e-1]) {
			e--
		}
		if s < e {
			spans = append(spans, [2]int{s, e})
		}
	}
	for i, r := range text {
		switch r {
		case '.', '!', '?', ';', '\n':
			flush(i)
			start = i + 1
		}
	}
	flush(len(text))
	return spans
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}

var stopwords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be
		because been before being below between both but by can could did do does doing down during
		each few for from further had has have having he her here hers herself him himself his how i
		if in into is it its itself just me more most my myself no nor not now of off on once only or
		other our ours ourselves out over own same she should so some such than that the their theirs
		them themselves then there these they this those through to too under until up very was we
		were what when where which while who whom why will with you your yours yourself yourselves`) {
		m[w] = struct{}{}
	}
	return m
}()
