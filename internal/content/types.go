package content

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Block variant tags. The set is open: documents may carry variants this
// version does not know about, and those survive decoding with their raw
// fields intact so renderers can fall back instead of failing.
const (
	BlockHeading   = "heading"
	BlockParagraph = "paragraph"
	BlockList      = "list"
	BlockCode      = "code"
)

// Document is one immutable lesson, identified by its slug.
type Document struct {
	Slug        string     `yaml:"slug" json:"slug"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Sections    []Section  `yaml:"sections" json:"sections"`
	Questions   []Question `yaml:"testQuestions" json:"testQuestions"`
}

// Section is an ordered run of content blocks within a document.
type Section struct {
	ID      string  `yaml:"id" json:"id"`
	Title   string  `yaml:"title" json:"title"`
	Content []Block `yaml:"content" json:"content"`
}

// Block is one unit of renderable content, discriminated by Kind. Only the
// fields the variant declares are meaningful; Raw preserves the original
// mapping for variants outside the known set.
type Block struct {
	Kind     string
	Text     string
	Items    []string
	Language string
	Raw      map[string]any
}

// Question is a single-answer self-check question.
type Question struct {
	ID            int      `yaml:"id" json:"id"`
	Question      string   `yaml:"question" json:"question"`
	Options       []string `yaml:"options" json:"options"`
	CorrectAnswer int      `yaml:"correctAnswer" json:"correctAnswer"`
	Explanation   string   `yaml:"explanation" json:"explanation"`
}

// UnmarshalYAML decodes a block mapping, keeping the raw fields alongside the
// typed ones so unknown variants round-trip.
func (b *Block) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decode block: %w", err)
	}

	kind, _ := raw["type"].(string)
	b.Kind = kind
	b.Raw = raw

	switch kind {
	case BlockHeading, BlockParagraph:
		var aux struct {
			Text string `yaml:"text"`
		}
		if err := value.Decode(&aux); err != nil {
			return fmt.Errorf("decode %s block: %w", kind, err)
		}
		b.Text = aux.Text
	case BlockList:
		var aux struct {
			Items []string `yaml:"items"`
		}
		if err := value.Decode(&aux); err != nil {
			return fmt.Errorf("decode list block: %w", err)
		}
		b.Items = aux.Items
	case BlockCode:
		var aux struct {
			Language string `yaml:"language"`
			Text     string `yaml:"text"`
		}
		if err := value.Decode(&aux); err != nil {
			return fmt.Errorf("decode code block: %w", err)
		}
		b.Language = aux.Language
		b.Text = aux.Text
	}

	return nil
}

// MarshalJSON emits only the fields the variant declares, plus the
// discriminator. Unknown variants serialize their raw mapping unchanged.
func (b Block) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case BlockHeading, BlockParagraph:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{b.Kind, b.Text})
	case BlockList:
		return json.Marshal(struct {
			Type  string   `json:"type"`
			Items []string `json:"items"`
		}{b.Kind, b.Items})
	case BlockCode:
		return json.Marshal(struct {
			Type     string `json:"type"`
			Language string `json:"language"`
			Text     string `json:"text"`
		}{b.Kind, b.Language, b.Text})
	default:
		if b.Raw != nil {
			return json.Marshal(b.Raw)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
		}{b.Kind})
	}
}

// ItemIDs returns the document's trackable progress items in order: one per
// list entry, identified as "<sectionID>-<index>" with the index counted
// across all list blocks within the section.
func (d Document) ItemIDs() []string {
	var ids []string
	for _, s := range d.Sections {
		i := 0
		for _, b := range s.Content {
			if b.Kind != BlockList {
				continue
			}
			for range b.Items {
				ids = append(ids, fmt.Sprintf("%s-%d", s.ID, i))
				i++
			}
		}
	}
	return ids
}

// QuestionByID returns the document's question with the given id.
func (d Document) QuestionByID(id int) (Question, bool) {
	for _, q := range d.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
