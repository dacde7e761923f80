package content_test

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/softdev-labs/learnsite/internal/content"
)

func TestDocument_ItemIDs(t *testing.T) {
	var doc content.Document
	err := yaml.Unmarshal([]byte(`
title: "Items"
sections:
  - id: soil
    title: "Soil"
    content:
      - type: paragraph
        text: "Intro."
      - type: list
        items: ["a", "b"]
      - type: list
        items: ["c"]
  - id: water
    title: "Water"
    content:
      - type: list
        items: ["d"]
`), &doc)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := doc.ItemIDs()
	want := []string{"soil-0", "soil-1", "soil-2", "water-0"}
	if len(got) != len(want) {
		t.Fatalf("ItemIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ItemIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDocument_ItemIDs_NoLists(t *testing.T) {
	doc := content.Document{
		Sections: []content.Section{
			{ID: "s1", Content: []content.Block{{Kind: content.BlockParagraph, Text: "x"}}},
		},
	}
	if got := doc.ItemIDs(); len(got) != 0 {
		t.Errorf("ItemIDs() = %v, want empty", got)
	}
}

func TestBlock_MarshalJSON_Variants(t *testing.T) {
	tests := []struct {
		name  string
		block content.Block
		want  string
	}{
		{
			name:  "heading",
			block: content.Block{Kind: content.BlockHeading, Text: "Hi"},
			want:  `{"type":"heading","text":"Hi"}`,
		},
		{
			name:  "list",
			block: content.Block{Kind: content.BlockList, Items: []string{"a"}},
			want:  `{"type":"list","items":["a"]}`,
		},
		{
			name:  "code",
			block: content.Block{Kind: content.BlockCode, Language: "go", Text: "x := 1"},
			want:  `{"type":"code","language":"go","text":"x := 1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.block)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestBlock_MarshalJSON_UnknownKeepsRaw(t *testing.T) {
	block := content.Block{
		Kind: "diagram",
		Raw:  map[string]any{"type": "diagram", "source": "flow.svg"},
	}

	data, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"source":"flow.svg"`) {
		t.Errorf("Marshal() = %s, want raw fields preserved", data)
	}
}

func TestQuestionByID(t *testing.T) {
	doc := content.Document{
		Questions: []content.Question{
			{ID: 1, Question: "First?"},
			{ID: 7, Question: "Seventh?"},
		},
	}

	q, found := doc.QuestionByID(7)
	if !found {
		t.Fatal("QuestionByID(7) not found")
	}
	if q.Question != "Seventh?" {
		t.Errorf("Question = %q, want Seventh?", q.Question)
	}

	if _, found := doc.QuestionByID(99); found {
		t.Error("QuestionByID(99) should not be found")
	}
}
