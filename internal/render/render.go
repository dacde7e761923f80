// Package render turns content blocks into HTML fragments. Dispatch is total
// over the known variants with an inert fallback, so a document carrying a
// newer block type still renders instead of failing.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/softdev-labs/learnsite/internal/content"
)

// Block renders a single content block. Every input produces exactly one
// output fragment; nothing is dropped.
func Block(b content.Block) string {
	switch b.Kind {
	case content.BlockHeading:
		return fmt.Sprintf("<h3>%s</h3>", html.EscapeString(b.Text))
	case content.BlockParagraph:
		return fmt.Sprintf("<p>%s</p>", html.EscapeString(b.Text))
	case content.BlockList:
		var sb strings.Builder
		sb.WriteString("<ul>")
		for _, item := range b.Items {
			sb.WriteString("<li>")
			sb.WriteString(html.EscapeString(item))
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul>")
		return sb.String()
	case content.BlockCode:
		// Display-only: the code text is escaped, never evaluated.
		return fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>",
			html.EscapeString(b.Language), html.EscapeString(b.Text))
	default:
		return fmt.Sprintf("<pre class=\"block-unknown\">%s</pre>",
			html.EscapeString(rawDump(b)))
	}
}

// Section renders a section heading followed by its blocks in order.
func Section(s content.Section) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<section id=\"%s\">", html.EscapeString(s.ID)))
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(s.Title)))
	for _, b := range s.Content {
		sb.WriteString(Block(b))
	}
	sb.WriteString("</section>")
	return sb.String()
}

// Document renders a full lesson document.
func Document(d content.Document) string {
	var sb strings.Builder
	sb.WriteString("<article>")
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>", html.EscapeString(d.Title)))
	if d.Description != "" {
		sb.WriteString(fmt.Sprintf("<p class=\"description\">%s</p>", html.EscapeString(d.Description)))
	}
	for _, s := range d.Sections {
		sb.WriteString(Section(s))
	}
	sb.WriteString("</article>")
	return sb.String()
}

// rawDump serializes an unknown block's fields for the visible fallback.
func rawDump(b content.Block) string {
	if b.Raw != nil {
		if data, err := json.Marshal(b.Raw); err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("unsupported block type %q", b.Kind)
}
