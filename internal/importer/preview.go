package importer

import (
	"fmt"
	"strings"

	"docforge/internal/doctree"
)

// TextPreviewer renders one topic body as plain text: the title, then each
// block on its own line. Images render as their alt text (or key), tables as
// tab-separated rows.
type TextPreviewer struct{}

var _ Previewer = TextPreviewer{}

func (TextPreviewer) Preview(t *doctree.Tree, ref string) (string, error) {
	topic := t.Topic(ref)
	if topic == nil {
		return "", fmt.Errorf("no topic for %q", ref)
	}

	var b strings.Builder
	if topic.Title != "" {
		b.WriteString(topic.Title + "\n\n")
	}
	for _, blk := range topic.Blocks {
		switch blk.Type {
		case doctree.BlockParagraph:
			for _, run := range blk.Paragraph.Runs {
				b.WriteString(run.Text)
			}
			b.WriteString("\n")
		case doctree.BlockImage:
			alt := blk.Image.Alt
			if alt == "" {
				alt = blk.Image.Key
			}
			b.WriteString("[" + alt + "]\n")
		case doctree.BlockTable:
			for _, row := range blk.Table.Rows {
				b.WriteString(strings.Join(row, "\t") + "\n")
			}
		}
	}
	return b.String(), nil
}
