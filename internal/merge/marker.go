package merge

import (
	"strings"

	"github.com/google/uuid"

	"docforge/internal/doctree"
)

// MarkerClass is the paragraph class stamped on merged heading markers.
const MarkerClass = "merged-title"

// appendTitleMarker appends the former heading as a styled marker paragraph:
// whitespace-collapsed, upper-cased, bold and underlined. A marker identical
// to the one immediately preceding it is skipped; a different marker is
// always appended.
func appendTitleMarker(topic *doctree.Topic, title string) {
	text := strings.ToUpper(CollapseWhitespace(title))
	if text == "" {
		return
	}
	if last := lastMarkerText(topic); last == text {
		return
	}
	topic.Blocks = append(topic.Blocks, doctree.Block{
		ID:   uuid.NewString(),
		Type: doctree.BlockParagraph,
		Paragraph: &doctree.Paragraph{
			Class: MarkerClass,
			Runs:  []doctree.Run{{Text: text, Bold: true, Underline: true}},
		},
	})
}

func lastMarkerText(topic *doctree.Topic) string {
	if len(topic.Blocks) == 0 {
		return ""
	}
	last := topic.Blocks[len(topic.Blocks)-1]
	if last.Type != doctree.BlockParagraph || last.Paragraph == nil || last.Paragraph.Class != MarkerClass {
		return ""
	}
	var b strings.Builder
	for _, r := range last.Paragraph.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// CollapseWhitespace squeezes all runs of whitespace to single spaces and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
