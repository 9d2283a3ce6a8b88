package importer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"docforge/internal/doctree"
)

// MarkdownImporter builds a document tree from a markdown file: `#` headings
// open nodes nested by heading depth, body lines accumulate into paragraph
// blocks of the enclosing topic.
type MarkdownImporter struct{}

var _ Importer = MarkdownImporter{}

type mdSection struct {
	title string
	level int
	body  string
}

func (MarkdownImporter) Import(ctx context.Context, path string) (*doctree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return buildTree(splitMarkdown(string(b))), nil
}

// splitMarkdown scans raw markdown into a flat heading-ordered list of
// sections; nesting is reconstructed afterwards from the levels.
func splitMarkdown(content string) []mdSection {
	var sections []mdSection
	scanner := bufio.NewScanner(strings.NewReader(content))

	// Default root section for content before the first header
	currentTitle := "Introduction"
	currentLevel := 1
	preamble := true
	var currentBuffer strings.Builder

	flush := func() {
		body := strings.TrimSpace(currentBuffer.String())
		// An empty preamble produces no node.
		if !preamble || body != "" {
			sections = append(sections, mdSection{title: currentTitle, level: currentLevel, body: body})
		}
		preamble = false
		currentBuffer.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			level := 0
			for _, char := range trimmed {
				if char == '#' {
					level++
				} else {
					break
				}
			}
			if level > 0 && level < 7 && len(trimmed) > level && trimmed[level] == ' ' {
				flush()
				currentTitle = strings.TrimSpace(trimmed[level:])
				currentLevel = level
				continue
			}
		}

		currentBuffer.WriteString(line + "\n")
	}
	flush()

	return sections
}

// buildTree nests the flat section list by level. A heading with body text
// becomes a topic; a heading carrying only deeper headings stays a pure
// section.
func buildTree(sections []mdSection) *doctree.Tree {
	t := doctree.New()

	type frame struct {
		node  *doctree.Node
		level int
	}
	var stack []frame

	attach := func(n *doctree.Node) {
		if len(stack) == 0 {
			t.Roots = append(t.Roots, n)
			return
		}
		top := stack[len(stack)-1].node
		top.Children = append(top.Children, n)
	}

	for i, s := range sections {
		for len(stack) > 0 && stack[len(stack)-1].level >= s.level {
			stack = stack[:len(stack)-1]
		}

		level := len(stack) + 1
		node := &doctree.Node{
			Title: s.title,
			Level: level,
			Style: fmt.Sprintf("Heading %d", level),
		}
		if s.body == "" && hasDeeperNext(sections, i) {
			node.Kind = doctree.KindSection
		} else {
			node.Kind = doctree.KindTopic
			node.Ref = t.NewRef()
			t.Topics[node.Ref] = &doctree.Topic{
				Title:  s.title,
				Blocks: bodyBlocks(s.body),
			}
		}
		attach(node)
		stack = append(stack, frame{node: node, level: s.level})
	}

	return t
}

// hasDeeperNext reports whether the next heading nests under section i.
func hasDeeperNext(sections []mdSection, i int) bool {
	return i+1 < len(sections) && sections[i+1].level > sections[i].level
}

func bodyBlocks(body string) []doctree.Block {
	if body == "" {
		return nil
	}
	var blocks []doctree.Block
	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		blocks = append(blocks, doctree.NewParagraphBlock(para))
	}
	return blocks
}
