package doctree

import "github.com/google/uuid"

// CloneBlocks deep-copies a block sequence for transplant into another topic
// body. Every copied block receives a fresh id; any internal cross-reference
// that pointed at an id inside the copied sequence is rewritten to the new
// id. References to ids outside the sequence are left as-is.
func CloneBlocks(blocks []Block) []Block {
	if len(blocks) == 0 {
		return nil
	}

	idMap := make(map[string]string, len(blocks))
	out := make([]Block, 0, len(blocks))

	for _, b := range blocks {
		nb := cloneBlock(b)
		nb.ID = uuid.NewString()
		if b.ID != "" {
			idMap[b.ID] = nb.ID
		}
		out = append(out, nb)
	}

	// Second pass: rewrite references local to the copied sequence.
	for i := range out {
		if p := out[i].Paragraph; p != nil && p.RefID != "" {
			if newID, ok := idMap[p.RefID]; ok {
				p.RefID = newID
			}
		}
	}
	return out
}

func cloneBlock(b Block) Block {
	nb := Block{ID: b.ID, Type: b.Type}
	if b.Paragraph != nil {
		p := *b.Paragraph
		p.Runs = append([]Run(nil), b.Paragraph.Runs...)
		nb.Paragraph = &p
	}
	if b.Image != nil {
		img := *b.Image
		nb.Image = &img
	}
	if b.Table != nil {
		tbl := Table{Rows: make([][]string, len(b.Table.Rows))}
		for i, row := range b.Table.Rows {
			tbl.Rows[i] = append([]string(nil), row...)
		}
		nb.Table = &tbl
	}
	return nb
}

// NewParagraphBlock builds a paragraph block with a fresh id and a single
// plain run.
func NewParagraphBlock(text string) Block {
	return Block{
		ID:        uuid.NewString(),
		Type:      BlockParagraph,
		Paragraph: &Paragraph{Runs: []Run{{Text: text}}},
	}
}
