package doctree

// Kind discriminates the two node variants of the navigation tree.
type Kind string

const (
	// KindSection is a purely structural grouping node.
	KindSection Kind = "section"
	// KindTopic is a node referencing a content-bearing Topic by Ref.
	KindTopic Kind = "topic"
)

// Node is a single entry in the navigation tree. A section groups child
// nodes; a topic node references exactly one Topic in the tree's topic map
// and may still carry structural children (sub-topics nested under it).
type Node struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title,omitempty"` // navigation title; for topics an override of the Topic title
	Ref   string `json:"ref,omitempty"`   // topic reference key, empty for sections
	Level int    `json:"level"`
	Style string `json:"style,omitempty"` // heading-style tag, e.g. "Heading 2"

	Children []*Node `json:"children,omitempty"`
}

// IsSection reports whether the node is a structural section.
func (n *Node) IsSection() bool { return n.Kind == KindSection }

// IsTopic reports whether the node references a topic body.
func (n *Node) IsTopic() bool { return n.Kind == KindTopic }

// BlockType identifies the content block variants of a topic body.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockImage     BlockType = "image"
	BlockTable     BlockType = "table"
)

// Block is one content block of a topic body. Exactly one of the variant
// pointers is set, matching Type.
type Block struct {
	ID        string     `json:"id"`
	Type      BlockType  `json:"type"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Image     *Image     `json:"image,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Paragraph holds styled runs of text. RefID, when set, points at the ID of
// another block (an internal cross-reference).
type Paragraph struct {
	Class string `json:"class,omitempty"`
	RefID string `json:"ref_id,omitempty"`
	Runs  []Run  `json:"runs,omitempty"`
}

// Run is a span of text with inline emphasis flags.
type Run struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Image references an entry in the tree's auxiliary image map.
type Image struct {
	Key string `json:"key"`
	Alt string `json:"alt,omitempty"`
}

// Table is a plain grid of cell text.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Topic owns a title and an ordered body of content blocks. Topics live in
// the tree's flat topic map keyed by reference key.
type Topic struct {
	Title  string  `json:"title,omitempty"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Tree is the in-memory document: a rooted ordered forest of nodes plus the
// side map of topic bodies and auxiliary maps carried through snapshots.
type Tree struct {
	Roots  []*Node
	Topics map[string]*Topic
	Images map[string]string
	Meta   map[string]string
}

// New returns an empty tree with initialized maps.
func New() *Tree {
	return &Tree{
		Topics: make(map[string]*Topic),
		Images: make(map[string]string),
		Meta:   make(map[string]string),
	}
}

// Topic resolves a reference key, returning nil when the key is unknown.
func (t *Tree) Topic(ref string) *Topic {
	if t.Topics == nil {
		return nil
	}
	return t.Topics[ref]
}
