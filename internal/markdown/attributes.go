package markdown

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	attributeBlockPriority       = 150
	attributeTransformerPriority = 100
)

var classAttribute = []byte("class")

// BlockAttributes is a goldmark extension for attribute lines. A line made
// only of an attribute list, such as
//
//	{#steps .fancy type=a}
//
// decorates the block that follows it, or the block before it when it is
// the last one of its container.
var BlockAttributes goldmark.Extender = &blockAttributes{}

type blockAttributes struct{}

func (e *blockAttributes) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(&attributeBlockParser{}, attributeBlockPriority),
		),
		parser.WithASTTransformers(
			util.Prioritized(&attributeBlockTransformer{}, attributeTransformerPriority),
		),
	)
}

var kindAttributeBlock = ast.NewNodeKind("AttributeBlock")

// attributeBlock only lives between parsing and the AST transform.
type attributeBlock struct {
	ast.BaseBlock
}

func (n *attributeBlock) Kind() ast.NodeKind {
	return kindAttributeBlock
}

func (n *attributeBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type attributeBlockParser struct{}

func (b *attributeBlockParser) Trigger() []byte {
	return []byte{'{'}
}

func (b *attributeBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, pos := reader.Position()
	attrs, ok := parser.ParseAttributes(reader)
	if !ok || len(attrs) == 0 {
		reader.SetPosition(line, pos)
		return nil, parser.NoChildren
	}
	if rest, _ := reader.PeekLine(); !util.IsBlank(rest) {
		reader.SetPosition(line, pos)
		return nil, parser.NoChildren
	}

	node := &attributeBlock{}
	for _, attr := range attrs {
		if value, ok := attributeBytes(attr.Value); ok {
			node.SetAttribute(attr.Name, value)
		}
	}
	return node, parser.NoChildren
}

func (b *attributeBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (b *attributeBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *attributeBlockParser) CanInterruptParagraph() bool {
	return true
}

func (b *attributeBlockParser) CanAcceptIndentedLine() bool {
	return false
}

// attributeBlockTransformer moves attributes onto their target block and
// drops the attribute lines from the tree.
type attributeBlockTransformer struct{}

func (t *attributeBlockTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var found []*attributeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if ab, ok := n.(*attributeBlock); ok && entering {
			found = append(found, ab)
		}
		return ast.WalkContinue, nil
	})

	for _, ab := range found {
		if target := attributeTarget(ab); target != nil {
			mergeAttributes(target, ab)
		}
		parent := ab.Parent()
		parent.RemoveChild(parent, ab)
	}
}

func attributeTarget(n ast.Node) ast.Node {
	for s := n.NextSibling(); s != nil; s = s.NextSibling() {
		if s.Kind() != kindAttributeBlock {
			return s
		}
	}
	for s := n.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		if s.Kind() != kindAttributeBlock {
			return s
		}
	}
	return nil
}

// mergeAttributes copies from's attributes onto target. Classes add up,
// anything else is replaced.
func mergeAttributes(target, from ast.Node) {
	for _, attr := range from.Attributes() {
		value := attr.Value.([]byte)
		if bytes.Equal(attr.Name, classAttribute) {
			if prev, ok := target.Attribute(classAttribute); ok {
				if b, ok := prev.([]byte); ok && len(b) > 0 {
					value = append(append(append([]byte{}, b...), ' '), value...)
				}
			}
		}
		target.SetAttribute(attr.Name, value)
	}
}

// attributeBytes converts a parsed attribute value to the []byte form the
// HTML renderers expect. Nested lists and maps are dropped.
func attributeBytes(v any) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	case bool:
		return []byte(strconv.FormatBool(t)), true
	case float64:
		return []byte(strconv.FormatFloat(t, 'f', -1, 64)), true
	case int:
		return []byte(strconv.Itoa(t)), true
	default:
		return nil, false
	}
}
