package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Ahead of goldmark's numeric list (300) and list item (400) parsers.
const (
	letterListPriority     = 290
	letterListItemPriority = 390

	// maxMarkerLen bounds roman numerals; "mmmdccclxxxviii" is the longest.
	maxMarkerLen = 15
)

var letterListEmptyItem = parser.NewContextKey()

var letterTriggers = func() []byte {
	out := make([]byte, 0, 52)
	for c := byte('a'); c <= 'z'; c++ {
		out = append(out, c, c-'a'+'A')
	}
	return out
}()

// LetterLists is a goldmark extension for ordered lists numbered with
// letters or roman numerals:
//
//	a. alpha     A. upper alpha
//	i. roman     I. upper roman
//
// The list gets a matching type attribute ("a", "A", "i" or "I"). A lone
// "i" or "I" starts a roman list, any other single letter an alpha list.
var LetterLists goldmark.Extender = &letterLists{}

type letterLists struct{}

func (e *letterLists) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&letterListParser{}, letterListPriority),
		util.Prioritized(&letterListItemParser{}, letterListItemPriority),
	))
}

// letterItem locates an item marker on a line. content is -1 for an
// empty item.
type letterItem struct {
	indent     int
	marker     []byte
	delim      byte
	end        int
	content    int
	contentEnd int
}

// matchLetterItem matches `^ {0,3}([a-zA-Z]+)[.)](\s+.*)?\n?$` where the
// letters form a valid marker.
func matchLetterItem(line []byte) (letterItem, bool) {
	var m letterItem
	i := 0
	for ; i < len(line) && line[i] == ' '; i++ {
	}
	if i > 3 {
		return m, false
	}
	m.indent = i

	start := i
	for ; i < len(line) && i-start < maxMarkerLen && isASCIILetter(line[i]); i++ {
	}
	if i == start || i >= len(line) || (line[i] != '.' && line[i] != ')') {
		return m, false
	}
	m.marker = line[start:i]
	if _, _, ok := listBullet(m.marker); !ok {
		return m, false
	}
	m.delim = line[i]
	i++
	m.end = i

	if i < len(line) && line[i] != '\n' {
		if w, _ := util.IndentWidth(line[i:], 0); w == 0 {
			return m, false
		}
	}
	if i >= len(line) {
		m.content, m.contentEnd = -1, -1
		return m, true
	}
	m.content = i
	m.contentEnd = len(line)
	if line[m.contentEnd-1] == '\n' && line[i] != '\n' {
		m.contentEnd--
	}
	return m, true
}

func (m letterItem) isEmpty(line []byte) bool {
	return m.content < 0 || util.IsBlank(line[m.content:m.contentEnd])
}

// listBullet returns the numbering type a marker opens a list with and the
// number it stands for.
func listBullet(marker []byte) (string, int, bool) {
	if len(marker) == 1 && marker[0] != 'i' && marker[0] != 'I' {
		if isUpper(marker[0]) {
			return "A", int(marker[0]-'A') + 1, true
		}
		return "a", int(marker[0]-'a') + 1, true
	}
	if v, ok := romanValue(marker, false); ok {
		return "i", v, true
	}
	if v, ok := romanValue(marker, true); ok {
		return "I", v, true
	}
	return "", 0, false
}

// continuesList reports whether marker may number an item of a list with
// the given type.
func continuesList(bullet string, marker []byte) bool {
	switch bullet {
	case "a":
		return len(marker) == 1 && !isUpper(marker[0])
	case "A":
		return len(marker) == 1 && isUpper(marker[0])
	case "i":
		_, ok := romanValue(marker, false)
		return ok
	case "I":
		_, ok := romanValue(marker, true)
		return ok
	}
	return false
}

func letterBullet(list *ast.List) (string, bool) {
	v, ok := list.AttributeString("type")
	if !ok {
		return "", false
	}
	b, _ := v.([]byte)
	switch string(b) {
	case "a", "A", "i", "I":
		return string(b), true
	}
	return "", false
}

var romanDigits = map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}

// romanValue parses a canonical roman numeral written in one case.
func romanValue(marker []byte, upper bool) (int, bool) {
	total := 0
	for i, c := range marker {
		if isUpper(c) != upper {
			return 0, false
		}
		v, ok := romanDigits[c|0x20]
		if !ok {
			return 0, false
		}
		if i+1 < len(marker) && romanDigits[marker[i+1]|0x20] > v {
			total -= v
		} else {
			total += v
		}
	}
	if total <= 0 || toRoman(total) != strings.ToLower(string(marker)) {
		return 0, false
	}
	return total, true
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func toRoman(n int) string {
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			sb.WriteString(r.symbol)
			n -= r.value
		}
	}
	return sb.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func lastItemOffset(list ast.Node) int {
	if item, ok := list.LastChild().(*ast.ListItem); ok {
		return item.Offset
	}
	return 0
}

func letterItemOffset(line []byte, m letterItem) int {
	if m.isEmpty(line) {
		return 1
	}
	offset, _ := util.IndentWidth(line[m.content:], m.content)
	if offset > 4 {
		// indented code block inside the item
		return 1
	}
	return offset
}

// letterListParser follows goldmark's own list parser, with letter markers.
type letterListParser struct{}

func (b *letterListParser) Trigger() []byte {
	return letterTriggers
}

func (b *letterListParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	// Lists hold items, not lists: this is a new item of an open list.
	if _, ok := parent.(*ast.List); ok {
		return nil, parser.NoChildren
	}
	line, _ := reader.PeekLine()
	m, ok := matchLetterItem(line)
	if !ok {
		return nil, parser.NoChildren
	}
	bullet, start, _ := listBullet(m.marker)

	if last := pc.LastOpenedBlock().Node; ast.IsParagraph(last) && last.Parent() == parent {
		// Same rule as numeric lists: only a first item interrupts a paragraph.
		if start != 1 || m.isEmpty(line) {
			return nil, parser.NoChildren
		}
	}

	node := ast.NewList(m.delim)
	node.Start = start
	node.SetAttributeString("type", []byte(bullet))
	pc.Set(letterListEmptyItem, nil)
	return node, parser.HasChildren
}

func (b *letterListParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	list := node.(*ast.List)
	if node.LastChild() == nil {
		return parser.Close
	}
	line, _ := reader.PeekLine()
	if util.IsBlank(line) {
		if node.LastChild().ChildCount() == 0 {
			pc.Set(letterListEmptyItem, true)
		}
		return parser.Continue | parser.HasChildren
	}

	offset := lastItemOffset(node)
	lastIsEmpty := node.LastChild().ChildCount() == 0
	indent, _ := util.IndentWidth(line, reader.LineOffset())

	if indent < offset || lastIsEmpty {
		if indent < 4 {
			if m, ok := matchLetterItem(line); ok && m.indent-offset < 4 {
				bullet, _ := letterBullet(list)
				if m.delim != list.Marker || !continuesList(bullet, m.marker) {
					return parser.Close
				}
				return parser.Continue | parser.HasChildren
			}
		}
		if !lastIsEmpty {
			return parser.Close
		}
	}
	if lastIsEmpty && indent < offset {
		return parser.Close
	}
	// An empty item followed by blank lines ends the list.
	if pc.Get(letterListEmptyItem) != nil {
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

func (b *letterListParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	list := node.(*ast.List)

	for c := node.FirstChild(); c != nil && list.IsTight; c = c.NextSibling() {
		if c.FirstChild() != nil && c.FirstChild() != c.LastChild() {
			for c1 := c.FirstChild().NextSibling(); c1 != nil; c1 = c1.NextSibling() {
				if c1.HasBlankPreviousLines() {
					list.IsTight = false
					break
				}
			}
		}
		if c != node.FirstChild() && c.HasBlankPreviousLines() {
			list.IsTight = false
		}
	}

	if !list.IsTight {
		return
	}
	for item := node.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; {
			paragraph, ok := c.(*ast.Paragraph)
			c = c.NextSibling()
			if ok {
				tb := ast.NewTextBlock()
				tb.SetLines(paragraph.Lines())
				item.ReplaceChild(item, paragraph, tb)
			}
		}
	}
}

func (b *letterListParser) CanInterruptParagraph() bool {
	return true
}

func (b *letterListParser) CanAcceptIndentedLine() bool {
	return false
}

type letterListItemParser struct{}

func (b *letterListItemParser) Trigger() []byte {
	return letterTriggers
}

func (b *letterListItemParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	list, ok := parent.(*ast.List)
	if !ok {
		return nil, parser.NoChildren
	}
	bullet, ok := letterBullet(list)
	if !ok {
		return nil, parser.NoChildren
	}
	offset := lastItemOffset(list)
	line, _ := reader.PeekLine()
	m, ok := matchLetterItem(line)
	if !ok || m.indent-offset > 3 || !continuesList(bullet, m.marker) {
		return nil, parser.NoChildren
	}

	pc.Set(letterListEmptyItem, nil)

	itemOffset := letterItemOffset(line, m)
	node := ast.NewListItem(m.end + itemOffset)
	if m.isEmpty(line) {
		return node, parser.NoChildren
	}

	pos, padding := util.IndentPosition(line[m.content:], m.content, itemOffset)
	reader.AdvanceAndSetPadding(m.end+pos, padding)
	return node, parser.HasChildren
}

func (b *letterListItemParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	if util.IsBlank(line) {
		reader.Advance(len(line) - 1)
		return parser.Continue | parser.HasChildren
	}

	offset := lastItemOffset(node.Parent())
	isEmpty := node.ChildCount() == 0
	indent, _ := util.IndentWidth(line, reader.LineOffset())
	if (isEmpty || indent < offset) && indent < 4 {
		if _, ok := matchLetterItem(line); ok {
			return parser.Close
		}
		if !isEmpty {
			return parser.Close
		}
	}
	pos, padding := util.IndentPosition(line, reader.LineOffset(), offset)
	reader.AdvanceAndSetPadding(pos, padding)
	return parser.Continue | parser.HasChildren
}

func (b *letterListItemParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *letterListItemParser) CanInterruptParagraph() bool {
	return true
}

func (b *letterListItemParser) CanAcceptIndentedLine() bool {
	return false
}
