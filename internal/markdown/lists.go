package markdown

import (
	"fmt"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// listPriority must be lower than the default HTML renderer (1000) so our
// funcs are registered last and win.
const listPriority = 100

// defaultBullet is the implicit numbering type of an ordered list.
const defaultBullet = "1"

// start and type are written explicitly, see renderList.
var listAttributeFilter = html.GlobalAttributeFilter.Extend(
	[]byte("reversed"),
)

// SpanLists is a goldmark extension wrapping each list item's content in a
// <span> so items can be styled independently of their marker.
var SpanLists goldmark.Extender = &spanLists{}

type spanLists struct{}

func (e *spanLists) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewSpanListRenderer(), listPriority),
	))
}

// SpanListRenderer renders ast.List and ast.ListItem nodes.
// Everything except the item span matches the stock HTML renderer,
// attributes included.
type SpanListRenderer struct {
	html.Config
}

// NewSpanListRenderer returns a renderer configured with opts.
func NewSpanListRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &SpanListRenderer{Config: html.NewConfig()}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *SpanListRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindList, r.renderList)
	reg.Register(ast.KindListItem, r.renderListItem)
}

func (r *SpanListRenderer) renderList(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	tag := "ul"
	if n.IsOrdered() {
		tag = "ol"
	}

	if !entering {
		_, _ = w.WriteString("</")
		_, _ = w.WriteString(tag)
		_, _ = w.WriteString(">\n")
		return ast.WalkContinue, nil
	}

	_ = w.WriteByte('<')
	_, _ = w.WriteString(tag)
	if bullet, ok := attributeText(n, "type"); ok && bullet != defaultBullet {
		_, _ = w.WriteString(` type="`)
		_, _ = w.Write(util.EscapeHTML([]byte(bullet)))
		_ = w.WriteByte('"')
	}
	if n.IsOrdered() && n.Start != 1 {
		_, _ = w.WriteString(` start="`)
		_, _ = w.WriteString(strconv.Itoa(n.Start))
		_ = w.WriteByte('"')
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, listAttributeFilter)
	}
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (r *SpanListRenderer) renderListItem(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</span></li>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<li")
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.ListItemAttributeFilter)
	}
	_, _ = w.WriteString("><span>")

	// Loose items hold paragraphs, tight ones a bare text block.
	if fc := n.FirstChild(); fc != nil {
		if _, ok := fc.(*ast.TextBlock); !ok {
			_ = w.WriteByte('\n')
		}
	}
	return ast.WalkContinue, nil
}

func attributeText(n ast.Node, name string) (string, bool) {
	v, ok := n.AttributeString(name)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case []byte:
		return string(t), true
	case string:
		return t, true
	default:
		return fmt.Sprint(t), true
	}
}
