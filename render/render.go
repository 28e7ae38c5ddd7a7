// Package render turns documents into Markdown for terminal display. HTML
// content is sanitized and converted with html-to-markdown.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/document"
)

var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

// unsafeElements never reach the converter.
var unsafeElements = []string{
	"script", "style", "noscript", "iframe", "object", "embed", "form", "input", "button",
}

// Renderer renders documents as Markdown.
type Renderer struct {
	converter *md.Converter
	lang      string
}

// NewRenderer creates a renderer. lang selects the preferred entry of
// language maps; empty picks the first.
func NewRenderer(lang string) *Renderer {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Renderer{converter: converter, lang: lang}
}

// HTMLToMarkdown sanitizes an HTML fragment and converts it to Markdown.
func (r *Renderer) HTMLToMarkdown(content string) (string, error) {
	markdown, err := r.converter.ConvertString(Sanitize(content))
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return cleanMarkdown(markdown), nil
}

// Document renders doc as a Markdown section: a heading, a property list and
// the content body.
func (r *Renderer) Document(doc document.Typed) (string, error) {
	var sb strings.Builder
	if err := r.document(&sb, doc.Doc(), 1); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func (r *Renderer) document(sb *strings.Builder, d *document.Document, level int) error {
	fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", min(level, 6)), r.Title(d))

	var embedded []*document.Document
	wrote := false
	d.Range(func(name string, value any) bool {
		switch name {
		case document.PropDisplayName, activity.PropTitle, activity.PropContent,
			activity.PropSummary, activity.PropItems:
			return true
		}
		embedded = append(embedded, embeddedDocs(value)...)
		fmt.Fprintf(sb, "- **%s**: %s\n", name, r.Value(value))
		wrote = true
		return true
	})
	if wrote {
		sb.WriteString("\n")
	}

	if summary := d.LangText(activity.PropSummary); summary != nil {
		fmt.Fprintf(sb, "> %s\n\n", PlainText(summary.Best(r.lang)))
	}
	if content := d.LangText(activity.PropContent); content != nil {
		body, err := r.HTMLToMarkdown(content.Best(r.lang))
		if err != nil {
			return err
		}
		if body != "" {
			sb.WriteString(body)
			sb.WriteString("\n\n")
		}
	}

	if items, ok := d.Get(activity.PropItems); ok {
		list, isList := items.([]any)
		if !isList {
			list = []any{items}
		}
		for _, item := range list {
			embedded = append(embedded, embeddedDocs(item)...)
		}
	}
	for _, e := range embedded {
		if err := r.document(sb, e, level+1); err != nil {
			return err
		}
	}
	return nil
}

// embeddedDocs returns the documents carried inline by a property value.
func embeddedDocs(v any) []*document.Document {
	switch x := v.(type) {
	case *document.Link:
		switch x.Shape() {
		case document.ShapeObject:
			return []*document.Document{x.Object()}
		case document.ShapeArray:
			var out []*document.Document
			for _, item := range x.Items() {
				out = append(out, embeddedDocs(item)...)
			}
			return out
		}
	case document.Typed:
		return []*document.Document{x.Doc()}
	}
	return nil
}

// Title picks the heading for a document: displayName, title, id, then
// object type.
func (r *Renderer) Title(d *document.Document) string {
	if t := d.DisplayName(); t != nil {
		if s := PlainText(t.Best(r.lang)); s != "" {
			return s
		}
	}
	if t := d.LangText(activity.PropTitle); t != nil {
		if s := PlainText(t.Best(r.lang)); s != "" {
			return s
		}
	}
	if id := d.ID(); id != "" {
		return id
	}
	if t := d.ObjectType(); t != nil {
		return t.ID()
	}
	return "(untitled)"
}

// Value formats a property value on one line.
func (r *Renderer) Value(v any) string {
	switch x := v.(type) {
	case *document.Link:
		switch x.Shape() {
		case document.ShapeSimple:
			return x.URI()
		case document.ShapeObject:
			return r.Title(x.Object())
		}
		parts := make([]string, 0, x.Len())
		for _, item := range x.Items() {
			parts = append(parts, r.Value(item))
		}
		return strings.Join(parts, ", ")
	case *document.TypeValue:
		return x.ID()
	case *document.LangText:
		return PlainText(x.Best(r.lang))
	case document.Typed:
		return r.Title(x.Doc())
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, r.Value(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case time.Time:
		return x.Format(time.RFC3339)
	case time.Duration:
		return codec.FormatDuration(x)
	case document.MediaType:
		return x.String()
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case nil:
		return "null"
	default:
		return fmt.Sprint(x)
	}
}

// Sanitize removes script-like elements from an HTML fragment.
func Sanitize(content string) string {
	nodes, err := html.ParseFragment(strings.NewReader(content), bodyContext())
	if err != nil {
		content = scriptRe.ReplaceAllString(content, "")
		return styleRe.ReplaceAllString(content, "")
	}
	var sb strings.Builder
	for _, n := range nodes {
		removeElements(n, unsafeElements)
		if isUnsafe(n) {
			continue
		}
		_ = html.Render(&sb, n)
	}
	return sb.String()
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
func PlainText(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return strings.TrimSpace(spaceRe.ReplaceAllString(content, " "))
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), bodyContext())
	if err != nil {
		return strings.TrimSpace(content)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isUnsafe(n) {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(sb.String(), " "))
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func isUnsafe(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, tag := range unsafeElements {
		if n.Data == tag {
			return true
		}
	}
	return false
}

// removeElements removes all elements with the given tag names.
func removeElements(n *html.Node, tags []string) {
	tagSet := make(map[string]bool)
	for _, tag := range tags {
		tagSet[tag] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tagSet[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// cleanMarkdown trims trailing whitespace and collapses runs of blank lines.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
