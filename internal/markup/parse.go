package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// voidElements never take children or an end tag, with or without "/>".
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// scriptElements keep their content as raw text. Every other element,
// <title> and <textarea> included, is tokenized as markup so directives
// inside it become elements.
var scriptElements = map[string]bool{"script": true, "style": true}

// Parse builds a tree from markup text. It never fails: fragments become a
// forest under the document root, end tags without a matching open element
// are kept as text, and elements left open at the end of input are closed
// implicitly without inventing an end tag.
//
// Tree construction follows the source structure rather than HTML5 insertion
// rules, so custom elements such as <section-main/> stay where they were written
// and no <html>/<head>/<body> wrappers are synthesized.
func Parse(text string) *Node {
	doc := NewDocument()
	stack := []*Node{doc}
	top := func() *Node { return stack[len(stack)-1] }

	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		// Raw must be copied before TagName/TagAttr lower-case the buffer.
		raw := string(z.Raw())

		switch tt {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader produces. A tag cut off
			// by the end of input is kept as text.
			if raw != "" {
				top().AppendChild(&Node{Type: TextNode, Data: raw})
			}
			for _, open := range stack[1:] {
				open.unclosed = true
			}
			return doc

		case html.TextToken:
			top().AppendChild(&Node{Type: TextNode, Data: raw})

		case html.CommentToken:
			top().AppendChild(&Node{Type: CommentNode, Data: raw})

		case html.DoctypeToken:
			top().AppendChild(&Node{Type: DoctypeNode, Data: raw})

		case html.StartTagToken, html.SelfClosingTagToken:
			el := readElement(z, raw)
			el.selfClosing = tt == html.SelfClosingTagToken
			el.void = voidElements[el.Tag]
			if el.selfClosing || !scriptElements[el.Tag] {
				z.NextIsNotRawText()
			}
			top().AppendChild(el)
			if !el.selfClosing && !el.void {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			idx := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Tag == tag {
					idx = i
					break
				}
			}
			if idx < 0 {
				top().AppendChild(&Node{Type: TextNode, Data: raw})
				continue
			}
			for _, open := range stack[idx+1:] {
				open.unclosed = true
			}
			stack[idx].closeRaw = raw
			stack = stack[:idx]
		}
	}
}

func readElement(z *html.Tokenizer, raw string) *Node {
	name, hasAttr := z.TagName()
	el := &Node{Type: ElementNode, Tag: string(name), openRaw: raw}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		k := string(key)
		if _, dup := el.Attr(k); dup {
			continue
		}
		el.Attrs = append(el.Attrs, Attr{Name: k, Value: string(val)})
	}
	return el
}
