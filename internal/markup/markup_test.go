package markup

import (
	"strings"
	"testing"
)

func TestParseRender_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain text only",
		"<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n    <title>T &amp; U</title>\n</head>\n<body class='x'>\n</body>\n</html>\n",
		"<p>one<p>two</div>",
		"<ul><li>a<li>b</ul>",
		"<img src=a.png><br/><hr>",
		"<DIV Class=\"Up\">mixed</DIV>",
		"<style>.a > .b { content: '</p>'; }</style>",
		"<!-- comment <b>not bold</b> -->tail",
		"<custom-thing foo=\"1\"   bar='2'/>after",
		"text with a stray </span> end tag",
		"<p>unterminated <div",
		"<section-content>kept</section-content>",
	}
	for _, in := range inputs {
		got := Render(Parse(in))
		if got != in {
			t.Errorf("round trip mismatch\ninput: %q\ngot:   %q", in, got)
		}
	}
}

func TestParse_TreeShape(t *testing.T) {
	doc := Parse(`<extend-to src="layout.html" section="main"/><section-main><p>Hi</p></section-main>`)

	if len(doc.Children) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(doc.Children))
	}
	ext := doc.Children[0]
	if ext.Tag != "extend-to" || !ext.SelfClosing() {
		t.Errorf("expected self-closing extend-to, got %q self-closing=%v", ext.Tag, ext.SelfClosing())
	}
	if src, _ := ext.Attr("src"); src != "layout.html" {
		t.Errorf("expected src %q, got %q", "layout.html", src)
	}
	sec := doc.Children[1]
	if sec.Tag != "section-main" {
		t.Fatalf("expected section-main, got %q", sec.Tag)
	}
	if p := sec.FirstChildByTag("p"); p == nil || Render(p) != "<p>Hi</p>" {
		t.Errorf("expected <p>Hi</p> inside section, got %v", p)
	}
}

func TestParse_VoidElementsDoNotSwallowSiblings(t *testing.T) {
	doc := Parse(`<div><br><span>x</span></div>`)
	div := doc.FirstChildByTag("div")
	if div == nil {
		t.Fatal("expected div")
	}
	if len(div.Children) != 2 {
		t.Fatalf("expected br and span as siblings, got %d children", len(div.Children))
	}
}

func TestParse_TagNamesAreCaseInsensitive(t *testing.T) {
	doc := Parse(`<Include-File SRC="a.html"></INCLUDE-FILE>`)
	el := doc.FindFirst("include-file")
	if el == nil {
		t.Fatal("expected include-file element")
	}
	if v, ok := el.Attr("src"); !ok || v != "a.html" {
		t.Errorf("expected src attribute a.html, got %q (present=%v)", v, ok)
	}
}

func TestParse_TextElementsHoldMarkup(t *testing.T) {
	tests := []struct {
		input string
		tag   string
	}{
		{`<head><title><section-title/></title></head>`, "section-title"},
		{`<form><textarea><section-body></section-body></textarea></form>`, "section-body"},
		{`<title><include-file src="t.html"></include-file></title>`, "include-file"},
		{`<textarea/><include-file src="t.html"/>`, "include-file"},
		{`<script src="a.js"/><section-x/>`, "section-x"},
	}
	for _, tt := range tests {
		doc := Parse(tt.input)
		if doc.FindFirst(tt.tag) == nil {
			t.Errorf("expected %s element in %q", tt.tag, tt.input)
		}
		if got := Render(doc); got != tt.input {
			t.Errorf("round trip mismatch\ninput: %q\ngot:   %q", tt.input, got)
		}
	}
}

func TestParse_ScriptContentStaysText(t *testing.T) {
	in := `<script>if (a<b) { x("<section-a/>") }</script><section-b/>`
	doc := Parse(in)
	if doc.FindFirst("section-a") != nil {
		t.Error("expected script content to stay text")
	}
	if doc.FindFirst("section-b") == nil {
		t.Error("expected section-b after the script")
	}
	if got := Render(doc); got != in {
		t.Errorf("round trip mismatch, got %q", got)
	}
}

func TestRender_PairTags(t *testing.T) {
	doc := Parse(`<include-file src="x.html"/><br/><p/>`)
	got := Render(doc, PairTags(func(tag string) bool { return tag == "include-file" }))
	want := `<include-file src="x.html"></include-file><br/><p/>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_SelfClosingGainsChildren(t *testing.T) {
	doc := Parse(`<html><slot-a/></html>`)
	slot := doc.FindFirst("slot-a")
	slot.AppendChild(NewText("Hi"))
	if got := Render(doc); got != "<html><slot-a>Hi</slot-a></html>" {
		t.Errorf("unexpected render %q", got)
	}
}

func TestRender_SetAttrRegeneratesStartTag(t *testing.T) {
	doc := Parse(`<a   href='x'>link</a>`)
	a := doc.FindFirst("a")
	a.SetAttr("title", `say "hi"`)
	want := `<a href="x" title="say &#34;hi&#34;">link</a>`
	if got := Render(doc); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNode_AppendChildMovesBetweenTrees(t *testing.T) {
	src := Parse(`<div><b>moved</b><i>stays</i></div>`)
	dst := Parse(`<main></main>`)
	b := src.FindFirst("b")
	main := dst.FindFirst("main")

	main.AppendChild(b)

	if got := Render(src); got != "<div><i>stays</i></div>" {
		t.Errorf("source after move: got %q", got)
	}
	if got := Render(dst); got != "<main><b>moved</b></main>" {
		t.Errorf("destination after move: got %q", got)
	}
	if b.Parent != main {
		t.Error("expected moved node to point at its new parent")
	}
}

func TestNode_MoveChildrenToAppendsAfterExisting(t *testing.T) {
	doc := Parse(`<a>1<b>2</b></a><c>0</c>`)
	a := doc.FindFirst("a")
	c := doc.FindFirst("c")

	a.MoveChildrenTo(c)

	if len(a.Children) != 0 {
		t.Errorf("expected source to be empty, got %d children", len(a.Children))
	}
	if got := Render(c); got != "<c>01<b>2</b></c>" {
		t.Errorf("expected children appended after existing content, got %q", got)
	}
}

func TestNode_InsertReplaceRemove(t *testing.T) {
	root := NewElement("ul")
	first := NewElement("li")
	last := NewElement("li")
	root.AppendChild(first)
	root.AppendChild(last)

	mid := NewElement("li", Attr{Name: "id", Value: "mid"})
	root.InsertBefore(mid, last)
	if root.Children[1] != mid {
		t.Fatalf("expected inserted node at index 1")
	}

	repl := NewElement("hr")
	root.ReplaceChild(repl, first)
	if root.Children[0] != repl || first.Parent != nil {
		t.Errorf("expected replacement at index 0 and old node detached")
	}

	root.RemoveChild(mid)
	if len(root.Children) != 2 || mid.Parent != nil {
		t.Errorf("expected 2 children after removal, got %d", len(root.Children))
	}

	want := `<ul><hr><li></li></ul>`
	if got := Render(root); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNode_QueriesInDocumentOrder(t *testing.T) {
	doc := Parse(`<x id="1"><x id="2"></x></x><y><x id="3"/></y>`)

	all := doc.FindAll("x")
	var ids []string
	for _, n := range all {
		id, _ := n.Attr("id")
		ids = append(ids, id)
	}
	if strings.Join(ids, ",") != "1,2,3" {
		t.Errorf("expected document order 1,2,3, got %v", ids)
	}
	if first := doc.FindFirst("x"); first != all[0] {
		t.Error("expected FindFirst to match first FindAll result")
	}
	if n := len(doc.ChildrenByTag("x")); n != 1 {
		t.Errorf("expected 1 direct x child, got %d", n)
	}
	if doc.FindFirst("missing") != nil {
		t.Error("expected nil for missing tag")
	}
}

func TestNode_HasElements(t *testing.T) {
	if Parse("just words").HasElements() {
		t.Error("expected no elements in plain text")
	}
	if Parse("<!-- only a comment -->").HasElements() {
		t.Error("expected no elements in a comment-only document")
	}
	if !Parse("text <b>bold</b>").HasElements() {
		t.Error("expected elements")
	}
}

func TestNode_IsDescendantOf(t *testing.T) {
	doc := Parse(`<a><b><c></c></b></a>`)
	c := doc.FindFirst("c")
	if !c.IsDescendantOf(doc) {
		t.Error("expected c inside doc")
	}
	c.Detach()
	if c.IsDescendantOf(doc) {
		t.Error("expected detached node to be outside doc")
	}
}
