package adf_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitools/internal/adf"
)

func TestFromText_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"single line",
		"line one\nline two",
		"first paragraph\n\nsecond paragraph",
		"a\n\n\n\nb",
		"trailing\n\n",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, adf.ToText(adf.FromText(in)))
		})
	}
}

func TestFromText_Shape(t *testing.T) {
	doc := adf.FromText("Hello\n\n")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc.String()), &got))

	want := map[string]any{
		"type":    "doc",
		"version": float64(1),
		"content": []any{
			map[string]any{
				"type":    "paragraph",
				"content": []any{map[string]any{"type": "text", "text": "Hello"}},
			},
			map[string]any{
				"type":    "paragraph",
				"content": []any{},
			},
		},
	}
	assert.Equal(t, want, got)
}

func TestParse(t *testing.T) {
	raw := `{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"Hi ","marks":[{"type":"strong"}]},{"type":"mention","attrs":{"id":"1","text":"@Ann"}}]}]}`

	doc, err := adf.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Hi @Ann", adf.ToText(doc))
	assert.Equal(t, "strong", doc.Content[0].Content[0].Marks[0].Type)

	_, err = adf.Parse("not json")
	assert.Error(t, err)
}

func TestFlatten_NestedContent(t *testing.T) {
	doc := adf.Doc(
		adf.Node{Type: "heading", Attrs: map[string]any{"level": float64(2)}, Content: []adf.Node{adf.Text("Plan")}},
		adf.Node{Type: "bulletList", Content: []adf.Node{
			{Type: "listItem", Content: []adf.Node{adf.Paragraph("one")}},
			{Type: "listItem", Content: []adf.Node{adf.Paragraph("two")}},
		}},
		adf.Node{Type: "paragraph", Content: []adf.Node{adf.Text("a"), {Type: adf.TypeHardBreak}, adf.Text("b")}},
	)

	assert.Equal(t, "Plan\none\ntwo\na\nb", adf.Flatten(doc, "\n"))
	assert.Equal(t, "Plan one\ntwo a\nb", adf.Flatten(doc, " "))
}

func TestPlainText(t *testing.T) {
	var decoded any
	require.NoError(t, json.Unmarshal([]byte(adf.FromText("x\n\ny").String()), &decoded))

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "plain string", in: "just text", want: "just text"},
		{name: "decoded document", in: decoded, want: "x\ny"},
		{name: "encoded document", in: adf.FromText("p\n\nq").String(), want: "p\nq"},
		{name: "node", in: adf.FromText("n"), want: "n"},
		{name: "unrelated map", in: map[string]any{"foo": "bar"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adf.PlainText(tt.in, "\n"))
		})
	}
}
