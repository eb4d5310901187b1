package answer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/hubenschmidt/docchat/vector"
)

const (
	// DefaultDocumentLabel prefixes each document's index in the context block.
	DefaultDocumentLabel = "ドキュメント"

	// ContextSeparator joins document blocks.
	ContextSeparator = "\n\n---\n\n"
)

// DefaultSystemTemplate restricts the model to the supplied documents, asks for
// concise Japanese, and names the reply to give when nothing relevant was found.
const DefaultSystemTemplate = `あなたはドキュメントのアシスタントです。
以下のドキュメントから取得した情報を元に、ユーザーの質問に答えてください。

ドキュメントの内容：
{{.Context}}

回答する際のルール：
- ドキュメントの内容に基づいて正確に回答してください
- ドキュメントに記載がない場合は、「ドキュメントには記載がありません」と伝えてください
- 簡潔で分かりやすい日本語で回答してください
- 必要に応じてドキュメント名を引用してください`

// Prompt renders the system prompt for a set of ranked documents.
type Prompt struct {
	label string
	tmpl  *template.Template
}

// NewPrompt parses systemTemplate, which receives {{.Context}}. Empty
// arguments select the defaults.
func NewPrompt(systemTemplate, label string) (*Prompt, error) {
	if systemTemplate == "" {
		systemTemplate = DefaultSystemTemplate
	}
	if label == "" {
		label = DefaultDocumentLabel
	}

	tmpl, err := template.New("system").Option("missingkey=error").Parse(systemTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse system prompt: %w", err)
	}

	return &Prompt{label: label, tmpl: tmpl}, nil
}

// MustPrompt is NewPrompt for templates known to be valid.
func MustPrompt(systemTemplate, label string) *Prompt {
	p, err := NewPrompt(systemTemplate, label)
	if err != nil {
		panic(err)
	}
	return p
}

// Render builds the context block from results and fills the template.
func (p *Prompt) Render(results []vector.SearchResult) (string, error) {
	var sb strings.Builder
	data := struct{ Context string }{Context: BuildContext(p.label, results)}
	if err := p.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return sb.String(), nil
}

// BuildContext labels each document with its 1-based position and source file.
func BuildContext(label string, results []vector.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[%s%d: %s]\n%s", label, i+1, r.Document.Metadata.Filename, r.Document.Content)
	}
	return strings.Join(blocks, ContextSeparator)
}
