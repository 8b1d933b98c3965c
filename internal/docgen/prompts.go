package docgen

import (
	"embed"
	"strings"
	"text/template"
)

// The prompt template is embedded so packaged executables can load it
// without access to the source tree.
//
//go:embed prompts/*.tmpl
var embeddedPrompts embed.FS

var docPrompt = template.Must(template.ParseFS(embeddedPrompts, "prompts/doc.tmpl"))

type docPromptData struct {
	Filename string
	Code     string
}

func renderDocPrompt(filename, code string) (string, error) {
	var sb strings.Builder
	if err := docPrompt.Execute(&sb, docPromptData{Filename: filename, Code: code}); err != nil {
		return "", err
	}
	return sb.String(), nil
}
