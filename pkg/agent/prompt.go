package agent

import (
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"
)

// DefaultSystemPrompt is rendered with PromptData before every request.
const DefaultSystemPrompt = `You are a helpful weather assistant. When users ask about weather in any city,
use the {{ .Tools | join ", " }} tool to fetch real-time data. Be friendly and conversational.
If the query is not about weather, politely inform that you specialize in weather information.
{{- if not .Now.IsZero }}
Today is {{ .Now | date "Monday, January 2 2006" }}.
{{- end }}`

type PromptData struct {
	Tools []string
	Now   time.Time
}

// RenderPrompt executes tmpl as a text/template with the sprig function map.
func RenderPrompt(tmpl string, data PromptData) (string, error) {
	t, err := template.New("system").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", errors.Wrap(err, "could not parse system prompt")
	}

	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "could not render system prompt")
	}
	return strings.TrimSpace(sb.String()), nil
}
