package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed plan.html
var planHTML string

var planTemplate = template.Must(template.New("Plan").Parse(planHTML))

// HTML writes v as an HTML fragment.
func HTML(w io.Writer, v PlanView) error {
	if err := planTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}
	return nil
}

// HTMLFragment renders v for embedding into a larger page.
func HTMLFragment(v PlanView) (template.HTML, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
