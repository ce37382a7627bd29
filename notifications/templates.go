package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Kind identifies a message template.
type Kind string

const (
	KindPolicyConfirmation  Kind = "policy_confirmation"
	KindBusinessAck         Kind = "business_ack"
	KindAmountMismatchAlert Kind = "amount_mismatch_alert"
)

var templateFiles = map[Kind]string{
	KindPolicyConfirmation:  "templates/policy_confirmation.html",
	KindBusinessAck:         "templates/business_ack.html",
	KindAmountMismatchAlert: "templates/amount_mismatch_alert.html",
}

// Renderer executes the embedded HTML templates.
type Renderer struct {
	templates map[Kind]*template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpls := make(map[Kind]*template.Template, len(templateFiles))
	for kind, file := range templateFiles {
		tmpl, err := template.ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", kind, err)
		}
		tmpls[kind] = tmpl
	}
	return &Renderer{templates: tmpls}, nil
}

func (r *Renderer) Render(kind Kind, data interface{}) (string, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown template %s", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return buf.String(), nil
}
