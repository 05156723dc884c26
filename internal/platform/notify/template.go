package notify

import (
	"fmt"
	"strings"
	"sync"
)

// Template is a reusable pair of plain-text and HTML bodies with {{key}}
// placeholders.
type Template struct {
	ID       string
	TextBody string
	HTMLBody string
}

// TemplateEngine renders templates with a data map. Placeholders absent from
// the data map are left as-is.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

const TemplateCaseRouted = "case-routed"

func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.Register(Template{
		ID: TemplateCaseRouted,
		TextBody: `A new malaria case has been reported to {{destination_name}}.

Patient:        {{name}} ({{gender}}, age {{age}})
Contact:        {{patient_contact}}
Disease:        {{disease_type}}
Report type:    {{case_report_type}}
Classification: {{classification_case}}
Pregnant:       {{is_pregnant}}

Location: {{address}}
{{sub_district}}, {{district}}, {{city}}, {{province}}

Reported by {{reported_by}} ({{reporter_email}}) at {{reporter_facility}}.

Case detail: {{href}}
`,
		HTMLBody: `<html><body>
<p>A new malaria case has been reported to <strong>{{destination_name}}</strong>.</p>
<table>
<tr><td>Patient</td><td>{{name}} ({{gender}}, age {{age}})</td></tr>
<tr><td>Contact</td><td>{{patient_contact}}</td></tr>
<tr><td>Disease</td><td>{{disease_type}}</td></tr>
<tr><td>Report type</td><td>{{case_report_type}}</td></tr>
<tr><td>Classification</td><td>{{classification_case}}</td></tr>
<tr><td>Pregnant</td><td>{{is_pregnant}}</td></tr>
<tr><td>Location</td><td>{{address}}</td></tr>
<tr><td>Region</td><td>{{sub_district}}, {{district}}, {{city}}, {{province}}</td></tr>
</table>
<p>Reported by {{reported_by}} ({{reporter_email}}) at {{reporter_facility}}.</p>
<p><a href="{{href}}">Open case detail</a></p>
</body></html>
`,
	})
	return e
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render substitutes {{key}} placeholders in both bodies.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (textBody, htmlBody string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	textBody = t.TextBody
	htmlBody = t.HTMLBody
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		textBody = strings.ReplaceAll(textBody, placeholder, v)
		htmlBody = strings.ReplaceAll(htmlBody, placeholder, v)
	}
	return textBody, htmlBody, nil
}
