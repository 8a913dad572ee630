package email

import (
	"fmt"
	"html/template"
)

const templateDefault = "default"

// Role-keyed welcome templates. Receipt mail reuses the default body with a
// payment summary in the fields.
var templateSources = map[string]string{
	templateDefault: `<html><body>
<p>Hi {{.first_name}},</p>
<p>Welcome to GradLink. Your account is ready.</p>
</body></html>`,
	"student": `<html><body>
<p>Hi {{.first_name}},</p>
<p>Welcome to GradLink! Your student account is ready. Your profile is
pending approval by your institution.</p>
</body></html>`,
	"recruiter": `<html><body>
<p>Hi {{.first_name}},</p>
<p>Welcome to GradLink. Your recruiter account is ready. Company
verification for {{.company_name}} is in progress.</p>
</body></html>`,
	"receipt": `<html><body>
<p>Hi {{.first_name}},</p>
<p>Your {{.plan_type}} subscription is active until {{.end_date}}.
Payment reference: {{.payment_id}}.</p>
</body></html>`,
}

func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(templateSources))
	for name, src := range templateSources {
		tmpl, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse mail template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}
