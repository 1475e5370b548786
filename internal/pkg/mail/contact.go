package mail

import (
	"bytes"
	"html/template"

	"github.com/lipsense/portal/app/models"
)

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New enterprise enquiry</h2>
<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt;{{if .Company}} from {{.Company}}{{end}}</p>
{{if .APICalls}}<p>Estimated volume: {{.APICalls}} calls / month{{if .Resolution}}, {{.Resolution}}{{end}}{{if .Languages}}, {{.Languages}} languages{{end}}{{if .Support}}, {{.Support}} support{{end}}</p>{{end}}
<blockquote>{{.Message}}</blockquote>
<p>Reference: {{.PublicID}}</p>
`))

// ContactNotification renders the sales inbox email for a lead.
func ContactNotification(r *models.ContactRequest) (subject string, body string, err error) {
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, r); err != nil {
		return "", "", err
	}
	subject = "Enterprise enquiry from " + r.Name
	if r.Company != "" {
		subject += " (" + r.Company + ")"
	}
	return subject, buf.String(), nil
}
