package notification

import (
	"strings"
	"text/template"

	"flowdesk/models"
)

var emailTmpl = template.Must(template.New("notification").Parse(`Hi {{.Name}},

{{.Message}}
{{if .Link}}
View it here: {{.Link}}
{{end}}
--
The flowdesk team
You are receiving this because email notifications are enabled in your
flowdesk settings.
`))

// renderNotificationEmail produces the plain-text email body for a
// dispatched notification.
func renderNotificationEmail(name string, in models.NotificationJobPayload) (string, error) {
	if name == "" {
		name = "there"
	}
	var b strings.Builder
	err := emailTmpl.Execute(&b, struct {
		Name    string
		Message string
		Link    string
	}{
		Name:    name,
		Message: in.Message,
		Link:    in.Link,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
