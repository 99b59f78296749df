package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/nicholas-fedor/shoutrrr/pkg/services/smtp"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/nicholas-fedor/n8n-backup/internal/util"
	"github.com/nicholas-fedor/n8n-backup/pkg/notifications/templates"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

const (
	emailType = "email"
	// subjectDateLayout is the date shown in the email subject.
	subjectDateLayout = "2006-01-02"
	// maxPort is the highest valid TCP port.
	maxPort = 65535
)

// reportTemplate renders the run summary as an HTML table, one row per container.
const reportTemplate = `<html>
<head>
<style>
table { border-collapse: collapse; font-family: sans-serif; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
.success { color: #2e7d32; }
.failed { color: #c62828; }
.skipped { color: #ef6c00; }
</style>
</head>
<body>
<h2>n8n backup {{ .Status }}</h2>
<table>
<tr><th>Container</th>{{ range .Categories }}<th>{{ .Title }}</th>{{ end }}</tr>
{{- range $container := .Report.All }}
<tr><td>{{ $container.Name }}</td>{{ range $.Categories }}{{ with $container.Result . }}<td class="{{ StatusClass .Status }}">{{ .Status }} ({{ .Count }})</td>{{ end }}{{ end }}</tr>
{{- end }}
</table>
<p>Archive: {{ if .Report.ArchivePath }}{{ .Report.ArchivePath }}{{ else }}none{{ end }}</p>
<p>Log: {{ .Report.LogPath }}</p>
</body>
</html>
`

var emailBody = template.Must(template.New("email").Funcs(template.FuncMap(templates.Funcs)).Parse(reportTemplate))

// EmailConfig holds the SMTP submission settings.
type EmailConfig struct {
	Server        string
	Port          int
	User          string
	Password      string
	From          string
	To            string // Recipients separated by ';', ',' or whitespace.
	SubjectTag    string
	Plaintext     bool
}

// emailData is the template input for the email body.
type emailData struct {
	Status     types.OverallStatus
	Categories []types.Category
	Report     types.Report
}

// emailChannel sends the run summary by email.
type emailChannel struct {
	config    EmailConfig
	newRouter routerFactory
}

// ParseRecipients splits a recipient list on ';', ',' and whitespace, dropping empty tokens.
func ParseRecipients(value string) []string {
	return util.SplitAny(value, ";,")
}

// GetSubject formats the email subject from the tag, overall status and run date.
func GetSubject(tag string, status types.OverallStatus, date string) string {
	subject := strings.Builder{}
	if tag != "" {
		subject.WriteRune('[')
		subject.WriteString(tag)
		subject.WriteString("] ")
	}

	subject.WriteString("n8n backup ")
	subject.WriteString(string(status))
	subject.WriteString(" - ")
	subject.WriteString(date)

	return subject.String()
}

// RenderEmail renders the HTML body of the run summary.
func RenderEmail(report types.Report) (string, error) {
	var body bytes.Buffer

	data := emailData{
		Status:     report.Status(),
		Categories: types.Categories,
		Report:     report,
	}

	if err := emailBody.Execute(&body, data); err != nil {
		return "", fmt.Errorf("%w: %w", errRenderFailed, err)
	}

	return body.String(), nil
}

func (e *emailChannel) Name() string {
	return emailType
}

// GetURL generates the SMTP URL for the configured relay and recipients.
//
// All recipients share one envelope. Plain authentication is used when a user
// is set.
//
// Parameters:
//   - subject: Subject line of the message.
//
// Returns:
//   - string: Shoutrrr SMTP URL.
//   - error: ErrNoRecipients when no address remains after parsing, or a port range error.
func (e *emailChannel) GetURL(subject string) (string, error) {
	recipients := ParseRecipients(e.config.To)
	if len(recipients) == 0 {
		return "", ErrNoRecipients
	}

	if e.config.Port < 0 || e.config.Port > maxPort {
		return "", fmt.Errorf("port %d: %w", e.config.Port, errInvalidPortRange)
	}

	conf := &smtp.Config{
		FromAddress: e.config.From,
		FromName:    "n8n-backup",
		ToAddresses: recipients,
		Port:        uint16(e.config.Port),
		Host:        e.config.Server,
		Username:    e.config.User,
		Password:    e.config.Password,
		Subject:     subject,
		UseStartTLS: !e.config.Plaintext,
		UseHTML:     true,
		Encryption:  smtp.EncMethods.Auto,
		Auth:        smtp.AuthTypes.None,
		ClientHost:  "localhost",
	}

	if len(e.config.User) > 0 {
		conf.Auth = smtp.AuthTypes.Plain
	}

	if e.config.Plaintext {
		conf.Encryption = smtp.EncMethods.None
	}

	return conf.GetURL().String(), nil
}

// Send renders the report and submits it to the mail relay.
func (e *emailChannel) Send(report types.Report) error {
	subject := GetSubject(e.config.SubjectTag, report.Status(), report.StartedAt().Format(subjectDateLayout))

	url, err := e.GetURL(subject)
	if err != nil {
		return err
	}

	body, err := RenderEmail(report)
	if err != nil {
		return err
	}

	params := &shoutrrrTypes.Params{}
	params.SetTitle(subject)

	logrus.WithFields(logrus.Fields{
		"server":     e.config.Server,
		"port":       e.config.Port,
		"recipients": len(ParseRecipients(e.config.To)),
		"subject":    subject,
	}).Debug("Sending email notification")

	return send(e.newRouter, url, body, params)
}
