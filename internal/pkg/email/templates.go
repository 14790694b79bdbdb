package email

import (
	"bytes"
	"html/template"
)

// BaseTemplate is the layout shared by all booking emails
const BaseTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { margin: 0; font-family: Arial, sans-serif; background-color: #f4f6f8; color: #1f2933; }
        .container { max-width: 600px; margin: 0 auto; padding: 32px 16px; }
        .card { background: #ffffff; border-radius: 10px; padding: 28px; }
        h2 { margin: 0 0 16px; font-size: 22px; }
        p { font-size: 15px; line-height: 1.6; margin: 0 0 14px; }
        .footer { text-align: center; font-size: 12px; color: #7b8794; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">{{.Content}}</div>
        <div class="footer">BookYourStay</div>
    </div>
</body>
</html>`

// NoticeTemplate renders a subject line and a plain paragraph body
const NoticeTemplate = `<h2>{{.Subject}}</h2>
<p>Hola {{.Name}},</p>
<p>{{.Body}}</p>`

var (
	baseTmpl   = template.Must(template.New("base").Parse(BaseTemplate))
	noticeTmpl = template.Must(template.New("notice").Parse(NoticeTemplate))
)

// RenderNotice renders a notice into the base layout
func RenderNotice(name, subject, body string) (string, error) {
	var content bytes.Buffer
	if err := noticeTmpl.Execute(&content, map[string]string{
		"Name":    name,
		"Subject": subject,
		"Body":    body,
	}); err != nil {
		return "", err
	}

	var html bytes.Buffer
	if err := baseTmpl.Execute(&html, map[string]interface{}{
		"Content": template.HTML(content.String()),
	}); err != nil {
		return "", err
	}
	return html.String(), nil
}
