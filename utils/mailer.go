package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"teampulse/config"
)

type EmailData struct {
	Subject  string
	To       []string
	Template string
	Data     interface{}
}

// Embedded email templates
var emailTemplates = map[string]string{
	"activate_account": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .code { font-size: 24px; font-weight: bold; color: #3498db; margin: 20px 0; text-align: center; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Activate your account</h2>
    </div>

    <div class="content">
        <p>Hello {{.Username}},</p>
        <p>Use this code to activate your account:</p>

        <div class="code">{{.ActivationCode}}</div>

        <p>Or follow this link: <a href="{{.ConfirmationURL}}">{{.ConfirmationURL}}</a></p>
        <p>The code expires in 15 minutes.</p>
    </div>

    <div class="footer">
        <p>If you didn't create an account, you can safely ignore this email.</p>
        <p>&copy; {{.Year}} TeamPulse. All rights reserved.</p>
    </div>
</body>
</html>`,

	"password_reset": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 10px 20px; background-color: #3498db; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Password Reset Request</h2>
    </div>

    <div class="content">
        <p>Hello {{.Username}},</p>
        <p>We received a request to reset your password. Click the button below to proceed:</p>

        <p style="text-align: center;">
            <a href="{{.ResetLink}}" class="button">Reset Password</a>
        </p>

        <p>If you didn't request a password reset, please ignore this email. This link will expire in 24 hours.</p>

        <p>Or copy and paste this link into your browser:<br>
        <small>{{.ResetLink}}</small></p>
    </div>

    <div class="footer">
        <p>For security reasons, don't share this link with anyone.</p>
        <p>&copy; {{.Year}} TeamPulse. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// Mailer sends templated mail through the configured SMTP server. Callers use
// SendAsync so delivery never blocks request handling.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(data EmailData) error {
	tmplContent, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("template '%s' not found", data.Template)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("error parsing template: %v", err)
	}

	var bodyBuf bytes.Buffer
	if err := tmpl.Execute(&bodyBuf, data.Data); err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail))
	msg.SetHeader("To", data.To...)
	msg.SetHeader("Subject", data.Subject)
	msg.SetBody("text/html", bodyBuf.String())

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}

// SendAsync dispatches the email in the background; failures are reported but
// never propagated to the caller.
func (m *Mailer) SendAsync(data EmailData) {
	go func() {
		if err := m.Send(data); err != nil {
			LogError("email_send_failed", err, map[string]interface{}{
				"template": data.Template,
				"to":       data.To,
			})
		}
	}()
}

func (m *Mailer) SendActivationEmail(email, username, code, confirmationURL string) {
	m.SendAsync(EmailData{
		Subject:  "Activate your account",
		To:       []string{email},
		Template: "activate_account",
		Data: struct {
			Subject         string
			Username        string
			ActivationCode  string
			ConfirmationURL string
			Year            int
		}{
			Subject:         "Activate your account",
			Username:        username,
			ActivationCode:  code,
			ConfirmationURL: confirmationURL,
			Year:            time.Now().Year(),
		},
	})
}

func (m *Mailer) SendPasswordResetEmail(email, username, resetLink string) {
	m.SendAsync(EmailData{
		Subject:  "Password Reset Request",
		To:       []string{email},
		Template: "password_reset",
		Data: struct {
			Subject   string
			Username  string
			ResetLink string
			Year      int
		}{
			Subject:   "Password Reset Request",
			Username:  username,
			ResetLink: resetLink,
			Year:      time.Now().Year(),
		},
	})
}
