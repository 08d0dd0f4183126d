package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"vexa/config"
)

type EmailData struct {
	Subject  string
	To       []string
	Template string
	Data     interface{}
}

// Embedded email templates
var emailTemplates = map[string]string{
	"otp": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
</head>
<body style="font-family: Poppins, sans-serif; max-width: 600px; margin: 0 auto; background-color: #f9f9f9; padding: 20px;">
    <h1 style="font-size: 22px; font-weight: 500; color: #854CE6; text-align: center; margin-bottom: 30px;">{{.Subject}}</h1>
    <div style="background-color: #FFF; border: 1px solid #e5e5e5; border-radius: 5px;">
        <div style="background-color: #854CE6; border-top-left-radius: 5px; border-top-right-radius: 5px; padding: 20px 0;">
            <h2 style="font-size: 28px; font-weight: 500; color: #FFF; text-align: center; margin-bottom: 10px;">Verification Code</h2>
            <h1 style="font-size: 32px; font-weight: 500; color: #FFF; text-align: center; margin-bottom: 20px;">{{.OTP}}</h1>
        </div>
        <div style="padding: 30px;">
            <p style="font-size: 14px; color: #666;">Dear {{.Name}},</p>
            <p style="font-size: 14px; color: #666;">Please enter the following verification code:</p>
            <p style="font-size: 20px; font-weight: 500; text-align: center; color: #854CE6;">{{.OTP}}</p>
            <p style="font-size: 12px; color: #666;">This code expires in 15 minutes. If you did not request this action, please disregard this email.</p>
        </div>
    </div>
    <br>
    <p style="font-size: 16px; color: #666; text-align: center;">Best regards,<br>The VEXA Team</p>
</body>
</html>`,

	"invitation": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
</head>
<body style="font-family: Poppins, sans-serif; max-width: 600px; margin: 0 auto; background-color: #f9f9f9; padding: 20px;">
    <h1 style="font-size: 22px; font-weight: 500; color: #854CE6; text-align: center; margin-bottom: 30px;">{{.Subject}}</h1>
    <div style="background-color: #FFF; border: 1px solid #e5e5e5; border-radius: 5px;">
        <div style="padding: 30px;">
            <p style="font-size: 14px; color: #666;">Dear {{.Name}},</p>
            <p style="font-size: 14px; color: #666;">{{.IssuerName}} has invited you to join the project <strong>{{.ProjectTitle}}</strong>.</p>
            <p style="text-align: center; margin: 30px 0;">
                <a href="{{.Link}}" style="display: inline-block; padding: 12px 24px; background-color: #854CE6; color: white; text-decoration: none; border-radius: 4px;">Join Project</a>
            </p>
            <p style="font-size: 12px; color: #666;">This invitation expires in 24 hours and can only be used once. If you were not expecting it, you can safely ignore this email.</p>
        </div>
    </div>
    <br>
    <p style="font-size: 16px; color: #666; text-align: center;">Best regards,<br>The VEXA Team</p>
</body>
</html>`,
}

func SendEmail(data EmailData) error {
	// Get template from embedded templates
	tmplContent, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("template '%s' not found", data.Template)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}

// Mailer sends transactional email through the configured SMTP server.
type Mailer struct{}

func NewMailer() *Mailer {
	return &Mailer{}
}

func (m *Mailer) SendOTPEmail(to, name, otp, subject string) error {
	return SendEmail(EmailData{
		Subject:  subject,
		To:       []string{to},
		Template: "otp",
		Data: struct {
			Subject string
			Name    string
			OTP     string
			Year    int
		}{subject, name, otp, time.Now().Year()},
	})
}

func (m *Mailer) SendInvitationEmail(to, name, issuerName, projectTitle, link string) error {
	subject := fmt.Sprintf("Invitation to join project %s", projectTitle)
	return SendEmail(EmailData{
		Subject:  subject,
		To:       []string{to},
		Template: "invitation",
		Data: struct {
			Subject      string
			Name         string
			IssuerName   string
			ProjectTitle string
			Link         string
		}{subject, name, issuerName, projectTitle, link},
	})
}
