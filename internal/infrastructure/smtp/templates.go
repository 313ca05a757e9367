package smtp

import (
	"bytes"
	"fmt"
	"html/template"
)

// Kind selects which code email to render.
type Kind string

const (
	KindSignup         Kind = "signup"
	KindLogin          Kind = "login"
	KindPasswordReset  Kind = "password-reset"
	KindPasswordChange Kind = "password-change"
)

type codeTemplate struct {
	subject string
	heading string
	intro   string
}

var codeTemplates = map[Kind]codeTemplate{
	KindSignup: {
		subject: "Verify your Kusina account",
		heading: "Welcome to Kusina!",
		intro:   "Use the code below to verify your email address and finish creating your account.",
	},
	KindLogin: {
		subject: "Your Kusina login code",
		heading: "Sign in to Kusina",
		intro:   "Use the code below to finish signing in.",
	},
	KindPasswordReset: {
		subject: "Reset your Kusina password",
		heading: "Password reset request",
		intro:   "Use the code below to reset your password. If you did not ask for this, you can ignore this email.",
	},
	KindPasswordChange: {
		subject: "Confirm your Kusina password change",
		heading: "Password change request",
		intro:   "Use the code below to confirm the change to your password.",
	},
}

var codeLayout = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Heading}}</h2>
  <p>Hi {{.Name}},</p>
  <p>{{.Intro}}</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>This code expires in {{.Minutes}} minutes.</p>
  <p>Kusina</p>
</body>
</html>`))

// RenderCode returns the subject and HTML body for a verification code email.
func RenderCode(kind Kind, name, code string, minutes int) (string, string, error) {
	t, ok := codeTemplates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email kind %q", kind)
	}
	var buf bytes.Buffer
	err := codeLayout.Execute(&buf, map[string]interface{}{
		"Heading": t.heading,
		"Name":    name,
		"Intro":   t.intro,
		"Code":    code,
		"Minutes": minutes,
	})
	if err != nil {
		return "", "", fmt.Errorf("render %s email: %w", kind, err)
	}
	return t.subject, buf.String(), nil
}

// Support email kinds. They are not code emails, so RenderCode rejects them.
const (
	KindSupportConfirmation Kind = "support-confirmation"
	KindSupportReply        Kind = "support-reply"
)

var supportConfirmationLayout = template.Must(template.New("support-confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Kusina</h2>
  <p>Hello {{.Name}}!</p>
  <p>Thank you for reaching out to us. We've received your message and our team will get back to you within 24 hours.</p>
  <div style="background: #f8f9fa; border-left: 4px solid #cda45e; padding: 16px;">
    <p><strong>Subject:</strong> {{.Subject}}</p>
    <p><strong>Message:</strong> {{.Message}}</p>
  </div>
  <p>Kusina</p>
</body>
</html>`))

var supportReplyLayout = template.Must(template.New("support-reply").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Kusina Customer Support</h2>
  <p>Hello {{.Name}}!</p>
  <p>Thank you for contacting Kusina. Here's our response to your inquiry:</p>
  <div style="background: #f8f9fa; border-left: 4px solid #cda45e; padding: 16px;">
    <p style="white-space: pre-wrap;">{{.Reply}}</p>
  </div>
  <p>Best regards,<br>Kusina Support Team</p>
</body>
</html>`))

// RenderSupportConfirmation acknowledges a newly submitted support ticket.
func RenderSupportConfirmation(name, subject, message string) (string, string, error) {
	var buf bytes.Buffer
	err := supportConfirmationLayout.Execute(&buf, map[string]interface{}{
		"Name":    name,
		"Subject": subject,
		"Message": message,
	})
	if err != nil {
		return "", "", fmt.Errorf("render %s email: %w", KindSupportConfirmation, err)
	}
	return "We received your message - Kusina", buf.String(), nil
}

// RenderSupportReply carries an admin's answer. An empty name is addressed
// as "Valued Customer".
func RenderSupportReply(name, subject, reply string) (string, string, error) {
	if name == "" {
		name = "Valued Customer"
	}
	var buf bytes.Buffer
	err := supportReplyLayout.Execute(&buf, map[string]interface{}{
		"Name":  name,
		"Reply": reply,
	})
	if err != nil {
		return "", "", fmt.Errorf("render %s email: %w", KindSupportReply, err)
	}
	return "Re: " + subject, buf.String(), nil
}
