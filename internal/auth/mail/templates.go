package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	SubjectPasswordReset     = "Reset Password"
	SubjectPasswordResetDone = "Password Reset Successful"
	SubjectVerifyEmail       = "Verify Email"
)

type linkData struct {
	URL       string
	ExpiresIn string
}

// PasswordReset renders the reset link mail.
func PasswordReset(to, url string, ttl time.Duration) (Message, error) {
	html, err := render("password_reset.html", linkData{URL: url, ExpiresIn: humanMinutes(ttl)})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: SubjectPasswordReset,
		HTML:    html,
		Text: fmt.Sprintf(
			"Reset your password by opening the link below:\n\n%s\n\nThe link will expire in %s!\nIf you haven't requested password reset, please ignore!\n",
			url, humanMinutes(ttl),
		),
	}, nil
}

// PasswordResetDone renders the confirmation sent after a successful reset.
func PasswordResetDone(to string) (Message, error) {
	html, err := render("password_reset_done.html", struct{ Email string }{Email: to})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: SubjectPasswordResetDone,
		HTML:    html,
		Text: fmt.Sprintf(
			"You've successfully updated your password for your account <%s>.\nIf you did not change your password, reset it from your account.\n",
			to,
		),
	}, nil
}

// VerifyEmail renders the email verification link mail.
func VerifyEmail(to, url string, ttl time.Duration) (Message, error) {
	html, err := render("verify_email.html", linkData{URL: url, ExpiresIn: humanMinutes(ttl)})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: SubjectVerifyEmail,
		HTML:    html,
		Text:    fmt.Sprintf("Verify your email by opening the link below:\n\n%s\n\nThe link will expire in %s!\n", url, humanMinutes(ttl)),
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func humanMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d mins", m)
}
