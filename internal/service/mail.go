package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a single message. Implementations are created once at startup
// and shared between requests
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(host string, port int, from, password string) *SMTPMailer {
	return &SMTPMailer{
		from:   from,
		dialer: gomail.NewDialer(host, port, from, password),
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if m.To == s.from {
		return errors.New("invalid email address")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)

	if m.Text != "" {
		msg.SetBody("text/plain", m.Text)
	}

	if m.HTML != "" {
		if m.Text != "" {
			msg.AddAlternative("text/html", m.HTML)
		} else {
			msg.SetBody("text/html", m.HTML)
		}
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail, %w", err)
	}

	return nil
}

// LogMailer only logs messages. Used when no SMTP host is configured
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Message) error {
	zap.L().Info("Mail not sent, no SMTP host configured",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Text),
	)
	return nil
}

// Links are the frontend pages mails point to
type Links struct {
	VerifyEmail   string
	ResetPassword string
}

func withQuery(base, key, value string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + key + "=" + url.QueryEscape(value)
	}

	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()

	return u.String()
}

func verificationMail(to, fullname string, accountID uint, otp int, links Links) Message {
	link := withQuery(links.VerifyEmail, "userId", strconv.FormatUint(uint64(accountID), 10))

	return Message{
		To:      to,
		Subject: "Welcome to my website",
		Text:    fmt.Sprintf("Welcome %s to my website. Your verification code is %d", fullname, otp),
		HTML: fmt.Sprintf("<b>Please verify your email using the otp %d by clicking this link: <a href=\"%s\">Verify Email</a></b>",
			otp, html.EscapeString(link)),
	}
}

func loginOTPMail(to, fullname string, otp int) Message {
	return Message{
		To:      to,
		Subject: "OTP for login",
		Text:    fmt.Sprintf("Hello %s, your login otp is %d. It expires in 5 minutes", fullname, otp),
		HTML:    fmt.Sprintf("Your otp login is <b>%d</b>. It expires in 5 minutes", otp),
	}
}

func resetPasswordMail(to, fullname, token string, links Links) Message {
	link := withQuery(links.ResetPassword, "token", token)

	return Message{
		To:      to,
		Subject: "Reset Password",
		Text:    fmt.Sprintf("Hello, %s. Reset your password here: %s", fullname, link),
		HTML: fmt.Sprintf("<b>Click this link to reset the password: <a href=\"%s\">Reset Password</a></b><br>This link will expire in 15 minutes",
			html.EscapeString(link)),
	}
}
