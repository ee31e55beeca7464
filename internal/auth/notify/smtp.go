package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"
)

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	// AppURL is the dashboard base URL action links point at.
	AppURL string
}

// SMTPNotifier sends account-security emails over a pooled SMTP connection.
type SMTPNotifier struct {
	config SMTPConfig
	client *smtp.Client
	mu     sync.Mutex
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{config: cfg}
}

type templateSpec struct {
	subject string
	path    string
	body    *template.Template
}

var templates = map[Kind]templateSpec{
	KindVerification: {
		subject: "Verify Your Email Address",
		path:    "/auth/verify-email",
		body: template.Must(template.New("verification").Parse(`
<p>Hi {{.Name}},</p>
<p>Welcome to RiskDeck. Confirm your email address to activate your account:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>This link expires in 24 hours. If you did not create an account, you can ignore this email.</p>
`)),
	},
	KindPasswordReset: {
		subject: "Reset Your Password",
		path:    "/auth/reset-password",
		body: template.Must(template.New("password_reset").Parse(`
<p>Hi {{.Name}},</p>
<p>We received a request to reset your RiskDeck password:</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>This link expires in 1 hour. If you did not request a reset, no action is needed.</p>
`)),
	},
	KindMagicLink: {
		subject: "Your Sign-In Link",
		path:    "/auth/magic",
		body: template.Must(template.New("magic_link").Parse(`
<p>Hi {{.Name}},</p>
<p>Use this link to sign in to RiskDeck:</p>
<p><a href="{{.Link}}">Sign in</a></p>
<p>This link expires in 1 hour and can be used once.</p>
`)),
	},
}

// Send renders the template for kind and delivers it to address.
func (n *SMTPNotifier) Send(ctx context.Context, kind Kind, address, name, token string) error {
	if n.config.Host == "" || n.config.Port == 0 || n.config.FromAddress == "" || n.config.AppURL == "" {
		return fmt.Errorf("notify: incomplete smtp configuration")
	}

	spec, ok := templates[kind]
	if !ok {
		return fmt.Errorf("notify: unknown message kind %q", kind)
	}

	link := fmt.Sprintf("%s%s?token=%s", n.config.AppURL, spec.path, token)

	var body bytes.Buffer
	err := spec.body.Execute(&body, struct {
		Name string
		Link string
	}{Name: name, Link: link})
	if err != nil {
		return fmt.Errorf("notify: render %s template: %w", kind, err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.config.FromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", address)
	fmt.Fprintf(&msg, "Subject: %s\r\n", spec.subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return n.sendMail(address, msg.Bytes())
}

// dialSMTP establishes an SMTP connection, reusing a live one when possible.
func (n *SMTPNotifier) dialSMTP() (*smtp.Client, error) {
	if n.client != nil {
		if err := n.client.Noop(); err == nil {
			return n.client, nil
		}
		// Connection is dead, close it
		n.client.Close()
		n.client = nil
	}

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("notify: dial smtp server: %w", err)
	}

	if n.config.Username != "" {
		auth := smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("notify: smtp auth: %w", err)
		}
	}

	n.client = client
	return client, nil
}

func (n *SMTPNotifier) sendMail(to string, msg []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	client, err := n.dialSMTP()
	if err != nil {
		return err
	}

	if err := client.Mail(n.config.FromAddress); err != nil {
		return fmt.Errorf("notify: set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("notify: add recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("notify: open message writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("notify: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("notify: close message writer: %w", err)
	}

	return nil
}

// Close closes the pooled SMTP connection.
func (n *SMTPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.client != nil {
		err := n.client.Quit()
		n.client = nil
		return err
	}
	return nil
}
