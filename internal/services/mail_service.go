// services/mail_service.go
package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type IMailService interface {
	SendOrderConfirmation(to, name, orderNumber, total, currency string) error
}

// SMTPConfig holds SMTP + branding config.
type SMTPConfig struct {
	Host       string // e.g. "smtp.gmail.com"
	Port       int    // e.g. 587 (STARTTLS) or 465 (SMTPS)
	Username   string
	Password   string
	From       string // envelope from, e.g. "orders@jollymart.example"
	FromName   string // display name
	UseSSL     bool   // true for SMTPS 465, false for STARTTLS 587
	RequireTLS bool   // if true, fail if STARTTLS not available

	AppName    string
	AppBaseURL string
}

type smtpMailService struct {
	cfg     SMTPConfig
	htmlTpl *template.Template
	textTpl *template.Template
}

func NewSMTPMailService(cfg SMTPConfig) (IMailService, error) {
	htmlTpl := template.Must(template.New("orderHTML").Parse(orderHTMLTemplate))
	textTpl := template.Must(template.New("orderText").Parse(orderTextTemplate))

	return &smtpMailService{
		cfg:     cfg,
		htmlTpl: htmlTpl,
		textTpl: textTpl,
	}, nil
}

type orderMailData struct {
	Name        string
	OrderNumber string
	Total       string
	Currency    string
	AppName     string
	OrderURL    string
	Year        int
}

func (s *smtpMailService) SendOrderConfirmation(to, name, orderNumber, total, currency string) error {
	data := orderMailData{
		Name:        name,
		OrderNumber: orderNumber,
		Total:       total,
		Currency:    currency,
		AppName:     s.cfg.AppName,
		OrderURL:    fmt.Sprintf("%s/orders/%s", strings.TrimRight(s.cfg.AppBaseURL, "/"), orderNumber),
		Year:        time.Now().Year(),
	}

	var hb, tb bytes.Buffer
	if err := s.htmlTpl.Execute(&hb, data); err != nil {
		return err
	}
	if err := s.textTpl.Execute(&tb, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("Order %s confirmed", orderNumber)
	return s.send(to, subject, hb.String(), tb.String())
}

const orderHTMLTemplate = `<!doctype html>
<html>
<head><meta charset="UTF-8"><title>Order {{.OrderNumber}}</title></head>
<body style="font-family:sans-serif;background:#f8fafc;color:#0f172a;padding:24px">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:12px;padding:32px">
    <h1 style="color:#b91c1c">{{.AppName}}</h1>
    <p>Hi {{.Name}},</p>
    <p>Thanks for your order! Payment for <strong>{{.OrderNumber}}</strong> was received.</p>
    <p>Total charged: <strong>{{.Total}} {{.Currency}}</strong></p>
    <p><a href="{{.OrderURL}}" style="display:inline-block;padding:12px 24px;background:#b91c1c;color:#ffffff;border-radius:8px;text-decoration:none">View your order</a></p>
    <p style="color:#64748b;font-size:13px">© {{.Year}} {{.AppName}}. All rights reserved.</p>
  </div>
</body>
</html>`

const orderTextTemplate = `Hi {{.Name}},

Thanks for your order! Payment for {{.OrderNumber}} was received.
Total charged: {{.Total}} {{.Currency}}

View your order: {{.OrderURL}}

— {{.AppName}} (c) {{.Year}}
`

// ------------------- SMTP Send -------------------

func (s *smtpMailService) send(to, subject, htmlBody, textBody string) error {
	fromHeader := s.formatFromHeader()
	date := time.Now().Format(time.RFC1123Z)
	boundary := fmt.Sprintf("mixed_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = msg.WriteString(fmt.Sprintf(format, a...)) }

	write("From: %s\r\n", fromHeader)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", subject)
	write("Date: %s\r\n", date)
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	write("\r\n")

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 7bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 7bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	var conn net.Conn
	var err error
	if s.cfg.UseSSL {
		// SMTPS (implicit TLS, usually port 465)
		tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
		conn, err = tls.Dial("tcp", addr, tlsCfg)
	} else {
		dialer := &net.Dialer{Timeout: 10 * time.Second}
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		// Upgrade to TLS if supported
		if ok, _ := c.Extension("STARTTLS"); ok {
			tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if err = c.Auth(auth); err != nil {
		return err
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg.Bytes()); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", name, s.cfg.From)
}
