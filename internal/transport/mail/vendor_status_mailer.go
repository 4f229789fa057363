package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type VendorStatusMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	send     sendFunc
}

func NewVendorStatusMailer(host, port, username, password, from string) *VendorStatusMailer {
	return &VendorStatusMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		send:     smtp.SendMail,
	}
}

func (m *VendorStatusMailer) SendVendorStatus(ctx context.Context, email, businessName string, status domain.VendorStatus) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}
	if strings.TrimSpace(email) == "" {
		return errors.New("mailer: empty recipient")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	subject, body := vendorStatusContent(businessName, status)
	msg := buildMessage(m.from, email, subject, body)

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return m.send(addr, auth, m.from, []string{email}, msg)
}

func vendorStatusContent(businessName string, status domain.VendorStatus) (string, string) {
	name := strings.TrimSpace(businessName)
	if name == "" {
		name = "your business"
	}
	switch status {
	case domain.VendorStatusApproved, domain.VendorStatusActive:
		return "Your Aqui vendor profile is approved",
			fmt.Sprintf("Good news: %s has been approved on Aqui. You can go live from the app whenever you are ready.", name)
	case domain.VendorStatusRejected:
		return "Your Aqui vendor profile was not approved",
			fmt.Sprintf("We could not approve %s on Aqui at this time. Reply to this email if you think this is a mistake.", name)
	default:
		return "Your Aqui vendor profile was updated",
			fmt.Sprintf("The status of %s on Aqui is now %s.", name, status)
	}
}

func buildMessage(from, to, subject, body string) []byte {
	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")
	return []byte(message.String())
}

var _ ports.VendorMailer = (*VendorStatusMailer)(nil)
