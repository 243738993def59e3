package service

import (
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"bicarb-server/internal/config"
	"bicarb-server/internal/model"

	"github.com/google/uuid"
)

// SendActiveEmail 发送账号激活邮件，SMTP 未配置时静默跳过。
func SendActiveEmail(user *model.User, verifyURL string) error {
	cfg := config.Get()
	siteName := cfg.Forum.SiteName

	subject := fmt.Sprintf("欢迎注册 %s - 请激活您的账号", siteName)
	body := fmt.Sprintf(`
		<h1>欢迎加入 %s</h1>
		<p>%s，请点击链接激活账号: <a href="%s">%s</a></p>
	`, siteName, user.Nickname, verifyURL, verifyURL)

	return sendMail(user.Email, subject, body)
}

// SendResetPasswordEmail 发送密码重置邮件。
func SendResetPasswordEmail(user *model.User, resetURL string) error {
	cfg := config.Get()
	siteName := cfg.Forum.SiteName

	subject := fmt.Sprintf("%s - 重置密码", siteName)
	body := fmt.Sprintf(`
		<h1>重置密码</h1>
		<p>%s，请点击链接重置密码: <a href="%s">%s</a></p>
		<p>如果这不是您本人的操作，请忽略本邮件。</p>
	`, user.Nickname, resetURL, resetURL)

	return sendMail(user.Email, subject, body)
}

func sendMail(toEmail, subject, body string) error {
	cfg := config.Get()
	if cfg.SMTP.Host == "" {
		return nil
	}

	auth := smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)

	fromHeader, fromAddr, err := parseAddressForHeader(cfg.SMTP.From)
	if err != nil {
		return err
	}
	toHeader, toAddr, err := parseAddressForHeader(toEmail)
	if err != nil {
		return err
	}

	msg := buildEmailMessage(fromHeader, toHeader, subject, body)
	addr := fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port)

	// SSL (465) 需要先建 TLS 连接；默认走 STARTTLS (587/25)
	if cfg.SMTP.SSL {
		return sendMailWithSSL(addr, auth, fromAddr, []string{toAddr}, msg)
	}
	return smtp.SendMail(addr, auth, fromAddr, []string{toAddr}, msg)
}

// parseAddressForHeader 解析地址，返回 (编码后的头部形式, 裸地址)。
func parseAddressForHeader(address string) (string, string, error) {
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return "", "", fmt.Errorf("invalid mail address %q: %w", address, err)
	}
	if parsed.Name == "" {
		return parsed.Address, parsed.Address, nil
	}
	encoded := fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", parsed.Name), parsed.Address)
	return encoded, parsed.Address, nil
}

func buildEmailMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("UTF-8", subject) + "\r\n")
	sb.WriteString("Message-ID: <" + uuid.NewString() + "@" + messageIDDomain(from) + ">\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

func messageIDDomain(fromHeader string) string {
	if at := strings.LastIndex(fromHeader, "@"); at >= 0 {
		return strings.TrimSuffix(fromHeader[at+1:], ">")
	}
	return "localhost"
}

func sendMailWithSSL(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("⚠️ 关闭 SMTP 连接失败: %v", err)
		}
	}()

	if err = client.Auth(auth); err != nil {
		return err
	}
	if err = client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
