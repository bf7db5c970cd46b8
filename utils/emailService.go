package utils

import (
	"fmt"
	"log"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an HTML email through Sendgrid. When no API key is
// configured the message is logged instead, which keeps local development
// working without credentials.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig.SendgridApiKey == "" {
		log.Printf("--- Email (not sent, no API key) ---\nTo: %s\nSubject: %s\n", toEmail, subject)
		return nil
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}
	if resp.StatusCode >= 300 {
		log.Printf("Sendgrid rejected email to %s: %d %s", toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// SendEnrollmentEmail notifies a student about a successful enrollment
func SendEnrollmentEmail(toEmail, toName, courseTitle string) {
	subject := fmt.Sprintf("You are enrolled in %s", courseTitle)
	body := getEmailTemplate("Enrollment Confirmed", fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your enrollment in <strong>%s</strong> is confirmed. Head over to your
		dashboard to start learning.</p>
		<div class="info-box">Lessons unlock as you complete the ones before them,
		so start from the top!</div>
	`, toName, courseTitle))

	if err := SendEmail(toEmail, toName, subject, body); err != nil {
		log.Printf("Failed to send enrollment email to %s: %v", toEmail, err)
	}
}

// SendCertificateEmail notifies a student that their certificate was issued
func SendCertificateEmail(toEmail, toName, courseTitle, certificateNumber string) {
	subject := fmt.Sprintf("Your certificate for %s is ready", courseTitle)
	body := getEmailTemplate("Certificate Issued", fmt.Sprintf(`
		<h2>Congratulations %s!</h2>
		<p>You completed <strong>%s</strong> and your certificate has been issued.</p>
		<div class="info-box">Certificate number: <strong>%s</strong></div>
		<p>You can download it from your certificates page.</p>
	`, toName, courseTitle, certificateNumber))

	if err := SendEmail(toEmail, toName, subject, body); err != nil {
		log.Printf("Failed to send certificate email to %s: %v", toEmail, err)
	}
}

// getEmailTemplate wraps body content in the standard mail layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A2B4C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A2B4C; line-height: 1.6; }
			.content h2 { color: #1A2B4C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4C86E8; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>%s</h1>
			</div>
			<div class="content">
				%s
			</div>
			<div class="footer">
				This is an automated message, please do not reply.
			</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}
