package mailer

import (
	"log"
	"os"

	"github.com/matcornic/hermes/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailResponse struct {
	Status   int
	RespBody string
}

var h = hermes.Hermes{
	Product: hermes.Product{
		Name: "Postline",
		Link: os.Getenv("APP_URL"),
	},
}

// SendResetPassword emails the password-reset link carrying the one-time token.
func SendResetPassword(toEmail, token string) (*EmailResponse, error) {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8888"
	}

	resetEmail := hermes.Email{
		Body: hermes.Body{
			Intros: []string{
				"You have received this email because a password reset request for your account was received.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to reset your password:",
					Button: hermes.Button{
						Color: "#DC4D2F",
						Text:  "Reset your password",
						Link:  appURL + "/password/reset?token=" + token,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required on your part.",
			},
		},
	}

	emailBody, err := h.GenerateHTML(resetEmail)
	if err != nil {
		return nil, err
	}

	from := mail.NewEmail("Postline", os.Getenv("MAIL_FROM"))
	subject := "Reset your Postline password"
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, emailBody, emailBody)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		log.Printf("sendgrid error: %v", err)
		return nil, err
	}

	return &EmailResponse{Status: response.StatusCode, RespBody: response.Body}, nil
}
