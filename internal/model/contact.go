package model

// ContactForm is the raw input of one contact-form POST, plus the request
// metadata the pipeline needs. Field values are untrimmed.
type ContactForm struct {
	Company      string // honeypot, expected empty
	Timestamp    string // ms since epoch, recorded when the form was rendered
	CaptchaToken string
	Name         string
	Email        string
	Phone        string
	ProjectType  string
	Message      string

	IP        string
	UserAgent string
}
