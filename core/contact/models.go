package contact

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chama/core"
)

// Message is a submission from the public contact form.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewMessage contains a contact form submission.
type NewMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

func (nm *NewMessage) Validate(v *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Subject = core.CleanString(nm.Subject)
	nm.Body = core.CleanString(nm.Body)
	return v.Struct(nm)
}
