package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mavilleverte/mvv-api/internal/mailer"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	msgContactSent    = "Message envoyé avec succès"
	msgContactDevMode = "Message reçu (mode développement)"
)

// Mailer delivers one email and returns the provider message id
type Mailer interface {
	Send(ctx context.Context, msg *mailer.Message) (string, error)
}

// contactService is the concrete implementation of ContactService
type contactService struct {
	mailer Mailer
	from   string
	to     string
	log    zerolog.Logger
}

// newContactService creates a new ContactService. A nil mailer puts it in
// development mode where submissions are only logged.
func newContactService(m Mailer, from, to string, log zerolog.Logger) *contactService {
	return &contactService{
		mailer: m,
		from:   from,
		to:     to,
		log:    log.With().Str("service", "contact").Logger(),
	}
}

func (s *contactService) Submit(ctx context.Context, req *models.ContactRequest) (*models.ContactResult, error) {
	if err := validation.ValidateContact(req).OrNil(); err != nil {
		return nil, err
	}

	if s.mailer == nil {
		s.log.Info().
			Str("email", req.Email).
			Str("subject", req.Subject).
			Str("message", req.Message).
			Msg("Contact form submission")
		return &models.ContactResult{Success: true, Message: msgContactDevMode}, nil
	}

	id, err := s.mailer.Send(ctx, &mailer.Message{
		From:    s.from,
		To:      []string{s.to},
		Subject: "[Contact] " + req.Subject,
		HTML:    contactHTML(req),
		ReplyTo: req.Email,
	})
	if err != nil {
		s.log.Error().Err(err).Str("email", req.Email).Msg("Contact email failed")
		return nil, fmt.Errorf("send contact email: %w", err)
	}

	return &models.ContactResult{Success: true, Message: msgContactSent, ID: id}, nil
}

func contactHTML(req *models.ContactRequest) string {
	message := strings.ReplaceAll(html.EscapeString(req.Message), "\n", "<br>")
	return fmt.Sprintf(`<h2>Nouveau message de contact</h2>
<p><strong>De:</strong> %s</p>
<p><strong>Objet:</strong> %s</p>
<hr>
<p><strong>Message:</strong></p>
<p>%s</p>`, html.EscapeString(req.Email), html.EscapeString(req.Subject), message)
}
