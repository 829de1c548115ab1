package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mavilleverte/mvv-api/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Messages shown to the admin UI and the public contact form.
const (
	MsgTitleRequired      = "Le titre est requis"
	MsgInvalidStatus      = "Statut invalide, valeurs possibles : draft, published"
	MsgInvalidEmail       = "Adresse e-mail invalide"
	MsgNegativePrice      = "Le prix doit être positif"
	MsgImageURLRequired   = "Chaque image doit avoir une URL"
	MsgContactFields      = "Tous les champs sont requis"
	MsgNoFile             = "Aucun fichier fourni"
	MsgFileTypeNotAllowed = "Type de fichier non autorisé. Utilisez JPG, PNG, GIF ou WebP."
)

// AllowedImageTypes lists the MIME types accepted by the upload endpoint
var AllowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a non-empty list of validation failures. It implements error so
// services can return it directly.
type Errors []ValidationError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Message
}

// OrNil returns nil for an empty list so callers can write
// `return validation.ValidateX(...).OrNil()`.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidateContent validates an article or recommendation payload. On create
// the title is mandatory; on update it may be omitted but not blanked.
func ValidateContent(in *models.ContentInput, create bool) Errors {
	var errors Errors

	errors = append(errors, validateTitle(in.Title, create)...)
	errors = append(errors, validateStatus(in.Status)...)

	if in.AuthorEmail != nil && *in.AuthorEmail != "" && !emailRegex.MatchString(*in.AuthorEmail) {
		errors = append(errors, ValidationError{Field: "authorEmail", Message: MsgInvalidEmail, Value: *in.AuthorEmail})
	}

	return errors
}

// ValidateProduct validates a product payload
func ValidateProduct(in *models.ProductInput, create bool) Errors {
	var errors Errors

	errors = append(errors, validateTitle(in.Title, create)...)
	errors = append(errors, validateStatus(in.Status)...)

	if in.Price != nil && *in.Price < 0 {
		errors = append(errors, ValidationError{Field: "price", Message: MsgNegativePrice, Value: *in.Price})
	}

	if in.Images != nil {
		for i, img := range *in.Images {
			if strings.TrimSpace(img.URL) == "" {
				errors = append(errors, ValidationError{Field: fmt.Sprintf("images[%d].url", i), Message: MsgImageURLRequired})
			}
		}
	}

	return errors
}

// ValidateContact requires all three fields of a contact submission
func ValidateContact(req *models.ContactRequest) Errors {
	var errors Errors
	fields := []struct{ name, value string }{
		{"email", req.Email},
		{"subject", req.Subject},
		{"message", req.Message},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errors = append(errors, ValidationError{Field: f.name, Message: MsgContactFields})
		}
	}
	return errors
}

// ValidateImageType checks a MIME type against AllowedImageTypes
func ValidateImageType(contentType string) Errors {
	if _, ok := AllowedImageTypes[contentType]; !ok {
		return Errors{{Field: "file", Message: MsgFileTypeNotAllowed, Value: contentType}}
	}
	return nil
}

// ValidateImageSize rejects payloads larger than maxSize bytes
func ValidateImageSize(size, maxSize int64) Errors {
	if size > maxSize {
		return Errors{{
			Field:   "file",
			Message: fmt.Sprintf("Fichier trop volumineux. Maximum %d Mo.", maxSize/(1024*1024)),
			Value:   size,
		}}
	}
	return nil
}

func validateTitle(title *string, required bool) Errors {
	if title == nil {
		if required {
			return Errors{{Field: "title", Message: MsgTitleRequired}}
		}
		return nil
	}
	if strings.TrimSpace(*title) == "" {
		return Errors{{Field: "title", Message: MsgTitleRequired}}
	}
	return nil
}

func validateStatus(status *models.Status) Errors {
	if status != nil && *status != "" && !models.ValidStatuses[*status] {
		return Errors{{Field: "status", Message: MsgInvalidStatus, Value: string(*status)}}
	}
	return nil
}
