package validation

import (
	"strings"
	"testing"

	"github.com/mavilleverte/mvv-api/internal/models"
)

func strPtr(s string) *string { return &s }

func statusPtr(s models.Status) *models.Status { return &s }

func fields(errs Errors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name       string
		input      *models.ContentInput
		create     bool
		wantFields []string
	}{
		{
			name:   "valid create",
			input:  &models.ContentInput{Title: strPtr("Jardins partagés"), Status: statusPtr(models.StatusPublished)},
			create: true,
		},
		{
			name:       "missing title on create",
			input:      &models.ContentInput{Summary: strPtr("résumé")},
			create:     true,
			wantFields: []string{"title"},
		},
		{
			name:       "blank title on create",
			input:      &models.ContentInput{Title: strPtr("   ")},
			create:     true,
			wantFields: []string{"title"},
		},
		{
			name:   "title omitted on update",
			input:  &models.ContentInput{Summary: strPtr("nouveau")},
			create: false,
		},
		{
			name:       "title blanked on update",
			input:      &models.ContentInput{Title: strPtr("")},
			create:     false,
			wantFields: []string{"title"},
		},
		{
			name:       "unknown status",
			input:      &models.ContentInput{Title: strPtr("t"), Status: statusPtr("archived")},
			create:     true,
			wantFields: []string{"status"},
		},
		{
			name:       "invalid author email",
			input:      &models.ContentInput{Title: strPtr("t"), AuthorEmail: strPtr("not-an-email")},
			create:     true,
			wantFields: []string{"authorEmail"},
		},
		{
			name:   "empty author email is allowed",
			input:  &models.ContentInput{Title: strPtr("t"), AuthorEmail: strPtr("")},
			create: true,
		},
		{
			name:       "multiple errors",
			input:      &models.ContentInput{Status: statusPtr("x")},
			create:     true,
			wantFields: []string{"title", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateContent(tt.input, tt.create)
			got := fields(errs)
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("Expected fields %v, got %v", tt.wantFields, got)
			}
		})
	}
}

func TestValidateProduct(t *testing.T) {
	price := 12.5
	negative := -1.0
	images := []models.ProductImageInput{{URL: "/a.jpg", Position: 0}, {URL: " ", Position: 1}}

	tests := []struct {
		name       string
		input      *models.ProductInput
		create     bool
		wantFields []string
	}{
		{"valid", &models.ProductInput{Title: strPtr("Pot recyclé"), Price: &price}, true, nil},
		{"missing title", &models.ProductInput{}, true, []string{"title"}},
		{"negative price", &models.ProductInput{Title: strPtr("p"), Price: &negative}, true, []string{"price"}},
		{"image without url", &models.ProductInput{Title: strPtr("p"), Images: &images}, true, []string{"images[1].url"}},
		{"partial update", &models.ProductInput{Status: statusPtr(models.StatusDraft)}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(ValidateProduct(tt.input, tt.create))
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("Expected fields %v, got %v", tt.wantFields, got)
			}
		})
	}
}

func TestValidateContact(t *testing.T) {
	valid := &models.ContactRequest{Email: "a@b.fr", Subject: "Bonjour", Message: "Salut"}
	if errs := ValidateContact(valid); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}

	missing := &models.ContactRequest{Email: "a@b.fr", Subject: " "}
	errs := ValidateContact(missing)
	if got := strings.Join(fields(errs), ","); got != "subject,message" {
		t.Errorf("Expected subject,message, got %s", got)
	}
	if errs.Error() != MsgContactFields {
		t.Errorf("Expected %q, got %q", MsgContactFields, errs.Error())
	}
}

func TestValidateImage(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if errs := ValidateImageType(ct); errs != nil {
			t.Errorf("%s should be allowed, got %v", ct, errs)
		}
	}
	for _, ct := range []string{"image/svg+xml", "application/pdf", "text/html", ""} {
		if errs := ValidateImageType(ct); errs == nil {
			t.Errorf("%q should be rejected", ct)
		}
	}

	const maxSize = 10 * 1024 * 1024
	if errs := ValidateImageSize(maxSize, maxSize); errs != nil {
		t.Errorf("Exactly max size should pass, got %v", errs)
	}
	errs := ValidateImageSize(maxSize+1, maxSize)
	if errs == nil {
		t.Fatal("Oversized payload should be rejected")
	}
	if !strings.Contains(errs.Error(), "10 Mo") {
		t.Errorf("Expected size in message, got %q", errs.Error())
	}
}

func TestErrors_OrNil(t *testing.T) {
	if err := Errors(nil).OrNil(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	if err := (Errors{{Field: "f", Message: "m"}}).OrNil(); err == nil || err.Error() != "m" {
		t.Errorf("Expected error m, got %v", err)
	}
}
