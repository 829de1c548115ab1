package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/mavilleverte/mvv-api/internal/config"
	"github.com/mavilleverte/mvv-api/internal/mailer"
	"github.com/mavilleverte/mvv-api/internal/mocks"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/repository"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 40, G: 160, B: 80, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadService_Upload(t *testing.T) {
	f := newFixture(t, nil)
	data := pngBytes(t, 3, 2)

	res, err := f.services.Upload.Upload(context.Background(), &service.UploadFile{
		Filename:    "Photo.PNG",
		ContentType: "image/png",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !regexp.MustCompile(`^images/\d+_[0-9a-f]{7}\.png$`).MatchString(res.Key) {
		t.Errorf("Unexpected key %s", res.Key)
	}
	if res.URL != "/uploads/"+strings.TrimPrefix(res.Key, "images/") {
		t.Errorf("Unexpected url %s for key %s", res.URL, res.Key)
	}
	if res.Width != 3 || res.Height != 2 {
		t.Errorf("Expected 3x2, got %dx%d", res.Width, res.Height)
	}
	if res.Message != "Image uploadée avec succès" {
		t.Errorf("Unexpected message %q", res.Message)
	}
	if f.store.Types[res.Key] != "image/png" {
		t.Errorf("Stored type should be image/png, got %s", f.store.Types[res.Key])
	}
}

func TestUploadService_RejectsBeforeStoring(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name string
		file *service.UploadFile
		msg  string
	}{
		{
			name: "pdf",
			file: &service.UploadFile{Filename: "doc.pdf", ContentType: "application/pdf", Size: 10, Body: strings.NewReader("%PDF-1.4")},
			msg:  validation.MsgFileTypeNotAllowed,
		},
		{
			name: "too large",
			file: &service.UploadFile{Filename: "big.jpg", ContentType: "image/jpeg", Size: 2048, Body: strings.NewReader("")},
			msg:  "Fichier trop volumineux. Maximum 0 Mo.",
		},
		{
			name: "body larger than declared",
			file: &service.UploadFile{Filename: "lie.jpg", ContentType: "image/jpeg", Size: 10, Body: bytes.NewReader(make([]byte, 4096))},
			msg:  "Fichier trop volumineux. Maximum 0 Mo.",
		},
		{
			name: "sniffed text",
			file: &service.UploadFile{Filename: "notes", ContentType: "application/octet-stream", Size: 5, Body: strings.NewReader("hello")},
			msg:  validation.MsgFileTypeNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Upload.Upload(context.Background(), tt.file)
			var verrs validation.Errors
			if !errors.As(err, &verrs) || verrs.Error() != tt.msg {
				t.Errorf("Expected %q, got %v", tt.msg, err)
			}
		})
	}

	if len(f.store.Puts) != 0 {
		t.Errorf("Rejected uploads must not reach the store, got %v", f.store.Puts)
	}
}

func TestUploadService_SniffsMissingType(t *testing.T) {
	f := newFixture(t, nil)
	data := pngBytes(t, 1, 1)

	res, err := f.services.Upload.Upload(context.Background(), &service.UploadFile{
		Filename: "blob",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.ContentType != "image/png" {
		t.Errorf("Expected sniffed image/png, got %s", res.ContentType)
	}
	if !strings.HasSuffix(res.Key, ".png") {
		t.Errorf("Extension should follow the sniffed type, got %s", res.Key)
	}
}

func TestUploadService_Open(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.store.Put(ctx, "images/1_abc.jpg", strings.NewReader("jpeg"), "image/jpeg")

	obj, err := f.services.Upload.Open(ctx, "1_abc.jpg")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer obj.Body.Close()
	body, _ := io.ReadAll(obj.Body)
	if string(body) != "jpeg" || obj.ContentType != "image/jpeg" {
		t.Errorf("Unexpected object %q %s", body, obj.ContentType)
	}

	for _, name := range []string{"missing.jpg", "../secret", ""} {
		if _, err := f.services.Upload.Open(ctx, name); !errors.Is(err, service.ErrNotFound) {
			t.Errorf("Open(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestContactService_DevMode(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.services.Contact.Submit(context.Background(), &models.ContactRequest{
		Email: "a@b.fr", Subject: "Salut", Message: "Bonjour",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !res.Success || res.Message != "Message reçu (mode développement)" {
		t.Errorf("Unexpected result %+v", res)
	}
}

func TestContactService_SendsEscapedHTML(t *testing.T) {
	m := mocks.NewMockMailer()
	f := newFixture(t, m)

	res, err := f.services.Contact.Submit(context.Background(), &models.ContactRequest{
		Email:   "visitor@example.com",
		Subject: "Question",
		Message: "Ligne 1\n<b>Ligne 2</b>",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.ID != "mock-email-id" || res.Message != "Message envoyé avec succès" {
		t.Errorf("Unexpected result %+v", res)
	}

	if len(m.Sent) != 1 {
		t.Fatalf("Expected one email, got %d", len(m.Sent))
	}
	msg := m.Sent[0]
	if msg.Subject != "[Contact] Question" || msg.ReplyTo != "visitor@example.com" {
		t.Errorf("Unexpected headers %+v", msg)
	}
	if len(msg.To) != 1 || msg.To[0] != "team@example.com" {
		t.Errorf("Unexpected recipients %v", msg.To)
	}
	if !strings.Contains(msg.HTML, "Ligne 1<br>&lt;b&gt;Ligne 2&lt;/b&gt;") {
		t.Errorf("Message should be escaped with <br> line breaks, got %s", msg.HTML)
	}
}

func TestContactService_Errors(t *testing.T) {
	m := mocks.NewMockMailer()
	m.SendFunc = func(ctx context.Context, msg *mailer.Message) (string, error) {
		return "", &mailer.ProviderError{StatusCode: 403, Body: json.RawMessage(`{"message":"forbidden"}`)}
	}
	f := newFixture(t, m)

	_, err := f.services.Contact.Submit(context.Background(), &models.ContactRequest{Email: "a@b.fr"})
	var verrs validation.Errors
	if !errors.As(err, &verrs) || verrs.Error() != validation.MsgContactFields {
		t.Errorf("Expected missing fields error, got %v", err)
	}
	if len(m.Sent) != 0 {
		t.Error("Invalid submissions must not be sent")
	}

	_, err = f.services.Contact.Submit(context.Background(), &models.ContactRequest{Email: "a@b.fr", Subject: "s", Message: "m"})
	var perr *mailer.ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != 403 {
		t.Errorf("Expected provider error, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "s3cret", false},
		{"wrong password", "admin", "nope", true},
		{"wrong user", "root", "s3cret", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.services.Auth.Login(ctx, tt.username, tt.password)
			if tt.wantErr && !errors.Is(err, service.ErrBadCredentials) {
				t.Errorf("Expected ErrBadCredentials, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected success, got %v", err)
			}
		})
	}
}

func TestExportService_StreamResource(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.services.Product.Create(ctx, &models.ProductInput{
			Title:  strPtr("Produit"),
			Images: &[]models.ProductImageInput{{URL: "/uploads/p.jpg"}},
		})
	}

	w := httptest.NewRecorder()
	if err := f.services.Export.StreamResource(ctx, w, service.ResourceProducts, "ndjson"); err != nil {
		t.Fatalf("StreamResource failed: %v", err)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("Unexpected content type %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	var p models.Product
	if err := json.Unmarshal([]byte(lines[0]), &p); err != nil {
		t.Fatalf("Invalid ndjson line: %v", err)
	}
	if len(p.Images) != 1 {
		t.Errorf("Exported products should carry their images, got %d", len(p.Images))
	}

	w = httptest.NewRecorder()
	if err := f.services.Export.StreamResource(ctx, w, service.ResourceArticles, "json"); err != nil {
		t.Fatalf("StreamResource failed: %v", err)
	}
	if w.Body.String() != "[]" {
		t.Errorf("Expected empty array, got %s", w.Body.String())
	}

	if err := f.services.Export.StreamResource(ctx, httptest.NewRecorder(), "users", "json"); !errors.Is(err, service.ErrUnknownResource) {
		t.Errorf("Expected ErrUnknownResource, got %v", err)
	}
	if err := f.services.Export.StreamResource(ctx, httptest.NewRecorder(), service.ResourceProducts, "csv"); !errors.Is(err, service.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

// brokenStreamRepo emits one row then fails, like a connection dropped mid-export
type brokenStreamRepo struct {
	*mocks.MockContentRepository
}

func (r brokenStreamRepo) StreamAll(ctx context.Context, kind models.Kind, callback func(*models.Content) error) error {
	if err := callback(&models.Content{ID: "art_1", Title: "Premier"}); err != nil {
		return err
	}
	return errors.New("connection reset by peer")
}

func TestExportService_InterruptedStream(t *testing.T) {
	repos := &repository.Repositories{
		Content: brokenStreamRepo{mocks.NewMockContentRepository()},
		Product: mocks.NewMockProductRepository(),
	}
	services := service.NewServices(repos, mocks.NewMockStore(), nil, &config.Config{}, zerolog.Nop())

	for _, format := range []string{"json", "ndjson"} {
		t.Run(format, func(t *testing.T) {
			w := httptest.NewRecorder()
			err := services.Export.StreamResource(context.Background(), w, service.ResourceArticles, format)
			if err == nil {
				t.Fatal("Expected the stream error to be returned")
			}
			if !strings.Contains(w.Body.String(), `"id":"art_1"`) {
				t.Errorf("Rows written before the failure should be flushed, got %s", w.Body.String())
			}
			if format == "json" && json.Valid(w.Body.Bytes()) {
				t.Errorf("An interrupted JSON export must not parse as complete, got %s", w.Body.String())
			}
		})
	}
}

func TestExportService_GetCount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.services.Content.Create(ctx, models.KindRecommendation, &models.ContentInput{Title: strPtr("r")})

	n, err := f.services.Export.GetCount(ctx, service.ResourceRecommendations)
	if err != nil || n != 1 {
		t.Errorf("Expected 1 recommendation, got %d (%v)", n, err)
	}
	if _, err := f.services.Export.GetCount(ctx, "comments"); err == nil {
		t.Error("Expected error for unknown resource")
	}
}
