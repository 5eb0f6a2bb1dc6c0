package notify

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDraftBytes(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "1705_2025-08-05_ENMAX.png")
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	if err := os.WriteFile(imgPath, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	draft := &Draft{
		From:    "landlord@example.com",
		To:      "alice@example.com",
		Subject: "August utility bill",
		Body:    "Hi Alice,\n\nRent for September 1 is $1199.00.\n",
		Attachments: []Attachment{
			{Filename: "1705_2025-08-05_ENMAX.png", Path: imgPath},
		},
	}

	raw, err := draft.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("message does not parse: %v", err)
	}
	if got := msg.Header.Get("To"); got != "alice@example.com" {
		t.Errorf("To = %q", got)
	}
	if got := msg.Header.Get("Subject"); got != "August utility bill" {
		t.Errorf("Subject = %q", got)
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("Content-Type = %q (%v)", msg.Header.Get("Content-Type"), err)
	}

	mr := multipart.NewReader(msg.Body, params["boundary"])

	text, err := mr.NextPart()
	if err != nil {
		t.Fatalf("text part: %v", err)
	}
	if ct := text.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("text part type = %q", ct)
	}
	body, _ := io.ReadAll(text)
	if !strings.Contains(string(body), "$1199.00") {
		t.Errorf("body = %q", body)
	}

	att, err := mr.NextPart()
	if err != nil {
		t.Fatalf("attachment part: %v", err)
	}
	if ct := att.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("attachment type = %q", ct)
	}
	if cd := att.Header.Get("Content-Disposition"); !strings.Contains(cd, "1705_2025-08-05_ENMAX.png") {
		t.Errorf("disposition = %q", cd)
	}
	encoded, _ := io.ReadAll(att)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	if err != nil {
		t.Fatalf("attachment is not base64: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Error("attachment content does not round-trip")
	}

	if _, err := mr.NextPart(); err != io.EOF {
		t.Errorf("expected exactly two parts, got err = %v", err)
	}
}

func TestDraftBytesMissingAttachment(t *testing.T) {
	draft := &Draft{
		From:        "landlord@example.com",
		To:          "alice@example.com",
		Subject:     "August utility bill",
		Body:        "body",
		Attachments: []Attachment{{Filename: "gone.png", Path: "/nonexistent/gone.png"}},
	}
	if _, err := draft.Bytes(); err == nil {
		t.Error("Bytes() succeeded with unreadable attachment")
	}
}
