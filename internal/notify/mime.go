package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"time"
)

// Bytes serializes the draft as an RFC 822 message with a multipart/mixed
// body: one text part plus one base64 part per attachment.
func (d *Draft) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", d.From)
	fmt.Fprintf(&buf, "To: %s\r\n", d.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", d.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", w.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := w.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(d.Body)); err != nil {
		return nil, err
	}

	for _, att := range d.Attachments {
		if err := writeAttachment(w, att); err != nil {
			return nil, fmt.Errorf("attach %s: %w", att.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAttachment(w *multipart.Writer, att Attachment) error {
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(att.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(encoded, data)
	// 76-char lines per RFC 2045
	for len(encoded) > 0 {
		n := len(encoded)
		if n > 76 {
			n = 76
		}
		if _, err := part.Write(encoded[:n]); err != nil {
			return err
		}
		if _, err := part.Write([]byte("\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
