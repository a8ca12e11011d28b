package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
)

// Upload sends a multipart form with a "file" part plus string fields.
// The request carries only the multipart content type; the JSON default of
// Request must not leak here or it would corrupt the boundary.
func (c *Client) Upload(ctx context.Context, path, filename string, file io.Reader, fields map[string]string) (json.RawMessage, error) {

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", key, err)
		}
	}

	part, errPart := createFilePart(writer, filename)
	if errPart != nil {
		return nil, fmt.Errorf("create file part: %w", errPart)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+path, &buf)
	if errReq != nil {
		return nil, fmt.Errorf("build upload request: %w", errReq)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.options.UserAgent)

	accessToken, errToken := c.options.Tokens.GetAccessToken(ctx)
	if errToken != nil {
		return nil, errToken
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.send(req)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// createFilePart builds the "file" part with a content type guessed from
// the filename extension, application/octet-stream when unknown.
func createFilePart(writer *multipart.Writer, filename string) (io.Writer, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)

	return writer.CreatePart(header)
}
