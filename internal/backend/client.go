package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"docrelay/internal/models"
)

const (
	askPath        = "/api/v1/ask"
	uploadTextPath = "/api/v1/upload"
	listPath       = "/api/v1/list"
	resetPath      = "/api/v1/reset"
)

// Client calls the document question-answering backend over HTTP.
type Client struct {
	cl      *http.Client
	apiHost string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(cl *http.Client) Option {
	return func(c *Client) {
		if cl != nil {
			c.cl = cl
		}
	}
}

// WithTimeout bounds every backend call. Zero leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			cl := *c.cl
			cl.Timeout = d
			c.cl = &cl
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		cl:      &http.Client{},
		apiHost: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiURL returns the full url to the api endpoint.
// apiURL will add a slash if it's missing
func (c *Client) apiURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.apiHost + path
}

// Ask sends the question and returns the backend's answer text.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", models.ErrEmptyQuestion
	}
	var out struct {
		Answer string `json:"answer"`
	}
	if err := c.doJSON(ctx, "ask", http.MethodPost, askPath, map[string]string{"question": question}, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// UploadText stores raw text as a document.
func (c *Client) UploadText(ctx context.Context, text, title string) error {
	return c.doJSON(ctx, "upload text", http.MethodPost, uploadTextPath, map[string]string{
		"text":  text,
		"title": title,
	}, nil)
}

// ListDocuments returns the summaries of every stored document.
func (c *Client) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	var list models.DocumentList
	if err := c.doJSON(ctx, "list", http.MethodGet, listPath, nil, &list); err != nil {
		return nil, err
	}
	if list.Documents == nil {
		return []models.DocumentSummary{}, nil
	}
	return list.Documents, nil
}

// Reset clears every stored document.
func (c *Client) Reset(ctx context.Context) error {
	return c.doJSON(ctx, "reset", http.MethodPost, resetPath, nil, nil)
}

// UploadFile streams a staged file to the upload endpoint for kind, declaring
// the kind's fixed content type and the original filename.
func (c *Client) UploadFile(ctx context.Context, kind models.UploadKind, file *models.TempFile) error {
	op := fmt.Sprintf("upload %s", kind)
	src, err := os.Open(file.StoredPath)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("open staged file: %w", err)}
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.FileName)))
		header.Set("Content-Type", kind.ContentType())
		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL("/api/v1/upload/"+string(kind)), pr)
	if err != nil {
		pr.Close()
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, op, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		bs, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		body = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL(path), body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.cl.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
