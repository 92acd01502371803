package remote

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
)

const (
	defaultUserAgent   = "syncpaste/0.1"
	defaultAuthHeader  = "Cookie"
	expireHeader       = "X-Expire"
	maxErrorMessageLen = 512
	noMessage          = "No message"
)

// Options configures a Client. BaseURL and Resource are required.
type Options struct {
	BaseURL       string
	Resource      string
	AuthHeader    string // header name; defaults to Cookie
	AuthValue     string // sent verbatim; omitted when empty
	ExpirySeconds int    // sent as X-Expire when > 0
	Password      string // only used to build BrowserURL
	Timeout       time.Duration
	UserAgent     string
	Logger        *slog.Logger
}

// Ack is the server's acknowledgement of an upload.
type Ack struct {
	Message string `json:"message"`
}

// Client talks to one named resource on the clipboard service.
type Client struct {
	http     *req.Client
	baseURL  string
	resource string
	password string
	logger   *slog.Logger

	// nowFunc supplies the cache-busting t= query parameter.
	nowFunc func() time.Time
}

// New creates a Client. The underlying req client never retries.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	hc := req.C().
		SetUserAgent(ua).
		SetCommonRetryCount(0).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	if opts.Timeout > 0 {
		hc.SetTimeout(opts.Timeout)
	}

	if opts.AuthValue != "" {
		name := opts.AuthHeader
		if name == "" {
			name = defaultAuthHeader
		}

		hc.SetCommonHeader(name, opts.AuthValue)
	}

	if opts.ExpirySeconds > 0 {
		hc.SetCommonHeader(expireHeader, strconv.Itoa(opts.ExpirySeconds))
	}

	return &Client{
		http:     hc,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		resource: opts.Resource,
		password: opts.Password,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Resource returns the shared resource name.
func (c *Client) Resource() string {
	return c.resource
}

// BrowserURL returns the web page where the shared buffer can be viewed and
// edited, with the access password embedded in the path when one is set.
func (c *Client) BrowserURL() string {
	u := c.baseURL + "/e/" + url.PathEscape(c.resource)
	if c.password != "" {
		u += "/" + url.PathEscape(c.password)
	}

	return u
}

// Fetch returns the current remote content as text.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("t", c.timestamp()).
		Get(c.endpoint("r"))

	if err := c.check("fetch", resp, err); err != nil {
		return "", err
	}

	body := resp.String()

	c.logger.Debug("fetched remote content",
		slog.String("resource", c.resource),
		slog.Int("bytes", len(body)),
	)

	return body, nil
}

// Push replaces the remote content with content.
func (c *Client) Push(ctx context.Context, content string) (Ack, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("t", c.timestamp()).
		SetContentType("text/plain; charset=utf-8").
		SetBodyString(content).
		Post(c.endpoint("s"))

	if err := c.check("push", resp, err); err != nil {
		return Ack{}, err
	}

	ack := decodeAck(resp.Bytes())

	c.logger.Debug("pushed content",
		slog.String("resource", c.resource),
		slog.Int("bytes", len(content)),
		slog.String("message", ack.Message),
	)

	return ack, nil
}

// PutFile uploads an opaque payload to the resource. The content type is
// sniffed from the payload.
func (c *Client) PutFile(ctx context.Context, data []byte) (Ack, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("t", c.timestamp()).
		SetContentType(http.DetectContentType(data)).
		SetBodyBytes(data).
		Put(c.endpoint("s"))

	if err := c.check("put", resp, err); err != nil {
		return Ack{}, err
	}

	ack := decodeAck(resp.Bytes())

	c.logger.Debug("uploaded file payload",
		slog.String("resource", c.resource),
		slog.Int("bytes", len(data)),
		slog.String("message", ack.Message),
	)

	return ack, nil
}

func (c *Client) endpoint(prefix string) string {
	return c.baseURL + "/" + prefix + "/" + url.PathEscape(c.resource)
}

func (c *Client) timestamp() string {
	return strconv.FormatInt(c.nowFunc().Unix(), 10)
}

// check converts a req result into a *Error, or nil for a 2xx response.
func (c *Client) check(op string, resp *req.Response, reqErr error) error {
	if reqErr != nil {
		return &Error{
			Op:      op,
			Kind:    KindTransport,
			Message: reqErr.Error(),
			Err:     ErrTransport,
			cause:   reqErr,
		}
	}

	if resp.IsSuccessState() {
		return nil
	}

	msg := strings.TrimSpace(resp.String())
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}

	return &Error{
		Op:         op,
		Kind:       KindHTTPStatus,
		StatusCode: resp.GetStatusCode(),
		Message:    msg,
		Err:        classifyStatus(resp.GetStatusCode()),
	}
}

// decodeAck reads {"message": ...}. Bodies that are not JSON are still a
// successful upload; their text becomes the message.
func decodeAck(body []byte) Ack {
	var ack Ack
	if err := json.Unmarshal(body, &ack); err != nil {
		text := strings.TrimSpace(string(body))
		if text == "" {
			text = noMessage
		}

		return Ack{Message: text}
	}

	if ack.Message == "" {
		ack.Message = noMessage
	}

	return ack
}
