// Package client is the HTTP face of the Arborter service: the login
// handshake, wallet-signed order submission and cancelation, and the
// read-only configuration fetch. The URL scheme picks the channel: http://
// for local plaintext endpoints, https:// for certificate-validated remote
// ones. Every call takes a context for timeout and cancelation; nothing is
// retried here — retry policy belongs to the caller.
package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arborter/arborter-go/arb/types"
)

const defaultTimeout = 30 * time.Second

// Client talks to one Arborter endpoint. Safe for concurrent use; it holds
// no per-call state.
type Client struct {
	host string
	http *resty.Client
	log  logrus.FieldLogger
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout. A context deadline
// shorter than this still wins.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithLogger routes client logging somewhere other than the standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the given endpoint URL.
func New(host string, opts ...Option) *Client {
	host = strings.TrimSuffix(strings.TrimSpace(host), "/")
	c := &Client{
		host: host,
		http: resty.New().
			SetBaseURL(host).
			SetTimeout(defaultTimeout).
			SetHeader("User-Agent", "arborter-go"),
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the configured endpoint URL.
func (c *Client) Host() string {
	return c.host
}

// remoteError is the service's structured failure body.
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do runs one request and maps the outcome onto the error taxonomy:
// transport failures, structured remote rejections, and decode errors stay
// distinct so callers can choose their own retry policy.
func (c *Client) do(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return &types.TransportError{Op: method + " " + path, Err: err}
	}
	if !resp.IsSuccess() {
		var re remoteError
		if err := json.Unmarshal(resp.Body(), &re); err == nil && (re.Code != "" || re.Message != "") {
			return &types.RemoteRejection{Code: re.Code, Message: re.Message}
		}
		return &types.RemoteRejection{
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body()))),
		}
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return errors.Wrapf(err, "decode %s response", path)
		}
	}
	return nil
}
