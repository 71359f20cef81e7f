package types

import "net/http"

// DefaultCookieName is the cookie that carries the access token
const DefaultCookieName = "accessToken"

// Target describes the single endpoint a probe run hits
type Target struct {
	URL        string            `json:"url" yaml:"url"`
	CookieName string            `json:"cookieName,omitempty" yaml:"cookieName,omitempty"`
	Token      string            `json:"-" yaml:"-"` // Never serialized
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	TLS        *TLSConfig        `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// TLSConfig holds client TLS settings for the target
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}

// HasCredential reports whether a token is configured
func (t *Target) HasCredential() bool {
	return t.Token != ""
}

// Cookie returns the credential cookie, or nil when no token is set
func (t *Target) Cookie() *http.Cookie {
	if !t.HasCredential() {
		return nil
	}
	name := t.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &http.Cookie{Name: name, Value: t.Token}
}

// Apply sets the configured headers and credential cookie on req
func (t *Target) Apply(req *http.Request) {
	for key, value := range t.Headers {
		req.Header.Set(key, value)
	}
	if c := t.Cookie(); c != nil {
		req.AddCookie(c)
	}
}
