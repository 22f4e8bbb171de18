package acquire

import (
	"net/http"
	"strings"
)

// Profile is the set of headers sent on every upstream request so traffic
// looks like an ordinary browser session.
type Profile struct {
	UserAgent      string
	AcceptLanguage string
	Referer        string
	Cookies        CookieSource // may be nil
}

// CookieSource supplies the session cookie header value.
type CookieSource interface {
	Cookie() string
}

// StaticCookie is a cookie header value fixed at startup.
type StaticCookie string

func (c StaticCookie) Cookie() string { return sanitizeHeader(string(c)) }

// sanitizeHeader flattens CR/LF so a pasted value cannot inject headers.
func sanitizeHeader(v string) string {
	v = strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
	return strings.TrimSpace(v)
}

// Apply sets the profile headers on h. A cookie already present (for example
// a consent cookie set by the client library) is kept and the session cookie
// appended.
func (p *Profile) Apply(h http.Header) {
	if ua := sanitizeHeader(p.UserAgent); ua != "" {
		h.Set("User-Agent", ua)
	}
	if al := sanitizeHeader(p.AcceptLanguage); al != "" {
		h.Set("Accept-Language", al)
	}
	if ref := sanitizeHeader(p.Referer); ref != "" {
		h.Set("Referer", ref)
	}
	if p.Cookies == nil {
		return
	}
	if c := p.Cookies.Cookie(); c != "" {
		if existing := h.Get("Cookie"); existing != "" {
			c = existing + "; " + c
		}
		h.Set("Cookie", c)
	}
}

// HasCookie reports whether a session cookie is currently configured.
func (p *Profile) HasCookie() bool {
	return p.Cookies != nil && p.Cookies.Cookie() != ""
}

// Transport wraps base so every request carries the profile headers.
func (p *Profile) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &profileTransport{base: base, profile: p}
}

type profileTransport struct {
	base    http.RoundTripper
	profile *Profile
}

func (t *profileTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	t.profile.Apply(r.Header)
	return t.base.RoundTrip(r)
}
