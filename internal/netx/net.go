// Package netx holds small HTTP helpers shared by the REST transport.
package netx

import (
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
)

// MaxErrorBody caps how much of an error response is read.
const MaxErrorBody = 1 << 20

// JoinURL appends p to base's path, keeping a trailing slash on p, and sets
// the query.
func JoinURL(base *url.URL, p string, query url.Values) string {
	u := *base
	trailing := strings.HasSuffix(p, "/")
	u.Path = path.Join("/", base.Path, p)
	if trailing && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// ResolveReference resolves ref against origin. Absolute refs are returned
// unchanged, relative ones are appended to the origin.
func ResolveReference(origin, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", ref, err)
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	if origin == "" {
		return "", fmt.Errorf("relative url %q and no origin configured", ref)
	}
	o, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", origin, err)
	}
	if !o.IsAbs() {
		return "", fmt.Errorf("origin %q is not absolute", origin)
	}
	return o.ResolveReference(r).String(), nil
}

// Origin returns scheme://host of raw.
func Origin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%q has no scheme or host", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// FilenameFromDisposition extracts the filename parameter of a
// Content-Disposition header. It returns "" when none is present.
func FilenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if name == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(name, `\`, "/"))
}

// ReadLimited reads at most MaxErrorBody bytes of r.
func ReadLimited(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, MaxErrorBody))
	return b
}

// DrainAndClose discards what is left of body and closes it so the
// connection can be reused.
func DrainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxErrorBody))
	_ = body.Close()
}
