package lti

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// OAuth 1.0 signature primitives (RFC 5849 section 3.4), restricted to the
// HMAC-SHA1 two-legged form used by LTI 1.0 launch requests.

// oauthEncode percent-encodes a string per RFC 3986: only ALPHA, DIGIT,
// "-", ".", "_" and "~" stay literal. This is stricter than
// url.QueryEscape, which keeps some sub-delims and encodes space as "+".
func oauthEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte("0123456789ABCDEF"[c>>4])
			b.WriteByte("0123456789ABCDEF"[c&0x0F])
		}
	}
	return b.String()
}

// normalizeBaseURL lowercases scheme and host, strips default ports and
// discards the query, per RFC 5849 section 3.4.1.2.
func normalizeBaseURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if scheme == "http" {
		host = strings.TrimSuffix(host, ":80")
	} else if scheme == "https" {
		host = strings.TrimSuffix(host, ":443")
	}
	return scheme + "://" + host + u.EscapedPath()
}

// SignatureBaseString builds the canonical string covered by the OAuth
// signature: METHOD&encode(baseURL)&encode(sorted normalized params).
// oauth_signature itself is excluded from the parameter list.
func SignatureBaseString(method, rawURL string, params url.Values) string {
	type pair struct{ key, value string }
	pairs := make([]pair, 0, len(params))
	for key, values := range params {
		if key == "oauth_signature" {
			continue
		}
		for _, value := range values {
			pairs = append(pairs, pair{oauthEncode(key), oauthEncode(value)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(p.value)
	}

	return strings.ToUpper(method) + "&" + oauthEncode(normalizeBaseURL(rawURL)) + "&" + oauthEncode(b.String())
}

// ComputeSignature returns the base64 HMAC-SHA1 signature of the request.
// The signing key is encode(secret)&"" since LTI has no token secret.
func ComputeSignature(method, rawURL string, params url.Values, sharedSecret string) string {
	key := oauthEncode(sharedSecret) + "&"
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(SignatureBaseString(method, rawURL, params)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// CheckSignature verifies the oauth_signature parameter in constant time.
func CheckSignature(method, rawURL string, params url.Values, sharedSecret string) bool {
	provided := params.Get("oauth_signature")
	if provided == "" {
		return false
	}
	expected := ComputeSignature(method, rawURL, params, sharedSecret)
	return hmac.Equal([]byte(provided), []byte(expected))
}
