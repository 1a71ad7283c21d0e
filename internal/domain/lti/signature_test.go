package lti

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureBaseString(t *testing.T) {
	t.Run("normalizes method, url and parameter order", func(t *testing.T) {
		params := url.Values{}
		params.Set("b", "2 q")
		params.Set("a", "1")

		base := SignatureBaseString("post", "HTTP://Example.com:80/launch", params)

		assert.Equal(t, "POST&http%3A%2F%2Fexample.com%2Flaunch&a%3D1%26b%3D2%2520q", base)
	})

	t.Run("excludes oauth_signature from the parameter list", func(t *testing.T) {
		params := url.Values{}
		params.Set("a", "1")
		with := url.Values{}
		with.Set("a", "1")
		with.Set("oauth_signature", "abc")

		assert.Equal(t,
			SignatureBaseString("POST", "https://tool.example.com/launch", params),
			SignatureBaseString("POST", "https://tool.example.com/launch", with),
		)
	})

	t.Run("keeps default https port out of the base url", func(t *testing.T) {
		params := url.Values{}
		assert.Equal(t,
			SignatureBaseString("POST", "https://tool.example.com/launch", params),
			SignatureBaseString("POST", "https://tool.example.com:443/launch", params),
		)
	})
}

func TestComputeSignature(t *testing.T) {
	params := url.Values{}
	params.Set("oauth_consumer_key", "key123")
	params.Set("oauth_nonce", "abcdef")
	params.Set("oauth_timestamp", "1700000000")

	sig := ComputeSignature("POST", "https://tool.example.com/lti/forum/x", params, "secret")

	assert.NotEmpty(t, sig)
	assert.NotEqual(t, sig, ComputeSignature("POST", "https://tool.example.com/lti/forum/x", params, "other-secret"))
	assert.NotEqual(t, sig, ComputeSignature("POST", "https://tool.example.com/lti/forum/y", params, "secret"))
}

func TestCheckSignature(t *testing.T) {
	params := url.Values{}
	params.Set("oauth_consumer_key", "key123")
	params.Set("oauth_nonce", "abcdef")
	params.Set("oauth_timestamp", "1700000000")
	params.Set("oauth_signature", ComputeSignature("POST", "https://tool.example.com/launch", params, "secret"))

	t.Run("accepts a correctly signed request", func(t *testing.T) {
		assert.True(t, CheckSignature("POST", "https://tool.example.com/launch", params, "secret"))
	})

	t.Run("rejects the wrong secret", func(t *testing.T) {
		assert.False(t, CheckSignature("POST", "https://tool.example.com/launch", params, "wrong"))
	})

	t.Run("rejects a tampered parameter", func(t *testing.T) {
		tampered := url.Values{}
		for k, v := range params {
			tampered[k] = v
		}
		tampered.Set("oauth_nonce", "zzzzzz")
		assert.False(t, CheckSignature("POST", "https://tool.example.com/launch", tampered, "secret"))
	})

	t.Run("rejects a missing signature", func(t *testing.T) {
		unsigned := url.Values{}
		unsigned.Set("oauth_consumer_key", "key123")
		assert.False(t, CheckSignature("POST", "https://tool.example.com/launch", unsigned, "secret"))
	})
}
