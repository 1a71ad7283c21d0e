package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text passes through", "Mathematics 101", "Mathematics 101"},
		{"tags are stripped", "<script>alert(1)</script>Maths", "Maths"},
		{"markup inside text is removed", "a <b>bold</b> name", "a bold name"},
		{"surrounding whitespace is trimmed", "  padded  ", "padded"},
		{"empty stays empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeText(tc.input))
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Mathematics 101", "mathematics-101"},
		{"  Already--Spaced  ", "already-spaced"},
		{"Économie & Gestion", "économie-gestion"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.input), "input %q", tc.input)
	}
}

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, "fr", NormalizeLocale("fr"))
	assert.Equal(t, "fr-FR", NormalizeLocale("fr-FR"))
	assert.Equal(t, "en-US", NormalizeLocale("en_US"))
	assert.Equal(t, "", NormalizeLocale(""))
	assert.Equal(t, "", NormalizeLocale("not a locale!"))
}
