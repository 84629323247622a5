package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "I can't log into my account", "I can't log into my account"},
		{"trims and collapses", "  hello \n\t world  ", "hello world"},
		{"smart quotes", "I can’t see my “invoice”", "I can't see my \"invoice\""},
		{"bom", "\xEF\xBB\xBFhello", "hello"},
		{"blank", " \n\t ", ""},
		{"html", "<p>My <b>payment</b> failed</p><script>alert(1)</script>", "My payment failed"},
		{"comparison is not markup", "price < 5 dollars", "price < 5 dollars"},
		{"stray tag-like text is kept", "a<b my password reset fails", "a<b my password reset fails"},
		{"lone tag is kept", "<br>", "<br>"},
		{"markup with no text keeps the raw input", "<script>login broken</script>", "<script>login broken</script>"},
		{"zero-width only keeps the raw input", "\u200b", "\u200b"},
		{"html document", "<div>\n<h1>Error 500</h1>\n<p>Something broke</p>\n</div>", "Error 500 Something broke"},
		{"invalid utf8", "bad \xff byte", "bad � byte"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeMessage(tc.in))
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("   \n"))
	assert.True(t, IsBlank(" "))
	assert.False(t, IsBlank(" x "))
	assert.False(t, IsBlank("<br>"))
	assert.False(t, IsBlank("\u200b"))
}
