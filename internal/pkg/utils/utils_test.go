package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGravatarURL(t *testing.T) {
	got := GetGravatarURL("  Ada@Example.com ", 64)
	assert.Equal(t, GetGravatarURL("ada@example.com", 64), got)
	assert.Contains(t, got, "https://www.gravatar.com/avatar/")
	assert.Contains(t, got, "?s=64&d=mp")
	assert.Contains(t, GetGravatarURL("ada@example.com", 0), "?s=200&d=mp")
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/a.png", AvatarURL(" https://cdn.test/a.png ", "ada@example.com", 32))
	assert.Equal(t, GetGravatarURL("ada@example.com", 32), AvatarURL("", "ada@example.com", 32))
	assert.Empty(t, AvatarURL("", "", 32))
}

func TestProcessHTMLContent(t *testing.T) {
	in := `<h2>Title</h2><p>Text with <a href="/x">link</a></p><p class="lead">Keep</p><pre>code</pre>`
	out := ProcessHTMLContent(in)

	assert.Contains(t, out, `<h2 class="prose-h2">Title</h2>`)
	assert.Contains(t, out, `<p class="prose-p">Text`)
	assert.Contains(t, out, `<a href="/x" class="link">link</a>`)
	assert.Contains(t, out, `<p class="lead">Keep</p>`)
	assert.Contains(t, out, `<pre class="prose-code">code</pre>`)
}

func TestProcessHTMLContentIgnoresSimilarTags(t *testing.T) {
	out := ProcessHTMLContent(`<param name="x"><abbr>HTML</abbr><preview>`)
	assert.Equal(t, `<param name="x"><abbr>HTML</abbr><preview>`, out)
}
