package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"
)

const page = `<!DOCTYPE html>
<html>
<head>
	<title>Machine Learning Group</title>
	<style>body { color: red; }</style>
	<script>var tracking = "ignore me";</script>
</head>
<body>
	<nav><a href="/">Home</a> <a href="/people">People</a></nav>
	<header>Donald Bren School</header>
	<p>We study <b>statistical</b> learning.</p>
	<!-- a comment that is not text -->
	<aside>Sidebar links</aside>
	<footer>Copyright notice</footer>
	<a href="/papers#2020">Papers</a>
	<a name="anchor-only">no href</a>
</body>
</html>`

func TestTextVisible(t *testing.T) {
	e := New(ModeVisible, true)
	text := e.Text([]byte(page))

	assert.Contains(t, text, "Machine Learning Group")
	assert.Contains(t, text, "We study statistical learning.")
	assert.Contains(t, text, "Home People")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color")
	assert.NotContains(t, text, "comment")
}

func TestStrippedText(t *testing.T) {
	e := New(ModeVisible, false)
	text := e.StrippedText([]byte(page), BoilerplateTags...)

	assert.Contains(t, text, "We study statistical learning.")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "Donald Bren")
	assert.NotContains(t, text, "Sidebar")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "tracking")
}

func TestLinks(t *testing.T) {
	e := New(ModeVisible, false)
	links := e.Links([]byte(page))

	assert.Equal(t, []string{"/", "/people", "/papers#2020"}, links)
}

func TestLinksEmptyBody(t *testing.T) {
	e := New(ModeVisible, false)
	assert.Empty(t, e.Links(nil))
	assert.Empty(t, e.Text(nil))
}

func TestDecodeLatin1(t *testing.T) {
	utf8Page := `<html><head><meta charset="iso-8859-1"></head><body>
<p>Le Café de la faculté est ouvert à tous les étudiants et à leurs invités pendant la période des examens.</p>
<p>Les élèves doivent présenter leur carte d'étudiant à l'entrée. Le café et le thé sont gratuits le matin.</p>
<p>Pour toute question, veuillez contacter le secrétariat du département d'informatique.</p>
</body></html>`
	latin1, err := charmap.ISO8859_1.NewEncoder().String(utf8Page)
	if err != nil {
		t.Fatal(err)
	}

	e := New(ModeVisible, true)
	assert.Contains(t, e.Text([]byte(latin1)), "Café")

	// detection disabled leaves the bytes alone
	raw := New(ModeVisible, false).Decode([]byte(latin1))
	assert.Equal(t, []byte(latin1), raw)
}

func TestDecodeKeepsUTF8(t *testing.T) {
	e := New(ModeVisible, true)
	body := []byte("<p>naïve</p>")
	assert.Equal(t, body, e.Decode(body))
}
