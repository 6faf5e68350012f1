package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLinks(t *testing.T) {
	body := `<html><body>
		<a href="/about">About</a>
		<a>No href</a>
		<p><a href="team.html">Team</a></p>
		<a href="/about">About again</a>
		<a href="">Empty</a>
		<link href="/style.css">
	</body></html>`

	links, err := DocumentLinks{}.Links(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"/about", "", "team.html", "/about", ""}, links)
}

func TestDocumentLinks_NotHTML(t *testing.T) {
	links, err := DocumentLinks{}.Links(`{"json": "body"}`)
	require.NoError(t, err)
	assert.Empty(t, links)
}
