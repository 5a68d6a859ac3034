package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

func TestExtract_PlainAndMarkdownPassThrough(t *testing.T) {
	e := NewExtractor()

	got, err := e.Extract("text/plain; charset=utf-8", []byte("\xef\xbb\xbfRequer indenização por dano moral.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Requer indenização por dano moral.", got)

	got, err = e.Extract(TypeMarkdown, []byte("# Petição\n\n- pedido liminar"))
	require.NoError(t, err)
	assert.Equal(t, "# Petição\n\n- pedido liminar", got)
}

func TestExtract_HTML(t *testing.T) {
	html := `<html><head><title>x</title><style>p{}</style></head>
<body>
  <h1>Petição   Inicial</h1>
  <script>alert(1)</script>
  <p>Excelentíssimo Senhor Juiz,</p>
  <p>requer a <b>tutela</b> de urgência.<br>Termos em que pede deferimento.</p>
</body></html>`

	got, err := NewExtractor().Extract(TypeHTML, []byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Petição Inicial\nExcelentíssimo Senhor Juiz,\nrequer a tutela de urgência.\nTermos em que pede deferimento.", got)
	assert.NotContains(t, got, "alert")
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := NewExtractor().Extract("application/pdf", []byte("%PDF-1.4"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeUnsupportedDocument))
}

func TestExtract_Empty(t *testing.T) {
	_, err := NewExtractor().Extract(TypePlain, []byte("   \n\t"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeEmptyDocument))

	_, err = NewExtractor().Extract(TypeHTML, []byte("<html><body><script>x</script></body></html>"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeEmptyDocument))
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		declared, filename, want string
	}{
		{"text/html; charset=utf-8", "a.txt", TypeHTML},
		{"", "peticao.MD", TypeMarkdown},
		{"application/octet-stream", "peticao.htm", TypeHTML},
		{"", "peticao.txt", TypePlain},
		{"", "peticao.pdf", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentTypeFor(tt.declared, tt.filename), tt.filename)
	}
}

//Personal.AI order the ending
