package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/internal/entity"
)

func pagesOf(t *testing.T, texts ...string) []entity.PageContent {
	t.Helper()
	pages := make([]entity.PageContent, 0, len(texts))
	for i, text := range texts {
		p, err := entity.NewPageContent(i+1, text, nil)
		require.NoError(t, err)
		pages = append(pages, p)
	}
	return pages
}
