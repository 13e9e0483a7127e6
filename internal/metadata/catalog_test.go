package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
)

func newTestCatalog() *Catalog {
	return NewCatalog([]LawRecord{
		{
			Title:           "주택임대차보호법(법률)(제19356호)",
			LawNumber:       "법률 제19356호",
			EnforcementDate: "2023-07-19",
			Category:        "임대차",
			TotalArticles:   24,
			LastArticle:     "제24조",
			ArticleChunks: map[string][]string{
				"제7조": {"chunk-7-1", "chunk-7-2"},
			},
		},
	})
}

func TestNormalizeTitle_StripsParentheticalDecoration(t *testing.T) {
	got := NormalizeTitle("주택임대차보호법(법률)(제19356호)")
	assert.Equal(t, "주택임대차보호법", got)
}

func TestCatalog_LawExists_FuzzyMatch(t *testing.T) {
	c := newTestCatalog()
	exists, err := c.LawExists(context.Background(), "주택임대차보호법")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.LawExists(context.Background(), "존재하지않는법")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCatalog_ArticleChunkIDs(t *testing.T) {
	c := newTestCatalog()
	ids, err := c.ArticleChunkIDs(context.Background(), "주택임대차보호법", "제7조")
	require.NoError(t, err)
	assert.Equal(t, []string{"chunk-7-1", "chunk-7-2"}, ids)

	ids, err = c.ArticleChunkIDs(context.Background(), "주택임대차보호법", "제99조")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCatalog_LawInfo_UnknownReturnsNil(t *testing.T) {
	c := newTestCatalog()
	info, err := c.LawInfo(context.Background(), "존재하지않는법")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestCatalog_BuildFilter_EmptyParamsIsValidMatchAll(t *testing.T) {
	c := newTestCatalog()
	expr, err := c.BuildFilter(context.Background(), capability.FilterParams{})
	require.NoError(t, err)
	assert.Nil(t, expr)
}

func TestCatalog_BuildFilter_IncludesLawTitleRestriction(t *testing.T) {
	c := newTestCatalog()
	title := "주택임대차보호법"
	expr, err := c.BuildFilter(context.Background(), capability.FilterParams{LawTitle: &title, ExcludeDeleted: true})
	require.NoError(t, err)
	require.NotNil(t, expr)
	assert.Contains(t, expr.Expression(), "law_title")
}
