package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability/fakeclient"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/metadata"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/vectorindex"
)

func newFixture() (*HybridLegalSearch, *vectorindex.MemoryIndex) {
	catalog := metadata.NewCatalog([]metadata.LawRecord{
		{
			Title:           "주택임대차보호법",
			LawNumber:       "법률 제19356호",
			EnforcementDate: "2023-07-19",
			Category:        "임대차",
			TotalArticles:   24,
			LastArticle:     "제24조",
			ArticleChunks: map[string][]string{
				"제7조": {"chunk-7-1"},
			},
		},
	})
	index := vectorindex.NewMemoryIndex([]vectorindex.Chunk{
		{
			DocID:   "chunk-7-1",
			Content: "임대인은 경제사정 변동으로 차임 증감을 청구할 수 있다.",
			Metadata: map[string]any{
				"law_title":      "주택임대차보호법",
				"article_number": "제7조",
				"category":       "임대차",
				"doc_type":       "법령",
				"is_deleted":     false,
			},
			Embedding: []float64{1, 0, 0, 0},
		},
		{
			DocID:   "chunk-9-1",
			Content: "대항력은 주택의 인도와 주민등록을 마친 다음 날부터 생긴다.",
			Metadata: map[string]any{
				"law_title": "주택임대차보호법",
				"category":  "임대차",
				"doc_type":  "법령",
				"is_deleted": false,
			},
			Embedding: []float64{0, 1, 0, 0},
		},
	})
	embedder := fakeclient.NewEmbedder(4)
	return New(catalog, index, embedder), index
}

func TestSearch_ArticleFastPath_DirectHit(t *testing.T) {
	h, _ := newFixture()
	result, err := h.Search(context.Background(), "주택임대차보호법 제7조", Params{})
	require.NoError(t, err)

	assert.Equal(t, domain.DataSourceDirect, result.DataSource)
	require.Len(t, result.Data, 1)
	rec := result.Data[0]
	assert.Equal(t, 1.0, rec.RelevanceScore)
	require.NotNil(t, rec.ArticleNumber)
	assert.Equal(t, "제7조", *rec.ArticleNumber)
	require.NotNil(t, rec.TotalArticles)
	assert.Equal(t, 24, *rec.TotalArticles)
}

func TestSearch_ArticleFastPath_LawNotFound(t *testing.T) {
	h, _ := newFixture()
	result, err := h.Search(context.Background(), "존재하지않는법 제1조", Params{})
	require.NoError(t, err)

	assert.Equal(t, domain.DataSourceNotFound, result.DataSource)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "error", result.Data[0].DocType)
}

func TestSearch_ArticleFastPath_LawExistsArticleMissing_FallsBackRestrictedToLawTitle(t *testing.T) {
	h, _ := newFixture()
	result, err := h.Search(context.Background(), "주택임대차보호법 제9조", Params{})
	require.NoError(t, err)

	assert.Equal(t, domain.DataSourceSemantic, result.DataSource)
	for _, rec := range result.Data {
		assert.Equal(t, "주택임대차보호법", rec.LawTitle)
	}
}

func TestSearch_SemanticSearch_ExcludesDeleted(t *testing.T) {
	catalog := metadata.NewCatalog(nil)
	index := vectorindex.NewMemoryIndex([]vectorindex.Chunk{
		{DocID: "live", Metadata: map[string]any{"is_deleted": false}, Embedding: []float64{1, 0}},
		{DocID: "gone", Metadata: map[string]any{"is_deleted": true}, Embedding: []float64{1, 0}},
	})
	h := New(catalog, index, fakeclient.NewEmbedder(2))

	result, err := h.Search(context.Background(), "일반 질의", Params{})
	require.NoError(t, err)
	assert.Equal(t, domain.DataSourceSemantic, result.DataSource)
	for _, rec := range result.Data {
		assert.NotEqual(t, "gone", rec.DocID)
	}
}

func TestSearch_RequiresEmbedderForSemanticSearch(t *testing.T) {
	catalog := metadata.NewCatalog(nil)
	index := vectorindex.NewMemoryIndex(nil)
	h := New(catalog, index, nil)

	_, err := h.Search(context.Background(), "일반 질의", Params{})
	assert.Error(t, err)
}

func TestParams_ClampedLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, Params{}.clampedLimit())
	assert.Equal(t, minLimit, Params{Limit: -5}.clampedLimit())
	assert.Equal(t, maxLimit, Params{Limit: 1000}.clampedLimit())
	assert.Equal(t, 7, Params{Limit: 7}.clampedLimit())
}

func TestMatchArticleFastPath(t *testing.T) {
	m, ok := matchArticleFastPath("주택임대차보호법 제7조의2")
	require.True(t, ok)
	assert.Equal(t, "주택임대차보호법", m.title)
	assert.Equal(t, "제7조의2", m.articleNumber)

	_, ok = matchArticleFastPath("전세 시세가 궁금해요")
	assert.False(t, ok)
}
