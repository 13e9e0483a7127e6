// Package search implements HybridLegalSearch (spec.md §4.3): the article
// fast path, filtered semantic search, and enrichment join. It is the
// non-trivial retrieval core this spec singles out.
package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

const (
	defaultLimit = 10
	minLimit     = 1
	maxLimit     = 50
)

// Params mirrors the optional filter params a HybridLegalSearch.Search call
// accepts.
type Params struct {
	Category           *string
	DocType            *string
	LawTitle           *string
	IsTenantProtection *bool
	IsTaxRelated       *bool
	Limit              int
}

func (p Params) clampedLimit() int {
	limit := p.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// HybridLegalSearch orchestrates MetadataCatalog and VectorIndex per the
// three-strategy algorithm in spec.md §4.3.
type HybridLegalSearch struct {
	catalog capability.MetadataCatalog
	index   capability.VectorIndex
	embed   capability.Embedder
}

// New builds a HybridLegalSearch over the given capabilities.
func New(catalog capability.MetadataCatalog, index capability.VectorIndex, embedder capability.Embedder) *HybridLegalSearch {
	return &HybridLegalSearch{catalog: catalog, index: index, embed: embedder}
}

// articlePattern matches "<law title> [제]<N>조(의<M>)?", e.g.
// "주택임대차보호법 제7조" or "주택임대차보호법제7조의2".
var articlePattern = regexp.MustCompile(`^(?P<title>.+?)\s*제?(?P<num>\d+)조(?:의(?P<sub>\d+))?\s*$`)

type articleMatch struct {
	title         string
	articleNumber string // normalized, e.g. "제7조" or "제7조의2"
}

func matchArticleFastPath(query string) (articleMatch, bool) {
	m := articlePattern.FindStringSubmatch(strings.TrimSpace(query))
	if m == nil {
		return articleMatch{}, false
	}
	title := strings.TrimSpace(m[articlePattern.SubexpIndex("title")])
	if title == "" {
		return articleMatch{}, false
	}
	num := m[articlePattern.SubexpIndex("num")]
	sub := m[articlePattern.SubexpIndex("sub")]
	articleNumber := "제" + num + "조"
	if sub != "" {
		articleNumber += "의" + sub
	}
	return articleMatch{title: title, articleNumber: articleNumber}, true
}

// Search runs the full hybrid strategy selection.
func (h *HybridLegalSearch) Search(ctx context.Context, query string, params Params) (domain.SearchResult, error) {
	if match, ok := matchArticleFastPath(query); ok {
		result, handled, err := h.articleFastPath(ctx, query, match, params)
		if err != nil {
			return domain.SearchResult{}, err
		}
		if handled {
			return result, nil
		}
		// Law exists but the specific article doesn't: fall back to semantic
		// search restricted to this law title, per spec.md §4.3 step 1.
		restricted := params
		restricted.LawTitle = &match.title
		return h.semanticSearch(ctx, query, restricted)
	}
	return h.semanticSearch(ctx, query, params)
}

// articleFastPath implements strategy 1. handled=true means the caller
// should use `result` as-is (either a direct hit or a law-not-found
// sentinel); handled=false means the law exists but the specific article
// doesn't, so the caller should fall back to filtered semantic search.
func (h *HybridLegalSearch) articleFastPath(ctx context.Context, query string, match articleMatch, params Params) (domain.SearchResult, bool, error) {
	exists, err := h.catalog.LawExists(ctx, match.title)
	if err != nil {
		return domain.SearchResult{}, false, fmt.Errorf("search: law_exists(%q): %w", match.title, err)
	}
	if !exists {
		rec := domain.SearchRecord{
			LawTitle: match.title,
			DocType:  "error",
			Content:  fmt.Sprintf("법령 '%s'을(를) 찾을 수 없습니다.", match.title),
		}
		return domain.SearchResult{
			Status:     "success",
			Data:       []domain.SearchRecord{rec},
			Count:      1,
			DataSource: domain.DataSourceNotFound,
			Query:      query,
		}, true, nil
	}

	chunkIDs, err := h.catalog.ArticleChunkIDs(ctx, match.title, match.articleNumber)
	if err != nil {
		return domain.SearchResult{}, false, fmt.Errorf("search: article_chunk_ids(%q, %q): %w", match.title, match.articleNumber, err)
	}
	if len(chunkIDs) == 0 {
		// Law exists but this article doesn't: fall back to filtered
		// semantic search restricted to the law title.
		return domain.SearchResult{}, false, nil
	}

	chunks, err := h.index.Get(ctx, chunkIDs)
	if err != nil {
		return domain.SearchResult{}, false, fmt.Errorf("search: vector get %v: %w", chunkIDs, err)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].DocID < chunks[j].DocID })

	records := make([]domain.SearchRecord, 0, len(chunks))
	for _, c := range chunks {
		rec := domain.SearchRecord{
			DocID:          c.DocID,
			LawTitle:       match.title,
			ArticleNumber:  strPtr(match.articleNumber),
			Content:        c.Content,
			RelevanceScore: 1.0,
		}
		populateFromMetadata(&rec, c.Metadata)
		records = append(records, rec)
	}
	records = h.enrich(ctx, records)

	return domain.SearchResult{
		Status:     "success",
		Data:       records,
		Count:      len(records),
		DataSource: domain.DataSourceDirect,
		Query:      query,
	}, true, nil
}

// semanticSearch implements strategy 2 + 3: embed the query, build a
// predicate always excluding deleted chunks, query the vector index, then
// enrich.
func (h *HybridLegalSearch) semanticSearch(ctx context.Context, query string, params Params) (domain.SearchResult, error) {
	if h.embed == nil {
		return domain.SearchResult{}, fmt.Errorf("search: embedder capability is required for semantic search")
	}
	embedding, err := h.embed.Encode(ctx, query)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("search: embed query: %w", err)
	}

	predicate, err := h.catalog.BuildFilter(ctx, capability.FilterParams{
		Category:           params.Category,
		DocType:            params.DocType,
		LawTitle:           params.LawTitle,
		IsTenantProtection: params.IsTenantProtection,
		IsTaxRelated:       params.IsTaxRelated,
		ExcludeDeleted:     true,
	})
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("search: build_filter: %w", err)
	}

	matches, err := h.index.Query(ctx, embedding, predicate, params.clampedLimit())
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("search: vector query: %w", err)
	}

	records := make([]domain.SearchRecord, 0, len(matches))
	for _, m := range matches {
		score := 1 - m.Distance
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		rec := domain.SearchRecord{
			DocID:          m.DocID,
			Content:        m.Content,
			RelevanceScore: score,
		}
		populateFromMetadata(&rec, m.Metadata)
		records = append(records, rec)
	}
	records = h.enrich(ctx, records)

	return domain.SearchResult{
		Status:     "success",
		Data:       records,
		Count:      len(records),
		DataSource: domain.DataSourceSemantic,
		Query:      query,
	}, nil
}

// enrich performs the additive law_info join (spec.md §4.3 step 3).
// Enrichment failures are swallowed: a record is returned unenriched
// rather than dropped.
func (h *HybridLegalSearch) enrich(ctx context.Context, records []domain.SearchRecord) []domain.SearchRecord {
	for i := range records {
		if records[i].LawTitle == "" {
			continue
		}
		info, err := h.catalog.LawInfo(ctx, records[i].LawTitle)
		if err != nil || info == nil {
			continue
		}
		if records[i].TotalArticles == nil {
			records[i].TotalArticles = intPtr(info.TotalArticles)
		}
		if records[i].EnforcementDate == nil {
			records[i].EnforcementDate = strPtr(info.EnforcementDate)
		}
		if records[i].LawNumber == nil {
			records[i].LawNumber = strPtr(info.LawNumber)
		}
		if records[i].LastArticle == nil {
			records[i].LastArticle = strPtr(info.LastArticle)
		}
		if records[i].Category == "" {
			records[i].Category = info.Category
		}
	}
	return records
}

func populateFromMetadata(rec *domain.SearchRecord, metadata map[string]any) {
	if metadata == nil {
		return
	}
	if v, ok := metadata["law_title"].(string); ok {
		rec.LawTitle = v
	}
	if v, ok := metadata["article_number"].(string); ok && v != "" {
		rec.ArticleNumber = strPtr(v)
	}
	if v, ok := metadata["article_title"].(string); ok && v != "" {
		rec.ArticleTitle = strPtr(v)
	}
	if v, ok := metadata["category"].(string); ok {
		rec.Category = v
	}
	if v, ok := metadata["doc_type"].(string); ok {
		rec.DocType = v
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
