// Package metadata implements MetadataCatalog (spec.md §4.1): read-only,
// thread-safe structured lookups over the legal corpus. It is grounded on
// the teacher's pkg/kv.KV generic map helper for the in-memory index and on
// pkg/strings/pkg/text's preference for small, focused normalization
// helpers.
package metadata

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/filterexpr"
)

// LawRecord is one entry in the in-memory catalog.
type LawRecord struct {
	Title           string
	LawNumber       string
	EnforcementDate string
	Category        string
	TotalArticles   int
	LastArticle     string
	// ArticleChunks maps a normalized article number (e.g. "제7조") to its
	// ordered chunk identifiers.
	ArticleChunks map[string][]string
}

// Catalog is an in-memory MetadataCatalog. All read operations take a
// RLock, so concurrent team reads never block each other.
type Catalog struct {
	mu   sync.RWMutex
	laws map[string]LawRecord // keyed by normalized title
}

var _ capability.MetadataCatalog = (*Catalog)(nil)

// NewCatalog builds a Catalog from a set of LawRecords, normalizing titles
// as the index key.
func NewCatalog(records []LawRecord) *Catalog {
	laws := make(map[string]LawRecord, len(records))
	for _, r := range records {
		laws[NormalizeTitle(r.Title)] = r
	}
	return &Catalog{laws: laws}
}

// suffixDecoration strips Korean parenthetical law-number/type decorations,
// e.g. "주택임대차보호법(법률)(제19356호)" -> "주택임대차보호법".
var suffixDecoration = regexp.MustCompile(`\s*\([^()]*\)\s*`)

// NormalizeTitle collapses whitespace and strips parenthetical decorations
// so title comparisons are robust to formatting drift in source data.
func NormalizeTitle(title string) string {
	stripped := suffixDecoration.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(stripped), " ")
}

// LawExists performs a fuzzy substring match on normalized law titles.
func (c *Catalog) LawExists(_ context.Context, title string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	norm := NormalizeTitle(title)
	if _, ok := c.laws[norm]; ok {
		return true, nil
	}
	for key := range c.laws {
		if strings.Contains(key, norm) || strings.Contains(norm, key) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Catalog) lookup(title string) (LawRecord, bool) {
	norm := NormalizeTitle(title)
	if rec, ok := c.laws[norm]; ok {
		return rec, true
	}
	for key, rec := range c.laws {
		if strings.Contains(key, norm) || strings.Contains(norm, key) {
			return rec, true
		}
	}
	return LawRecord{}, false
}

// ArticleChunkIDs returns the ordered chunk identifiers for (title,
// articleNumber), or an empty slice if the pair is absent.
func (c *Catalog) ArticleChunkIDs(_ context.Context, title string, articleNumber string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.lookup(title)
	if !ok {
		return nil, nil
	}
	return rec.ArticleChunks[articleNumber], nil
}

// LawInfo returns enrichment metadata for title, or nil if the law is
// unknown.
func (c *Catalog) LawInfo(_ context.Context, title string) (*capability.LawInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.lookup(title)
	if !ok {
		return nil, nil
	}
	return &capability.LawInfo{
		TotalArticles:   rec.TotalArticles,
		LastArticle:     rec.LastArticle,
		LawNumber:       rec.LawNumber,
		EnforcementDate: rec.EnforcementDate,
		Category:        rec.Category,
	}, nil
}

// BuildFilter assembles a vendor-agnostic predicate from the supplied
// params. is_deleted = false is included only when ExcludeDeleted is true;
// a zero FilterParams yields a nil (match-all) expression.
func (c *Catalog) BuildFilter(_ context.Context, params capability.FilterParams) (filterexpr.Expression, error) {
	b := filterexpr.NewExprBuilder()
	if params.ExcludeDeleted {
		b.Eq("is_deleted", false)
	}
	if params.Category != nil {
		b.Eq("category", *params.Category)
	}
	if params.LawTitle != nil {
		b.Eq("law_title", *params.LawTitle)
	}
	if params.DocType != nil {
		b.Eq("doc_type", *params.DocType)
	}
	if params.IsTenantProtection != nil {
		b.Eq("is_tenant_protection", *params.IsTenantProtection)
	}
	if params.IsTaxRelated != nil {
		b.Eq("is_tax_related", *params.IsTaxRelated)
	}
	return b.Build(), nil
}
