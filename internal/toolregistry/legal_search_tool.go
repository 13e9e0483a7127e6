package toolregistry

import (
	"context"
	"fmt"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/search"
)

// LegalSearchToolName is the well-known registry key for the hybrid legal
// search tool the Search team plans against.
const LegalSearchToolName = "legal_search"

// LegalSearchTool adapts search.HybridLegalSearch to the Tool contract.
type LegalSearchTool struct {
	hybrid *search.HybridLegalSearch
}

// NewLegalSearchTool wraps hybrid as a registry Tool.
func NewLegalSearchTool(hybrid *search.HybridLegalSearch) *LegalSearchTool {
	return &LegalSearchTool{hybrid: hybrid}
}

func (t *LegalSearchTool) Name() string { return LegalSearchToolName }

// Execute maps the tool's generic map[string]any params onto search.Params
// and flattens the resulting SearchRecords into the tool's generic record
// shape for TeamExecutor.PROCESS to fold into CollectedData.
func (t *LegalSearchTool) Execute(ctx context.Context, query string, params map[string]any) (Output, error) {
	sp := search.Params{}
	if v, ok := params["category"].(string); ok && v != "" {
		sp.Category = &v
	}
	if v, ok := params["doc_type"].(string); ok && v != "" {
		sp.DocType = &v
	}
	if v, ok := params["law_title"].(string); ok && v != "" {
		sp.LawTitle = &v
	}
	if v, ok := params["is_tenant_protection"].(bool); ok {
		sp.IsTenantProtection = &v
	}
	if v, ok := params["is_tax_related"].(bool); ok {
		sp.IsTaxRelated = &v
	}
	if v, ok := params["limit"].(int); ok {
		sp.Limit = v
	}

	result, err := t.hybrid.Search(ctx, query, sp)
	if err != nil {
		return Output{}, fmt.Errorf("legal_search: %w", err)
	}

	records := make([]map[string]any, 0, len(result.Data))
	for _, r := range result.Data {
		records = append(records, searchRecordToMap(r))
	}

	return Output{
		Status:     result.Status,
		Data:       records,
		Count:      result.Count,
		ToolName:   t.Name(),
		DataSource: string(result.DataSource),
	}, nil
}

func searchRecordToMap(r domain.SearchRecord) map[string]any {
	m := map[string]any{
		"doc_id":          r.DocID,
		"law_title":       r.LawTitle,
		"content":         r.Content,
		"category":        r.Category,
		"doc_type":        r.DocType,
		"relevance_score": r.RelevanceScore,
	}
	if r.ArticleNumber != nil {
		m["article_number"] = *r.ArticleNumber
	}
	if r.ArticleTitle != nil {
		m["article_title"] = *r.ArticleTitle
	}
	if r.TotalArticles != nil {
		m["total_articles"] = *r.TotalArticles
	}
	if r.EnforcementDate != nil {
		m["enforcement_date"] = *r.EnforcementDate
	}
	if r.LawNumber != nil {
		m["law_number"] = *r.LawNumber
	}
	if r.LastArticle != nil {
		m["last_article"] = *r.LastArticle
	}
	return m
}
