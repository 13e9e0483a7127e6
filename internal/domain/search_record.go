package domain

// SearchRecord is one result of a HybridLegalSearch call. DataSource
// records which retrieval strategy produced it (useful for P2/P8
// assertions in tests).
type SearchRecord struct {
	DocID           string
	LawTitle        string
	ArticleNumber   *string
	ArticleTitle    *string
	Content         string
	Category        string
	DocType         string
	RelevanceScore  float64

	// Enrichment fields, populated by the enrichment join. Nil/zero when
	// enrichment did not find a matching law.
	TotalArticles    *int
	EnforcementDate  *string
	LawNumber        *string
	LastArticle      *string
}

// DataSource is the closed set of HybridLegalSearch result provenances.
type DataSource string

const (
	DataSourceDirect   DataSource = "direct"
	DataSourceSemantic DataSource = "semantic"
	DataSourceNotFound DataSource = "not_found"
)

// SearchResult is the full output contract of HybridLegalSearch.Search.
type SearchResult struct {
	Status     string
	Data       []SearchRecord
	Count      int
	DataSource DataSource
	Query      string
}
