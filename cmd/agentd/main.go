// Command agentd is a minimal example process wiring the engine's
// capability interfaces to their in-memory reference implementations and
// running one turn end to end. Grounded on the teacher's
// core/lynx.Lynx.Start lifecycle logging style (log/slog banners around
// the run).
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability/fakeclient"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/config"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/memory"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/metadata"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/planning"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/search"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/supervisor"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/team"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/toolregistry"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/vectorindex"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	slog.Info("-----------------")
	slog.Info("-------agentd start--------")
	slog.Info("-----------------")

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
			Content: "임대인은 임대차 기간 중 경제사정의 변동으로 인하여...",
			Metadata: map[string]any{
				"law_title": "주택임대차보호법",
				"category":  "임대차",
				"doc_type":  "법령",
			},
			Embedding: []float64{0.1, 0.2, 0.3, 0.4},
		},
	})

	embedder := fakeclient.NewEmbedder(4)
	hybrid := search.New(catalog, index, embedder)
	registry := toolregistry.New(toolregistry.NewLegalSearchTool(hybrid))

	llm := fakeclient.NewLLMClient(nil, `{"intent_type":"LEGAL_CONSULT","confidence":0.9,"is_in_scope":true}`)
	messages := fakeclient.NewMessageStore()
	sink := fakeclient.NewProgressSink()

	sessionMemory, err := memory.New(messages, 10)
	if err != nil {
		slog.Error("build session memory", "error", err)
		os.Exit(1)
	}

	planner := planning.New(llm)

	teams := map[domain.TeamName]team.TeamExecutor{
		domain.TeamSearch:   team.NewSearchExecutor(registry, llm),
		domain.TeamAnalysis: team.NewStubExecutor(domain.TeamAnalysis, "analysis team not implemented in this build"),
		domain.TeamDocument: team.NewStubExecutor(domain.TeamDocument, "document team not implemented in this build"),
		domain.TeamReview:   team.NewStubExecutor(domain.TeamReview, "review team not implemented in this build"),
	}

	sup, err := supervisor.New(config.FromEnv(), planner, sessionMemory, llm, sink, teams)
	if err != nil {
		slog.Error("build supervisor", "error", err)
		os.Exit(1)
	}

	query := domain.Query{
		RawText:   "주택임대차보호법 제7조가 뭐야?",
		SessionID: domain.SessionID("demo-session"),
		RequestID: domain.NewRequestID(),
	}

	state, err := sup.ProcessQuery(context.Background(), query)
	if err != nil {
		slog.Error("process query", "error", err)
		os.Exit(1)
	}

	slog.Info("turn complete",
		"status", state.Status,
		"response", state.FinalResponse,
		"sources", state.AggregatedResults.Sources,
	)

	slog.Info("-----------------")
	slog.Info("-------agentd stop--------")
	slog.Info("-----------------")
}
