// Package expander grows a keyword tree breadth-first through the
// autocomplete suggestion API. Each round expands every keyword
// discovered in the previous round, one suggestion query per modifier
// variant, and drains the scheduler before moving a depth deeper.
package expander

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/serpharvest/serpharvest/internal/config"
	"github.com/serpharvest/serpharvest/internal/fetcher"
	"github.com/serpharvest/serpharvest/internal/model"
	"github.com/serpharvest/serpharvest/internal/suggest"
)

// alphabet suffixes one letter per variant ("cat a" .. "cat z").
const alphabet = "abcdefghijklmnopqrstuvwxyz"

// questionWords are prepended ("how cat").
var questionWords = []string{
	"how", "what", "why", "when", "where", "who", "which", "are", "is", "can", "will",
}

// prepositionWords are appended ("cat for").
var prepositionWords = []string{
	"for", "with", "without", "near", "in", "at", "to", "from", "vs", "versus",
}

// Submitter enqueues suggestion fetch tasks.
// *scheduler.Scheduler satisfies it.
type Submitter interface {
	Submit(task *model.FetchTask) bool
	Drain(ctx context.Context) error
}

// Expander discovers keywords by replaying what the autocomplete
// endpoint would offer a user typing each query variant.
type Expander struct {
	sched     Submitter
	client    *suggest.Client
	modifiers []config.Modifier
	maxDepth  int
	maxNodes  int
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	known     map[string]struct{}
	nodes     []model.KeywordNode
	seedCount int
	frontier  []frontierItem
}

type frontierItem struct {
	keyword string
	depth   int
}

// New builds an Expander. maxNodes caps discovered keywords (seeds
// excluded); zero or negative means unlimited.
func New(sched Submitter, client *suggest.Client, modifiers []config.Modifier, maxDepth, maxNodes int, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		sched:     sched,
		client:    client,
		modifiers: modifiers,
		maxDepth:  maxDepth,
		maxNodes:  maxNodes,
		logger:    logger,
		now:       time.Now,
		known:     make(map[string]struct{}),
	}
}

// HandleSuggest consumes one completed suggestion fetch. Wire it into
// the scheduler's handler for suggest tasks.
//
// A suggestion already known keeps the parent and depth of its first
// discovery; later sightings are dropped.
func (e *Expander) HandleSuggest(_ context.Context, task *model.FetchTask, res *fetcher.Result) error {
	suggestions := e.client.Parse(res.Body)

	e.mu.Lock()
	defer e.mu.Unlock()

	depth := task.Depth + 1
	parentKey := model.NormalizeKeyword(task.Parent)
	for _, s := range suggestions {
		key := model.NormalizeKeyword(s.Keyword)
		if key == "" || key == parentKey {
			continue
		}
		if _, ok := e.known[key]; ok {
			continue
		}
		if e.maxNodes > 0 && len(e.nodes)-e.seedCount >= e.maxNodes {
			return nil
		}
		e.known[key] = struct{}{}
		e.nodes = append(e.nodes, model.KeywordNode{
			Keyword:      s.Keyword,
			Depth:        depth,
			Parent:       task.Parent,
			Relevance:    s.Relevance,
			Type:         "QUERY",
			SourceQuery:  task.Keyword,
			DiscoveredAt: e.now(),
		})
		e.frontier = append(e.frontier, frontierItem{keyword: s.Keyword, depth: depth})
	}
	return nil
}

// Expand runs the breadth-first expansion from the seeds and returns
// the keyword forest ordered by depth and discovery time. Each accepted
// seed appears as a depth-0 root with no parent; discovered keywords
// hang off their first-discovery parent.
//
// The scheduler must already be running; Expand only submits and drains.
func (e *Expander) Expand(ctx context.Context, seeds []string) ([]model.KeywordNode, error) {
	e.mu.Lock()
	current := make([]frontierItem, 0, len(seeds))
	for _, seed := range seeds {
		key := model.NormalizeKeyword(seed)
		if key == "" {
			continue
		}
		if _, ok := e.known[key]; ok {
			continue
		}
		e.known[key] = struct{}{}
		e.seedCount++
		e.nodes = append(e.nodes, model.KeywordNode{
			Keyword:      seed,
			Depth:        0,
			Type:         "QUERY",
			DiscoveredAt: e.now(),
		})
		current = append(current, frontierItem{keyword: seed, depth: 0})
	}
	e.mu.Unlock()

	for round := 0; len(current) > 0; round++ {
		submitted := 0
		for _, item := range current {
			if item.depth >= e.maxDepth {
				continue
			}
			if e.full() {
				break
			}
			for _, query := range e.variants(item.keyword) {
				if e.sched.Submit(&model.FetchTask{
					Keyword: query,
					Purpose: model.PurposeSuggest,
					Depth:   item.depth,
					Parent:  item.keyword,
				}) {
					submitted++
				}
			}
		}

		e.logger.Info("expansion round submitted",
			"round", round,
			"frontier", len(current),
			"queries", submitted,
		)
		if submitted == 0 {
			break
		}

		if err := e.sched.Drain(ctx); err != nil {
			return e.Nodes(), fmt.Errorf("expansion interrupted: %w", err)
		}

		e.mu.Lock()
		current = e.frontier
		e.frontier = nil
		e.mu.Unlock()
	}

	return e.Nodes(), nil
}

// Nodes returns a sorted copy of the nodes discovered so far.
func (e *Expander) Nodes() []model.KeywordNode {
	e.mu.Lock()
	out := make([]model.KeywordNode, len(e.nodes))
	copy(out, e.nodes)
	e.mu.Unlock()

	model.SortKeywordNodes(out)
	return out
}

// Stats summarizes the expansion so far.
func (e *Expander) Stats() model.KeywordStats {
	return model.ComputeKeywordStats(e.Nodes())
}

// full reports whether the node cap is reached. Seed roots do not
// count against the cap.
func (e *Expander) full() bool {
	if e.maxNodes <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)-e.seedCount >= e.maxNodes
}

// variants returns the suggestion queries for one keyword: the keyword
// itself plus one query per enabled modifier word.
func (e *Expander) variants(keyword string) []string {
	queries := []string{keyword}
	for _, m := range e.modifiers {
		switch m {
		case config.ModifierAlphabet:
			for _, c := range alphabet {
				queries = append(queries, fmt.Sprintf("%s %c", keyword, c))
			}
		case config.ModifierQuestions:
			for _, w := range questionWords {
				queries = append(queries, fmt.Sprintf("%s %s", w, keyword))
			}
		case config.ModifierPrepositions:
			for _, w := range prepositionWords {
				queries = append(queries, fmt.Sprintf("%s %s", keyword, w))
			}
		}
	}
	return queries
}
