package model

import (
	"math"
	"sort"
	"strings"
	"time"
)

// KeywordNode is a single keyword discovered during expansion.
//
// Design decision: The expansion result is deliberately a tree, not a general
// graph. A keyword reachable via several parents keeps only the parent and
// depth of its first discovery; later discoveries are dropped by the visited
// set. This keeps runs reproducible and exports simple.
type KeywordNode struct {
	// Keyword is the discovered text, in the casing returned by the
	// suggestion API.
	Keyword string `json:"keyword"`

	// Depth is the number of expansion hops from a seed. Seeds are depth 0.
	// Invariant: Depth == parent's depth + 1.
	Depth int `json:"depth"`

	// Parent is the keyword that was expanded to discover this one.
	// Empty for seeds.
	Parent string `json:"parent_keyword,omitempty"`

	// Relevance is the suggestion API's rank weight at discovery time.
	// Never recomputed afterwards.
	Relevance int `json:"relevance"`

	// Type describes the suggestion kind reported by the API.
	// The autocomplete endpoint reports plain queries as "QUERY".
	Type string `json:"type,omitempty"`

	// SourceQuery is the exact prefix query that produced this suggestion,
	// including any modifier (e.g. "cat a", "how cat").
	SourceQuery string `json:"source_query,omitempty"`

	// DiscoveredAt is the discovery timestamp.
	DiscoveredAt time.Time `json:"scraped_at"`
}

// WordCount returns the number of whitespace-separated words in the keyword.
func (k *KeywordNode) WordCount() int {
	return len(strings.Fields(k.Keyword))
}

// SortKeywordNodes orders nodes by (depth, discovery time) ascending.
// Discovery order within a depth is the tie-break because sibling tasks
// complete in arbitrary order under concurrency.
func SortKeywordNodes(nodes []KeywordNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth < nodes[j].Depth
		}
		return nodes[i].DiscoveredAt.Before(nodes[j].DiscoveredAt)
	})
}

// KeywordStats summarizes a finished expansion run.
type KeywordStats struct {
	// TotalKeywords is the number of keyword nodes in the forest,
	// seed roots included.
	TotalKeywords int `json:"total_keywords"`

	// AverageRelevance is the mean relevance across all nodes.
	AverageRelevance float64 `json:"average_relevance"`

	// AverageLength is the mean keyword length in characters.
	AverageLength float64 `json:"average_keyword_length"`

	// AverageWordCount is the mean number of words per keyword.
	AverageWordCount float64 `json:"average_word_count"`

	// DepthDistribution maps depth to the number of nodes at that depth.
	DepthDistribution map[int]int `json:"depth_distribution"`

	// TopKeywords holds up to 20 nodes ordered by relevance descending.
	TopKeywords []KeywordNode `json:"top_keywords"`

	// LongTailPercentage is the share of keywords with three or more words.
	LongTailPercentage float64 `json:"long_tail_percentage"`
}

// topKeywordCount bounds the TopKeywords slice in KeywordStats.
const topKeywordCount = 20

// ComputeKeywordStats derives summary statistics from a keyword set.
// An empty input produces a zero-valued stats block with a non-nil
// depth distribution.
func ComputeKeywordStats(nodes []KeywordNode) KeywordStats {
	stats := KeywordStats{
		DepthDistribution: make(map[int]int),
	}
	if len(nodes) == 0 {
		return stats
	}

	var relevanceSum, lengthSum, wordSum, longTail int
	for i := range nodes {
		n := &nodes[i]
		relevanceSum += n.Relevance
		lengthSum += len(n.Keyword)
		wc := n.WordCount()
		wordSum += wc
		if wc >= 3 {
			longTail++
		}
		stats.DepthDistribution[n.Depth]++
	}

	total := len(nodes)
	stats.TotalKeywords = total
	stats.AverageRelevance = round2(float64(relevanceSum) / float64(total))
	stats.AverageLength = round1(float64(lengthSum) / float64(total))
	stats.AverageWordCount = round1(float64(wordSum) / float64(total))
	stats.LongTailPercentage = round1(float64(longTail) / float64(total) * 100)

	top := make([]KeywordNode, len(nodes))
	copy(top, nodes)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Relevance > top[j].Relevance
	})
	if len(top) > topKeywordCount {
		top = top[:topKeywordCount]
	}
	stats.TopKeywords = top

	return stats
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
