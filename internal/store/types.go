package store

import (
	"fmt"
	"time"

	"github.com/zeebo/xxh3"
)

// TaskStatus is the lifecycle state of a crawl task.
type TaskStatus string

// Task status values persisted in the crawl_tasks table. Tasks are created
// PENDING, claimed into PROCESSING, and finish in exactly one of the
// terminal states.
const (
	TaskPending    TaskStatus = "PENDING"
	TaskProcessing TaskStatus = "PROCESSING"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskFailed     TaskStatus = "FAILED"
	TaskFiltered   TaskStatus = "FILTERED"
)

// CrawlTask is one durable queue entry, keyed by unique URL.
type CrawlTask struct {
	ID        int64
	URL       string
	ParentURL string
	Text      string
	Depth     int
	Status    TaskStatus
	Boost     int
	CreatedAt time.Time
}

// Page is one stored corpus document, deduplicated by content hash.
// PageRank is the only field mutated after creation, exclusively by the
// trust propagation engine.
type Page struct {
	ID           int64
	URL          string
	ParentURL    string
	ContentHash  string
	Title        string
	Date         string
	Author       string
	Content      string
	OutboundURLs []string
	Depth        int
	PageRank     float64
	CreatedAt    time.Time
}

// GraphPage is the slim projection of a Page used to build the link graph.
type GraphPage struct {
	ID           int64
	URL          string
	OutboundURLs []string
	Depth        int
}

// PageRankUpdate carries one computed score back to the pages table.
type PageRankUpdate struct {
	ID    int64
	Score float64
}

// HashContent produces the 128-bit xxh3 content hash used for page
// deduplication.
func HashContent(content string) string {
	h := xxh3.HashString128(content)
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}
