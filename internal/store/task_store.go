package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/freeman-jiang/resonant/internal/link"
)

// TaskStore is the durable crawl queue.
type TaskStore struct {
	pool Pool
}

// NewTaskStore constructs a TaskStore over an existing pool.
func NewTaskStore(pool Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

const enqueueSQL = `
INSERT INTO crawl_tasks (url, parent_url, text, depth, status, boost)
VALUES ($1, NULLIF($2, ''), $3, $4, 'PENDING', $5)
ON CONFLICT (url) DO NOTHING`

// Enqueue inserts tasks for the given links as PENDING, skipping any URL
// that already has a task. Duplicate submissions are a silent no-op; the
// returned count covers rows actually inserted.
func (s *TaskStore) Enqueue(ctx context.Context, links []link.Link) (int64, error) {
	return s.enqueue(ctx, links, 0)
}

// EnqueueBoosted is Enqueue with a priority boost, used to push curated
// seeds ahead of same-depth discoveries.
func (s *TaskStore) EnqueueBoosted(ctx context.Context, links []link.Link, boost int) (int64, error) {
	return s.enqueue(ctx, links, boost)
}

func (s *TaskStore) enqueue(ctx context.Context, links []link.Link, boost int) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(enqueueSQL, l.URL, l.ParentURL, l.Text, l.Depth, boost)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for _, l := range links {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("enqueue task %s: %w", l.URL, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

const claimSQL = `
UPDATE crawl_tasks SET status = 'PROCESSING'
WHERE id = (
	SELECT id FROM crawl_tasks
	WHERE status = 'PENDING'
	ORDER BY depth ASC, boost DESC, id ASC
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
RETURNING id, url, COALESCE(parent_url, ''), text, depth, status, boost, created_at`

// ClaimNext atomically claims the next PENDING task, ordered by
// (depth, boost DESC, id) for approximately breadth-first exploration.
// The row lock skips tasks already being claimed by another worker, so
// each task is handed to exactly one caller. Returns (nil, nil) when the
// queue has no PENDING tasks.
func (s *TaskStore) ClaimNext(ctx context.Context) (*CrawlTask, error) {
	var t CrawlTask
	err := s.pool.QueryRow(ctx, claimSQL).Scan(
		&t.ID, &t.URL, &t.ParentURL, &t.Text, &t.Depth, &t.Status, &t.Boost, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	return &t, nil
}

// Complete marks a claimed task as successfully crawled.
func (s *TaskStore) Complete(ctx context.Context, task *CrawlTask) error {
	return s.setStatus(ctx, task, TaskCompleted)
}

// Fail marks a claimed task as failed (fetch or extraction error).
func (s *TaskStore) Fail(ctx context.Context, task *CrawlTask) error {
	return s.setStatus(ctx, task, TaskFailed)
}

// FilterOut marks a claimed task as reachable but below content quality.
func (s *TaskStore) FilterOut(ctx context.Context, task *CrawlTask) error {
	return s.setStatus(ctx, task, TaskFiltered)
}

func (s *TaskStore) setStatus(ctx context.Context, task *CrawlTask, status TaskStatus) error {
	if _, err := s.pool.Exec(ctx, `UPDATE crawl_tasks SET status = $1 WHERE id = $2`, string(status), task.ID); err != nil {
		return fmt.Errorf("set task %d to %s: %w", task.ID, status, err)
	}
	task.Status = status
	return nil
}

// ResetProcessing returns every PROCESSING task to PENDING. Crash
// recovery: a worker that dies mid-task leaves its claim stuck, and this
// maintenance operation releases them. Run out-of-band, never by workers.
func (s *TaskStore) ResetProcessing(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE crawl_tasks SET status = 'PENDING' WHERE status = 'PROCESSING'`)
	if err != nil {
		return 0, fmt.Errorf("reset processing tasks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StatusCounts reports how many tasks sit in each status, the operator's
// main progress signal.
func (s *TaskStore) StatusCounts(ctx context.Context) (map[TaskStatus]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM crawl_tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count task statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[TaskStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[TaskStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}
