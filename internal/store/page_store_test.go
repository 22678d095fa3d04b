package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/freeman-jiang/resonant/internal/extract"
	"github.com/freeman-jiang/resonant/internal/link"
)

func newMockPageStore(t *testing.T) (pgxmock.PgxPoolIface, *PageStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPageStore(mock)
}

func sampleResult() *extract.Result {
	return &extract.Result{
		Link:    link.Link{URL: "https://a.com/post", ParentURL: "https://root.com", Depth: 1},
		Title:   "Post",
		Author:  "Someone",
		Date:    "2023-09-01T00:00:00Z",
		Content: "body text",
		Outbound: []link.Link{
			{URL: "https://b.com/x", ParentURL: "https://a.com/post", Depth: 2},
		},
	}
}

func TestStorePage_InsertsRow(t *testing.T) {
	t.Parallel()

	mock, s := newMockPageStore(t)
	res := sampleResult()
	now := time.Unix(1700000000, 0).UTC()

	rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now)
	mock.ExpectQuery("INSERT INTO pages").
		WithArgs(
			"https://a.com/post",
			"https://root.com",
			HashContent("body text"),
			"Post",
			"2023-09-01T00:00:00Z",
			"Someone",
			"body text",
			[]string{"https://b.com/x"},
			1,
		).
		WillReturnRows(rows)

	page, err := s.StorePage(context.Background(), 1, res)
	require.NoError(t, err)
	require.NotNil(t, page)
	require.EqualValues(t, 42, page.ID)
	require.Equal(t, []string{"https://b.com/x"}, page.OutboundURLs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorePage_DuplicateContentHashIsNoOp(t *testing.T) {
	t.Parallel()

	mock, s := newMockPageStore(t)
	mock.ExpectQuery("INSERT INTO pages").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(pgx.ErrNoRows)

	page, err := s.StorePage(context.Background(), 0, sampleResult())
	require.NoError(t, err)
	require.Nil(t, page)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPagesForGraph(t *testing.T) {
	t.Parallel()

	mock, s := newMockPageStore(t)
	rows := pgxmock.NewRows([]string{"id", "url", "outbound_urls", "depth"}).
		AddRow(int64(1), "https://a.com/x", []string{"https://b.com/y"}, 0).
		AddRow(int64(2), "https://b.com/y", []string{}, 1)
	mock.ExpectQuery("SELECT id, url, outbound_urls, depth FROM pages").WillReturnRows(rows)

	pages, err := s.PagesForGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "https://a.com/x", pages[0].URL)
	require.Equal(t, []string{"https://b.com/y"}, pages[0].OutboundURLs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePageRanks(t *testing.T) {
	t.Parallel()

	mock, s := newMockPageStore(t)
	mock.ExpectExec("UPDATE pages SET page_rank").
		WithArgs(1.5, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE pages SET page_rank").
		WithArgs(0.25, int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdatePageRanks(context.Background(), []PageRankUpdate{
		{ID: 1, Score: 1.5},
		{ID: 2, Score: 0.25},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHashContent_StableAndDistinct(t *testing.T) {
	t.Parallel()

	require.Equal(t, HashContent("same"), HashContent("same"))
	require.NotEqual(t, HashContent("same"), HashContent("different"))
	require.Len(t, HashContent("anything"), 32)
}
