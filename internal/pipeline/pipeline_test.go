package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/encuestas/internal/engine"
	"github.com/law-makers/encuestas/internal/engine/static"
	"github.com/law-makers/encuestas/internal/extract"
	"github.com/law-makers/encuestas/internal/ratelimit"
	"github.com/law-makers/encuestas/internal/reqctx"
	"github.com/law-makers/encuestas/internal/store"
	"github.com/law-makers/encuestas/internal/testutil"
	"github.com/law-makers/encuestas/pkg/models"
)

var fixedTime = time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC)

func table(id string, rows ...[]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table id="%s"><thead><tr><th>h</th></tr></thead><tbody>`, id)
	for _, r := range rows {
		b.WriteString("<tr>")
		for _, c := range r {
			fmt.Fprintf(&b, "<td> %s </td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func page(tables ...string) string {
	return "<html><body>" + strings.Join(tables, "<p>spacer</p>") + "</body></html>"
}

var (
	candidateRow = []string{"65%", "Pollster A", "2024-05-01", "x", "63%", "12%", "5%"}
	partyRow     = []string{"60%", "Pollster C", "2024-05-02", "x", "18", "10", "1", "6", "5", "9", "48", "3"}
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(t *testing.T, srv *httptest.Server, dest Connector, opts ...Option) *Pipeline {
	t.Helper()
	f := static.New(ratelimit.NewHostLimiter(100, 10), srv.Client(), "Mozilla/5.0 test", nil)
	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	return New(f, dest, DefaultConfig(srv.URL), opts...)
}

func candidateRows(t *testing.T, db *sqlx.DB) [][]string {
	t.Helper()
	var got []struct {
		E, P, F, X, Y, Z string
	}
	require.NoError(t, db.Select(&got,
		"SELECT estimacion AS e, encuestadora AS p, fecha AS f, xg AS x, cs AS y, jam AS z FROM candidatos ORDER BY id"))
	out := make([][]string, len(got))
	for i, r := range got {
		out[i] = []string{r.E, r.P, r.F, r.X, r.Y, r.Z}
	}
	return out
}

func countRows(t *testing.T, db *sqlx.DB, tbl string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+tbl))
	return n
}

func TestRefreshCandidates_EndToEnd(t *testing.T) {
	desc, db := testutil.SetupSQLite(t)
	srv := serve(t, http.StatusOK, page(table("table_1", candidateRow), table("table_2", partyRow)))

	res, err := newPipeline(t, srv, desc).RefreshCandidates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Candidates, res.Variant)
	assert.Equal(t, "candidatos", res.Table)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, fixedTime, res.IngestedAt)
	assert.NotEmpty(t, res.RunID)

	want := [][]string{{"65%", "Pollster A", "2024-05-01", "63%", "12%", "5%"}}
	if diff := cmp.Diff(want, candidateRows(t, db)); diff != "" {
		t.Errorf("candidatos mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, countRows(t, db, "partidos"))
}

func TestRefreshParties_EndToEnd(t *testing.T) {
	desc, db := testutil.SetupSQLite(t)
	srv := serve(t, http.StatusOK, page(table("table_1", candidateRow), table("table_2", partyRow, partyRow)))

	res, err := newPipeline(t, srv, desc).RefreshParties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	var got []string
	require.NoError(t, db.Select(&got, "SELECT morena FROM partidos ORDER BY id"))
	assert.Equal(t, []string{"48", "48"}, got)
}

func TestRefresh_ReplacesPreviousSnapshot(t *testing.T) {
	desc, db := testutil.SetupSQLite(t)

	first := serve(t, http.StatusOK, page(table("table_1", candidateRow, candidateRow)))
	_, err := newPipeline(t, first, desc).RefreshCandidates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, countRows(t, db, "candidatos"))

	next := []string{"70%", "Pollster B", "2024-05-03", "x", "60%", "20%", "4%"}
	second := serve(t, http.StatusOK, page(table("table_1", next)))
	_, err = newPipeline(t, second, desc).RefreshCandidates(context.Background())
	require.NoError(t, err)

	want := [][]string{{"70%", "Pollster B", "2024-05-03", "60%", "20%", "4%"}}
	assert.Equal(t, want, candidateRows(t, db))
}

func TestRefresh_FailuresLeaveTableUntouched(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		stage  string
		target error
	}{
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   "down",
			stage:  StageFetch,
			target: engine.ErrBadStatus,
		},
		{
			name:   "anchor missing",
			status: http.StatusOK,
			body:   page(table("table_2", partyRow)),
			stage:  StageExtract,
			target: extract.ErrAnchorNotFound,
		},
		{
			name:   "short row",
			status: http.StatusOK,
			body:   page(table("table_1", candidateRow, []string{"65%", "Pollster A", "2024-05-01", "x", "63%"})),
			stage:  StageExtract,
			target: extract.ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, db := testutil.SetupSQLite(t)
			seed := serve(t, http.StatusOK, page(table("table_1", candidateRow)))
			_, err := newPipeline(t, seed, desc).RefreshCandidates(context.Background())
			require.NoError(t, err)

			srv := serve(t, tt.status, tt.body)
			_, err = newPipeline(t, srv, desc).RefreshCandidates(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var re *reqctx.RunError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.stage, re.Stage)
			assert.Equal(t, "candidates", re.Pipeline)

			assert.Equal(t, [][]string{{"65%", "Pollster A", "2024-05-01", "63%", "12%", "5%"}}, candidateRows(t, db))
		})
	}
}

func TestRefresh_ServerErrorIsRetryable(t *testing.T) {
	desc, _ := testutil.SetupSQLite(t)
	srv := serve(t, http.StatusBadGateway, "")

	_, err := newPipeline(t, srv, desc).RefreshCandidates(context.Background())
	var fe *engine.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Retryable())
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
}

func TestRefresh_ConnectFailure(t *testing.T) {
	srv := serve(t, http.StatusOK, page(table("table_1", candidateRow)))

	_, err := newPipeline(t, srv, store.Descriptor{Driver: "oracle"}).RefreshCandidates(context.Background())
	assert.ErrorIs(t, err, store.ErrConnect)

	var re *reqctx.RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, StageConnect, re.Stage)
}

func TestRefreshAll_IndependentVariants(t *testing.T) {
	desc, db := testutil.SetupSQLite(t)
	srv := serve(t, http.StatusOK, page(table("table_1", candidateRow)))

	results, err := newPipeline(t, srv, desc).RefreshAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrAnchorNotFound)

	require.Len(t, results, 1)
	assert.Equal(t, Candidates, results[0].Variant)
	assert.Equal(t, 1, countRows(t, db, "candidatos"))
	assert.Equal(t, 0, countRows(t, db, "partidos"))
}

func TestRefreshAll_Success(t *testing.T) {
	desc, db := testutil.SetupSQLite(t)
	srv := serve(t, http.StatusOK, page(table("table_1", candidateRow), table("table_2", partyRow)))

	var mu sync.Mutex
	progress := map[Variant]int{}
	p := newPipeline(t, srv, desc, WithProgress(func(v Variant, written, total int) {
		mu.Lock()
		defer mu.Unlock()
		progress[v] = written
	}))

	results, err := p.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].RunID, results[1].RunID)

	assert.Equal(t, 1, countRows(t, db, "candidatos"))
	assert.Equal(t, 1, countRows(t, db, "partidos"))
	assert.Equal(t, map[Variant]int{Candidates: 1, Parties: 1}, progress)
}

func TestRefresh_EmptyTableEmptiesDestination(t *testing.T) {
	desc, db := testutil.SetupSQLite(t)

	seed := serve(t, http.StatusOK, page(table("table_1", candidateRow)))
	_, err := newPipeline(t, seed, desc).RefreshCandidates(context.Background())
	require.NoError(t, err)

	empty := serve(t, http.StatusOK, page(table("table_1")))
	res, err := newPipeline(t, empty, desc).RefreshCandidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.Equal(t, 0, countRows(t, db, "candidatos"))
}

func TestPreview(t *testing.T) {
	srv := serve(t, http.StatusOK, page(table("table_1", candidateRow), table("table_2", partyRow)))
	p := newPipeline(t, srv, store.Descriptor{Driver: "oracle"})

	snap, err := p.Preview(context.Background(), Candidates)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateHeaders, snap.Headers)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, models.CandidateEstimate{
		Estimation: "65%", Pollster: "Pollster A", Date: "2024-05-01",
		CandidateX: "63%", CandidateY: "12%", CandidateZ: "5%", IngestedAt: fixedTime,
	}, snap.Records[0])

	snap, err = p.Preview(context.Background(), Parties)
	require.NoError(t, err)
	assert.Equal(t, models.PartyHeaders, snap.Headers)
	assert.Equal(t, []string{"60%", "Pollster C", "2024-05-02", "18", "10", "1", "6", "5", "9", "48", "3"}, snap.Records[0].Fields())
}

func TestSourceTable(t *testing.T) {
	srv := serve(t, http.StatusOK, page(table("table_1", candidateRow)))
	p := newPipeline(t, srv, store.Descriptor{})

	html, err := p.SourceTable(context.Background(), Candidates)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, `<table id="table_1">`), html)
	assert.Contains(t, html, "Pollster A")

	_, err = p.SourceTable(context.Background(), Parties)
	assert.True(t, errors.Is(err, extract.ErrAnchorNotFound))
}

func TestParseVariant(t *testing.T) {
	tests := map[string]Variant{
		"candidates": Candidates,
		"Candidatos": Candidates,
		" parties ":  Parties,
		"partidos":   Parties,
	}
	for in, want := range tests {
		got, err := ParseVariant(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseVariant("senado")
	assert.Error(t, err)
}
