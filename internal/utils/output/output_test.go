package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/encuestas/pkg/models"
)

var sample = []models.Record{
	models.CandidateEstimate{
		Estimation: "65%", Pollster: "Pollster A", Date: "2024-05-01",
		CandidateX: "63%", CandidateY: "12%", CandidateZ: "5%",
		IngestedAt: time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC),
	},
	models.CandidateEstimate{
		Estimation: "70%", Pollster: "Pollster, B", Date: "2024-05-03",
		CandidateX: "60%", CandidateY: "20%", CandidateZ: "4%",
	},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, models.CandidateHeaders, sample))

	want := "Estimacion,Encuestadora,Fecha,XG,CS,JAM\n" +
		"65%,Pollster A,2024-05-01,63%,12%,5%\n" +
		"70%,\"Pollster, B\",2024-05-03,60%,20%,4%\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample[:1]))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Pollster A", got[0]["pollster"])
	assert.Equal(t, "63%", got[0]["candidate_x"])
	assert.Equal(t, "2024-05-02T06:00:00Z", got[0]["ingested_at"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, models.CandidateHeaders, sample)

	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "encuestadora")
	assert.Contains(t, out, "Pollster A")
	assert.Contains(t, out, "63%")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.csv", "out.json", "out.md"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, models.CandidateHeaders, sample), name)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Pollster A", name)
	}

	md, err := os.ReadFile(filepath.Join(dir, "out.md"))
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(string(md)), "| estimacion | encuestadora |")

	assert.Error(t, Save(filepath.Join(dir, "out.xlsx"), models.CandidateHeaders, sample))
}

func TestCleanHTML(t *testing.T) {
	in := `<table id="table_1" class="x" style="y"><tbody><tr><td colspan="2" onclick="z">a<script>bad()</script></td></tr></tbody></table>`
	out, err := CleanHTML(in)
	require.NoError(t, err)

	assert.Contains(t, out, `id="table_1"`)
	assert.Contains(t, out, `colspan="2"`)
	assert.NotContains(t, out, "class=")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "bad()")
}

func TestTableMarkdown(t *testing.T) {
	in := `<table id="table_1"><thead><tr><th>Estimacion</th><th>Encuestadora</th></tr></thead>` +
		`<tbody><tr><td>65%</td><td>Pollster A</td></tr></tbody></table>`
	out, err := TableMarkdown(in)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3, out)
	assert.True(t, strings.HasPrefix(lines[0], "|"), out)
	assert.Contains(t, lines[0], "Estimacion")
	assert.Contains(t, out, "Pollster A")
}
