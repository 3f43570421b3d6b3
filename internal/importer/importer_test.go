package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV_SemicolonPortugueseHeaders(t *testing.T) {
	csv := "Data;Time A;Time B;Gols A;Gols B\r\n" +
		"2025-03-01;Azul;Branco;3;1\r\n" +
		";Preto;Azul;0;0\r\n"

	rows, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{Line: 2, Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), TeamAName: "Azul", TeamBName: "Branco", GoalsA: 3, GoalsB: 1}, rows[0])
	assert.True(t, rows[1].Date.IsZero(), "empty date stays unknown")
	assert.Equal(t, 3, rows[1].Line)
}

func TestParseCSV_CommaWithResultColumn(t *testing.T) {
	csv := "date,mandante,visitante,placar\n" +
		"01/02/2024,Azul,Branco,2-2\n" +
		"\n" +
		"2024-02-08,Branco,Azul,4 x 1\n"

	rows, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, time.February, rows[0].Date.Month())
	assert.Equal(t, 2, rows[0].GoalsA)
	assert.Equal(t, 2, rows[0].GoalsB)
	assert.Equal(t, 4, rows[1].GoalsA)
	assert.Equal(t, 1, rows[1].GoalsB)
	assert.Equal(t, 4, rows[1].Line, "blank lines keep source numbering")
}

func TestParseCSV_RowErrors(t *testing.T) {
	csv := "data,time_a,time_b,gols_a,gols_b\n" +
		"ontem,Azul,Branco,1,0\n" +
		"2024-01-01,Azul,azul,1,0\n" +
		"2024-01-01,Azul,Branco,-1,x\n"

	_, err := ParseCSV(strings.NewReader(csv))
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)

	var got []string
	for _, re := range perr.Rows {
		got = append(got, re.Column)
	}
	assert.Equal(t, []string{colDate, colTeamB, colGoalsA, colGoalsB}, got)
	assert.Equal(t, 2, perr.Rows[0].Line)
	assert.Equal(t, 4, perr.Rows[3].Line)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseCSV_MissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("data,time_a,gols_a\n2024-01-01,Azul,1\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Len(t, perr.Rows, 2)
	assert.Equal(t, colTeamB, perr.Rows[0].Column)
	assert.Equal(t, colResult, perr.Rows[1].Column)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ParseCSV(strings.NewReader("time_a,time_b,placar\n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseXLSX_Basic(t *testing.T) {
	f := excelize.NewFile()
	sh := f.GetSheetName(0)
	header := []string{"Data", "Mandante", "Visitante", "Placar", "Observações"}
	data := []string{"2025-10-18", "Azul", "Branco", "3-1", "chuva"}
	require.NoError(t, f.SetSheetRow(sh, "A1", &header))
	require.NoError(t, f.SetSheetRow(sh, "A2", &data))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse("historico.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Azul", rows[0].TeamAName)
	assert.Equal(t, "Branco", rows[0].TeamBName)
	assert.Equal(t, 3, rows[0].GoalsA)
	assert.Equal(t, 1, rows[0].GoalsB)
	assert.Equal(t, 2025, rows[0].Date.Year())
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse("jogos.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "golsa", foldKey(" Gols_A "))
	assert.Equal(t, "observacoes", foldKey("Observações"))
	assert.Equal(t, "timeb", foldKey("Time B |"))
}

// sizedCSV builds a CSV of exactly size bytes whose rows all read
// "Azul,Branco,1-12"; the header carries an ignored padding column to hit the size.
func sizedCSV(t *testing.T, size int) (string, int) {
	t.Helper()
	const (
		base = "time_a,time_b,placar,obs\n"
		row  = "Azul,Branco,1-12\n"
	)
	n := (size - len(base)) / len(row)
	pad := size - len(base) - n*len(row)
	var b strings.Builder
	b.Grow(size)
	b.WriteString("time_a,time_b,placar,obs" + strings.Repeat("x", pad) + "\n")
	for i := 0; i < n; i++ {
		b.WriteString(row)
	}
	require.Equal(t, size, b.Len())
	return b.String(), n
}

func TestParse_AtSizeLimit(t *testing.T) {
	csv, n := sizedCSV(t, MaxFileSize)

	rows, err := Parse("historico.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, n)
	last := rows[len(rows)-1]
	assert.Equal(t, 1, last.GoalsA)
	assert.Equal(t, 12, last.GoalsB)
}

func TestParse_OverSizeLimitIsRejected(t *testing.T) {
	for _, size := range []int{MaxFileSize + 1, MaxFileSize + 512<<10, MaxFileSize + 1<<20 - 1} {
		csv, _ := sizedCSV(t, size)
		rows, err := Parse("historico.csv", strings.NewReader(csv))
		assert.ErrorIs(t, err, ErrTooLarge, "size %d", size)
		assert.Nil(t, rows)
	}

	_, err := Parse("historico.xlsx", strings.NewReader(strings.Repeat("x", MaxFileSize+1)))
	assert.ErrorIs(t, err, ErrTooLarge)
}
