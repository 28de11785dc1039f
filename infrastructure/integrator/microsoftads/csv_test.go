package microsoftads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportCSV(t *testing.T) {
	t.Run("ignora preâmbulo e rodapé", func(t *testing.T) {
		rows, err := parseReportCSV([]byte(sampleReport))

		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "Campanha A", rows[0].CampaignName)
		assert.Equal(t, int64(1000), rows[0].Impressions)
		assert.Equal(t, int64(50), rows[0].Clicks)
		assert.Equal(t, 2.0, rows[0].Spend)

		assert.Equal(t, "Campanha B", rows[1].CampaignName)
		assert.Equal(t, int64(2000), rows[1].Impressions)
	})

	t.Run("colunas fora de ordem", func(t *testing.T) {
		report := "\"Spend\",\"CampaignName\",\"Clicks\",\"Impressions\"\n" +
			"\"7.50\",\"Campanha C\",\"10\",\"500\"\n"

		rows, err := parseReportCSV([]byte(report))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Campanha C", rows[0].CampaignName)
		assert.Equal(t, int64(500), rows[0].Impressions)
		assert.Equal(t, int64(10), rows[0].Clicks)
		assert.Equal(t, 7.5, rows[0].Spend)
	})

	t.Run("spend com símbolo de moeda", func(t *testing.T) {
		report := "\"CampaignName\",\"Impressions\",\"Clicks\",\"Spend\"\n" +
			"\"Campanha D\",\"100\",\"5\",\"$12.34\"\n"

		rows, err := parseReportCSV([]byte(report))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 12.34, rows[0].Spend)
	})

	t.Run("linhas CRLF", func(t *testing.T) {
		report := "\"CampaignName\",\"Impressions\",\"Clicks\",\"Spend\"\r\n" +
			"\"Campanha E\",\"100\",\"5\",\"1.00\"\r\n"

		rows, err := parseReportCSV([]byte(report))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Campanha E", rows[0].CampaignName)
	})

	t.Run("parada na primeira linha em branco", func(t *testing.T) {
		report := "\"CampaignName\",\"Impressions\",\"Clicks\",\"Spend\"\n" +
			"\"Campanha F\",\"100\",\"5\",\"1.00\"\n" +
			"\n" +
			"\"Campanha fantasma\",\"999\",\"99\",\"9.99\"\n"

		rows, err := parseReportCSV([]byte(report))

		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("sem cabeçalho", func(t *testing.T) {
		_, err := parseReportCSV([]byte("\"Report Name: X\"\n\"Report Time: Y\"\n"))
		require.Error(t, err)
	})

	t.Run("relatório vazio após o cabeçalho", func(t *testing.T) {
		rows, err := parseReportCSV([]byte("\"CampaignName\",\"Impressions\",\"Clicks\",\"Spend\"\n"))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
