package microsoftads

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

type fakeReportClient struct {
	submitID      string
	submitErr     error
	pollResults   []*PollResult
	pollErrs      []error
	pollCalls     int
	downloadData  []byte
	downloadErr   error
	downloadCalls int
}

func (f *fakeReportClient) SubmitReport(ctx context.Context, auth AuthContext, startDate, endDate string) (string, error) {
	return f.submitID, f.submitErr
}

func (f *fakeReportClient) PollReport(ctx context.Context, auth AuthContext, reportRequestID string) (*PollResult, error) {
	call := f.pollCalls
	f.pollCalls++

	if call < len(f.pollErrs) && f.pollErrs[call] != nil {
		return nil, f.pollErrs[call]
	}
	if call < len(f.pollResults) {
		return f.pollResults[call], nil
	}
	return &PollResult{Status: "Pending"}, nil
}

func (f *fakeReportClient) DownloadReport(ctx context.Context, downloadURL string) ([]byte, error) {
	f.downloadCalls++
	return f.downloadData, f.downloadErr
}

func (f *fakeReportClient) CountAccounts(ctx context.Context, auth AuthContext) (int, error) {
	return 0, nil
}

func testConfig() config.MicrosoftAds {
	return config.MicrosoftAds{
		ReportPollSeconds:  0,
		ReportMaxPollCount: 12,
	}
}

// zipWithCSV monta em memória o zip que o endpoint de download devolveria
func zipWithCSV(t *testing.T, name, content string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	entry, err := writer.Create(name)
	require.NoError(t, err)
	_, err = entry.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf.Bytes()
}

const sampleReport = "\"Report Name: Campaign Performance\"\n" +
	"\"Report Time: 1/1/2025 - 1/31/2025\"\n" +
	"\n" +
	"\"CampaignName\",\"Impressions\",\"Clicks\",\"Spend\"\n" +
	"\"Campanha A\",\"1000\",\"50\",\"2.00\"\n" +
	"\"Campanha B\",\"2000\",\"100\",\"3.00\"\n" +
	"\n" +
	"\"©2025 Microsoft Corporation. All rights reserved.\"\n"

func TestRunMissingReportRequestID(t *testing.T) {
	client := &fakeReportClient{submitID: ""}
	aggregator := NewAggregator(client, testConfig())

	rows, err := aggregator.Run(context.Background(), AuthContext{}, "2025-01-01", "2025-01-31")

	require.Error(t, err)
	assert.Nil(t, rows)

	analysisErr, ok := domain.AsAnalysisError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindVendor, analysisErr.Kind)
	assert.Equal(t, "No ReportRequestId returned", analysisErr.Message)

	// Submissão sem ID falha antes de qualquer polling
	assert.Equal(t, 0, client.pollCalls)
}

func TestRunPollsUntilSuccess(t *testing.T) {
	client := &fakeReportClient{
		submitID: "report-123",
		pollResults: []*PollResult{
			{Status: "Pending"},
			{Status: "Pending"},
			{Status: "Pending"},
			{Status: "Success", DownloadURL: "https://example.test/report.zip"},
		},
		downloadData: zipWithCSV(t, "report.csv", sampleReport),
	}
	aggregator := NewAggregator(client, testConfig())

	rows, err := aggregator.Run(context.Background(), AuthContext{}, "2025-01-01", "2025-01-31")

	require.NoError(t, err)
	assert.Equal(t, 4, client.pollCalls)
	assert.Equal(t, 1, client.downloadCalls)

	require.Len(t, rows, 2)
	assert.Equal(t, "Campanha A", rows[0].CampaignName)
	assert.Equal(t, int64(1000), rows[0].Impressions)
	assert.Equal(t, int64(50), rows[0].Clicks)
	assert.Equal(t, 2.0, rows[0].Spend)
}

func TestRunTreatsPollErrorsAsNotReady(t *testing.T) {
	client := &fakeReportClient{
		submitID: "report-123",
		pollErrs: []error{
			errors.New("falha transitória"),
			nil,
		},
		pollResults: []*PollResult{
			nil,
			{Status: "Success", DownloadURL: "https://example.test/report.zip"},
		},
		downloadData: zipWithCSV(t, "report.csv", sampleReport),
	}
	aggregator := NewAggregator(client, testConfig())

	rows, err := aggregator.Run(context.Background(), AuthContext{}, "2025-01-01", "2025-01-31")

	require.NoError(t, err)
	assert.Equal(t, 2, client.pollCalls)
	assert.Len(t, rows, 2)
}

func TestRunExhaustsPollBudget(t *testing.T) {
	// Todo poll devolve Pending: o ciclo esgota as tentativas
	client := &fakeReportClient{submitID: "report-123"}
	aggregator := NewAggregator(client, testConfig())

	rows, err := aggregator.Run(context.Background(), AuthContext{}, "2025-01-01", "2025-01-31")

	require.Error(t, err)
	assert.Nil(t, rows)

	analysisErr, ok := domain.AsAnalysisError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindVendor, analysisErr.Kind)
	assert.Equal(t, "Report not ready", analysisErr.Message)

	assert.Equal(t, 12, client.pollCalls)
	assert.Equal(t, 0, client.downloadCalls)
}

func TestRunSuccessWithoutDownloadURLIsNotReady(t *testing.T) {
	// Status Success sem URL de download ainda não está pronto
	client := &fakeReportClient{
		submitID: "report-123",
		pollResults: []*PollResult{
			{Status: "Success"},
			{Status: "Success", DownloadURL: "https://example.test/report.zip"},
		},
		downloadData: zipWithCSV(t, "report.csv", sampleReport),
	}
	aggregator := NewAggregator(client, testConfig())

	rows, err := aggregator.Run(context.Background(), AuthContext{}, "2025-01-01", "2025-01-31")

	require.NoError(t, err)
	assert.Equal(t, 2, client.pollCalls)
	assert.Len(t, rows, 2)
}

func TestExtractCSV(t *testing.T) {
	t.Run("localiza o CSV pelo sufixo do nome", func(t *testing.T) {
		data, err := extractCSV(zipWithCSV(t, "Relatorio_Final.CSV", "conteudo"))
		require.NoError(t, err)
		assert.Equal(t, "conteudo", string(data))
	})

	t.Run("zip sem CSV", func(t *testing.T) {
		_, err := extractCSV(zipWithCSV(t, "report.txt", "conteudo"))
		require.Error(t, err)
	})

	t.Run("zip corrompido", func(t *testing.T) {
		_, err := extractCSV([]byte("isto não é um zip"))
		require.Error(t, err)
	})
}
