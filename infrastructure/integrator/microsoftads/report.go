package microsoftads

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// Aggregator conduz o ciclo assíncrono de relatórios do Microsoft Ads:
// submete a requisição, faz polling até o relatório ficar pronto, baixa
// o zip e extrai as linhas do CSV.
type Aggregator struct {
	client       Client
	pollInterval time.Duration
	maxPollCount int
}

func NewAggregator(client Client, cfg config.MicrosoftAds) *Aggregator {
	return &Aggregator{
		client:       client,
		pollInterval: time.Duration(cfg.ReportPollSeconds) * time.Second,
		maxPollCount: cfg.ReportMaxPollCount,
	}
}

// Run executa o ciclo completo submit -> poll -> download -> parse.
// Erros de polling e status que não sejam "Success" contam como
// "ainda não pronto"; o ciclo só falha de vez quando o orçamento de
// tentativas se esgota ou o contexto é cancelado.
func (a *Aggregator) Run(ctx context.Context, auth AuthContext, startDate, endDate string) ([]ReportRow, error) {
	reportRequestID, err := a.client.SubmitReport(ctx, auth, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if reportRequestID == "" {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "No ReportRequestId returned", nil)
	}

	logrus.WithFields(logrus.Fields{
		"report_request_id": reportRequestID,
	}).Debug("microsoftads: relatório submetido, iniciando polling")

	downloadURL, err := a.waitForReport(ctx, auth, reportRequestID)
	if err != nil {
		return nil, err
	}

	archive, err := a.client.DownloadReport(ctx, downloadURL)
	if err != nil {
		return nil, err
	}

	csvData, err := extractCSV(archive)
	if err != nil {
		return nil, err
	}

	return parseReportCSV(csvData)
}

func (a *Aggregator) waitForReport(ctx context.Context, auth AuthContext, reportRequestID string) (string, error) {
	for attempt := 1; attempt <= a.maxPollCount; attempt++ {
		result, err := a.client.PollReport(ctx, auth, reportRequestID)
		if err != nil {
			// Falha transitória de polling não aborta o ciclo
			logrus.WithFields(logrus.Fields{
				"report_request_id": reportRequestID,
				"attempt":           attempt,
				"error":             err.Error(),
			}).Warn("microsoftads: falha no polling do relatório")
		} else if result.Status == "Success" && result.DownloadURL != "" {
			return result.DownloadURL, nil
		}

		if attempt == a.maxPollCount {
			break
		}

		select {
		case <-ctx.Done():
			return "", domain.NewTimeoutError(domain.ServiceMicrosoftAds,
				"geração do relatório cancelada", ctx.Err())
		case <-time.After(a.pollInterval):
		}
	}

	return "", domain.NewVendorError(domain.ServiceMicrosoftAds, "Report not ready", nil)
}

// extractCSV localiza a única entrada .csv dentro do zip devolvido pelo
// endpoint de download
func extractCSV(archive []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "zip do relatório inválido", err)
	}

	for _, file := range reader.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao abrir o CSV dentro do zip", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao ler o CSV dentro do zip", err)
		}
		return data, nil
	}

	return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "nenhum CSV encontrado no zip do relatório", nil)
}
