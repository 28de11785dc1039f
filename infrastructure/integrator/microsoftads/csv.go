package microsoftads

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/pkg/utils"
)

// ReportRow é uma linha de dados do relatório de campanhas já convertida
type ReportRow struct {
	CampaignName string
	Impressions  int64
	Clicks       int64
	Spend        float64
}

const headerToken = "CampaignName"
const footerMarker = "\"©"

// parseReportCSV interpreta o CSV devolvido pelo Microsoft Ads. O
// fornecedor prefixa o arquivo com linhas de metadados; o cabeçalho real
// é a primeira linha contendo "CampaignName". Os dados terminam na
// primeira linha em branco ou na linha de copyright do rodapé.
//
// Os valores são separados por vírgula simples com aspas opcionais. O
// output observado do fornecedor não escapa vírgulas internas (não é
// RFC 4180), então o split ingênuo é aceito — um nome de campanha com
// vírgula desalinharia as colunas silenciosamente.
func parseReportCSV(data []byte) ([]ReportRow, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var columns map[string]int
	var rows []ReportRow

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if columns == nil {
			if strings.Contains(line, headerToken) {
				columns = indexColumns(splitFields(line))
			}
			continue
		}

		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, footerMarker) || strings.HasPrefix(line, "©") {
			break
		}

		fields := splitFields(line)
		rows = append(rows, buildRow(columns, fields))
	}

	if err := scanner.Err(); err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao ler o CSV do relatório", err)
	}

	if columns == nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds,
			"cabeçalho do relatório não encontrado no CSV", nil)
	}

	return rows, nil
}

// splitFields separa uma linha por vírgulas removendo as aspas de cada valor
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		fields = append(fields, strings.Trim(strings.TrimSpace(part), "\""))
	}
	return fields
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	return columns
}

func buildRow(columns map[string]int, fields []string) ReportRow {
	row := ReportRow{}

	if value, ok := fieldAt(columns, fields, "CampaignName"); ok {
		row.CampaignName = value
	}
	if value, ok := fieldAt(columns, fields, "Impressions"); ok {
		row.Impressions, _ = strconv.ParseInt(value, 10, 64)
	}
	if value, ok := fieldAt(columns, fields, "Clicks"); ok {
		row.Clicks, _ = strconv.ParseInt(value, 10, 64)
	}
	if value, ok := fieldAt(columns, fields, "Spend"); ok {
		// O Spend pode vir com símbolo de moeda ("$12.34")
		row.Spend, _ = utils.ParseMoney(value)
	}

	return row
}

func fieldAt(columns map[string]int, fields []string, name string) (string, bool) {
	index, ok := columns[name]
	if !ok || index >= len(fields) {
		return "", false
	}
	return fields[index], true
}
