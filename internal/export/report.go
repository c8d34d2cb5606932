package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"akenergy-data/internal/enrichment/application"
)

// BuildRunReport renders a short PDF summary of an enrichment run:
// table sizes and the community and area names that fell below the
// fuzzy-match threshold and need curation.
func BuildRunReport(result *application.Result, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Community Energy Dataset - Run Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Communities: %d", len(result.Communities)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Utilities: %d", len(result.Utilities)))
	pdf.Ln(5)

	missingSite := 0
	for _, c := range result.Communities {
		if c.ClimateSiteID == 0 {
			missingSite++
		}
	}
	pdf.Cell(0, 6, fmt.Sprintf("Communities without coordinates: %d", missingSite))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Unmatched names: %d", len(result.Unmatched)))
	pdf.Ln(6)
	if len(result.Unmatched) > 0 {
		pdf.CellFormat(70, 6, "Name", "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, "Closest Match", "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, "Score", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, miss := range result.Unmatched {
			pdf.CellFormat(70, 6, miss.Query, "1", 0, "L", false, 0, "")
			pdf.CellFormat(70, 6, miss.Closest, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", miss.Score), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
