package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"akenergy-data/internal/enrichment/application"
)

// BuildWorkbook renders the enrichment result as a workbook with one
// sheet per dataset table, for users who browse the dataset rather
// than load it.
func BuildWorkbook(result *application.Result) ([]byte, error) {
	f := excelize.NewFile()
	communitySheet := "communities"
	utilitySheet := "utilities"
	miscSheet := "misc"
	f.SetSheetName("Sheet1", communitySheet)
	f.NewSheet(utilitySheet)
	f.NewSheet(miscSheet)

	header := []any{
		"ID", "Name", "Latitude", "Longitude",
		"Climate Site", "Electric Utilities", "Gas Price",
		"Census Area", "Hub", "Avg Monthly Use (kWh)",
	}
	if err := f.SetSheetRow(communitySheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, c := range result.Communities {
		var annual float64
		for _, v := range c.UsageProfile {
			annual += v
		}
		row := []any{
			c.ID, c.Name, cellValue(c.Latitude), cellValue(c.Longitude),
			c.ClimateSiteName, FormatUtilities(c.ElectricUtilities), cellValue(c.GasPrice),
			c.AreaName, c.Hub, annual / float64(len(c.UsageProfile)),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(communitySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	utilityHeader := []any{"ID", "Name", "Type", "Active", "Commercial", "Charges RCC", "PCE", "Blocks"}
	if err := f.SetSheetRow(utilitySheet, "A1", &utilityHeader); err != nil {
		return nil, err
	}
	for i, u := range result.Utilities {
		row := []any{u.ID, u.Name, u.Type, u.Active, u.IsCommercial, u.ChargesRCC, cellValue(u.PCE), FormatBlocks(u.Blocks[:])}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(utilitySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(miscSheet, "A1", "Regulatory Surcharge (Electric)")
	_ = f.SetCellValue(miscSheet, "B1", cellValue(result.MiscInfo.RegulatorySurchargeElectric))
	_ = f.SetCellValue(miscSheet, "A2", "Regulatory Surcharge (Gas)")
	_ = f.SetCellValue(miscSheet, "B2", cellValue(result.MiscInfo.RegulatorySurchargeGas))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
