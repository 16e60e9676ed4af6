package excel

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"gorqa/app"
)

const resultsSheet = "Results"

var metricHeaders = []string{"RR", "DET", "LAM", "L", "L_max", "ENTR", "TT", "V_max", "V_ENTR"}

// WriteBatch exports a batch result to an .xlsx workbook: one row per
// analyzed year with its group label and metrics, group-mean rows at the
// bottom, and a row per recorded failure.
func WriteBatch(path string, batch *app.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return fmt.Errorf("failed to create results sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := append([]string{"Year", "Group", "Days", "Threshold"}, metricHeaders...)
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(resultsSheet, cell, h)
	}

	row := 2
	for _, group := range []app.GroupSummary{batch.Treatment, batch.Control} {
		for _, year := range group.Years {
			analysis := batch.Years[year]
			writeRow(f, row, []interface{}{
				year, group.Name, analysis.Days, analysis.Threshold,
				analysis.Result.RR, analysis.Result.DET, analysis.Result.LAM,
				analysis.Result.L, analysis.Result.LMax, analysis.Result.ENTR,
				analysis.Result.TT, analysis.Result.VMax, analysis.Result.VEntr,
			})
			row++
		}
	}

	for _, group := range []app.GroupSummary{batch.Treatment, batch.Control} {
		writeRow(f, row, []interface{}{
			"mean", group.Name, "", "",
			group.Means.RR, group.Means.DET, group.Means.LAM,
			group.Means.L, group.Means.LMax, group.Means.ENTR,
			group.Means.TT, group.Means.VMax, group.Means.VEntr,
		})
		row++
	}

	failures := append([]app.YearFailure(nil), batch.Failures...)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Year < failures[j].Year })
	for _, failure := range failures {
		writeRow(f, row, []interface{}{failure.Year, "failed", failure.Kind, failure.Message})
		row++
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	return f.SaveAs(path)
}

func writeRow(f *excelize.File, row int, values []interface{}) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(resultsSheet, cell, v)
	}
}
