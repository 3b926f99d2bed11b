package dataset

import (
	"fmt"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/optimizer"
	"github.com/xuri/excelize/v2"
)

const (
	SelectedSheet = "选址结果"
	TraceSheet    = "适应度"
	SummarySheet  = "汇总"
)

// WriteResult 将优化结果写入 xlsx 文件
func WriteResult(path string, res *optimizer.Result, candidates []NamedFacility) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SelectedSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(SelectedSheet, "A1", &[]any{"序号", "候选下标", "名称", "经度", "纬度"}); err != nil {
		return err
	}
	for n, i := range res.Selected {
		if i < 0 || i >= len(candidates) {
			return fmt.Errorf("候选下标 %d 超出范围", i)
		}
		c := candidates[i]
		cell, _ := excelize.CoordinatesToCellName(1, n+2)
		if err := f.SetSheetRow(SelectedSheet, cell, &[]any{n + 1, i, c.Name, c.Location.Lng, c.Location.Lat}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(TraceSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(TraceSheet, "A1", &[]any{"代数", "最优适应度"}); err != nil {
		return err
	}
	for gen, best := range res.Trace {
		cell, _ := excelize.CoordinatesToCellName(1, gen+2)
		if err := f.SetSheetRow(TraceSheet, cell, &[]any{gen, best}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"覆盖人口", res.CoveredWeight},
		{"现有设施覆盖人口", res.ExistingWeight},
		{"新增覆盖人口", res.NewWeight},
		{"总人口", res.TotalWeight},
		{"迭代次数", res.Generations},
		{"停止原因", string(res.StopReason)},
	}
	for n, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, n+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
