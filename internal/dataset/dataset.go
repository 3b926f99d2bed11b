package dataset

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Columns 描述 xlsx 文件中各个字段所在的列（按表头名称匹配）
type Columns struct {
	Sheet  string // 为空时使用第一个工作表
	Lng    string
	Lat    string
	Weight string // 只有需求点需要
	Name   string // 可选
}

// 原始数据文件中的列名
var (
	DemandColumns    = Columns{Lng: "POINT_X", Lat: "POINT_Y", Weight: "P041221"}
	ExistingColumns  = Columns{Lng: "lng", Lat: "lat", Name: "name"}
	CandidateColumns = Columns{Lng: "x", Lat: "y", Name: "name"}
)

// NamedFacility 带名称的设施，名称列不存在时为空字符串
type NamedFacility struct {
	Name string
	domain.Facility
}

type table struct {
	dataset string
	index   map[string]int
	rows    [][]string
}

func readTable(path, sheet, dataset string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开文件 %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("文件 %s 中没有工作表", path)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("文件 %s 中没有工作表 %s", path, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("无法读取工作表 %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("工作表 %s 为空", sheet)
	}

	// 第一行是表头
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		data = append(data, row)
	}

	return &table{dataset: dataset, index: index, rows: data}, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return fmt.Errorf("数据集 %s 缺少列 %s", t.dataset, c)
		}
	}
	return nil
}

func (t *table) cell(row int, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][i])
}

func (t *table) float(row int, column string) (float64, error) {
	raw := t.cell(row, column)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.InputDataError{Dataset: t.dataset, Index: row, Reason: fmt.Sprintf("列 %s 的值 %q 不是数字", column, raw)}
	}
	return v, nil
}

func (t *table) coordinate(row int, cols Columns) (domain.Coordinate, error) {
	lng, err := t.float(row, cols.Lng)
	if err != nil {
		return domain.Coordinate{}, err
	}
	lat, err := t.float(row, cols.Lat)
	if err != nil {
		return domain.Coordinate{}, err
	}
	return domain.Coordinate{Lng: lng, Lat: lat}, nil
}

// LoadDemandPoints 读取需求点（人口格网）数据
func LoadDemandPoints(path string, cols Columns) ([]domain.DemandPoint, error) {
	t, err := readTable(path, cols.Sheet, "demand")
	if err != nil {
		return nil, err
	}
	if err := t.require(cols.Lng, cols.Lat, cols.Weight); err != nil {
		return nil, err
	}

	points := make([]domain.DemandPoint, len(t.rows))
	for i := range t.rows {
		loc, err := t.coordinate(i, cols)
		if err != nil {
			return nil, err
		}
		w, err := t.float(i, cols.Weight)
		if err != nil {
			return nil, err
		}
		points[i] = domain.DemandPoint{Location: loc, Weight: w}
	}

	return points, nil
}

// LoadFacilities 读取现有设施或候选设施数据，dataset 用于错误信息
func LoadFacilities(path, dataset string, cols Columns) ([]NamedFacility, error) {
	t, err := readTable(path, cols.Sheet, dataset)
	if err != nil {
		return nil, err
	}
	if err := t.require(cols.Lng, cols.Lat); err != nil {
		return nil, err
	}

	facilities := make([]NamedFacility, len(t.rows))
	for i := range t.rows {
		loc, err := t.coordinate(i, cols)
		if err != nil {
			return nil, err
		}
		facilities[i] = NamedFacility{
			Name:     t.cell(i, cols.Name),
			Facility: domain.Facility{Location: loc},
		}
	}

	return facilities, nil
}

func Facilities(named []NamedFacility) []domain.Facility {
	facilities := make([]domain.Facility, len(named))
	for i, f := range named {
		facilities[i] = f.Facility
	}
	return facilities
}
