package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"demand-forecast-dashboard/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumns 必須列（Date, Order_Demand）がヘッダーにない
	ErrMissingColumns = errors.New("required columns not found")
	// ErrUnsupportedFormat 対応していないファイル形式
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

const dateLayout = "2006-01-02"

// DemandDataService 需要データファイルを読み込み、月次の需要系列に集計する。
// 呼び出しごとにファイルを読み直し、結果はキャッシュしない。
type DemandDataService struct {
	start       time.Time
	end         time.Time
	dateLayouts []string
}

// NewDemandDataService は集計期間 [start, end]（両端含む、YYYY-MM-DD）でサービスを作成します。
func NewDemandDataService(start, end string) (*DemandDataService, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid history start %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid history end %q: %w", end, err)
	}
	if e.Before(s) {
		return nil, fmt.Errorf("history end %s before start %s", end, start)
	}
	return &DemandDataService{
		start: s,
		end:   e,
		dateLayouts: []string{
			"2006/1/2",
			"2006-01-02",
			"2006-1-2",
			"2006/01/02",
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006/1/2 15:04",
			"01/02/2006",
			"20060102",
		},
	}, nil
}

// Window 集計対象期間を返す
func (s *DemandDataService) Window() (time.Time, time.Time) {
	return s.start, s.end
}

// LoadMonthlySeries はファイルを読み込み月次系列を作成します。
// .xlsx は最初のシート、.tsv はタブ区切り、それ以外はカンマ区切りとして扱います。
func (s *DemandDataService) LoadMonthlySeries(path string) (*models.PreparedData, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, fmt.Errorf("需要データの読み込みに失敗しました (%s): %w", path, err)
	}

	data, err := s.PrepareRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Printf("📊 [データ準備] %s: %d行読込, 重複%d, 日付不正%d, 期間外%d, 数量不正%d, 使用%d, %dか月",
		filepath.Base(path), data.Stats.RowsRead, data.Stats.DuplicateRows, data.Stats.InvalidDates,
		data.Stats.OutOfWindow, data.Stats.InvalidQuantities, data.Stats.RowsUsed, data.Stats.Months)
	RecordPreparation(data.Stats)

	return data, nil
}

// PrepareRows はヘッダー付きの行データを月次系列に変換します。
//
// 手順: 完全一致の重複行を除去 → 日付を解析（失敗行は除外）→ 期間でフィルタ →
// カテゴリ列をラベルエンコード → 数量を数値化（失敗行は集計に含めない）→ 月ごとに合計。
func (s *DemandDataService) PrepareRows(rows [][]string) (*models.PreparedData, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}

	header := rows[0]
	dateIdx := findColumn(header, "date", "日付")
	demandIdx := findColumn(header, "order_demand", "demand", "quantity")
	if dateIdx == -1 || demandIdx == -1 {
		return nil, fmt.Errorf("%w: header %v", ErrMissingColumns, header)
	}
	productIdx := findColumn(header, "product_code")
	warehouseIdx := findColumn(header, "warehouse")
	categoryIdx := findColumn(header, "product_category")

	stats := models.PreparationStats{RowsRead: len(rows) - 1}

	type windowRow struct {
		date     time.Time
		product  string
		wh       string
		category string
		demand   string
	}

	seen := make(map[string]struct{}, len(rows))
	inWindow := make([]windowRow, 0, len(rows))
	for _, row := range rows[1:] {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			stats.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}

		t, ok := s.parseDate(cell(row, dateIdx))
		if !ok {
			stats.InvalidDates++
			continue
		}
		if t.Before(s.start) || t.After(s.end) {
			stats.OutOfWindow++
			continue
		}
		inWindow = append(inWindow, windowRow{
			date:     t,
			product:  cell(row, productIdx),
			wh:       cell(row, warehouseIdx),
			category: cell(row, categoryIdx),
			demand:   cell(row, demandIdx),
		})
	}

	products := make([]string, len(inWindow))
	warehouses := make([]string, len(inWindow))
	categories := make([]string, len(inWindow))
	for i, r := range inWindow {
		products[i] = r.product
		warehouses[i] = r.wh
		categories[i] = r.category
	}
	productEnc := NewLabelEncoder(products)
	warehouseEnc := NewLabelEncoder(warehouses)
	categoryEnc := NewLabelEncoder(categories)

	records := make([]models.DemandRecord, 0, len(inWindow))
	for _, r := range inWindow {
		qty, err := decimal.NewFromString(strings.TrimSpace(r.demand))
		if err != nil {
			stats.InvalidQuantities++
			continue
		}
		rec := models.DemandRecord{
			Date:            r.date,
			ProductCode:     r.product,
			Warehouse:       r.wh,
			ProductCategory: r.category,
			OrderDemand:     qty,
		}
		rec.ProductCodeID, _ = productEnc.Transform(r.product)
		rec.WarehouseID, _ = warehouseEnc.Transform(r.wh)
		rec.ProductCategoryID, _ = categoryEnc.Transform(r.category)
		records = append(records, rec)
	}
	stats.RowsUsed = len(records)

	dates := make([]time.Time, len(inWindow))
	for i, r := range inWindow {
		dates[i] = r.date
	}
	series := resampleMonthlySum(records, dates)
	stats.Months = len(series)

	return &models.PreparedData{
		Series: series,
		Stats:  stats,
		Encodings: []models.CategoryEncoding{
			{Column: "Product_Code", Classes: productEnc.Classes()},
			{Column: "Warehouse", Classes: warehouseEnc.Classes()},
			{Column: "Product_Category", Classes: categoryEnc.Classes()},
		},
		Records: records,
	}, nil
}

// parseDate 複数の日付書式を順に試す
func (s *DemandDataService) parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range s.dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// resampleMonthlySum は月末日付ごとに数量を合計します。
// 月の範囲は期間内の全行の日付（数量が不正な行を含む）で決まり、有効な行がない月は0になります。
func resampleMonthlySum(records []models.DemandRecord, dates []time.Time) models.MonthlySeries {
	if len(dates) == 0 {
		return models.MonthlySeries{}
	}

	first, last := MonthEnd(dates[0]), MonthEnd(dates[0])
	for _, d := range dates {
		key := MonthEnd(d)
		if key.Before(first) {
			first = key
		}
		if key.After(last) {
			last = key
		}
	}

	sums := make(map[time.Time]decimal.Decimal)
	for _, r := range records {
		key := MonthEnd(r.Date)
		sums[key] = sums[key].Add(r.OrderDemand)
	}

	series := make(models.MonthlySeries, 0, len(sums))
	for m := first; !m.After(last); m = MonthEnd(m.AddDate(0, 0, 1)) {
		v, _ := sums[m].Float64()
		series = append(series, models.SeriesPoint{Date: m, Value: v})
	}
	return series
}

// readRows ファイル形式に応じて全行を読み込む（ファイルは必ず閉じる）
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	case ".csv", ".tsv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			r.Comma = '\t'
		}
		return r.ReadAll()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// findColumn finds the index of the first candidate header (case-insensitive, trimmed)
func findColumn(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
