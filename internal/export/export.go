// =============================
// File: internal/export/export.go
// =============================
// Package export writes the trade journal out as CSV or JSON reports.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launchpad/internal/storage/models"
)

// Format represents the export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Options configures which trades are exported and where.
type Options struct {
	Format      Format
	StartTime   time.Time
	EndTime     time.Time
	TokenFilter string // token identity, base58
	SideFilter  string // "buy" or "sell"
	OutputDir   string
}

// Summary aggregates the exported trades.
type Summary struct {
	TotalTrades     int       `json:"total_trades"`
	BuyCount        int       `json:"buy_count"`
	SellCount       int       `json:"sell_count"`
	TotalBuyVolume  uint64    `json:"total_buy_volume"`
	TotalSellVolume uint64    `json:"total_sell_volume"`
	TotalFees       uint64    `json:"total_fees"`
	TokenCount      int       `json:"token_count"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
}

// TradeExporter turns journal rows into report files.
type TradeExporter struct {
	logger *zap.Logger
}

// NewTradeExporter creates a new trade exporter.
func NewTradeExporter(logger *zap.Logger) *TradeExporter {
	return &TradeExporter{logger: logger}
}

// ExportTrades filters, sorts and writes trades, returning the output path.
func (te *TradeExporter) ExportTrades(trades []*models.Trade, options Options) (string, error) {
	filtered := te.filterTrades(trades, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no trades match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	filename := te.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = te.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = te.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	te.logger.Info("Trades exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (te *TradeExporter) filterTrades(trades []*models.Trade, options Options) []*models.Trade {
	var filtered []*models.Trade

	for _, trade := range trades {
		if !options.StartTime.IsZero() && trade.CreatedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && trade.CreatedAt.After(options.EndTime) {
			continue
		}
		if options.TokenFilter != "" && trade.TokenID != options.TokenFilter {
			continue
		}
		if options.SideFilter != "" && trade.Side != options.SideFilter {
			continue
		}
		filtered = append(filtered, trade)
	}

	return filtered
}

func (te *TradeExporter) generateFilename(options Options) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := "trades_all"
	if options.SideFilter != "" {
		prefix = fmt.Sprintf("trades_%s", options.SideFilter)
	}
	if options.TokenFilter != "" && len(options.TokenFilter) >= 8 {
		prefix += "_" + options.TokenFilter[:8]
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func csvHeaders() []string {
	return []string{
		"timestamp", "token", "trader", "side",
		"sol_amount", "token_amount", "fee",
		"spot_price", "sol_reserve", "token_reserve",
	}
}

func tradeToCSV(t *models.Trade) []string {
	return []string{
		t.CreatedAt.UTC().Format(time.RFC3339),
		t.TokenID,
		t.Trader,
		t.Side,
		strconv.FormatUint(t.SolAmount, 10),
		strconv.FormatUint(t.TokenAmount, 10),
		strconv.FormatUint(t.Fee, 10),
		strconv.FormatFloat(t.SpotPrice, 'f', 9, 64),
		strconv.FormatUint(t.SolReserve, 10),
		strconv.FormatUint(t.TokenReserve, 10),
	}
}

func (te *TradeExporter) exportToCSV(trades []*models.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, trade := range trades {
		if err := writer.Write(tradeToCSV(trade)); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	return nil
}

func (te *TradeExporter) exportToJSON(trades []*models.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time       `json:"export_time"`
		TradeCount int             `json:"trade_count"`
		Trades     []*models.Trade `json:"trades"`
		Summary    Summary         `json:"summary"`
	}{
		ExportTime: time.Now().UTC(),
		TradeCount: len(trades),
		Trades:     trades,
		Summary:    te.calculateSummary(trades),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func (te *TradeExporter) calculateSummary(trades []*models.Trade) Summary {
	summary := Summary{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return summary
	}

	summary.StartDate = trades[0].CreatedAt
	summary.EndDate = trades[len(trades)-1].CreatedAt

	tokenSet := make(map[string]bool)
	for _, trade := range trades {
		tokenSet[trade.TokenID] = true
		summary.TotalFees += trade.Fee

		switch trade.Side {
		case models.TradeSideBuy:
			summary.BuyCount++
			summary.TotalBuyVolume += trade.SolAmount
		case models.TradeSideSell:
			summary.SellCount++
			summary.TotalSellVolume += trade.SolAmount
		}
	}
	summary.TokenCount = len(tokenSet)

	return summary
}
