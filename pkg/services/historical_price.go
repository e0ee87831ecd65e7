package services

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// HistoricalMatch is the best comparable sale found for a vehicle.
type HistoricalMatch struct {
	Price int64  `json:"price"`
	Date  string `json:"date"` // DD/MM/YYYY as stored at the source
}

// HistoricalPriceService finds the best-matching past sale for a vehicle.
type HistoricalPriceService interface {
	// FindBestMatch returns the top-ranked comparable sale, or nil when no
	// graded sale matches the name, year, and city fragments.
	FindBestMatch(ctx context.Context, name, year, city string) (*HistoricalMatch, error)
}

type historicalPriceService struct {
	sales  repositories.VehicleSalesRepository
	logger *zap.Logger
}

func NewHistoricalPriceService(sales repositories.VehicleSalesRepository, logger *zap.Logger) HistoricalPriceService {
	return &historicalPriceService{
		sales:  sales,
		logger: logger.Named("historical-price"),
	}
}

var _ HistoricalPriceService = (*historicalPriceService)(nil)

// regionPattern splits a region string like "Kota Surabaya, Provinsi Jawa
// Timur" into its city and province parts.
var regionPattern = regexp.MustCompile(`(?:Kota|Kabupaten)\s([^,]+),\s(?:Provinsi\s)?(.+)`)

// ParseRegion extracts the bare city (and province, when present) from a
// region label. Returns the input unchanged when it carries no
// Kota/Kabupaten prefix.
func ParseRegion(region string) (city, province string) {
	if m := regionPattern.FindStringSubmatch(region); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(region), ""
}

func (s *historicalPriceService) FindBestMatch(ctx context.Context, name, year, city string) (*HistoricalMatch, error) {
	matches, err := s.sales.QueryMatches(ctx, name, year, city)
	if err != nil {
		s.logger.Error("Failed to query historical sales",
			zap.String("name", name),
			zap.String("year", year),
			zap.Error(err))
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	best := rankSales(matches)[0]

	price, ok := parseSellingPrice(best.SellingPrice)
	if !ok {
		s.logger.Warn("Historical sale has unparseable price",
			zap.String("selling_price", best.SellingPrice),
			zap.String("sale_date", best.SaleDate))
		return nil, nil
	}

	return &HistoricalMatch{Price: price, Date: best.SaleDate}, nil
}

// rankSales orders sales by grade (best first), breaking ties by sale date
// descending. Unparseable dates sort after parseable ones.
func rankSales(sales []*models.VehicleSale) []*models.VehicleSale {
	ranked := make([]*models.VehicleSale, len(sales))
	copy(ranked, sales)

	sort.SliceStable(ranked, func(i, j int) bool {
		ri := gradeRankOf(ranked[i])
		rj := gradeRankOf(ranked[j])
		if ri != rj {
			return ri < rj
		}

		di, okI := models.ParseSaleDate(ranked[i].SaleDate)
		dj, okJ := models.ParseSaleDate(ranked[j].SaleDate)
		if okI != okJ {
			return okI
		}
		return di.After(dj)
	})

	return ranked
}

func gradeRankOf(sale *models.VehicleSale) int {
	if sale.Grade == nil {
		return models.GradeRank("")
	}
	return models.GradeRank(*sale.Grade)
}

// parseSellingPrice accepts plain integers and dotted-thousands strings
// like "123.450.000".
func parseSellingPrice(raw string) (int64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ".", ""))
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
