package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/llm"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/retry"
)

// defaultIQRMultiplier bounds outlier removal when the schedule row does not
// set one.
const defaultIQRMultiplier = 1.5

// Estimate is one AI price range with the tokens spent producing it.
type Estimate struct {
	Low        int64 `json:"low"`
	High       int64 `json:"high"`
	TokensUsed int   `json:"tokens_used"`
}

// EstimateParseError reports an AI response that could not be parsed into a
// price range. The caller skips the record and continues the batch.
// TokensUsed carries the usage metadata of the failed response; the provider
// charged for it, so run totals must still include it.
type EstimateParseError struct {
	Response   string
	TokensUsed int
	Err        error
}

func (e *EstimateParseError) Error() string {
	return fmt.Sprintf("unparseable price response: %v", e.Err)
}

func (e *EstimateParseError) Unwrap() error {
	return e.Err
}

// PriceEstimator asks the AI provider for a current market price range.
type PriceEstimator interface {
	// Estimate prompts the provider for a price range over the given
	// reference sources, labeling the search criteria with the active data
	// parameters. Returns *EstimateParseError when the response is not a
	// valid price range.
	Estimate(ctx context.Context, vehicle *models.Vehicle, referenceSources []string, parameters []*models.DataParameter, iqrMultiplier, temperature float64) (*Estimate, error)
}

type priceEstimator struct {
	chat   llm.ChatClient
	retry  *retry.Config
	logger *zap.Logger
}

func NewPriceEstimator(chat llm.ChatClient, logger *zap.Logger) PriceEstimator {
	return &priceEstimator{
		chat:   chat,
		retry:  retry.DefaultConfig(),
		logger: logger.Named("price-estimator"),
	}
}

var _ PriceEstimator = (*priceEstimator)(nil)

// priceRange mirrors the JSON shape the prompt instructs the model to emit.
type priceRange struct {
	HargaTerendah  *int64 `json:"harga_terendah"`
	HargaTertinggi *int64 `json:"harga_tertinggi"`
}

func (p *priceEstimator) Estimate(ctx context.Context, vehicle *models.Vehicle, referenceSources []string, parameters []*models.DataParameter, iqrMultiplier, temperature float64) (*Estimate, error) {
	if iqrMultiplier <= 0 {
		iqrMultiplier = defaultIQRMultiplier
	}

	prompt := buildPricePrompt(vehicle, referenceSources, parameters, iqrMultiplier)

	start := time.Now()
	var result *llm.GenerateResponseResult
	err := retry.DoIfRetryable(ctx, p.retry, func() error {
		var callErr error
		result, callErr = p.chat.GenerateResponse(ctx, prompt, temperature)
		return callErr
	})
	if err != nil {
		p.logger.Error("Price estimation call failed",
			zap.String("vehicle", vehicle.Name),
			zap.Int("year", vehicle.Year),
			zap.Error(err))
		return nil, fmt.Errorf("requesting price estimate: %w", err)
	}

	parsed, err := llm.ParseJSONResponse[priceRange](result.Content)
	if err != nil {
		return nil, &EstimateParseError{
			Response:   result.Content,
			TokensUsed: result.TotalTokens,
			Err:        err,
		}
	}
	if parsed.HargaTerendah == nil || parsed.HargaTertinggi == nil {
		return nil, &EstimateParseError{
			Response:   result.Content,
			TokensUsed: result.TotalTokens,
			Err:        fmt.Errorf("missing harga_terendah or harga_tertinggi"),
		}
	}

	p.logger.Debug("Price estimate produced",
		zap.String("vehicle", vehicle.Name),
		zap.Int64("low", *parsed.HargaTerendah),
		zap.Int64("high", *parsed.HargaTertinggi),
		zap.Int("total_tokens", result.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &Estimate{
		Low:        *parsed.HargaTerendah,
		High:       *parsed.HargaTertinggi,
		TokensUsed: result.TotalTokens,
	}, nil
}

// buildPricePrompt renders the Indonesian pricing prompt. The model is
// told to consult only the reference listings, remove IQR outliers, and
// answer with a bare JSON object.
func buildPricePrompt(vehicle *models.Vehicle, referenceSources []string, parameters []*models.DataParameter, iqrMultiplier float64) string {
	referenceLinks := "-"
	if len(referenceSources) > 0 {
		links := make([]string, len(referenceSources))
		for i, src := range referenceSources {
			links[i] = "- " + src
		}
		referenceLinks = strings.Join(links, ", ")
	}

	region := vehicle.City
	if vehicle.Province != "" {
		region = vehicle.City + ", " + vehicle.Province
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tentukan harga terendah dan tertinggi sebuah Kendaraan untuk %s, Tahun %d, transmisi kendaraan %s, bahan bakar %s di wilayah %s dengan ketentuan sebagai berikut:\n",
		vehicle.Name, vehicle.Year, vehicle.Transmission, vehicle.Fuel, region)
	b.WriteString("1. Data yang digunakan\n")
	fmt.Fprintf(&b, "- Sumber utama: Data terbaru dari %s (periksa listing hari ini).\n", referenceLinks)
	fmt.Fprintf(&b, "- Parameter pencarian: %s\n", searchParameters(vehicle, region, parameters))
	b.WriteString("- Transmisi diabaikan (termasuk semua tipe transmisi).\n")
	b.WriteString("2. Proses Analisa:\n")
	b.WriteString("- Hitung 'Interquartile Range (IQR)':\n")
	fmt.Fprintf(&b, "- Pengali IQR yang digunakan adalah %g.\n", iqrMultiplier)
	b.WriteString("- Hapus outlier (data di luar batas bawah/atas atau harga tidak wajar)\n")
	b.WriteString("- Dari data yang telah dibersihkan, tentukan harga terendah (minimum) dan harga tertinggi (maksimum).\n")
	b.WriteString("3. Output:\n")
	b.WriteString("- Tidak perlu ada penjelasan, hanya tampilkan json saja\n")
	b.WriteString(`- Format JSON: {"harga_terendah": harga_terendah, "harga_tertinggi": harga_tertinggi} (tanpa penjelasan tambahan).` + "\n")
	b.WriteString("- Tidak perlu ada \"'''json'''\"\n")
	b.WriteString("4. Tambahan:\n")
	b.WriteString("- Harga kendaraan hanya boleh didapatkan berdasarkan iklan yang tertera sesuai link referensi\n")
	b.WriteString("- Tidak boleh mengambil harga dari sumber selain iklan seperti artikel, berita, atau bulletin, pada link referensi\n")

	return b.String()
}

// searchParameters renders the search criteria clause. Labels come from the
// active data parameter rows; with none configured the standard four fields
// are used.
func searchParameters(vehicle *models.Vehicle, region string, parameters []*models.DataParameter) string {
	parts := make([]string, 0, len(parameters))
	for _, p := range parameters {
		value, ok := parameterValue(vehicle, region, p.TableColumn)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %q", p.Parameter, value))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Model %q, Tahun %q, Bahan Bakar %q, Wilayah %q",
			vehicle.Name, strconv.Itoa(vehicle.Year), vehicle.Fuel, region)
	}
	return strings.Join(parts, ", ")
}

// parameterValue resolves a data parameter's table_column against the
// vehicle being priced. Unknown columns are skipped.
func parameterValue(vehicle *models.Vehicle, region, column string) (string, bool) {
	switch column {
	case "name":
		return vehicle.Name, true
	case "year":
		return strconv.Itoa(vehicle.Year), true
	case "transmission":
		return vehicle.Transmission, true
	case "fuel":
		return vehicle.Fuel, true
	case "city":
		return vehicle.City, true
	case "province":
		return vehicle.Province, true
	case "region":
		return region, true
	}
	return "", false
}
