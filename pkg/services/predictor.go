package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// PredictRequest describes one vehicle submitted for a manual estimate.
type PredictRequest struct {
	Name         string `json:"name"`
	Year         int    `json:"year"`
	Transmission string `json:"transmission"`
	Fuel         string `json:"fuel"`
	Region       string `json:"region"`
}

// PredictResult is the combined AI estimate and historical comparison
// returned to the caller of a manual prediction.
type PredictResult struct {
	Name             string   `json:"name"`
	Year             int      `json:"year"`
	Region           string   `json:"region"`
	PriceLow         int64    `json:"price_low"`
	PriceHigh        int64    `json:"price_high"`
	HistoricalPrice  *int64   `json:"historical_price,omitempty"`
	HistoricalDate   *string  `json:"historical_date,omitempty"`
	ReferenceSources []string `json:"reference_sources"`
	TotalTokens      int      `json:"total_tokens"`
}

// VehicleUpdateRequest carries a reviewed estimate being written back to a
// vehicle, with the audit fields for its run log row.
type VehicleUpdateRequest struct {
	Description string `json:"description"` // Name fragment for the historical lookup
	Year        int    `json:"year"`
	Region      string `json:"region"`
	PriceLow    int64  `json:"price_low"`
	PriceHigh   int64  `json:"price_high"`
	TotalTokens int    `json:"total_tokens"`
	UserID      *int   `json:"user,omitempty"`
}

// PredictionService exposes the manual estimation path.
type PredictionService interface {
	// PredictSingle runs one synchronous estimate plus historical lookup.
	// Nothing is persisted; the caller reviews the result first.
	PredictSingle(ctx context.Context, req PredictRequest) (*PredictResult, error)
	// UpdateVehicle writes reviewed price fields to a vehicle and appends a
	// manual run log row.
	UpdateVehicle(ctx context.Context, id uuid.UUID, req VehicleUpdateRequest) error
}

type predictionService struct {
	schedule   ScheduleConfigService
	estimator  PriceEstimator
	historical HistoricalPriceService
	sources    repositories.DataSourceRepository
	params     repositories.DataParameterRepository
	vehicles   repositories.VehicleRepository
	runLogger  RunLoggerService
	logger     *zap.Logger
}

func NewPredictionService(
	schedule ScheduleConfigService,
	estimator PriceEstimator,
	historical HistoricalPriceService,
	sources repositories.DataSourceRepository,
	params repositories.DataParameterRepository,
	vehicles repositories.VehicleRepository,
	runLogger RunLoggerService,
	logger *zap.Logger,
) PredictionService {
	return &predictionService{
		schedule:   schedule,
		estimator:  estimator,
		historical: historical,
		sources:    sources,
		params:     params,
		vehicles:   vehicles,
		runLogger:  runLogger,
		logger:     logger.Named("prediction"),
	}
}

var _ PredictionService = (*predictionService)(nil)

func (s *predictionService) PredictSingle(ctx context.Context, req PredictRequest) (*PredictResult, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("vehicle name is required")
	}
	if req.Year == 0 {
		return nil, fmt.Errorf("vehicle year is required")
	}

	iqr, temperature := s.generationParams(ctx)

	references, err := s.activeSourceAddresses(ctx)
	if err != nil {
		return nil, err
	}

	parameters, err := s.params.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active data parameters", zap.Error(err))
		return nil, err
	}

	city, province := ParseRegion(req.Region)
	vehicle := &models.Vehicle{
		Name:         req.Name,
		Year:         req.Year,
		City:         city,
		Province:     province,
		Transmission: req.Transmission,
		Fuel:         req.Fuel,
	}

	estimate, err := s.estimator.Estimate(ctx, vehicle, references, parameters, iqr, temperature)
	if err != nil {
		return nil, err
	}

	result := &PredictResult{
		Name:             req.Name,
		Year:             req.Year,
		Region:           req.Region,
		PriceLow:         estimate.Low,
		PriceHigh:        estimate.High,
		ReferenceSources: references,
		TotalTokens:      estimate.TokensUsed,
	}

	match, err := s.historical.FindBestMatch(ctx, req.Name, strconv.Itoa(req.Year), city)
	if err != nil {
		// The estimate is still useful without a comparison row.
		s.logger.Warn("Historical lookup failed during manual predict",
			zap.String("name", req.Name),
			zap.Error(err))
	} else if match != nil {
		result.HistoricalPrice = &match.Price
		result.HistoricalDate = &match.Date
	}

	return result, nil
}

func (s *predictionService) UpdateVehicle(ctx context.Context, id uuid.UUID, req VehicleUpdateRequest) error {
	start := time.Now()

	city, _ := ParseRegion(req.Region)

	update := models.PriceUpdate{
		PriceLow:    req.PriceLow,
		PriceHigh:   req.PriceHigh,
		CheckedDate: time.Now(),
	}

	match, err := s.historical.FindBestMatch(ctx, req.Description, strconv.Itoa(req.Year), city)
	if err != nil {
		s.logger.Warn("Historical lookup failed during vehicle update",
			zap.String("id", id.String()),
			zap.Error(err))
	} else if match != nil {
		update.HistoryPrice = &match.Price
		update.HistoryDate = &match.Date
	}

	if err := s.vehicles.UpdatePriceFields(ctx, id, update); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.logger.Error("Failed to update vehicle price fields",
			zap.String("id", id.String()),
			zap.Error(err))
		return err
	}

	if err := s.runLogger.Record(ctx, models.RunTypeManual, 1, req.TotalTokens, time.Since(start), req.UserID); err != nil {
		// The vehicle update already landed; a missing audit row is logged
		// but does not fail the request.
		s.logger.Error("Failed to record manual run log",
			zap.String("id", id.String()),
			zap.Error(err))
	}

	return nil
}

// generationParams reads the IQR multiplier and temperature from the
// schedule row, falling back to defaults when none is configured.
func (s *predictionService) generationParams(ctx context.Context) (iqr, temperature float64) {
	schedule, err := s.schedule.Current(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrScheduleNotConfigured) {
			s.logger.Warn("Failed to read schedule for generation params", zap.Error(err))
		}
		return defaultIQRMultiplier, 1
	}
	return schedule.AIIQR, schedule.AITemp
}

func (s *predictionService) activeSourceAddresses(ctx context.Context) ([]string, error) {
	active, err := s.sources.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active data sources", zap.Error(err))
		return nil, err
	}

	addresses := make([]string, 0, len(active))
	for _, src := range active {
		addresses = append(addresses, src.Address)
	}
	return addresses, nil
}
