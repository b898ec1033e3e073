package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettingsService owns the load/save lifecycle of the local pricing configuration:
// the surcharge table, the gain fallback cache and the size override cache.
// The local store is never authoritative; overrides are read from the backend first.
type SettingsService struct {
	store  pricing.SettingsStore
	remote pricing.OverrideSource
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(store pricing.SettingsStore, remote pricing.OverrideSource) *SettingsService {
	return &SettingsService{
		store:  store,
		remote: remote,
	}
}

// LoadSurcharges returns the saved table. The first read persists and returns the defaults.
func (s *SettingsService) LoadSurcharges(ctx context.Context) (pricing.SurchargeTable, error) {
	stored, err := s.store.List(ctx, pricing.SurchargeKeyPrefix)
	if err != nil {
		return pricing.SurchargeTable{}, fmt.Errorf("failed to load surcharges: %w", err)
	}

	if len(stored) == 0 {
		defaults := pricing.DefaultSurcharges()
		for label, pct := range defaults {
			if err := s.store.Set(ctx, pricing.SurchargeKey(label), pct.String()); err != nil {
				return pricing.SurchargeTable{}, fmt.Errorf("failed to persist default surcharges: %w", err)
			}
		}
		return pricing.DefaultSurchargeTable(), nil
	}

	increments := make(map[string]decimal.Decimal, len(stored))
	for key, raw := range stored {
		label := strings.TrimPrefix(key, pricing.SurchargeKeyPrefix)
		pct, err := decimal.NewFromString(raw)
		if err != nil || pct.IsNegative() || label == "" {
			logger.L(ctx).Warn("ignoring unreadable surcharge entry",
				zap.String("key", key),
				zap.String("value", raw),
			)
			continue
		}
		increments[label] = pct
	}
	return pricing.NewSurchargeTable(increments)
}

// SaveSurcharges replaces the whole table. Labels missing from increments are removed.
func (s *SettingsService) SaveSurcharges(ctx context.Context, increments map[string]decimal.Decimal) (pricing.SurchargeTable, error) {
	if len(increments) == 0 {
		return pricing.SurchargeTable{}, shared.NewDomainError(shared.CodeInvalidInput, "Surcharge table cannot be empty")
	}
	table, err := pricing.NewSurchargeTable(increments)
	if err != nil {
		return pricing.SurchargeTable{}, err
	}

	existing, err := s.store.List(ctx, pricing.SurchargeKeyPrefix)
	if err != nil {
		return pricing.SurchargeTable{}, fmt.Errorf("failed to load surcharges: %w", err)
	}
	for key := range existing {
		if !table.Has(strings.TrimPrefix(key, pricing.SurchargeKeyPrefix)) {
			if err := s.store.Delete(ctx, key); err != nil {
				return pricing.SurchargeTable{}, fmt.Errorf("failed to remove surcharge %s: %w", key, err)
			}
		}
	}
	for label, pct := range table.Entries() {
		if err := s.store.Set(ctx, pricing.SurchargeKey(label), pct.String()); err != nil {
			return pricing.SurchargeTable{}, fmt.Errorf("failed to save surcharge %s: %w", label, err)
		}
	}

	logger.L(ctx).Info("surcharge table saved", zap.Strings("labels", table.Labels()))
	return table, nil
}

// LoadGains returns the cached gain percents by product id
func (s *SettingsService) LoadGains(ctx context.Context) (pricing.GainOverrides, error) {
	stored, err := s.store.List(ctx, pricing.GainKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load gain cache: %w", err)
	}
	gains := make(pricing.GainOverrides, len(stored))
	for key, raw := range stored {
		id, err := pricing.ParseGainKey(key)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		gains[id] = v
	}
	return gains, nil
}

// SaveGain stores the fallback gain percent of a product
func (s *SettingsService) SaveGain(ctx context.Context, productID int64, percent float64) error {
	if productID <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product ID must be positive")
	}
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Gain percent must be a finite number >= 0")
	}
	if err := s.store.Set(ctx, pricing.GainKey(productID), strconv.FormatFloat(percent, 'f', -1, 64)); err != nil {
		return fmt.Errorf("failed to save gain of product %d: %w", productID, err)
	}
	return nil
}

// LoadOverrides returns every locally cached size override
func (s *SettingsService) LoadOverrides(ctx context.Context) (pricing.OverrideSet, error) {
	stored, err := s.store.List(ctx, pricing.OverrideKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load override cache: %w", err)
	}
	set := make(pricing.OverrideSet, len(stored))
	for key, raw := range stored {
		id, size, err := pricing.ParseOverrideKey(strings.TrimPrefix(key, pricing.OverrideKeyPrefix))
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.IsPositive() {
			continue
		}
		set[pricing.OverrideKey(id, size)] = price
	}
	return set, nil
}

// Snapshot loads the whole local configuration in one go
func (s *SettingsService) Snapshot(ctx context.Context) (pricing.Settings, error) {
	surcharges, err := s.LoadSurcharges(ctx)
	if err != nil {
		return pricing.Settings{}, err
	}
	gains, err := s.LoadGains(ctx)
	if err != nil {
		return pricing.Settings{}, err
	}
	overrides, err := s.LoadOverrides(ctx)
	if err != nil {
		return pricing.Settings{}, err
	}
	return pricing.Settings{
		Surcharges: surcharges,
		Gains:      gains,
		Overrides:  overrides,
	}, nil
}

// GetOverride reads an override from the backend, falling back to the local cache.
// A backend NOT_FOUND consults the cache as well; any other backend failure does too,
// and marks the result degraded.
func (s *SettingsService) GetOverride(ctx context.Context, productID int64, size string) (*OverrideResult, error) {
	size = catalog.NormalizeSize(size)
	if productID <= 0 || size == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID and size are required")
	}
	result := &OverrideResult{ProductID: productID, Size: size}

	if s.remote != nil {
		remote, err := s.remote.GetSizeOverride(ctx, productID, size)
		switch {
		case err == nil:
			result.Found = true
			result.Price = remote.Price
			result.Source = OverrideSourceBackend
			if err := s.store.Set(ctx, pricing.OverrideStoreKey(productID, size), remote.Price.String()); err != nil {
				logger.L(ctx).Warn("failed to cache size override", zap.Error(err))
			}
			return result, nil
		case errors.Is(err, shared.ErrNotFound):
		default:
			result.Degraded = true
			logger.L(ctx).Warn("backend size override unavailable, using local cache",
				zap.Int64("product_id", productID),
				zap.String("size", size),
				zap.Error(err),
			)
		}
	}

	raw, found, err := s.store.Get(ctx, pricing.OverrideStoreKey(productID, size))
	if err != nil {
		return nil, fmt.Errorf("failed to read cached override: %w", err)
	}
	if !found {
		return result, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || !price.IsPositive() {
		return result, nil
	}
	result.Found = true
	result.Price = price
	result.Source = OverrideSourceLocal
	return result, nil
}

// SaveOverride writes the backend first, then the local cache. A transient backend
// failure still stores the override locally and returns a degraded result.
func (s *SettingsService) SaveOverride(ctx context.Context, productID int64, size string, price decimal.Decimal) (*OverrideResult, error) {
	override, err := pricing.NewSizePriceOverride(productID, size, price)
	if err != nil {
		return nil, err
	}
	result := &OverrideResult{
		ProductID: override.ProductID,
		Size:      override.Size,
		Price:     override.Price,
		Found:     true,
		Source:    OverrideSourceBackend,
	}

	if s.remote == nil {
		result.Source = OverrideSourceLocal
	} else if err := s.remote.SaveSizeOverride(ctx, *override); err != nil {
		if code := shared.CodeOf(err); code != "" && code != shared.CodeTransient {
			return nil, err
		}
		result.Degraded = true
		result.Source = OverrideSourceLocal
		logger.L(ctx).Warn("backend rejected size override save, stored locally only",
			zap.Int64("product_id", productID),
			zap.String("size", override.Size),
			zap.Error(err),
		)
	}

	if err := s.store.Set(ctx, pricing.OverrideStoreKey(override.ProductID, override.Size), override.Price.String()); err != nil {
		return nil, fmt.Errorf("failed to cache size override: %w", err)
	}
	return result, nil
}
