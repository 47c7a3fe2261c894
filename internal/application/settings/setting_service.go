package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/settings"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettingService manages back-office settings and exposes typed accessors
// for the values pricing and billing depend on
type SettingService struct {
	repo     settings.SettingRepository
	defaults map[string]settings.Default
	logger   *zap.Logger
}

// NewSettingService creates a new SettingService
func NewSettingService(repo settings.SettingRepository, logger *zap.Logger) *SettingService {
	defaults := make(map[string]settings.Default, len(settings.Defaults))
	for _, d := range settings.Defaults {
		defaults[d.Key] = d
	}
	return &SettingService{repo: repo, defaults: defaults, logger: logger}
}

// List returns settings matching the filter
func (s *SettingService) List(ctx context.Context, filter shared.Filter) ([]SettingResponse, error) {
	rows, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]SettingResponse, len(rows))
	for i := range rows {
		out[i] = ToSettingResponse(&rows[i])
	}
	return out, nil
}

// ListPublic returns active public settings
func (s *SettingService) ListPublic(ctx context.Context) ([]SettingResponse, error) {
	filter := shared.DefaultFilter()
	filter.Filters["public"] = true
	return s.List(ctx, filter)
}

// Get returns the setting at key
func (s *SettingService) Get(ctx context.Context, key string) (*SettingResponse, error) {
	row, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	resp := ToSettingResponse(row)
	return &resp, nil
}

// Upsert creates the setting or replaces its value, reactivating it if deleted
func (s *SettingService) Upsert(ctx context.Context, key string, req UpsertSettingRequest) (*SettingResponse, error) {
	vt := settings.ValueType(req.ValueType)

	row, err := s.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		if vt == "" {
			vt = row.ValueType
		}
		if err := row.Change(req.Value, vt, req.Description, req.IsPublic); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		row, err = settings.NewAppSetting(key, req.Value, vt, req.Group, req.Description, req.IsPublic)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.repo.Save(ctx, row); err != nil {
		return nil, err
	}
	s.logger.Info("Setting saved", zap.String("key", row.Key), zap.String("type", string(row.ValueType)))

	resp := ToSettingResponse(row)
	return &resp, nil
}

// Delete soft-deletes a setting. Typed accessors fall back to defaults afterwards.
func (s *SettingService) Delete(ctx context.Context, key string) error {
	row, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return err
	}
	if err := row.Deactivate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, row)
}

// SeedDefaults inserts any missing default setting and reports how many were created
func (s *SettingService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, d := range settings.Defaults {
		_, err := s.repo.FindByKey(ctx, d.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return created, err
		}
		row, err := settings.NewAppSetting(d.Key, d.Value, d.Type, "", d.Description, d.Public)
		if err != nil {
			return created, err
		}
		if err := s.repo.Save(ctx, row); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// TaxRates implements the pricing tax source
func (s *SettingService) TaxRates(ctx context.Context, market valueobject.Market) (pricing.TaxRates, error) {
	gst, err := s.decimalValue(ctx, settings.TaxKey(market.Key(), "gst"))
	if err != nil {
		return pricing.TaxRates{}, err
	}
	vat, err := s.decimalValue(ctx, settings.TaxKey(market.Key(), "vat"))
	if err != nil {
		return pricing.TaxRates{}, err
	}
	return pricing.TaxRates{GSTPct: gst, VATPct: vat}, nil
}

// StoreInfo returns the seller block printed on documents
func (s *SettingService) StoreInfo(ctx context.Context) (billingapp.StoreInfo, error) {
	var info billingapp.StoreInfo
	fields := []struct {
		key string
		dst *string
	}{
		{settings.KeyStoreName, &info.Name},
		{settings.KeyStoreAddress, &info.Address},
		{settings.KeyStorePhone, &info.Phone},
		{settings.KeyStoreEmail, &info.Email},
	}
	for _, f := range fields {
		v, err := s.stringValue(ctx, f.key)
		if err != nil {
			return billingapp.StoreInfo{}, err
		}
		*f.dst = v
	}
	return info, nil
}

// StoreName returns the store name, or the default when it cannot be read
func (s *SettingService) StoreName(ctx context.Context) string {
	name, err := s.stringValue(ctx, settings.KeyStoreName)
	if err != nil {
		s.logger.Warn("Failed to read store name", zap.Error(err))
		return s.defaults[settings.KeyStoreName].Value
	}
	return name
}

// EstimateValidityDays returns how many days a new estimate stays valid
func (s *SettingService) EstimateValidityDays(ctx context.Context) (int, error) {
	return s.intValue(ctx, settings.KeyEstimateValidityDays)
}

// LowStockThreshold returns the stock level at or below which a product is reported
func (s *SettingService) LowStockThreshold(ctx context.Context) (int, error) {
	return s.intValue(ctx, settings.KeyLowStockThreshold)
}

// raw returns the active value at key, or the default when missing or inactive
func (s *SettingService) raw(ctx context.Context, key string) (string, error) {
	row, err := s.repo.FindByKey(ctx, key)
	if err == nil && row.IsActive {
		return row.Value, nil
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return "", err
	}
	d, ok := s.defaults[key]
	if !ok {
		return "", shared.NewDomainError("NOT_FOUND", "Setting "+key+" is not configured")
	}
	return d.Value, nil
}

func (s *SettingService) stringValue(ctx context.Context, key string) (string, error) {
	return s.raw(ctx, key)
}

func (s *SettingService) decimalValue(ctx context.Context, key string) (decimal.Decimal, error) {
	v, err := s.raw(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("setting %s is not a number: %w", key, err)
	}
	return d, nil
}

func (s *SettingService) intValue(ctx context.Context, key string) (int, error) {
	v, err := s.raw(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("setting %s is not an integer: %w", key, err)
	}
	return n, nil
}
