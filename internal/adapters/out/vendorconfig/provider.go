// Package vendorconfig loads the commercial configuration the earnings
// computation depends on from a YAML file: the delivery fee table and the
// platform commission rate, with optional per-vendor overrides. The file is
// read once at startup and served from memory.
package vendorconfig

import (
	"context"
	"fmt"
	"os"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

// ErrNoFeeBands is returned when the configuration file defines no delivery
// fee bands.
var ErrNoFeeBands = errs.NewValueIsRequiredError("delivery_fee_bands")

// fileSchema is the YAML layout of the configuration file.
type fileSchema struct {
	DefaultCommissionRate float64            `yaml:"default_commission_rate"`
	VendorCommissionRates map[string]float64 `yaml:"vendor_commission_rates"`
	DeliveryFeeBands      []feeBandSchema    `yaml:"delivery_fee_bands"`
}

type feeBandSchema struct {
	MinKm         float64 `yaml:"min_km"`
	MaxKm         float64 `yaml:"max_km"`
	BaseFeeCents  int64   `yaml:"base_fee_cents"`
	PerKmFeeCents int64   `yaml:"per_km_fee_cents"`
}

// Provider implements ports.VendorConfig from an in-memory snapshot of the
// YAML file.
type Provider struct {
	defaultRate float64
	vendorRates map[string]float64
	feeTable    []services.FeeBand
}

// LoadProvider reads and validates the configuration file at path.
func LoadProvider(path string) (*Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor config: %w", err)
	}

	return parseProvider(raw)
}

// parseProvider builds a Provider from raw YAML.
func parseProvider(raw []byte) (*Provider, error) {
	var schema fileSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse vendor config: %w", err)
	}

	if len(schema.DeliveryFeeBands) == 0 {
		return nil, ErrNoFeeBands
	}

	if err := validateRate(schema.DefaultCommissionRate); err != nil {
		return nil, err
	}
	for vendorID, rate := range schema.VendorCommissionRates {
		if err := validateRate(rate); err != nil {
			return nil, fmt.Errorf("vendor %s: %w", vendorID, err)
		}
	}

	feeTable := make([]services.FeeBand, 0, len(schema.DeliveryFeeBands))
	for _, band := range schema.DeliveryFeeBands {
		baseFee, err := kernel.NewMoney(band.BaseFeeCents)
		if err != nil {
			return nil, fmt.Errorf("base_fee_cents: %w", err)
		}
		perKmFee, err := kernel.NewMoney(band.PerKmFeeCents)
		if err != nil {
			return nil, fmt.Errorf("per_km_fee_cents: %w", err)
		}
		feeTable = append(feeTable, services.FeeBand{
			MinKm:    band.MinKm,
			MaxKm:    band.MaxKm,
			BaseFee:  baseFee,
			PerKmFee: perKmFee,
		})
	}

	return &Provider{
		defaultRate: schema.DefaultCommissionRate,
		vendorRates: schema.VendorCommissionRates,
		feeTable:    feeTable,
	}, nil
}

// GetCommissionRate returns the vendor's configured commission rate, falling
// back to the platform default when the vendor has no override.
func (p *Provider) GetCommissionRate(_ context.Context, vendorID kernel.UUID) (float64, error) {
	if err := vendorID.Validate(); err != nil {
		return 0, err
	}

	if rate, ok := p.vendorRates[vendorID.String()]; ok {
		return rate, nil
	}
	return p.defaultRate, nil
}

// GetDeliveryFeeTable returns the distance-banded delivery fee table.
func (p *Provider) GetDeliveryFeeTable(_ context.Context) ([]services.FeeBand, error) {
	table := make([]services.FeeBand, len(p.feeTable))
	copy(table, p.feeTable)
	return table, nil
}

// validateRate checks a commission rate is a fraction in [0, 1].
func validateRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return errs.NewValueIsOutOfRangeError("commission rate", rate, 0.0, 1.0)
	}
	return nil
}
