package pricing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/petsupply/storefront/internal/domain/catalog"
)

// Key prefixes of the local, non-authoritative settings store
const (
	SurchargeKeyPrefix = "surcharge:"
	GainKeyPrefix      = "product-gain-pct:"
	OverrideKeyPrefix  = "size-override:"
)

// SettingsStore is a process-wide string key/value store
type SettingsStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// List returns every entry whose key starts with prefix
	List(ctx context.Context, prefix string) (map[string]string, error)
}

// SurchargeKey returns the store key of a size surcharge
func SurchargeKey(size string) string {
	return SurchargeKeyPrefix + catalog.NormalizeSize(size)
}

// GainKey returns the store key of a cached gain percent, "product-gain-pct:<id>"
func GainKey(productID int64) string {
	return GainKeyPrefix + strconv.FormatInt(productID, 10)
}

// OverrideStoreKey returns the store key of a cached size override
func OverrideStoreKey(productID int64, size string) string {
	return OverrideKeyPrefix + OverrideKey(productID, size)
}

// ParseGainKey extracts the product id from a gain key
func ParseGainKey(key string) (int64, error) {
	rest, ok := strings.CutPrefix(key, GainKeyPrefix)
	if !ok {
		return 0, fmt.Errorf("not a gain key: %q", key)
	}
	return strconv.ParseInt(rest, 10, 64)
}

// Settings is a loaded snapshot of the local pricing configuration
type Settings struct {
	Surcharges SurchargeTable
	Gains      GainOverrides
	Overrides  OverrideSet
}
