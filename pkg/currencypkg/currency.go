// Package currencypkg provides the catalogue of currencies the ledger accepts.
package currencypkg

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// Constants for the built-in currencies.
const (
	USD  = "USD"
	EUR  = "EUR"
	USDT = "USDT"
	BTC  = "BTC"
	ETH  = "ETH"
)

// Currency describes a supported currency and the number of decimal places its amounts may carry.
type Currency struct {
	Code  string `yaml:"code"`
	Scale int32  `yaml:"scale"`
}

type catalogueFile struct {
	Currencies []Currency `yaml:"currencies"`
}

var defaultCurrencies = []Currency{
	{Code: USD, Scale: 2},
	{Code: EUR, Scale: 2},
	{Code: USDT, Scale: 6},
	{Code: BTC, Scale: 8},
	{Code: ETH, Scale: 18},
}

var (
	mu        sync.RWMutex
	catalogue = index(defaultCurrencies)
)

func index(cs []Currency) map[string]Currency {
	m := make(map[string]Currency, len(cs))
	for _, c := range cs {
		m[c.Code] = c
	}

	return m
}

// LoadCatalogue replaces the supported currencies with the ones listed in a yaml file.
func LoadCatalogue(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}

	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("unable to parse %s: %w", path, err)
	}

	if len(f.Currencies) == 0 {
		return fmt.Errorf("%s lists no currencies", path)
	}

	for i, c := range f.Currencies {
		if c.Code == "" {
			return fmt.Errorf("currency at index %d missing code", i)
		}

		if c.Scale < 0 {
			return fmt.Errorf("currency %s has negative scale %d", c.Code, c.Scale)
		}
	}

	mu.Lock()
	catalogue = index(f.Currencies)
	mu.Unlock()

	return nil
}

// Lookup returns the currency with the given code.
func Lookup(code string) (Currency, bool) {
	mu.RLock()
	defer mu.RUnlock()

	c, ok := catalogue[code]

	return c, ok
}

// IsSupportedCurrency returns true if the currency is supported.
func IsSupportedCurrency(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// SupportedCurrencies returns the supported currency codes in alphabetical order.
func SupportedCurrencies() []string {
	mu.RLock()
	defer mu.RUnlock()

	codes := make([]string, 0, len(catalogue))
	for code := range catalogue {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}

// FitsScale reports whether amount has no more decimal places than the currency allows.
func (c Currency) FitsScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(c.Scale))
}

// ValidCurrency validates whether the currency is supported.
var ValidCurrency validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return IsSupportedCurrency(c)
	}

	return false
}

// ValidDecimal validates whether the field is a decimal number.
var ValidDecimal validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := decimal.NewFromString(s)

	return err == nil
}
