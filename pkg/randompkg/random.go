// Package randompkg provides functionality for generating random ledger test data.
package randompkg

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/go-petr/trade-ledger/pkg/currencypkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer between min and max inclusive.
func IntBetween(min, max int) int64 {
	return int64(min) + Intn(max-min+1)
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Owner generates a random owner id.
func Owner() string {
	return "user-" + String(8)
}

// Amount generates a random positive amount between min and max whole units
// with the given number of decimal places.
func Amount(min, max int, places int32) decimal.Decimal {
	units := IntBetween(min, max)
	if units == 0 {
		units = 1
	}

	frac := decimal.Zero
	if places > 0 {
		frac = decimal.New(Intn(int(decimal.New(1, places).IntPart())), -places)
	}

	return decimal.NewFromInt(units).Add(frac)
}

// Currency generates a random supported currency code.
func Currency() string {
	currencies := currencypkg.SupportedCurrencies()
	return currencies[Intn(len(currencies))]
}

// IdempotencyKey generates a random idempotency key.
func IdempotencyKey() string {
	return uuid.NewString()
}
