package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DenominationKind distinguishes bills from coins
type DenominationKind string

const (
	KindBill DenominationKind = "BILL"
	KindCoin DenominationKind = "COIN"
)

// DenominationCode identifies a single bill or coin face value
type DenominationCode string

// The denomination schema is currency-specific and fixed at compile time.
// Bills are ordered before coins; within each kind, largest face value first.
// Change calculation walks this order.
const (
	Bill1000 DenominationCode = "BILL_1000"
	Bill500  DenominationCode = "BILL_500"
	Bill200  DenominationCode = "BILL_200"
	Bill100  DenominationCode = "BILL_100"
	Bill50   DenominationCode = "BILL_50"
	Bill20   DenominationCode = "BILL_20"
	Bill10   DenominationCode = "BILL_10"
	Bill5    DenominationCode = "BILL_5"
	Bill1    DenominationCode = "BILL_1"
	Coin20   DenominationCode = "COIN_20"
	Coin10   DenominationCode = "COIN_10"
	Coin5    DenominationCode = "COIN_5"
	Coin2    DenominationCode = "COIN_2"
	Coin1    DenominationCode = "COIN_1"
	Coin050  DenominationCode = "COIN_0_50"
	Coin020  DenominationCode = "COIN_0_20"
	Coin010  DenominationCode = "COIN_0_10"
)

// Denomination describes one entry of the fixed schema
type Denomination struct {
	Code DenominationCode
	Kind DenominationKind
	Face decimal.Decimal
}

var denominationSchema = []Denomination{
	{Bill1000, KindBill, decimal.NewFromInt(1000)},
	{Bill500, KindBill, decimal.NewFromInt(500)},
	{Bill200, KindBill, decimal.NewFromInt(200)},
	{Bill100, KindBill, decimal.NewFromInt(100)},
	{Bill50, KindBill, decimal.NewFromInt(50)},
	{Bill20, KindBill, decimal.NewFromInt(20)},
	{Bill10, KindBill, decimal.NewFromInt(10)},
	{Bill5, KindBill, decimal.NewFromInt(5)},
	{Bill1, KindBill, decimal.NewFromInt(1)},
	{Coin20, KindCoin, decimal.NewFromInt(20)},
	{Coin10, KindCoin, decimal.NewFromInt(10)},
	{Coin5, KindCoin, decimal.NewFromInt(5)},
	{Coin2, KindCoin, decimal.NewFromInt(2)},
	{Coin1, KindCoin, decimal.NewFromInt(1)},
	{Coin050, KindCoin, decimal.NewFromFloat(0.50)},
	{Coin020, KindCoin, decimal.NewFromFloat(0.20)},
	{Coin010, KindCoin, decimal.NewFromFloat(0.10)},
}

var denominationIndex = func() map[DenominationCode]Denomination {
	idx := make(map[DenominationCode]Denomination, len(denominationSchema))
	for _, d := range denominationSchema {
		idx[d.Code] = d
	}
	return idx
}()

// DenominationSchema returns the fixed denomination schema in canonical order
// (bills largest to smallest, then coins largest to smallest)
func DenominationSchema() []Denomination {
	schema := make([]Denomination, len(denominationSchema))
	copy(schema, denominationSchema)
	return schema
}

// FaceValue returns the face value for a denomination code
func FaceValue(code DenominationCode) (decimal.Decimal, bool) {
	d, ok := denominationIndex[code]
	if !ok {
		return decimal.Decimal{}, false
	}
	return d.Face, true
}

// DenominationEntry is one row of a vector: a denomination, its count and the
// derived line total (face value times count)
type DenominationEntry struct {
	Denomination Denomination
	Count        int64
	Total        decimal.Decimal
}

// DenominationVector is a value object holding a non-negative count for every
// denomination of the fixed schema. Line totals and the grand total are always
// derived from the counts, never stored independently.
// It is immutable - all operations return new vectors.
type DenominationVector struct {
	counts map[DenominationCode]int64
}

// EmptyDenominationVector returns a vector with every denomination present and
// every count zero. Used as the base case for a register that has never been
// audited.
func EmptyDenominationVector() DenominationVector {
	counts := make(map[DenominationCode]int64, len(denominationSchema))
	for _, d := range denominationSchema {
		counts[d.Code] = 0
	}
	return DenominationVector{counts: counts}
}

// NewDenominationVector creates a vector from the given counts. Codes absent
// from the map default to zero, so the resulting vector always carries the full
// schema. Unknown codes and negative counts are rejected.
func NewDenominationVector(counts map[DenominationCode]int64) (DenominationVector, error) {
	for code, count := range counts {
		if _, ok := denominationIndex[code]; !ok {
			return DenominationVector{}, fmt.Errorf("unknown denomination code: %s", code)
		}
		if count < 0 {
			return DenominationVector{}, fmt.Errorf("%w: %d of %s", shared.ErrInvalidCount, count, code)
		}
	}
	v := EmptyDenominationVector()
	for code, count := range counts {
		v.counts[code] = count
	}
	return v, nil
}

// MustNewDenominationVector creates a vector from counts, panics on invalid input.
// Intended for tests and fixed fixtures.
func MustNewDenominationVector(counts map[DenominationCode]int64) DenominationVector {
	v, err := NewDenominationVector(counts)
	if err != nil {
		panic(err)
	}
	return v
}

// Count returns the count for a denomination code (zero for unknown codes)
func (v DenominationVector) Count(code DenominationCode) int64 {
	return v.counts[code]
}

// EntryTotal returns the derived line total for a denomination code
func (v DenominationVector) EntryTotal(code DenominationCode) decimal.Decimal {
	d, ok := denominationIndex[code]
	if !ok {
		return decimal.Zero
	}
	return d.Face.Mul(decimal.NewFromInt(v.counts[code]))
}

// Entries returns all entries in canonical order with derived line totals
func (v DenominationVector) Entries() []DenominationEntry {
	entries := make([]DenominationEntry, 0, len(denominationSchema))
	for _, d := range denominationSchema {
		count := v.counts[d.Code]
		entries = append(entries, DenominationEntry{
			Denomination: d,
			Count:        count,
			Total:        d.Face.Mul(decimal.NewFromInt(count)),
		})
	}
	return entries
}

// Total recomputes and returns the grand total as Money.
// The total is never cached: it is always the sum of face value times count.
func (v DenominationVector) Total() Money {
	total := decimal.Zero
	for _, d := range denominationSchema {
		total = total.Add(d.Face.Mul(decimal.NewFromInt(v.counts[d.Code])))
	}
	return NewMoneyMXN(total)
}

// TotalBills returns the combined value of bill entries only
func (v DenominationVector) TotalBills() Money {
	total := decimal.Zero
	for _, d := range denominationSchema {
		if d.Kind == KindBill {
			total = total.Add(d.Face.Mul(decimal.NewFromInt(v.counts[d.Code])))
		}
	}
	return NewMoneyMXN(total)
}

// TotalCoins returns the combined value of coin entries only
func (v DenominationVector) TotalCoins() Money {
	total := decimal.Zero
	for _, d := range denominationSchema {
		if d.Kind == KindCoin {
			total = total.Add(d.Face.Mul(decimal.NewFromInt(v.counts[d.Code])))
		}
	}
	return NewMoneyMXN(total)
}

// Validate checks the vector invariants: every schema key present, no negative counts
func (v DenominationVector) Validate() error {
	if v.counts == nil {
		return errors.New("denomination vector has no counts")
	}
	for _, d := range denominationSchema {
		count, ok := v.counts[d.Code]
		if !ok {
			return fmt.Errorf("denomination %s missing from vector", d.Code)
		}
		if count < 0 {
			return fmt.Errorf("%w: %d of %s", shared.ErrInvalidCount, count, d.Code)
		}
	}
	return nil
}

// IsZero returns true if every count is zero
func (v DenominationVector) IsZero() bool {
	for _, count := range v.counts {
		if count != 0 {
			return false
		}
	}
	return true
}

// Add returns the per-denomination sum of both vectors.
// Add is commutative and associative.
func (v DenominationVector) Add(other DenominationVector) DenominationVector {
	result := EmptyDenominationVector()
	for _, d := range denominationSchema {
		result.counts[d.Code] = v.counts[d.Code] + other.counts[d.Code]
	}
	return result
}

// Subtract returns the per-denomination difference clamped at zero, plus a
// shortfall vector holding the amount by which other exceeded v in each
// denomination. The clamped result is NOT a true inverse of Add: when other
// has more of a denomination than v, the deficit is dropped from the result
// and reported only through the shortfall. Callers needing exact
// reconciliation must inspect the shortfall before applying the result.
func (v DenominationVector) Subtract(other DenominationVector) (result, shortfall DenominationVector) {
	result = EmptyDenominationVector()
	shortfall = EmptyDenominationVector()
	for _, d := range denominationSchema {
		diff := v.counts[d.Code] - other.counts[d.Code]
		if diff >= 0 {
			result.counts[d.Code] = diff
		} else {
			shortfall.counts[d.Code] = -diff
		}
	}
	return result, shortfall
}

// Scale returns a vector with every count multiplied by factor.
// Factor must be non-negative.
func (v DenominationVector) Scale(factor int64) (DenominationVector, error) {
	if factor < 0 {
		return DenominationVector{}, fmt.Errorf("scale factor must be non-negative, got %d", factor)
	}
	result := EmptyDenominationVector()
	for _, d := range denominationSchema {
		result.counts[d.Code] = v.counts[d.Code] * factor
	}
	return result, nil
}

// Equals returns true if both vectors hold the same count for every denomination
func (v DenominationVector) Equals(other DenominationVector) bool {
	for _, d := range denominationSchema {
		if v.counts[d.Code] != other.counts[d.Code] {
			return false
		}
	}
	return true
}

// Counts returns a copy of the raw count map
func (v DenominationVector) Counts() map[DenominationCode]int64 {
	counts := make(map[DenominationCode]int64, len(v.counts))
	for code, count := range v.counts {
		counts[code] = count
	}
	return counts
}

// MarshalJSON implements json.Marshaler, emitting a code-to-count object
func (v DenominationVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.counts)
}

// UnmarshalJSON implements json.Unmarshaler with full validation
func (v *DenominationVector) UnmarshalJSON(data []byte) error {
	var counts map[DenominationCode]int64
	if err := json.Unmarshal(data, &counts); err != nil {
		return err
	}
	parsed, err := NewDenominationVector(counts)
	if err != nil {
		return err
	}
	v.counts = parsed.counts
	return nil
}

// Value implements driver.Valuer for database storage (JSON column)
func (v DenominationVector) Value() (driver.Value, error) {
	data, err := json.Marshal(v.counts)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval
func (v *DenominationVector) Scan(value any) error {
	if value == nil {
		*v = EmptyDenominationVector()
		return nil
	}

	var data []byte
	switch raw := value.(type) {
	case []byte:
		data = raw
	case string:
		data = []byte(raw)
	default:
		return fmt.Errorf("cannot scan %T into DenominationVector", value)
	}

	return v.UnmarshalJSON(data)
}
