package cashdrawer

import (
	"sort"

	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CommonPayoutAmounts is the fixed battery of change amounts screened after
// every breakdown edit. Adding large bills to a drawer can silently make it
// unable to give change for these; the advisory warns the operator up front.
var CommonPayoutAmounts = []int64{50, 100, 150, 200, 250, 300, 500}

// maxExactSearchUnits bounds the exact-solver fallback (in tenth-of-peso
// units). Amounts above this get the greedy verdict only.
const maxExactSearchUnits = 100_000

// ChangeResult reports whether a payout amount can be constructed exactly from
// the available breakdown and, if so, which counts to draw.
type ChangeResult struct {
	Amount   valueobject.Money              `json:"amount"`
	Feasible bool                           `json:"feasible"`
	Used     valueobject.DenominationVector `json:"used"`
}

// changeOrder is the denomination schema sorted for change-making: strictly
// descending face value, bills before coins on equal faces.
var changeOrder = func() []valueobject.Denomination {
	order := valueobject.DenominationSchema()
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Face.GreaterThan(order[j].Face)
	})
	return order
}()

// CalculateOptimalChange determines whether amount can be constructed exactly
// from the available breakdown. It first runs the greedy largest-face-first
// pass; greedy is only guaranteed for canonical denomination sets, so on a
// greedy miss a bounded exact solver re-checks before the amount is declared
// infeasible.
func CalculateOptimalChange(amount valueobject.Money, available valueobject.DenominationVector) (ChangeResult, error) {
	if !amount.IsPositive() {
		return ChangeResult{}, NewValidationError("change amount must be positive")
	}
	if err := available.Validate(); err != nil {
		return ChangeResult{}, NewValidationError(err.Error())
	}

	infeasible := ChangeResult{Amount: amount, Feasible: false, Used: valueobject.EmptyDenominationVector()}

	// Work in tenth-of-peso units; the smallest denomination is 0.10. Amounts
	// that do not land on a unit boundary cannot be made exactly.
	unitsDec := amount.Amount().Mul(decimal.NewFromInt(10))
	if !unitsDec.Equal(unitsDec.Truncate(0)) {
		return infeasible, nil
	}
	target := unitsDec.IntPart()

	if used, ok := greedyChange(target, available); ok {
		return ChangeResult{Amount: amount, Feasible: true, Used: used}, nil
	}

	if target <= maxExactSearchUnits {
		if used, ok := exactChange(target, available); ok {
			return ChangeResult{Amount: amount, Feasible: true, Used: used}, nil
		}
	}

	return infeasible, nil
}

// greedyChange walks the denominations largest face first, taking as many of
// each as are available and fit the remaining amount.
func greedyChange(target int64, available valueobject.DenominationVector) (valueobject.DenominationVector, bool) {
	remaining := target
	used := make(map[valueobject.DenominationCode]int64)

	for _, d := range changeOrder {
		if remaining == 0 {
			break
		}
		faceUnits := d.Face.Mul(decimal.NewFromInt(10)).IntPart()
		take := remaining / faceUnits
		if avail := available.Count(d.Code); take > avail {
			take = avail
		}
		if take > 0 {
			used[d.Code] = take
			remaining -= take * faceUnits
		}
	}

	if remaining != 0 {
		return valueobject.EmptyDenominationVector(), false
	}
	vector, err := valueobject.NewDenominationVector(used)
	if err != nil {
		return valueobject.EmptyDenominationVector(), false
	}
	return vector, true
}

// exactChange is a bounded-count coin-change feasibility check with path
// reconstruction. It exists because greedy can miss solutions on
// non-canonical corners of the denomination set; the battery amounts are
// small, so the table stays cheap.
func exactChange(target int64, available valueobject.DenominationVector) (valueobject.DenominationVector, bool) {
	reachable := make([]bool, target+1)
	parent := make([]int, target+1)
	reachable[0] = true

	faceUnits := make([]int64, len(changeOrder))
	for i, d := range changeOrder {
		faceUnits[i] = d.Face.Mul(decimal.NewFromInt(10)).IntPart()
	}

	for di, d := range changeOrder {
		avail := available.Count(d.Code)
		face := faceUnits[di]
		if avail == 0 || face > target {
			continue
		}
		// usedAt[j] counts how many of this denomination the path to j spends;
		// states reached by earlier denominations carry zero, which keeps the
		// per-denomination budget exact.
		usedAt := make([]int64, target+1)
		for j := face; j <= target; j++ {
			if reachable[j] {
				continue
			}
			if reachable[j-face] && usedAt[j-face] < avail {
				reachable[j] = true
				usedAt[j] = usedAt[j-face] + 1
				parent[j] = di
			}
		}
	}

	if !reachable[target] {
		return valueobject.EmptyDenominationVector(), false
	}

	used := make(map[valueobject.DenominationCode]int64)
	for j := target; j > 0; {
		di := parent[j]
		used[changeOrder[di].Code]++
		j -= faceUnits[di]
	}
	vector, err := valueobject.NewDenominationVector(used)
	if err != nil {
		return valueobject.EmptyDenominationVector(), false
	}
	return vector, true
}

// RunChangeBattery screens the common payout amounts against an available
// breakdown. Results are advisory only and never block an operation.
func RunChangeBattery(available valueobject.DenominationVector) ([]ChangeResult, error) {
	results := make([]ChangeResult, 0, len(CommonPayoutAmounts))
	for _, amount := range CommonPayoutAmounts {
		result, err := CalculateOptimalChange(valueobject.NewMoneyMXN(decimal.NewFromInt(amount)), available)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
