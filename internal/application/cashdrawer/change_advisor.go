package cashdrawer

import (
	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// MessageChangeUnavailable is the operator-facing text for an infeasible amount
const MessageChangeUnavailable = "No disponible"

// ChangeAdvisory is the per-amount outcome of the common-payout screen
type ChangeAdvisory struct {
	Amount   float64                         `json:"amount"`
	Feasible bool                            `json:"feasible"`
	Message  string                          `json:"message,omitempty"`
	Used     *valueobject.DenominationVector `json:"used,omitempty"`
}

// ChangeAdvisor screens a breakdown against the common payout amounts. The
// screen is forward-looking and purely informational: an infeasible amount is
// reported and logged, never used to block an operation.
type ChangeAdvisor struct {
	logger *zap.Logger
}

// NewChangeAdvisor creates a new ChangeAdvisor
func NewChangeAdvisor(logger *zap.Logger) *ChangeAdvisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeAdvisor{logger: logger}
}

// Screen runs the battery against an available breakdown
func (a *ChangeAdvisor) Screen(registerName string, available valueobject.DenominationVector) ([]ChangeAdvisory, error) {
	results, err := cashdrawer.RunChangeBattery(available)
	if err != nil {
		return nil, err
	}

	advisories := make([]ChangeAdvisory, 0, len(results))
	for _, r := range results {
		advisory := ChangeAdvisory{
			Amount:   r.Amount.Float64(),
			Feasible: r.Feasible,
		}
		if r.Feasible {
			used := r.Used
			advisory.Used = &used
		} else {
			advisory.Message = MessageChangeUnavailable
			a.logger.Warn("register cannot give exact change",
				zap.String("register", registerName),
				zap.Float64("amount", advisory.Amount),
			)
		}
		advisories = append(advisories, advisory)
	}
	return advisories, nil
}
