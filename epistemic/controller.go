// Package epistemic implements spec.md component G, the Epistemic
// Controller: debt bookkeeping in bits, the should_refuse_action
// precedence chain, and the contamination flag (spec.md 4.5).
package epistemic

import "github.com/insitro-labs/cellsim/types"

// HardDebtThreshold is the debt level above which any non-calibration
// action is refused outright (spec.md 4.5).
const HardDebtThreshold = 2.0

// MaxRepaymentPerAction caps how many bits a single calibration action can
// repay.
const MaxRepaymentPerAction = 1.0

// BaseRepayment is the guaranteed repayment for any calibration action,
// regardless of measured improvement.
const BaseRepayment = 0.25

// BonusRepaymentCap is the maximum additional repayment on top of
// BaseRepayment, earned proportional to measured noise improvement.
const BonusRepaymentCap = 0.75

// FullBonusImprovement is the measured noise improvement fraction at which
// the bonus saturates. A calibration that cuts relative width by 10% has
// done everything a single replicate batch can be expected to do; larger
// improvements earn no extra credit beyond the per-action cap.
const FullBonusImprovement = 0.10

// DebtSensitivity scales how strongly outstanding debt inflates an
// action's effective cost (spec.md 4.5, "Cost inflation").
const DebtSensitivity = 0.5

// MinCalibrationCostWells is the minimum well budget the controller insists
// stay in reserve for a future calibration action (spec.md 4.5, "Budget
// reserve").
const MinCalibrationCostWells = 12.0

// Controller tracks epistemic debt and the contamination flag for one run.
// It never writes into vessel state; it owns only its own counters
// (spec.md 3, "Ownership").
type Controller struct {
	DebtBits            float64
	Contaminated        bool
	ContaminationReason string
}

// New returns a fresh controller with zero debt.
func New() *Controller {
	return &Controller{}
}

// AccrueDebt adds bits to the debt counter when an agent's claimed
// entropy-reduction exceeds the actually-observed reduction. Negative
// deltas (the agent under-claimed) are ignored -- debt only accrues on
// over-confidence, it is never refunded by an under-claim.
func (c *Controller) AccrueDebt(claimedReductionBits, observedReductionBits float64) {
	over := claimedReductionBits - observedReductionBits
	if over > 0 {
		c.DebtBits += over
	}
}

// RepayFromCalibration credits a calibration action's measured noise
// improvement against outstanding debt (spec.md 4.5): base 0.25 bits plus
// up to 0.75 bits proportional to improvementFraction, saturating at
// FullBonusImprovement, capped at 1.0 bits total, and never driving debt
// negative.
func (c *Controller) RepayFromCalibration(improvementFraction float64) float64 {
	if improvementFraction < 0 {
		improvementFraction = 0
	}
	scaled := improvementFraction / FullBonusImprovement
	if scaled > 1 {
		scaled = 1
	}
	repay := BaseRepayment + BonusRepaymentCap*scaled
	if repay > MaxRepaymentPerAction {
		repay = MaxRepaymentPerAction
	}
	if repay > c.DebtBits {
		repay = c.DebtBits
	}
	c.DebtBits -= repay
	return repay
}

// EffectiveCost inflates baseCost by outstanding debt (spec.md 4.5, "Cost
// inflation"): effective_cost = base_cost * (1 + debt_sensitivity * debt).
func (c *Controller) EffectiveCost(baseCost float64) float64 {
	return baseCost * (1 + DebtSensitivity*c.DebtBits)
}

// Contaminate flags the run as epistemically contaminated -- any attempt
// to disable debt enforcement must call this rather than silently skipping
// should_refuse_action (spec.md 4.5, "Contamination"). The flag, once set,
// is never cleared: it is persisted in every artifact for the rest of the
// run.
func (c *Controller) Contaminate(reason string) {
	c.Contaminated = true
	if c.ContaminationReason == "" {
		c.ContaminationReason = reason
	}
}

// ShouldRefuseAction implements spec.md 4.5's precedence chain:
//  1. hard threshold: debt > 2.0 and action is not calibration
//  2. budget reserve: non-calibration action whose remaining budget after
//     its inflated cost would dip below MinCalibrationCostWells
//  3. cost overflow: inflated cost exceeds remaining budget outright
//
// isCalibration actions are exempt from rules 1 and 2; rule 3 applies to
// every action, since no action can spend wells the budget does not hold.
func (c *Controller) ShouldRefuseAction(actionLabel string, baseCost, budgetRemaining float64, isCalibration bool) *types.RefusalEvent {
	effectiveCost := c.EffectiveCost(baseCost)

	if !isCalibration && c.DebtBits > HardDebtThreshold {
		return &types.RefusalEvent{
			Reason:          types.ReasonEpistemicDebtActionBlocked,
			ActionLabel:     actionLabel,
			EffectiveCost:   effectiveCost,
			BudgetRemaining: budgetRemaining,
			DebtBits:        c.DebtBits,
		}
	}

	if !isCalibration && (budgetRemaining-effectiveCost) < MinCalibrationCostWells {
		return &types.RefusalEvent{
			Reason:          types.ReasonInsufficientBudgetForRecovery,
			ActionLabel:     actionLabel,
			EffectiveCost:   effectiveCost,
			BudgetRemaining: budgetRemaining,
			DebtBits:        c.DebtBits,
		}
	}

	if effectiveCost > budgetRemaining {
		return &types.RefusalEvent{
			Reason:          types.ReasonEpistemicDebtBudgetExceeded,
			ActionLabel:     actionLabel,
			EffectiveCost:   effectiveCost,
			BudgetRemaining: budgetRemaining,
			DebtBits:        c.DebtBits,
		}
	}

	return nil
}
