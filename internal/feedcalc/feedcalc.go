// Package feedcalc computes per-animal feed quantities from a calculation
// template: one raw amount per rule, clamped to the rule's limits, summed, and
// the grand total scaled by the product of the triggered adjustment factors.
// Individual breakdown entries keep their pre-adjustment amounts.
package feedcalc

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"livestock-farm-api-server/internal/models"
)

// Conditions are the physiological states of the animal being fed.
type Conditions struct {
	IsPregnant  bool `json:"isPregnant"`
	IsLactating bool `json:"isLactating"`
	IsYoung     bool `json:"isYoung"`
	IsOld       bool `json:"isOld"`
	IsSick      bool `json:"isSick"`
	ColdWeather bool `json:"coldWeather"`
}

// RuleAmount is one breakdown entry. Amount is the clamped, pre-adjustment
// value of the rule.
type RuleAmount struct {
	FeedTypeID *primitive.ObjectID `json:"feedTypeId,omitempty"`
	Method     string              `json:"method"`
	Amount     float64             `json:"amount"`
}

// Adjustment names one triggered condition and its factor.
type Adjustment struct {
	Condition string  `json:"condition"`
	Factor    float64 `json:"factor"`
}

// Result is the outcome of a feed calculation.
type Result struct {
	TotalAmount      float64      `json:"totalAmount"`
	Breakdown        []RuleAmount `json:"breakdown"`
	Adjustments      []Adjustment `json:"adjustments"`
	AdjustmentFactor float64      `json:"adjustmentFactor"`
}

// Calculate runs every rule of the template against the given body weight. No
// rounding is performed; callers round for display.
func Calculate(tpl *models.FeedCalculationTemplate, weight float64, cond Conditions) (*Result, error) {
	result := &Result{
		Breakdown:        make([]RuleAmount, 0, len(tpl.CalculationRules)),
		Adjustments:      []Adjustment{},
		AdjustmentFactor: 1,
	}

	for i, rule := range tpl.CalculationRules {
		raw, err := ruleAmount(rule, weight)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		multiplier := rule.Parameters.Multiplier
		if multiplier == 0 {
			multiplier = 1
		}
		amount := raw*multiplier + rule.Parameters.BaseAmount

		if rule.Limits.MinAmount != nil && amount < *rule.Limits.MinAmount {
			amount = *rule.Limits.MinAmount
		}
		if rule.Limits.MaxAmount != nil && amount > *rule.Limits.MaxAmount {
			amount = *rule.Limits.MaxAmount
		}

		result.Breakdown = append(result.Breakdown, RuleAmount{
			FeedTypeID: rule.FeedTypeID,
			Method:     rule.Method,
			Amount:     amount,
		})
		result.TotalAmount += amount
	}

	for _, adj := range triggeredAdjustments(tpl.AdjustmentFactors, cond) {
		result.Adjustments = append(result.Adjustments, adj)
		result.AdjustmentFactor *= adj.Factor
	}
	result.TotalAmount *= result.AdjustmentFactor

	return result, nil
}

func ruleAmount(rule models.CalculationRule, weight float64) (float64, error) {
	switch rule.Method {
	case models.FeedMethodPercentageOfWeight:
		return weight * rule.Parameters.Percentage / 100, nil
	case models.FeedMethodFixedAmount:
		return rule.Parameters.Amount, nil
	case models.FeedMethodPerKgBodyweight:
		return weight * rule.Parameters.AmountPerKg, nil
	case models.FeedMethodFormula:
		return EvaluateFormula(rule.Parameters.Expression, weight)
	default:
		return 0, fmt.Errorf("unknown calculation method %q", rule.Method)
	}
}

func triggeredAdjustments(f models.AdjustmentFactors, cond Conditions) []Adjustment {
	var out []Adjustment
	add := func(active bool, name string, factor float64) {
		if active && factor > 0 && factor != 1 {
			out = append(out, Adjustment{Condition: name, Factor: factor})
		}
	}
	add(cond.IsPregnant, "pregnant", f.Pregnant)
	add(cond.IsLactating, "lactating", f.Lactating)
	add(cond.IsYoung, "young", f.Young)
	add(cond.IsOld, "old", f.Old)
	add(cond.IsSick, "sick", f.Sick)
	add(cond.ColdWeather, "coldWeather", f.ColdWeather)
	return out
}
