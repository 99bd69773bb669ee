package feedcalc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-farm-api-server/internal/feedcalc"
	"livestock-farm-api-server/internal/models"
)

func ptr(f float64) *float64 { return &f }

func TestPercentageOfWeight(t *testing.T) {
	tpl := &models.FeedCalculationTemplate{
		CalculationRules: []models.CalculationRule{
			{Method: models.FeedMethodPercentageOfWeight, Parameters: models.RuleParameters{Percentage: 3}},
		},
	}

	res, err := feedcalc.Calculate(tpl, 100, feedcalc.Conditions{})

	require.NoError(t, err)
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, 3.0, res.Breakdown[0].Amount)
	assert.Equal(t, 3.0, res.TotalAmount)
	assert.Equal(t, 1.0, res.AdjustmentFactor)
}

func TestAdjustmentAppliesToTotalOnly(t *testing.T) {
	tpl := &models.FeedCalculationTemplate{
		CalculationRules: []models.CalculationRule{
			{Method: models.FeedMethodPercentageOfWeight, Parameters: models.RuleParameters{Percentage: 3}},
		},
		AdjustmentFactors: models.AdjustmentFactors{Pregnant: 1.2},
	}

	res, err := feedcalc.Calculate(tpl, 100, feedcalc.Conditions{IsPregnant: true})

	require.NoError(t, err)
	// Breakdown keeps the pre-adjustment amount; only the total is scaled.
	assert.Equal(t, 3.0, res.Breakdown[0].Amount)
	assert.InDelta(t, 3.6, res.TotalAmount, 1e-9)
	assert.InDelta(t, 1.2, res.AdjustmentFactor, 1e-9)
	require.Len(t, res.Adjustments, 1)
	assert.Equal(t, "pregnant", res.Adjustments[0].Condition)
}

func TestAdjustmentFactorsMultiply(t *testing.T) {
	tpl := &models.FeedCalculationTemplate{
		CalculationRules: []models.CalculationRule{
			{Method: models.FeedMethodFixedAmount, Parameters: models.RuleParameters{Amount: 10}},
		},
		AdjustmentFactors: models.AdjustmentFactors{Pregnant: 1.2, ColdWeather: 1.1},
	}

	res, err := feedcalc.Calculate(tpl, 0, feedcalc.Conditions{IsPregnant: true, ColdWeather: true})

	require.NoError(t, err)
	assert.InDelta(t, 1.32, res.AdjustmentFactor, 1e-9)
	assert.InDelta(t, 13.2, res.TotalAmount, 1e-9)
}

func TestUntriggeredConditionsIgnored(t *testing.T) {
	tpl := &models.FeedCalculationTemplate{
		CalculationRules: []models.CalculationRule{
			{Method: models.FeedMethodFixedAmount, Parameters: models.RuleParameters{Amount: 5}},
		},
		AdjustmentFactors: models.AdjustmentFactors{Pregnant: 1.2, Sick: 0.8},
	}

	res, err := feedcalc.Calculate(tpl, 50, feedcalc.Conditions{})

	require.NoError(t, err)
	assert.Empty(t, res.Adjustments)
	assert.Equal(t, 5.0, res.TotalAmount)
}

func TestMultiplierBaseAmountAndClamp(t *testing.T) {
	tpl := &models.FeedCalculationTemplate{
		CalculationRules: []models.CalculationRule{
			{
				Method:     models.FeedMethodPerKgBodyweight,
				Parameters: models.RuleParameters{AmountPerKg: 0.05, Multiplier: 2, BaseAmount: 1},
				Limits:     models.RuleLimits{MaxAmount: ptr(8)},
			},
			{
				Method:     models.FeedMethodFixedAmount,
				Parameters: models.RuleParameters{Amount: 0.5},
				Limits:     models.RuleLimits{MinAmount: ptr(2)},
			},
		},
	}

	// rule 0: 100*0.05*2 + 1 = 11, clamped to 8; rule 1: 0.5 raised to min 2.
	res, err := feedcalc.Calculate(tpl, 100, feedcalc.Conditions{})

	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Breakdown[0].Amount)
	assert.Equal(t, 2.0, res.Breakdown[1].Amount)
	assert.Equal(t, 10.0, res.TotalAmount)
}

func TestFormulaRule(t *testing.T) {
	tpl := &models.FeedCalculationTemplate{
		CalculationRules: []models.CalculationRule{
			{Method: models.FeedMethodFormula, Parameters: models.RuleParameters{Expression: "weight * 0.02 + 1.5"}},
		},
	}

	res, err := feedcalc.Calculate(tpl, 200, feedcalc.Conditions{})

	require.NoError(t, err)
	assert.InDelta(t, 5.5, res.TotalAmount, 1e-9)
}

func TestUnknownMethodFails(t *testing.T) {
	tpl := &models.FeedCalculationTemplate{
		CalculationRules: []models.CalculationRule{{Method: "guesswork"}},
	}

	_, err := feedcalc.Calculate(tpl, 100, feedcalc.Conditions{})
	assert.Error(t, err)
}

func TestEvaluateFormula(t *testing.T) {
	cases := []struct {
		name   string
		expr   string
		weight float64
		want   float64
		ok     bool
	}{
		{"linear", "weight * 0.03", 100, 3, true},
		{"parentheses", "(weight + 50) / 2", 150, 100, true},
		{"constant", "4.5", 0, 4.5, true},
		{"unknown variable", "weight * rate", 100, 0, false},
		{"empty", "", 100, 0, false},
		{"injection attempt", `weight; "rm"`, 100, 0, false},
		{"malformed", "weight * * 2", 100, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := feedcalc.EvaluateFormula(tc.expr, tc.weight)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}
