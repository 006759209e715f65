package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

func validInput() *models.FederalInput {
	return &models.FederalInput{
		FilingStatus: models.Single,
		Taxpayer:     models.Person{Age: 40},
		Income: models.Income{
			Wages:           money.FromDollars(60000),
			TaxableInterest: money.FromDollars(200),
		},
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var ive *InputValidationError
	require.True(t, errors.As(err, &ive), "want *InputValidationError, got %T", err)
	names := make([]string, len(ive.Fields))
	for i, f := range ive.Fields {
		names[i] = f.Field
	}
	return names
}

func TestValidateFederalInputAcceptsValid(t *testing.T) {
	assert.NoError(t, ValidateFederalInput(validInput()))
}

func TestValidateFederalInputCollectsEveryProblem(t *testing.T) {
	in := validInput()
	in.FilingStatus = 0
	in.Taxpayer.Age = -3
	in.Income.Wages = -money.FromDollars(1)
	in.Income.OrdinaryDividends = money.FromDollars(100)
	in.Income.QualifiedDividends = money.FromDollars(200)
	in.Itemized.Charitable = money.MaxAmount + 1
	in.Dependents = []models.Dependent{{Name: "A", Age: 5, MonthsLived: 13}}
	in.PremiumCredit = &models.PremiumCreditReconciliation{HouseholdSize: 0}

	err := ValidateFederalInput(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.ElementsMatch(t, []string{
		"filing_status",
		"taxpayer.age",
		"dependents[0].months_lived",
		"income.wages",
		"income.qualified_dividends",
		"itemized.charitable",
		"premium_credit.household_size",
	}, fieldNames(t, err))
}

func TestValidateFederalInputLossFields(t *testing.T) {
	in := validInput()
	in.Income.LongTermCapitalGain = -money.FromDollars(10000)
	in.Income.BusinessIncome = -money.FromDollars(5000)
	assert.NoError(t, ValidateFederalInput(in))

	in.Income.CapitalLossCarryover = -money.FromDollars(1)
	assert.Equal(t, []string{"income.capital_loss_carryover"}, fieldNames(t, ValidateFederalInput(in)))
}

func TestValidateFederalInputSpouseRules(t *testing.T) {
	in := validInput()
	in.Spouse = &models.Person{Age: 40}
	in.SpouseItemizes = true
	assert.Equal(t, []string{"spouse", "spouse_itemizes"}, fieldNames(t, ValidateFederalInput(in)))

	in.FilingStatus = models.MarriedSeparately
	assert.NoError(t, ValidateFederalInput(in))
}

func TestValidateFederalInputNil(t *testing.T) {
	assert.ErrorIs(t, ValidateFederalInput(nil), ErrValidationFailed)
}

func TestInputValidationErrorDiagnostics(t *testing.T) {
	in := validInput()
	in.FilingStatus = 0
	err := ValidateFederalInput(in)

	var ive *InputValidationError
	require.True(t, errors.As(err, &ive))
	diags := ive.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "FED-E-001", diags[0].Code)
	assert.Equal(t, models.SeverityError, diags[0].Severity)
	assert.Equal(t, models.PhaseInputValidation, diags[0].Phase)
	assert.True(t, strings.HasPrefix(err.Error(), "input validation failed (1 problem(s))"))
}

func TestValidateJurisdictionInput(t *testing.T) {
	in := &models.JurisdictionTaxInput{FilingStatus: models.MarriedJointly, TaxpayerAge: 45, SpouseAge: 44}
	assert.NoError(t, ValidateJurisdictionInput(in))

	in.PropertyTaxChoice = "both"
	in.Dependents = -1
	in.PropertyTaxPaid = -money.FromDollars(10)
	in.LocalCode = "NYC\x00"
	assert.Equal(t, []string{"dependents", "local_code", "property_tax_choice", "input.property_tax_paid"},
		fieldNames(t, ValidateJurisdictionInput(in)))
}

func TestValidateJurisdictionInputChecksFederalAmounts(t *testing.T) {
	in := &models.JurisdictionTaxInput{FilingStatus: models.Single, TaxpayerAge: 45}
	in.Federal.AGI = -money.FromDollars(40000)
	assert.NoError(t, ValidateJurisdictionInput(in))

	in.Federal.AGI = math.MaxInt64 - 100
	in.Federal.TaxableIncome = -1
	in.Federal.Income.TaxableSocialSecurity = money.MaxAmount + 1
	in.Federal.Income.RetirementDistributions = -money.MaxAmount - 1
	in.Federal.Credits.EarnedIncome = -money.FromDollars(1)
	assert.Equal(t, []string{
		"federal.agi",
		"federal.taxable_income",
		"federal.income.taxable_social_security",
		"federal.income.retirement_distributions",
		"federal.credits.earned_income",
	}, fieldNames(t, ValidateJurisdictionInput(in)))
}

func TestSanitizeFederalInput(t *testing.T) {
	in := validInput()
	in.Dependents = []models.Dependent{{Name: " Ann\x07 "}}
	in.ForeignIncome = []models.ForeignIncomeSource{{Country: " ca\n"}}
	SanitizeFederalInput(in)
	assert.Equal(t, "Ann", in.Dependents[0].Name)
	assert.Equal(t, "CA", in.ForeignIncome[0].Country)
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	assert.Equal(t, "New York", SanitizeForFormulaInjection("New York"))
}

func TestAmountParser(t *testing.T) {
	var p AmountParser
	var in models.Income
	p.ParseInto(&in.Wages, "income.wages", "$60,000.00")
	p.ParseInto(&in.TaxableInterest, "income.taxable_interest", "   ")
	p.ParseInto(&in.OtherIncome, "income.other_income", "twelve")

	assert.Equal(t, money.FromDollars(60000), in.Wages)
	assert.Equal(t, money.Cents(0), in.TaxableInterest)
	assert.Equal(t, money.Cents(0), in.OtherIncome)

	require.Len(t, p.Warnings(), 1)
	assert.Equal(t, "income.taxable_interest", p.Warnings()[0].Field)
	assert.Equal(t, models.SeverityWarning, p.Warnings()[0].Severity)

	err := p.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, []string{"income.other_income"}, fieldNames(t, err))
}

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("application/json; charset=utf-8"))
	assert.Error(t, ValidateClientContentType("text/plain"))
	assert.Error(t, ValidateClientContentType("application/xml"))
	assert.Error(t, ValidateClientContentType(""))
}

func TestValidateRuleFileContent(t *testing.T) {
	ct, err := ValidateRuleFileContent(strings.NewReader("year: 2030\nfederal: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)

	_, err = ValidateRuleFileContent(strings.NewReader("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	assert.Error(t, err)
}
