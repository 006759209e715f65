package federal

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/rules"
)

// premiumTaxCredit reconciles advance payments of the premium tax credit. A net credit
// is refundable; excess advance payments are repaid up to the income-band cap.
func (c *computation) premiumTaxCredit() {
	pc := c.in.PremiumCredit
	if pc == nil {
		c.diags.info(codeNoPremiumCredit, models.PhaseCredits, "premium_credit",
			"no marketplace coverage reported; premium tax credit not reconciled")
		return
	}
	p := c.r.PremiumCredit
	res := c.res

	nontaxableSS := money.SubFloor(c.in.Income.SocialSecurityBenefits, res.Income.TaxableSocialSecurity)
	household := (res.AGI + res.Income.TaxExemptInterest + nontaxableSS).Positive()
	povertyPct := 100 * float64(household) / float64(p.PovertyLine(pc.HouseholdSize))

	contribution := money.MulRate(household, applicableRate(p.Bands, povertyPct))
	allowed := money.Min(pc.AnnualPremium, money.SubFloor(pc.AnnualSLCSP, contribution))

	net := allowed - pc.AdvancePayments
	if net >= 0 {
		res.Credits.NetPremiumTaxCredit = net
		return
	}

	excess := -net
	if limit, ok := repaymentLimit(p.RepaymentCaps, povertyPct, c.status); ok && excess > limit {
		excess = limit
	}
	res.AdditionalTaxes.ExcessAPTCRepayment = excess
	c.diags.warn(codeExcessAPTC, models.PhaseAdditionalTaxes, "premium_credit.advance_payments",
		"advance premium tax credit exceeded the allowed credit; %s must be repaid", excess)
}

// applicableRate interpolates the expected contribution rate for household income at pct
// of the poverty line. A band with ToPct 0 is open-ended.
func applicableRate(bands []rules.ApplicableBand, pct float64) float64 {
	for _, b := range bands {
		if pct < b.FromPct {
			continue
		}
		if b.ToPct == 0 || b.ToPct <= b.FromPct {
			return b.EndRate
		}
		if pct < b.ToPct {
			return b.StartRate + (b.EndRate-b.StartRate)*(pct-b.FromPct)/(b.ToPct-b.FromPct)
		}
	}
	if n := len(bands); n > 0 {
		return bands[n-1].EndRate
	}
	return 0
}

// repaymentLimit returns the cap on excess advance payments, or false when income is
// above every capped band and the whole excess is repaid.
func repaymentLimit(caps []rules.RepaymentCap, pct float64, status models.FilingStatus) (money.Cents, bool) {
	for _, rc := range caps {
		if pct < rc.BelowPct {
			if status == models.Single {
				return rc.Single, true
			}
			return rc.Other, true
		}
	}
	return 0, false
}
