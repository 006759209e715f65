package rules

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

var federalRates = []float64{0.10, 0.12, 0.22, 0.24, 0.32, 0.35, 0.37}

func d(dollars int64) Cents { return money.FromDollars(dollars) }

// by lists whole-dollar values in table order: single, joint, separate, head of household.
func by(single, joint, separate, head int64) CentsBy {
	return CentsBy{Single: d(single), MarriedJointly: d(joint), MarriedSeparately: d(separate), HeadOfHousehold: d(head)}
}

func schedules(single, joint, separate, head []int64, rates []float64) Schedules {
	return Schedules{
		Single:            models.NewSchedule(single, rates),
		MarriedJointly:    models.NewSchedule(joint, rates),
		MarriedSeparately: models.NewSchedule(separate, rates),
		HeadOfHousehold:   models.NewSchedule(head, rates),
	}
}

// statutoryFederal carries the parameters fixed by statute rather than indexed each year.
func statutoryFederal() FederalRules {
	return FederalRules{
		SALTCap:                by(10000, 10000, 5000, 10000),
		MedicalFloorRate:       0.075,
		CharitableAGILimitRate: 0.60,
		CapitalLossLimit:       by(3000, 3000, 1500, 3000),
		EducatorExpenseMax:     d(300),
		NOLLimitRate:           0.80,
		SocialSecurity: SocialSecurityRules{
			BaseAmount:   by(25000, 32000, 0, 25000),
			AdjustedBase: by(34000, 44000, 0, 34000),
			LowerRate:    0.50,
			UpperRate:    0.85,
		},
		SelfEmployment: SelfEmploymentRules{
			NetEarningsFactor:  0.9235,
			SocialSecurityRate: 0.124,
			MedicareRate:       0.029,
			MinimumNetEarnings: d(400),
		},
		AdditionalMedicare: ThresholdRate{Rate: 0.009, Threshold: by(200000, 250000, 125000, 200000)},
		NIIT:               ThresholdRate{Rate: 0.038, Threshold: by(200000, 250000, 125000, 200000)},
		AMT: AMTRules{
			PhaseoutRate: 0.25,
			LowRate:      0.26,
			HighRate:     0.28,
		},
		QBI: QBIRules{
			Rate:         0.20,
			PhaseInRange: by(50000, 100000, 50000, 50000),
		},
		ChildTaxCredit: ChildTaxCreditRules{
			PerChild:          d(2000),
			OtherDependent:    d(500),
			MaxChildAge:       16,
			RefundableRate:    0.15,
			EarnedIncomeFloor: d(2500),
			PhaseoutStart:     by(200000, 400000, 200000, 200000),
			PhaseoutStep:      d(1000),
			PhaseoutPerStep:   d(50),
		},
		Education: EducationRules{
			AOTCFullTier:        d(2000),
			AOTCPartialTier:     d(2000),
			AOTCPartialRate:     0.25,
			AOTCRefundableShare: 0.40,
			LLCRate:             0.20,
			LLCMaxExpenses:      d(10000),
			PhaseoutStart:       by(80000, 160000, 0, 80000),
			PhaseoutRange:       by(10000, 20000, 0, 10000),
		},
		ForeignTax: ForeignTaxRules{DeMinimis: by(300, 600, 300, 300)},
		PremiumCredit: PremiumCreditRules{
			Bands: []ApplicableBand{
				{FromPct: 0, ToPct: 150, StartRate: 0, EndRate: 0},
				{FromPct: 150, ToPct: 200, StartRate: 0, EndRate: 0.02},
				{FromPct: 200, ToPct: 250, StartRate: 0.02, EndRate: 0.04},
				{FromPct: 250, ToPct: 300, StartRate: 0.04, EndRate: 0.06},
				{FromPct: 300, ToPct: 400, StartRate: 0.06, EndRate: 0.085},
				{FromPct: 400, ToPct: 0, StartRate: 0.085, EndRate: 0.085},
			},
		},
		Savers: SaversRules{MaxContribution: d(2000)},
	}
}

func eitcTiers(earned [3]int64, maxCredit [4]int64, start, startJoint [2]int64) [4]EITCTier {
	rates := [4]float64{0.0765, 0.34, 0.40, 0.45}
	phaseout := [4]float64{0.0765, 0.1598, 0.2106, 0.2106}
	var tiers [4]EITCTier
	for i := range tiers {
		e := earned[min(i, 2)]
		s, sj := start[min(i, 1)], startJoint[min(i, 1)]
		tiers[i] = EITCTier{
			Rate:               rates[i],
			EarnedAmount:       d(e),
			MaxCredit:          d(maxCredit[i]),
			PhaseoutRate:       phaseout[i],
			PhaseoutStart:      d(s),
			PhaseoutStartJoint: d(sj),
		}
	}
	return tiers
}

func saversTiers(fifty, twenty, ten CentsBy) []SaversTier {
	return []SaversTier{
		{Rate: 0.50, AGILimit: fifty},
		{Rate: 0.20, AGILimit: twenty},
		{Rate: 0.10, AGILimit: ten},
	}
}

// Federal2025 is the 2025 parameter set (Rev. Proc. 2024-40).
func Federal2025() FederalRules {
	f := statutoryFederal()
	f.Brackets = schedules(
		[]int64{0, 11925, 48475, 103350, 197300, 250525, 626350},
		[]int64{0, 23850, 96950, 206700, 394600, 501050, 751600},
		[]int64{0, 11925, 48475, 103350, 197300, 250525, 375800},
		[]int64{0, 17000, 64850, 103350, 197300, 250500, 626350},
		federalRates,
	)
	f.StandardDeduction = by(15000, 30000, 15000, 22500)
	f.AdditionalAgedOrBlind = by(2000, 1600, 1600, 2000)
	f.DependentStdMinimum = d(1350)
	f.DependentEarnedAddOn = d(450)
	f.CapitalGains = CapitalGainRules{
		ZeroCeiling:    by(48350, 96700, 48350, 64750),
		FifteenCeiling: by(533400, 600050, 300000, 566700),
	}
	f.StudentLoan = PhaseoutLimit{Max: d(2500), Start: by(85000, 170000, 0, 85000), Range: by(15000, 30000, 0, 15000)}
	f.SelfEmployment.WageBase = d(176100)
	f.AMT.Exemption = by(88100, 137000, 68500, 88100)
	f.AMT.PhaseoutStart = by(626350, 1252700, 626350, 626350)
	f.AMT.Breakpoint = by(239100, 239100, 119550, 239100)
	f.QBI.Threshold = by(197300, 394600, 197300, 197300)
	f.ChildTaxCredit.RefundableMax = d(1700)
	f.EITC = EITCRules{
		Tiers:                 eitcTiers([3]int64{8490, 12730, 17880}, [4]int64{649, 4328, 7152, 8046}, [2]int64{10620, 23350}, [2]int64{17730, 30470}),
		InvestmentIncomeLimit: d(11950),
		MinAgeNoChild:         25,
		MaxAgeNoChild:         64,
	}
	f.Savers.Tiers = saversTiers(
		by(23750, 47500, 23750, 35625),
		by(25500, 51000, 25500, 38250),
		by(39500, 79000, 39500, 59250),
	)
	f.PremiumCredit.PovertyLineBase = d(15060)
	f.PremiumCredit.PovertyLinePerPerson = d(5380)
	f.PremiumCredit.RepaymentCaps = []RepaymentCap{
		{BelowPct: 200, Single: d(375), Other: d(750)},
		{BelowPct: 300, Single: d(975), Other: d(1950)},
		{BelowPct: 400, Single: d(1625), Other: d(3250)},
	}
	return f
}

// Federal2024 is the 2024 parameter set (Rev. Proc. 2023-34).
func Federal2024() FederalRules {
	f := statutoryFederal()
	f.Brackets = schedules(
		[]int64{0, 11600, 47150, 100525, 191950, 243725, 609350},
		[]int64{0, 23200, 94300, 201050, 383900, 487450, 731200},
		[]int64{0, 11600, 47150, 100525, 191950, 243725, 365600},
		[]int64{0, 16550, 63100, 100500, 191950, 243700, 609350},
		federalRates,
	)
	f.StandardDeduction = by(14600, 29200, 14600, 21900)
	f.AdditionalAgedOrBlind = by(1950, 1550, 1550, 1950)
	f.DependentStdMinimum = d(1300)
	f.DependentEarnedAddOn = d(450)
	f.CapitalGains = CapitalGainRules{
		ZeroCeiling:    by(47025, 94050, 47025, 63000),
		FifteenCeiling: by(518900, 583750, 291850, 551350),
	}
	f.StudentLoan = PhaseoutLimit{Max: d(2500), Start: by(80000, 165000, 0, 80000), Range: by(15000, 30000, 0, 15000)}
	f.SelfEmployment.WageBase = d(168600)
	f.AMT.Exemption = by(85700, 133300, 66650, 85700)
	f.AMT.PhaseoutStart = by(609350, 1218700, 609350, 609350)
	f.AMT.Breakpoint = by(232600, 232600, 116300, 232600)
	f.QBI.Threshold = by(191950, 383900, 191950, 191950)
	f.ChildTaxCredit.RefundableMax = d(1700)
	f.EITC = EITCRules{
		Tiers:                 eitcTiers([3]int64{8260, 12390, 17400}, [4]int64{632, 4213, 6960, 7830}, [2]int64{10330, 22720}, [2]int64{17250, 29640}),
		InvestmentIncomeLimit: d(11600),
		MinAgeNoChild:         25,
		MaxAgeNoChild:         64,
	}
	f.Savers.Tiers = saversTiers(
		by(23000, 46000, 23000, 34500),
		by(25000, 50000, 25000, 37500),
		by(38250, 76500, 38250, 57375),
	)
	f.PremiumCredit.PovertyLineBase = d(14580)
	f.PremiumCredit.PovertyLinePerPerson = d(5140)
	f.PremiumCredit.RepaymentCaps = []RepaymentCap{
		{BelowPct: 200, Single: d(350), Other: d(700)},
		{BelowPct: 300, Single: d(900), Other: d(1800)},
		{BelowPct: 400, Single: d(1500), Other: d(3000)},
	}
	return f
}
