package rules

import "github.com/username/ustax/src/models"

var noIncomeTaxStates = []struct{ code, name string }{
	{"AK", "Alaska"},
	{"FL", "Florida"},
	{"NV", "Nevada"},
	{"NH", "New Hampshire"},
	{"SD", "South Dakota"},
	{"TN", "Tennessee"},
	{"TX", "Texas"},
	{"WA", "Washington"},
	{"WY", "Wyoming"},
}

func noTax(year int) map[string]*StateRules {
	out := make(map[string]*StateRules, len(noIncomeTaxStates))
	for _, s := range noIncomeTaxStates {
		out[s.code] = &StateRules{Code: s.code, Name: s.name, TaxType: TaxNone, EffectiveYear: year}
	}
	return out
}

func same(v int64) CentsBy { return models.Same(d(v)) }

func sameSchedule(thresholds []int64, rates []float64) Schedules {
	return models.Same(models.NewSchedule(thresholds, rates))
}

func flatLocalities(base LocalBase, names map[string]string, rates map[string]float64) map[string]Locality {
	out := make(map[string]Locality, len(rates))
	for code, rate := range rates {
		out[code] = Locality{Name: names[code], Base: base, Rate: rate}
	}
	return out
}

// States2025 returns the 2025 jurisdiction tables keyed by postal code.
func States2025() map[string]*StateRules {
	states := noTax(2025)
	for _, s := range []*StateRules{
		colorado2025(), georgia2025(), illinois2025(), indiana2025(), kentucky2025(),
		massachusetts2025(), michigan2025(), northCarolina2025(), pennsylvania2025(), utah2025(),
		california2025(), maryland2025(), minnesota2025(), newJersey2025(), newYork2025(),
		ohio2025(), virginia2025(),
	} {
		states[s.Code] = s
	}
	return states
}

// States2024 carries only the jurisdictions without an income tax.
func States2024() map[string]*StateRules {
	return noTax(2024)
}

func colorado2025() *StateRules {
	return &StateRules{
		Code:          "CO",
		Name:          "Colorado",
		TaxType:       TaxFlat,
		EffectiveYear: 2025,
		StartingPoint: StartFederalTaxable,
		FlatRate:      0.044,
		EITC:          EITCMatch{Percent: 0.35, Refundable: true},
		Notes:         []string{"Colorado starts from federal taxable income."},
	}
}

func georgia2025() *StateRules {
	return &StateRules{
		Code:                 "GA",
		Name:                 "Georgia",
		TaxType:              TaxFlat,
		EffectiveYear:        2025,
		FlatRate:             0.0519,
		StandardDeduction:    by(12000, 24000, 12000, 12000),
		DependentExemption:   d(4000),
		ExemptSocialSecurity: true,
		RetirementExclusion:  &RetirementExclusion{MaxPerPerson: d(65000), MinAge: 65},
	}
}

func illinois2025() *StateRules {
	return &StateRules{
		Code:                 "IL",
		Name:                 "Illinois",
		TaxType:              TaxFlat,
		EffectiveYear:        2025,
		FlatRate:             0.0495,
		PersonalExemption:    d(2850),
		DependentExemption:   d(2850),
		AgeExemption:         d(1000),
		ExemptionPhaseout:    &Phaseout{Start: by(250000, 500000, 250000, 250000)},
		ExemptSocialSecurity: true,
		RetirementExclusion:  &RetirementExclusion{},
		EITC:                 EITCMatch{Percent: 0.20, Refundable: true},
		PropertyTax: &PropertyTaxRelief{
			CreditRate: 0.05,
			AGILimit:   by(250000, 500000, 250000, 250000),
		},
	}
}

func indiana2025() *StateRules {
	return &StateRules{
		Code:                 "IN",
		Name:                 "Indiana",
		TaxType:              TaxFlat,
		EffectiveYear:        2025,
		FlatRate:             0.03,
		PersonalExemption:    d(1000),
		DependentExemption:   d(1500),
		AgeExemption:         d(1000),
		ExemptSocialSecurity: true,
		EITC:                 EITCMatch{Percent: 0.10, Refundable: true},
		Localities: flatLocalities(LocalOnStateTaxable,
			map[string]string{"MARION": "Marion County", "HAMILTON": "Hamilton County", "ALLEN": "Allen County", "LAKE": "Lake County"},
			map[string]float64{"MARION": 0.0202, "HAMILTON": 0.011, "ALLEN": 0.0159, "LAKE": 0.015},
		),
	}
}

func kentucky2025() *StateRules {
	return &StateRules{
		Code:                 "KY",
		Name:                 "Kentucky",
		TaxType:              TaxFlat,
		EffectiveYear:        2025,
		FlatRate:             0.04,
		StandardDeduction:    by(3270, 6540, 3270, 3270),
		ExemptSocialSecurity: true,
		RetirementExclusion:  &RetirementExclusion{MaxPerPerson: d(31110)},
	}
}

func massachusetts2025() *StateRules {
	return &StateRules{
		Code:          "MA",
		Name:          "Massachusetts",
		TaxType:       TaxFlat,
		EffectiveYear: 2025,
		FlatRate:      0.05,
		Surtax:        &Surtax{Threshold: d(1083150), Rate: 0.04},
		// Massachusetts personal exemptions depend on filing status.
		StandardDeduction:    by(4400, 8800, 4400, 6800),
		DependentExemption:   d(1000),
		AgeExemption:         d(700),
		ExemptSocialSecurity: true,
		EITC:                 EITCMatch{Percent: 0.40, Refundable: true},
		Notes:                []string{"4% surtax applies to taxable income above $1,083,150."},
	}
}

func michigan2025() *StateRules {
	return &StateRules{
		Code:                 "MI",
		Name:                 "Michigan",
		TaxType:              TaxFlat,
		EffectiveYear:        2025,
		FlatRate:             0.0425,
		PersonalExemption:    d(5800),
		DependentExemption:   d(5800),
		ExemptSocialSecurity: true,
		EITC:                 EITCMatch{Percent: 0.30, Refundable: true},
		PropertyTax: &PropertyTaxRelief{
			CreditRate:       0.60,
			CreditFloorRate:  0.032,
			CreditMax:        d(1700),
			CreditRefundable: true,
			AGILimit:         same(69700),
		},
		Localities: flatLocalities(LocalOnStateTaxable,
			map[string]string{"DETROIT": "Detroit", "GRAND_RAPIDS": "Grand Rapids", "LANSING": "Lansing", "FLINT": "Flint"},
			map[string]float64{"DETROIT": 0.024, "GRAND_RAPIDS": 0.015, "LANSING": 0.01, "FLINT": 0.01},
		),
	}
}

func northCarolina2025() *StateRules {
	return &StateRules{
		Code:                 "NC",
		Name:                 "North Carolina",
		TaxType:              TaxFlat,
		EffectiveYear:        2025,
		FlatRate:             0.0425,
		StandardDeduction:    by(12750, 25500, 12750, 19125),
		ExemptSocialSecurity: true,
	}
}

func pennsylvania2025() *StateRules {
	return &StateRules{
		Code:                 "PA",
		Name:                 "Pennsylvania",
		TaxType:              TaxFlat,
		EffectiveYear:        2025,
		FlatRate:             0.0307,
		ExemptSocialSecurity: true,
		RetirementExclusion:  &RetirementExclusion{MinAge: 60},
		Localities: flatLocalities(LocalOnStateAGI,
			map[string]string{"PHILADELPHIA": "Philadelphia", "PITTSBURGH": "Pittsburgh"},
			map[string]float64{"PHILADELPHIA": 0.0375, "PITTSBURGH": 0.03},
		),
		Notes: []string{"Pennsylvania allows no standard deduction or personal exemption."},
	}
}

func utah2025() *StateRules {
	return &StateRules{
		Code:          "UT",
		Name:          "Utah",
		TaxType:       TaxFlat,
		EffectiveYear: 2025,
		FlatRate:      0.045,
		ExemptionCredits: &ExemptionCredits{
			Personal:  d(900),
			Dependent: d(100),
			Phaseout:  &Phaseout{Start: by(18213, 36426, 18213, 27320), Range: same(70000)},
		},
		Notes: []string{"The taxpayer tax credit is modeled as a per-person credit."},
	}
}

func california2025() *StateRules {
	rates := []float64{0.01, 0.02, 0.04, 0.06, 0.08, 0.093, 0.103, 0.113, 0.123}
	single := []int64{0, 11079, 26264, 41452, 57542, 72724, 371479, 445771, 742953}
	head := []int64{0, 22173, 52530, 67716, 83805, 98990, 505208, 606251, 1010417}
	joint := make([]int64, len(single))
	for i, t := range single {
		joint[i] = 2 * t
	}
	return &StateRules{
		Code:                 "CA",
		Name:                 "California",
		TaxType:              TaxProgressive,
		EffectiveYear:        2025,
		Brackets:             schedules(single, joint, single, head, rates),
		Surtax:               &Surtax{Threshold: d(1000000), Rate: 0.01},
		StandardDeduction:    by(5540, 11080, 5540, 11080),
		ExemptSocialSecurity: true,
		ExemptionCredits: &ExemptionCredits{
			Personal:  d(149),
			Dependent: d(461),
			Phaseout:  &Phaseout{Start: by(252203, 504411, 252203, 378310), Range: same(60000)},
		},
		Notes: []string{"Mental health services tax of 1% applies above $1,000,000."},
	}
}

func maryland2025() *StateRules {
	rates := []float64{0.02, 0.03, 0.04, 0.0475, 0.05, 0.0525, 0.055, 0.0575, 0.0625, 0.065}
	single := []int64{0, 1000, 2000, 3000, 100000, 125000, 150000, 250000, 500000, 1000000}
	joint := []int64{0, 1000, 2000, 3000, 150000, 175000, 225000, 300000, 600000, 1200000}
	return &StateRules{
		Code:                 "MD",
		Name:                 "Maryland",
		TaxType:              TaxProgressive,
		EffectiveYear:        2025,
		Brackets:             schedules(single, joint, single, joint, rates),
		StandardDeduction:    by(3350, 6700, 3350, 6700),
		PersonalExemption:    d(3200),
		DependentExemption:   d(3200),
		AgeExemption:         d(1000),
		ExemptionPhaseout:    &Phaseout{Start: by(100000, 150000, 100000, 125000), Range: by(50000, 50000, 50000, 50000)},
		ExemptSocialSecurity: true,
		EITC:                 EITCMatch{Percent: 0.45, Refundable: true},
		Localities: flatLocalities(LocalOnStateTaxable,
			map[string]string{
				"BALTIMORE_CITY": "Baltimore City", "MONTGOMERY": "Montgomery County", "PRINCE_GEORGES": "Prince George's County",
				"HOWARD": "Howard County", "ANNE_ARUNDEL": "Anne Arundel County", "WORCESTER": "Worcester County",
			},
			map[string]float64{
				"BALTIMORE_CITY": 0.032, "MONTGOMERY": 0.032, "PRINCE_GEORGES": 0.032,
				"HOWARD": 0.032, "ANNE_ARUNDEL": 0.0281, "WORCESTER": 0.0225,
			},
		),
	}
}

func minnesota2025() *StateRules {
	rates := []float64{0.0535, 0.068, 0.0785, 0.0985}
	return &StateRules{
		Code:          "MN",
		Name:          "Minnesota",
		TaxType:       TaxProgressive,
		EffectiveYear: 2025,
		Brackets: schedules(
			[]int64{0, 32570, 106990, 198630},
			[]int64{0, 47620, 189180, 330410},
			[]int64{0, 23810, 94590, 165205},
			[]int64{0, 40100, 161130, 264050},
			rates,
		),
		StandardDeduction:  by(14950, 29900, 14950, 22500),
		DeductionPhaseout:  &Phaseout{Start: by(238950, 238950, 119475, 238950), Range: same(500000)},
		DependentExemption: d(5200),
		Notes:              []string{"Social Security benefits follow the federal taxable amount."},
	}
}

func newJersey2025() *StateRules {
	single := []int64{0, 20000, 35000, 40000, 75000, 500000, 1000000}
	singleRates := []float64{0.014, 0.0175, 0.035, 0.05525, 0.0637, 0.0897, 0.1075}
	joint := []int64{0, 20000, 50000, 70000, 80000, 150000, 500000, 1000000}
	jointRates := []float64{0.014, 0.0175, 0.0245, 0.035, 0.05525, 0.0637, 0.0897, 0.1075}
	return &StateRules{
		Code:          "NJ",
		Name:          "New Jersey",
		TaxType:       TaxProgressive,
		EffectiveYear: 2025,
		Brackets: Schedules{
			Single:            models.NewSchedule(single, singleRates),
			MarriedJointly:    models.NewSchedule(joint, jointRates),
			MarriedSeparately: models.NewSchedule(single, singleRates),
			HeadOfHousehold:   models.NewSchedule(joint, jointRates),
		},
		PersonalExemption:    d(1000),
		DependentExemption:   d(1500),
		AgeExemption:         d(1000),
		ExemptSocialSecurity: true,
		RetirementExclusion:  &RetirementExclusion{MaxPerPerson: d(50000), MinAge: 62},
		EITC:                 EITCMatch{Percent: 0.40, Refundable: true},
		PropertyTax: &PropertyTaxRelief{
			CreditFlat:       d(50),
			CreditRefundable: true,
			DeductionMax:     d(15000),
		},
	}
}

func newYork2025() *StateRules {
	rates := []float64{0.04, 0.045, 0.0525, 0.055, 0.06, 0.0685, 0.0965, 0.103, 0.109}
	single := []int64{0, 8500, 11700, 13900, 80650, 215400, 1077550, 5000000, 25000000}
	nyc := schedules(
		[]int64{0, 12000, 25000, 50000},
		[]int64{0, 21600, 45000, 90000},
		[]int64{0, 12000, 25000, 50000},
		[]int64{0, 14400, 30000, 60000},
		[]float64{0.03078, 0.03762, 0.03819, 0.03876},
	)
	return &StateRules{
		Code:          "NY",
		Name:          "New York",
		TaxType:       TaxProgressive,
		EffectiveYear: 2025,
		Brackets: schedules(
			single,
			[]int64{0, 17150, 23600, 27900, 161550, 323200, 2155350, 5000000, 25000000},
			single,
			[]int64{0, 12800, 17650, 20900, 107650, 269300, 1616450, 5000000, 25000000},
			rates,
		),
		StandardDeduction:    by(8000, 16050, 8000, 11200),
		DependentExemption:   d(1000),
		ExemptSocialSecurity: true,
		RetirementExclusion:  &RetirementExclusion{MaxPerPerson: d(20000), MinAge: 59},
		EITC:                 EITCMatch{Percent: 0.30, Refundable: true},
		Localities: map[string]Locality{
			"NYC":     {Name: "New York City", Base: LocalOnStateTaxable, Brackets: &nyc},
			"YONKERS": {Name: "Yonkers", Base: LocalOnStateTax, Rate: 0.1675},
		},
	}
}

func ohio2025() *StateRules {
	return &StateRules{
		Code:                 "OH",
		Name:                 "Ohio",
		TaxType:              TaxProgressive,
		EffectiveYear:        2025,
		Brackets:             sameSchedule([]int64{0, 26050, 100000}, []float64{0, 0.0275, 0.03125}),
		PersonalExemption:    d(2150),
		DependentExemption:   d(2150),
		ExemptionPhaseout:    &Phaseout{Start: same(750000)},
		ExemptSocialSecurity: true,
		Localities: flatLocalities(LocalOnStateAGI,
			map[string]string{"COLUMBUS": "Columbus", "CLEVELAND": "Cleveland", "CINCINNATI": "Cincinnati", "TOLEDO": "Toledo", "DAYTON": "Dayton"},
			map[string]float64{"COLUMBUS": 0.025, "CLEVELAND": 0.025, "CINCINNATI": 0.018, "TOLEDO": 0.025, "DAYTON": 0.025},
		),
	}
}

func virginia2025() *StateRules {
	return &StateRules{
		Code:                 "VA",
		Name:                 "Virginia",
		TaxType:              TaxProgressive,
		EffectiveYear:        2025,
		Brackets:             sameSchedule([]int64{0, 3000, 5000, 17000}, []float64{0.02, 0.03, 0.05, 0.0575}),
		StandardDeduction:    by(8750, 17500, 8750, 8750),
		PersonalExemption:    d(930),
		DependentExemption:   d(930),
		AgeExemption:         d(800),
		ExemptSocialSecurity: true,
		AgeDeduction: &AgeDeduction{
			Amount:   d(12000),
			MinAge:   65,
			Phaseout: &Phaseout{Start: by(50000, 75000, 37500, 50000), Range: by(12000, 24000, 12000, 12000)},
		},
		EITC: EITCMatch{Percent: 0.15, Refundable: true},
	}
}
