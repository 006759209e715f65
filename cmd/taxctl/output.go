package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/username/ustax/src/jurisdictions"
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/utils"
	"github.com/username/ustax/src/validation"
)

func percent(rate float64) string {
	return humanize.Ftoa(utils.Percent(rate)) + "%"
}

// plain renders cents as a signed decimal with no currency formatting, for CSV.
func plain(c money.Cents) string {
	return c.Decimal().StringFixed(2)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCSV writes rows, guarding every text cell against spreadsheet formula injection.
// Numeric cells are written as is so negative amounts stay numbers.
func writeCSV(w io.Writer, header []string, rows [][]string, textColumns ...int) error {
	text := make(map[int]bool, len(textColumns))
	for _, c := range textColumns {
		text[c] = true
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		for i := range row {
			if text[i] {
				row[i] = validation.SanitizeForFormulaInjection(row[i])
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type line struct {
	label string
	value money.Cents
}

func writeFederal(w io.Writer, format string, res *models.FederalResult) error {
	switch format {
	case "json":
		return writeJSON(w, res)
	case "csv":
		rows := [][]string{}
		for _, l := range federalLines(res) {
			rows = append(rows, []string{l.label, plain(l.value)})
		}
		for _, d := range res.Diagnostics {
			rows = append(rows, []string{"diagnostic " + d.Code, d.Message})
		}
		return writeCSV(w, []string{"line", "amount"}, rows, 0)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Federal return %d\t%s\t\n", res.Year, res.FilingStatus)
	for _, l := range federalLines(res) {
		fmt.Fprintf(tw, "%s\t%s\t\n", l.label, l.value)
	}
	fmt.Fprintf(tw, "Marginal rate\t%s\t\n", percent(res.MarginalRate))
	fmt.Fprintf(tw, "Effective rate\t%s\t\n", percent(res.EffectiveRate))
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "[%s] %s: %s\n", d.Severity, d.Code, d.Message)
	}
	return nil
}

func federalLines(res *models.FederalResult) []line {
	add := res.AdditionalTaxes
	return []line{
		{"Total income", res.Income.TotalIncome},
		{"Adjustments", res.Adjustments.Total},
		{"AGI", res.AGI},
		{"Deduction (" + string(res.DeductionType) + ")", res.Deduction},
		{"QBI deduction", res.QBIDeduction},
		{"NOL deduction", res.NOLDeduction},
		{"Taxable income", res.TaxableIncome},
		{"Tax before credits", res.TaxBeforeCredits},
		{"AMT", add.AMT},
		{"Self-employment tax", add.SETax},
		{"Net investment income tax", add.NIIT},
		{"Additional Medicare tax", add.MedicareSurtax},
		{"Excess APTC repayment", add.ExcessAPTCRepayment},
		{"Nonrefundable credits", res.Credits.TotalNonrefundable},
		{"Refundable credits", res.Credits.TotalRefundable},
		{"Total tax", res.TotalTax},
		{"Payments", res.TotalPayments},
		{"Refund (owed if negative)", res.RefundOrOwe},
	}
}

func writeJurisdictions(w io.Writer, format string, results []models.JurisdictionResult) error {
	switch format {
	case "json":
		return writeJSON(w, results)
	case "csv":
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				r.Code, r.Name,
				plain(r.StateAGI), plain(r.StateTaxableIncome), plain(r.StateTax), plain(r.LocalTax),
				plain(r.StateCredits.NonRefundable), plain(r.StateCredits.Refundable),
				plain(r.TotalStateLiability), plain(r.StateRefundOrOwe),
				strconv.FormatFloat(r.EffectiveRate, 'f', 4, 64),
				strings.Join(r.Notes, " | "),
			})
		}
		header := []string{"code", "name", "state_agi", "taxable_income", "state_tax", "local_tax",
			"nonrefundable_credits", "refundable_credits", "liability", "refund_or_owe", "effective_rate", "notes"}
		return writeCSV(w, header, rows, 0, 1, 11)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tSTATE AGI\tTAX\tLOCAL\tLIABILITY\tREFUND/OWE\tRATE\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Code, r.Name, r.StateAGI, r.StateTax, r.LocalTax, r.TotalStateLiability, r.StateRefundOrOwe, percent(r.EffectiveRate))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(results) == 1 {
		for _, n := range results[0].Notes {
			fmt.Fprintln(w, "  -", n)
		}
	}
	return nil
}

func writeConfigs(w io.Writer, format string, configs []jurisdictions.Config) error {
	switch format {
	case "json":
		return writeJSON(w, configs)
	case "csv":
		rows := make([][]string, 0, len(configs))
		for _, c := range configs {
			rows = append(rows, []string{c.Code, c.Name, strconv.FormatBool(c.HasTax), strconv.FormatBool(c.HasLocalTax),
				string(c.TaxType), strconv.FormatFloat(c.TopRate, 'f', 4, 64), strconv.FormatFloat(c.EITCPercent, 'f', -1, 64), strconv.Itoa(c.EffectiveYear)})
		}
		return writeCSV(w, []string{"code", "name", "has_tax", "has_local_tax", "tax_type", "top_rate", "eitc_percent", "effective_year"}, rows, 0, 1)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tTAX\tTOP RATE\tLOCAL\tEITC MATCH\t")
	for _, c := range configs {
		taxType := string(c.TaxType)
		if !c.HasTax {
			taxType = "none"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t\n", c.Code, c.Name, taxType, percent(c.TopRate), c.HasLocalTax, percent(c.EITCPercent))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s jurisdictions\n", humanize.Comma(int64(len(configs))))
	return nil
}
