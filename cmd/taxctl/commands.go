package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/rules"
	"github.com/username/ustax/src/services"
	"github.com/username/ustax/src/validation"
)

var errValidationFailed = errors.New("rule validation failed")

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check rule-set files against the table invariants",
		Long: `Validates YAML rule-set files. With no arguments, validates the built-in years
and every file in --rules-dir. Exits non-zero when any table has an error-level issue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if _, err := opts.service(); err != nil {
					return err
				}
				fmt.Fprintln(out, "OK: built-in rule sets"+dirSuffix(opts.rulesDir))
				return nil
			}

			hasError := false
			for _, path := range args {
				yr, report, err := validateFile(path)
				if err != nil {
					fmt.Fprintf(out, "ERROR in %s: %v\n", path, err)
					hasError = true
					continue
				}
				for _, issue := range report.Issues {
					fmt.Fprintf(out, "%s %s: %s\n", strings.ToUpper(string(issue.Level)), path, issue)
				}
				if report.Err() != nil || yr == nil {
					hasError = true
					continue
				}
				fmt.Fprintf(out, "OK: %s (year %d, %d jurisdictions)\n", path, report.Year, len(yr.States))
			}
			if hasError {
				return errValidationFailed
			}
			return nil
		},
	}
}

func dirSuffix(dir string) string {
	if dir == "" {
		return ""
	}
	return " and " + dir
}

// validateFile sniffs, parses and validates one rule file. A ranged bracket table that
// does not parse is reported defect by defect.
func validateFile(path string) (*rules.YearRules, validation.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, validation.Report{}, err
	}
	defer f.Close()
	if _, err := validation.ValidateRuleFileContent(f); err != nil {
		return nil, validation.Report{}, err
	}
	yr, err := rules.Parse(f)
	if err != nil {
		var rangeErr *models.RangeTableError
		if errors.As(err, &rangeErr) {
			table := fmt.Sprintf("brackets at line %d", rangeErr.Line)
			return nil, validation.Report{Issues: validation.ValidateRanges(table, "", rangeErr.Ranges)}, nil
		}
		return nil, validation.Report{}, err
	}
	return yr, validation.ValidateYear(yr), nil
}

func newFederalCmd(opts *options) *cobra.Command {
	var year int
	var input string
	cmd := &cobra.Command{
		Use:   "federal",
		Short: "Compute the federal return for a JSON input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in models.FederalInput
			if err := readInput(cmd, input, &in); err != nil {
				return err
			}
			svc, err := opts.service()
			if err != nil {
				return err
			}
			res, err := svc.ComputeFederal(cmd.Context(), year, in)
			if err != nil {
				return describe(err)
			}
			return writeFederal(cmd.OutOrStdout(), opts.format, res)
		},
	}
	cmd.Flags().IntVar(&year, "year", 2025, "Tax year")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Input JSON file, - for stdin")
	return cmd
}

func newStateCmd(opts *options) *cobra.Command {
	var year int
	var input, code string
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Compute one jurisdiction's return",
		Long: `Computes one jurisdiction. The input file holds {"federal_input": {...}, "input": {...}};
the federal result is computed from federal_input when it is present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req services.JurisdictionRequest
			if err := readInput(cmd, input, &req); err != nil {
				return err
			}
			svc, err := opts.service()
			if err != nil {
				return err
			}
			res, err := svc.ComputeJurisdiction(cmd.Context(), year, code, req)
			if err != nil {
				return describe(err)
			}
			return writeJurisdictions(cmd.OutOrStdout(), opts.format, []models.JurisdictionResult{*res})
		},
	}
	cmd.Flags().IntVar(&year, "year", 2025, "Tax year")
	cmd.Flags().StringVar(&code, "code", "", "Jurisdiction code, e.g. NY")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Input JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newCompareCmd(opts *options) *cobra.Command {
	var year int
	var input string
	var codes []string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compute the same input in several jurisdictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req services.JurisdictionRequest
			if err := readInput(cmd, input, &req); err != nil {
				return err
			}
			svc, err := opts.service()
			if err != nil {
				return err
			}
			results, err := svc.CompareJurisdictions(cmd.Context(), year, codes, req)
			if err != nil {
				return describe(err)
			}
			return writeJurisdictions(cmd.OutOrStdout(), opts.format, results)
		},
	}
	cmd.Flags().IntVar(&year, "year", 2025, "Tax year")
	cmd.Flags().StringSliceVar(&codes, "codes", nil, "Jurisdiction codes; all registered when empty")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Input JSON file, - for stdin")
	return cmd
}

func newJurisdictionsCmd(opts *options) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "jurisdictions",
		Short: "List the jurisdictions registered for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			configs, err := svc.ListJurisdictions(year)
			if err != nil {
				return err
			}
			return writeConfigs(cmd.OutOrStdout(), opts.format, configs)
		},
	}
	cmd.Flags().IntVar(&year, "year", 2025, "Tax year")
	return cmd
}

func readInput(cmd *cobra.Command, path string, dst any) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to read input %s: %w", path, err)
	}
	return nil
}

// describe expands input validation errors into one line per field.
func describe(err error) error {
	var inputErr *validation.InputValidationError
	if !errors.As(err, &inputErr) {
		return err
	}
	lines := make([]string, 0, len(inputErr.Fields))
	for _, f := range inputErr.Fields {
		lines = append(lines, "  "+f.Field+": "+f.Message)
	}
	return fmt.Errorf("%w\n%s", validation.ErrValidationFailed, strings.Join(lines, "\n"))
}
