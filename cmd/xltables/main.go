package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/javajack/xltables"
	"github.com/javajack/xltables/internal/store"
)

// errChecksFailed makes the process exit non-zero after a report was printed.
var errChecksFailed = errors.New("checks failed")

func main() {
	cfg := loadConfig()

	rootCmd := &cobra.Command{
		Use:           "xltables",
		Short:         "Extract pricing lookup tables from the base pricing workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.Workbook, "workbook", cfg.Workbook, "Path of the xlsx workbook")
	rootCmd.PersistentFlags().StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory of the JSON files")
	rootCmd.PersistentFlags().StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "YAML catalog of tables (default: built-in)")
	rootCmd.PersistentFlags().IntVarP(&cfg.Verbosity, "verbose", "v", cfg.Verbosity, "Log verbosity")
	rootCmd.PersistentFlags().BoolVar(&cfg.Recalculate, "recalculate", cfg.Recalculate, "Evaluate formulas without a cached value")

	rootCmd.AddCommand(
		newExtractCmd(cfg),
		newVerifyCmd(cfg),
		newInspectCmd(cfg),
		newFormulasCmd(cfg),
		newLoadCmd(cfg),
		newValidateCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newExtractCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract every catalog table into JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := cfg.catalog()
			if err != nil {
				return err
			}
			fmt.Printf("Loading workbook: %s\n", cfg.Workbook)
			res, err := xltables.Extract(cmd.Context(), cfg.Workbook, cfg.options(cat)...)
			if err != nil {
				return err
			}

			files, err := xltables.WriteTables(cfg.OutputDir, res)
			if err != nil {
				return err
			}
			if err := xltables.WriteSummary(os.Stdout, files, res); err != nil {
				return err
			}
			if len(res.Failed()) > 0 {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Tables extracted in parallel")
	return cmd
}

func newVerifyCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the JSON files against the expected record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := cfg.catalog()
			if err != nil {
				return err
			}
			report := xltables.Verify(cfg.OutputDir, cat.Expectations(), cat.ExpectedTotal)
			if _, err := report.WriteTo(os.Stdout); err != nil {
				return err
			}
			if !report.Passed() {
				return errChecksFailed
			}
			return nil
		},
	}
}

func newInspectCmd(cfg *config) *cobra.Command {
	var (
		rows   int
		region string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the workbook sheets or dump one region",
		Example: `  xltables inspect --rows 30
  xltables inspect --region "VLOOKUP Tables!M21:O30"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if region == "" {
				out, err := xltables.Describe(cfg.Workbook, append(cfg.workbookOptions(), xltables.WithPreviewRows(rows))...)
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}

			area, err := xltables.ParseAreaRef(region)
			if err != nil {
				return err
			}
			wb, err := xltables.OpenWorkbook(cfg.Workbook, cfg.workbookOptions()...)
			if err != nil {
				return err
			}
			defer wb.Close()
			out, err := wb.DumpRegion(area)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 30, "Populated rows shown per sheet")
	cmd.Flags().StringVar(&region, "region", "", "Area to dump, e.g. \"VLOOKUP Tables!M21:O30\"")
	return cmd
}

func newFormulasCmd(cfg *config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "formulas [sheet...]",
		Short: "Dump formula cells as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := xltables.OpenWorkbook(cfg.Workbook, cfg.workbookOptions()...)
			if err != nil {
				return err
			}
			defer wb.Close()

			formulas, err := wb.Formulas(args...)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(formulas, "", "  ")
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return err
			}
			for _, sf := range formulas {
				fmt.Printf("%s: %d formulas\n", sf.Sheet, len(sf.Formulas))
			}
			fmt.Printf("Saved to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON to this file instead of stdout")
	return cmd
}

func newLoadCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Extract the tables and store them in a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DSN == "" {
				return fmt.Errorf("no database: set --dsn or XLTABLES_DATABASE_URL")
			}
			cat, err := cfg.catalog()
			if err != nil {
				return err
			}
			res, err := xltables.Extract(cmd.Context(), cfg.Workbook, cfg.options(cat)...)
			if err != nil {
				return err
			}

			st, err := store.Open(cmd.Context(), cfg.DSN)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Load(cmd.Context(), res); err != nil {
				return err
			}

			tables, err := st.Tables(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Printf("  [OK] %-25s %3d records (%s)\n", t.Name, t.RecordCount, t.Source)
			}
			for _, t := range res.Failed() {
				fmt.Printf("  [FAIL] %-23s %v\n", t.Spec.Name, t.Err)
			}
			if len(res.Failed()) > 0 {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.DSN, "dsn", cfg.DSN, "Database, e.g. sqlite://lookups.db or postgres://...")
	return cmd
}

func newValidateCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the table catalog for mistakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := xltables.DefaultCatalog()
			if cfg.Catalog != "" {
				f, err := os.Open(cfg.Catalog)
				if err != nil {
					return err
				}
				defer f.Close()
				// Decode without failing so every issue gets printed.
				cat, err = xltables.DecodeCatalog(f)
				if err != nil {
					return err
				}
			}
			issues := cat.Validate()
			for _, issue := range issues {
				fmt.Println(issue)
			}
			for _, issue := range issues {
				if issue.Severity == xltables.SeverityError {
					return errChecksFailed
				}
			}
			fmt.Printf("%d tables, no errors\n", len(cat.Tables))
			return nil
		},
	}
}
