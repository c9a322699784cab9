package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/platemap/internal/config"
	"github.com/verte-zerg/platemap/internal/export"
	"github.com/verte-zerg/platemap/internal/grid"
	"github.com/verte-zerg/platemap/internal/history"
	"github.com/verte-zerg/platemap/internal/logging"
	"github.com/verte-zerg/platemap/internal/plate"
	"github.com/verte-zerg/platemap/internal/session"
	"github.com/verte-zerg/platemap/internal/store"
)

const defaultHistoryLimit = 20

var (
	mergeGrids   []string
	mergeFormat  string
	historyLimit int
)

func newPlatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plates",
		Short: "List supported plate types",
		Args:  cobra.NoArgs,
		RunE:  runPlatesCmd,
	}
}

func runPlatesCmd(cmd *cobra.Command, _ []string) error {
	for _, t := range plate.Types() {
		geom := t.Geometry()
		line := fmt.Sprintf("%-4s %c-%c  %d-%d  %3d wells",
			t.String(), geom.RowStart, geom.RowEnd, geom.ColStart, geom.ColEnd, geom.WellCount())
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print an empty tab-delimited plate layout to fill in",
		Args:  cobra.NoArgs,
		RunE:  runLayoutCmd,
	}
	cmd.Flags().StringVar(&plateFlag, "plate", "", "plate type: 6, 12, 24, 48, 96 or 384")
	return cmd
}

func runLayoutCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	pt, err := requirePlate(cfg.Plate)
	if err != nil {
		return err
	}
	return grid.New(pt.Geometry()).WriteLayout(cmd.OutOrStdout())
}

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "merge",
		Short:   "Merge plate layouts into labels.xlsx or labels.txt without the TUI",
		Example: "  platemap merge --plate 96 --grid Gene=gene.tsv --grid Sample=sample.tsv --format txt --out exports",
		Args:    cobra.NoArgs,
		RunE:    runMergeCmd,
	}
	cmd.Flags().StringVar(&plateFlag, "plate", "", "plate type: 6, 12, 24, 48, 96 or 384")
	cmd.Flags().StringArrayVar(&mergeGrids, "grid", nil, "label and layout file as Label=path (repeatable, in column order)")
	cmd.Flags().StringVar(&mergeFormat, "format", string(export.FormatSpreadsheet), "export format: xlsx or txt")
	return cmd
}

func runMergeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	pt, err := requirePlate(cfg.Plate)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(mergeFormat)
	if err != nil {
		return err
	}
	specs, err := parseGridSpecs(mergeGrids)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	sess, err := buildSession(pt, specs)
	if err != nil {
		return err
	}
	if dups := sess.Duplicates(); len(dups) > 0 {
		logErrf("warning: duplicate labels: %s\n", strings.Join(dups, ", "))
	}

	ctx := cmd.Context()
	pub, closeFn, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := pub.Publish(ctx, sess, format)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if res.Rows == 0 {
		logErrf("warning: every well is blank; wrote header only\n")
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), res.Artifact.Location); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

type gridSpec struct {
	label string
	path  string
}

func parseGridSpecs(values []string) ([]gridSpec, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one --grid Label=path is required")
	}
	specs := make([]gridSpec, 0, len(values))
	for _, v := range values {
		label, path, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("invalid --grid %q (want Label=path)", v)
		}
		specs = append(specs, gridSpec{label: label, path: strings.TrimSpace(path)})
	}
	return specs, nil
}

// buildSession names one label per --grid value and loads its layout file.
func buildSession(pt plate.Type, specs []gridSpec) (*session.Session, error) {
	sess := session.New()
	if err := sess.SelectPlate(pt); err != nil {
		return nil, err
	}
	for i, spec := range specs {
		if i >= len(sess.Labels()) {
			if _, err := sess.AddLabel(); err != nil {
				return nil, err
			}
		}
		if err := sess.RenameLabel(i, spec.label); err != nil {
			return nil, err
		}
		g, err := readLayoutFile(spec.path, pt.Geometry())
		if err != nil {
			return nil, err
		}
		if err := sess.SetGrid(i, g); err != nil {
			return nil, err
		}
	}
	for len(sess.Labels()) > len(specs) {
		if err := sess.RemoveLabel(len(sess.Labels()) - 1); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func readLayoutFile(path string, geom plate.Geometry) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	g, err := grid.ReadLayout(f, geom)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func requirePlate(value string) (plate.Type, error) {
	if value == "" {
		return plate.None, fmt.Errorf("--plate is required (or set [session] plate in the config)")
	}
	return plate.ParseType(value)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent exports",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of exports to show (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	records, err := st.ListExports(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}
	out := cmd.OutOrStdout()
	return history.Write(out, records, history.TerminalWidth(out))
}
