// bondfactor is the CLI for the fixed-income risk and factor analytics
// library: curve-based bond risk runs and factor reports from JSON
// fixtures.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meenmo/bondfactor/bond"
	"github.com/meenmo/bondfactor/config"
	"github.com/meenmo/bondfactor/curve"
	"github.com/meenmo/bondfactor/factor"
	"github.com/meenmo/bondfactor/marketdata"
	"github.com/meenmo/bondfactor/report"
	"github.com/meenmo/bondfactor/returns"
	"github.com/meenmo/bondfactor/risk"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bondfactor",
	Short: "Fixed-income risk and factor analytics",
	Long: `bondfactor prices fixed-coupon bonds, computes duration, convexity,
DV01 and key-rate profiles against a discount curve, and extracts
principal risk factors from aligned return series.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var (
			cfg config.Config
			err error
		)
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		config.SetConfig(cfg)

		levelName, _ := cmd.Flags().GetString("log-level")
		level, err := logrus.ParseLevel(levelName)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", levelName, err)
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./bondfactor.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(factorsCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bondfactor %s (%s)\n", version, commit)
	},
}

// --- Risk Command ---

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Compute per-bond risk measures against a discount curve",
	Long: `Price each position off the curve, imply its flat yield, and report
durations, convexity, DV01 and the key-rate profile as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		positionsPath, _ := cmd.Flags().GetString("positions")
		curvePath, _ := cmd.Flags().GetString("curve")

		positions, err := loadPositions(positionsPath)
		if err != nil {
			return err
		}
		crv, err := loadCurve(curvePath)
		if err != nil {
			return err
		}

		results, err := risk.ComputePortfolioRisk(cmd.Context(), positions, crv, risk.Options{})
		if err != nil {
			return err
		}
		rep, err := report.NewRiskReport(results)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), rep)
	},
}

func init() {
	riskCmd.Flags().String("positions", "", "path to positions JSON")
	riskCmd.Flags().String("curve", "", "path to curve quotes JSON")
}

// --- Factors Command ---

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Extract principal factors from return series",
	Long: `Align the return series, standardize them, eigen-decompose the scatter
matrix, and attribute each series to the retained factors. The report
is written as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seriesPath, _ := cmd.Flags().GetString("series")
		policyName, _ := cmd.Flags().GetString("policy")
		kindName, _ := cmd.Flags().GetString("kind")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		policy, err := returns.ParseAlignPolicy(policyName)
		if err != nil {
			return err
		}
		kind, err := factor.ParseMatrixKind(kindName)
		if err != nil {
			return err
		}
		from, err := time.Parse(time.DateOnly, fromStr)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		to, err := time.Parse(time.DateOnly, toStr)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}

		series, err := loadSeries(cmd.Context(), seriesPath, from, to)
		if err != nil {
			return err
		}

		aligned, err := returns.Align(series, policy)
		if err != nil {
			return err
		}
		standardized, err := aligned.Standardize()
		if err != nil {
			return err
		}

		model, err := factor.Decompose(standardized, factor.Options{Kind: kind, VarianceThreshold: threshold})
		if err != nil {
			return err
		}
		scores, err := model.Scores(standardized, 0)
		if err != nil {
			return err
		}
		attrs, err := factor.Attribute(standardized, scores, nil)
		if err != nil {
			return err
		}

		rep, err := report.NewFactorReport(aligned.IDs, model, attrs)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), rep)
	},
}

func init() {
	factorsCmd.Flags().String("series", "", "path to return series JSON")
	factorsCmd.Flags().String("policy", "drop", "alignment policy (drop, ffill)")
	factorsCmd.Flags().String("kind", "covariance", "scatter matrix (covariance, correlation)")
	factorsCmd.Flags().Float64("threshold", 0, "cumulative variance retention threshold (0 = configured default)")
	factorsCmd.Flags().String("from", "0001-01-01", "window start (YYYY-MM-DD)")
	factorsCmd.Flags().String("to", "9999-12-31", "window end (YYYY-MM-DD)")
}

// --- Fixture loading ---

type positionsFile struct {
	Positions []positionEntry `json:"positions"`
}

type positionEntry struct {
	ID         string  `json:"id"`
	CouponRate float64 `json:"coupon_rate"`
	Frequency  int     `json:"frequency"`
	Periods    int     `json:"periods"`
	Par        float64 `json:"par"`
}

func loadPositions(path string) ([]risk.Position, error) {
	if path == "" {
		return nil, fmt.Errorf("--positions is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	var f positionsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse positions %s: %w", path, err)
	}

	positions := make([]risk.Position, len(f.Positions))
	for i, p := range f.Positions {
		positions[i] = risk.Position{
			ID: p.ID,
			Terms: bond.Terms{
				CouponRate: p.CouponRate,
				Frequency:  p.Frequency,
				Periods:    p.Periods,
				Par:        p.Par,
			},
		}
	}
	return positions, nil
}

type curveFile struct {
	Quotes map[string]float64 `json:"quotes"`
}

func loadCurve(path string) (*curve.Curve, error) {
	if path == "" {
		return nil, fmt.Errorf("--curve is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curve: %w", err)
	}
	var f curveFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse curve %s: %w", path, err)
	}
	return curve.FromQuotes(f.Quotes)
}

type seriesFile struct {
	Series map[string]map[string]float64 `json:"series"`
}

func loadSeries(ctx context.Context, path string, from, to time.Time) ([]returns.Series, error) {
	if path == "" {
		return nil, fmt.Errorf("--series is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	var f seriesFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse series %s: %w", path, err)
	}

	provider := &marketdata.MapSeriesProvider{Points: f.Series}
	ids := make([]string, 0, len(f.Series))
	for id := range f.Series {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]returns.Series, 0, len(ids))
	for _, id := range ids {
		obs, err := provider.Series(ctx, id, from, to)
		if err != nil {
			return nil, err
		}
		s := returns.Series{ID: id}
		for _, o := range obs {
			s.Add(o.Date, o.Value)
		}
		out = append(out, s)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
