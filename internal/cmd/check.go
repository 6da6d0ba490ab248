package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brandguard/domainrisk/internal/core"
	"github.com/brandguard/domainrisk/internal/observability"
	"github.com/brandguard/domainrisk/internal/output"
	"github.com/brandguard/domainrisk/internal/server/handlers"
)

var checkCmd = &cobra.Command{
	Use:   "check <domain> [domain...]",
	Short: "Check domains for trademark risk",
	Long: `Look up each domain's registration record and search USPTO trademarks for its
leading label, then print the risk assessment.

Results are printed in argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("output", "o", "table", "Output format: table, json, yaml, markdown")
	checkCmd.Flags().String("out", "", "Write output to file (default stdout)")
	checkCmd.Flags().Int("concurrency", 4, "Maximum domains checked at once")
}

func runCheck(cmd *cobra.Command, args []string) error {
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}

	domains := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("domain must not be empty")
		}
		domains = append(domains, arg)
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := checkDomains(ctx, newDomainChecker(cfg), domains, concurrency)
	if err != nil {
		return err
	}

	rendered, err := output.FormatCheckList(format, results)
	if err != nil {
		return err
	}

	sink, err := openSink(outPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	if _, err := fmt.Fprintln(sink.writer, rendered); err != nil {
		return err
	}

	if sink.path != "-" && observability.CLILogger != nil {
		observability.CLILogger.Info("Wrote check results",
			zap.String("path", sink.path),
			zap.Int("domains", len(results)))
	}
	return nil
}

// checkDomains runs checker over domains with at most limit in flight, keeping input order.
func checkDomains(ctx context.Context, checker handlers.DomainChecker, domains []string, limit int) ([]*core.DomainCheckResponse, error) {
	results := make([]*core.DomainCheckResponse, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, domain := range domains {
		g.Go(func() error {
			resp, err := checker.Check(gctx, domain)
			if err != nil {
				return fmt.Errorf("check %s: %w", domain, err)
			}
			results[i] = resp
			if observability.CLILogger != nil {
				observability.CLILogger.Debug("Domain checked",
					zap.String("domain", domain),
					zap.String("risk", string(resp.Risk)))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
