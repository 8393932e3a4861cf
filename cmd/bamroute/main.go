package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bam-labs/bamroute/internal/client"
	"github.com/bam-labs/bamroute/internal/cliconfig"
	"github.com/bam-labs/bamroute/internal/domain"
	"github.com/bam-labs/bamroute/internal/probe"
	"github.com/bam-labs/bamroute/internal/route"
	"github.com/bam-labs/bamroute/internal/rpc"
	"github.com/bam-labs/bamroute/internal/spool"
)

const helpDescription = `
Route signed Solana transactions to the lowest-latency BAM region.

Highlights:
  - Probes every region in parallel and submits to the fastest one.
  - Falls back region by region when an endpoint rejects the submission.
  - Force a region with --region; add --skip-probe for zero probing overhead.
  - Spool mode submits every transaction file dropped into a directory.
`

var exampleUsage = strings.TrimSpace(`
  bamroute regions
  bamroute send ./signed-tx.bin
  bamroute send ./signed-tx.bin --region dallas --skip-probe
  bamroute watch /var/spool/bamroute
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath, logLevel string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "bamroute",
		Short:         "Latency-aware smart routing for signed Solana transactions",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cliconfig.SetLogLevel(logLevel)
			log = cliconfig.Logger()

			// Load config file first (default ~/.bamroute/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			return cfg.Validate()
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.bamroute/config.toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")

	root.PersistentFlags().DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "per-region latency probe timeout")
	root.PersistentFlags().IntVar(&cfg.ProbeSamples, "probe-samples", cfg.ProbeSamples, "probe dials per region (successes averaged)")
	root.PersistentFlags().DurationVar(&cfg.SubmitTimeout, "timeout", cfg.SubmitTimeout, "per-attempt submission timeout")
	root.PersistentFlags().IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "max regions tried per submission (0 = full chain)")

	root.AddCommand(regionsCmd(&cfg, &log))
	root.AddCommand(sendCmd(&cfg, &log))
	root.AddCommand(watchCmd(&cfg, &log))

	if err := root.Execute(); err != nil {
		reportError(log, err)
		os.Exit(1)
	}
}

// buildClient wires registry, prober, submitter and router.
func buildClient(cfg *cliconfig.Config, log zerolog.Logger, samples int) (*client.Client, error) {
	reg, err := cliconfig.BuildRegistry(*cfg)
	if err != nil {
		return nil, err
	}

	enc, err := rpc.ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	prober := probe.New(log,
		probe.WithTimeout(cfg.ProbeTimeout),
		probe.WithSamples(samples),
	)
	submitter := rpc.NewSubmitter(log,
		rpc.WithEncoding(enc),
		rpc.WithSkipPreflight(cfg.SkipPreflight),
		rpc.WithPreflightCommitment(cfg.PreflightCommitment),
	)
	router := route.NewRouter(reg, submitter, log,
		route.WithMaxAttempts(cfg.MaxAttempts),
		route.WithAttemptTimeout(cfg.SubmitTimeout),
	)
	return client.New(reg, prober, router, log), nil
}

func regionsCmd(cfg *cliconfig.Config, log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "Probe all regions and show latency, fastest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildClient(cfg, *log, cfg.ProbeSamples)
			if err != nil {
				return err
			}

			statuses, err := c.ListRegions(cmd.Context())
			if err != nil {
				return err
			}

			for _, s := range statuses {
				mark := " "
				if s.Fastest {
					mark = "*"
				}
				latency := "unreachable"
				if s.Measurement.OK {
					latency = fmt.Sprintf("%.1f ms", float64(s.Measurement.RTT.Microseconds())/1000.0)
				}
				fmt.Printf("%s %-8s %-16s %-12s %s\n", mark, s.Region.Code, s.Region.Label, latency, s.Region.TxURL)
			}
			return nil
		},
	}
}

func sendCmd(cfg *cliconfig.Config, log *zerolog.Logger) *cobra.Command {
	var skipProbe bool

	cmd := &cobra.Command{
		Use:   "send <tx-file>",
		Short: "Submit a signed transaction from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transaction file: %w", err)
			}
			if len(payload) == 0 {
				return fmt.Errorf("transaction file %s is empty", args[0])
			}

			// One dial per region keeps the pre-send probe cheap.
			c, err := buildClient(cfg, *log, 1)
			if err != nil {
				return err
			}

			res, err := c.SendTransaction(cmd.Context(), payload, client.SendOptions{
				Region:    cfg.Region,
				SkipProbe: skipProbe,
			})
			if err != nil {
				return err
			}

			log.Info().Str("region", res.Region).Int("attempts", len(res.Attempts)).Msg("transaction submitted")
			fmt.Println(string(res.Response))
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Region, "region", cfg.Region, "force a region (ny|dallas|slc)")
	cmd.Flags().StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "payload encoding (auto|base64|base58|raw)")
	cmd.Flags().BoolVar(&skipProbe, "skip-probe", false, "skip latency probing (requires --region)")
	cmd.Flags().BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "ask the endpoint to skip preflight simulation")
	cmd.Flags().StringVar(&cfg.PreflightCommitment, "commitment", cfg.PreflightCommitment, "preflight commitment level")
	return cmd
}

func watchCmd(cfg *cliconfig.Config, log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a spool directory and submit dropped transaction files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.SpoolDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no spool directory: pass one or set spool_dir in the config")
			}

			c, err := buildClient(cfg, *log, 1)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("received signal, stopping...")
				cancel()
			}()

			w := spool.NewWatcher(dir, c, *log, spool.WithSendOptions(client.SendOptions{Region: cfg.Region}))
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// reportError logs terminal errors; exhaustion gets a per-attempt breakdown
// so operators can see which regions were tried and why each failed.
func reportError(log zerolog.Logger, err error) {
	var ex *domain.ExhaustedError
	if errors.As(err, &ex) {
		for _, a := range ex.Attempts {
			log.Error().Str("region", a.Region).Int("attempt", a.Ordinal).Dur("elapsed", a.Elapsed).Err(a.Err).Msg("region attempt failed")
		}
	}
	log.Error().Err(err).Msg("bamroute")
}
