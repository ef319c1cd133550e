package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dpki-lite/go-core/internal/config"
	"dpki-lite/go-core/internal/identity"
	"dpki-lite/go-core/internal/keystore"
	"dpki-lite/go-core/internal/metrics"
	"dpki-lite/go-core/internal/platform/ratelimiter"
	"dpki-lite/go-core/internal/securestore"
	"dpki-lite/go-core/internal/seed"
)

type globalFlags struct {
	configPath    string
	keystoreDir   string
	passphraseEnv string
	metricsOut    string
}

// env is the per-invocation wiring built before any subcommand runs.
type env struct {
	cfg      config.Config
	registry *prometheus.Registry
	store    *keystore.Store
	suite    *identity.Suite
	hier     *seed.Hierarchy
}

// Options let tests swap the expensive parts of the stack.
type Options struct {
	CodecOptions []securestore.Option
	SeedOptions  []seed.Option
	Stderr       io.Writer
}

func Execute() error {
	err := NewRootCmd(Options{}).Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dpki:", err)
	}
	return err
}

func NewRootCmd(opts Options) *cobra.Command {
	var (
		flags globalFlags
		e     = &env{}
	)
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	root := &cobra.Command{
		Use:           "dpki",
		Short:         "Deterministic keys, signatures and envelopes from one root seed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(flags, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if flags.metricsOut == "" || e.registry == nil {
				return nil
			}
			return prometheus.WriteToTextfile(flags.metricsOut, e.registry)
		},
	}
	root.SetErr(opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ./dpki.yaml or user config dir)")
	pf.StringVar(&flags.keystoreDir, "keystore", "", "keystore directory (overrides config)")
	pf.StringVar(&flags.passphraseEnv, "passphrase-env", "DPKI_PASSPHRASE", "environment variable holding the bundle passphrase")
	pf.StringVar(&flags.metricsOut, "metrics-out", "", "write prometheus text metrics to this file on exit")

	pass := func() (string, error) { return passphraseFrom(flags.passphraseEnv) }
	root.AddCommand(
		seedCmd(e, pass),
		keypairCmd(e, pass),
		signCmd(e, pass),
		verifyCmd(e),
		encryptCmd(e, pass),
		decryptCmd(e, pass),
		listCmd(e),
		passwdCmd(e, pass),
	)
	return root
}

func (e *env) init(flags globalFlags, opts Options) error {
	cfg, err := config.LoadFromPath(flags.configPath)
	if err != nil {
		return err
	}
	if flags.keystoreDir != "" {
		cfg.KeystoreDir = flags.keystoreDir
	}
	e.cfg = cfg

	logger := config.NewLogger(cfg, opts.Stderr)
	e.registry = prometheus.NewRegistry()
	m, err := metrics.New(e.registry, cfg.MetricsNamespace)
	if err != nil {
		return err
	}

	codecOpts := append([]securestore.Option{securestore.WithMetrics(m)}, opts.CodecOptions...)
	codec := securestore.NewCodec(nil, codecOpts...)
	e.suite = identity.NewSuite(
		identity.WithCodec(codec),
		identity.WithMetrics(m),
		identity.WithLogger(logger),
	)
	e.hier = seed.NewHierarchy(e.suite, opts.SeedOptions...)

	limiter := ratelimiter.New(cfg.UnlockRate, cfg.UnlockBurst, cfg.UnlockIdleTTL)
	e.store, err = keystore.Open(cfg.KeystoreDir, e.hier, keystore.WithLimiter(limiter))
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}
	logger.Debug("keystore opened", "dir", cfg.KeystoreDir)
	return nil
}

func passphraseFrom(envName string) (string, error) {
	envName = strings.TrimSpace(envName)
	if envName == "" {
		return "", fmt.Errorf("passphrase environment variable name is empty")
	}
	p := os.Getenv(envName)
	if p == "" {
		return "", fmt.Errorf("passphrase required: set %s", envName)
	}
	return p, nil
}
