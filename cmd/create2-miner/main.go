package main

import (
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/screa/create2-vanity-miner/internal/config"
	logpkg "github.com/screa/create2-vanity-miner/internal/logger"
	minerpkg "github.com/screa/create2-vanity-miner/pkg/miner"
	"github.com/screa/create2-vanity-miner/pkg/types"
)

var (
	cfg    = config.NewConfig()
	logger *logpkg.Logger
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "create2-miner",
		Short: "CREATE2 salt miner for addresses with leading zeros",
		Long: `A command line utility that searches CREATE2 salts for the deployed
address with the most leading zero hex digits. The search is split into
rounds of consecutive salts which are scanned in parallel.`,
		RunE:          runMiner,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.ConfigFile, "config", "c", "", "TOML configuration file (flags override file values)")
	flags.StringVarP(&cfg.Deployer, "deployer", "d", cfg.Deployer, "CREATE2 deployer (factory) address")
	flags.StringVarP(&cfg.Sender, "sender", "s", "", "Sender address placed in the upper 20 bytes of the salt")
	flags.StringVar(&cfg.InitialSalt, "initial-salt", "", "Initial salt (hex), overrides --sender")
	flags.StringVarP(&cfg.InitCodeHash, "init-code-hash", "H", "", "keccak256 of the contract init code (hex)")
	flags.StringVarP(&cfg.Bytecode, "bytecode", "B", "", "Contract init code (hex)")
	flags.StringVarP(&cfg.BytecodeFile, "bytecode-file", "F", "", "File containing contract init code (hex)")
	flags.IntVarP(&cfg.Zeros, "zeros", "z", cfg.Zeros, "Leading zeros to estimate time for")
	flags.Uint64VarP(&cfg.NumRounds, "num-rounds", "n", cfg.NumRounds, "Number of rounds to search")
	flags.Uint64VarP(&cfg.RoundSize, "round-size", "r", cfg.RoundSize, "Salts per round")
	flags.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Number of worker goroutines")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	flags.StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMiner(cmd *cobra.Command, args []string) error {
	if cfg.ConfigFile != "" {
		if err := cfg.ApplyFile(cfg.ConfigFile, cmd.Flags().Changed); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	// Setup logging
	if err := setupLogging(); err != nil {
		return err
	}

	logger.Printf("Starting CREATE2 miner with %d workers...", cfg.Workers)
	logger.Printf("Deployer: %s", params.Deployer.Hex())
	logger.Printf("Init code hash: %s", params.InitCodeHash.Hex())
	logger.Printf("Initial salt: %s", types.Candidate{Salt: params.InitialSalt}.SaltHex())
	if total, ok := params.TotalAttempts(); ok {
		logger.Printf("Rounds: %s x %s = %s salts", humanize.Comma(int64(params.NumRounds)),
			humanize.Comma(int64(params.RoundSize)), humanize.Comma(int64(total)))
	} else {
		total := new(big.Int).Mul(new(big.Int).SetUint64(params.NumRounds), new(big.Int).SetUint64(params.RoundSize))
		logger.Printf("Rounds: %s x %s = %s salts (attempt counters will wrap)", humanize.Comma(int64(params.NumRounds)),
			humanize.Comma(int64(params.RoundSize)), humanize.BigComma(total))
	}
	expected := new(big.Int).Exp(big.NewInt(16), big.NewInt(int64(cfg.Zeros)), nil)
	logger.Printf("Expected attempts for %d zeros: %s", cfg.Zeros, humanize.BigComma(expected))

	miner, err := minerpkg.New(params, minerpkg.Options{
		Workers:  cfg.Workers,
		Notifier: logger,
	})
	if err != nil {
		return err
	}

	// Set up signal handling for Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	type outcome struct {
		result types.Result
		err    error
	}
	resultChan := make(chan outcome, 1)
	go func() {
		result, err := miner.Run()
		resultChan <- outcome{result, err}
	}()

	var out outcome
	select {
	case out = <-resultChan:
	case <-sigChan:
		logger.Println("Received interrupt signal (Ctrl+C). Finishing rounds in progress...")
		miner.Stop()
		out = <-resultChan
	}
	if out.err != nil {
		return out.err
	}

	printResult(out.result)
	return nil
}

func printResult(r types.Result) {
	logger.Printf("Best: %d zeros %s salt %s", r.Zeros, r.Address.Hex(), r.SaltHex())
	logger.Printf("Attempts: %s in %s rounds", humanize.Comma(int64(r.Attempts)), humanize.Comma(int64(r.Rounds)))
	logger.Printf("Duration: %s", durafmt.Parse(r.Duration.Truncate(time.Second)).LimitFirstN(3).String())

	// Calculate rate safely
	rate := 0.0
	if r.Duration.Seconds() > 0 {
		rate = float64(r.Attempts) / r.Duration.Seconds()
	}
	logger.Printf("Rate: %s attempts/sec", humanize.Comma(int64(rate)))
}

func setupLogging() error {
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logger = logpkg.NewWriter(file)
	} else {
		logger = logpkg.New()
	}
	logger.SetVerbose(cfg.Verbose)
	return nil
}
