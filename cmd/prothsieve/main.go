// Command prothsieve searches for prime divisors of Proth/Riesel
// numbers (k*2^n+-1) and, in Cullen/Woodall mode, of n*2^n+-1.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/luxfi/prothsieve/internal/device"
	"github.com/luxfi/prothsieve/internal/orchestrator"
	"github.com/luxfi/prothsieve/internal/selftest"
	"github.com/luxfi/prothsieve/internal/sieve"
	"github.com/spf13/cobra"
)

type cliOpts struct {
	pmin, pmax uint64
	kmin, kmax uint64
	nmin, nmax uint64

	cullenWoodall bool
	selfTest      bool
	standalone    bool // -d, accepted and ignored per spec

	resultsPath string
	checkpointA string
	checkpointB string
}

func main() {
	var o cliOpts

	root := &cobra.Command{
		Use:   "prothsieve",
		Short: "Search for prime divisors of Proth/Riesel and Cullen/Woodall numbers",
		Long: `prothsieve enumerates every prime p in [pmin, pmax) and, for each,
tests whether any (k, n) in the configured range satisfies k*2^n = -+1 (mod p),
reporting matches to factors.txt with a running, partition-additive checksum.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}

	// Bounds mirror main.cpp's parse_option switch exactly: p/P up to
	// 2^62-1, k/K/n/N up to 2^31-1, with p's floor at 3 and P's at 4.
	const pBound = (uint64(1) << 62) - 1
	const kOrNBound = (uint64(1) << 31) - 1

	flags := root.Flags()
	flags.VarP(newSuffixValue(&o.pmin, 3, pBound), "pmin", "p", "start of the p range (3 .. 2^62-1)")
	flags.VarP(newSuffixValue(&o.pmax, 4, pBound), "pmax", "P", "end of the p range (exclusive)")
	flags.VarP(newSuffixValue(&o.kmin, 1, kOrNBound), "kmin", "k", "start of the k range (Proth/Riesel mode)")
	flags.VarP(newSuffixValue(&o.kmax, 1, kOrNBound), "kmax", "K", "end of the k range (Proth/Riesel mode)")
	flags.VarP(newSuffixValue(&o.nmin, 65, kOrNBound), "nmin", "n", "start of the n range (>= 65)")
	flags.VarP(newSuffixValue(&o.nmax, 65, kOrNBound), "nmax", "N", "end of the n range")
	flags.BoolVarP(&o.cullenWoodall, "cullen-woodall", "c", false, "Cullen/Woodall mode: search n*2^n+-1 instead of k*2^n+-1")
	flags.BoolVarP(&o.selfTest, "test", "s", false, "run the fixed self-test cases and report pass/fail")
	flags.BoolVarP(&o.standalone, "standalone", "d", false, "accepted, ignored")
	flags.StringVar(&o.resultsPath, "results", "factors.txt", "path to the append-only results file")
	flags.StringVar(&o.checkpointA, "checkpoint-a", "PCWstateA.txt", "path to checkpoint file A")
	flags.StringVar(&o.checkpointB, "checkpoint-b", "PCWstateB.txt", "path to checkpoint file B")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, o cliOpts) error {
	if o.selfTest {
		return runSelfTest(ctx)
	}

	if err := validateUsage(o); err != nil {
		fmt.Fprintln(os.Stderr, "usage error:", err)
		os.Exit(1)
	}

	params := sieve.NewParams(o.pmin, o.pmax, o.nmin, o.nmax, o.kmin, o.kmax, o.cullenWoodall)

	dev := device.New()
	logger := slog.Default()
	logger.Info("starting run", "backend", dev.Stats().Backend, "parallelism", dev.Stats().Parallelism)

	cfg := orchestrator.Config{
		Params:      params,
		ResultsPath: o.resultsPath,
		CheckpointA: o.checkpointA,
		CheckpointB: o.checkpointB,
		Device:      dev,
		Logger:      logger,
		Reporter:    newLogReporter(logger),
	}

	res, err := orchestrator.Run(ctx, cfg)
	if err != nil {
		return err
	}

	logger.Info("run complete",
		"primecount", res.PrimeCount,
		"factorcount", res.FactorCount,
		"checksum", fmt.Sprintf("%016X", res.Checksum))
	return nil
}

func runSelfTest(ctx context.Context) error {
	results, allPass := selftest.Run(ctx)
	for _, r := range results {
		status := "FAIL"
		if r.Pass {
			status = "PASS"
		}
		if r.Err != nil {
			fmt.Printf("%-20s %s (error: %v)\n", r.Case.Name, status, r.Err)
			continue
		}
		fmt.Printf("%-20s %s (factorcount=%d primecount=%d checksum=%016X)\n",
			r.Case.Name, status, r.Got.FactorCount, r.Got.PrimeCount, r.Got.Checksum)
	}
	if !allPass {
		failed := selftest.Failed(results)
		fmt.Printf("self-test: FAIL (%d/%d cases failed)\n", len(failed), len(results))
		os.Exit(1)
	}
	fmt.Println("self-test: PASS")
	return nil
}

func validateUsage(o cliOpts) error {
	if o.pmin < 3 {
		return fmt.Errorf("pmin must be >= 3")
	}
	if o.pmax < 4 {
		return fmt.Errorf("pmax must be >= 4")
	}
	if o.pmax < o.pmin {
		return fmt.Errorf("pmax must be >= pmin")
	}
	if o.nmin < 65 {
		return fmt.Errorf("nmin must be >= 65")
	}
	if o.nmax < o.nmin {
		return fmt.Errorf("nmax must be >= nmin")
	}
	if o.nmax >= o.pmin {
		return fmt.Errorf("nmax (%d) must be < pmin (%d)", o.nmax, o.pmin)
	}
	if !o.cullenWoodall {
		if o.kmax == 0 {
			return fmt.Errorf("kmax is required in Proth/Riesel mode")
		}
		if o.kmin > o.kmax {
			return fmt.Errorf("kmin must be <= kmax")
		}
		if o.kmax >= o.pmin {
			return fmt.Errorf("kmax (%d) must be < pmin (%d)", o.kmax, o.pmin)
		}
	}
	return nil
}
