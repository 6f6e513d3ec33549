// Package selftest runs the fixed parameter triples of spec.md §8/§4.9
// against the orchestrator and checks the result against known-good
// (factorcount, primecount, checksum) values.
package selftest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/luxfi/prothsieve/internal/device"
	"github.com/luxfi/prothsieve/internal/orchestrator"
	"github.com/luxfi/prothsieve/internal/sieve"
	"github.com/samber/lo"
)

// Case is one fixed regression scenario.
type Case struct {
	Name          string
	PMin, PMax    uint64
	NMin, NMax    uint64
	KMin, KMax    uint64
	CullenWoodall bool

	WantFactorCount uint64
	WantPrimeCount  uint64
	WantChecksum    uint64
}

// Cases are the four end-to-end scenarios of spec.md §8.
var Cases = []Case{
	{
		Name: "cullen-woodall-1",
		PMin: 25636026000000, PMax: 25636030000000,
		NMin: 10000000, NMax: 25000000,
		CullenWoodall:   true,
		WantFactorCount: 2,
		WantPrimeCount:  129869,
		WantChecksum:    0x4544591DC69ACD83,
	},
	{
		Name: "cullen-woodall-2",
		PMin: 556439300000000, PMax: 556439440000000,
		NMin: 100, NMax: 100000,
		CullenWoodall:   true,
		WantFactorCount: 1,
		WantPrimeCount:  4123452,
		WantChecksum:    0x8FEC30979896A3C0,
	},
	{
		Name: "proth-riesel-1",
		PMin: 838338347800000000, PMax: 838338347820000000,
		NMin: 6000000, NMax: 9000000,
		KMin: 5, KMax: 9999,
		WantFactorCount: 1,
		WantPrimeCount:  484024,
		WantChecksum:    0xA7DC855BCB311759,
	},
	{
		Name: "proth-riesel-2",
		PMin: 42070000000000, PMax: 42070050000000,
		NMin: 100, NMax: 2000000,
		KMin: 1201, KMax: 9999,
		WantFactorCount: 70,
		WantPrimeCount:  1592285,
		WantChecksum:    0x727796B2D3677937,
	},
}

// Result is the outcome of running one Case.
type Result struct {
	Case Case
	Got  orchestrator.Result
	Pass bool
	Err  error
}

// Run executes every case in Cases against a fresh temporary workdir,
// resetting the checkpoint/results state between cases so running
// counters never leak across invocations, per spec §4.9.
func Run(ctx context.Context) ([]Result, bool) {
	dev := device.New()
	allPass := true
	results := make([]Result, 0, len(Cases))

	for _, c := range Cases {
		dir, err := os.MkdirTemp("", "prothsieve-selftest-*")
		if err != nil {
			results = append(results, Result{Case: c, Err: fmt.Errorf("selftest: %w", err)})
			allPass = false
			continue
		}

		params := sieve.NewParams(c.PMin, c.PMax, c.NMin, c.NMax, c.KMin, c.KMax, c.CullenWoodall)
		cfg := orchestrator.Config{
			Params:      params,
			ResultsPath: filepath.Join(dir, "factors.txt"),
			CheckpointA: filepath.Join(dir, "PCWstateA.txt"),
			CheckpointB: filepath.Join(dir, "PCWstateB.txt"),
			Device:      dev,
		}

		got, err := orchestrator.Run(ctx, cfg)
		os.RemoveAll(dir)

		pass := err == nil &&
			got.FactorCount == c.WantFactorCount &&
			got.PrimeCount == c.WantPrimeCount &&
			got.Checksum == c.WantChecksum

		if !pass {
			allPass = false
		}
		results = append(results, Result{Case: c, Got: got, Pass: pass, Err: err})
	}

	return results, allPass
}

// Failed returns the subset of results that did not pass, for a
// caller that wants to report only the failures.
func Failed(results []Result) []Result {
	return lo.Filter(results, func(r Result, _ int) bool { return !r.Pass })
}
