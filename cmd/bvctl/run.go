package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	bvcore "github.com/jaskrrish/Go-BV/internal/bv"
	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type runOptions struct {
	qubits       int
	a            string
	b            uint64
	shots        int
	style        string
	seed         uint64
	noiseFile    string
	noiseProfile string
	jsonOutput   bool
}

var runOpts runOptions

const maxListedOutcomes = 5

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recover a secret with one Bernstein-Vazirani circuit",
	Example: `  bvctl run --qubits 6 --a 0b10110 --b 1
  bvctl run --qubits 20 --a 524287 --shots 1024 --style cz
  bvctl run --qubits 8 --a 0x5a --noise-profiles noise.yaml --noise-profile nisq`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExperiment(cmd, runOpts, newLogger())
	},
}

func init() {
	runCmd.Flags().IntVarP(&runOpts.qubits, "qubits", "n", 20, "total qubits, including the target")
	runCmd.Flags().StringVar(&runOpts.a, "a", "0", "secret a (decimal, 0b binary or 0x hex)")
	runCmd.Flags().Uint64Var(&runOpts.b, "b", 0, "secret bit b")
	runCmd.Flags().IntVar(&runOpts.shots, "shots", 1, "number of shots")
	runCmd.Flags().StringVar(&runOpts.style, "style", "cx", "oracle style (cx or cz)")
	runCmd.Flags().Uint64Var(&runOpts.seed, "seed", 0, "simulator seed, 0 for random")
	runCmd.Flags().StringVar(&runOpts.noiseFile, "noise-profiles", "", "YAML file of named noise profiles")
	runCmd.Flags().StringVar(&runOpts.noiseProfile, "noise-profile", "", "noise profile to apply")
	runCmd.Flags().BoolVar(&runOpts.jsonOutput, "json", false, "print the evaluation as JSON")
}

func runExperiment(cmd *cobra.Command, opts runOptions, log zerolog.Logger) error {
	a, err := strconv.ParseUint(opts.a, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid --a %q: %w", opts.a, err)
	}
	style, err := bvcore.ParseOracleStyle(opts.style)
	if err != nil {
		return err
	}
	noise, err := resolveNoise(opts.noiseFile, opts.noiseProfile)
	if err != nil {
		return err
	}

	evaluator := bvcore.NewEvaluator(quantum.NewSimulatorBackend(opts.seed), log)
	algorithm, err := bvcore.NewBernsteinVazirani(opts.qubits, style, evaluator)
	if err != nil {
		return err
	}
	algorithm.WithShots(opts.shots)

	if err := algorithm.SetInput([]uint64{a, opts.b}); err != nil {
		return err
	}
	circuit, err := algorithm.ConstructCircuit()
	if err != nil {
		return err
	}

	var evaluation *bvcore.Evaluation
	if noise == nil {
		evaluation, err = algorithm.ComputeResult(cmd.Context())
	} else {
		evaluation, err = evaluator.Run(cmd.Context(), circuit, opts.shots, noise)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(evaluation)
	}
	printEvaluation(out, circuit, evaluation)
	return nil
}

func resolveNoise(file, profile string) (*quantum.NoiseModel, error) {
	if profile == "" {
		return nil, nil
	}
	if file == "" {
		return nil, fmt.Errorf("--noise-profile %q needs --noise-profiles", profile)
	}

	profiles, err := quantum.LoadNoiseProfiles(file)
	if err != nil {
		return nil, err
	}
	noise, ok := profiles[profile]
	if !ok {
		return nil, fmt.Errorf("noise profile %q not found in %s", profile, file)
	}
	return noise, nil
}

func printEvaluation(out io.Writer, circuit *bvcore.Circuit, e *bvcore.Evaluation) {
	secret := circuit.Secret()

	fmt.Fprintf(out, "backend:       %s\n", e.Backend)
	fmt.Fprintf(out, "qubits:        %d (%s oracle)\n", circuit.NumQubits(), circuit.Style())
	fmt.Fprintf(out, "shots:         %d\n", e.Shots)
	fmt.Fprintf(out, "expected:      %s\n", e.Expected)
	fmt.Fprintf(out, "most frequent: %s\n", e.MostFrequent)
	fmt.Fprintf(out, "accuracy:      %.4f\n", e.Accuracy)
	fmt.Fprintf(out, "recovered a:   %d (%t)\n", e.RecoveredA, e.Recovered)
	fmt.Fprintf(out, "f(x)=%sx+%d\n", e.MostFrequent, secret.B)

	probs := quantum.CountsToProbabilities(e.Counts)
	outcomes := make([]string, 0, len(probs))
	for outcome := range probs {
		outcomes = append(outcomes, outcome)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		if probs[outcomes[i]] != probs[outcomes[j]] {
			return probs[outcomes[i]] > probs[outcomes[j]]
		}
		return outcomes[i] < outcomes[j]
	})
	if len(outcomes) > maxListedOutcomes {
		outcomes = outcomes[:maxListedOutcomes]
	}

	fmt.Fprintln(out, "outcomes:")
	for _, outcome := range outcomes {
		fmt.Fprintf(out, "  %s  %.4f\n", outcome, probs[outcome])
	}
}
