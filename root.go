package main

import "github.com/spf13/cobra"

var (
	numEnvs int
	steps   int
	seed    uint64
	saveDir string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{}
	rootCommand.PersistentFlags().IntVarP(&numEnvs, "envs", "e", 16, "Number of environment instances in the batch")
	rootCommand.PersistentFlags().IntVar(&steps, "steps", 1000, "Number of control steps to run")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 0, "RNG seed, 0 seeds from the wall clock")
	rootCommand.PersistentFlags().StringVarP(&saveDir, "save", "s", "results", "Save the run data in the specified folder")
	// adding the subcommands here
	rootCommand.AddCommand(DemoCommand())
	rootCommand.AddCommand(PlotCommand())
	return rootCommand
}
