package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nocgen/pkg/pipeline"
)

// simconfigCommand creates the simconfig command.
func (c *CLI) simconfigCommand() *cobra.Command {
	var configPath string
	output := "config.xml"

	cmd := &cobra.Command{
		Use:   "simconfig",
		Short: "Generate the simulator run configuration",
		Long: `Generate the simulator's config.xml from the [simulation] table of the config file.

Examples:
  nocgen simconfig -c nocgen.toml
  nocgen simconfig -c nocgen.toml -o config/config.xml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimConfig(cmd.Context(), configPath, output)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigFile, "config file (.toml or .json)")
	cmd.Flags().StringVarP(&output, "output", "o", output, "output file")

	return cmd
}

func (c *CLI) runSimConfig(ctx context.Context, configPath, output string) error {
	f, err := loadConfig(configPath, "")
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, err := runner.SimConfig(ctx, f.Simulation)
	if err != nil {
		return err
	}
	if err := pipeline.WriteFile(output, data); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Generated simulator config")
	printKeyValue("Benchmark", f.Simulation.Benchmark)
	printKeyValue("Duration", fmt.Sprintf("%d ns", f.Simulation.SimulationTime))
	printFile(output)
	return nil
}
