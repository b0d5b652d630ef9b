package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nocgen/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	config   string // config file path
	output   string // network descriptor path
	topology string // overrides [network] topology
	parallel bool   // run edge discovery passes concurrently
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{output: "network.xml"}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the network-on-chip descriptor",
		Long: `Generate the network.xml descriptor for the network in the config file.

Exactly one file is written. If the config is invalid or a topology
constraint fails, nothing is written and the command exits non-zero.

Examples:
  nocgen generate -c nocgen.toml
  nocgen generate -c nocgen.toml --topology torus -o config/network.xml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", defaultConfigFile, "config file (.toml or .json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file")
	cmd.Flags().StringVarP(&opts.topology, "topology", "t", "", "override the topology (mesh, torus, ring)")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "discover edges concurrently")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts generateOpts) error {
	f, err := loadConfig(opts.config, opts.topology)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, nil)
	if err != nil {
		return err
	}
	defer runner.Close()
	runner.Parallel = opts.parallel

	res, err := runner.Generate(ctx, f.Network)
	if err != nil {
		return err
	}
	if err := pipeline.WriteFile(opts.output, res.XML); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Generated %s network", res.Summary.Topology)
	printStats(res.Stats, res.CacheHit)
	printFile(opts.output)
	printNewline()
	printNextStep("Draw it", fmt.Sprintf("%s render -c %s", appName, opts.config))
	return nil
}
