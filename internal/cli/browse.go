package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var configPath, topology string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Inspect a network's nodes and links interactively",
		Long: `Open a terminal browser listing every router and processing element with
its grid index, normalized position and links.

Examples:
  nocgen browse -c nocgen.toml
  nocgen browse -c nocgen.toml --topology ring`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), configPath, topology)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigFile, "config file (.toml or .json)")
	cmd.Flags().StringVarP(&topology, "topology", "t", "", "override the topology (mesh, torus, ring)")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, configPath, topology string) error {
	f, err := loadConfig(configPath, topology)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	d, err := runner.Describe(ctx, f.Network)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewNodeBrowserModel(d), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
