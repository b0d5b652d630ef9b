package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nocgen/pkg/pipeline"
	"github.com/matzehuels/nocgen/pkg/render"
	"github.com/matzehuels/nocgen/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config   string
	output   string
	formats  string
	topology string
	diagram  nodelink.Options
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the network topology",
		Long: `Draw the network as a node-link diagram. Routers are pinned at their
normalized grid positions, one panel per layer, with each processing
element beside its router.

Examples:
  nocgen render -c nocgen.toml                      # topology.svg
  nocgen render -c nocgen.toml -f svg,pdf -o mesh   # mesh.svg, mesh.pdf
  nocgen render -c nocgen.toml -f dot --hide-pe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", defaultConfigFile, "config file (.toml or .json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default topology.<format>)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", render.FormatSVG, "comma-separated formats: svg, pdf, png, dot")
	cmd.Flags().StringVarP(&opts.topology, "topology", "t", "", "override the topology (mesh, torus, ring)")
	cmd.Flags().Float64Var(&opts.diagram.Spacing, "spacing", 1, "distance between adjacent routers in inches")
	cmd.Flags().BoolVar(&opts.diagram.HidePE, "hide-pe", false, "omit processing elements")
	cmd.Flags().BoolVar(&opts.diagram.Detailed, "detailed", false, "label routers with grid index and node type")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}

	file, err := loadConfig(opts.config, opts.topology)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	res, err := runner.Render(ctx, file.Network, formats, opts.diagram)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}

	multi := len(formats) > 1
	var written []string
	for _, f := range formats {
		path := outputPath(opts.output, f, multi)
		if err := pipeline.WriteFile(path, res.Artifacts[f]); err != nil {
			spinner.StopWithError("Writing " + path + " failed")
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	prog.done("Rendered diagram")

	status := "Rendered"
	if res.CacheHit {
		status = "Rendered (cached)"
	}
	spinner.StopWithSuccess(status + " " + StyleHighlight.Render(string(file.Network.Topology)))
	for _, path := range written {
		printFile(path)
	}
	if slices.Contains(formats, render.FormatDOT) {
		printNewline()
		printNextStep("Lay it out yourself", "neato -n2 -Tsvg "+outputPath(opts.output, render.FormatDOT, multi))
	}
	return nil
}
