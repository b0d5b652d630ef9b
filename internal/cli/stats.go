package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
	"github.com/matzehuels/nocgen/pkg/hist"
	"github.com/matzehuels/nocgen/pkg/pipeline"
)

// statsOpts holds the command-line flags for the stats command.
type statsOpts struct {
	config    string
	vcDir     string // directory of {router}.csv VC histograms
	buffDir   string // directory of {router}_{direction}.csv buffer histograms
	latencies string // latency report
	json      bool
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var opts statsOpts

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate simulator histograms per layer",
		Long: `Aggregate the per-router VC usage and buffer histograms written by the
simulator into one table per layer, and print the average latencies.

Missing directories are reported as empty; unreadable files are skipped
and listed.

Examples:
  nocgen stats -c nocgen.toml --vc-dir sim/VCUsage --buff-dir sim/bufferReport
  nocgen stats -c nocgen.toml --latencies sim/report_Performance.csv --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.vcDir == "" && opts.buffDir == "" && opts.latencies == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "nothing to aggregate: pass --vc-dir, --buff-dir or --latencies")
			}
			return c.runStats(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", defaultConfigFile, "config file (.toml or .json)")
	cmd.Flags().StringVar(&opts.vcDir, "vc-dir", "", "directory of VC usage histograms")
	cmd.Flags().StringVar(&opts.buffDir, "buff-dir", "", "directory of buffer histograms")
	cmd.Flags().StringVar(&opts.latencies, "latencies", "", "latency report file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "write the aggregate as JSON")

	return cmd
}

// statsReport is the aggregate in JSON form.
type statsReport struct {
	Layers    []layerReport   `json:"layers"`
	Latencies *hist.Latencies `json:"latencies,omitempty"`
	Skipped   []string        `json:"skipped,omitempty"`
}

type layerReport struct {
	Layer   int                   `json:"layer"`
	Routers [2]int                `json:"routers"`
	VC      *frameJSON            `json:"vc,omitempty"`
	Buffers map[string]*frameJSON `json:"buffers,omitempty"`
}

type frameJSON struct {
	Index   []string    `json:"index"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
	Total   float64     `json:"total"`
}

func toFrameJSON(f *hist.Frame) *frameJSON {
	if f == nil || f.Empty() {
		return nil
	}
	return &frameJSON{Index: f.Index, Columns: f.Columns, Rows: f.Rows(), Total: f.Total()}
}

func (c *CLI) runStats(ctx context.Context, opts statsOpts, w io.Writer) error {
	logger := loggerFromContext(ctx)

	file, err := loadConfig(opts.config, "")
	if err != nil {
		return err
	}
	cfg, err := pipeline.Prepare(file.Network)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	report, err := aggregate(cfg, opts)
	if err != nil {
		return err
	}
	prog.done("Aggregated histograms")
	for _, name := range report.Skipped {
		logger.Warn("skipped histogram file", "file", name)
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(w, report)
	return nil
}

// aggregate reads every requested input into one report.
func aggregate(cfg config.Config, opts statsOpts) (*statsReport, error) {
	ranges := hist.LayerRanges(cfg)
	report := &statsReport{Layers: make([]layerReport, len(ranges))}
	for i, r := range ranges {
		report.Layers[i] = layerReport{Layer: i, Routers: [2]int{r.Lo, r.Hi}}
	}

	if opts.vcDir != "" {
		vc, err := hist.CombineVC(opts.vcDir, cfg)
		if err != nil {
			return nil, err
		}
		if vc != nil {
			for i, f := range vc.Layers {
				report.Layers[i].VC = toFrameJSON(f)
			}
			report.Skipped = append(report.Skipped, vc.Skipped...)
		}
	}

	if opts.buffDir != "" {
		buf, err := hist.CombineBuffers(opts.buffDir, cfg)
		if err != nil {
			return nil, err
		}
		if buf != nil {
			for i, layer := range buf.Layers {
				for _, d := range hist.Directions {
					if fj := toFrameJSON(layer[d]); fj != nil {
						if report.Layers[i].Buffers == nil {
							report.Layers[i].Buffers = make(map[string]*frameJSON)
						}
						report.Layers[i].Buffers[d] = fj
					}
				}
			}
			report.Skipped = append(report.Skipped, buf.Skipped...)
		}
	}

	if opts.latencies != "" {
		l := hist.ReadLatencies(opts.latencies)
		report.Latencies = &l
	}
	return report, nil
}

func printReport(w io.Writer, report *statsReport) {
	if report.Latencies != nil {
		fmt.Fprintln(w, StyleTitle.Render("Latencies"))
		if report.Latencies.Valid() {
			fmt.Fprintln(w, renderTable(
				[]string{"", "Average (ns)"},
				[][]string{
					{"Flit", formatCount(report.Latencies.Flit)},
					{"Packet", formatCount(report.Latencies.Packet)},
					{"Network", formatCount(report.Latencies.Network)},
				}))
		} else {
			fmt.Fprintln(w, StyleWarning.Render("  latency report unavailable"))
		}
	}

	for _, layer := range report.Layers {
		if layer.VC == nil && len(layer.Buffers) == 0 {
			continue
		}
		fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Layer %d", layer.Layer))+
			StyleDim.Render(fmt.Sprintf("  routers %d-%d", layer.Routers[0], layer.Routers[1]-1)))
		if layer.VC != nil {
			fmt.Fprintln(w, StyleDim.Render("VC usage, total "+formatCount(layer.VC.Total)))
			fmt.Fprintln(w, frameTable("VCs", layer.VC))
		}
		for _, d := range hist.Directions {
			if f, ok := layer.Buffers[d]; ok {
				fmt.Fprintln(w, StyleDim.Render("Buffer usage "+d+", total "+formatCount(f.Total)))
				fmt.Fprintln(w, frameTable("", f))
			}
		}
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("%d files skipped", len(report.Skipped))))
	}
}

func frameTable(corner string, f *frameJSON) string {
	headers := append([]string{corner}, f.Columns...)
	rows := make([][]string, len(f.Index))
	for i, label := range f.Index {
		row := make([]string, 0, len(f.Columns)+1)
		row = append(row, label)
		for _, v := range f.Rows[i] {
			row = append(row, formatCount(v))
		}
		rows[i] = row
	}
	return renderTable(headers, rows)
}

// formatCount prints whole numbers without a fraction.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
