package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var types []string
	var listNames bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the scenes a generation run would attempt",
		Long:  "Plan scenes from the configured camera roster without contacting OBS.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := parseTypes(types)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			engine := newEngine(cfg, nil, nil, ctx.logger(cfg))
			preview := engine.PreviewScenes(families...)

			if ctx.jsonOutput() {
				return writeJSON(cmd, preview)
			}
			if listNames {
				for _, name := range preview.Scenes {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			return ctx.emit(cmd, preview, previewTable(preview, orderedFamilies(families)))
		},
	}

	cmd.Flags().StringSliceVarP(&types, "types", "t", nil, "Scene families to plan (default: configured families)")
	cmd.Flags().BoolVar(&listNames, "names", false, "Print scene names one per line")
	return cmd
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create the planned scenes in OBS",
		Long:  "Create every planned scene that does not already exist. Existing scenes are skipped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := parseTypes(types)
			if err != nil {
				return err
			}
			s, err := ctx.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.engine().GenerateAllScenes(cmd.Context(), scenes.GenerateOptions{
				Types:   families,
				Trigger: sourceCLI,
			})
			if err != nil {
				return err
			}
			if err := ctx.emit(cmd, report, reportTable(report)); err != nil {
				return err
			}
			if report.Summary.Failed > 0 {
				return fmt.Errorf("%d of %d scenes failed", report.Summary.Failed, report.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "types", "t", nil, "Scene families to generate (default: configured families)")
	return cmd
}

// parseTypes accepts repeated or comma separated family names.
func parseTypes(values []string) ([]layout.Family, error) {
	var names []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	families, err := layout.ParseFamilies(names)
	if err != nil {
		return nil, fmt.Errorf("invalid --types: %w", err)
	}
	return families, nil
}

// orderedFamilies returns the requested families in generation order, or
// all families when none were requested.
func orderedFamilies(requested []layout.Family) []layout.Family {
	if len(requested) == 0 {
		return layout.AllFamilies()
	}
	want := make(map[layout.Family]bool, len(requested))
	for _, f := range requested {
		want[f] = true
	}
	out := make([]layout.Family, 0, len(requested))
	for _, f := range layout.AllFamilies() {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}

func previewTable(p layout.Preview, families []layout.Family) tableData {
	tbl := tableData{
		headers: []string{"Family", "Scenes"},
		aligns:  []alignment{alignLeft, alignRight},
		footer:  []string{"Total", strconv.Itoa(p.Totals.Total)},
	}
	for _, f := range families {
		n, ok := p.Counts[f]
		if !ok {
			continue
		}
		tbl.rows = append(tbl.rows, []string{string(f), strconv.Itoa(n)})
	}
	return tbl
}

func reportTable(r *scenes.Report) tableData {
	tbl := tableData{
		headers: []string{"Scene", "Type", "Status", "Detail"},
		footer: []string{
			"Run " + r.RunID,
			"",
			fmt.Sprintf("%d created, %d skipped, %d failed", r.Summary.Created, r.Summary.Skipped, r.Summary.Failed),
			fmt.Sprintf("%d ms", r.DurationMS),
		},
	}
	add := func(results []scenes.GenerationResult) {
		for _, res := range results {
			detail := res.Reason
			if res.Error != "" {
				detail = res.Error
			}
			tbl.rows = append(tbl.rows, []string{res.Scene, string(res.Type), string(res.Status), detail})
		}
	}
	add(r.Created)
	add(r.Skipped)
	add(r.Failed)
	return tbl
}
