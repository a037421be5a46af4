package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/soundprediction/hskg"
	"github.com/soundprediction/hskg/pkg/ingest"
	"github.com/soundprediction/hskg/pkg/report"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a hybrid graph from feedback and design sources",
	Long: `Build loads the given sources, embeds every item, builds the hybrid graph
and prints its statistics. Sources:

  --feedback  CSV of user feedback (one row per response)
  --design    plain text design references, chunked and split into concepts
  --items     YAML item files with explicit text, modality, source and category

The graph can be stored (--save), written as JSON (--out), exported as
parquet node and edge tables (--export) and evaluated (--evaluate).`,
	RunE: runBuild,
}

type buildFlags struct {
	feedback       string
	feedbackColumn string
	design         []string
	items          []string
	chunkSize      int
	chunkOverlap   int

	name         string
	threshold    float64
	noSymbolic   bool
	noSimilarity bool

	save     bool
	out      string
	export   string
	evaluate bool
	k        int
}

var buildOpts buildFlags

func init() {
	rootCmd.AddCommand(buildCmd)

	f := buildCmd.Flags()
	f.StringVar(&buildOpts.feedback, "feedback", "", "feedback CSV file")
	f.StringVar(&buildOpts.feedbackColumn, "feedback-column", ingest.DefaultFeedbackColumn, "CSV column holding the feedback text")
	f.StringSliceVar(&buildOpts.design, "design", nil, "design reference text files")
	f.StringSliceVar(&buildOpts.items, "items", nil, "YAML item files")
	f.IntVar(&buildOpts.chunkSize, "chunk-size", ingest.DefaultChunkSize, "design text chunk size in characters")
	f.IntVar(&buildOpts.chunkOverlap, "chunk-overlap", ingest.DefaultChunkOverlap, "overlap between design text chunks")

	f.StringVar(&buildOpts.name, "name", "hskg", "graph name")
	f.Float64Var(&buildOpts.threshold, "threshold", 0, "similarity threshold (default from config)")
	f.BoolVar(&buildOpts.noSymbolic, "no-symbolic", false, "skip symbolic (category) edges")
	f.BoolVar(&buildOpts.noSimilarity, "no-similarity", false, "skip similarity edges")

	f.BoolVar(&buildOpts.save, "save", false, "store the graph in the configured backend")
	f.StringVar(&buildOpts.out, "out", "", "write the graph as JSON to this file")
	f.StringVar(&buildOpts.export, "export", "", "write parquet node and edge tables to this directory")
	f.BoolVar(&buildOpts.evaluate, "evaluate", false, "run recall and ablation evaluation")
	f.IntVar(&buildOpts.k, "k", report.DefaultK, "k for recall@k")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	o := buildOpts

	if o.noSymbolic && o.noSimilarity {
		return fmt.Errorf("--no-symbolic and --no-similarity together leave no edges to build")
	}

	items, err := ingest.Collect(ingest.Sources{
		FeedbackCSV:    o.feedback,
		FeedbackColumn: o.feedbackColumn,
		DesignFiles:    o.design,
		ItemFiles:      o.items,
		ChunkSize:      o.chunkSize,
		ChunkOverlap:   o.chunkOverlap,
	}, appLogger)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items loaded; pass --feedback, --design or --items")
	}
	summary := ingest.Summarize(items)
	appLogger.Info("Collected items",
		"total", summary.TotalItems,
		"ux", summary.UXCount,
		"design", summary.DesignCount,
		"categorized", summary.Categorized)

	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	// embed once so the build and the evaluation share vectors
	if err := client.EmbedItems(ctx, items); err != nil {
		return err
	}

	opts := &hskg.BuildOptions{Name: o.name, Save: o.save}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = &o.threshold
	}
	if o.noSymbolic {
		off := false
		opts.SymbolicEdges = &off
	}
	if o.noSimilarity {
		off := false
		opts.SimilarityEdges = &off
	}

	result, err := client.Build(ctx, items, opts)
	if err != nil {
		return err
	}

	if o.out != "" {
		if err := result.KnowledgeGraph.SaveFile(o.out); err != nil {
			return err
		}
		appLogger.Info("Wrote graph", "path", o.out)
	}
	if o.export != "" {
		if err := report.ExportParquet(o.export, result.Graph); err != nil {
			return err
		}
		appLogger.Info("Exported parquet tables", "dir", o.export)
	}

	out := buildOutput{
		GraphID: result.GraphID,
		Items:   summary,
		Report:  report.Summarize(result.KnowledgeGraph, 5),
	}
	if o.evaluate {
		threshold := appConfig.Builder.Threshold
		if opts.Threshold != nil {
			threshold = *opts.Threshold
		}
		ev, err := report.Evaluate(items, report.Options{
			K:         o.k,
			Threshold: threshold,
			Workers:   appConfig.Builder.Workers,
		})
		if err != nil {
			return err
		}
		out.Evaluation = ev
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

type buildOutput struct {
	GraphID    string             `json:"graph_id,omitempty"`
	Items      ingest.Summary     `json:"items"`
	Report     report.GraphReport `json:"report"`
	Evaluation *report.Evaluation `json:"evaluation,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
