package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/soundprediction/hskg/pkg/report"
	"github.com/spf13/cobra"
)

var graphsCmd = &cobra.Command{
	Use:   "graphs",
	Short: "Inspect and manage stored graphs",
}

var graphsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored graphs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		graphs, err := client.ListGraphs(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tNODES\tRELATIONS\tCREATED")
		for _, g := range graphs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", g.ID, g.Name,
				g.Metadata.NodeCount, g.Metadata.RelationCount, g.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var showHubs int

var graphsShowCmd = &cobra.Command{
	Use:   "show <graph-id>",
	Short: "Print statistics and hub nodes of a stored graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		g, err := client.LoadGraph(ctx, args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), report.Summarize(g, showHubs))
	},
}

var exportPath string

var graphsExportCmd = &cobra.Command{
	Use:   "export <graph-id>",
	Short: "Write a stored graph as a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		g, err := client.LoadGraph(ctx, args[0])
		if err != nil {
			return err
		}
		if exportPath == "" {
			return g.WriteJSON(cmd.OutOrStdout())
		}
		return g.SaveFile(exportPath)
	},
}

var graphsDeleteCmd = &cobra.Command{
	Use:   "delete <graph-id>",
	Short: "Delete a stored graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		deleted, err := client.DeleteGraph(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("graph %s not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphsCmd)
	graphsCmd.AddCommand(graphsListCmd, graphsShowCmd, graphsExportCmd, graphsDeleteCmd)

	graphsShowCmd.Flags().IntVar(&showHubs, "hubs", 10, "number of hub nodes to list")
	graphsExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "output file (default stdout)")
}
