package main

import (
	"github.com/spf13/cobra"

	"brain2-canvas/application/queries"
	querybus "brain2-canvas/application/queries/bus"
	"brain2-canvas/infrastructure/di"
)

func newStatusCmd(opts *options) *cobra.Command {
	var includeHidden bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print graph statistics and the viewport of the stored project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, cleanup, err := di.InitializeContainer(ctx, opts.cfg, di.Frontend{})
			if err != nil {
				return err
			}
			defer cleanup()
			defer container.Shutdown()

			graph, err := querybus.AskFor[*queries.GetGraphDataResult](ctx, container.QueryBus,
				queries.GetGraphDataQuery{IncludeHidden: includeHidden})
			if err != nil {
				return err
			}
			view, err := querybus.AskFor[*queries.ViewportResult](ctx, container.QueryBus, queries.GetViewportQuery{})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), struct {
				Project  string             `json:"project"`
				Name     string             `json:"name"`
				ReadOnly bool               `json:"read_only"`
				Stats    queries.GraphStats `json:"stats"`
				Viewport interface{}        `json:"viewport"`
			}{
				Project:  graph.Graph.ID,
				Name:     graph.Graph.Name,
				ReadOnly: graph.Graph.ReadOnly,
				Stats:    graph.Stats,
				Viewport: view.Viewport,
			})
		},
	}

	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "count hidden nodes and links")
	return cmd
}
