package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	listWhere []string
	listOrder []string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list <collection-path>",
	Short: "List the documents of a collection",
	Example: `  docctl list villages/v1/members --where role:==:ward --order name --limit 20
  docctl list grievances --where status:in:[open,assigned] --order createdAt:desc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := buildQuery(args[0], listWhere, listOrder, listLimit)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		snap, err := newClient().GetDocs(ctx, ref)
		if err != nil {
			return err
		}
		return printQuery(cmd.OutOrStdout(), outputFormat, snap)
	},
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&listWhere, "where", "w", nil, "Filter field:op:value (repeatable)")
	cmd.Flags().StringArrayVar(&listOrder, "order", nil, "Sort field[:desc] (repeatable)")
	cmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of documents")
}

func init() {
	rootCmd.AddCommand(listCmd)
	addQueryFlags(listCmd)
}
