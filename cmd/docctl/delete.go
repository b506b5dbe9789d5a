package main

import (
	"context"

	"panchayat-docstore/pkg/docstore"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <document-path>",
	Aliases: []string{"rm"},
	Short:   "Delete a document",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return newClient().DeleteDoc(ctx, docstore.Doc(docstore.Seg(args[0])))
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
