package main

import (
	"context"
	"fmt"

	"panchayat-docstore/pkg/docstore"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <document-path>",
	Short: "Print one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		ref := docstore.Doc(docstore.Seg(args[0]))
		snap, err := newClient().GetDoc(ctx, ref)
		if err != nil {
			return err
		}
		if !snap.Exists() {
			return fmt.Errorf("document %s not found", ref.Path())
		}
		return printDocument(cmd.OutOrStdout(), outputFormat, snap)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
