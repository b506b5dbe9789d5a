package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"panchayat-docstore/pkg/docstore"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	writeData string
	writeFile string
)

var addCmd = &cobra.Command{
	Use:   "add <collection-path>",
	Short: "Create a document with a generated id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readPayload(cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		ref, err := newClient().AddDoc(ctx, docstore.Collection(docstore.Seg(args[0])), data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ref.Path())
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <document-path>",
	Short: "Create or replace a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readPayload(cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return newClient().SetDoc(ctx, docstore.Doc(docstore.Seg(args[0])), data)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <document-path>",
	Short: "Set fields on an existing document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readPayload(cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return newClient().UpdateDoc(ctx, docstore.Doc(docstore.Seg(args[0])), data)
	},
}

// readPayload takes the document from --data, --file or stdin ("-"). YAML is
// accepted since every JSON object is also YAML.
func readPayload(stdin io.Reader) (map[string]any, error) {
	var raw []byte
	switch {
	case writeData != "":
		raw = []byte(writeData)
	case writeFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	case writeFile != "":
		b, err := os.ReadFile(writeFile)
		if err != nil {
			return nil, err
		}
		raw = b
	default:
		return nil, fmt.Errorf("one of --data or --file is required")
	}
	return parsePayload(raw)
}

func parsePayload(raw []byte) (map[string]any, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, fmt.Errorf("document body is empty")
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("document must be a JSON or YAML object: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("document must be a JSON or YAML object")
	}
	return data, nil
}

func init() {
	for _, cmd := range []*cobra.Command{addCmd, setCmd, updateCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().StringVarP(&writeData, "data", "d", "", "Document as inline JSON or YAML")
		cmd.Flags().StringVarP(&writeFile, "file", "f", "", "Read the document from a file, or - for stdin")
	}
}
