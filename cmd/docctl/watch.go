package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"panchayat-docstore/pkg/docstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <collection-path>",
	Short: "Print the collection now and after every poll until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := buildQuery(args[0], listWhere, listOrder, listLimit)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := docstore.NewClient(apiURL,
			docstore.WithTokenSource(docstore.NewFileTokenStore(tokenFile)),
			docstore.WithLogger(log),
			docstore.WithPollInterval(watchInterval),
		)

		out := cmd.OutOrStdout()
		unsubscribe := client.OnSnapshot(ctx, ref, func(snap *docstore.QuerySnapshot) {
			fmt.Fprintf(out, "# %s  %d document(s)\n", time.Now().Format(time.RFC3339), snap.Size())
			if err := printQuery(out, outputFormat, snap); err != nil {
				log.Warn("print snapshot", zap.Error(err))
			}
		})
		defer unsubscribe()

		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", docstore.DefaultPollInterval, "Poll period")
	addQueryFlags(watchCmd)
}
