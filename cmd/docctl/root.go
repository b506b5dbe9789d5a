package main

import (
	"fmt"
	"os"
	"time"

	"panchayat-docstore/pkg/docstore"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	apiURL       string
	outputFormat string
	tokenFile    string
	verbose      bool
	timeout      time.Duration

	log = zap.NewNop()
)

// cliEnv supplies flag defaults from the environment or a .env file.
type cliEnv struct {
	APIURL    string `env:"DOCSTORE_API_URL" envDefault:"http://localhost:3000"`
	TokenFile string `env:"DOCSTORE_TOKEN_FILE"`
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docctl",
	Short: "Command line client for the panchayat document store",
	Long: `docctl talks to the store service over HTTP. Paths alternate
collection and document segments, e.g. villages/v1/members/m7.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			log = l
		}
		if outputFormat != formatJSON && outputFormat != formatYAML {
			return fmt.Errorf("unknown output format %q (want json or yaml)", outputFormat)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	defaults := cliEnv{APIURL: "http://localhost:3000"}
	if err := env.Parse(&defaults); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring environment: %v\n", err)
	}
	if defaults.TokenFile == "" {
		defaults.TokenFile = docstore.DefaultTokenPath()
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "url", defaults.APIURL, "Service base URL (env DOCSTORE_API_URL)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatJSON, "Output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", defaults.TokenFile, "Where the login token is kept (env DOCSTORE_TOKEN_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-command request timeout")
}

func newClient() *docstore.Client {
	return docstore.NewClient(apiURL,
		docstore.WithTokenSource(docstore.NewFileTokenStore(tokenFile)),
		docstore.WithLogger(log),
	)
}
