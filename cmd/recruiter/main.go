// Command recruiter runs the WhatsApp recruiting funnel: the HTTP ingress,
// the funnel task workers, the change feed consumer and the job closure sweeper.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whatsapp-recruiting-funnel/internal/infra/metrics"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	dev        bool
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "recruiter",
		Short:         "WhatsApp recruiting funnel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "config.yaml", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&g.dev, "dev", false, "developer mode (console logs, unmasked ids)")

	cmd.AddCommand(serveCmd(g), payloadCmd(), seedCmd(g))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			metrics.SetBuildInfo(version, commit)
			fmt.Fprintf(cmd.OutOrStdout(), "recruiter %s (%s)\n", version, commit)
		},
	})
	return cmd
}
