package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/vgsales-report/pkg/services/metrics"
	"github.com/spf13/cobra"
)

func NewMetricsCmd(registry metrics.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the available metric identifiers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Available metrics:\n%s\n",
				strings.Join(registry.List(), "\n"))
			return err
		},
	}
}
