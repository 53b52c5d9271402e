package cli

import (
	"fmt"
	"os"
	"time"

	"genquiz-service/internal/app"
	"genquiz-service/internal/domain"
	"genquiz-service/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCmd writes a session's results PDF to disk.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export session results as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), *configPath, func(library *app.Library) error {
				s, ok := library.Get(args[0])
				if !ok {
					return domain.ErrSessionNotFound
				}
				path := out
				if path == "" {
					path = export.FileName(s.Title)
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := export.WriteResultsPDF(f, s, time.Now()); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to <title>_results.pdf)")
	return cmd
}
