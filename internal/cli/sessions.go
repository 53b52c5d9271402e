package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"genquiz-service/internal/app"
	"genquiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewSessionsCmd manages stored sessions without starting the server.
func NewSessionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, rename or delete stored sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), *configPath, func(library *app.Library) error {
				return printSessions(cmd.OutOrStdout(), library)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), *configPath, func(library *app.Library) error {
				return library.Delete(cmd.Context(), args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), *configPath, func(library *app.Library) error {
				return library.Rename(cmd.Context(), args[0], args[1])
			})
		},
	})
	return cmd
}

func withLibrary(ctx context.Context, configPath string, fn func(*app.Library) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	library, closeStore, err := openLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(library)
}

func printSessions(out io.Writer, library *app.Library) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSTATUS\tQUESTIONS\tJOIN\tCREATED")
	for _, s := range library.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.Title, s.Type, s.Status, len(s.Questions), s.JoinCode, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
