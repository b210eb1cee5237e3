package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/browse"
	"github.com/sadopc/sqlmeta/internal/highlight"
	"github.com/sadopc/sqlmeta/internal/history"
	"github.com/sadopc/sqlmeta/internal/mcpserver"
	"github.com/sadopc/sqlmeta/internal/metadata"
	"github.com/sadopc/sqlmeta/internal/theme"
)

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "sqlmeta %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(stdout, "\nSupported adapters:")
			for _, name := range adapter.Names() {
				fmt.Fprintf(stdout, "  - %s\n", name)
			}
		},
	}
}

func newSQLCmd(opts *options, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <provider>",
		Short: "Print the catalog query for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := metadata.ParseProvider(args[0])
			if err != nil {
				return err
			}
			schemaName, err := metadata.ResolveSchema(p, opts.schema)
			if err != nil {
				return err
			}
			q, err := metadata.BuildQuery(p, schemaName)
			if err != nil {
				return err
			}

			sql := q.SQL
			if isTerminal(stdout) {
				cfg, _, err := setup(opts, io.Discard)
				if err != nil {
					return err
				}
				sql = highlight.New(p).Highlight(sql, theme.Get(cfg.Theme))
			}
			fmt.Fprintln(stdout, sql)
			if len(q.Args) > 0 {
				fmt.Fprintf(stdout, "-- args: %s\n", formatArgs(q.Args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "Schema to bind (default depends on the provider)")
	return cmd
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.Quote(fmt.Sprint(a))
	}
	return strings.Join(parts, ", ")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newBrowseCmd(opts *options, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [dsn]",
		Short: "Browse tables and columns interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would draw over the alternate screen.
			logOut := io.Discard
			if opts.verbose {
				logOut = stderr
			}
			cfg, logger, err := setup(opts, logOut)
			if err != nil {
				return err
			}
			t, err := resolveTarget(cfg, opts, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			load := func() (*metadata.Result, error) {
				return describe(ctx, cfg, logger, t)
			}

			p := tea.NewProgram(browse.New(load, theme.Get(cfg.Theme)), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running browser: %w", err)
			}
			return nil
		},
	}
	addConnectionFlags(cmd, opts)
	return cmd
}

func newHistoryCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var (
		limit    int
		search   string
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent introspection runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(opts, stderr)
			if err != nil {
				return err
			}

			hist, err := history.New()
			if err != nil {
				return err
			}
			defer hist.Close()

			if clearAll {
				if err := hist.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "History cleared.")
				return nil
			}

			var entries []history.Entry
			if search != "" {
				entries, err = hist.Search("%"+search+"%", limit)
			} else {
				entries, err = hist.Recent(limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "No runs recorded.")
				return nil
			}
			fmt.Fprintln(stdout, historyTable(entries, theme.Get(cfg.Theme)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of runs to show")
	cmd.Flags().StringVar(&search, "search", "", "Only show runs whose provider, database or schema contains this text")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded runs")
	return cmd
}

func historyTable(entries []history.Entry, th *theme.Theme) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.TableBorder)).
		Headers("WHEN", "PROVIDER", "DATABASE", "SCHEMA", "TABLES", "COLUMNS", "MS", "ERROR").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return th.TableHeader
			}
			return th.TableCell
		})
	for _, e := range entries {
		t.Row(
			e.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
			e.Provider,
			e.DatabaseName,
			e.Schema,
			strconv.FormatInt(e.TableCount, 10),
			strconv.FormatInt(e.ColumnCount, 10),
			strconv.FormatInt(e.DurationMS, 10),
			e.Error,
		)
	}
	return t.String()
}

func newConnectionsCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "List saved connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(opts, stderr)
			if err != nil {
				return err
			}
			if len(cfg.Connections) == 0 {
				fmt.Fprintln(stdout, "No saved connections.")
				return nil
			}
			for _, sc := range cfg.Connections {
				line := fmt.Sprintf("%-20s %s", sc.Name, sc.DisplayString())
				if sc.Schema != "" {
					line += " (schema " + sc.Schema + ")"
				}
				if sc.Keyring {
					line += " [keyring]"
				}
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}

	setPassword := &cobra.Command{
		Use:   "set-password <name>",
		Short: "Store a saved connection's password in the OS keyring",
		Long: `Reads a password from standard input and stores it in the OS keyring.
Set "keyring: true" on the connection to use it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(opts, stderr)
			if err != nil {
				return err
			}
			sc, err := cfg.Find(args[0])
			if err != nil {
				return err
			}
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := sc.StorePassword(password); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Stored password for %q.\n", sc.Name)
			return nil
		},
	}
	cmd.AddCommand(setPassword)
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("read password: empty input")
	}
	return line, nil
}

func newServeCmd(opts *options, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the database_metadata tool over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts, stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			recs, closeRecs := recorders(cfg, logger)
			defer closeRecs()

			srv := mcpserver.New(cfg, metadata.NewIntrospector(logger, recs...), logger, version)
			if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
