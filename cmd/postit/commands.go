package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DamynChipman/postit/internal/adapters/server"
	"github.com/DamynChipman/postit/internal/adapters/server/common"
	"github.com/DamynChipman/postit/internal/app"
	"github.com/DamynChipman/postit/internal/config"
	"github.com/DamynChipman/postit/internal/domain"
	"github.com/DamynChipman/postit/internal/platform"
	"github.com/DamynChipman/postit/internal/tui"
	"github.com/spf13/cobra"
)

// withSession opens a session, runs fn, and logs the command flow outcome.
func (c *cli) withSession(command string, quietConsole bool, fn func(*session) error) (err error) {
	s, err := c.open(command, quietConsole)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close session: %w", closeErr)
		}
	}()

	s.logger.Info("command flow start", "command", command)
	if err = fn(s); err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	s.logger.Info("command flow complete", "command", command)
	return nil
}

func (c *cli) initCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a project board in ./.postit/board.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession("init", false, func(s *session) error {
				loc, err := c.initLocation(s.paths)
				if err != nil {
					return err
				}
				// Discovery keys off the board directory, whatever backend holds the rows.
				if err := os.MkdirAll(filepath.Dir(loc.Path), 0o755); err != nil {
					return fmt.Errorf("create board dir: %w", err)
				}
				_, created, err := s.svc.InitBoard(cmd.Context(), loc, name)
				if err != nil {
					return fmt.Errorf("init board: %w", err)
				}
				s.logger.Debug("board initialized", "path", loc.Path, "created", created)
				if err := config.EnsureConfigDir(s.configPath); err != nil {
					s.logger.Warn("config dir not created", "path", s.configPath, "err", err)
				}
				_, err = fmt.Fprintf(c.stdout, "Initialized board at %s\n", loc.Path)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "board name (defaults to the project directory name)")
	return cmd
}

// initLocation is the --board file or the project board under the working directory.
func (c *cli) initLocation(paths platform.Paths) (domain.BoardLocation, error) {
	if strings.TrimSpace(c.boardPath) != "" {
		return platform.ExplicitBoard(c.boardPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return domain.BoardLocation{}, fmt.Errorf("resolve working dir: %w", err)
	}
	return paths.ProjectBoard(cwd), nil
}

func (c *cli) listCommand() *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the board, optionally one column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession("list", false, func(s *session) error {
				loc, err := c.locate(s.paths)
				if err != nil {
					return err
				}
				board, err := s.svc.OpenBoard(cmd.Context(), loc)
				if err != nil {
					return fmt.Errorf("open board: %w", err)
				}
				columns, err := s.svc.ListColumns(cmd.Context(), loc, column)
				if err != nil {
					return fmt.Errorf("list notes: %w", err)
				}
				return writeBoardListing(c, board.Name, loc.Scope, columns)
			})
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "only list this column id")
	return cmd
}

// writeBoardListing prints the plain-text board listing.
func writeBoardListing(c *cli, name string, scope domain.BoardScope, columns []app.ColumnNotes) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %s (%s)\n", name, scope)
	for _, column := range columns {
		b.WriteString(column.Column.ID + "\n")
		if len(column.Notes) == 0 {
			b.WriteString("  (empty)\n")
		}
		for _, note := range column.Notes {
			fmt.Fprintf(&b, "  - %s: %s\n", note.ID, note.Title)
			if note.Body != "" {
				fmt.Fprintf(&b, "    %s\n", note.Body)
			}
			if len(note.Tags) > 0 {
				fmt.Fprintf(&b, "    tags: %s\n", strings.Join(note.Tags, ", "))
			}
			if note.Due != nil {
				fmt.Fprintf(&b, "    due: %s\n", domain.FormatDue(*note.Due))
			}
		}
		b.WriteString("\n")
	}
	_, err := fmt.Fprint(c.stdout, b.String())
	return err
}

func (c *cli) addCommand() *cobra.Command {
	var (
		body   string
		tags   []string
		column string
		due    string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a note (to the first column unless --column is set)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession("add", false, func(s *session) error {
				loc, err := c.locate(s.paths)
				if err != nil {
					return err
				}
				note, columnID, err := s.svc.AddNote(cmd.Context(), loc, app.AddNoteInput{
					Title:    args[0],
					Body:     body,
					Tags:     tags,
					ColumnID: column,
					Due:      due,
				})
				if err != nil {
					return fmt.Errorf("add note: %w", err)
				}
				s.logger.Debug("note added", "id", note.ID, "column", columnID)
				_, err = fmt.Fprintf(c.stdout, "Added %s\n", note.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "note body")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&column, "column", "", "target column id")
	cmd.Flags().StringVar(&due, "due", "", "due date as YYYY.MM.DD@hh:mm (UTC)")
	return cmd
}

func (c *cli) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <note-id> <column-id>",
		Short: "Move a note to the end of another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession("move", false, func(s *session) error {
				loc, err := c.locate(s.paths)
				if err != nil {
					return err
				}
				note, err := s.svc.MoveNote(cmd.Context(), loc, args[0], args[1])
				if err != nil {
					return fmt.Errorf("move note %s to %s: %w", args[0], args[1], err)
				}
				_, err = fmt.Fprintf(c.stdout, "Moved %s to %s\n", note.ID, args[1])
				return err
			})
		},
	}
}

func (c *cli) editCommand() *cobra.Command {
	var (
		title     string
		body      string
		tags      []string
		clearTags bool
		column    string
		due       string
		clearDue  bool
	)
	cmd := &cobra.Command{
		Use:   "edit <note-id>",
		Short: "Update fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			in := app.EditNoteInput{ID: args[0], Tags: tags, ClearTags: clearTags, ClearDue: clearDue}
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("body") {
				in.Body = &body
			}
			if flags.Changed("due") {
				in.Due = &due
			}
			if flags.Changed("column") {
				in.ColumnID = &column
			}
			return c.withSession("edit", false, func(s *session) error {
				loc, err := c.locate(s.paths)
				if err != nil {
					return err
				}
				note, err := s.svc.EditNote(cmd.Context(), loc, in)
				if err != nil {
					return fmt.Errorf("edit note %s: %w", args[0], err)
				}
				_, err = fmt.Fprintf(c.stdout, "Updated %s\n", note.ID)
				return err
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "new title")
	flags.StringVar(&body, "body", "", "new body")
	flags.StringArrayVarP(&tags, "tag", "t", nil, "replace tags (repeatable)")
	flags.BoolVar(&clearTags, "clear-tags", false, "remove all tags")
	flags.StringVar(&column, "column", "", "move to column id")
	flags.StringVar(&due, "due", "", "due date as YYYY.MM.DD@hh:mm (UTC)")
	flags.BoolVar(&clearDue, "clear-due", false, "remove the due date")
	return cmd
}

func (c *cli) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession("delete", false, func(s *session) error {
				loc, err := c.locate(s.paths)
				if err != nil {
					return err
				}
				if err := s.svc.DeleteNote(cmd.Context(), loc, args[0]); err != nil {
					return fmt.Errorf("delete note %s: %w", args[0], err)
				}
				_, err = fmt.Fprintf(c.stdout, "Deleted %s\n", args[0])
				return err
			})
		},
	}
}

func (c *cli) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive board (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
}

// runTUI opens the located board and runs the interactive program until quit.
func (c *cli) runTUI(ctx context.Context) error {
	return c.withSession("tui", true, func(s *session) error {
		loc, err := c.locate(s.paths)
		if err != nil {
			return err
		}
		board, err := s.svc.OpenBoard(ctx, loc)
		if err != nil {
			return fmt.Errorf("open board: %w", err)
		}
		tick, err := s.cfg.TickInterval()
		if err != nil {
			return err
		}
		model := tui.NewModel(s.svc, board, loc,
			tui.WithDefaultView(s.cfg.UI.DefaultView),
			tui.WithTickInterval(tick),
			tui.WithMarkdown(s.cfg.UI.RenderMarkdown),
			tui.WithHelpExpanded(s.cfg.UI.ShowHelp),
			tui.WithLogger(s.logger.Active()),
		)
		if _, err := programFactory(model).Run(); err != nil {
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

func (c *cli) serveCommand() *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP (REST and MCP) until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession("serve", false, func(s *session) error {
				loc, err := c.locate(s.paths)
				if err != nil {
					return err
				}
				cfg := server.Config{
					HTTPBind:      s.cfg.Server.HTTPBind,
					APIEndpoint:   s.cfg.Server.APIEndpoint,
					MCPEndpoint:   s.cfg.Server.MCPEndpoint,
					ServerName:    c.appName,
					ServerVersion: version,
				}
				if cmd.Flags().Changed("http") {
					cfg.HTTPBind = httpBind
				}
				if cmd.Flags().Changed("api-endpoint") {
					cfg.APIEndpoint = apiEndpoint
				}
				if cmd.Flags().Changed("mcp-endpoint") {
					cfg.MCPEndpoint = mcpEndpoint
				}
				s.logger.Debug("serve flow resolved", "path", loc.Path)
				return server.Run(cmd.Context(), cfg, server.Dependencies{
					Notes:  common.NewAppServiceAdapter(s.svc, loc),
					Logger: s.logger.Active(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "listen address (default from server.http_bind)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "REST base path (default from server.api_endpoint)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP path (default from server.mcp_endpoint)")
	return cmd
}

func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data, database, and board paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := c.resolvePaths()
			if err != nil {
				return err
			}
			loc, err := c.locate(paths)
			if err != nil {
				return err
			}
			dbPath, _ := c.resolveDBPath(paths)
			_, err = fmt.Fprintf(c.stdout,
				"app: %s\ndev_mode: %t\nconfig: %s\ndata_dir: %s\ndb: %s\nboard: %s (%s)\n",
				c.appName, c.devMode, c.resolveConfigPath(paths), paths.DataDir, dbPath, loc.Path, loc.Scope,
			)
			return err
		},
	}
}
