package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/viyanta/viyanta-web-sub000/internal"
	"github.com/viyanta/viyanta-web-sub000/internal/api"
	"github.com/viyanta/viyanta-web-sub000/internal/cache"
	"github.com/viyanta/viyanta-web-sub000/internal/collab"
	"github.com/viyanta/viyanta-web-sub000/internal/export"
	"github.com/viyanta/viyanta-web-sub000/internal/render"
	"github.com/viyanta/viyanta-web-sub000/internal/source"
	"github.com/viyanta/viyanta-web-sub000/pkg/clipboard"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

// readInput reads the file named by args, or stdin
func readInput(args []string) (any, error) {
	if len(args) == 0 || args[0] == "-" {
		return source.Read(os.Stdin)
	}
	return source.ReadFile(args[0])
}

// ============================================================================
// Output
// ============================================================================

// OutputOptions selects how a normalized table is written
type OutputOptions struct {
	Boxed     bool
	HTML      bool
	NoInfo    bool
	NoSummary bool
	Fit       bool
	Width     int
	Form      string
	Record    int
}

func (o *OutputOptions) bind(c *cobra.Command) {
	c.Flags().BoolVarP(&o.Boxed, "boxed", "b", false, "Draw a bordered table")
	c.Flags().BoolVar(&o.HTML, "html", false, "Write an HTML table")
	c.Flags().BoolVar(&o.NoInfo, "no-info", false, "Hide document info lines")
	c.Flags().BoolVar(&o.NoSummary, "no-summary", false, "Hide the row and column summary")
	c.Flags().BoolVar(&o.Fit, "fit", false, "Shrink columns to the terminal width")
	c.Flags().IntVarP(&o.Width, "width", "w", 0, "Maximum collapsed cell width (default from config)")
	c.Flags().StringVar(&o.Form, "form", "", "Apply cached edits of this form")
	c.Flags().IntVar(&o.Record, "record", 0, "Record index of the cached edits")
}

func (a *App) cellWidth(opts OutputOptions, model tablemodel.TableModel) int {
	width := a.config.Core.MaxCellWidth
	if opts.Width > 0 {
		width = opts.Width
	}
	if opts.Fit && model.ColumnCount() > 0 {
		perColumn := render.TerminalWidth(os.Stdout)/model.ColumnCount() - 2
		width = min(width, max(perColumn, 8))
	}
	return width
}

func (a *App) writeTable(w io.Writer, model tablemodel.TableModel, opts OutputOptions) error {
	r := render.New(
		render.WithTheme(a.theme),
		render.WithMaxCellWidth(a.cellWidth(opts, model)),
		render.WithDocumentInfo(!opts.NoInfo),
		render.WithSummary(!opts.NoSummary),
	)

	switch {
	case opts.HTML:
		return r.Boxed(w, model, render.FormatHTML)
	case opts.Boxed:
		return r.Boxed(w, model, render.FormatBox)
	}
	return r.Render(w, model)
}

// normalize builds the model for input and overlays cached edits
func (a *App) normalize(ctx context.Context, input any, form string, record int) tablemodel.TableModel {
	model := a.engine.Normalize(input, nil)
	if model.Reason != "" {
		slog.Warn("Input is not a table", "reason", model.Reason)
	}
	if form == "" || !a.config.Cache.Enabled {
		return model
	}

	c, err := cache.Open(a.config.Cache.Path)
	if err != nil {
		slog.Warn("Cache unavailable, skipping edits", "error", err)
		return model
	}
	defer c.Close() // nolint: errcheck

	edits, err := c.LoadEdits(ctx, form, record)
	if err != nil {
		slog.Warn("Failed to load edits", "form", form, "record", record, "error", err)
		return model
	}
	slog.Debug("Applying cached edits", "form", form, "record", record, "count", len(edits))
	return tablemodel.ApplyEdits(model, form, record, edits)
}

// ============================================================================
// Local input
// ============================================================================

func newRenderCommand(app *App) *cobra.Command {
	var opts OutputOptions

	c := &cobra.Command{
		Use:     "render [file]",
		Short:   "Print a normalized table",
		GroupID: "local",
		Args:    cobra.MaximumNArgs(1),
		Example: "  tablelens render statement.pdf\n  cat payload.json | tablelens render --boxed",
		RunE: func(c *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			model := app.normalize(c.Context(), input, opts.Form, opts.Record)
			return app.writeTable(c.OutOrStdout(), model, opts)
		},
	}
	opts.bind(c)
	return c
}

func newJSONCommand(app *App) *cobra.Command {
	var compact bool
	var style string
	var form string
	var record int

	c := &cobra.Command{
		Use:     "json [file]",
		Short:   "Print the normalized table model as JSON",
		GroupID: "local",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			model := app.normalize(c.Context(), input, form, record)
			return writeModelJSON(c.OutOrStdout(), model, compact, style)
		},
	}
	c.Flags().BoolVar(&compact, "compact", false, "Write compact JSON")
	c.Flags().StringVar(&style, "style", "", "Syntax highlighting style")
	c.Flags().StringVar(&form, "form", "", "Apply cached edits of this form")
	c.Flags().IntVar(&record, "record", 0, "Record index of the cached edits")
	return c
}

func writeModelJSON(w io.Writer, model tablemodel.TableModel, compact bool, style string) error {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(model)
	} else {
		data, err = json.MarshalIndent(model, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	data = append(data, '\n')
	return render.HighlightJSON(w, data, style)
}

func newExportCommand(app *App) *cobra.Command {
	var output, format, sheet, form string
	var info bool
	var record int

	c := &cobra.Command{
		Use:     "export [file]",
		Short:   "Export a normalized table to CSV, XLSX or JSON",
		GroupID: "local",
		Args:    cobra.MaximumNArgs(1),
		Example: "  tablelens export statement.txt -o statement.xlsx\n  tablelens export payload.json --format csv",
		RunE: func(c *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			model := app.normalize(c.Context(), input, form, record)
			return exportModel(c.OutOrStdout(), model, output, format, export.Options{IncludeInfo: info, Sheet: sheet})
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "Output file; the extension selects the format")
	c.Flags().StringVarP(&format, "format", "f", "", "Output format when writing to stdout (csv, xlsx, json)")
	c.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for XLSX output")
	c.Flags().BoolVar(&info, "info", false, "Include document info rows")
	c.Flags().StringVar(&form, "form", "", "Apply cached edits of this form")
	c.Flags().IntVar(&record, "record", 0, "Record index of the cached edits")
	return c
}

func exportModel(w io.Writer, model tablemodel.TableModel, output, format string, opts export.Options) error {
	if output != "" && output != "-" {
		if err := export.WriteToFile(output, model, opts); err != nil {
			return err
		}
		slog.Info("Exported table", "path", output, "summary", model.Summary())
		return nil
	}

	if format == "" {
		format = string(export.FormatCSV)
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(w, model, f, opts)
}

func (a *App) newView(state *internal.State) (*internal.View, error) {
	alphabet, err := internal.NewBuiltinAlphabet(a.config.Viewer.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("viewer.alphabet: %w", err)
	}
	copier := clipboard.New(
		clipboard.WithSystem(a.config.Viewer.Clipboard),
		clipboard.WithOSC52(a.config.Viewer.OSC52),
	)
	return internal.NewView(state,
		internal.WithTheme(a.theme),
		internal.WithAlphabet(alphabet),
		internal.WithCopier(copier),
		internal.WithMaxCellWidth(a.config.Core.MaxCellWidth),
	), nil
}

func (a *App) view(input any) error {
	v, err := a.newView(internal.NewState(a.engine, input))
	if err != nil {
		return err
	}
	return v.Run()
}

func newViewCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "view [file]",
		Short:   "Browse a table interactively",
		Long:    "Browse a table interactively. Enter expands long cells, / searches rows, f jumps to a row, y copies a cell.",
		GroupID: "local",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			return app.view(input)
		},
	}
}

func newCaptureCommand(app *App) *cobra.Command {
	var target string
	var history int
	var printOnly bool

	c := &cobra.Command{
		Use:     "capture",
		Short:   "Normalize the table printed in a tmux pane",
		GroupID: "local",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			text, err := capturePane(target, history)
			if err != nil {
				return err
			}
			input := source.Prepare([]byte(text))
			if printOnly {
				return app.writeTable(c.OutOrStdout(), app.engine.Normalize(input, nil), OutputOptions{})
			}
			return app.view(input)
		},
	}
	c.Flags().StringVarP(&target, "target", "t", "", "tmux pane to capture (default: the active pane)")
	c.Flags().IntVar(&history, "history", 0, "Scrollback lines to include")
	c.Flags().BoolVarP(&printOnly, "print", "p", false, "Print the table instead of opening the viewer")
	return c
}

// ============================================================================
// Collaborator
// ============================================================================

func (a *App) client() (*collab.Client, error) {
	cfg := a.config.Collaborator
	if cfg.BaseURL == "" {
		return nil, errors.New("collaborator.base_url is not configured")
	}
	return collab.NewClient(cfg.BaseURL, collab.WithTimeout(cfg.Timeout), collab.WithToken(cfg.Token)), nil
}

// fetcher wraps the client with the payload cache when it is enabled. The
// returned function releases the cache.
func (a *App) fetcher(client *collab.Client) (cache.Fetcher, func()) {
	if !a.config.Cache.Enabled {
		return client, func() {}
	}
	c, err := cache.Open(a.config.Cache.Path)
	if err != nil {
		slog.Warn("Cache unavailable, fetching directly", "error", err)
		return client, func() {}
	}
	return &cache.CachedFetcher{Cache: c, Upstream: client, MaxAge: a.config.Cache.MaxAge}, func() {
		c.Close() // nolint: errcheck
	}
}

// preferences uses the configured forms, falling back to the ones enabled
// for the company on the collaborator
func (a *App) preferences(ctx context.Context, client *collab.Client, company string) source.Preferences {
	if len(a.config.Forms.Enabled) > 0 || client == nil || company == "" {
		return source.NewPreferences(a.config.Forms.Enabled)
	}
	forms, err := client.FetchPreferences(ctx, company)
	if err != nil {
		slog.Warn("Failed to fetch form preferences", "company", company, "error", err)
		return source.NewPreferences(nil)
	}
	return source.NewPreferences(forms)
}

func newFetchCommand(app *App) *cobra.Command {
	var opts OutputOptions
	var view, asJSON bool
	var output string

	c := &cobra.Command{
		Use:     "fetch <company> [file] [split]",
		Short:   "Fetch a document from the collaborator and normalize it",
		Long:    "Fetch a document from the collaborator and normalize it. Without a file and split, pick one of the enabled forms interactively.",
		GroupID: "remote",
		Args:    cobra.RangeArgs(1, 3),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			client, err := app.client()
			if err != nil {
				return err
			}

			ref := collab.Ref{Company: args[0]}
			form := opts.Form
			if len(args) == 3 {
				ref.File, ref.Split = args[1], args[2]
			} else {
				file := ""
				if len(args) == 2 {
					file = args[1]
				}
				split, picked, err := app.pickSplit(ctx, client, ref.Company, file)
				if err != nil || !picked {
					return err
				}
				ref = split.ref
				if form == "" {
					form = split.form
				}
			}

			if form != "" && !app.preferences(ctx, client, ref.Company).Enabled(form) {
				return fmt.Errorf("form %q is disabled", form)
			}

			fetcher, release := app.fetcher(client)
			defer release()

			doc, err := fetcher.FetchDocument(ctx, ref)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", ref, err)
			}
			input := source.FromDocument(doc)

			switch {
			case view:
				return app.view(input)
			case asJSON:
				return writeModelJSON(c.OutOrStdout(), app.normalize(ctx, input, form, opts.Record), false, "")
			case output != "":
				return exportModel(c.OutOrStdout(), app.normalize(ctx, input, form, opts.Record), output, "", export.Options{IncludeInfo: true})
			}
			return app.writeTable(c.OutOrStdout(), app.normalize(ctx, input, form, opts.Record), opts)
		},
	}
	opts.bind(c)
	c.Flags().BoolVar(&view, "view", false, "Open the interactive viewer")
	c.Flags().BoolVar(&asJSON, "json", false, "Print the table model as JSON")
	c.Flags().StringVarP(&output, "output", "o", "", "Export to a file; the extension selects the format")
	return c
}

type pickedSplit struct {
	ref  collab.Ref
	form string
}

// pickSplit lists the enabled splits of a company, optionally of one file,
// and lets the user choose one
func (a *App) pickSplit(ctx context.Context, client *collab.Client, company, file string) (pickedSplit, bool, error) {
	files, err := client.ListFiles(ctx, company)
	if err != nil {
		return pickedSplit{}, false, fmt.Errorf("failed to list files: %w", err)
	}
	files = a.preferences(ctx, client, company).FilterFiles(files)

	var splits []pickedSplit
	var labels []string
	for _, f := range files {
		if file != "" && f.ID != file {
			continue
		}
		for _, s := range f.Splits {
			splits = append(splits, pickedSplit{
				ref:  collab.Ref{Company: company, File: f.ID, Split: s.ID},
				form: s.Form,
			})
			labels = append(labels, fmt.Sprintf("%s / %s / %s", f.Name, s.Form, s.Name))
		}
	}
	if len(splits) == 0 {
		return pickedSplit{}, false, fmt.Errorf("no enabled forms found for %q", company)
	}
	if len(splits) == 1 {
		return splits[0], true, nil
	}

	index, ok, err := internal.NewPicker(labels).Pick()
	if err != nil || !ok {
		return pickedSplit{}, false, err
	}
	slog.Info("Picked split", "ref", splits[index].ref.String(), "form", splits[index].form)
	return splits[index], true, nil
}

func newEditCommand(app *App) *cobra.Command {
	var form string
	var record int
	var list bool

	c := &cobra.Command{
		Use:     "edit --form <form> [row:header=value ...]",
		Short:   "Store cell edits applied by render, json, export and fetch",
		GroupID: "remote",
		Example: "  tablelens edit --form L-1 2:Life=75 \"3:Grand Total=1,000\"\n  tablelens edit --form L-1 --list",
		RunE: func(c *cobra.Command, args []string) error {
			if form == "" {
				return errors.New("--form is required")
			}
			if !app.config.Cache.Enabled {
				return errors.New("edits are stored in the cache, which is disabled")
			}

			db, err := cache.Open(app.config.Cache.Path)
			if err != nil {
				return err
			}
			defer db.Close() // nolint: errcheck

			if list {
				edits, err := db.LoadEdits(c.Context(), form, record)
				if err != nil {
					return err
				}
				return printEdits(c.OutOrStdout(), edits)
			}

			edits, err := parseEdits(form, record, args)
			if err != nil {
				return err
			}
			if err := db.SaveEdits(c.Context(), edits); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "saved %d edits for %s record %d\n", len(edits), form, record)
			return nil
		},
	}
	c.Flags().StringVar(&form, "form", "", "Form the edits belong to")
	c.Flags().IntVar(&record, "record", 0, "Record index within the form")
	c.Flags().BoolVar(&list, "list", false, "List the stored edits")
	return c
}

// parseEdits parses "row:header=value" arguments
func parseEdits(form string, record int, args []string) (map[tablemodel.EditKey]string, error) {
	if len(args) == 0 {
		return nil, errors.New("no edits given")
	}

	edits := make(map[tablemodel.EditKey]string, len(args))
	for _, arg := range args {
		target, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid edit %q: expected row:header=value", arg)
		}
		rowText, header, ok := strings.Cut(target, ":")
		if !ok || header == "" {
			return nil, fmt.Errorf("invalid edit %q: expected row:header=value", arg)
		}
		row, err := strconv.Atoi(rowText)
		if err != nil || row < 0 {
			return nil, fmt.Errorf("invalid row in edit %q", arg)
		}
		edits[tablemodel.EditKey{Form: form, Record: record, Row: row, Header: header}] = value
	}
	return edits, nil
}

func printEdits(w io.Writer, edits map[tablemodel.EditKey]string) error {
	keys := make([]tablemodel.EditKey, 0, len(edits))
	for k := range edits {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Row != keys[j].Row {
			return keys[i].Row < keys[j].Row
		}
		return keys[i].Header < keys[j].Header
	})

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%d:%s=%s\n", k.Row, k.Header, edits[k]); err != nil {
			return err
		}
	}
	return nil
}

func newServeCommand(app *App) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the normalization engine over HTTP",
		GroupID: "remote",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.config.Server.Listen
			}

			opts := []api.Option{api.WithPreferences(source.NewPreferences(app.config.Forms.Enabled))}
			if client, err := app.client(); err == nil {
				fetcher, release := app.fetcher(client)
				defer release()
				opts = append(opts, api.WithFetcher(fetcher))
			} else {
				slog.Info("Document endpoint disabled", "reason", err)
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(c.OutOrStdout(), "listening on %s\n", addr)
			return api.New(app.engine, opts...).Listen(ctx, addr)
		},
	}
	c.Flags().StringVarP(&addr, "listen", "l", "", "Listen address (default from config)")
	return c
}
