// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - The "history" command: list, show and export chat logs.

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/export"
	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/ui/history"
	"github.com/carepath/carepath-tui/internal/util"
)

const (
	historyUsage       = "carepath history [list] [--skip N] [--limit N] [--patient MRN]"
	historyShowUsage   = "carepath history show <conversation_id>"
	historyExportUsage = "carepath history export <conversation_id> [--format md|json] [--output DIR]"

	// listCellRunes keeps a list row on one terminal line.
	listCellRunes = 36
)

// HandleHistory handles the "history" command.
func HandleHistory(env *Env, args Args) error {
	p := NewArgParser(args.Raw)

	switch p.Subcommand() {
	case "", "list", "ls":
		return historyList(env, args, p)
	case "show", "view":
		return historyShow(env, args, p)
	case "export":
		return historyExport(env, args, p)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown history subcommand: %s", p.Subcommand()),
			Hint:    "Usage: " + historyUsage,
		}
	}
}

func historyList(env *Env, args Args, p *ArgParser) error {
	skip, err := p.FlagInt("skip", 0)
	if err != nil {
		return err
	}
	if skip < 0 {
		return &ValidationError{Field: "skip", Value: fmt.Sprint(skip), Reason: "must be 0 or more"}
	}
	limit, err := p.FlagInt("limit", env.Config.History.PageSize)
	if err != nil {
		return err
	}
	if limit < model.MinPageSize || limit > model.MaxPageSize {
		return &ValidationError{
			Field:  "limit",
			Value:  fmt.Sprint(limit),
			Reason: fmt.Sprintf("must be between %d and %d", model.MinPageSize, model.MaxPageSize),
		}
	}

	req := api.PageRequest{Skip: skip, Limit: limit, PatientMRN: strings.TrimSpace(p.Flag("patient"))}
	page, err := env.Client().FetchChatLogs(context.Background(), req)
	if err != nil {
		return err
	}

	pager := model.Pagination{Offset: skip, PageSize: limit, Total: page.Total}
	if args.JSON {
		return NewJSONResponse("history", HistoryData{
			Items:      page.Items,
			Total:      page.Total,
			Skip:       skip,
			Limit:      limit,
			Page:       pager.CurrentPage(),
			TotalPages: pager.TotalPages(),
		}).Write(env.Out)
	}

	title := "Chat History"
	if req.PatientMRN != "" {
		title += " for " + req.PatientMRN
	}
	fmt.Fprintln(env.Out, TitleStyle.Render(title))

	if len(page.Items) == 0 {
		fmt.Fprintln(env.Out, history.EmptyTitle)
		if skip == 0 {
			fmt.Fprintln(env.Out, DimStyle.Render(history.EmptyHint))
		}
		return nil
	}

	widths := []int{12, 19, listCellRunes, listCellRunes}
	fmt.Fprintln(env.Out, SectionStyle.Render(formatRow(widths, []string{"Patient MRN", "Date", "Query", "Response"})))
	fmt.Fprintln(env.Out, RenderSeparator(sum(widths)+2*(len(widths)-1)))
	for i := range page.Items {
		cells := history.Row(&page.Items[i])
		cells[2] = util.Truncate(cells[2], listCellRunes-len(util.Ellipsis))
		cells[3] = util.Truncate(cells[3], listCellRunes-len(util.Ellipsis))
		fmt.Fprintln(env.Out, formatRow(widths, cells))
	}

	fmt.Fprintln(env.Out)
	from, to := pager.Range(len(page.Items))
	summary := fmt.Sprintf("Showing %d to %d of %d results", from, to, page.Total)
	if pager.TotalPages() > 1 {
		summary += fmt.Sprintf("  (page %d of %d)", pager.CurrentPage(), pager.TotalPages())
	}
	fmt.Fprintln(env.Out, DimStyle.Render(summary))
	if pager.HasNext() {
		fmt.Fprintln(env.Out, DimStyle.Render(fmt.Sprintf("Next page: carepath history --skip %d --limit %d", skip+limit, limit)))
	}
	return nil
}

func historyShow(env *Env, args Args, p *ArgParser) error {
	id := strings.TrimSpace(p.Positional(1))
	if id == "" {
		return ErrMissingArgument("conversation_id", historyShowUsage)
	}
	log, err := env.Client().GetChatLog(context.Background(), id)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("history", log).Write(env.Out)
	}

	md, err := export.NewMarkdownExporter(&export.Options{IncludeMetadata: false, IncludeRetrieval: true}).Export(log)
	if err != nil {
		return &CommandError{Command: "history", Action: "show", Reason: "could not render conversation " + id, Err: err}
	}
	fmt.Fprintln(env.Out, renderMarkdown(env, string(md)))
	return nil
}

func historyExport(env *Env, args Args, p *ArgParser) error {
	id := strings.TrimSpace(p.Positional(1))
	if id == "" {
		return ErrMissingArgument("conversation_id", historyExportUsage)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = p.FlagOrDefault("output", env.Config.ExportPath())
	format := strings.ToLower(p.FlagOrDefault("format", "md"))
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return &ValidationError{Field: "format", Value: format, Reason: "unsupported", Example: "one of: " + strings.Join(export.Formats, ", ")}
	}

	log, err := env.Client().GetChatLog(context.Background(), id)
	if err != nil {
		return err
	}
	path, err := export.ExportToFile(log, exporter, opts)
	if err != nil {
		return &CommandError{Command: "history", Action: "export", Reason: "could not write " + id, Err: err}
	}

	if args.JSON {
		return NewJSONResponse("history", ExportData{ConversationID: log.Key(), Format: format, Path: path}).Write(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %s\n", SuccessStyle.Render("Exported to"), path)
	return nil
}

func formatRow(widths []int, cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i == len(cells)-1 {
			parts[i] = c
			continue
		}
		parts[i] = util.PadRight(util.FitWidth(c, widths[i]), widths[i])
	}
	return strings.Join(parts, "  ")
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
