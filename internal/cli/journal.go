// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// journal.go - The "journal" command: the local record of answered queries.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carepath/carepath-tui/internal/export"
	"github.com/carepath/carepath-tui/internal/storage"
	"github.com/carepath/carepath-tui/internal/util"
)

const journalUsage = "carepath journal [list [--limit N] [--patient MRN]|show <id>|delete <id>|clear --confirm]"

// HandleJournal handles the "journal" command. Reading works whether or
// not journal.enabled is set, so older entries stay reachable.
func HandleJournal(env *Env, args Args) error {
	p := NewArgParser(args.Raw)

	switch p.Subcommand() {
	case "", "list", "ls":
		return journalList(env, args, p)
	case "show":
		return journalShow(env, args, p)
	case "delete", "rm":
		return journalDelete(env, args, p)
	case "clear":
		return journalClear(env, args, p)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown journal subcommand: %s", p.Subcommand()),
			Hint:    "Usage: " + journalUsage,
		}
	}
}

func openJournal(env *Env) (*storage.Journal, error) {
	path, err := env.Config.JournalPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenJournal(path)
}

// journalExists avoids creating an empty database just to read from it.
func journalExists(env *Env) (string, bool) {
	path, err := env.Config.JournalPath()
	if err != nil {
		return "", false
	}
	_, err = os.Stat(path)
	return path, err == nil
}

func journalList(env *Env, args Args, p *ArgParser) error {
	limit, err := p.FlagInt("limit", 20)
	if err != nil {
		return err
	}
	if limit < 0 {
		return &ValidationError{Field: "limit", Value: fmt.Sprint(limit), Reason: "must be 0 or more"}
	}

	path, ok := journalExists(env)
	entries := []*storage.Entry{}
	total := 0
	if ok {
		j, err := storage.OpenJournal(path)
		if err != nil {
			return err
		}
		defer j.Close()
		entries, err = j.List(context.Background(), storage.ListOptions{
			Limit:      limit,
			PatientMRN: strings.TrimSpace(p.Flag("patient")),
		})
		if err != nil {
			return err
		}
		if total, err = j.Count(context.Background()); err != nil {
			return err
		}
	}

	if args.JSON {
		return NewJSONResponse("journal", JournalData{Path: path, Total: total, Entries: entries}).Write(env.Out)
	}

	fmt.Fprintln(env.Out, TitleStyle.Render("Journal"))
	if len(entries) == 0 {
		fmt.Fprintln(env.Out, "No journal entries.")
		if !env.Config.Journal.Enabled {
			fmt.Fprintln(env.Out, DimStyle.Render("Enable it with: carepath config set journal.enabled true"))
		}
		return nil
	}

	widths := []int{8, 19, 12, 48}
	fmt.Fprintln(env.Out, SectionStyle.Render(formatRow(widths, []string{"ID", "Date", "Patient MRN", "Query"})))
	fmt.Fprintln(env.Out, RenderSeparator(sum(widths)+2*(len(widths)-1)))
	for _, e := range entries {
		fmt.Fprintln(env.Out, formatRow(widths, []string{
			util.TruncateNoEllipsis(e.ID, 8),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.PatientMRN,
			util.FitWidth(util.SingleLine(e.Query), 48),
		}))
	}
	fmt.Fprintln(env.Out)
	fmt.Fprintln(env.Out, DimStyle.Render(fmt.Sprintf("%d of %d %s shown from %s",
		len(entries), total, pluralEntries(total), path)))
	return nil
}

// journalShow accepts a full ID or a unique prefix, as printed by list.
func journalShow(env *Env, args Args, p *ArgParser) error {
	id := strings.TrimSpace(p.Positional(1))
	if id == "" {
		return ErrMissingArgument("id", "carepath journal show <id>")
	}
	path, ok := journalExists(env)
	if !ok {
		return &NotFoundError{Resource: "journal entry", ID: id}
	}
	j, err := storage.OpenJournal(path)
	if err != nil {
		return err
	}
	defer j.Close()

	entry, err := j.Load(context.Background(), id)
	if errors.Is(err, storage.ErrNotFound) {
		entry, err = findByPrefix(j, id)
	}
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("journal", entry).Write(env.Out)
	}
	md, err := export.NewMarkdownExporter(&export.Options{IncludeMetadata: true}).Export(entry.ChatLog())
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, renderMarkdown(env, string(md)))
	return nil
}

// journalDelete removes one entry, matched the same way as show.
func journalDelete(env *Env, args Args, p *ArgParser) error {
	id := strings.TrimSpace(p.Positional(1))
	if id == "" {
		return ErrMissingArgument("id", "carepath journal delete <id>")
	}
	path, ok := journalExists(env)
	if !ok {
		return &NotFoundError{Resource: "journal entry", ID: id}
	}
	j, err := storage.OpenJournal(path)
	if err != nil {
		return err
	}
	defer j.Close()

	entry, err := j.Load(context.Background(), id)
	if errors.Is(err, storage.ErrNotFound) {
		entry, err = findByPrefix(j, id)
	}
	if err != nil {
		return err
	}
	if err := j.Delete(context.Background(), entry.ID); err != nil {
		return err
	}
	remaining, err := j.Count(context.Background())
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("journal", map[string]interface{}{
			"deleted":   entry.ID,
			"remaining": remaining,
		}).Write(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %s (%d %s left)\n", SuccessStyle.Render("Deleted"), entry.ID, remaining, pluralEntries(remaining))
	return nil
}

func findByPrefix(j *storage.Journal, prefix string) (*storage.Entry, error) {
	all, err := j.List(context.Background(), storage.ListOptions{})
	if err != nil {
		return nil, err
	}
	var match *storage.Entry
	for _, e := range all {
		if !strings.HasPrefix(e.ID, prefix) {
			continue
		}
		if match != nil {
			return nil, &ValidationError{Field: "id", Value: prefix, Reason: "matches more than one entry"}
		}
		match = e
	}
	if match == nil {
		return nil, &NotFoundError{Resource: "journal entry", ID: prefix}
	}
	return match, nil
}

func journalClear(env *Env, args Args, p *ArgParser) error {
	if !p.BoolFlag("confirm") {
		return &UsageError{
			Message: "refusing to clear the journal without --confirm",
			Hint:    "Usage: carepath journal clear --confirm",
		}
	}
	path, ok := journalExists(env)
	removed := 0
	if ok {
		j, err := storage.OpenJournal(path)
		if err != nil {
			return err
		}
		defer j.Close()
		if removed, err = j.Clear(context.Background()); err != nil {
			return err
		}
	}

	if args.JSON {
		return NewJSONResponse("journal", map[string]int{"removed": removed}).Write(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %d %s\n", SuccessStyle.Render("Removed"), removed, pluralEntries(removed))
	return nil
}

func pluralEntries(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}
