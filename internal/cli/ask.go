// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - The "ask" command: one triage query, answered on stdout.

package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/session"
	"github.com/carepath/carepath-tui/internal/storage"
	"github.com/carepath/carepath-tui/internal/ui/chat"
)

const askUsage = `carepath ask [-p MRN] [-m MODE] "question"`

// HandleAsk handles the "ask" command. The form goes through the same
// states as the TUI chat view, so blank input is rejected the same way.
func HandleAsk(env *Env, args Args) error {
	p := NewArgParser(args.Raw)
	cfg := env.Config

	sess := session.New(cfg.Chat.DefaultPatientMRN)
	form := sess.Chat
	form.Query = strings.TrimSpace(JoinPositionalArgs(p, 0))
	if mrn := p.Flag("patient"); mrn != "" {
		form.PatientMRN = mrn
	}
	if p.HasFlag("patient") && strings.TrimSpace(p.Flag("patient")) == "" {
		return &ValidationError{Field: "patient", Reason: "requires a value", Example: askUsage}
	}
	mode, err := resolveMode(p.Flag("mode"), cfg.Chat.LLMModes)
	if err != nil {
		return err
	}
	form.Mode = mode

	if strings.TrimSpace(form.Query) == "" {
		return ErrMissingArgument("question", askUsage)
	}

	sub, ok := form.Begin()
	if !ok {
		return &ValidationError{Field: "patient", Reason: "patient MRN is required", Example: askUsage}
	}

	if !args.JSON {
		fmt.Fprintf(env.Err, "%s %s\n", DimStyle.Render("Submitting for"), PatientStyle.Render(sub.PatientMRN))
	}

	start := env.now()
	resp, err := env.Client().SubmitChat(context.Background(), sub.PatientMRN, sub.Query, sub.Mode)
	elapsed := int(env.now().Sub(start) / time.Millisecond)
	form.ElapsedMs = elapsed
	if err != nil {
		form.Fail(sub.Run, describe(err))
		return err
	}
	form.Succeed(sub.Run, resp)

	journalID := recordAnswer(env, sess, sub, resp, elapsed)

	if args.JSON {
		return NewJSONResponse("ask", AskData{ChatResponse: resp, ElapsedMs: elapsed, JournalID: journalID}).Write(env.Out)
	}

	fmt.Fprintln(env.Out, renderMarkdown(env, resp.Response))
	fmt.Fprintln(env.Out)
	fmt.Fprintln(env.Out, RenderSeparator())
	if resp.ConversationID != "" {
		fmt.Fprintln(env.Out, field("Conversation ID", resp.ConversationID))
	}
	if resp.TraceID != "" {
		fmt.Fprintln(env.Out, field("Trace ID", resp.TraceID))
	}
	if resp.LLMMode != "" {
		fmt.Fprintln(env.Out, field("LLM Mode", resp.LLMMode))
	}
	if d, ok := resp.InferenceTime(); ok {
		fmt.Fprintln(env.Out, field("Inference", d.Round(time.Millisecond).String()))
	}
	fmt.Fprintln(env.Out, field("Total time", chat.FormatElapsed(elapsed)))
	return nil
}

// resolveMode accepts a configured mode, case-insensitively. Empty and
// "default" select the server default.
func resolveMode(mode string, known []string) (string, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" || strings.EqualFold(mode, "default") {
		return "", nil
	}
	for _, m := range known {
		if strings.EqualFold(m, mode) {
			return m, nil
		}
	}
	return "", &ValidationError{
		Field:   "mode",
		Value:   mode,
		Reason:  "unknown LLM mode",
		Example: "one of: " + strings.Join(known, ", "),
	}
}

// recordAnswer writes the answer to the journal when it is enabled. A
// journal failure is reported but never fails the command.
func recordAnswer(env *Env, sess *session.Session, sub session.Submission, resp *model.ChatResponse, elapsed int) string {
	if !env.Config.Journal.Enabled {
		return ""
	}
	j, err := openJournal(env)
	if err != nil {
		fmt.Fprintf(env.Err, "%s %v\n", WarningStyle.Render("Journal unavailable:"), err)
		return ""
	}
	defer j.Close()

	entry := storage.EntryFromResponse(sess.ID, sub, resp, elapsed)
	if err := j.Save(context.Background(), entry); err != nil {
		log.Printf("journal save failed: %v", err)
		fmt.Fprintf(env.Err, "%s %v\n", WarningStyle.Render("Journal write failed:"), err)
		return ""
	}
	return entry.ID
}
