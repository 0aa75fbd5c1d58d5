package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/drivenlabs/membergate/internal/domain/model"
)

const adminActor = "membergate-admin"

type inviteCreateOptions struct {
	Email string
	Notes string
	Send  bool
}

func parseInviteCreateFlags(args []string) (inviteCreateOptions, error) {
	fs := flag.NewFlagSet("invite-create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts inviteCreateOptions
	fs.StringVar(&opts.Email, "email", "", "Invitee email address (required)")
	fs.StringVar(&opts.Notes, "notes", "", "Free-form note stored with the invite")
	fs.BoolVar(&opts.Send, "send", false, "Email the invite immediately")

	if err := fs.Parse(args); err != nil {
		return inviteCreateOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return inviteCreateOptions{}, errors.New("--email is required")
	}
	return opts, nil
}

func runInviteCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parseInviteCreateFlags(args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	actor := adminActor
	req := model.CreateInviteRequest{Email: opts.Email, CreatedBy: &actor}
	if opts.Notes != "" {
		req.Notes = &opts.Notes
	}
	inv, err := sess.Services.Invites.CreateInvite(ctx, req)
	if err != nil {
		return fmt.Errorf("create invite: %w", err)
	}

	if opts.Send {
		sent, sendErr := sess.Services.Invites.SendInvite(ctx, inv.ID)
		if sendErr != nil {
			return fmt.Errorf("send invite %s: %w", inv.ID, sendErr)
		}
		if !sent {
			return fmt.Errorf("invite %s was created but could not be sent", inv.ID)
		}
		inv.Status = model.InviteStatusSent
	}
	return printInvites(cmdCtx.Out, []*model.BetaInvite{inv})
}

type inviteBulkOptions struct {
	File string
}

func parseInviteBulkFlags(args []string) (inviteBulkOptions, error) {
	fs := flag.NewFlagSet("invite-bulk", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts inviteBulkOptions
	fs.StringVar(&opts.File, "file", "-", "File with one email per line, or - for stdin")

	if err := fs.Parse(args); err != nil {
		return inviteBulkOptions{}, err
	}
	if strings.TrimSpace(opts.File) == "" {
		return inviteBulkOptions{}, errors.New("--file must not be empty")
	}
	return opts, nil
}

// readEmails returns the non-blank lines of r. Lines starting with # are skipped.
func readEmails(r io.Reader) ([]string, error) {
	var emails []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		emails = append(emails, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read emails: %w", err)
	}
	return emails, nil
}

func runInviteBulk(cmdCtx *commandContext, args []string) error {
	opts, err := parseInviteBulkFlags(args)
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if opts.File != "-" {
		f, openErr := os.Open(opts.File)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", opts.File, openErr)
		}
		defer f.Close()
		src = f
	}
	emails, err := readEmails(src)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return errors.New("no email addresses supplied")
	}

	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	actor := adminActor
	sent := sess.Services.Invites.BulkInvite(cmdCtx.Ctx, emails, &actor)
	return writef(cmdCtx.Out, "Sent %d of %d invites\n", sent, len(emails))
}

type inviteListOptions struct {
	Status string
	Limit  int
	Offset int
}

func parseInviteListFlags(args []string) (model.ListInvitesOptions, error) {
	fs := flag.NewFlagSet("invite-list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var raw inviteListOptions
	fs.StringVar(&raw.Status, "status", "", "Filter by status: pending, sent, claimed or expired")
	fs.IntVar(&raw.Limit, "limit", 50, "Maximum rows to print")
	fs.IntVar(&raw.Offset, "offset", 0, "Rows to skip")

	if err := fs.Parse(args); err != nil {
		return model.ListInvitesOptions{}, err
	}

	opts := model.ListInvitesOptions{Limit: raw.Limit, Offset: raw.Offset}
	if raw.Status != "" {
		status := model.InviteStatus(strings.ToLower(strings.TrimSpace(raw.Status)))
		opts.Status = &status
	}
	if err := opts.Validate(); err != nil {
		return model.ListInvitesOptions{}, err
	}
	return opts, nil
}

func runInviteList(cmdCtx *commandContext, args []string) error {
	opts, err := parseInviteListFlags(args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	invites, err := sess.Services.Invites.ListInvites(cmdCtx.Ctx, opts)
	if err != nil {
		return fmt.Errorf("list invites: %w", err)
	}
	return printInvites(cmdCtx.Out, invites)
}

func printInvites(w io.Writer, invites []*model.BetaInvite) error {
	if len(invites) == 0 {
		return writeln(w, "No invites found.")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tCode\tEmail\tStatus\tExpires\tClaimed By"); err != nil {
		return fmt.Errorf("write invite header: %w", err)
	}
	for _, inv := range invites {
		claimedBy := "-"
		if inv.ClaimedBy != nil {
			claimedBy = *inv.ClaimedBy
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.Code, inv.Email, inv.Status, inv.ExpiresAt.UTC().Format(time.RFC3339), claimedBy,
		); err != nil {
			return fmt.Errorf("write invite %s: %w", inv.ID, err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush invites: %w", err)
	}
	return nil
}

func parseIDFlag(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var id string
	fs.StringVar(&id, "id", "", "Invite ID (required)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("--id is required")
	}
	return id, nil
}

func runInviteRevoke(cmdCtx *commandContext, args []string) error {
	id, err := parseIDFlag("invite-revoke", args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Services.Invites.RevokeInvite(cmdCtx.Ctx, id); err != nil {
		return fmt.Errorf("revoke invite %s: %w", id, err)
	}
	return writef(cmdCtx.Out, "Invite %s expired\n", id)
}

func parseBatchFlag(args []string) (int, error) {
	fs := flag.NewFlagSet("expire-invites", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var batch int
	fs.IntVar(&batch, "batch", 500, "Invites expired per statement")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if batch < 1 {
		return 0, errors.New("--batch must be greater than zero")
	}
	return batch, nil
}

func runExpireInvites(cmdCtx *commandContext, args []string) error {
	batch, err := parseBatchFlag(args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	var total int64
	for {
		n, expireErr := sess.Services.Invites.ExpireOverdue(cmdCtx.Ctx, batch)
		if expireErr != nil {
			return fmt.Errorf("expire overdue invites: %w", expireErr)
		}
		total += n
		if n < int64(batch) {
			break
		}
	}
	return writef(cmdCtx.Out, "Expired %d invites\n", total)
}

func runBetaUsers(cmdCtx *commandContext, _ []string) error {
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	users, err := sess.Services.Invites.ListBetaUsers(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("list beta users: %w", err)
	}
	return printBetaUsers(cmdCtx.Out, users)
}

func printBetaUsers(w io.Writer, users []*model.BetaUser) error {
	if len(users) == 0 {
		return writeln(w, "No beta users.")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "User\tInvite\tJoined"); err != nil {
		return fmt.Errorf("write beta user header: %w", err)
	}
	for _, u := range users {
		if err := writef(tw, "%s\t%s\t%s\n", u.UserID, u.InviteID, u.JoinedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write beta user %s: %w", u.UserID, err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush beta users: %w", err)
	}
	return nil
}

// parseBetaModeFlags returns whether to change the override and the value to
// store. A nil value clears the override.
func parseBetaModeFlags(args []string) (change bool, value *bool, err error) {
	fs := flag.NewFlagSet("beta-mode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var set string
	fs.StringVar(&set, "set", "", "on, off or clear; omit to print the current state")
	if err = fs.Parse(args); err != nil {
		return false, nil, err
	}

	switch strings.ToLower(strings.TrimSpace(set)) {
	case "":
		return false, nil, nil
	case "on", "true":
		v := true
		return true, &v, nil
	case "off", "false":
		v := false
		return true, &v, nil
	case "clear":
		return true, nil, nil
	default:
		return false, nil, fmt.Errorf("--set must be on, off or clear, got %q", set)
	}
}

func runBetaMode(cmdCtx *commandContext, args []string) error {
	change, value, err := parseBetaModeFlags(args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	if change {
		if setErr := sess.Services.BetaMode.SetOverride(cmdCtx.Ctx, value); setErr != nil {
			return fmt.Errorf("set beta mode override: %w", setErr)
		}
	}
	state := "off"
	if sess.Services.BetaMode.Enabled(cmdCtx.Ctx) {
		state = "on"
	}
	return writef(cmdCtx.Out, "Beta mode: %s\n", state)
}
