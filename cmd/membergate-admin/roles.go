package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/drivenlabs/membergate/internal/domain/access"
	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
)

type roleOptions struct {
	Principal string
	Role      string
}

func parseRoleFlags(name string, needRole bool, args []string) (roleOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts roleOptions
	fs.StringVar(&opts.Principal, "principal", "", "Principal ID (required)")
	if needRole {
		fs.StringVar(&opts.Role, "role", "", "Role name (required)")
	}
	if err := fs.Parse(args); err != nil {
		return roleOptions{}, err
	}

	opts.Principal = strings.TrimSpace(opts.Principal)
	opts.Role = strings.TrimSpace(opts.Role)
	if opts.Principal == "" {
		return roleOptions{}, errors.New("--principal is required")
	}
	if needRole && opts.Role == "" {
		return roleOptions{}, errors.New("--role is required")
	}
	return opts, nil
}

func runRoleShow(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("role-show", false, args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	info := sess.Services.Roles.Resolve(cmdCtx.Ctx, opts.Principal, true)
	return printRoleInfo(cmdCtx.Out, opts.Principal, info)
}

func printRoleInfo(w io.Writer, principalID string, info domainauth.UserRoleInfo) error {
	profile := "-"
	if info.ProfileRole != nil {
		profile = *info.ProfileRole
	}
	roles := "-"
	if len(info.Roles) > 0 {
		roles = strings.Join(info.Roles, ", ")
	}
	primary := "-"
	if r, ok := domainauth.PrimaryRole(info); ok {
		primary = string(r)
	}
	return writef(w, "Principal:    %s\nRoles:        %s\nProfile role: %s\nPrimary role: %s\nAdmin:        %t\n",
		principalID, roles, profile, primary, info.IsAdmin)
}

func runRoleAssign(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("role-assign", true, args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Services.Roles.AssignRole(cmdCtx.Ctx, opts.Principal, opts.Role, adminActor); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return writef(cmdCtx.Out, "Assigned %s to %s\n", opts.Role, opts.Principal)
}

func runRoleRevoke(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("role-revoke", true, args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	removed, err := sess.Services.Roles.RevokeRole(cmdCtx.Ctx, opts.Principal, opts.Role)
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	if !removed {
		return writef(cmdCtx.Out, "%s did not hold %s\n", opts.Principal, opts.Role)
	}
	return writef(cmdCtx.Out, "Revoked %s from %s\n", opts.Role, opts.Principal)
}

type profileOptions struct {
	Principal string
	Role      *string
	Tier      access.Tier
}

func parseProfileFlags(args []string) (profileOptions, error) {
	fs := flag.NewFlagSet("profile-set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var principal, role, tier string
	fs.StringVar(&principal, "principal", "", "Principal ID (required)")
	fs.StringVar(&role, "role", "", "Profile role; omit to clear it")
	fs.StringVar(&tier, "tier", string(access.TierFree), "Subscription tier: "+tierList())
	if err := fs.Parse(args); err != nil {
		return profileOptions{}, err
	}

	opts := profileOptions{Principal: strings.TrimSpace(principal)}
	if opts.Principal == "" {
		return profileOptions{}, errors.New("--principal is required")
	}
	if r := strings.TrimSpace(role); r != "" {
		opts.Role = &r
	}
	t, err := access.ParseTier(tier)
	if err != nil {
		return profileOptions{}, err
	}
	opts.Tier = t
	return opts, nil
}

func tierList() string {
	tiers := access.Tiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = string(t)
	}
	return strings.Join(names, "|")
}

func runProfileSet(cmdCtx *commandContext, args []string) error {
	opts, err := parseProfileFlags(args)
	if err != nil {
		return err
	}
	sess, err := openServices(cmdCtx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Services.Roles.SetProfile(cmdCtx.Ctx, opts.Principal, opts.Role, opts.Tier); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	role := "-"
	if opts.Role != nil {
		role = *opts.Role
	}
	return writef(cmdCtx.Out, "Profile of %s: role %s, tier %s\n", opts.Principal, role, opts.Tier)
}
