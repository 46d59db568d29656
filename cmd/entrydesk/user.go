// ABOUTME: Account management commands: add, list, and set-role
// ABOUTME: Works directly on the state database so it runs without the server

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/entrydesk/internal/auth"
	"github.com/2389/entrydesk/internal/store"
)

func runUser(ctx context.Context, args []string) error {
	return userCommand(ctx, args, os.Stdout)
}

func userCommand(ctx context.Context, args []string, out io.Writer) error {
	// Default to list
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdUserList(ctx, out)
	case "add", "create":
		return cmdUserAdd(ctx, args, out)
	case "set-role":
		return cmdUserSetRole(ctx, args, out)
	default:
		return fmt.Errorf("unknown user subcommand: %s (use list, add, set-role)", subcmd)
	}
}

// parseRole accepts the role names shown by `user list`.
func parseRole(s string) (store.Role, error) {
	role := store.Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q (use administrator, editor, subscriber)", store.ErrInvalidRole, s)
	}
	return role, nil
}

func cmdUserList(ctx context.Context, out io.Writer) error {
	s, _, err := openStateStore()
	if err != nil {
		return err
	}
	defer s.Close()

	users, err := s.ListAdminUsers(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "  Accounts")
	cyan.Fprintln(out, "  --------")

	if len(users) == 0 {
		fmt.Fprintln(out, "  (no accounts, run `entrydesk bootstrap`)")
		fmt.Fprintln(out)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  USERNAME\tDISPLAY NAME\tROLE\tCAPABILITIES\tCREATED")
	fmt.Fprintln(w, "  --------\t------------\t----\t------------\t-------")
	for _, u := range users {
		caps := make([]string, 0, 3)
		for _, c := range auth.Capabilities(u.Role) {
			caps = append(caps, string(c))
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			u.Username, u.DisplayName, u.Role, strings.Join(caps, ","), u.CreatedAt.Format("Jan 02 2006 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	return nil
}

func cmdUserAdd(ctx context.Context, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("user add", flag.ContinueOnError)
	username := fset.String("username", "", "account username (required)")
	displayName := fset.String("display-name", "", "display name (defaults to the username)")
	password := fset.String("password", "", "password (generated when empty)")
	roleName := fset.String("role", string(store.RoleSubscriber), "administrator, editor, or subscriber")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	*username = strings.TrimSpace(*username)
	if *username == "" {
		return fmt.Errorf("--username flag is required")
	}
	if msg := auth.ValidateUsername(*username); msg != "" {
		return fmt.Errorf("invalid username: %s", msg)
	}
	role, err := parseRole(*roleName)
	if err != nil {
		return err
	}

	s, _, err := openStateStore()
	if err != nil {
		return err
	}
	defer s.Close()

	user, generated, err := newAdminUser(*username, *displayName, *password, role)
	if err != nil {
		return err
	}
	if err := s.CreateAdminUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return fmt.Errorf("account %q already exists", user.Username)
		}
		return fmt.Errorf("creating account: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Fprintf(out, "  ✓ Created %s %s\n", user.Role, user.Username)
	if generated != "" {
		fmt.Fprintf(out, "  Password: %s\n", generated)
		color.New(color.FgYellow).Fprintln(out, "  Store this password now. It is not shown again.")
	}

	return nil
}

func cmdUserSetRole(ctx context.Context, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("user set-role", flag.ContinueOnError)
	username := fset.String("username", "", "account username (required)")
	roleName := fset.String("role", "", "administrator, editor, or subscriber (required)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *username == "" || *roleName == "" {
		return fmt.Errorf("--username and --role flags are required")
	}
	role, err := parseRole(*roleName)
	if err != nil {
		return err
	}

	s, _, err := openStateStore()
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := s.GetAdminUserByUsername(ctx, *username)
	if errors.Is(err, store.ErrAdminUserNotFound) {
		return fmt.Errorf("no account named %q", *username)
	}
	if err != nil {
		return err
	}

	if user.Role == store.RoleAdministrator && role != store.RoleAdministrator {
		if err := ensureAnotherAdministrator(ctx, s, user.ID); err != nil {
			return err
		}
	}

	if err := s.UpdateAdminUserRole(ctx, user.ID, role); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "  ✓ %s is now %s\n", user.Username, role)
	return nil
}

// ensureAnotherAdministrator refuses to demote the last administrator, which
// would leave nobody able to manage the site.
func ensureAnotherAdministrator(ctx context.Context, s store.AdminStore, userID string) error {
	users, err := s.ListAdminUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID != userID && u.Role == store.RoleAdministrator {
			return nil
		}
	}
	return errors.New("cannot demote the last administrator")
}
