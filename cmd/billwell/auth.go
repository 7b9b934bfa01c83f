package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/billwell/internal/api"
	"github.com/Veraticus/billwell/internal/cli"
	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/config"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to BillWell and connect Google Sheets",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE:  runAuthLogin,
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when empty)")
	return cmd
}

func authRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE:  runAuthRegister,
	}
	cmd.Flags().String("name", "", "your name")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when empty)")
	return cmd
}

// credentials reads the named flags, prompting for the empty ones.
func credentials(ctx context.Context, cmd *cobra.Command, names ...string) (map[string]string, error) {
	p := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	out := make(map[string]string, len(names))
	for _, name := range names {
		v, _ := cmd.Flags().GetString(name)
		v = strings.TrimSpace(v)
		var err error
		switch {
		case v != "":
		case name == "password":
			v, err = p.AskSecret(ctx, "Password")
		default:
			v, err = p.Ask(ctx, strings.ToUpper(name[:1])+name[1:], "")
		}
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
		out[name] = v
	}
	return out, nil
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	creds, err := credentials(ctx, cmd, "email", "password")
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.client.Login(ctx, creds["email"], creds["password"])
	if err != nil {
		if common.IsUnauthorized(err) {
			return common.NewUserError("Invalid email or password.", err)
		}
		return err
	}
	return saveSession(ctx, cmd, a, session)
}

func runAuthRegister(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	creds, err := credentials(ctx, cmd, "name", "email", "password")
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.client.Register(ctx, creds["name"], creds["email"], creds["password"])
	if err != nil {
		return err
	}
	return saveSession(ctx, cmd, a, session)
}

func saveSession(ctx context.Context, cmd *cobra.Command, a *app, session *model.Session) error {
	if err := a.store.SaveSession(ctx, *session); err != nil {
		return err
	}
	msg := "Signed in"
	if session.Email != "" {
		msg += " as " + session.Email
	}
	if !session.ExpiresAt.IsZero() {
		msg += fmt.Sprintf(" (session valid until %s)", session.ExpiresAt.Local().Format(time.DateTime))
	}
	cmd.Println(cli.FormatSuccess(msg))
	return nil
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ClearSession(ctx); err != nil {
				return err
			}
			cmd.Println(cli.FormatSuccess("Signed out."))
			return nil
		},
	}
}

func authStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		RunE:  runAuthStatus,
	}
	cmd.Flags().Bool("check", false, "ask the API whether the session is still accepted")
	return cmd
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "API:      %s\n", a.client.BaseURL())
	fmt.Fprintf(out, "Statuses: %s\n", a.apiCfg.StatusMode)

	if a.apiCfg.Token != "" {
		fmt.Fprintln(out, "Session:  token from configuration")
		if exp, err := api.TokenExpiry(a.apiCfg.Token); err == nil && !exp.IsZero() {
			fmt.Fprintf(out, "Expires:  %s\n", exp.Local().Format(time.DateTime))
		}
	} else {
		session, err := a.store.GetSession(ctx)
		switch {
		case errors.Is(err, common.ErrNoSession):
			fmt.Fprintln(out, cli.FormatWarning("Not signed in. Run `billwell auth login`."))
			return nil
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "Session:  %s\n", orDash(session.Email))
		if !session.ExpiresAt.IsZero() {
			fmt.Fprintf(out, "Expires:  %s\n", session.ExpiresAt.Local().Format(time.DateTime))
		}
	}

	if check, _ := cmd.Flags().GetBool("check"); check {
		user, err := a.client.Me(ctx)
		if err != nil {
			return a.unauthorized(ctx, err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Accepted by the API as %s", orDash(user.Email))))
	}
	return nil
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets export",
		Long: `Authorize billwell to write the overview to Google Sheets.

Needs an OAuth client (sheets.client_id and sheets.client_secret, or the
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET variables). The token is
saved next to the config file and used by 'billwell report --export-sheets'.`,
		RunE: runAuthSheets,
	}
	cmd.Flags().String("callback", sheets.DefaultCallbackAddr, "local address for the OAuth redirect")
	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	clientID := firstNonEmpty(viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	clientSecret := firstNonEmpty(viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	if clientID == "" || clientSecret == "" {
		return common.NewUserError("Set sheets.client_id and sheets.client_secret first.", common.ErrMissingConfig)
	}
	callback, _ := cmd.Flags().GetString("callback")

	tokenFile := config.SheetsTokenFile()
	token, err := sheets.AuthenticateInteractive(cmd.Context(), sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackAddr: callback,
	}, func(url string) {
		cmd.Println(cli.FormatInfo("Open this URL in your browser to authorize billwell:"))
		cmd.Println(url)
	})
	if err != nil {
		return err
	}
	if token.RefreshToken == "" {
		cmd.Println(cli.FormatWarning("Google did not return a refresh token; revoke billwell's access and try again."))
		return nil
	}
	cmd.Println(cli.FormatSuccess("Google Sheets authorized. Token saved to " + tokenFile))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
