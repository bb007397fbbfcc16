// Package main provides a CLI for exercising the auth session client against
// an identity server. It drives the same store, gateway, and session service
// an embedding application would use.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Pixelynx/pfn-client-go/internal/credstore"
	"github.com/Pixelynx/pfn-client-go/internal/gateway"
	"github.com/Pixelynx/pfn-client-go/internal/identity"
	"github.com/Pixelynx/pfn-client-go/internal/platform/config"
	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	"github.com/Pixelynx/pfn-client-go/internal/session/service"
)

const callTimeout = 30 * time.Second

// app bundles the wired client stack shared by every subcommand.
type app struct {
	cfg       config.Client
	store     *credstore.FileStore
	client    *identity.Client
	refresher *gateway.Refresher
	session   *service.Service
	logger    *slog.Logger
}

func newApp() *app {
	cfg := config.ClientFromEnv()

	// CLI output goes to stdout; diagnostics stay on stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	store := credstore.NewFileStore(cfg.CredentialsFile)
	client := identity.New(cfg.APIURL,
		identity.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		identity.WithLogger(logger),
	)
	refresher := gateway.NewRefresher(store, client,
		gateway.WithRefresherLogger(logger),
	)
	session := service.New(store, client, refresher,
		service.WithLogger(logger),
	)

	return &app{
		cfg:       cfg,
		store:     store,
		client:    client,
		refresher: refresher,
		session:   session,
		logger:    logger,
	}
}

func main() {
	registerCmd := flag.NewFlagSet("register", flag.ExitOnError)
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	whoamiCmd := flag.NewFlagSet("whoami", flag.ExitOnError)
	logoutCmd := flag.NewFlagSet("logout", flag.ExitOnError)
	callCmd := flag.NewFlagSet("call", flag.ExitOnError)

	// Register flags
	registerEmail := registerCmd.String("email", "", "Email address")
	registerPassword := registerCmd.String("password", "", "Password (min 8 characters)")
	registerFirstName := registerCmd.String("first-name", "", "First name")
	registerLastName := registerCmd.String("last-name", "", "Last name")

	// Login flags
	loginEmail := loginCmd.String("email", "", "Email address")
	loginPassword := loginCmd.String("password", "", "Password")

	// Whoami flags
	whoamiJSON := whoamiCmd.Bool("json", false, "Output as JSON")

	// Call flags
	callMethod := callCmd.String("method", "GET", "HTTP method")
	callData := callCmd.String("data", "", "Request body (JSON)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	a := newApp()

	var err error
	switch os.Args[1] {
	case "register":
		registerCmd.Parse(os.Args[2:])
		err = a.register(ctx, *registerEmail, *registerPassword, *registerFirstName, *registerLastName)
	case "login":
		loginCmd.Parse(os.Args[2:])
		err = a.login(ctx, *loginEmail, *loginPassword)
	case "whoami":
		whoamiCmd.Parse(os.Args[2:])
		err = a.whoami(ctx, *whoamiJSON)
	case "logout":
		logoutCmd.Parse(os.Args[2:])
		err = a.logout(ctx)
	case "call":
		callCmd.Parse(os.Args[2:])
		if callCmd.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "call requires exactly one path argument")
			os.Exit(1)
		}
		err = a.call(ctx, *callMethod, callCmd.Arg(0), *callData)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) register(ctx context.Context, email, password, firstName, lastName string) error {
	user, err := a.session.Register(ctx, email, password, firstName, lastName)
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (%s). You can now sign in with `pfnauth login`.\n", user.FullName(), user.Email)
	return nil
}

func (a *app) login(ctx context.Context, email, password string) error {
	user, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s).\n", user.FullName(), user.Email)
	fmt.Printf("Credentials saved to %s\n", a.cfg.CredentialsFile)
	return nil
}

func (a *app) whoami(ctx context.Context, jsonOutput bool) error {
	status := a.session.Restore(ctx)
	if status != models.StatusAuthenticated {
		fmt.Println("Not signed in.")
		return nil
	}

	user := a.session.CurrentUser()
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(user)
	}
	fmt.Printf("%s (%s)\n", user.FullName(), user.Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	// Local credentials are cleared even when the server call fails.
	fmt.Println("Signed out.")
	return err
}

// call sends an authenticated request through the gateway transport, so
// token attachment and expiry recovery behave exactly as they would inside
// an application.
func (a *app) call(ctx context.Context, method, path, data string) error {
	transport := gateway.New(a.store, a.refresher,
		gateway.WithLogger(a.logger),
		gateway.WithNavigator(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Please sign in again.")
		}),
	)
	httpc := gateway.NewHTTPClient(transport)

	var body io.Reader
	if data != "" {
		body = strings.NewReader(data)
	}
	url := strings.TrimRight(a.cfg.APIURL, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, body)
	if err != nil {
		return err
	}
	if data != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fmt.Fprintf(os.Stderr, "%s\n", resp.Status)
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}

func printUsage() {
	fmt.Println(`pfnauth - Auth session client CLI

Usage:
  pfnauth <command> [flags]

Commands:
  register  Create a new account
  login     Sign in and persist credentials
  whoami    Show the signed-in user (restores the session first)
  logout    Sign out and clear stored credentials
  call      Send an authenticated request through the gateway

Examples:
  # Create an account and sign in
  pfnauth register -email ada@example.com -password hunter2hunter2 -first-name Ada -last-name Lovelace
  pfnauth login -email ada@example.com -password hunter2hunter2

  # Inspect the current session
  pfnauth whoami
  pfnauth whoami -json

  # Call an API endpoint with automatic token refresh
  pfnauth call /api/v0/orders
  pfnauth call -method POST -data '{"sku":"A-100"}' /api/v0/orders

  # Sign out everywhere
  pfnauth logout

Environment:
  PFN_API_URL           Identity/API base URL (default http://localhost:8080)
  PFN_HTTP_TIMEOUT      HTTP timeout, e.g. 30s (default 15s)
  PFN_CREDENTIALS_FILE  Credential file path (default ~/.config/pfn/credentials.json)
  PFN_LOG_LEVEL         debug, info, warn, error

Use "pfnauth <command> -h" for more information about a command.`)
}
