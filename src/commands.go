// commands.go - The ragchat command tree.
// Running ragchat without a subcommand opens the chat screen.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"ragchat/src/app"
	"ragchat/src/components/modals/dialogs"
	"ragchat/src/components/theme"
	"ragchat/src/config"
	"ragchat/src/models"
	"ragchat/src/services/api"
	"ragchat/src/services/mockbackend"
	"ragchat/src/services/session"
	"ragchat/src/services/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Set by PersistentPreRunE
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer

	errCancelled   = errors.New("cancelled")
	errNotSignedIn = errors.New("not signed in: run `ragchat login` or `ragchat register`")
)

// rootCmd opens the chat screen.
var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Terminal chat client for a retrieval-augmented QA backend",
	Long: `ragchat talks to a RAG chat backend from the terminal.

Chats are listed in the sidebar, the most recent one opens on start and
answers are rendered as markdown. Run without arguments to start chatting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		logger, logCloser, err = setupLogging(cfg.Log, verbose, cmd == mockBackendCmd)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded", "variant", cfg.API.Variant, "base_url", cfg.API.BaseURL, "storage", cfg.Storage.Driver)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: runChat,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the chat screen (same as running ragchat alone)",
	RunE:  runChat,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in; prompts for anything not given as a flag",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget local chat data",
	RunE:  runLogout,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List your chats, most recent first",
	RunE:  runSessions,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the backend's models or pick one for new answers",
	Long: `Lists the models the backend offers. The current choice is marked with *.

Examples:
  ragchat models
  ragchat models --select qwen2.5:14b
  ragchat models --select default`,
	RunE: runModels,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in account",
	RunE:  runProfile,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var mockBackendCmd = &cobra.Command{
	Use:   "mock-backend",
	Short: "Serve a local backend with canned answers for development",
	RunE:  runMockBackend,
}

var (
	loginEmail, loginPassword string
	registerName              string
	selectModel               string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (default: ./config.yaml or ~/.ragchat/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("base-url", "", "Backend base URL")
	pf.String("variant", "", "Backend variant: chat or rag")
	pf.String("storage", "", "Local storage driver: file or sqlite")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("namespace", "", "RAG namespace id (rag variant)")
	pf.Int("top-k", 0, "Passages retrieved per question (rag variant)")
	pf.Int("token-limit", 0, "Context token budget (rag variant)")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	modelsCmd.Flags().StringVar(&selectModel, "select", "", "Model to use for new answers (\"default\" for the server's)")
	mockBackendCmd.Flags().String("mock-addr", "", "Listen address")
	mockBackendCmd.Flags().String("mock-db", "", "SQLite database path (:memory: for a throwaway one)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mockBackendCmd)
}

// =====================================================================================
// 🔌 Wiring
// =====================================================================================

// runtime holds what every client command needs.
type runtime struct {
	kv      storage.KeyValueStore
	client  api.Client
	account *session.Account
	store   *session.Store
}

func openRuntime() (*runtime, error) {
	if err := os.MkdirAll(cfg.Storage.Path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	kv, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	client, err := api.New(cfg.API.Variant, cfg.API.BaseURL,
		api.RAGOptions{NamespaceID: cfg.RAG.NamespaceID, TopK: cfg.RAG.TopK, TokenBudget: cfg.RAG.TokenBudget},
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger.With("component", "api")),
	)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return &runtime{
		kv:      kv,
		client:  client,
		account: session.NewAccount(client, storage.NewPreferences(kv), logger.With("component", "account")),
		store:   session.NewStore(kv, logger.With("component", "store")),
	}, nil
}

func (r *runtime) Close() {
	if err := r.kv.Close(); err != nil {
		logger.Warn("failed to close storage", "error", err)
	}
}

func (r *runtime) requireUser() (*models.User, error) {
	u := r.account.CurrentUser()
	if u == nil {
		return nil, errNotSignedIn
	}
	return u, nil
}

// runForm collects values with a small standalone form.
func runForm(title string, fields []dialogs.FormField, st *theme.Styles) ([]string, error) {
	form := dialogs.NewFormModal(title, fields, st)
	if _, err := tea.NewProgram(form).Run(); err != nil {
		return nil, fmt.Errorf("form failed: %w", err)
	}
	if !form.Submitted {
		return nil, errCancelled
	}
	return form.Values(), nil
}

// =====================================================================================
// 💬 Chat
// =====================================================================================

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if rt.account.CurrentUser() == nil {
		if _, err := interactiveLogin(ctx, rt); err != nil {
			if errors.Is(err, errCancelled) {
				return errNotSignedIn
			}
			return err
		}
	}

	bridge := app.NewBridge()
	ctrl := session.NewController(rt.client, rt.store, bridge, session.Options{
		CollapseWidth: cfg.UI.CollapseWidth,
		Logger:        logger.With("component", "session"),
	})
	screen := app.New(ctx, app.Options{
		Controller: ctrl,
		Account:    rt.account,
		Bridge:     bridge,
		Logger:     logger.With("component", "app"),
		NoticeTTL:  cfg.UI.NoticeTTL,
	})

	program := tea.NewProgram(screen, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	bridge.SetSender(program.Send)
	stop := setupGracefulShutdown(program, cancel, logger)
	defer stop()

	logger.Info("Starting chat", "variant", cfg.API.Variant, "base_url", cfg.API.BaseURL)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("Application failed", "error", err)
		return err
	}
	if screen.LoggedOut() {
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	}
	logger.Info("Chat closed")
	return nil
}

// =====================================================================================
// 👤 Account
// =====================================================================================

func interactiveLogin(ctx context.Context, rt *runtime) (*models.User, error) {
	email, password := loginEmail, loginPassword
	if email == "" || password == "" {
		vals, err := runForm("Sign in to RAG Chat", []dialogs.FormField{
			{Label: "Email", Value: email},
			{Label: "Password", Secret: true, Value: password},
		}, theme.New(rt.account.Theme()))
		if err != nil {
			return nil, err
		}
		email, password = vals[0], vals[1]
	}
	return rt.account.Login(ctx, email, password)
}

func runLogin(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	u, err := interactiveLogin(cmd.Context(), rt)
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", u.DisplayName())
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	name, email, password, confirm := registerName, loginEmail, loginPassword, loginPassword
	if name == "" || email == "" || password == "" {
		vals, err := runForm("Create an account", []dialogs.FormField{
			{Label: "Name", Value: name},
			{Label: "Email", Value: email},
			{Label: "Password", Secret: true},
			{Label: "Confirm password", Secret: true},
		}, theme.New(rt.account.Theme()))
		if err != nil {
			return userError(err)
		}
		name, email, password, confirm = vals[0], vals[1], vals[2], vals[3]
	}

	u, err := rt.account.Register(cmd.Context(), name, email, password, confirm)
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s. You are signed in.\n", u.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.account.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.requireUser(); err != nil {
		return err
	}
	p, err := rt.account.Profile(cmd.Context())
	if err != nil {
		return userError(err)
	}
	joined := p.JoinedAt
	if t := models.ParseServerTime(joined); !t.IsZero() {
		joined = t.Local().Format("2 Jan 2006")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Name:   %s\nEmail:  %s\nJoined: %s\n", p.Name, p.Email, joined)
	return nil
}

// =====================================================================================
// 📋 Listings
// =====================================================================================

func runSessions(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	u, err := rt.requireUser()
	if err != nil {
		return err
	}
	res, err := rt.client.ListChats(cmd.Context(), u.ID)
	if err != nil {
		return userError(err)
	}
	if !res.OK {
		return userError(&models.APIError{Op: "list chats", Message: res.Message})
	}
	if len(res.Chats) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No chats yet.")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "TITLE", "UPDATED")
	for _, ch := range res.Chats {
		updated := "-"
		if !ch.UpdatedAt.IsZero() {
			updated = ch.UpdatedAt.Local().Format(time.DateTime)
		}
		t.Row(string(ch.ID), ch.Title, updated)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func runModels(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	list, err := rt.account.Models(cmd.Context())
	if err != nil {
		return userError(err)
	}

	if cmd.Flags().Changed("select") {
		name := selectModel
		if name == "default" {
			name = ""
		}
		if name != "" && !hasModel(list, name) {
			return fmt.Errorf("unknown model %q (available: %v)", name, models.ModelNames(list))
		}
		if err := rt.account.SelectModel(name); err != nil {
			return err
		}
		if name == "" {
			name = "server default"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "New answers will use %s.\n", name)
		return nil
	}

	current := rt.account.SelectedModel()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("", "MODEL", "DESCRIPTION")
	mark := func(on bool) string {
		if on {
			return "*"
		}
		return ""
	}
	t.Row(mark(current == ""), "default", "server default")
	for _, m := range list {
		t.Row(mark(m.Name == current), m.Name, m.Description)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func hasModel(list []models.ModelInfo, name string) bool {
	for _, m := range list {
		if m.Name == name {
			return true
		}
	}
	return false
}

// userError turns typed failures into the same text the chat screen shows.
func userError(err error) error {
	if errors.Is(err, errCancelled) {
		return err
	}
	return errors.New(session.ErrorText(err))
}

// =====================================================================================
// 🧪 Mock backend
// =====================================================================================

func runMockBackend(cmd *cobra.Command, args []string) error {
	srv, err := mockbackend.New(mockbackend.Config{
		Addr:     cfg.Mock.Addr,
		Database: cfg.Mock.Database,
		Logger:   logger.With("component", "mockbackend"),
	})
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()
	fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on http://%s (ctrl+c to stop)\n", cfg.Mock.Addr)

	select {
	case err := <-errc:
		_ = srv.Close()
		return err
	case <-cmd.Context().Done():
	}

	logger.Info("Received shutdown signal, stopping mock backend...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("mock backend shutdown: %w", err)
	}
	return <-errc
}
