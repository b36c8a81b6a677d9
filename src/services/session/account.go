package session

import (
	"context"
	"log/slog"
	"strings"

	"ragchat/src/models"
	"ragchat/src/services/api"
	"ragchat/src/services/storage"
)

// Account handles sign-in state and per-user preferences.
type Account struct {
	client api.Account
	prefs  *storage.Preferences
	logger *slog.Logger
}

func NewAccount(client api.Account, prefs *storage.Preferences, logger *slog.Logger) *Account {
	if logger == nil {
		logger = slog.Default()
	}
	return &Account{client: client, prefs: prefs, logger: logger}
}

// CurrentUser returns the persisted user, or nil when signed out.
func (a *Account) CurrentUser() *models.User {
	u, err := a.prefs.User()
	if err != nil {
		a.logger.Warn("failed to read stored user", "error", err)
		return nil
	}
	return u
}

// Login signs in and stores the returned user.
func (a *Account) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &models.ValidationError{Message: "email and password are required"}
	}
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.signedIn("login", res)
}

// Register creates an account and stores the returned user.
func (a *Account) Register(ctx context.Context, name, email, password, confirm string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, &models.ValidationError{Message: "name, email and password are required"}
	}
	if password != confirm {
		return nil, &models.ValidationError{Message: "passwords do not match"}
	}
	res, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return a.signedIn("register", res)
}

func (a *Account) signedIn(op string, res *api.AuthResult) (*models.User, error) {
	if !res.OK {
		return nil, &models.APIError{Op: op, Message: res.Message}
	}
	if res.User == nil || res.User.ID == "" {
		return nil, &models.APIError{Op: op, Message: "server returned no user"}
	}
	if err := a.prefs.SetUser(res.User); err != nil {
		return nil, err
	}
	a.logger.Info("signed in", "user_id", res.User.ID, "op", op)
	return res.User, nil
}

// Logout tells the server and forgets the local user and chat mirror.
// Local state is cleared even when the server call fails.
func (a *Account) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.logger.Warn("server logout failed", "error", err)
	}
	return a.prefs.SignOut()
}

// Profile fetches the signed-in user's profile.
func (a *Account) Profile(ctx context.Context) (models.Profile, error) {
	u := a.CurrentUser()
	if u == nil {
		return models.Profile{}, &models.ValidationError{Message: msgSignInRequired}
	}
	res, err := a.client.Profile(ctx, u.ID)
	if err != nil {
		return models.Profile{}, err
	}
	if !res.OK {
		return models.Profile{}, &models.APIError{Op: "fetch profile", Message: res.Message}
	}
	p := res.Profile
	if p.Name == "" {
		p.Name = u.Name
	}
	if p.Email == "" {
		p.Email = u.Email
	}
	return p, nil
}

// Models lists the backend's models.
func (a *Account) Models(ctx context.Context) ([]models.ModelInfo, error) {
	return a.client.ListModels(ctx)
}

// SelectedModel returns the persisted model choice, or "".
func (a *Account) SelectedModel() string { return a.prefs.SelectedModel() }

// SelectModel persists the model choice. An empty name clears it.
func (a *Account) SelectModel(name string) error { return a.prefs.SetSelectedModel(name) }

// Theme returns the persisted theme.
func (a *Account) Theme() string { return a.prefs.Theme() }

// ToggleTheme flips between dark and light and returns the new theme.
func (a *Account) ToggleTheme() (string, error) {
	next := storage.ThemeLight
	if a.prefs.Theme() == storage.ThemeLight {
		next = storage.ThemeDark
	}
	if err := a.prefs.SetTheme(next); err != nil {
		return a.prefs.Theme(), err
	}
	return next, nil
}
