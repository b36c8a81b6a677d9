package storage

import (
	"encoding/json"

	"ragchat/src/models"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Preferences gives typed access to the well-known keys.
type Preferences struct {
	kv KeyValueStore
}

func NewPreferences(kv KeyValueStore) *Preferences {
	return &Preferences{kv: kv}
}

// User returns the stored user, or nil when nobody is signed in.
// A corrupt record is removed and treated as signed out.
func (p *Preferences) User() (*models.User, error) {
	raw, ok, err := p.kv.Get(KeyUser)
	if err != nil || !ok {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		_ = p.kv.Remove(KeyUser)
		return nil, nil
	}
	return &u, nil
}

func (p *Preferences) SetUser(u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return &models.StorageError{Message: "failed to marshal user", Err: err}
	}
	return p.kv.Set(KeyUser, string(data))
}

// SignOut forgets the user and the chat mirror.
func (p *Preferences) SignOut() error {
	if err := p.kv.Remove(KeyUser); err != nil {
		return err
	}
	return p.kv.Remove(KeyChatHistories)
}

// Theme defaults to dark.
func (p *Preferences) Theme() string {
	v, ok, err := p.kv.Get(KeyTheme)
	if err != nil || !ok || (v != ThemeLight && v != ThemeDark) {
		return ThemeDark
	}
	return v
}

func (p *Preferences) SetTheme(theme string) error {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	return p.kv.Set(KeyTheme, theme)
}

// SelectedModel returns "" when none was picked.
func (p *Preferences) SelectedModel() string {
	v, _, _ := p.kv.Get(KeySelectedModel)
	return v
}

func (p *Preferences) SetSelectedModel(name string) error {
	if name == "" {
		return p.kv.Remove(KeySelectedModel)
	}
	return p.kv.Set(KeySelectedModel, name)
}
