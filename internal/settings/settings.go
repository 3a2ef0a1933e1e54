// Package settings is the durable key-value preference store. Reads
// never fail the caller: a storage failure is logged and the default
// is returned. Writes are durable before they report success.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkravets/shopcore/internal/logging"
	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/store"
)

type ThemeMode string

const (
	ThemeSystem ThemeMode = "system"
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
)

const (
	DefaultLanguage      = "ru"
	DefaultNotifications = true
)

const (
	keyThemeMode     = "theme_mode"
	keyLanguage      = "language"
	keyNotifications = "notifications_enabled"
	keySessionToken  = "session.token"
	keySessionUserID = "session.user_id"
)

type Store struct {
	store *store.Store
}

func New(s *store.Store) *Store {
	return &Store{store: s}
}

func (s *Store) get(ctx context.Context, key, def string) string {
	var row models.Setting
	err := s.store.DB.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.FromContext(ctx).Warn("settings read failed, using default", "key", key, "error", err)
		}
		return def
	}
	return row.Value
}

func (s *Store) set(ctx context.Context, key, value string) error {
	row := models.Setting{Key: key, Value: value}
	if err := s.store.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error; err != nil {
		return fmt.Errorf("settings write %s: %w", key, err)
	}
	s.store.Touch("settings")
	return nil
}

func (s *Store) delete(ctx context.Context, keys ...string) error {
	if err := s.store.DB.WithContext(ctx).
		Where("key IN ?", keys).
		Delete(&models.Setting{}).Error; err != nil {
		return err
	}
	s.store.Touch("settings")
	return nil
}

func (s *Store) ThemeMode(ctx context.Context) ThemeMode {
	switch v := ThemeMode(s.get(ctx, keyThemeMode, string(ThemeSystem))); v {
	case ThemeSystem, ThemeLight, ThemeDark:
		return v
	default:
		return ThemeSystem
	}
}

func (s *Store) SetThemeMode(ctx context.Context, mode ThemeMode) error {
	switch mode {
	case ThemeSystem, ThemeLight, ThemeDark:
		return s.set(ctx, keyThemeMode, string(mode))
	default:
		return fmt.Errorf("unknown theme mode %q", mode)
	}
}

func (s *Store) WatchThemeMode(ctx context.Context) <-chan ThemeMode {
	return store.Watch(ctx, s.store, func(ctx context.Context) (ThemeMode, error) {
		return s.ThemeMode(ctx), nil
	}, "settings")
}

func (s *Store) Language(ctx context.Context) string {
	return s.get(ctx, keyLanguage, DefaultLanguage)
}

func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	if lang == "" {
		return fmt.Errorf("language must not be empty")
	}
	return s.set(ctx, keyLanguage, lang)
}

func (s *Store) WatchLanguage(ctx context.Context) <-chan string {
	return store.Watch(ctx, s.store, func(ctx context.Context) (string, error) {
		return s.Language(ctx), nil
	}, "settings")
}

func (s *Store) NotificationsEnabled(ctx context.Context) bool {
	v, err := strconv.ParseBool(s.get(ctx, keyNotifications, strconv.FormatBool(DefaultNotifications)))
	if err != nil {
		return DefaultNotifications
	}
	return v
}

func (s *Store) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, keyNotifications, strconv.FormatBool(enabled))
}

func (s *Store) WatchNotificationsEnabled(ctx context.Context) <-chan bool {
	return store.Watch(ctx, s.store, func(ctx context.Context) (bool, error) {
		return s.NotificationsEnabled(ctx), nil
	}, "settings")
}

// Session persistence. The auth layer owns the token format; here it
// is an opaque string.

func (s *Store) SessionToken(ctx context.Context) string {
	return s.get(ctx, keySessionToken, "")
}

func (s *Store) SessionUserID(ctx context.Context) string {
	return s.get(ctx, keySessionUserID, "")
}

func (s *Store) SetSession(ctx context.Context, userID, token string) error {
	if err := s.set(ctx, keySessionUserID, userID); err != nil {
		return err
	}
	return s.set(ctx, keySessionToken, token)
}

func (s *Store) ClearSession(ctx context.Context) error {
	return s.delete(ctx, keySessionToken, keySessionUserID)
}
