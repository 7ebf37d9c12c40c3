package duolingo

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/domain"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

type profileResponse struct {
	Username            string `json:"username"`
	SiteStreak          int    `json:"site_streak"`
	StreakExtendedToday bool   `json:"streak_extended_today"`
	LearningLanguage    string `json:"learning_language"`
	LanguageData        map[string]struct {
		LevelProgress *float64 `json:"level_progress"`
	} `json:"language_data"`
}

func profilePath(username string) string {
	return "/users/" + url.PathEscape(username)
}

// FetchProfile reads the streak and progress of the session's user.
func (c *Client) FetchProfile(ctx context.Context, session *Session) (*domain.ProfileSnapshot, error) {
	_, body, err := c.doRequest(ctx, session.HTTPClient(), http.MethodGet, profilePath(session.Username()), nil)
	if err != nil {
		c.logger.Error("Failed to fetch profile", zap.String("username", session.Username()), zap.Error(err))
		return nil, errors.NewProfileFetchError("get profile failed", errors.StatusCode(err), err)
	}

	var raw profileResponse
	if err := decodeJSON(body, &raw); err != nil {
		return nil, errors.NewProfileFetchError("profile response unreadable", http.StatusOK, err)
	}

	snapshot := &domain.ProfileSnapshot{
		Username:            session.Username(),
		StreakCount:         raw.SiteStreak,
		StreakExtendedToday: raw.StreakExtendedToday,
		LearningLanguage:    raw.LearningLanguage,
	}
	if data, ok := raw.LanguageData[raw.LearningLanguage]; ok && data.LevelProgress != nil {
		snapshot.LevelProgress = *data.LevelProgress
	}

	c.logger.Info("Profile fetched",
		zap.Int("streak", snapshot.StreakCount),
		zap.Bool("extended_today", snapshot.StreakExtendedToday),
		zap.String("language", snapshot.LearningLanguage),
	)

	return snapshot, nil
}
