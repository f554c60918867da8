// Package player resolves Minecraft player identities for the join
// flow: Java accounts via the Mojang profile API, Bedrock gamertags
// via the xbl.io Xbox Live proxy.
package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"context"
)

// ErrInvalidPlatform is returned for a platform other than java or
// bedrock.
var ErrInvalidPlatform = errors.New("invalid platform")

// Platform is the edition a player connects from.
type Platform string

// Supported platforms.
const (
	PlatformJava    Platform = "java"
	PlatformBedrock Platform = "bedrock"
)

// Player is the lookup result. A miss is Exists == false, not an
// error; errors are reserved for transport failures.
type Player struct {
	Exists     bool   `json:"exists"`
	UUID       string `json:"uuid,omitempty"`
	Username   string `json:"username,omitempty"`
	InGameName string `json:"inGameName,omitempty"`
	IsPlayer   bool   `json:"isPlayer"`
}

// Service looks up players against the upstream identity APIs.
type Service struct {
	mojangURL  string
	xblURL     string
	xblKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewService creates a lookup service. mojangURL and xblURL are the
// API bases (overridable for tests); xblKey authenticates against
// xbl.io.
func NewService(mojangURL, xblURL, xblKey string, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		mojangURL:  mojangURL,
		xblURL:     xblURL,
		xblKey:     xblKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Check resolves a username on the given platform.
func (s *Service) Check(ctx context.Context, platform Platform, username string) (Player, error) {
	switch platform {
	case PlatformJava:
		return s.checkJava(ctx, username)
	case PlatformBedrock:
		return s.checkBedrock(ctx, username)
	default:
		return Player{}, fmt.Errorf("%w: %q", ErrInvalidPlatform, platform)
	}
}

func (s *Service) checkJava(ctx context.Context, username string) (Player, error) {
	endpoint := s.mojangURL + "/users/profiles/minecraft/" + url.PathEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Player{}, fmt.Errorf("mojang: create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Player{}, fmt.Errorf("mojang: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	// Mojang answers 404 (and historically 204) for unknown names.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return Player{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Player{}, fmt.Errorf("mojang returned status %d: %s", resp.StatusCode, string(body))
	}

	var profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Player{}, fmt.Errorf("mojang: decode response: %w", err)
	}
	if profile.ID == "" {
		return Player{}, nil
	}

	return Player{
		Exists:     true,
		UUID:       formatUUID(profile.ID),
		Username:   username,
		InGameName: username,
	}, nil
}

func (s *Service) checkBedrock(ctx context.Context, gamertag string) (Player, error) {
	endpoint := s.xblURL + "/api/v2/friends/search/?gt=" + url.QueryEscape(gamertag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Player{}, fmt.Errorf("xbl: create request: %w", err)
	}
	req.Header.Set("X-Authorization", s.xblKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Player{}, fmt.Errorf("xbl: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Player{}, fmt.Errorf("xbl returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		ProfileUsers []struct {
			ID string `json:"id"`
		} `json:"profileUsers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Player{}, fmt.Errorf("xbl: decode response: %w", err)
	}
	if len(result.ProfileUsers) == 0 || result.ProfileUsers[0].ID == "" {
		return Player{}, nil
	}

	xuid, err := strconv.ParseUint(result.ProfileUsers[0].ID, 10, 64)
	if err != nil {
		return Player{}, nil
	}

	// Bedrock players have no Mojang UUID; the server derives one from
	// the XUID, zero-padded into the UUID hex space.
	hex := fmt.Sprintf("%032x", xuid)

	return Player{
		Exists:     true,
		UUID:       formatUUID(hex),
		Username:   gamertag,
		InGameName: bedrockInGameName(gamertag),
	}, nil
}

// bedrockInGameName mirrors how the Geyser bridge names Bedrock
// players on the server: a dot prefix, underscores for spaces, capped
// at 15 characters.
func bedrockInGameName(gamertag string) string {
	name := strings.ReplaceAll(gamertag, " ", "_")
	if len(name) > 15 {
		name = name[:15]
	}
	return "." + name
}

// formatUUID converts 32 hex characters to the dashed UUID form.
func formatUUID(hex string) string {
	if len(hex) != 32 {
		return hex
	}
	return strings.Join([]string{
		hex[0:8], hex[8:12], hex[12:16], hex[16:20], hex[20:32],
	}, "-")
}
