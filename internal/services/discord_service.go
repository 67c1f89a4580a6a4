package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veskar/guildhall/internal/models"
)

const (
	discordTokenURL = "https://discord.com/api/oauth2/token"
	discordUserURL  = "https://discord.com/api/users/@me"
)

// DiscordService completes the OAuth code exchange with Discord and stores
// the resulting account link. The reconciler reads those links when merging
// bot-sourced signups.
type DiscordService struct {
	linkRepo     models.DiscordLinkRepo
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURI  string
}

func NewDiscordService(linkRepo models.DiscordLinkRepo, clientID, clientSecret, redirectURI string) *DiscordService {
	return &DiscordService{
		linkRepo:     linkRepo,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

type discordTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type discordUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LinkDiscordAccount exchanges the OAuth code, looks up the Discord account
// behind it and saves the link for the given in-app user.
func (ds *DiscordService) LinkDiscordAccount(ctx context.Context, userID uuid.UUID, code string) (*models.DiscordLink, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	token, err := ds.exchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %v", err)
	}

	discordUser, err := ds.fetchUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord user: %v", err)
	}

	link := &models.DiscordLink{
		DiscordUserID:   discordUser.ID,
		UserID:          userID,
		DiscordUsername: discordUser.Username,
	}
	if err := ds.linkRepo.SaveLink(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

func (ds *DiscordService) GetLink(ctx context.Context, userID uuid.UUID) (*models.DiscordLink, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return ds.linkRepo.GetLinkByUser(ctx, userID)
}

func (ds *DiscordService) UnlinkDiscordAccount(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	return ds.linkRepo.DeleteLink(ctx, userID)
}

func (ds *DiscordService) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", ds.clientID)
	form.Set("client_secret", ds.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", ds.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, discordTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ds.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discord token endpoint returned status %d", resp.StatusCode)
	}

	var token discordTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("discord token response missing access token")
	}

	return token.AccessToken, nil
}

func (ds *DiscordService) fetchUser(ctx context.Context, accessToken string) (*discordUserResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordUserURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := ds.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord user endpoint returned status %d", resp.StatusCode)
	}

	var user discordUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("discord user response missing id")
	}

	return &user, nil
}
