package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/persely/persely/internal/config"
	"github.com/persely/persely/internal/utils"
	"github.com/persely/persely/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

type authRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type GoogleAuth struct {
	repo        Repository
	userService user.Service
	oauthConfig *oauth2.Config
	clock       utils.Clock
}

func NewGoogleAuth(repo Repository, userService user.Service, cfg config.Application, clock utils.Clock) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/auth/callback",
		Scopes:       []string{googleoauth.UserinfoEmailScope, googleoauth.UserinfoProfileScope},
	}
	return &GoogleAuth{repo: repo, userService: userService, oauthConfig: oauthConfig, clock: clock}
}

// OAuthLogin starts the sign-in flow: it stores a one-time state nonce and
// returns the Google consent URL the client should redirect to.
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")
	if finalUrl == "" {
		finalUrl = "/"
	}

	if err := g.repo.StoreNonce(r.Context(), stateNonce, finalUrl, g.clock.Now()); err != nil {
		http.Error(w, "failed to start sign-in", http.StatusInternalServerError)
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(stateNonce)

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(authRedirect{RedirectUrl: u}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// OAuthCallback finishes the flow: it validates the state nonce, exchanges
// the code, reads the Google profile, finds or creates the user and opens a
// session bound to a cookie.
func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")

	finalUrl, found, err := g.repo.ConsumeNonce(r.Context(), state)
	if err != nil || !found {
		log.Warnf("sign-in callback with unknown state nonce: %s", state)
		http.Error(w, "invalid sign-in state", http.StatusBadRequest)
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	oauthService, err := googleoauth.NewService(r.Context(),
		option.WithHTTPClient(g.oauthConfig.Client(r.Context(), token)))
	if err != nil {
		log.Errorf("unable to create oauth service: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	userInfo, err := oauthService.Userinfo.Get().Do()
	if err != nil {
		log.Errorf("unable to fetch user info: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	signedIn, err := g.userService.FindOrCreate(r.Context(), userInfo.Email, userInfo.Name)
	if err != nil {
		log.Errorf("unable to find or create user %s: %v", userInfo.Email, err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	now := g.clock.Now()
	session := Session{
		Token:     uuid.New().String(),
		UserId:    signedIn.Id,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := g.repo.StoreSession(r.Context(), session); err != nil {
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	log.Debugf("user %d signed in", signedIn.Id)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

func (g *GoogleAuth) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := g.repo.DeleteSession(r.Context(), cookie.Value); err != nil {
			err := fmt.Errorf("could not close session: %w", err)
			log.Error(err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
