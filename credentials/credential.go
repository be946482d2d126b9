package credentials

import "golang.org/x/oauth2"

// Persisted keys, one per value, duplicated across tiers under the mutual-exclusion rule.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user_data"
)

// Keys lists every key the store manages.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Credential is the access/refresh token pair of an active session.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Complete reports whether both tokens are set.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// OAuth2Token converts the credential to an oauth2.Token for bearer transports.
func (c Credential) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
}
