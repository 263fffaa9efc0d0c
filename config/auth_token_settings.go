package config

import (
	"encoding/json"
	"os"
)

// AuthTokens holds bearer credentials for authorized backend endpoints.
// The IGETC reference agreement is only served to authenticated callers.
type AuthTokens struct {
	IDToken string `json:"id_token"`
}

// HasToken reports whether a usable credential was loaded
func (t *AuthTokens) HasToken() bool {
	return t != nil && t.IDToken != ""
}

func LoadAuthTokens(filename string) (*AuthTokens, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		// File doesn't exist, run unauthenticated
		return &AuthTokens{}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var tokens AuthTokens
	err = json.Unmarshal(data, &tokens)
	return &tokens, err
}
