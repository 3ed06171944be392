package infra

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// OAuth2Tokens adapta um oauth2.TokenSource para domain.TokenProvider.
//
// A renovação do token é responsabilidade da fonte; aqui só lemos o
// AccessToken atual.
type OAuth2Tokens struct {
	src oauth2.TokenSource
}

func NewOAuth2Tokens(src oauth2.TokenSource) *OAuth2Tokens {
	return &OAuth2Tokens{src: src}
}

// StaticTokens devolve sempre o mesmo token (ex.: CRPT_TOKEN).
func StaticTokens(token string) *OAuth2Tokens {
	return NewOAuth2Tokens(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

func (t *OAuth2Tokens) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t == nil || t.src == nil {
		return "", errors.New("no token source configured")
	}

	tok, err := t.src.Token()
	if err != nil {
		return "", err
	}
	if !tok.Valid() {
		return "", errors.New("token is empty or expired")
	}
	return tok.AccessToken, nil
}
