package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Token is the result of a client-credentials exchange.
type Token struct {
	AccessToken string
	// ExpiresIn is the server-reported lifetime, relative to the response.
	ExpiresIn time.Duration
}

// ExchangeClientCredentials trades the client id and secret for an app
// access token.
func (c *Client) ExchangeClientCredentials(ctx context.Context, clientID, clientSecret string) (*Token, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, fmt.Errorf("client id and secret are required")
	}

	conf := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	c.logger.Debug("requesting app access token", "url", c.tokenURL)
	start := time.Now()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.Token(ctx)
	if err != nil {
		c.logger.Debug("token request failed", "duration", time.Since(start), "error", err)
		return nil, classifyTokenError(err)
	}
	c.logger.Debug("token request finished", "duration", time.Since(start))

	return &Token{
		AccessToken: tok.AccessToken,
		ExpiresIn:   expiresIn(tok),
	}, nil
}

func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return tokenStatusError(retrieveErr.Response.StatusCode, string(retrieveErr.Body))
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &TransportError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransportError{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransportError{Err: err}
	}

	return fmt.Errorf("parse token response: %w", err)
}

// expiresIn prefers the raw expires_in field so the caller can anchor the
// expiry to its own clock.
func expiresIn(tok *oauth2.Token) time.Duration {
	if tok == nil {
		return 0
	}
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}

	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Duration(n) * time.Second
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return time.Duration(n) * time.Second
		}
	}

	if !tok.Expiry.IsZero() {
		return time.Until(tok.Expiry).Round(time.Second)
	}
	return 0
}
