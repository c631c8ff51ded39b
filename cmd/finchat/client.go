package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a finchat server over its JSON API.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL, token string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Client{client: client}
}

type apiError struct {
	Error string `json:"error"`
	Reply string `json:"reply"`
}

func (e *apiError) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Reply
}

type loginResult struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*loginResult, error) {
	var result loginResult
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/auth/login")
	if err != nil {
		return nil, fmt.Errorf("failed to call login: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("login failed (%d): %s", resp.StatusCode(), apiErr.message())
	}
	return &result, nil
}

type chatResult struct {
	Reply string `json:"reply"`
}

// Ask sends one chat turn and returns the assistant reply.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	var result chatResult
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"message": message}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/ai")
	if err != nil {
		return "", fmt.Errorf("failed to call chat: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat failed (%d): %s", resp.StatusCode(), apiErr.message())
	}
	return result.Reply, nil
}
