package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers like a finchat server that knows one user.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req["email"] != "ana@example.com" || req["password"] != "segredo" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-123","user":{"id":1,"name":"Ana","email":"ana@example.com"}}`))
	})
	mux.HandleFunc("POST /chat/ai", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"Token inválido"}`))
			return
		}
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		reply := "Desculpe, não entendi."
		if req["message"] == "saldo" {
			reply = "💰 Seu saldo atual é de R$ 500,00."
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": reply})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := fakeServer(t)
	ctx := context.Background()

	result, err := NewClient(srv.URL, "").Login(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)
	assert.Equal(t, int64(1), result.User.ID)

	_, err = NewClient(srv.URL, "").Login(ctx, "ana@example.com", "errada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	reply, err := NewClient(srv.URL, "tok-123").Ask(ctx, "saldo")
	require.NoError(t, err)
	assert.Equal(t, "💰 Seu saldo atual é de R$ 500,00.", reply)

	_, err = NewClient(srv.URL, "wrong").Ask(ctx, "saldo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	srv := fakeServer(t)
	t.Setenv("FINCHAT_TOKEN", "")

	out, err := runCLI(t, "--server", srv.URL, "login", "--email", "ana@example.com", "--password", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "tok-123\n", out)

	out, err = runCLI(t, "--server", srv.URL, "--token", "tok-123", "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "R$ 500,00")

	out, err = runCLI(t, "--server", srv.URL, "--token", "tok-123", "ask", "banana", "com", "feijão")
	require.NoError(t, err)
	assert.Contains(t, out, "não entendi")

	_, err = runCLI(t, "--server", srv.URL, "--token", "", "ask", "saldo")
	assert.ErrorIs(t, err, errNoToken)
}
