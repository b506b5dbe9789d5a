package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"panchayat-docstore/pkg/docstore"

	"github.com/spf13/cobra"
)

const loginRoute = "/api/auth/login"

var (
	loginUser     string
	loginPassword string
)

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a bearer token and store it in the token file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginPassword == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			loginPassword = strings.TrimSpace(line)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		resp, err := login(ctx, http.DefaultClient, serviceRoot(apiURL), loginUser, loginPassword)
		if err != nil {
			return err
		}

		store := docstore.NewFileTokenStore(tokenFile)
		if err := store.SetToken(resp.Token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Logged in as %s (%s); token valid until %s\n", resp.UserID, resp.Role, resp.ExpiresAt)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return docstore.NewFileTokenStore(tokenFile).Clear()
	},
}

func login(ctx context.Context, hc *http.Client, root, username, password string) (*loginResponse, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, root+loginRoute, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		return nil, fmt.Errorf("login failed (%d): %s", res.StatusCode, apiErr.Message)
	}

	var out loginResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &out, nil
}

// serviceRoot strips the store prefix so both forms of --url work.
func serviceRoot(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	return strings.TrimSuffix(u, docstore.APIPrefix)
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "admin", "Account name")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when empty)")
}
