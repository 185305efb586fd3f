package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/formsight/backend/internal/auth"

	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

func (s *IntegrationTestSuite) registerUser(ctx context.Context, email, password, fullName string) loginResponse {
	registerReqJson, err := json.Marshal(registerRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
	})
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/api/auth/register", serverEndpoint),
		bytes.NewBuffer(registerReqJson),
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), respBytes)

	var registerResp loginResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &registerResp))
	require.NotNil(s.T(), registerResp.User)
	require.NotEmpty(s.T(), registerResp.Token)

	return registerResp
}

func (s *IntegrationTestSuite) loginUser(ctx context.Context, email, password string) loginResponse {
	loginReqJson, err := json.Marshal(loginRequest{
		Email:    email,
		Password: password,
	})
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/api/auth/login", serverEndpoint),
		bytes.NewBuffer(loginReqJson),
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), respBytes)

	var loginResp loginResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &loginResp))
	require.NotNil(s.T(), loginResp.User)
	require.NotEmpty(s.T(), loginResp.Token)

	return loginResp
}
