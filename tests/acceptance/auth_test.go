package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Zeethx/NebulaView/internal/dto"
)

// registerUser posts a multipart registration form with an avatar file
func (s *Suite) registerUser(fullName, email, username, password string) *http.Response {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	s.Require().NoError(w.WriteField("fullName", fullName))
	s.Require().NoError(w.WriteField("email", email))
	s.Require().NoError(w.WriteField("username", username))
	s.Require().NoError(w.WriteField("password", password))

	fw, err := w.CreateFormFile("avatar", "avatar.png")
	s.Require().NoError(err)
	_, err = fw.Write([]byte("png-bytes"))
	s.Require().NoError(err)

	s.Require().NoError(w.Close())

	resp, err := http.Post(s.BaseURL+"/api/v1/users/register", w.FormDataContentType(), &buf)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) login(identifier, password string) *http.Response {
	body, _ := json.Marshal(dto.LoginRequest{Username: identifier, Password: password})
	resp, err := http.Post(s.BaseURL+"/api/v1/users/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	return resp
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *Suite) TestRegister_Success() {
	resp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var user dto.UserResponse
	s.Require().NoError(json.Unmarshal(raw, &user))

	s.NotEmpty(user.ID)
	s.Equal("analee", user.Username, "username is stored lowercase")
	s.Equal("ana@example.com", user.Email)
	s.Equal("Ana Lee", user.FullName)
	s.NotEmpty(user.AvatarURL)

	// the raw body must not leak credential fields
	var fields map[string]any
	s.Require().NoError(json.Unmarshal(raw, &fields))
	s.NotContains(fields, "passwordHash")
	s.NotContains(fields, "password_hash")
	s.NotContains(fields, "refreshToken")
	s.NotContains(fields, "refresh_token")

	// registration does not open a session
	s.Empty(resp.Cookies())
}

func (s *Suite) TestRegister_DuplicateUsername() {
	resp1 := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	resp1.Body.Close()
	s.Equal(http.StatusCreated, resp1.StatusCode)

	// same username, different case, different email
	resp2 := s.registerUser("Other Ana", "other@example.com", "analee", "Password123")
	defer resp2.Body.Close()

	s.Equal(http.StatusConflict, resp2.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp2.Body).Decode(&errResp)
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_MissingFields() {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	s.Require().NoError(w.WriteField("username", "nobody"))
	s.Require().NoError(w.Close())

	resp, err := http.Post(s.BaseURL+"/api/v1/users/register", w.FormDataContentType(), &buf)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()
	s.Require().Equal(http.StatusCreated, registerResp.StatusCode)

	resp := s.login("analee", "Password123")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var loginResp dto.LoginResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&loginResp))

	s.NotEmpty(loginResp.AccessToken)
	s.NotEmpty(loginResp.RefreshToken)
	s.Equal("analee", loginResp.User.Username)

	access := cookieByName(resp, "accessToken")
	refresh := cookieByName(resp, "refreshToken")
	s.Require().NotNil(access, "accessToken cookie must be set")
	s.Require().NotNil(refresh, "refreshToken cookie must be set")
	s.True(access.HttpOnly)
	s.True(refresh.HttpOnly)

	// the access token identifies the same account via /me
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", loginResp.AccessToken))
	meResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer meResp.Body.Close()

	s.Equal(http.StatusOK, meResp.StatusCode)

	var me dto.UserResponse
	s.Require().NoError(json.NewDecoder(meResp.Body).Decode(&me))
	s.Equal(loginResp.User.ID, me.ID)
}

func (s *Suite) TestLogin_WrongPassword() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	resp := s.login("analee", "WrongPassword")
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Empty(resp.Cookies(), "a failed login issues no tokens")
}

func (s *Suite) TestLogin_UnknownUser() {
	resp := s.login("ghost", "Password123")
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestRefresh_RotatesToken() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	loginResp := s.login("analee", "Password123")
	defer loginResp.Body.Close()
	refresh := cookieByName(loginResp, "refreshToken")
	s.Require().NotNil(refresh)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/refresh-token", nil)
	req.AddCookie(refresh)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	rotated := cookieByName(resp, "refreshToken")
	s.Require().NotNil(rotated)
	s.NotEqual(refresh.Value, rotated.Value, "refresh must rotate the token")

	// the superseded token is dead
	req2, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/refresh-token", nil)
	req2.AddCookie(refresh)
	resp2, err := http.DefaultClient.Do(req2)
	s.Require().NoError(err)
	defer resp2.Body.Close()

	s.Equal(http.StatusUnauthorized, resp2.StatusCode)

	// the rotated one still works
	req3, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/refresh-token", nil)
	req3.AddCookie(rotated)
	resp3, err := http.DefaultClient.Do(req3)
	s.Require().NoError(err)
	defer resp3.Body.Close()

	s.Equal(http.StatusOK, resp3.StatusCode)
}

func (s *Suite) TestRefresh_NoToken() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/refresh-token", nil)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_BodyFallback() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	loginResp := s.login("analee", "Password123")
	defer loginResp.Body.Close()

	var login dto.LoginResponse
	s.Require().NoError(json.NewDecoder(loginResp.Body).Decode(&login))

	body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: login.RefreshToken})
	resp, err := http.Post(s.BaseURL+"/api/v1/users/refresh-token", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestLogout_RevokesSession() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	loginResp := s.login("analee", "Password123")
	defer loginResp.Body.Close()

	var login dto.LoginResponse
	s.Require().NoError(json.NewDecoder(loginResp.Body).Decode(&login))
	refresh := cookieByName(loginResp, "refreshToken")
	s.Require().NotNil(refresh)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/logout", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	cleared := cookieByName(resp, "refreshToken")
	s.Require().NotNil(cleared)
	s.Empty(cleared.Value, "logout clears the refreshToken cookie")

	// the old refresh token no longer rotates
	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/refresh-token", nil)
	refreshReq.AddCookie(refresh)
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()

	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestChangePassword_Flow() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	loginResp := s.login("analee", "Password123")
	defer loginResp.Body.Close()

	var login dto.LoginResponse
	s.Require().NoError(json.NewDecoder(loginResp.Body).Decode(&login))

	body, _ := json.Marshal(dto.ChangePasswordRequest{OldPassword: "Password123", NewPassword: "NewPassword456"})
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/change-password", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	// old password no longer opens a session
	oldLogin := s.login("analee", "Password123")
	defer oldLogin.Body.Close()
	s.Equal(http.StatusUnauthorized, oldLogin.StatusCode)

	// new password does
	newLogin := s.login("analee", "NewPassword456")
	defer newLogin.Body.Close()
	s.Equal(http.StatusOK, newLogin.StatusCode)

	// the access token issued before the change still authenticates
	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)
}

func (s *Suite) TestMe_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestMe_CookieAuth() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	loginResp := s.login("analee", "Password123")
	defer loginResp.Body.Close()
	access := cookieByName(loginResp, "accessToken")
	s.Require().NotNil(access)

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	req.AddCookie(access)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}
