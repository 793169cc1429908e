package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Zeethx/NebulaView/internal/domain"
	"github.com/Zeethx/NebulaView/internal/dto"
)

func (s *Suite) accessTokenFor(fullName, email, username, password string) string {
	registerResp := s.registerUser(fullName, email, username, password)
	registerResp.Body.Close()
	s.Require().Equal(http.StatusCreated, registerResp.StatusCode)

	loginResp := s.login(username, password)
	defer loginResp.Body.Close()
	s.Require().Equal(http.StatusOK, loginResp.StatusCode)

	var login dto.LoginResponse
	s.Require().NoError(json.NewDecoder(loginResp.Body).Decode(&login))
	return login.AccessToken
}

func (s *Suite) TestChannelProfile_Anonymous() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	resp, err := http.Get(s.BaseURL + "/api/v1/users/c/analee")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var profile domain.ChannelProfile
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&profile))

	s.Equal("analee", profile.Username)
	s.EqualValues(0, profile.SubscriberCount)
	s.False(profile.IsSubscribed)
}

func (s *Suite) TestChannelProfile_NotFound() {
	resp, err := http.Get(s.BaseURL + "/api/v1/users/c/ghost")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestSubscribeFlow() {
	registerResp := s.registerUser("Ana Lee", "ana@example.com", "AnaLee", "Password123")
	registerResp.Body.Close()

	viewerToken := s.accessTokenFor("Bob Roe", "bob@example.com", "bobroe", "Password123")

	subReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/c/analee/subscribe", nil)
	subReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", viewerToken))
	subResp, err := http.DefaultClient.Do(subReq)
	s.Require().NoError(err)
	defer subResp.Body.Close()

	s.Equal(http.StatusOK, subResp.StatusCode)

	// the channel page reflects the subscription for the viewer
	profileReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/c/analee", nil)
	profileReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", viewerToken))
	profileResp, err := http.DefaultClient.Do(profileReq)
	s.Require().NoError(err)
	defer profileResp.Body.Close()

	var profile domain.ChannelProfile
	s.Require().NoError(json.NewDecoder(profileResp.Body).Decode(&profile))
	s.EqualValues(1, profile.SubscriberCount)
	s.True(profile.IsSubscribed)

	// unsubscribe takes it back down
	unsubReq, _ := http.NewRequest("DELETE", s.BaseURL+"/api/v1/users/c/analee/subscribe", nil)
	unsubReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", viewerToken))
	unsubResp, err := http.DefaultClient.Do(unsubReq)
	s.Require().NoError(err)
	defer unsubResp.Body.Close()

	s.Equal(http.StatusOK, unsubResp.StatusCode)

	profileResp2, err := http.Get(s.BaseURL + "/api/v1/users/c/analee")
	s.Require().NoError(err)
	defer profileResp2.Body.Close()

	var profile2 domain.ChannelProfile
	s.Require().NoError(json.NewDecoder(profileResp2.Body).Decode(&profile2))
	s.EqualValues(0, profile2.SubscriberCount)
}

func (s *Suite) TestSubscribe_SelfRejected() {
	token := s.accessTokenFor("Ana Lee", "ana@example.com", "AnaLee", "Password123")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/users/c/analee/subscribe", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestUpdateProfile() {
	token := s.accessTokenFor("Ana Lee", "ana@example.com", "AnaLee", "Password123")

	body := []byte(`{"fullName":"Ana L. Lee"}`)
	req, _ := http.NewRequest("PATCH", s.BaseURL+"/api/v1/users/me", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))
	s.Equal("Ana L. Lee", user.FullName)
	s.Equal("ana@example.com", user.Email)
}
