package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/hublink/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, srv *httptest.Server, path, body string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func postForm(t *testing.T, srv *httptest.Server, method string, form url.Values) map[string]interface{} {
	t.Helper()
	resp, err := http.PostForm(srv.URL+"/method/"+method, form)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(out map[string]interface{}) float64 {
	e, _ := out["error"].(map[string]interface{})
	code, _ := e["error_code"].(float64)
	return code
}

func TestServer_CommunityTokenFlow(t *testing.T) {
	s := New(Options{Targets: []remote.Target{{ID: 10, Name: "Ten"}}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	status, out := post(t, srv, "/auth/community_token", `{"app_id":1,"group_id":10,"scope":"messages,manage"}`)
	assert.Equal(t, http.StatusOK, status)
	token, _ := out["access_token"].(string)
	require.True(t, strings.HasPrefix(token, "c1."))

	res := postForm(t, srv, "groups.setSettings", url.Values{
		"access_token": {token},
		"group_id":     {"10"},
		"messages":     {"1"},
	})
	assert.Equal(t, float64(1), res["response"])
	assert.Equal(t, "1", s.Settings(10)["groups.setSettings.messages"])
	assert.Equal(t, 1, s.Calls("groups.setSettings"))
}

func TestServer_Unprovisioned(t *testing.T) {
	s := New(Options{Unprovisioned: []int64{20}, Remap: map[int64]int64{20: 21}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	status, out := post(t, srv, "/auth/community_token", `{"group_id":20}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, float64(remote.CodeNotProvisioned), errorCode(out))

	_, out = post(t, srv, "/apps/add_to_community", `{"group_id":20}`)
	assert.Equal(t, float64(21), out["group_id"])
	assert.True(t, s.Provisioned(21))
	assert.False(t, s.Provisioned(20))
}

func TestServer_Denied(t *testing.T) {
	s := New(Options{Targets: []remote.Target{{ID: 30}}, Denied: []int64{30}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	status, out := post(t, srv, "/auth/community_token", `{"group_id":30}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, float64(remote.CodeUserCancelled), errorCode(out))

	s.SetDenied(30, false)
	status, _ = post(t, srv, "/auth/community_token", `{"group_id":30}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_MethodRequiresValidToken(t *testing.T) {
	s := New(Options{Targets: []remote.Target{{ID: 1}, {ID: 2}}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	out := postForm(t, srv, "groups.setSettings", url.Values{"access_token": {"bogus"}, "group_id": {"1"}})
	assert.Equal(t, float64(remote.CodeAuthFailed), errorCode(out))

	_, tok := post(t, srv, "/auth/community_token", `{"group_id":1}`)
	out = postForm(t, srv, "groups.setSettings", url.Values{
		"access_token": {tok["access_token"].(string)},
		"group_id":     {"2"},
	})
	assert.Equal(t, float64(remote.CodeAccessDenied), errorCode(out))
}

func TestServer_FailMethods(t *testing.T) {
	s := New(Options{Targets: []remote.Target{{ID: 1}}, FailMethods: []string{"groups.setLongPollSettings"}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	_, tok := post(t, srv, "/auth/community_token", `{"group_id":1}`)
	out := postForm(t, srv, "groups.setLongPollSettings", url.Values{
		"access_token": {tok["access_token"].(string)},
		"group_id":     {"1"},
	})
	assert.Equal(t, float64(remote.CodeTooManyCalls), errorCode(out))
}

func TestServer_GroupsGet(t *testing.T) {
	s := New(Options{Targets: []remote.Target{{ID: 1, Name: "One", Photo: "https://img/1.png"}, {ID: 2, Name: "Two"}}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	_, tok := post(t, srv, "/auth/user_token", `{"scope":"groups"}`)
	out := postForm(t, srv, "groups.get", url.Values{"access_token": {tok["access_token"].(string)}})

	resp := out["response"].(map[string]interface{})
	assert.Equal(t, float64(2), resp["count"])
	items := resp["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "One", first["name"])
	assert.Equal(t, "https://img/1.png", first["photo_100"])
}

func TestServer_ListenAndServe(t *testing.T) {
	s := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())

	addrCh := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(ctx, "127.0.0.1:0", func(addr string) { addrCh <- addr })
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
