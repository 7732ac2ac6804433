package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubAPI(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewFactory(srv.URL)("123:abc")
	require.NoError(t, err)
	return client
}

func TestGetChatAdministratorsParsesOwnersAndAdmins(t *testing.T) {
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/getChatAdministrators"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":[
			{"status":"creator","user":{"id":10,"is_bot":false,"first_name":"Owner","username":"owner"},"is_anonymous":false},
			{"status":"administrator","user":{"id":999,"is_bot":true,"first_name":"Bot","username":"vipbot"},"can_be_edited":false,"is_anonymous":false,"can_manage_chat":true,"can_delete_messages":true,"can_manage_video_chats":false,"can_restrict_members":true,"can_promote_members":false,"can_change_info":false,"can_invite_users":true}
		]}`))
	})

	admins, err := client.GetChatAdministrators(context.Background(), "-100200300")
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, Identity{ID: 10, Username: "owner"}, admins[0])
	assert.Equal(t, Identity{ID: 999, Username: "vipbot"}, admins[1])
}

func TestAddChatMember(t *testing.T) {
	var gotPath string
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":true}`))
	})

	err := client.AddChatMember(context.Background(), "-100200300", 42)
	require.NoError(t, err)
	assert.Equal(t, "/bot123:abc/addChatMember", gotPath)
}

func TestAddChatMemberFailure(t *testing.T) {
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"description":"USER_PRIVACY_RESTRICTED"}`))
	})

	err := client.AddChatMember(context.Background(), "-100200300", 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER_PRIVACY_RESTRICTED")
}
