package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mousebot/internal/domain/models"
)

type sentMessage struct {
	Path    string
	Auth    string
	Client  string
	Payload groupMessageRequest
}

func newPlatformServer(t *testing.T, sent *[]sentMessage) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /app/getAppAccessToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 7200})
	})
	mux.HandleFunc("POST /v2/groups/{group}/messages", func(w http.ResponseWriter, r *http.Request) {
		var payload groupMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad outbound payload: %v", err)
		}
		*sent = append(*sent, sentMessage{
			Path:    r.URL.Path,
			Auth:    r.Header.Get("Authorization"),
			Client:  r.Header.Get("X-QQ-Client-ID"),
			Payload: payload,
		})
		json.NewEncoder(w).Encode(map[string]string{"id": "out-1"})
	})
	return httptest.NewServer(mux)
}

func newTestDispatcher(server *httptest.Server) *Dispatcher {
	tokens := NewTokenCache(server.URL+"/app/getAppAccessToken", testLogger())
	return NewDispatcher(server.URL, tokens, NewReplySequencer(), testLogger())
}

func TestDispatcher_SendGroupText(t *testing.T) {
	var sent []sentMessage
	server := newPlatformServer(t, &sent)
	defer server.Close()

	d := newTestDispatcher(server)
	bot := &models.Bot{ID: "bot-1", AppID: "app-1", AppSecret: "secret"}

	body, err := d.SendGroupText(context.Background(), bot, "g1", "hello", "msg1")
	if err != nil {
		t.Fatalf("SendGroupText failed: %v", err)
	}
	if body == nil {
		t.Fatal("expected platform response body")
	}

	if len(sent) != 1 {
		t.Fatalf("expected 1 outbound call, got %d", len(sent))
	}
	got := sent[0]
	if got.Path != "/v2/groups/g1/messages" {
		t.Errorf("path: got %q", got.Path)
	}
	if got.Auth != "QQBot tok-1" {
		t.Errorf("authorization: got %q", got.Auth)
	}
	if got.Client != "app-1" {
		t.Errorf("client id header: got %q", got.Client)
	}
	want := groupMessageRequest{Content: "hello", MsgType: 0, MsgID: "msg1", MsgSeq: 1}
	if got.Payload != want {
		t.Errorf("payload: got %+v, want %+v", got.Payload, want)
	}
}

func TestDispatcher_SequenceIncrements(t *testing.T) {
	var sent []sentMessage
	server := newPlatformServer(t, &sent)
	defer server.Close()

	d := newTestDispatcher(server)
	bot := &models.Bot{ID: "bot-1", AppID: "app-1", AppSecret: "secret"}

	d.SendGroupText(context.Background(), bot, "g1", "one", "msg1")
	d.SendGroupText(context.Background(), bot, "g1", "two", "msg1")
	d.SendGroupText(context.Background(), bot, "g1", "other", "msg2")

	if len(sent) != 3 {
		t.Fatalf("expected 3 outbound calls, got %d", len(sent))
	}
	if sent[0].Payload.MsgSeq != 1 || sent[1].Payload.MsgSeq != 2 {
		t.Errorf("same msg_id must get increasing seq: %d then %d",
			sent[0].Payload.MsgSeq, sent[1].Payload.MsgSeq)
	}
	if sent[2].Payload.MsgSeq != 1 {
		t.Errorf("different msg_id must restart at 1, got %d", sent[2].Payload.MsgSeq)
	}
}

func TestDispatcher_SkipsWithoutMsgID(t *testing.T) {
	var sent []sentMessage
	server := newPlatformServer(t, &sent)
	defer server.Close()

	d := newTestDispatcher(server)
	bot := &models.Bot{ID: "bot-1", AppID: "app-1", AppSecret: "secret"}

	body, err := d.SendGroupText(context.Background(), bot, "g1", "hello", "")
	if err != nil {
		t.Fatalf("skip must not error: %v", err)
	}
	if body != nil || len(sent) != 0 {
		t.Error("expected silent skip without msg_id")
	}
}

func TestDispatcher_SkipsWhenExhausted(t *testing.T) {
	var sent []sentMessage
	server := newPlatformServer(t, &sent)
	defer server.Close()

	d := newTestDispatcher(server)
	bot := &models.Bot{ID: "bot-1", AppID: "app-1", AppSecret: "secret"}

	for i := 0; i < DefaultMaxSeq; i++ {
		if _, err := d.SendGroupText(context.Background(), bot, "g1", "m", "msg1"); err != nil {
			t.Fatalf("send %d failed: %v", i+1, err)
		}
	}

	body, err := d.SendGroupText(context.Background(), bot, "g1", "m", "msg1")
	if err != nil {
		t.Fatalf("exhausted send must not error: %v", err)
	}
	if body != nil || len(sent) != DefaultMaxSeq {
		t.Errorf("expected skip after %d sends, got %d", DefaultMaxSeq, len(sent))
	}
}

func TestDispatcher_PropagatesPlatformError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /app/getAppAccessToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 7200})
	})
	mux.HandleFunc("POST /v2/groups/{group}/messages", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"msg_id expired"}`, http.StatusBadRequest)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	d := newTestDispatcher(server)
	d.http.Timeout = time.Second

	_, err := d.SendGroupText(context.Background(), &models.Bot{AppID: "a", AppSecret: "s"}, "g1", "m", "msg1")
	if err == nil {
		t.Fatal("expected platform error to propagate")
	}
}
