package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mousebot/internal/domain/models"
)

// Dispatcher sends passive group replies to the chat platform, gated
// by the reply sequencer and the token cache.
type Dispatcher struct {
	apiBase   string
	tokens    *TokenCache
	sequencer *ReplySequencer
	http      *http.Client
	logger    *slog.Logger
}

// NewDispatcher creates an outbound dispatcher.
func NewDispatcher(apiBase string, tokens *TokenCache, sequencer *ReplySequencer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		apiBase:   apiBase,
		tokens:    tokens,
		sequencer: sequencer,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
	}
}

type groupMessageRequest struct {
	Content string `json:"content"`
	MsgType int    `json:"msg_type"`
	MsgID   string `json:"msg_id"`
	MsgSeq  int    `json:"msg_seq"`
}

// SendGroupText sends a passive text reply to a group. Only passive
// replies are supported: a missing inbound message id, or an exhausted
// reply sequence, is a silent skip rather than an error. Returns the
// platform response body when a message was actually sent.
func (d *Dispatcher) SendGroupText(ctx context.Context, bot *models.Bot, groupOpenID, content, replyToMsgID string) (json.RawMessage, error) {
	if replyToMsgID == "" {
		d.logger.Warn("no inbound msg_id, passive reply skipped", "bot_id", bot.ID, "group", groupOpenID)
		return nil, nil
	}

	seq, ok := d.sequencer.Next(replyToMsgID, DefaultReplyTTL, DefaultMaxSeq)
	if !ok {
		d.logger.Warn("reply sequence exhausted, send skipped", "bot_id", bot.ID, "msg_id", replyToMsgID)
		return nil, nil
	}

	token, err := d.tokens.AccessToken(ctx, bot)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(groupMessageRequest{
		Content: content,
		MsgType: 0,
		MsgID:   replyToMsgID,
		MsgSeq:  seq,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v2/groups/%s/messages", d.apiBase, groupOpenID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "QQBot "+token)
	req.Header.Set("X-QQ-Client-ID", bot.AppID)

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send group message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("send group message http %d: %s", resp.StatusCode, string(raw))
	}

	d.logger.Info("group reply sent",
		"bot_id", bot.ID,
		"group", groupOpenID,
		"msg_id", replyToMsgID,
		"msg_seq", seq,
	)

	return raw, nil
}
