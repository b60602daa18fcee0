package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Update is an incoming text message.
type Update struct {
	ChatID int64
	User   string
	Text   string
}

// CommandHandler is called for every incoming text message. A non-empty
// image is sent as a photo with text as caption; otherwise text alone is sent.
type CommandHandler func(ctx context.Context, u Update) (image []byte, text string)

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From *struct {
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"from"`
	} `json:"message"`
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second, Transport: t.Client.Transport}

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		updates, err := t.getUpdates(ctx, client, offset, 30)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			sleep(ctx, 5*time.Second)
			continue
		}
		for _, update := range updates {
			offset = update.UpdateID + 1
			t.handle(ctx, update, handler)
		}
	}
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset, timeout int) ([]telegramUpdate, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=%d", t.method("getUpdates"), offset, timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read polling response: %w", err)
	}

	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode polling response: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("getUpdates not ok: %s", string(body))
	}
	return result.Result, nil
}

func (t *TelegramNotifier) handle(ctx context.Context, update telegramUpdate, handler CommandHandler) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	u := Update{
		ChatID: update.Message.Chat.ID,
		Text:   strings.TrimSpace(update.Message.Text),
	}
	if from := update.Message.From; from != nil {
		u.User = from.Username
		if u.User == "" {
			u.User = from.FirstName
		}
	}
	log.Printf("[INFO] received command from %d (%s): %s", u.ChatID, u.User, u.Text)

	image, text := handler(ctx, u)
	var err error
	switch {
	case len(image) > 0:
		err = t.SendPhoto(ctx, u.ChatID, image, text)
	case text != "":
		err = t.SendMessage(ctx, u.ChatID, text)
	}
	if err != nil {
		log.Printf("[ERROR] send reply to %d: %v", u.ChatID, err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
