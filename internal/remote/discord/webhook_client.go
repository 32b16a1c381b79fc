package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

type webhookClient struct {
	url    string
	client *http.Client
}

func newWebhookClient(url string) *webhookClient {
	return &webhookClient{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *webhookClient) Send(ctx context.Context, content, fileName string, fileData []byte) error {
	payload := map[string]any{"content": content}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to prepare webhook payload: %w", err)
	}

	return w.post(ctx, body)
}

func (w *webhookClient) SendEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	payload := map[string]any{
		"embeds": []*discordgo.MessageEmbed{embed},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to prepare webhook embed payload: %w", err)
	}

	return w.post(ctx, body)
}

func (w *webhookClient) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return nil
}
