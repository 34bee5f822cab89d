package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NotifierClient talks to the internal notification relay that fans messages
// out to email and the mobile push channel. Delivery is best effort: the
// report workflow never fails because a notification did not go out.
type NotifierClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewNotifierClient(baseURL string, log *zap.Logger) *NotifierClient {
	return &NotifierClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type Notification struct {
	StaffID  int64          `json:"staff_id"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body"`
	ReportID int64          `json:"report_id,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (c *NotifierClient) Notify(ctx context.Context, n Notification) error {
	if c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/internal/notify", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("notification relay unavailable", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		c.log.Warn("notification relay rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(b)),
		)
	}
	return nil
}
