package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const cloudflareAPIBase = "https://api.cloudflare.com/client/v4"

// Cloudflare pushes secrets to a Worker script. The API accepts the
// plaintext over TLS; there is no client-side sealing step.
type Cloudflare struct {
	accountID  string
	workerName string
	token      string
	client     *http.Client
	baseURL    string
}

// NewCloudflare returns a provider for one worker script.
func NewCloudflare(accountID, workerName, token string) *Cloudflare {
	return &Cloudflare{
		accountID:  accountID,
		workerName: workerName,
		token:      token,
		client:     newHTTPClient(),
		baseURL:    cloudflareAPIBase,
	}
}

func (c *Cloudflare) Type() string { return "cloudflare" }
func (c *Cloudflare) ID() string   { return c.workerName }

type cloudflareSecretPayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type cloudflareResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Result []struct {
		Name string `json:"name"`
	} `json:"result"`
}

func (c *Cloudflare) secretsURL() string {
	return fmt.Sprintf("%s/accounts/%s/workers/scripts/%s/secrets", c.baseURL, c.accountID, c.workerName)
}

// PushSecret creates or updates one worker secret.
func (c *Cloudflare) PushSecret(name, value string) error {
	payload, err := json.Marshal(cloudflareSecretPayload{Name: name, Text: value, Type: "secret_text"})
	if err != nil {
		return fmt.Errorf("provider: failed to encode payload: %w", err)
	}

	_, err = c.do(http.MethodPut, c.secretsURL(), payload)
	return err
}

// ListSecrets returns the names of the worker's secrets.
func (c *Cloudflare) ListSecrets() ([]string, error) {
	body, err := c.do(http.MethodGet, c.secretsURL(), nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(body.Result))
	for _, s := range body.Result {
		names = append(names, s.Name)
	}
	return names, nil
}

// DeleteSecret removes one worker secret.
func (c *Cloudflare) DeleteSecret(name string) error {
	_, err := c.do(http.MethodDelete, c.secretsURL()+"/"+name, nil)
	return err
}

func (c *Cloudflare) do(method, url string, payload []byte) (*cloudflareResponse, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("provider: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: cloudflare request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("provider: cloudflare api error: %s - %s", resp.Status, bytes.TrimSpace(body))
	}

	var parsed cloudflareResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("provider: failed to parse cloudflare response: %w", err)
	}
	if !parsed.Success {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("provider: cloudflare api errors: %s", strings.Join(msgs, ", "))
	}
	return &parsed, nil
}
