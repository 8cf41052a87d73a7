package provider

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/crypto/nacl/box"
)

const githubAPIBase = "https://api.github.com"

// GitHub pushes secrets to a repository's Actions secrets. Values are
// sealed to the repo's libsodium public key before they leave the
// machine, as the API requires.
type GitHub struct {
	repo    string
	token   string
	client  *http.Client
	baseURL string
}

// NewGitHub returns a provider for owner/repo.
func NewGitHub(repo, token string) *GitHub {
	return &GitHub{
		repo:    repo,
		token:   token,
		client:  newHTTPClient(),
		baseURL: githubAPIBase,
	}
}

func (g *GitHub) Type() string { return "github" }
func (g *GitHub) ID() string   { return g.repo }

type githubPublicKey struct {
	KeyID string `json:"key_id"`
	Key   string `json:"key"`
}

type githubSecretPayload struct {
	EncryptedValue string `json:"encrypted_value"`
	KeyID          string `json:"key_id"`
}

type githubSecretsList struct {
	Secrets []struct {
		Name string `json:"name"`
	} `json:"secrets"`
}

// PushSecret seals the value to the repository public key and PUTs it.
func (g *GitHub) PushSecret(name, value string) error {
	pk, err := g.publicKey()
	if err != nil {
		return err
	}

	sealed, err := sealToPublicKey(value, pk.Key)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(githubSecretPayload{EncryptedValue: sealed, KeyID: pk.KeyID})
	if err != nil {
		return fmt.Errorf("provider: failed to encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/actions/secrets/%s", g.baseURL, g.repo, name)
	resp, err := g.do(http.MethodPut, url, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkGitHubStatus(resp)
}

// ListSecrets returns the names of the repository's Actions secrets.
func (g *GitHub) ListSecrets() ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/actions/secrets", g.baseURL, g.repo)
	resp, err := g.do(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkGitHubStatus(resp); err != nil {
		return nil, err
	}

	var list githubSecretsList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("provider: failed to parse secrets list: %w", err)
	}
	names := make([]string, 0, len(list.Secrets))
	for _, s := range list.Secrets {
		names = append(names, s.Name)
	}
	return names, nil
}

// DeleteSecret removes one Actions secret.
func (g *GitHub) DeleteSecret(name string) error {
	url := fmt.Sprintf("%s/repos/%s/actions/secrets/%s", g.baseURL, g.repo, name)
	resp, err := g.do(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkGitHubStatus(resp)
}

func (g *GitHub) publicKey() (githubPublicKey, error) {
	url := fmt.Sprintf("%s/repos/%s/actions/secrets/public-key", g.baseURL, g.repo)
	resp, err := g.do(http.MethodGet, url, nil)
	if err != nil {
		return githubPublicKey{}, err
	}
	defer resp.Body.Close()
	if err := checkGitHubStatus(resp); err != nil {
		return githubPublicKey{}, err
	}

	var pk githubPublicKey
	if err := json.NewDecoder(resp.Body).Decode(&pk); err != nil {
		return githubPublicKey{}, fmt.Errorf("provider: failed to parse public key: %w", err)
	}
	return pk, nil
}

func (g *GitHub) do(method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("provider: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("User-Agent", "hc-cli")
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: github request failed: %w", err)
	}
	return resp, nil
}

func checkGitHubStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("provider: github api error: %s - %s", resp.Status, bytes.TrimSpace(body))
}

// sealToPublicKey performs a libsodium sealed-box encryption of value to
// a base64 curve25519 public key.
func sealToPublicKey(value, publicKeyB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return "", fmt.Errorf("provider: failed to decode public key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("provider: invalid public key length %d", len(raw))
	}

	var pk [32]byte
	copy(pk[:], raw)

	sealed, err := box.SealAnonymous(nil, []byte(value), &pk, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("provider: failed to seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
