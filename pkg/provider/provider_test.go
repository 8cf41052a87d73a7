package provider

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/nacl/box"

	"hc/pkg/crypto"
)

func TestFieldToSecretName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"db_url", "DB_URL"},
		{"apiKey", "API_KEY"},
		{"DATABASE_URL", "DATABASE_URL"},
		{"mySecretValue", "MY_SECRET_VALUE"},
		{"token", "TOKEN"},
	}
	for _, tt := range tests {
		if got := FieldToSecretName(tt.in); got != tt.want {
			t.Errorf("FieldToSecretName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	gh, err := New(Config{
		Type:        "github",
		ID:          "octo/repo",
		Credentials: map[string]string{"repo": "octo/repo", "token": "ghp_x"},
	})
	if err != nil {
		t.Fatalf("New(github) error = %v", err)
	}
	if gh.Type() != "github" || gh.ID() != "octo/repo" {
		t.Errorf("New(github) = %s/%s", gh.Type(), gh.ID())
	}

	cf, err := New(Config{
		Type: "cloudflare",
		ID:   "my-worker",
		Credentials: map[string]string{
			"account_id": "acc", "worker_name": "my-worker", "token": "cf_x",
		},
	})
	if err != nil {
		t.Fatalf("New(cloudflare) error = %v", err)
	}
	if cf.Type() != "cloudflare" || cf.ID() != "my-worker" {
		t.Errorf("New(cloudflare) = %s/%s", cf.Type(), cf.ID())
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(Config{Type: "vault9000"})
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("New() error = %v, want ErrUnknownType", err)
	}
}

func TestNewMissingCredential(t *testing.T) {
	_, err := New(Config{Type: "github", Credentials: map[string]string{"repo": "octo/repo"}})
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("New() error = %v, want ErrMissingCredential", err)
	}
}

func TestGitHubPushSecret(t *testing.T) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}

	var gotPayload githubSecretPayload
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/repo/actions/secrets/public-key", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(githubPublicKey{
			KeyID: "key-1",
			Key:   base64.StdEncoding.EncodeToString(pub[:]),
		})
	})
	mux.HandleFunc("PUT /repos/octo/repo/actions/secrets/DB_PASSWORD", func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer ghp_x" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gh := NewGitHub("octo/repo", "ghp_x")
	gh.baseURL = srv.URL

	if err := gh.PushSecret("DB_PASSWORD", "secret123"); err != nil {
		t.Fatalf("PushSecret() error = %v", err)
	}

	if gotPayload.KeyID != "key-1" {
		t.Errorf("payload key_id = %q", gotPayload.KeyID)
	}
	sealed, err := base64.StdEncoding.DecodeString(gotPayload.EncryptedValue)
	if err != nil {
		t.Fatalf("encrypted_value is not base64: %v", err)
	}
	opened, ok := box.OpenAnonymous(nil, sealed, pub, priv)
	if !ok {
		t.Fatal("sealed box does not open with the repo key")
	}
	if string(opened) != "secret123" {
		t.Errorf("sealed value = %q", opened)
	}
}

func TestGitHubListSecrets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/repo/actions/secrets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"secrets":[{"name":"DB_URL"},{"name":"API_KEY"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gh := NewGitHub("octo/repo", "ghp_x")
	gh.baseURL = srv.URL

	names, err := gh.ListSecrets()
	if err != nil {
		t.Fatalf("ListSecrets() error = %v", err)
	}
	if len(names) != 2 || names[0] != "DB_URL" || names[1] != "API_KEY" {
		t.Errorf("ListSecrets() = %v", names)
	}
}

func TestGitHubErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	gh := NewGitHub("octo/repo", "bad")
	gh.baseURL = srv.URL

	_, err := gh.ListSecrets()
	if err == nil {
		t.Fatal("ListSecrets() should fail")
	}
}

func TestCloudflarePushAndDelete(t *testing.T) {
	var gotPayload cloudflareSecretPayload
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /accounts/acc/workers/scripts/my-worker/secrets", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Write([]byte(`{"success":true,"errors":[],"result":[]}`))
	})
	mux.HandleFunc("DELETE /accounts/acc/workers/scripts/my-worker/secrets/OLD_KEY", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"errors":[],"result":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cf := NewCloudflare("acc", "my-worker", "cf_x")
	cf.baseURL = srv.URL

	if err := cf.PushSecret("API_KEY", "v"); err != nil {
		t.Fatalf("PushSecret() error = %v", err)
	}
	if gotPayload.Name != "API_KEY" || gotPayload.Text != "v" || gotPayload.Type != "secret_text" {
		t.Errorf("payload = %+v", gotPayload)
	}

	if err := cf.DeleteSecret("OLD_KEY"); err != nil {
		t.Fatalf("DeleteSecret() error = %v", err)
	}
}

func TestCloudflareAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"errors":[{"message":"unknown script"}],"result":[]}`))
	}))
	defer srv.Close()

	cf := NewCloudflare("acc", "gone", "cf_x")
	cf.baseURL = srv.URL

	if _, err := cf.ListSecrets(); err == nil {
		t.Error("ListSecrets() should surface API-level failure")
	}
}

func TestStorageRoundTrip(t *testing.T) {
	s := NewStorage()
	path := filepath.Join(t.TempDir(), "providers.enc")

	key := make([]byte, crypto.KeyLength)
	salt := make([]byte, crypto.SaltLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}

	// Missing file means no configs yet.
	configs, err := s.Load(path, key)
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if len(configs) != 0 {
		t.Errorf("Load() on missing file = %v", configs)
	}

	configs["prod-repo"] = Config{
		Type:        "github",
		ID:          "octo/repo",
		Credentials: map[string]string{"repo": "octo/repo", "token": "{{github.token}}"},
	}
	if err := s.Save(configs, path, key, salt); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load(path, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, ok := loaded["prod-repo"]
	if !ok {
		t.Fatal("Load() lost the config")
	}
	if got.Credentials["token"] != "{{github.token}}" {
		t.Errorf("credentials = %v", got.Credentials)
	}

	// Wrong key must not decrypt.
	wrong := make([]byte, crypto.KeyLength)
	if _, err := s.Load(path, wrong); err == nil {
		t.Error("Load() with wrong key should fail")
	}
}
