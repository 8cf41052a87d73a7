package sshkey

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// ErrNoAgent is returned when no ssh-agent is reachable.
var ErrNoAgent = errors.New("sshkey: ssh-agent is not running, start it with 'eval $(ssh-agent -s)'")

// Agent is a connection to the user's ssh-agent.
type Agent struct {
	client agent.Agent
	conn   net.Conn
}

// ConnectAgent dials the agent named by SSH_AUTH_SOCK.
func ConnectAgent() (*Agent, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, ErrNoAgent
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAgent, err)
	}
	return &Agent{client: agent.NewClient(conn), conn: conn}, nil
}

// Close releases the agent connection.
func (a *Agent) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// AddIdentity loads a private key into the agent. A nonzero lifetime
// makes the agent expire the key after that many seconds.
func (a *Agent) AddIdentity(privateKey, passphrase, comment string, lifetimeSecs uint32) error {
	key, err := Parse(privateKey, passphrase)
	if err != nil {
		return err
	}
	added := agent.AddedKey{
		PrivateKey:   key,
		Comment:      comment,
		LifetimeSecs: lifetimeSecs,
	}
	if err := a.client.Add(added); err != nil {
		return fmt.Errorf("sshkey: failed to add key to agent: %w", err)
	}
	return nil
}

// RemoveIdentity unloads the identity matching a private key.
func (a *Agent) RemoveIdentity(privateKey, passphrase string) error {
	key, err := Parse(privateKey, passphrase)
	if err != nil {
		return err
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return fmt.Errorf("sshkey: failed to derive public key: %w", err)
	}
	if err := a.client.Remove(signer.PublicKey()); err != nil {
		return fmt.Errorf("sshkey: failed to remove key from agent: %w", err)
	}
	return nil
}

// Identity is one key loaded in the agent.
type Identity struct {
	Type        string
	Fingerprint string
	Comment     string
}

// ListIdentities returns the keys currently loaded in the agent.
func (a *Agent) ListIdentities() ([]Identity, error) {
	keys, err := a.client.List()
	if err != nil {
		return nil, fmt.Errorf("sshkey: failed to list agent keys: %w", err)
	}

	identities := make([]Identity, 0, len(keys))
	for _, k := range keys {
		identities = append(identities, Identity{
			Type:        k.Type(),
			Fingerprint: ssh.FingerprintSHA256(k),
			Comment:     k.Comment,
		})
	}
	return identities, nil
}
