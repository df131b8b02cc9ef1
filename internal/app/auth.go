package app

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"harness/internal/executor"
	"harness/internal/harnesserr"
	"harness/internal/services"
	"harness/pkg/logging"
)

// SSHAgentAuthProvider resolves remote service authentication from the
// user's running ssh-agent and ~/.ssh/known_hosts, the same credential
// sources the `ssh` binary itself uses — no separate credential store for
// this daemon to manage.
type SSHAgentAuthProvider struct {
	KnownHostsPath string
}

// NewSSHAgentAuthProvider returns a provider reading known_hosts from the
// invoking user's home directory. If the home directory can't be
// determined, the provider has no known_hosts path and its AuthFor fails
// with a ConfigError.
func NewSSHAgentAuthProvider() *SSHAgentAuthProvider {
	home, err := os.UserHomeDir()
	if err != nil {
		return &SSHAgentAuthProvider{}
	}
	return &SSHAgentAuthProvider{KnownHostsPath: filepath.Join(home, ".ssh", "known_hosts")}
}

// AuthFor implements services.AuthProvider.
func (p *SSHAgentAuthProvider) AuthFor(spec services.RemoteSpec) (executor.RemoteAuth, error) {
	actor := fmt.Sprintf("%s@%s", spec.User, spec.Host)
	fields := map[string]string{"host": spec.Host, "knownHostID": spec.KnownHostID}

	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		logging.Audit("remote-ssh-auth", actor, "failed", fields)
		return executor.RemoteAuth{}, harnesserr.NewConfigError("SSH_AUTH_SOCK not set; no ssh-agent to authenticate remote service " + spec.Host)
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		logging.Audit("remote-ssh-auth", actor, "failed", fields)
		return executor.RemoteAuth{}, fmt.Errorf("dial ssh-agent: %w", err)
	}
	agentClient := agent.NewClient(conn)

	hostKey, err := p.hostKeyCallback()
	if err != nil {
		logging.Audit("remote-ssh-auth", actor, "failed", fields)
		return executor.RemoteAuth{}, err
	}

	logging.Audit("remote-ssh-auth", actor, "resolved", fields)
	return executor.RemoteAuth{
		Methods: []ssh.AuthMethod{ssh.PublicKeysCallback(agentClient.Signers)},
		HostKey: hostKey,
	}, nil
}

func (p *SSHAgentAuthProvider) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if p.KnownHostsPath == "" {
		return nil, harnesserr.NewConfigError("no known_hosts path available to verify remote host keys")
	}
	cb, err := knownhosts.New(p.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts at %s: %w", p.KnownHostsPath, err)
	}
	return cb, nil
}
