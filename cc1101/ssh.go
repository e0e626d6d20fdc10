package cc1101

import (
	"io"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHLink is a duplex line stream to a radio gateway reachable over SSH:
// the remote shell is attached straight to the gateway console, so lines
// written here come out of the radio on the far side.
type SSHLink struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
	stderr  io.Reader
}

// SSHLinkConfig describes how to reach the gateway host.
type SSHLinkConfig struct {
	// Addr is the host:port of the gateway box.
	Addr string

	// User and Password authenticate the session.
	User     string
	Password string

	// Command is run on the remote side to attach to the gateway console.
	// Empty requests an interactive shell.
	Command string

	// Timeout bounds the TCP dial.
	Timeout time.Duration

	// HostKeyCallback verifies the remote host key. Nil accepts any key,
	// which is only appropriate on closed bench networks.
	HostKeyCallback ssh.HostKeyCallback
}

// DialSSHLink connects to a gateway host and attaches to its console.
func DialSSHLink(config *SSHLinkConfig) (*SSHLink, error) {
	hostKey := config.HostKeyCallback
	if hostKey == nil {
		hostKey = ssh.InsecureIgnoreHostKey()
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientConfig := &ssh.ClientConfig{
		User: config.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(config.Password),
		},
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}

	client, err := ssh.Dial("tcp", config.Addr, clientConfig)
	if err != nil {
		return nil, WrapError(ErrLink, "dial "+config.Addr, err)
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, WrapError(ErrLink, "open session", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, WrapError(ErrLink, "stdin pipe", err)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		stdin.Close()
		session.Close()
		client.Close()
		return nil, WrapError(ErrLink, "stdout pipe", err)
	}

	stderr, err := session.StderrPipe()
	if err != nil {
		stdin.Close()
		session.Close()
		client.Close()
		return nil, WrapError(ErrLink, "stderr pipe", err)
	}

	if config.Command != "" {
		err = session.Start(config.Command)
	} else {
		err = session.Shell()
	}
	if err != nil {
		stdin.Close()
		session.Close()
		client.Close()
		return nil, WrapError(ErrLink, "attach console", err)
	}

	return &SSHLink{
		client:  client,
		session: session,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}, nil
}

func (l *SSHLink) Read(p []byte) (int, error) {
	return l.stdout.Read(p)
}

func (l *SSHLink) Write(p []byte) (int, error) {
	return l.stdin.Write(p)
}

// Stderr returns the stderr stream for monitoring remote console output.
func (l *SSHLink) Stderr() io.Reader {
	return l.stderr
}

// Close tears down the session and connection. Any blocked read returns,
// which ends the receive loop.
func (l *SSHLink) Close() error {
	var errs []error

	if l.stdin != nil {
		if err := l.stdin.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if l.session != nil {
		if err := l.session.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if l.client != nil {
		if err := l.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0] // Return first error
	}

	return nil
}
