/*
File Name:  ControlClient.go
Copyright:  2024 Hearthmesh Contributors

Cooperative control-channel client for the embedded proxy (§4.5.1 "Bootstrap
polling", "Foreground recovery"). The control channel is a line-oriented
text protocol: AUTHENTICATE with a cookie-hex credential, then GETINFO
status/bootstrap-phase, parsing PROGRESS=/SUMMARY= tokens out of the reply.
Grounded on the teacher's line-based Commands.go console parser (split on
whitespace, dispatch by leading token) generalized to a request/reply client
instead of a command dispatcher.
*/

package overlay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Control-channel timing (§4.5.1, §5 "Timeouts").
const (
	ControlCommandTimeout     = 3 * time.Second
	BootstrapPollInterval     = 1 * time.Second
	BootstrapPollPerIteration = 2 * time.Second
	BootstrapPollDeadline     = 75 * time.Second
)

// ErrControlChannelUnresponsive is returned when the control channel does
// not answer within its timeout (§4.5.1 "Foreground recovery").
var ErrControlChannelUnresponsive = errors.New("control channel unresponsive")

// ControlClient is a minimal client for the proxy's local control protocol.
type ControlClient struct {
	conn   net.Conn
	reader *bufio.Reader
}

// DialControl opens the control channel and authenticates using the
// cookie-hex contents of cookieFilePath (§4.5.1).
func DialControl(ctx context.Context, dialer Dialer, address, cookieFilePath string) (*ControlClient, error) {
	cookie, err := os.ReadFile(cookieFilePath)
	if err != nil {
		return nil, fmt.Errorf("read control cookie: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, ControlCommandTimeout)
	defer cancel()
	conn, err := dialer.DialContext(dialCtx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial control channel: %w", err)
	}

	c := &ControlClient{conn: conn, reader: bufio.NewReader(conn)}

	cookieHex := strings.TrimSpace(string(cookie))
	if err := c.command(fmt.Sprintf("AUTHENTICATE %s", cookieHex)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("authenticate control channel: %w", err)
	}

	return c, nil
}

// Close closes the underlying connection.
func (c *ControlClient) Close() error { return c.conn.Close() }

// command sends a single line and expects a reply starting with "250".
func (c *ControlClient) command(line string) error {
	c.conn.SetDeadline(time.Now().Add(ControlCommandTimeout))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", line); err != nil {
		return err
	}

	reply, err := c.reader.ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "250") {
		return fmt.Errorf("control command %q rejected: %s", line, strings.TrimSpace(reply))
	}
	return nil
}

// BootstrapPhase is the parsed GETINFO status/bootstrap-phase reply.
type BootstrapPhase struct {
	Percent int
	Summary string
}

// GetBootstrapPhase issues "GETINFO status/bootstrap-phase" and parses the
// PROGRESS= and SUMMARY= tokens from the reply line (§4.5.1).
func (c *ControlClient) GetBootstrapPhase() (BootstrapPhase, error) {
	c.conn.SetDeadline(time.Now().Add(BootstrapPollPerIteration))
	if _, err := fmt.Fprintf(c.conn, "GETINFO status/bootstrap-phase\r\n"); err != nil {
		return BootstrapPhase{}, err
	}

	reply, err := c.reader.ReadString('\n')
	if err != nil {
		return BootstrapPhase{}, err
	}

	// drain the trailing "250 OK" line
	if strings.Contains(reply, "=") {
		if _, err := c.reader.ReadString('\n'); err != nil {
			return BootstrapPhase{}, err
		}
	}

	return parseBootstrapPhase(reply)
}

func parseBootstrapPhase(line string) (BootstrapPhase, error) {
	phase := BootstrapPhase{}
	fields := strings.Fields(line)
	for _, field := range fields {
		switch {
		case strings.HasPrefix(field, "PROGRESS="):
			n, err := strconv.Atoi(strings.TrimPrefix(field, "PROGRESS="))
			if err != nil {
				return BootstrapPhase{}, fmt.Errorf("parse PROGRESS: %w", err)
			}
			phase.Percent = n
		}
	}
	if i := strings.Index(line, "SUMMARY="); i >= 0 {
		rest := line[i+len("SUMMARY="):]
		if strings.HasPrefix(rest, `"`) {
			rest = rest[1:]
			if j := strings.IndexByte(rest, '"'); j >= 0 {
				rest = rest[:j]
			}
		} else if f := strings.Fields(rest); len(f) > 0 {
			rest = f[0]
		}
		phase.Summary = strings.TrimSpace(rest)
	}
	return phase, nil
}

// SignalActive issues the ACTIVE control signal on foreground/path-change
// recovery (§4.5.1 "Foreground recovery").
func (c *ControlClient) SignalActive() error {
	return c.command("SIGNAL ACTIVE")
}

// SignalShutdown issues SHUTDOWN as part of the restart sequence.
func (c *ControlClient) SignalShutdown() error {
	return c.command("SIGNAL SHUTDOWN")
}

// PollBootstrap polls GetBootstrapPhase every BootstrapPollInterval,
// reporting each observation to onProgress, until percent reaches 100 or
// BootstrapPollDeadline elapses (§4.5.1).
func PollBootstrap(ctx context.Context, c *ControlClient, onProgress func(BootstrapPhase)) error {
	deadline := time.Now().Add(BootstrapPollDeadline)

	for time.Now().Before(deadline) {
		phase, err := c.GetBootstrapPhase()
		if err == nil {
			onProgress(phase)
			if phase.Percent >= 100 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(BootstrapPollInterval):
		}
	}

	return ErrProxyBootstrapTimeout
}
