// Package rcon proxies admin commands to the Minecraft server console
// over the RCON protocol.
package rcon

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorcon/rcon"
)

// Console is a lazily-connected RCON client. The connection is dialed
// on first use and redialed after a failed command.
type Console struct {
	address  string
	password string
	timeout  time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	conn *rcon.Conn
}

// NewConsole builds a console from an rcon://:password@host:port URL.
func NewConsole(rawURL string, timeout time.Duration, logger *slog.Logger) (*Console, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("rcon: parse url: %w", err)
	}

	password, _ := u.User.Password()
	if password == "" {
		// Tolerate rcon://password@host form as well.
		password = u.User.Username()
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "25575"
	}

	return &Console{
		address:  host + ":" + port,
		password: password,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Send executes one console command and returns the server's response.
func (c *Console) Send(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if c.conn == nil {
		conn, err := rcon.Dial(c.address, c.password, rcon.SetDialTimeout(c.timeout), rcon.SetDeadline(c.timeout))
		if err != nil {
			return "", fmt.Errorf("rcon: dial %s: %w", c.address, err)
		}
		c.conn = conn
	}

	response, err := c.conn.Execute(command)
	if err != nil {
		// Drop the connection so the next command redials.
		_ = c.conn.Close()
		c.conn = nil
		return "", fmt.Errorf("rcon: execute: %w", err)
	}

	c.logger.Info("rcon command executed", "command", command, "response_len", len(response))
	return response, nil
}

// Close tears down the connection if one is open.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
