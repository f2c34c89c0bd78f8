//go:build integration

package integration

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const postgresImage = "postgres:16-alpine"

// startPostgres runs a throwaway Postgres container through the Docker CLI,
// lets Docker choose the host port, and returns a connection string and a
// function that removes the container.
func startPostgres(ctx context.Context) (string, func(), error) {
	name := "historia-it-" + uuid.New().String()[:8]

	out, err := exec.CommandContext(ctx, "docker", "run", "-d", "--rm",
		"--name", name,
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER=historia",
		"-e", "POSTGRES_PASSWORD=historia",
		"-e", "POSTGRES_DB=historia",
		postgresImage,
	).CombinedOutput()
	if err != nil {
		return "", nil, fmt.Errorf("docker run: %w\n%s", err, out)
	}
	cleanup := func() {
		exec.Command("docker", "rm", "-f", name).Run()
	}

	hostPort, err := mappedPort(ctx, name)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	connStr := fmt.Sprintf("postgres://historia:historia@%s/historia?sslmode=disable", hostPort)
	if err := waitForPostgres(ctx, connStr, 30*time.Second); err != nil {
		cleanup()
		return "", nil, err
	}
	return connStr, cleanup, nil
}

// mappedPort reads the host address Docker bound to the container's 5432.
func mappedPort(ctx context.Context, name string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", "port", name, "5432/tcp").Output()
	if err != nil {
		return "", fmt.Errorf("docker port: %w", err)
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if _, _, err := net.SplitHostPort(line); err != nil {
		return "", fmt.Errorf("unexpected docker port output %q", line)
	}
	return line, nil
}

// waitForPostgres dials until the server answers a query or the timeout
// passes. The image restarts once after initdb, so an open port alone
// proves nothing.
func waitForPostgres(ctx context.Context, connStr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	var lastErr error
	for {
		conn, err := pgx.Connect(ctx, connStr)
		if err == nil {
			var one int
			err = conn.QueryRow(ctx, "SELECT 1").Scan(&one)
			conn.Close(ctx)
			if err == nil {
				return nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres not ready after %v: %w", timeout, lastErr)
		case <-tick.C:
		}
	}
}
