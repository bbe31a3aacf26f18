package gateway

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// cliBackend shells out to a locally installed model CLI that reads the
// prompt on stdin and prints the completion on stdout.
type cliBackend struct {
	cliPath string
}

func newCLIBackend(cliPath string) *cliBackend {
	return &cliBackend{cliPath: cliPath}
}

func (b *cliBackend) Name() string { return "cli" }

func (b *cliBackend) Open(ctx context.Context, model string) (Model, error) {
	path, err := exec.LookPath(b.cliPath)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", b.cliPath, err)
	}
	return &cliModel{path: path, id: model}, nil
}

type cliModel struct {
	path string
	id   string
}

func (m *cliModel) ID() string { return m.id }

func (m *cliModel) Generate(ctx context.Context, prompt string) (*Completion, error) {
	var args []string
	if m.id != "" && m.id != "cli" {
		args = append(args, "--model", m.id)
	}
	cmd := exec.CommandContext(ctx, m.path, args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("model CLI error: %w\nstderr: %s", err, stderr.String())
	}

	return &Completion{
		Text:  strings.TrimSpace(stdout.String()),
		Model: m.id,
	}, nil
}
