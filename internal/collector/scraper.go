package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"InsiderWatch/internal/model"
)

// ScriptRunner runs an external data script and returns its stdout.
type ScriptRunner struct {
	Command string
	Args    []string
	Dir     string
}

// Run executes the script with extra appended to the configured arguments.
// A non-zero exit returns an error that carries the script's stderr.
func (r *ScriptRunner) Run(ctx context.Context, extra ...string) ([]byte, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("script runner: no command configured")
	}
	args := append(append([]string{}, r.Args...), extra...)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("run %s: %w", r.Command, ctx.Err())
		}
		return nil, fmt.Errorf("run %s: %w: %s", r.Command, err, truncate(strings.TrimSpace(stderr.String()), 512))
	}
	if stderr.Len() > 0 {
		log.Debug().Str("command", r.Command).Str("stderr", truncate(stderr.String(), 512)).Msg("script wrote to stderr")
	}
	return stdout.Bytes(), nil
}

// ScraperSource implements InsiderSource by running the insider-trade
// scraper with --ticker and decoding the JSON array it prints.
type ScraperSource struct {
	Runner *ScriptRunner
}

// NewScraperSource creates a source backed by the given command line.
func NewScraperSource(command string, args ...string) *ScraperSource {
	return &ScraperSource{Runner: &ScriptRunner{Command: command, Args: args}}
}

func (s *ScraperSource) Name() string { return "scraper" }

func (s *ScraperSource) FetchPurchases(ctx context.Context, ticker string) ([]model.PurchaseRecord, error) {
	symbol, err := model.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	out, err := s.Runner.Run(ctx, "--ticker", symbol)
	if err != nil {
		return nil, fmt.Errorf("insider scraper %s: %w", ticker, err)
	}
	return decodePurchases(out)
}

func decodePurchases(data []byte) ([]model.PurchaseRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var records []model.PurchaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	return records, nil
}
