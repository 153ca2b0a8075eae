// Command cuecheck shows how a roleplay reply is split into stage-direction
// cues and which coaching signals they produce.
//
// Usage:
//
//	cuecheck "*leans back* That sounds expensive."
//	echo "*nods*" | cuecheck
//	cuecheck -live -message "Can I walk you through the data?"
//
// With -live the message is sent as a rep turn through the configured
// provider and the stakeholder's reply is inspected.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"github.com/wolfman30/salescoach-api/cmd/mainconfig"
	"github.com/wolfman30/salescoach-api/internal/coach"
	appconfig "github.com/wolfman30/salescoach-api/internal/config"
	"github.com/wolfman30/salescoach-api/internal/cues"
	"github.com/wolfman30/salescoach-api/internal/kv"
	"github.com/wolfman30/salescoach-api/internal/llm"
	"github.com/wolfman30/salescoach-api/internal/session"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

type report struct {
	Reply    string         `json:"reply"`
	Rendered string         `json:"rendered"`
	Segments []cues.Segment `json:"segments"`
	Signals  []cues.Signal  `json:"signals"`
}

func inspect(text string) report {
	segments := cues.Tokenize(text)
	if segments == nil {
		segments = []cues.Segment{}
	}
	return report{
		Reply:    text,
		Rendered: cues.Render(segments),
		Segments: segments,
		Signals:  cues.ExtractSignals(text),
	}
}

func main() {
	live := flag.Bool("live", false, "generate the reply through the configured provider")
	message := flag.String("message", "Thanks for making time. Can I share what we're seeing with our new data?", "rep turn sent in -live mode")
	scenario := flag.String("scenario", "cuecheck", "scenario id used in -live mode")
	difficulty := flag.String("difficulty", "", "roleplay difficulty used in -live mode")
	flag.Parse()

	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.LLMTimeout+10*time.Second)
	defer cancel()

	var (
		rep report
		err error
	)
	if *live {
		var client llm.Client
		client, err = buildClient(ctx, cfg, logger)
		if err == nil {
			rep, err = liveTurn(ctx, client, *scenario, *difficulty, *message)
		}
	} else {
		var text string
		text, err = readInput(flag.Args(), os.Stdin)
		rep = inspect(text)
	}
	if err != nil {
		logger.Error("cuecheck failed", "error", err)
		os.Exit(1)
	}
	if err := writeReport(os.Stdout, rep); err != nil {
		logger.Error("write report", "error", err)
		os.Exit(1)
	}
}

// readInput joins the positional arguments, or reads stdin when there are
// none.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", errors.New("no reply text given")
	}
	return text, nil
}

func buildClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	if !cfg.AIConfigured() {
		return nil, fmt.Errorf("provider %q has no credentials configured", cfg.LLMProvider)
	}
	awsCfg := aws.Config{}
	if mainconfig.NeedsAWS(cfg) {
		var err error
		if awsCfg, err = mainconfig.LoadAWSConfig(ctx, cfg); err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
	}
	return llm.NewFromConfig(ctx, cfg, awsCfg, nil, logger)
}

// liveTurn runs a one-turn roleplay against an in-memory session and
// inspects the stakeholder's reply.
func liveTurn(ctx context.Context, client llm.Client, scenarioID, difficulty, message string) (report, error) {
	sessions := session.NewReducer(kv.NewMemoryStore(time.Minute), session.WithLogger(logging.Discard()))
	svc := coach.NewService(client, sessions, coach.WithLogger(logging.Discard()))

	const sid = "sess_cuecheck"
	if _, err := svc.RoleplayStart(ctx, sid, coach.RoleplayStartRequest{ScenarioID: scenarioID, Difficulty: difficulty}); err != nil {
		return report{}, fmt.Errorf("start roleplay: %w", err)
	}
	if err := sessions.Flush(ctx); err != nil {
		return report{}, fmt.Errorf("flush session: %w", err)
	}
	resp, err := svc.RoleplayRespond(ctx, sid, coach.RoleplayRespondRequest{Message: message})
	if err != nil {
		return report{}, fmt.Errorf("roleplay respond: %w", err)
	}
	rep := inspect(resp.Reply)
	rep.Signals = resp.Signals
	return rep, nil
}

func writeReport(w io.Writer, rep report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
