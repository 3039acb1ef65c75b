package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/opengaia/gaia-engine/internal/engine"
	"github.com/opengaia/gaia-engine/internal/services"
	"github.com/opengaia/gaia-engine/pkg/dialogue"
	"github.com/opengaia/gaia-engine/pkg/events"
	"github.com/opengaia/gaia-engine/pkg/state"
	"github.com/opengaia/gaia-engine/pkg/world"
)

type ConsoleConfig struct {
	BibleFile  string
	BackendURL string
	Offline    bool
	Timeout    time.Duration

	// Premise, when set, generates a fresh world from the backend instead
	// of loading BibleFile.
	Premise string
	EndGoal string
}

func main() {
	_ = godotenv.Load()

	cfg := &ConsoleConfig{
		BibleFile:  getEnv("BIBLE_FILE", "./data/echoes_of_the_deep.json"),
		BackendURL: getEnv("BACKEND_URL", "http://localhost:8000"),
		Offline:    os.Getenv("OFFLINE") != "",
		Timeout:    30 * time.Second,
		Premise:    os.Getenv("PREMISE"),
		EndGoal:    getEnv("END_GOAL", "Reach the ending"),
	}

	log := consoleLogger()

	w, err := loadOrGenerateWorld(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	session := state.NewSession()
	if err := session.LoadWorld(w); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid game bible: %v\n", err)
		os.Exit(1)
	}

	var svc services.DialogueService
	if cfg.Offline {
		svc = &scriptedService{}
	} else {
		svc = services.NewGaiaService(cfg.BackendURL, log)
	}

	bus := events.NewBus(log)
	defer bus.Close()

	controller := engine.NewController(session, svc, bus, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The controller consumes player intents off the bus; the UI consumes
	// everything the engine emits back.
	ctrlSub, ctrlUnsub := bus.Subscribe()
	defer ctrlUnsub()
	go controller.Run(ctx, ctrlSub)

	uiSub, uiUnsub := bus.Subscribe()
	defer uiUnsub()

	p := tea.NewProgram(NewConsoleUI(cfg, session, bus, uiSub),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// loadOrGenerateWorld reads the bible file, or asks the backend to generate
// one when PREMISE is set.
func loadOrGenerateWorld(cfg *ConsoleConfig, log *slog.Logger) (*world.World, error) {
	if cfg.Premise != "" {
		gen := services.NewGaiaService(cfg.BackendURL, log)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		w, err := gen.GenerateWorld(ctx, cfg.Premise, cfg.EndGoal)
		if err != nil {
			return nil, fmt.Errorf("failed to generate world: %w", err)
		}
		return w, nil
	}

	f, err := os.Open(cfg.BibleFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open game bible %s: %w", cfg.BibleFile, err)
	}
	defer f.Close()

	w, err := world.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse game bible: %w", err)
	}
	return w, nil
}

// consoleLogger keeps slog off the alternate screen. Set CONSOLE_LOG to a
// file path to capture engine logs while the UI is running.
func consoleLogger() *slog.Logger {
	if path := os.Getenv("CONSOLE_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedService drives dialogue without the backend: every exchange
// raises trust by a fixed step, and crossing the character's threshold
// convinces them and completes their first active persuasion task. Useful
// for exercising progression end to end.
type scriptedService struct{}

const scriptedTrustStep = 20

func (s *scriptedService) GenerateTurn(ctx context.Context, req *dialogue.TurnRequest) (*dialogue.TurnResponse, error) {
	trust := req.TrustLevel + scriptedTrustStep
	if trust > 100 {
		trust = 100
	}

	resp := &dialogue.TurnResponse{
		Emotion:       "neutral",
		TrustDelta:    trust - req.TrustLevel,
		NewTrustLevel: trust,
	}

	switch {
	case trust >= req.Character.TrustThreshold:
		resp.NPCResponse = req.Character.DialogueTree.Convinced
		resp.Emotion = "friendly"
		resp.IsConvinced = true
		for _, t := range req.ActiveTasks {
			resp.CompletedTaskID = t.ID
			break
		}
	case len(req.History) == 0:
		resp.NPCResponse = req.Character.DialogueTree.Greeting
	default:
		resp.NPCResponse = req.Character.DialogueTree.Cooperative
	}

	resp.PlayerChoices = []dialogue.Choice{
		{Index: 0, Text: "Appeal to their motivation.", TrustHint: scriptedTrustStep},
		{Index: 1, Text: "Show them the evidence.", TrustHint: scriptedTrustStep},
		{Index: 2, Text: "Press them directly.", TrustHint: -5},
	}
	return resp, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
