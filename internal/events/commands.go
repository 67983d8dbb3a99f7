package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/mqtt"
	"github.com/nerrad567/broadcast-scenes/internal/layout"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// Command actions.
const (
	ActionGenerate = "generate"
	ActionCleanup  = "cleanup"
)

// TriggerMQTT is recorded as the trigger of runs started by a command.
const TriggerMQTT = "mqtt"

// commandQoS is the subscription QoS for commands.
const commandQoS = 1

// ErrInvalidCommand is returned for payloads that are not a known command.
var ErrInvalidCommand = errors.New("events: invalid command")

// Subscriber registers topic handlers. *mqtt.Client implements it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Generator runs batches. *scenes.Engine implements it.
type Generator interface {
	GenerateAllScenes(ctx context.Context, opts scenes.GenerateOptions) (*scenes.Report, error)
	DeleteGeneratedScenes(ctx context.Context) scenes.DeleteReport
}

// Command is the payload of broadcast/command/generation.
type Command struct {
	Action string   `json:"action"`
	Types  []string `json:"types,omitempty"`
}

// CommandListener starts engine runs from MQTT commands. Each command runs
// on its own goroutine so the MQTT client keeps delivering; the engine
// rejects overlapping generation runs itself.
type CommandListener struct {
	gen    Generator
	logger Logger

	mu      sync.Mutex
	ctx     context.Context //nolint:containedctx // base context for command goroutines
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

// NewCommandListener creates a listener for the given engine.
func NewCommandListener(gen Generator) *CommandListener {
	return &CommandListener{gen: gen, logger: noopLogger{}}
}

// SetLogger sets the logger for the listener.
func (l *CommandListener) SetLogger(logger Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Start subscribes to the command topic. ctx bounds the commands started
// afterwards.
func (l *CommandListener) Start(ctx context.Context, sub Subscriber) error {
	l.mu.Lock()
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.stopped = false
	l.mu.Unlock()

	topic := mqtt.Topics{}.GenerationCommand()
	if err := sub.Subscribe(topic, commandQoS, l.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	l.logger.Info("listening for generation commands", "topic", topic)
	return nil
}

// Stop cancels the base context and waits for running commands. A batch
// already inside the engine still runs to completion.
func (l *CommandListener) Stop() {
	l.mu.Lock()
	l.stopped = true
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// HandleMessage is the mqtt.MessageHandler for the command topic.
func (l *CommandListener) HandleMessage(topic string, payload []byte) error {
	cmd, opts, err := ParseCommand(payload)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.stopped || l.ctx == nil {
		l.mu.Unlock()
		return nil
	}
	ctx := l.ctx
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		l.run(ctx, cmd.Action, opts)
	}()
	return nil
}

func (l *CommandListener) run(ctx context.Context, action string, opts scenes.GenerateOptions) {
	switch action {
	case ActionGenerate:
		report, err := l.gen.GenerateAllScenes(ctx, opts)
		if err != nil {
			l.logger.Warn("generation command rejected", "error", err)
			return
		}
		l.logger.Info("generation command complete", "run_id", report.RunID, "created", report.Summary.Created)
	case ActionCleanup:
		report := l.gen.DeleteGeneratedScenes(ctx)
		l.logger.Info("cleanup command complete", "deleted", len(report.Deleted), "failed", len(report.Failed))
	}
}

// ParseCommand decodes and validates a command payload.
func ParseCommand(payload []byte) (Command, scenes.GenerateOptions, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, scenes.GenerateOptions{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	opts := scenes.GenerateOptions{Trigger: TriggerMQTT}
	switch cmd.Action {
	case ActionGenerate:
		types, err := layout.ParseFamilies(cmd.Types)
		if err != nil {
			return Command{}, scenes.GenerateOptions{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		opts.Types = types
	case ActionCleanup:
		if len(cmd.Types) > 0 {
			return Command{}, scenes.GenerateOptions{}, fmt.Errorf("%w: cleanup takes no types", ErrInvalidCommand)
		}
	default:
		return Command{}, scenes.GenerateOptions{}, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, cmd.Action)
	}
	return cmd, opts, nil
}
