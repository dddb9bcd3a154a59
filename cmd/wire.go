package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	anthropicllm "github.com/bnema/taskmate/internal/adapters/llm/anthropic"
	openaillm "github.com/bnema/taskmate/internal/adapters/llm/openai"
	"github.com/bnema/taskmate/internal/adapters/metrics"
	taskboard "github.com/bnema/taskmate/internal/adapters/render/tasks"
	"github.com/bnema/taskmate/internal/adapters/repo/sqlite"
	tomlrepo "github.com/bnema/taskmate/internal/adapters/repo/toml"
	chainstore "github.com/bnema/taskmate/internal/adapters/secrets/chain"
	"github.com/bnema/taskmate/internal/adapters/session/memory"
	"github.com/bnema/taskmate/internal/application"
	"github.com/bnema/taskmate/internal/config"
	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/logging"
	"github.com/bnema/taskmate/internal/ports"
)

const (
	openAIKeySecret    = "llm/openai/api_key"
	anthropicKeySecret = "llm/anthropic/api_key"
)

var apiKeyEnvNames = map[string]string{
	openAIKeySecret:    "OPENAI_API_KEY",
	anthropicKeySecret: "ANTHROPIC_API_KEY",
}

type app struct {
	cfg           config.Config
	logger        *zap.Logger
	metrics       *metrics.PrometheusRecorder
	taskRepo      *sqlite.Repository
	roster        *tomlrepo.Repository
	secretStore   ports.SecretStore
	sessionStore  *memory.Store
	tasks         *application.TaskService
	confirm       *application.ConfirmationService
	sessions      *application.SessionService
	assistant     *application.AssistantService
	meetings      *application.MeetingService
	boardRenderer func([]domain.Task, taskboard.RenderOptions) (string, error)
	now           func() time.Time
}

func wireApp(ctx context.Context, configFile string) (*app, error) {
	v, err := config.New(configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	resolver, err := newResolver(cfg.Resolver)
	if err != nil {
		return nil, err
	}

	clock := ports.SystemClock{}
	roster, err := tomlrepo.NewRepository(v, clock)
	if err != nil {
		return nil, fmt.Errorf("wire roster repository: %w", err)
	}

	taskRepo, err := sqlite.Open(cfg.Tasks.DBPath)
	if err != nil {
		return nil, fmt.Errorf("wire task repository: %w", err)
	}

	secretStore, err := chainstore.NewEnvFirstWithFileFallback(apiKeyEnvNames, cfg.Secrets.Dir)
	if err != nil {
		_ = taskRepo.Close()
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	recorder := metrics.NewPrometheusRecorder()
	opts := []application.Option{application.WithLogger(logger), application.WithMetrics(recorder)}

	priority, err := domain.ParsePriority(cfg.Tasks.DefaultPriority)
	if err != nil {
		_ = taskRepo.Close()
		return nil, fmt.Errorf("tasks.default_priority: %w", err)
	}

	sessionStore := memory.NewStore(clock)
	tasks := application.NewTaskService(taskRepo, clock, application.TaskDefaults{Priority: priority, DueIn: cfg.DefaultDue()}, opts...)
	confirm := application.NewConfirmationService(resolver, roster, sessionStore, tasks, clock, opts...)

	model, err := newChatModel(ctx, cfg.LLM, secretStore)
	if err != nil {
		_ = taskRepo.Close()
		return nil, err
	}
	if model == nil {
		logger.Debug("no language model api key configured", zap.String("provider", cfg.LLM.Provider))
	}
	settings := application.AssistantSettings{
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		HistoryTurns: cfg.LLM.HistoryTurns,
	}

	return &app{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		taskRepo:      taskRepo,
		roster:        roster,
		secretStore:   secretStore,
		sessionStore:  sessionStore,
		tasks:         tasks,
		confirm:       confirm,
		sessions:      application.NewSessionService(sessionStore, confirm, cfg.Sessions.IdleTimeout, opts...),
		assistant:     application.NewAssistantService(model, tasks, confirm, sessionStore, clock, settings, opts...),
		meetings:      application.NewMeetingService(model, tasks, confirm, sessionStore, clock, settings, opts...),
		boardRenderer: taskboard.Render,
		now:           time.Now,
	}, nil
}

func (a *app) close() {
	if a == nil {
		return
	}
	if a.taskRepo != nil {
		_ = a.taskRepo.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newResolver(cfg config.ResolverConfig) (*application.Resolver, error) {
	matcher, err := application.NewMatcher(application.MetricName(cfg.Metric))
	if err != nil {
		return nil, fmt.Errorf("resolver.metric: %w", err)
	}
	policy, err := application.NewPolicy(application.Thresholds{Accept: cfg.AcceptAbove, Confirm: cfg.ConfirmAbove})
	if err != nil {
		return nil, err
	}
	return application.NewResolver(matcher, policy), nil
}

// newChatModel returns nil without error when no API key is stored, so the
// commands that never talk to a model keep working.
func newChatModel(ctx context.Context, cfg config.LLMConfig, secrets ports.SecretStore) (ports.ChatModel, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = config.ProviderOpenAI
	}

	key, err := secrets.Get(ctx, apiKeySecret(provider))
	if errors.Is(err, domain.ErrSecretNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s api key: %w", provider, err)
	}

	switch provider {
	case config.ProviderAnthropic:
		return anthropicllm.NewClient(key, cfg.Model), nil
	default:
		return openaillm.NewClient(key, cfg.Model), nil
	}
}

func apiKeySecret(provider string) string {
	if provider == config.ProviderAnthropic {
		return anthropicKeySecret
	}
	return openAIKeySecret
}
