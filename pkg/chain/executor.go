package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/symbioza/bridge/pkg/llm"
	"github.com/symbioza/bridge/pkg/metrics"
	"github.com/symbioza/bridge/pkg/pricing"
	"github.com/symbioza/bridge/pkg/store"
)

// ExecutorConfig wires an Executor. Stages and Pricing are required; the
// stores must be non-nil. Metrics may be nil to disable instrumentation.
type ExecutorConfig struct {
	Stages           []Stage
	Pricing          *pricing.Table
	CostCapUSD       float64
	HistoryMaxTokens int

	History  *store.HistoryStore
	Personas *store.PersonaStore
	CostLog  *store.CostLogWriter
	Metrics  *metrics.ChainMetrics
}

// Executor orchestrates the configured stages for one request at a time.
// It holds no mutable per-request state, so any number of requests may run
// concurrently, each on its own goroutine. Per-request flow:
//
//	load persona + history → assemble all prompts → project cost →
//	run stages sequentially → append history → write cost log
//
// A budget rejection happens before any stage runs and leaves no side
// effects. A stage failure aborts the chain with no history append and no
// cost log record.
type Executor struct {
	stages    []Stage
	pricing   *pricing.Table
	projector *Projector
	builder   *Builder

	costCapUSD       float64
	historyMaxTokens int

	history  *store.HistoryStore
	personas *store.PersonaStore
	costLog  *store.CostLogWriter
	metrics  *metrics.ChainMetrics
}

// NewExecutor creates the chain executor. The stage list is fixed for the
// executor's lifetime.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if len(cfg.Stages) == 0 {
		return nil, ErrNoStages
	}
	return &Executor{
		stages:           cfg.Stages,
		pricing:          cfg.Pricing,
		projector:        NewProjector(cfg.Pricing),
		builder:          NewBuilder(),
		costCapUSD:       cfg.CostCapUSD,
		historyMaxTokens: cfg.HistoryMaxTokens,
		history:          cfg.History,
		personas:         cfg.Personas,
		costLog:          cfg.CostLog,
		metrics:          cfg.Metrics,
	}, nil
}

// Run executes the chain for one request and returns the aggregated
// response. ctx cancellation propagates into the in-flight client call;
// a cancelled chain persists nothing.
func (e *Executor) Run(ctx context.Context, req *Request) (*Response, error) {
	if strings.TrimSpace(req.UserInput) == "" {
		e.metrics.ObserveChain(metrics.OutcomeInvalid, 0)
		return nil, ErrEmptyInput
	}

	requestID := uuid.NewString()
	log := slog.With("request_id", requestID, "conversation_id", req.ConversationID)

	in := e.loadInputs(req, log)

	// Assemble every stage's prompt up front so the projector sees the
	// whole plan before the first client call.
	plans := make([]StagePlan, len(e.stages))
	for i := range e.stages {
		plans[i] = StagePlan{
			Stage:    &e.stages[i],
			Messages: e.builder.BuildStageMessages(e.stages[i].Config, in, "", i == 0),
		}
	}

	if err := e.projector.Guard(plans, in.TargetWords, e.costCapUSD); err != nil {
		if budgetErr, isBudget := err.(*BudgetError); isBudget {
			log.Info("Chain rejected by budget guard",
				"projected_usd", budgetErr.ProjectedUSD,
				"cost_cap_usd", budgetErr.CapUSD)
			e.metrics.ObserveChain(metrics.OutcomeBudgetRejected, 0)
		}
		return nil, err
	}

	calls := make(map[string]CallRecord, len(e.stages))
	totalCost := 0.0
	prevOutput := ""
	chainStart := time.Now()

	for i := range e.stages {
		stage := &e.stages[i]
		messages := e.builder.BuildStageMessages(stage.Config, in, prevOutput, i == 0)

		record, resp, err := e.runStage(ctx, stage, messages)
		if err != nil {
			log.Error("Stage failed, aborting chain",
				"role", stage.Config.Role, "model", stage.Config.Model, "error", err)
			e.metrics.ObserveChain(metrics.OutcomeFailed, 0)
			return nil, fmt.Errorf("stage %s failed: %w", stage.Config.Role, err)
		}

		calls[stage.Config.Role.String()] = *record
		totalCost += record.CostUSD
		prevOutput = resp.Text
	}

	totalLatency := time.Since(chainStart).Seconds()

	// History is appended only after every stage succeeded, so a failed
	// chain never leaves a half-written turn pair.
	if req.ConversationID != "" {
		appendErr := e.history.Append(req.ConversationID, []store.Turn{
			{Role: "user", Text: req.UserInput},
			{Role: "assistant", Text: prevOutput},
		})
		if appendErr != nil {
			e.metrics.ObserveChain(metrics.OutcomeFailed, 0)
			return nil, fmt.Errorf("failed to persist history: %w", appendErr)
		}
	}

	e.writeCostLog(log, requestID, req.ConversationID, totalCost, totalLatency, calls)
	e.metrics.ObserveChain(metrics.OutcomeCompleted, totalCost)

	log.Info("Chain completed",
		"stages", len(e.stages),
		"total_cost_usd", totalCost,
		"total_latency_s", totalLatency)

	return &Response{
		Output:   prevOutput,
		LatencyS: totalLatency,
		CostUSD:  totalCost,
		Calls:    calls,
	}, nil
}

// loadInputs reads persona and history state once; the prompt builder does
// no I/O of its own. History read failures degrade to an empty history, so
// loading never fails the request.
func (e *Executor) loadInputs(req *Request, log *slog.Logger) PromptInputs {
	in := PromptInputs{
		UserInput:   req.UserInput,
		RawHistory:  req.History,
		TargetWords: req.TargetWords(),
	}

	if req.PersonaID != "" {
		in.Persona = e.personas.Load(req.PersonaID)
	}

	if req.ConversationID != "" {
		// A conversation id wins over the free-text history block.
		in.RawHistory = ""

		loaded, err := e.history.Load(req.ConversationID)
		if err != nil {
			log.Warn("Failed to load history, continuing without it", "error", err)
		} else {
			in.Turns = store.Trim(loaded, e.historyMaxTokens)
		}
	}

	return in
}

// runStage invokes one stage's client and prices the call from the model
// the response reports. No retries: client failures abort the chain.
func (e *Executor) runStage(ctx context.Context, stage *Stage, messages []llm.Message) (*CallRecord, *llm.Response, error) {
	opts := llm.GenerateOptions{
		MaxOutputTokens: stage.Config.MaxOutputTokens,
		Temperature:     stage.Config.Temperature,
		TopP:            stage.Config.TopP,
	}

	start := time.Now()
	resp, err := stage.Client.Generate(ctx, messages, opts)
	latency := time.Since(start).Seconds()
	if err != nil {
		return nil, nil, err
	}

	model := resp.Metadata["model"]
	cost, err := e.pricing.Cost(model, resp.InputTokens, resp.OutputTokens)
	if err != nil {
		return nil, nil, err
	}

	e.metrics.ObserveStage(stage.Config.Role.String(), model, latency, cost)

	return &CallRecord{
		Model:        model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CostUSD:      cost,
		LatencyS:     latency,
	}, resp, nil
}

// writeCostLog emits the accounting record for a completed chain. Write
// failures are logged and swallowed: the reply is already earned and the
// caller should still receive it.
func (e *Executor) writeCostLog(log *slog.Logger, requestID, conversationID string, totalCost, totalLatency float64, calls map[string]CallRecord) {
	var convID *string
	if conversationID != "" {
		id := conversationID
		convID = &id
	}

	record := CostLogRecord{
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:      requestID,
		ConversationID: convID,
		TotalCostUSD:   totalCost,
		TotalLatencyS:  totalLatency,
		Calls:          calls,
	}
	if err := e.costLog.Write(record); err != nil {
		log.Warn("Failed to write cost log record", "error", err)
	}
}
