package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"secure-docchat-be/pkg/chat/history"
	"secure-docchat-be/pkg/chat/prompt"
	"secure-docchat-be/pkg/llm"
	"secure-docchat-be/pkg/safety"
	"secure-docchat-be/pkg/store"
)

// ErrSessionTerminated means the session hit the violation limit and
// refuses further questions until it is reset.
var ErrSessionTerminated = errors.New("session terminated after repeated policy violations")

// Policy messages recorded in place of real answers on a block.
const (
	MsgInputBlocked    = "Pertanyaan diblokir karena kebijakan keamanan konten."
	MsgJailbreak       = "Terdeteksi percobaan prompt injection. Pertanyaan ditolak."
	MsgOutputRetracted = "Jawaban ditarik karena melanggar kebijakan keamanan konten."
	MsgTerminated      = "Terlalu banyak pelanggaran. Sesi diakhiri."

	// MsgSafetyUnavailable covers fail-closed blocks caused by the
	// moderation service being down. Not a user violation, so the
	// counter is untouched and no turn is recorded.
	MsgSafetyUnavailable = "Pemeriksaan keamanan tidak tersedia. Pertanyaan tidak dapat diproses."
)

type Config struct {
	WindowSize     int
	ViolationLimit int
}

func DefaultConfig() Config {
	return Config{WindowSize: history.DefaultWindowSize, ViolationLimit: 3}
}

// ExecutionResult describes one completed pipeline pass. When Blocked
// is true, Answer holds the policy message that was recorded instead
// of model output.
type ExecutionResult struct {
	Answer  string
	Blocked bool
	Verdict safety.Verdict
	Chunks  []store.RetrievedChunk
}

// Retriever is the evidence stage contract the pipeline depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]store.RetrievedChunk, error)
}

// Executor runs the guarded question/answer cycle: input screening,
// evidence retrieval, generation, output screening. It mutates the
// session (turns, violation counter) in place; persisting the session
// is the caller's job.
type Executor struct {
	gate      *safety.Gate
	retriever Retriever
	generator llm.Provider
	cfg       Config
	logger    *log.Logger
}

func NewExecutor(gate *safety.Gate, retriever Retriever, generator llm.Provider, cfg Config, logger *log.Logger) *Executor {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	if cfg.ViolationLimit <= 0 {
		cfg.ViolationLimit = DefaultConfig().ViolationLimit
	}
	return &Executor{
		gate:      gate,
		retriever: retriever,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Execute answers one question within a session, streaming tokens
// through onToken as they arrive. Tokens reach the caller before the
// output check runs; a retraction is signalled by the Blocked result,
// not by withholding the stream.
func (e *Executor) Execute(ctx context.Context, session *store.Session, question string, onToken llm.TokenHandler) (*ExecutionResult, error) {
	// 1. Refuse terminated sessions outright
	if session.Terminated(e.cfg.ViolationLimit) {
		return nil, ErrSessionTerminated
	}

	// 2. Input screening
	verdict, err := e.gate.Evaluate(ctx, question, safety.RoleInput)
	if err != nil {
		if errors.Is(err, safety.ErrClassifierUnavailable) {
			e.logger.Printf("[PIPELINE] classifier unavailable, blocking input without violation: %v", err)
			return &ExecutionResult{Answer: MsgSafetyUnavailable, Blocked: true, Verdict: verdict}, nil
		}
		return nil, fmt.Errorf("input safety check: %w", err)
	}
	if !verdict.Allowed {
		session.ViolationCount++
		msg := MsgInputBlocked
		if verdict.Reason == safety.ReasonJailbreakPattern {
			msg = MsgJailbreak
		}
		if session.Terminated(e.cfg.ViolationLimit) {
			msg = msg + " " + MsgTerminated
		}
		session.AppendTurn(question, msg, true)
		e.logger.Printf("[PIPELINE] input blocked (reason=%s, violations=%d)", verdict.Reason, session.ViolationCount)
		return &ExecutionResult{Answer: msg, Blocked: true, Verdict: verdict}, nil
	}

	// 3. Evidence retrieval. Failures here are infrastructure, not
	// policy: no turn is recorded and the counter is untouched.
	chunks, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	// 4. Prompt assembly and streamed generation
	window := history.FormatWindow(session.Turns, e.cfg.WindowSize)
	promptText := prompt.NewBuilder(window, chunks, question).Build()

	fullAnswer, err := e.generator.ChatStream(ctx, []llm.Message{{Role: "user", Content: promptText}}, onToken)
	if err != nil {
		// Cancellation and generator failures leave the session as it
		// was. A partially streamed answer is never recorded.
		return nil, fmt.Errorf("generation: %w", err)
	}

	// 5. Output screening on the accumulated answer. A dead classifier
	// still retracts the streamed answer (fail closed) but does not
	// count against the user.
	outVerdict, err := e.gate.Evaluate(ctx, fullAnswer, safety.RoleOutput)
	if err != nil {
		if errors.Is(err, safety.ErrClassifierUnavailable) {
			e.logger.Printf("[PIPELINE] classifier unavailable, retracting output without violation: %v", err)
			return &ExecutionResult{Answer: MsgSafetyUnavailable, Blocked: true, Verdict: outVerdict, Chunks: chunks}, nil
		}
		return nil, fmt.Errorf("output safety check: %w", err)
	}
	if !outVerdict.Allowed {
		session.ViolationCount++
		session.AppendTurn(question, MsgOutputRetracted, true)
		e.logger.Printf("[PIPELINE] output retracted (reason=%s, violations=%d)", outVerdict.Reason, session.ViolationCount)
		return &ExecutionResult{Answer: MsgOutputRetracted, Blocked: true, Verdict: outVerdict, Chunks: chunks}, nil
	}

	// 6. Record the completed turn
	session.AppendTurn(question, fullAnswer, false)
	return &ExecutionResult{Answer: fullAnswer, Verdict: outVerdict, Chunks: chunks}, nil
}
