package service

import (
	"context"
	"log"

	"secure-docchat-be/internal/dto"
	"secure-docchat-be/internal/repository/memory"
	"secure-docchat-be/pkg/chat/pipeline"
	"secure-docchat-be/pkg/events"
	"secure-docchat-be/pkg/llm"
	pkgNats "secure-docchat-be/pkg/nats"
	"secure-docchat-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// excerptLen bounds how much chunk text leaks back in source citations.
const excerptLen = 200

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error)
	ResetSession(ctx context.Context, sessionId uuid.UUID) (*dto.ResetSessionResponse, error)
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	AskStream(ctx context.Context, sessionId uuid.UUID, question string, onToken llm.TokenHandler) (*dto.AskResponse, error)
}

type chatService struct {
	sessionRepo    *memory.SessionRepository
	executor       *pipeline.Executor
	cfg            pipeline.Config
	eventPublisher *pkgNats.Publisher
}

func NewChatService(
	sessionRepo *memory.SessionRepository,
	executor *pipeline.Executor,
	cfg pipeline.Config,
	eventPublisher *pkgNats.Publisher,
) IChatService {
	if cfg.ViolationLimit <= 0 {
		cfg.ViolationLimit = pipeline.DefaultConfig().ViolationLimit
	}
	return &chatService{
		sessionRepo:    sessionRepo,
		executor:       executor,
		cfg:            cfg,
		eventPublisher: eventPublisher,
	}
}

func (cs *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	sessionId := uuid.New()
	cs.sessionRepo.Save(&store.Session{ID: sessionId.String()})
	return &dto.CreateSessionResponse{SessionId: sessionId}, nil
}

func (cs *chatService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error) {
	session, found := cs.sessionRepo.Get(sessionId.String())
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	turns := make([]dto.TurnDTO, 0, len(session.Turns))
	for _, turn := range session.Turns {
		turns = append(turns, dto.TurnDTO{
			Question: turn.Question,
			Answer:   turn.Answer,
			Blocked:  turn.Blocked,
		})
	}

	return &dto.SessionHistoryResponse{
		SessionId:      sessionId,
		Turns:          turns,
		ViolationCount: session.ViolationCount,
		Terminated:     session.Terminated(cs.cfg.ViolationLimit),
	}, nil
}

// ResetSession clears the conversation and the violation counter, the
// only way out of a terminated session.
func (cs *chatService) ResetSession(ctx context.Context, sessionId uuid.UUID) (*dto.ResetSessionResponse, error) {
	cs.sessionRepo.Delete(sessionId.String())
	cs.sessionRepo.Save(&store.Session{ID: sessionId.String()})
	return &dto.ResetSessionResponse{SessionId: sessionId}, nil
}

func (cs *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	discard := func(string) error { return nil }
	return cs.AskStream(ctx, req.SessionId, req.Question, discard)
}

// AskStream runs one guarded question/answer cycle, forwarding tokens
// through onToken as they arrive. The returned response is the final
// word: a Blocked response after streamed tokens means the answer was
// retracted and the caller must discard what it showed.
func (cs *chatService) AskStream(ctx context.Context, sessionId uuid.UUID, question string, onToken llm.TokenHandler) (*dto.AskResponse, error) {
	session, found := cs.sessionRepo.Get(sessionId.String())
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	wasTerminated := session.Terminated(cs.cfg.ViolationLimit)

	result, err := cs.executor.Execute(ctx, session, question, onToken)
	if err != nil {
		return nil, err
	}

	cs.sessionRepo.Save(session)

	terminated := session.Terminated(cs.cfg.ViolationLimit)
	if terminated && !wasTerminated {
		cs.publishTerminated(ctx, sessionId, session.ViolationCount)
	}

	resp := &dto.AskResponse{
		Answer:         result.Answer,
		Blocked:        result.Blocked,
		ViolationCount: session.ViolationCount,
		Terminated:     terminated,
		Sources:        toSourceDTOs(result.Chunks),
	}
	if result.Blocked {
		resp.BlockReason = string(result.Verdict.Reason)
	}
	return resp, nil
}

func (cs *chatService) publishTerminated(ctx context.Context, sessionId uuid.UUID, violations int) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, events.NewSessionTerminated(sessionId.String(), violations)); err != nil {
		log.Printf("[WARN] Failed to publish session termination event: %v", err)
	}
}

func toSourceDTOs(chunks []store.RetrievedChunk) []dto.SourceDTO {
	sources := make([]dto.SourceDTO, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, dto.SourceDTO{
			ChunkId: chunk.ID,
			Score:   chunk.Score,
			Page:    pageFromSource(chunk.Source),
			Excerpt: excerpt(chunk.Text),
		})
	}
	return sources
}

// pageFromSource digs the page number out of chunk metadata, which
// arrives as float64 after a JSON round-trip through the database.
func pageFromSource(source map[string]interface{}) int {
	switch v := source["page"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLen {
		return text
	}
	return string(runes[:excerptLen]) + "..."
}
