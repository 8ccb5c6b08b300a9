package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"secure-docchat-be/internal/dto"
	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/model"
	"secure-docchat-be/internal/repository/memory"
	"secure-docchat-be/internal/repository/specification"
	"secure-docchat-be/internal/repository/unitofwork"
	"secure-docchat-be/pkg/docproc"
	"secure-docchat-be/pkg/embedding"
	"secure-docchat-be/pkg/events"
	pkgNats "secure-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// progressEvery controls how often embedding progress events go out.
const progressEvery = 10

type IIndexerService interface {
	Consume(ctx context.Context) error
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	extractor         *docproc.Extractor
	sessionRepo       *memory.SessionRepository
	eventPublisher    *pkgNats.Publisher
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	sessionRepo *memory.SessionRepository,
	eventPublisher *pkgNats.Publisher,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		extractor:         docproc.NewExtractor(),
		sessionRepo:       sessionRepo,
		eventPublisher:    eventPublisher,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal indexing message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing document %s (%s)", payload.DocumentId, payload.FilePath)

	uow := is.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to load document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	document.Status = model.DocumentStatusProcessing
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to mark document processing: %v", err)
		msg.Nack()
		return
	}

	// 1. Extract text page by page. A broken PDF will stay broken, so
	// extraction failures are permanent: mark failed and Ack.
	is.publishEvent(ctx, events.NewIndexProgress(document.Id.String(), "extracting", 0, 0))
	pages, err := is.extractor.ExtractPages(payload.FilePath)
	if err != nil {
		is.markFailed(ctx, uow, document, "text extraction failed: "+err.Error())
		msg.Ack()
		return
	}

	// 2. Split into overlapping chunks
	chunks := docproc.ChunkPages(pages, docproc.DefaultChunkSize, docproc.DefaultOverlap)
	log.Printf("[INFO] Document %s: %d pages, %d chunks", document.Id, len(pages), len(chunks))
	if len(chunks) == 0 {
		is.markFailed(ctx, uow, document, "document produced no text chunks")
		msg.Ack()
		return
	}

	// 3. Stage the new collection as building. Queries keep hitting the
	// old active collection until the swap at the end.
	collection := &entity.Collection{
		Id:         uuid.New(),
		DocumentId: document.Id,
		Status:     model.CollectionStatusBuilding,
		CreatedAt:  time.Now(),
	}
	if err := uow.CollectionRepository().Create(ctx, collection); err != nil {
		log.Printf("[ERROR] Failed to create collection: %v", err)
		msg.Nack()
		return
	}

	// 4. Embed every chunk. Embedding providers flake, so errors here
	// are retriable: mark the staged collection failed and Nack.
	newChunks := make([]*entity.Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := is.embeddingProvider.Generate(chunk.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", i, document.Id, err)
			collection.Status = model.CollectionStatusFailed
			if uerr := uow.CollectionRepository().Update(ctx, collection); uerr != nil {
				log.Printf("[ERROR] Failed to mark collection failed: %v", uerr)
			}
			msg.Nack()
			return
		}

		newChunks = append(newChunks, &entity.Chunk{
			Id:             uuid.New(),
			CollectionId:   collection.Id,
			Document:       chunk.Text,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     chunk.Ordinal,
			Metadata: map[string]interface{}{
				"page": chunk.Page,
			},
			CreatedAt: time.Now(),
		})

		if (i+1)%progressEvery == 0 || i+1 == len(chunks) {
			is.publishEvent(ctx, events.NewIndexProgress(document.Id.String(), "embedding", i+1, len(chunks)))
		}
	}

	// 5. Persist chunks and swap the active collection atomically
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		log.Printf("[ERROR] Failed to create chunks: %v", err)
		msg.Nack()
		return
	}

	collection.ChunkCount = len(newChunks)
	if err := uow.CollectionRepository().Update(ctx, collection); err != nil {
		log.Printf("[ERROR] Failed to update collection: %v", err)
		msg.Nack()
		return
	}

	if err := uow.CollectionRepository().Activate(ctx, collection.Id); err != nil {
		log.Printf("[ERROR] Failed to activate collection: %v", err)
		msg.Nack()
		return
	}

	document.Status = model.DocumentStatusIndexed
	document.PageCount = len(pages)
	document.ChunkCount = len(newChunks)
	document.Error = ""
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to mark document indexed: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit indexing transaction: %v", err)
		msg.Nack()
		return
	}

	// 6. The old index is gone, so conversations grounded on it must not
	// keep answering from stale evidence.
	is.sessionRepo.Flush()

	is.publishEvent(ctx, events.NewDocumentIndexed(document.Id.String(), collection.Id.String(), len(newChunks)))
	log.Printf("[SUCCESS] Document indexed: %d chunks for %s", len(newChunks), document.Id)
	msg.Ack()
}

func (is *indexerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, reason string) {
	document.Status = model.DocumentStatusFailed
	document.Error = reason
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to mark document failed: %v", err)
	}
	is.publishEvent(ctx, events.NewDocumentIndexFailed(document.Id.String(), reason))
	log.Printf("[ERROR] Indexing failed for document %s: %s", document.Id, reason)
}

func (is *indexerService) publishEvent(ctx context.Context, event events.Event) {
	if is.eventPublisher == nil {
		return
	}
	if err := is.eventPublisher.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish event %s: %v", event.EventType(), err)
	}
}
