package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"secure-docchat-be/internal/dto"
	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/model"
	"secure-docchat-be/internal/repository/specification"
	"secure-docchat-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxUploadBytes caps PDF uploads at 200 MB.
const MaxUploadBytes = 200 * 1024 * 1024

type IDocumentService interface {
	Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	Status(ctx context.Context, id uuid.UUID) (*dto.DocumentStatusResponse, error)
	List(ctx context.Context) ([]*dto.DocumentStatusResponse, error)
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	uploadDir  string
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, publisher IPublisherService, uploadDir string) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		publisher:  publisher,
		uploadDir:  uploadDir,
	}
}

// Upload stores the PDF on disk, records the document, and queues the
// indexing job. Indexing itself runs async; poll Status or watch the
// notification stream for completion.
func (ds *documentService) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	// 1. Validate
	if fileHeader.Size > MaxUploadBytes {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "File exceeds the 200MB upload limit")
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "Only PDF files are supported")
	}

	// 2. Persist the file under a fresh id so duplicate filenames never collide
	documentId := uuid.New()
	if err := os.MkdirAll(ds.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}
	destPath := filepath.Join(ds.uploadDir, documentId.String()+".pdf")
	if err := ds.saveFile(fileHeader, destPath); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	// 3. Record the document
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	document := &entity.Document{
		Id:        documentId,
		Filename:  fileHeader.Filename,
		SizeBytes: fileHeader.Size,
		Status:    model.DocumentStatusUploaded,
		CreatedAt: time.Now(),
	}
	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	// 4. Queue indexing
	if err := ds.publisher.PublishIndexDocument(dto.IndexDocumentMessage{
		DocumentId: documentId,
		FilePath:   destPath,
	}); err != nil {
		return nil, fmt.Errorf("failed to queue indexing job: %w", err)
	}

	return &dto.UploadDocumentResponse{
		Id:       documentId,
		Filename: document.Filename,
		Status:   document.Status,
	}, nil
}

func (ds *documentService) saveFile(fileHeader *multipart.FileHeader, destPath string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func (ds *documentService) Status(ctx context.Context, id uuid.UUID) (*dto.DocumentStatusResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	active, err := uow.CollectionRepository().FindActive(ctx)
	if err != nil {
		return nil, err
	}

	resp := ds.toStatusResponse(document)
	resp.IndexReady = active != nil && active.DocumentId == document.Id
	return resp, nil
}

func (ds *documentService) List(ctx context.Context) ([]*dto.DocumentStatusResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	active, err := uow.CollectionRepository().FindActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DocumentStatusResponse, 0, len(documents))
	for _, document := range documents {
		resp := ds.toStatusResponse(document)
		resp.IndexReady = active != nil && active.DocumentId == document.Id
		responses = append(responses, resp)
	}
	return responses, nil
}

func (ds *documentService) toStatusResponse(document *entity.Document) *dto.DocumentStatusResponse {
	return &dto.DocumentStatusResponse{
		Id:         document.Id,
		Filename:   document.Filename,
		Status:     document.Status,
		PageCount:  document.PageCount,
		ChunkCount: document.ChunkCount,
		Error:      document.Error,
	}
}
