package documents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Document is metadata only; blob storage and editing are external.
type Document struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	OwnerUserID   string    `json:"ownerUserId"`
	LatestVersion int       `json:"latestVersion"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Version is a write-time snapshot. Versions are append-only: editing a
// document creates the next version and never touches earlier ones.
type Version struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Number     int       `json:"number"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

var ErrDocumentNotFound = errors.New("document not found")

type StoreAPI interface {
	ListDocuments(ctx context.Context, tenantID string) ([]Document, error)
	GetDocument(ctx context.Context, tenantID, documentID string) (*Document, error)
	CreateDocument(ctx context.Context, tenantID, title, ownerUserID, content string) (*Document, error)
	AppendVersion(ctx context.Context, tenantID, documentID, authorID, content string) (*Version, error)
	ListVersions(ctx context.Context, tenantID, documentID string) ([]Version, error)
	GetVersion(ctx context.Context, tenantID, documentID string, number int) (*Version, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListDocuments(ctx context.Context, tenantID string) ([]Document, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, owner_user_id, latest_version, created_at, updated_at
    FROM documents
    WHERE tenant_id = $1
    ORDER BY updated_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.OwnerUserID, &doc.LatestVersion, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *Store) GetDocument(ctx context.Context, tenantID, documentID string) (*Document, error) {
	var doc Document
	err := s.DB.QueryRow(ctx, `
    SELECT id, title, owner_user_id, latest_version, created_at, updated_at
    FROM documents
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, documentID).Scan(&doc.ID, &doc.Title, &doc.OwnerUserID, &doc.LatestVersion, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) CreateDocument(ctx context.Context, tenantID, title, ownerUserID, content string) (*Document, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var doc Document
	if err := tx.QueryRow(ctx, `
    INSERT INTO documents (tenant_id, title, owner_user_id, latest_version)
    VALUES ($1, $2, $3, 1)
    RETURNING id, title, owner_user_id, latest_version, created_at, updated_at
  `, tenantID, title, ownerUserID).Scan(&doc.ID, &doc.Title, &doc.OwnerUserID, &doc.LatestVersion, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO document_versions (tenant_id, document_id, number, content, author_user_id)
    VALUES ($1, $2, 1, $3, $4)
  `, tenantID, doc.ID, content, ownerUserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &doc, nil
}

// AppendVersion writes the next version number atomically with the
// document's latest_version bump.
func (s *Store) AppendVersion(ctx context.Context, tenantID, documentID, authorID, content string) (*Version, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var next int
	if err := tx.QueryRow(ctx, `
    UPDATE documents
    SET latest_version = latest_version + 1, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
    RETURNING latest_version
  `, tenantID, documentID).Scan(&next); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	var version Version
	if err := tx.QueryRow(ctx, `
    INSERT INTO document_versions (tenant_id, document_id, number, content, author_user_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, document_id, number, content, author_user_id, created_at
  `, tenantID, documentID, next, content, authorID).Scan(&version.ID, &version.DocumentID, &version.Number, &version.Content, &version.AuthorID, &version.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &version, nil
}

func (s *Store) ListVersions(ctx context.Context, tenantID, documentID string) ([]Version, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, document_id, number, content, author_user_id, created_at
    FROM document_versions
    WHERE tenant_id = $1 AND document_id = $2
    ORDER BY number
  `, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Number, &v.Content, &v.AuthorID, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) GetVersion(ctx context.Context, tenantID, documentID string, number int) (*Version, error) {
	var v Version
	err := s.DB.QueryRow(ctx, `
    SELECT id, document_id, number, content, author_user_id, created_at
    FROM document_versions
    WHERE tenant_id = $1 AND document_id = $2 AND number = $3
  `, tenantID, documentID, number).Scan(&v.ID, &v.DocumentID, &v.Number, &v.Content, &v.AuthorID, &v.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, tenantID string) ([]Document, error) {
	return s.store.ListDocuments(ctx, tenantID)
}

func (s *Service) Create(ctx context.Context, tenantID, title, ownerUserID, content string) (*Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("document needs a title")
	}
	return s.store.CreateDocument(ctx, tenantID, title, ownerUserID, content)
}

func (s *Service) Edit(ctx context.Context, tenantID, documentID, authorID, content string) (*Version, error) {
	return s.store.AppendVersion(ctx, tenantID, documentID, authorID, content)
}

func (s *Service) Versions(ctx context.Context, tenantID, documentID string) ([]Version, error) {
	return s.store.ListVersions(ctx, tenantID, documentID)
}

func (s *Service) Version(ctx context.Context, tenantID, documentID string, number int) (*Version, error) {
	return s.store.GetVersion(ctx, tenantID, documentID, number)
}
