package docstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/zenith/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed schema.sql
var schemaSQL string

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// EnsureSchema creates the tables if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.schema")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err = s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, identity string, kind Kind) (_ json.RawMessage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.get")
	span.SetAttributes(attribute.String("kind", string(kind)))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var body []byte
	err = s.db.QueryRow(ctx, `
		SELECT body FROM user_document
		WHERE identity = $1 AND kind = $2
	`, identity, string(kind)).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return body, nil
}

func (s *PostgresStore) Put(ctx context.Context, identity string, kind Kind, body json.RawMessage) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.put")
	span.SetAttributes(attribute.String("kind", string(kind)))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = s.db.Exec(ctx, `
		INSERT INTO user_document (identity, kind, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (identity, kind)
		DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, identity, string(kind), string(body))
	if err != nil {
		return fmt.Errorf("put %s: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) Merge(ctx context.Context, identity string, kind Kind, patch json.RawMessage) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.merge")
	span.SetAttributes(attribute.String("kind", string(kind)))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	// jsonb || jsonb replaces matching top-level keys and keeps the others
	_, err = s.db.Exec(ctx, `
		INSERT INTO user_document (identity, kind, body, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (identity, kind)
		DO UPDATE SET body = user_document.body || excluded.body, updated_at = excluded.updated_at
	`, identity, string(kind), string(patch))
	if err != nil {
		return fmt.Errorf("merge %s: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) CreateChatSession(ctx context.Context, identity string, rec ChatSessionRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.chat.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	messages := rec.Messages
	if len(messages) == 0 {
		messages = json.RawMessage("[]")
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO chat_session (id, identity, title, last_modified, messages)
		VALUES ($1, $2, $3, $4, $5::jsonb)
	`, rec.ID, identity, rec.Title, rec.LastModified, string(messages))
	if err != nil {
		return fmt.Errorf("create chat session: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendChatMessages(
	ctx context.Context,
	identity, sessionID, title string,
	lastModified time.Time,
	messages json.RawMessage,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.chat.append")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := s.db.Exec(ctx, `
		UPDATE chat_session
		SET messages = messages || $3::jsonb, last_modified = $4, title = $5
		WHERE id = $1 AND identity = $2
	`, sessionID, identity, string(messages), lastModified, title)
	if err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListChatSessions(ctx context.Context, identity string) (_ []ChatSessionRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.chat.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := s.db.Query(ctx, `
		SELECT id, title, last_modified, messages
		FROM chat_session
		WHERE identity = $1
		ORDER BY last_modified DESC
	`, identity)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	defer rows.Close()

	var records []ChatSessionRecord
	for rows.Next() {
		var rec ChatSessionRecord
		var messages []byte
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.LastModified, &messages); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		rec.Messages = messages
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat sessions rows: %w", err)
	}

	return records, nil
}
