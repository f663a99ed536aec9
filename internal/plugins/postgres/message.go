package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, room_id, sender_id, body, media, type, ts, read_receipt)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING seq`

	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query,
		m.ID, m.RoomID, m.SenderID, m.Body, m.Media, string(m.Type), m.Timestamp, m.ReadReceipt,
	).Scan(&m.Seq)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrForeignKey
		}
		return err
	}
	return nil
}

// ListByRoom returns history ascending by (ts, seq). A positive limit keeps
// only the newest rows while preserving ascending output order.
func (r *MessageRepo) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.seq, m.sender_id, u.username, m.body,
		       COALESCE(m.media, ''), m.type, m.ts, m.read_receipt
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		ORDER BY m.ts ASC, m.seq ASC`

	exec := GetExecutor(ctx, r.db)
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		tail := `
			SELECT t.id, t.seq, t.sender_id, t.username, t.body, t.media, t.type, t.ts, t.read_receipt
			FROM (
				SELECT m.id, m.seq, m.sender_id, u.username, m.body,
				       COALESCE(m.media, '') AS media, m.type, m.ts, m.read_receipt
				FROM messages m
				JOIN users u ON u.id = m.sender_id
				WHERE m.room_id = $1
				ORDER BY m.ts DESC, m.seq DESC
				LIMIT $2
			) t
			ORDER BY t.ts ASC, t.seq ASC`
		rows, err = exec.QueryContext(ctx, tail, roomID, limit)
	} else {
		rows, err = exec.QueryContext(ctx, query, roomID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m := domain.Message{RoomID: roomID}
		var mtype string
		if err := rows.Scan(&m.ID, &m.Seq, &m.SenderID, &m.SenderName, &m.Body,
			&m.Media, &mtype, &m.Timestamp, &m.ReadReceipt); err != nil {
			return nil, err
		}
		m.Type = domain.MessageType(mtype)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) LastByRoom(ctx context.Context, roomID string) (*domain.Message, error) {
	m := &domain.Message{RoomID: roomID}
	var mtype string
	query := `
		SELECT m.id, m.seq, m.sender_id, u.username, m.body,
		       COALESCE(m.media, ''), m.type, m.ts, m.read_receipt
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		ORDER BY m.ts DESC, m.seq DESC
		LIMIT 1`

	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, roomID).Scan(&m.ID, &m.Seq, &m.SenderID,
		&m.SenderName, &m.Body, &m.Media, &mtype, &m.Timestamp, &m.ReadReceipt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	m.Type = domain.MessageType(mtype)
	return m, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, messageID string) error {
	query := `UPDATE messages SET read_receipt = TRUE WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, messageID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// MarkRoomRead flips every unread message in a room not authored by
// excludingUserID and reports how many rows changed.
func (r *MessageRepo) MarkRoomRead(ctx context.Context, roomID, excludingUserID string) (int64, error) {
	query := `
		UPDATE messages SET read_receipt = TRUE
		WHERE room_id = $1 AND sender_id <> $2 AND read_receipt = FALSE`

	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, roomID, excludingUserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MessageRepo) Delete(ctx context.Context, messageID string) error {
	query := `DELETE FROM messages WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, messageID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}
