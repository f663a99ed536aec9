package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// Upsert records membership, keeping the original joined_at when the pair
// already exists.
func (r *MemberRepo) Upsert(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	query := `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO UPDATE SET room_id = EXCLUDED.room_id
		RETURNING joined_at`

	m := &domain.RoomMember{RoomID: roomID, UserID: userID}
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, roomID, userID).Scan(&m.JoinedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrForeignKey
		}
		return nil, err
	}
	return m, nil
}

func (r *MemberRepo) Remove(ctx context.Context, roomID, userID string) error {
	query := `DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query, roomID, userID)
	return err
}

func (r *MemberRepo) Find(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	m := &domain.RoomMember{RoomID: roomID, UserID: userID}
	query := `
		SELECT u.username, u.phone, rm.joined_at
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		WHERE rm.room_id = $1 AND rm.user_id = $2`
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, roomID, userID).Scan(&m.Username, &m.Phone, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotInRoom
		}
		return nil, err
	}
	return m, nil
}

func (r *MemberRepo) ListByRoom(ctx context.Context, roomID string) ([]domain.RoomMember, error) {
	query := `
		SELECT rm.user_id, u.username, u.phone, rm.joined_at
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		WHERE rm.room_id = $1
		ORDER BY rm.joined_at ASC`

	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.RoomMember
	for rows.Next() {
		m := domain.RoomMember{RoomID: roomID}
		if err := rows.Scan(&m.UserID, &m.Username, &m.Phone, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
