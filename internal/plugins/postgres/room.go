package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func (r *RoomRepo) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	room := &domain.Room{ID: id}
	var name sql.NullString
	query := `SELECT owner_id, is_group, name, created_at FROM rooms WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, id).Scan(&room.OwnerID, &room.IsGroup, &name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	room.Name = name.String
	return room, nil
}

func (r *RoomRepo) FindByOwner(ctx context.Context, ownerID string) (*domain.Room, error) {
	room := &domain.Room{OwnerID: ownerID}
	var name sql.NullString
	query := `
		SELECT id, is_group, name, created_at FROM rooms
		WHERE owner_id = $1
		ORDER BY created_at ASC
		LIMIT 1`
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, ownerID).Scan(&room.ID, &room.IsGroup, &name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	room.Name = name.String
	return room, nil
}

func (r *RoomRepo) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, owner_id, is_group, name)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING created_at`

	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, room.ID, room.OwnerID, room.IsGroup, room.Name).
		Scan(&room.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRoomExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrForeignKey
		}
		return err
	}
	return nil
}

func (r *RoomRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM rooms WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
