package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/member"
)

type memberRow struct {
	UserID      string      `db:"user_id"`
	DisplayName string      `db:"display_name"`
	Role        string      `db:"role"`
	Avatar      null.String `db:"avatar"`
	Bio         null.String `db:"bio"`
	JoinedAt    time.Time   `db:"joined_at"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type memberRepository struct {
	db *sqlx.DB
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *sqlx.DB) *memberRepository {
	return &memberRepository{db: db}
}

func (repo memberRepository) row(mbr member.Member) memberRow {
	return memberRow{
		UserID:      mbr.UserID,
		DisplayName: mbr.DisplayName,
		Role:        mbr.Role,
		Avatar:      null.NewString(mbr.Avatar, mbr.Avatar != ""),
		Bio:         null.NewString(mbr.Bio, mbr.Bio != ""),
		JoinedAt:    mbr.JoinedAt.UTC(),
		CreatedAt:   mbr.CreatedAt.UTC(),
		UpdatedAt:   mbr.UpdatedAt.UTC(),
	}
}

func (repo memberRepository) unrow(row memberRow) member.Member {
	return member.Member{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		Role:        row.Role,
		Avatar:      row.Avatar.String,
		Bio:         row.Bio.String,
		JoinedAt:    row.JoinedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo memberRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return member.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo memberRepository) CreateMember(ctx context.Context, mbr member.Member) (member.Member, error) {
	row := repo.row(mbr)
	query := `
		INSERT INTO members (user_id, display_name, role, avatar, bio, joined_at, created_at, updated_at)
		VALUES (:user_id, :display_name, :role, :avatar, :bio, :joined_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return member.Member{}, errors.Wrap(err, "inserting member")
	}
	return repo.unrow(row), nil
}

func (repo memberRepository) GetMemberByUserID(ctx context.Context, userID string) (member.Member, error) {
	var row memberRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM members WHERE user_id = $1", userID); err != nil {
		return member.Member{}, repo.trapNoRowsErr(err, "finding member")
	}
	return repo.unrow(row), nil
}

func (repo memberRepository) QueryMembers(ctx context.Context, roles []string, ordering []core.DBOrdering) ([]member.Member, error) {
	query := "SELECT * FROM members"
	var args []interface{}

	if len(roles) > 0 {
		inQuery, inArgs, err := sqlx.In("SELECT * FROM members WHERE role IN (?)", roles)
		if err != nil {
			return nil, errors.Wrap(err, "building members query")
		}
		query = inQuery
		args = inArgs
	}
	query += orderBy(ordering, memberColumns)
	query = repo.db.Rebind(query)

	var rows []memberRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	members := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, repo.unrow(row))
	}
	return members, nil
}

func (repo memberRepository) UpdateMember(ctx context.Context, mbr member.Member) (member.Member, error) {
	row := repo.row(mbr)
	query := `
		UPDATE members
		SET display_name = :display_name, role = :role, avatar = :avatar, bio = :bio, updated_at = :updated_at
		WHERE user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "updating member")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return member.Member{}, member.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo memberRepository) DeleteMember(ctx context.Context, userID string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM members WHERE user_id = $1", userID); err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return nil
}
