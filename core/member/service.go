package member

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

var ErrNotFound = errors.New("member not found")

type (
	Repository interface {
		CreateMember(ctx context.Context, mbr Member) (Member, error)
		GetMemberByUserID(ctx context.Context, userID string) (Member, error)
		// QueryMembers returns profiles ordered per `ordering`; roles filters
		// to the given roles when non-empty.
		QueryMembers(ctx context.Context, roles []string, ordering []core.DBOrdering) ([]Member, error)
		UpdateMember(ctx context.Context, mbr Member) (Member, error)
		DeleteMember(ctx context.Context, userID string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nm NewMember) (Member, error)
		GetByUserID(ctx context.Context, userID string) (Member, error)
		Query(ctx context.Context, roles []string, ordering []core.DBOrdering) ([]Member, error)
		Update(ctx context.Context, userID string, um UpdateMember) (Member, error)
		Delete(ctx context.Context, userID string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nm NewMember) (Member, error) {
	now := time.Now().UTC()
	joined := nm.JoinedAt
	if joined.IsZero() {
		joined = now
	}
	mbr := Member{
		UserID:      nm.UserID,
		DisplayName: nm.DisplayName,
		Role:        nm.Role,
		Avatar:      nm.Avatar,
		Bio:         nm.Bio,
		JoinedAt:    joined.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateMember(ctx, mbr)
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Member, error) {
	return svc.repo.GetMemberByUserID(ctx, userID)
}

func (svc *Service) Query(ctx context.Context, roles []string, ordering []core.DBOrdering) ([]Member, error) {
	return svc.repo.QueryMembers(ctx, roles, ordering)
}

func (svc *Service) Update(ctx context.Context, userID string, um UpdateMember) (Member, error) {
	mbr, err := svc.repo.GetMemberByUserID(ctx, userID)
	if err != nil {
		return Member{}, err
	}

	if um.DisplayName != "" {
		mbr.DisplayName = um.DisplayName
	}
	if um.Role != "" {
		mbr.Role = um.Role
	}
	if um.Avatar != "" {
		mbr.Avatar = um.Avatar
	}
	if um.Bio != nil {
		mbr.Bio = *um.Bio
	}
	mbr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMember(ctx, mbr)
}

func (svc *Service) Delete(ctx context.Context, userID string) error {
	return svc.repo.DeleteMember(ctx, userID)
}
