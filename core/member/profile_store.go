package member

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/auth"
)

// ProfileStore adapts the member directory to the auth.ProfileStore contract:
// the member profile row is the role metadata record for an identity.
type ProfileStore struct {
	svc ServiceInterface
}

var _ auth.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore(svc ServiceInterface) *ProfileStore {
	return &ProfileStore{svc: svc}
}

func (ps *ProfileStore) ProfileByID(ctx context.Context, id string) (auth.Profile, error) {
	mbr, err := ps.svc.GetByUserID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return auth.Profile{}, auth.ErrProfileNotFound
		}
		return auth.Profile{}, err
	}
	return auth.Profile{
		UserID:      mbr.UserID,
		Role:        mbr.Role,
		DisplayName: mbr.DisplayName,
		Avatar:      mbr.Avatar,
	}, nil
}
