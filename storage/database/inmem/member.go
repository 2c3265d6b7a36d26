package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/member"
)

type memberRepository struct {
	db *memberTable
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db.member}
}

func (repo *memberRepository) query() []member.Member {
	members := make([]member.Member, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		members = append(members, *m)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].UserID < members[j].UserID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members
}

func (repo *memberRepository) CreateMember(ctx context.Context, mbr member.Member) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[mbr.UserID] = &mbr
	return mbr, nil
}

func (repo *memberRepository) GetMemberByUserID(ctx context.Context, userID string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mbr, ok := repo.db.table[userID]; ok {
		return *mbr, nil
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) QueryMembers(ctx context.Context, roles []string, ordering []core.DBOrdering) ([]member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := repo.query()
	if len(roles) > 0 {
		wanted := make(map[string]bool, len(roles))
		for _, r := range roles {
			wanted[r] = true
		}
		var filtered []member.Member
		for _, m := range members {
			if wanted[m.Role] {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	return members, nil
}

func (repo *memberRepository) UpdateMember(ctx context.Context, mbr member.Member) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[mbr.UserID]; !ok {
		return member.Member{}, member.ErrNotFound
	}
	repo.db.table[mbr.UserID] = &mbr
	return mbr, nil
}

func (repo *memberRepository) DeleteMember(ctx context.Context, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, userID)
	return nil
}
