package inmemdb

import (
	"sync"

	"github.com/trezcool/chama/core/contact"
	"github.com/trezcool/chama/core/event"
	"github.com/trezcool/chama/core/member"
	"github.com/trezcool/chama/core/post"
	"github.com/trezcool/chama/core/user"
)

type (
	DB struct {
		user    *userTable
		member  *memberTable
		event   *eventTable
		post    *postTable
		contact *contactTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	memberTable struct {
		sync.RWMutex
		table map[string]*member.Member
	}

	eventTable struct {
		sync.RWMutex
		table map[string]*event.Event
	}

	postTable struct {
		sync.RWMutex
		table map[string]*post.Post
	}

	contactTable struct {
		sync.RWMutex
		table map[string]*contact.Message
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		member:  &memberTable{table: make(map[string]*member.Member)},
		event:   &eventTable{table: make(map[string]*event.Event)},
		post:    &postTable{table: make(map[string]*post.Post)},
		contact: &contactTable{table: make(map[string]*contact.Message)},
	}
	return db, nil
}
