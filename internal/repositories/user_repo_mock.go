package repositories

import (
	"context"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	acc memAccess
}

func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	return r.acc.write(func(st *memState) error {
		for _, u := range st.users {
			if u.Username == user.Username {
				return Conflict("user", user.Username, "username already taken")
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var found *models.User
	r.acc.read(func(st *memState) {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, NotFound("user", username)
	}
	return found, nil
}

func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var (
		user models.User
		ok   bool
	)
	r.acc.read(func(st *memState) {
		user, ok = st.users[id]
	})
	if !ok {
		return nil, NotFound("user", id)
	}
	return &user, nil
}
