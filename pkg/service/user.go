package service

import (
	"context"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/model"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/rs/zerolog"
)

// Users implements the user use cases. The user list lives in the user
// region under cache.AllUsersKey next to the per-id entries.
type Users struct {
	users  store.Repository[model.User]
	cache  *cache.Manager
	logger zerolog.Logger
}

// NewUsers creates the user use cases.
func NewUsers(users store.Repository[model.User], manager *cache.Manager, logger zerolog.Logger) *Users {
	return &Users{
		users:  users,
		cache:  manager,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// Create stores a new user.
func (s *Users) Create(ctx context.Context, u model.User) (model.User, error) {
	u.ID = 0
	if err := validateStruct(u); err != nil {
		return model.User{}, err
	}

	saved, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.User, error) {
			return s.users.Save(ctx, u)
		},
		refreshUser)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info().Int("user_id", saved.ID).Msg("User created")
	return saved, nil
}

// Get returns the user with id.
func (s *Users) Get(ctx context.Context, id int) (model.User, error) {
	if err := validateID("user id", id); err != nil {
		return model.User{}, err
	}

	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionUser, cache.IDKey(id),
		func(ctx context.Context) (model.User, error) {
			u, err := s.users.Find(ctx, id)
			if err != nil {
				return model.User{}, storeErr(err, "no user found with id %d", id)
			}
			return u, nil
		})
}

// All returns every user. An empty store is reported as ErrNotFound.
func (s *Users) All(ctx context.Context) ([]model.User, error) {
	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionUser, cache.AllUsersKey, s.loadAll)
}

func (s *Users) loadAll(ctx context.Context) ([]model.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, notFound(nil, "no users found")
	}
	return users, nil
}

// Update replaces the profile fields of the user with id. Role and image
// are kept.
func (s *Users) Update(ctx context.Context, id int, u model.User) (model.User, error) {
	if err := validateID("user id", id); err != nil {
		return model.User{}, err
	}
	if err := validateStruct(u); err != nil {
		return model.User{}, err
	}

	return s.modify(ctx, id, func(existing *model.User) {
		existing.Username = u.Username
		existing.Email = u.Email
		existing.ContactNumber = u.ContactNumber
		existing.Address = u.Address
	})
}

// UploadImage replaces the profile image of the user with id.
func (s *Users) UploadImage(ctx context.Context, id int, image []byte) (model.User, error) {
	if err := validateID("user id", id); err != nil {
		return model.User{}, err
	}
	if len(image) == 0 {
		return model.User{}, validationFailed("image must not be empty")
	}

	return s.modify(ctx, id, func(existing *model.User) {
		existing.Image = image
	})
}

func (s *Users) modify(ctx context.Context, id int, apply func(*model.User)) (model.User, error) {
	return cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.User, error) {
			existing, err := s.users.Find(ctx, id)
			if err != nil {
				return model.User{}, storeErr(err, "no user found with id %d", id)
			}
			apply(&existing)
			return s.users.Save(ctx, existing)
		},
		refreshUser)
}

func refreshUser(u model.User) []cache.Action {
	return []cache.Action{
		cache.Refresh(cache.RegionUser, cache.IDKey(u.ID), u),
		cache.Evict(cache.RegionUser, cache.AllUsersKey),
	}
}

// Image returns the profile image of the user with id, read through the
// cached user.
func (s *Users) Image(ctx context.Context, id int) ([]byte, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(u.Image) == 0 {
		return nil, notFound(nil, "no image uploaded for user %d", id)
	}
	return u.Image, nil
}

// Delete removes the user with id.
func (s *Users) Delete(ctx context.Context, id int) error {
	if err := validateID("user id", id); err != nil {
		return err
	}

	_, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (struct{}, error) {
			if err := s.users.Delete(ctx, id); err != nil {
				return struct{}{}, storeErr(err, "no user found with id %d", id)
			}
			return struct{}{}, nil
		},
		func(struct{}) []cache.Action {
			return []cache.Action{
				cache.Evict(cache.RegionUser, cache.IDKey(id)),
				cache.Evict(cache.RegionUser, cache.AllUsersKey),
			}
		})
	if err != nil {
		return err
	}

	s.logger.Info().Int("user_id", id).Msg("User deleted")
	return nil
}

// Warm preloads the user list. An empty user table is not an error.
func (s *Users) Warm(ctx context.Context) error {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		s.logger.Info().Msg("No users to preload")
		return nil
	}

	s.cache.Apply(ctx, cache.Refresh(cache.RegionUser, cache.AllUsersKey, users))
	s.logger.Info().Int("users", len(users)).Msg("User list preloaded")
	return nil
}
