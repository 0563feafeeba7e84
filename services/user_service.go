package services

import (
	"context"
	"encoding/json"

	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/types"
)

type UserService struct {
	userRepo     repository.Repository
	collegueRepo repository.Repository
}

func NewUserService(dbSelector repository.DBSelector) *UserService {
	userRepo, uErr := dbSelector.ChooseDB(repository.User)
	if uErr != nil {
		panic(uErr)
	}
	collegueRepo, cErr := dbSelector.ChooseDB(repository.Collegue)
	if cErr != nil {
		panic(cErr)
	}
	return &UserService{
		userRepo:     userRepo,
		collegueRepo: collegueRepo,
	}
}

// CreateUser registers a requester. Returns ErrConflict when the email is
// already taken.
func (us *UserService) CreateUser(ctx context.Context, input *types.CreateUserInput) (*types.User, error) {
	existing, fErr := us.userRepo.Find(ctx, map[string]interface{}{"email": input.Email}, nil, 1)
	if fErr != nil {
		return nil, fErr
	}
	if len(existing) > 0 {
		return nil, types.ErrConflict
	}
	user := &types.User{
		UserID: input.UserID,
		Email:  input.Email,
	}
	if sErr := us.userRepo.Save(ctx, input.UserID, user); sErr != nil {
		return nil, sErr
	}
	return user, nil
}

func (us *UserService) GetUser(ctx context.Context, userID string) (*types.User, error) {
	response, gErr := us.userRepo.GetByID(ctx, userID)
	if gErr != nil {
		return nil, gErr
	}
	var user types.User
	if mErr := repository.MapToObject(response, &user); mErr != nil {
		return nil, mErr
	}
	return &user, nil
}

// GetUserByEmail looks a requester up by email address
func (us *UserService) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	docs, fErr := us.userRepo.Find(ctx, map[string]interface{}{"email": email}, nil, 1)
	if fErr != nil {
		return nil, fErr
	}
	if len(docs) == 0 {
		return nil, types.ErrNotFound
	}
	var user types.User
	if uErr := json.Unmarshal(docs[0], &user); uErr != nil {
		return nil, uErr
	}
	return &user, nil
}

// CreateCollegue registers a staff member
func (us *UserService) CreateCollegue(ctx context.Context, input *types.CreateCollegueInput) (*types.Collegue, error) {
	existing, fErr := us.collegueRepo.Find(ctx, map[string]interface{}{"email": input.Email}, nil, 1)
	if fErr != nil {
		return nil, fErr
	}
	if len(existing) > 0 {
		return nil, types.ErrConflict
	}
	collegue := &types.Collegue{
		CollegueID: input.CollegueID,
		Email:      input.Email,
	}
	if sErr := us.collegueRepo.Save(ctx, input.CollegueID, collegue); sErr != nil {
		return nil, sErr
	}
	return collegue, nil
}

func (us *UserService) GetCollegue(ctx context.Context, collegueID string) (*types.Collegue, error) {
	response, gErr := us.collegueRepo.GetByID(ctx, collegueID)
	if gErr != nil {
		return nil, gErr
	}
	var collegue types.Collegue
	if mErr := repository.MapToObject(response, &collegue); mErr != nil {
		return nil, mErr
	}
	return &collegue, nil
}
