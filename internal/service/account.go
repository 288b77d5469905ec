package service

import (
	"context"
	"fmt"
	"strings"

	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type LoginResult struct {
	Account *model.Account
	Token   string
}

// AccountService handles signup and login for one role.
type AccountService interface {
	Role() model.Role
	Signup(ctx context.Context, input SignupInput) (*model.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type accountServiceImpl struct {
	role        model.Role
	accountRepo repository.AccountRepository
	tokens      TokenService
	bcryptCost  int
}

func NewAccountService(
	role model.Role,
	accountRepo repository.AccountRepository,
	tokens TokenService,
) AccountService {
	return &accountServiceImpl{
		role:        role,
		accountRepo: accountRepo,
		tokens:      tokens,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func (s *accountServiceImpl) Role() model.Role {
	return s.role
}

func (s *accountServiceImpl) Signup(ctx context.Context, input SignupInput) (*model.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	_, err := s.accountRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, model.NewEmailTakenError()
	}
	if !repository.IsNotFound(err) {
		return nil, model.NewInternalError("Error in signup.", fmt.Errorf("find %s by email: %w", s.role, err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, model.NewInternalError("Error in signup.", fmt.Errorf("hash password: %w", err))
	}

	account := &model.Account{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if repository.IsDuplicateError(err) {
			return nil, model.NewEmailTakenError()
		}
		return nil, model.NewInternalError("Error in signup.", fmt.Errorf("store %s: %w", s.role, err))
	}

	return account, nil
}

func (s *accountServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accountRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, model.NewInvalidCredentialsError()
		}
		return nil, model.NewInternalError("Error in login.", fmt.Errorf("find %s by email: %w", s.role, err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(s.role, account.ID)
	if err != nil {
		return nil, model.NewInternalError("Error in login.", err)
	}

	return &LoginResult{
		Account: account,
		Token:   token,
	}, nil
}
