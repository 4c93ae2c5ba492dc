package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type RegisterUserUseCase struct {
	Users  entity.UserRepositoryInterface
	Hasher PasswordHasher
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewRegisterUserUseCase(users entity.UserRepositoryInterface, hasher PasswordHasher, logger zerolog.Logger) *RegisterUserUseCase {
	return &RegisterUserUseCase{Users: users, Hasher: hasher, Logger: logger, Now: time.Now}
}

// Execute cria a conta mas não devolve token; o cliente precisa fazer login.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if errs := ValidateRegisterInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	taken, err := uc.Users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, technical("USER_LOOKUP_FAILED", "erro ao verificar username", err)
	}
	if taken {
		return nil, duplicateUsername(username, nil)
	}
	taken, err = uc.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, technical("USER_LOOKUP_FAILED", "erro ao verificar email", err)
	}
	if taken {
		return nil, duplicateEmail(email, nil)
	}

	role, recognized := entity.ParseRole(input.Role)
	if !recognized && strings.TrimSpace(input.Role) != "" {
		uc.Logger.Warn().Str("role", input.Role).Msg("role desconhecida no registro, usando USER")
	}

	hash, err := uc.Hasher.Hash(input.Password)
	if err != nil {
		return nil, technical("PASSWORD_HASH_FAILED", "erro ao gerar hash da senha", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}
	if err := uc.Users.Create(ctx, user); err != nil {
		// corrida entre o Exists e o INSERT cai na constraint única
		switch {
		case errors.Is(err, entity.ErrUsernameTaken):
			return nil, duplicateUsername(username, err)
		case errors.Is(err, entity.ErrEmailTaken):
			return nil, duplicateEmail(email, err)
		}
		return nil, technical("USER_CREATE_FAILED", "erro ao criar usuário", err)
	}

	uc.Logger.Info().Str("username", username).Str("role", string(role)).Msg("usuário registrado")

	registeredAt := user.CreatedAt
	if registeredAt.IsZero() {
		registeredAt = uc.Now()
	}
	return &RegisterOutput{
		Message:      "Usuario registrado exitosamente",
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		RegisteredAt: registeredAt,
		NextStep:     "Inicie sesión en /api/v1/auth/login para obtener su token",
	}, nil
}

func duplicateUsername(username string, cause error) error {
	return newDomainError(KindDuplicate, "DUPLICATE_USERNAME", "El username ya existe: "+username, cause)
}

func duplicateEmail(email string, cause error) error {
	return newDomainError(KindDuplicate, "DUPLICATE_EMAIL", "El email ya está registrado: "+email, cause)
}

type LoginUseCase struct {
	Users  entity.UserRepositoryInterface
	Hasher PasswordHasher
	Tokens TokenIssuer
	Logger zerolog.Logger
}

func NewLoginUseCase(users entity.UserRepositoryInterface, hasher PasswordHasher, tokens TokenIssuer, logger zerolog.Logger) *LoginUseCase {
	return &LoginUseCase{Users: users, Hasher: hasher, Tokens: tokens, Logger: logger}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	if errs := ValidateLoginInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	username := strings.TrimSpace(input.Username)
	user, err := uc.Users.FindByUsername(ctx, username)
	if errors.Is(err, entity.ErrUserNotFound) {
		uc.Logger.Info().Str("username", username).Msg("login com usuário inexistente")
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, technical("USER_LOOKUP_FAILED", "erro ao buscar usuário", err)
	}

	if err := uc.Hasher.Compare(user.PasswordHash, input.Password); err != nil {
		uc.Logger.Info().Str("username", username).Msg("login com senha inválida")
		return nil, invalidCredentials()
	}

	// só conta que a conta está desativada depois de validar a senha
	if !user.Enabled {
		return nil, newDomainError(KindAccountDisabled, "ACCOUNT_DISABLED", "La cuenta está deshabilitada", nil)
	}

	token, ttl, err := uc.Tokens.Issue(user)
	if err != nil {
		return nil, technical("TOKEN_ISSUE_FAILED", "erro ao gerar token", err)
	}

	uc.Logger.Info().Str("username", username).Msg("login ok")
	return &LoginOutput{
		Token:     token,
		Type:      "Bearer",
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresIn: ttl.Milliseconds(),
	}, nil
}

func invalidCredentials() error {
	return newDomainError(KindInvalidCredentials, "INVALID_CREDENTIALS", "Credenciales inválidas", nil)
}
