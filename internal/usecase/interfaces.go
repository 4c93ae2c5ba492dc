package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

// TxManager roda fn numa transação; os repositórios pegam a tx do ctx.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(user *entity.User) (token string, expiresIn time.Duration, err error)
}

// ClinicSeedRow / SpecialtySeedRow são as linhas cruas da planilha de referência.
type ClinicSeedRow struct {
	Name    string
	Address string
}

type SpecialtySeedRow struct {
	Category string
	Name     string
}

type ReferenceSource interface {
	Load(ctx context.Context) ([]ClinicSeedRow, []SpecialtySeedRow, error)
}

type noopPublisher struct{}

func (noopPublisher) PublishLeadEvent(context.Context, entity.LeadEvent) error { return nil }
