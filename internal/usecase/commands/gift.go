package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bahooo22/HannaWhishlist/internal/domain/gift"
	"github.com/bahooo22/HannaWhishlist/internal/infra"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/clock"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/errs"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/queries"

	"github.com/google/uuid"
)

type GiftRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*gift.Gift, error)
	Create(ctx context.Context, g *gift.Gift) error
	Save(ctx context.Context, g *gift.Gift) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UpdateGiftParams struct {
	Title *string
	Link  *string
}

type GiftCommands interface {
	Create(ctx context.Context, title, link string) (*queries.GiftView, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateGiftParams) (*queries.GiftView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reserve(ctx context.Context, id uuid.UUID, claimant gift.Claimant) (*queries.GiftView, error)
	Unreserve(ctx context.Context, id uuid.UUID, nickname string) (*queries.GiftView, error)
}

type giftCommandsImpl struct {
	repo  GiftRepository
	clock clock.Clock
}

func NewGiftCommands(repo GiftRepository, clock clock.Clock) GiftCommands {
	return &giftCommandsImpl{
		repo:  repo,
		clock: clock,
	}
}

func (c *giftCommandsImpl) Create(ctx context.Context, title, link string) (*queries.GiftView, error) {
	g, err := gift.New(title, link)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := c.repo.Create(ctx, g); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return toView(g), nil
}

func (c *giftCommandsImpl) Update(ctx context.Context, id uuid.UUID, params UpdateGiftParams) (*queries.GiftView, error) {
	var updated *gift.Gift

	err := c.repo.WithTx(ctx, func(ctx context.Context) error {
		g, err := c.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}

		if params.Title != nil {
			if err := g.Rename(*params.Title); err != nil {
				return errs.Mark(err, errs.ErrDomainValidation)
			}
		}
		if params.Link != nil {
			g.SetLink(*params.Link)
		}

		if err := c.repo.Save(ctx, g); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toView(updated), nil
}

func (c *giftCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

// Reserve runs the claim transition under the gift's row lock: the read of
// the current status and the write of the new one are one serialized unit
// per gift, so two concurrent claims on the same free gift yield exactly
// one success and one conflict.
func (c *giftCommandsImpl) Reserve(ctx context.Context, id uuid.UUID, claimant gift.Claimant) (*queries.GiftView, error) {
	var reserved *gift.Gift

	err := c.repo.WithTx(ctx, func(ctx context.Context) error {
		g, err := c.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}

		if err := g.Reserve(claimant, c.clock.Now()); err != nil {
			if errors.Is(err, gift.ErrAlreadyReserved) {
				return errs.Mark(err, errs.ErrGiftAlreadyReserved)
			}
			return errs.Mark(err, errs.ErrDomainValidation)
		}

		if err := c.repo.Save(ctx, g); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		reserved = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("gift reserved",
		"gift_id", reserved.ID(),
		"reserved_by", reserved.ReservedBy().Nickname,
	)
	return toView(reserved), nil
}

// Unreserve mirrors Reserve's locking discipline. Only the recorded
// holder, keyed by nickname, may release.
func (c *giftCommandsImpl) Unreserve(ctx context.Context, id uuid.UUID, nickname string) (*queries.GiftView, error) {
	var released *gift.Gift

	err := c.repo.WithTx(ctx, func(ctx context.Context) error {
		g, err := c.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}

		if err := g.Release(nickname); err != nil {
			switch {
			case errors.Is(err, gift.ErrNotReserved):
				return errs.Mark(err, errs.ErrGiftNotReserved)
			case errors.Is(err, gift.ErrNotHolder):
				return errs.Mark(err, errs.ErrNotGiftHolder)
			default:
				return errs.Mark(err, errs.ErrDomainValidation)
			}
		}

		if err := c.repo.Save(ctx, g); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		released = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("gift released", "gift_id", released.ID())
	return toView(released), nil
}

func mapRepoErr(err error) error {
	switch {
	case infra.IsKind(err, infra.KindNotFound), infra.IsKind(err, infra.KindInvalidID):
		return errs.Mark(err, errs.ErrGiftNotFound)
	default:
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
}

func toView(g *gift.Gift) *queries.GiftView {
	view := &queries.GiftView{
		ID:        g.ID(),
		Title:     g.Title(),
		Link:      g.Link(),
		Status:    string(g.Status()),
		CreatedAt: g.CreatedAt(),
		UpdatedAt: g.UpdatedAt(),
	}
	if holder := g.ReservedBy(); holder != nil {
		view.ReservedByID = &holder.ID
		view.ReservedByNickname = &holder.Nickname
		view.ReservedByFirstName = &holder.FirstName
		if holder.LastName != "" {
			view.ReservedByLastName = &holder.LastName
		}
		view.ReservedAt = g.ReservedAt()
	}
	return view
}
