package territories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CRM/internal/domain"
	territoryRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/territory"
)

// Service сервис дерева территорий
type Service struct {
	territoryRepo TerritoryRepository
	txManager     TransactionManager
	logger        Logger
}

func NewService(territoryRepo TerritoryRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		territoryRepo: territoryRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

// Create создает территорию, по умолчанию под корнем дерева
func (s *Service) Create(ctx context.Context, t *domain.Territory) (*domain.Territory, error) {
	t.TerritoryName = strings.TrimSpace(t.TerritoryName)
	if t.Name == "" {
		t.Name = t.TerritoryName
	}
	if t.Name == "" {
		return nil, fmt.Errorf("%w: territory name is required", ErrInvalidInput)
	}
	s.logger.Info("Create: creating territory=%s parent=%q", t.Name, t.Parent)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.validate(txCtx, t, []string{t.Name}); err != nil {
			return err
		}

		if _, err := s.territoryRepo.Create(txCtx, t); err != nil {
			if errors.Is(err, territoryRepo.ErrDuplicateTerritory) {
				return ErrTerritoryAlreadyExists
			}
			s.logger.Error("Create: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		return s.validateOneRoot(txCtx)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update сохраняет территорию
func (s *Service) Update(ctx context.Context, t *domain.Territory) (*domain.Territory, error) {
	s.logger.Info("Update: updating territory=%s parent=%q", t.Name, t.Parent)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		stored, err := s.get(txCtx, "Update", t.Name)
		if err != nil {
			return err
		}
		if stored.IsGroup && !t.IsGroup {
			children, err := s.countChildren(txCtx, t.Name)
			if err != nil {
				return err
			}
			if children > 0 {
				return domain.Invalid("Cannot convert %s to a non-group node because it has child nodes", t.Name)
			}
		}

		subtree, err := s.territoryRepo.Subtree(txCtx, t.Name)
		if err != nil {
			s.logger.Error("Update: repository error for territory=%s: %v", t.Name, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		if err := s.validate(txCtx, t, subtree); err != nil {
			return err
		}

		if err := s.territoryRepo.Update(txCtx, t); err != nil {
			if errors.Is(err, territoryRepo.ErrTerritoryNotFound) {
				return ErrTerritoryNotFound
			}
			s.logger.Error("Update: repository error for territory=%s: %v", t.Name, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		return s.validateOneRoot(txCtx)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, name string) (*domain.Territory, error) {
	return s.get(ctx, "Get", name)
}

func (s *Service) List(ctx context.Context, parent string) ([]domain.Territory, error) {
	list, err := s.territoryRepo.List(ctx, parent)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return list, nil
}

// Delete удаляет территорию без потомков, корень удалить нельзя
func (s *Service) Delete(ctx context.Context, name string) error {
	s.logger.Info("Delete: deleting territory=%s", name)

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		t, err := s.get(txCtx, "Delete", name)
		if err != nil {
			return err
		}
		if t.IsRoot() {
			return domain.Invalid("Root %s cannot be deleted", name)
		}

		children, err := s.countChildren(txCtx, name)
		if err != nil {
			return err
		}
		if children > 0 {
			return ErrHasChildren
		}

		if err := s.territoryRepo.Delete(txCtx, name); err != nil {
			switch {
			case errors.Is(err, territoryRepo.ErrTerritoryNotFound):
				return ErrTerritoryNotFound
			case errors.Is(err, territoryRepo.ErrLinked):
				s.logger.Warn("Delete: territory=%s is linked", name)
				return ErrLinked
			}
			s.logger.Error("Delete: repository error for territory=%s: %v", name, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
		return nil
	})
}

func (s *Service) Subtree(ctx context.Context, name string) ([]string, error) {
	if _, err := s.get(ctx, "Subtree", name); err != nil {
		return nil, err
	}

	names, err := s.territoryRepo.Subtree(ctx, name)
	if err != nil {
		s.logger.Error("Subtree: repository error for territory=%s: %v", name, err)
		return nil, fmt.Errorf("%w: Subtree - repository error: %v", ErrInternal, err)
	}
	return names, nil
}

func (s *Service) get(ctx context.Context, op, name string) (*domain.Territory, error) {
	t, err := s.territoryRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, territoryRepo.ErrTerritoryNotFound) {
			s.logger.Warn("%s: territory=%s not found", op, name)
			return nil, ErrTerritoryNotFound
		}
		s.logger.Error("%s: repository error for territory=%s: %v", op, name, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return t, nil
}

func (s *Service) validate(ctx context.Context, t *domain.Territory, subtree []string) error {
	if t.Parent == "" {
		roots, err := s.roots(ctx)
		if err != nil {
			return err
		}
		for _, root := range roots {
			if root != t.Name {
				t.Parent = root
				break
			}
		}
	}
	if t.Parent == "" {
		return nil
	}

	parent, err := s.territoryRepo.GetByName(ctx, t.Parent)
	if err != nil {
		if errors.Is(err, territoryRepo.ErrTerritoryNotFound) {
			return domain.Invalid("Parent Territory %s does not exist", t.Parent)
		}
		s.logger.Error("validate: repository error for territory=%s: %v", t.Parent, err)
		return fmt.Errorf("%w: validate - repository error: %v", ErrInternal, err)
	}

	return t.ValidateParent(&parent.TreeNode, subtree)
}

func (s *Service) validateOneRoot(ctx context.Context) error {
	roots, err := s.roots(ctx)
	if err != nil {
		return err
	}
	return domain.ValidateOneRoot(roots)
}

func (s *Service) roots(ctx context.Context) ([]string, error) {
	roots, err := s.territoryRepo.Roots(ctx)
	if err != nil {
		s.logger.Error("roots: repository error: %v", err)
		return nil, fmt.Errorf("%w: roots - repository error: %v", ErrInternal, err)
	}
	return roots, nil
}

func (s *Service) countChildren(ctx context.Context, name string) (int, error) {
	n, err := s.territoryRepo.CountChildren(ctx, name)
	if err != nil {
		s.logger.Error("countChildren: repository error for territory=%s: %v", name, err)
		return 0, fmt.Errorf("%w: countChildren - repository error: %v", ErrInternal, err)
	}
	return n, nil
}
