package salespersons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CRM/internal/domain"
	salesPersonRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/salesperson"
)

// Service сервис для работы с деревом продавцов
type Service struct {
	salesPersonRepo SalesPersonRepository
	opportunityRepo OpportunityRepository
	txManager       TransactionManager
	timeProvider    domain.TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса продавцов
func NewService(
	salesPersonRepo SalesPersonRepository,
	opportunityRepo OpportunityRepository,
	txManager TransactionManager,
	timeProvider domain.TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		salesPersonRepo: salesPersonRepo,
		opportunityRepo: opportunityRepo,
		txManager:       txManager,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Create создает продавца
// Без родителя узел попадает под корень дерева, первый узел становится корнем
func (s *Service) Create(ctx context.Context, sp *domain.SalesPerson) (*domain.SalesPerson, error) {
	sp.SalesPersonName = strings.TrimSpace(sp.SalesPersonName)
	if sp.Name == "" {
		sp.Name = sp.SalesPersonName
	}
	if sp.Name == "" {
		return nil, fmt.Errorf("%w: sales person name is required", ErrInvalidInput)
	}
	s.logger.Info("Create: creating sales person=%s parent=%q", sp.Name, sp.Parent)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.validate(txCtx, sp, []string{sp.Name}); err != nil {
			return err
		}

		if _, err := s.salesPersonRepo.Create(txCtx, sp); err != nil {
			if errors.Is(err, salesPersonRepo.ErrDuplicateSalesPerson) {
				return ErrSalesPersonAlreadyExists
			}
			s.logger.Error("Create: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}

		return s.validateOneRoot(txCtx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: sales person=%s created", sp.Name)
	return sp, nil
}

// Update сохраняет продавца, перенос под собственного потомка запрещён
func (s *Service) Update(ctx context.Context, sp *domain.SalesPerson) (*domain.SalesPerson, error) {
	s.logger.Info("Update: updating sales person=%s parent=%q", sp.Name, sp.Parent)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		stored, err := s.get(txCtx, "Update", sp.Name)
		if err != nil {
			return err
		}
		if stored.IsGroup && !sp.IsGroup {
			children, err := s.countChildren(txCtx, sp.Name)
			if err != nil {
				return err
			}
			if children > 0 {
				return domain.Invalid("Cannot convert %s to a non-group node because it has child nodes", sp.Name)
			}
		}

		subtree, err := s.salesPersonRepo.Subtree(txCtx, sp.Name)
		if err != nil {
			s.logger.Error("Update: repository error for sales person=%s: %v", sp.Name, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		if err := s.validate(txCtx, sp, subtree); err != nil {
			return err
		}

		if err := s.salesPersonRepo.Update(txCtx, sp); err != nil {
			if errors.Is(err, salesPersonRepo.ErrSalesPersonNotFound) {
				return ErrSalesPersonNotFound
			}
			s.logger.Error("Update: repository error for sales person=%s: %v", sp.Name, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}

		return s.validateOneRoot(txCtx)
	})
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// Get получает продавца по имени
func (s *Service) Get(ctx context.Context, name string) (*domain.SalesPerson, error) {
	return s.get(ctx, "Get", name)
}

// List возвращает продавцов, при заданном parent только его прямых потомков
func (s *Service) List(ctx context.Context, parent string) ([]domain.SalesPerson, error) {
	list, err := s.salesPersonRepo.List(ctx, parent)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return list, nil
}

// Delete удаляет продавца без потомков
func (s *Service) Delete(ctx context.Context, name string) error {
	s.logger.Info("Delete: deleting sales person=%s", name)

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		sp, err := s.get(txCtx, "Delete", name)
		if err != nil {
			return err
		}
		if sp.IsRoot() {
			return domain.Invalid("Root %s cannot be deleted", name)
		}

		children, err := s.countChildren(txCtx, name)
		if err != nil {
			return err
		}
		if children > 0 {
			s.logger.Warn("Delete: sales person=%s has %d children", name, children)
			return ErrHasChildren
		}

		if err := s.salesPersonRepo.Delete(txCtx, name); err != nil {
			switch {
			case errors.Is(err, salesPersonRepo.ErrSalesPersonNotFound):
				return ErrSalesPersonNotFound
			case errors.Is(err, salesPersonRepo.ErrLinked):
				s.logger.Warn("Delete: sales person=%s is linked", name)
				return ErrLinked
			}
			s.logger.Error("Delete: repository error for sales person=%s: %v", name, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
		return nil
	})
}

// Subtree имена продавца и всех его потомков
func (s *Service) Subtree(ctx context.Context, name string) ([]string, error) {
	if _, err := s.get(ctx, "Subtree", name); err != nil {
		return nil, err
	}

	names, err := s.salesPersonRepo.Subtree(ctx, name)
	if err != nil {
		s.logger.Error("Subtree: repository error for sales person=%s: %v", name, err)
		return nil, fmt.Errorf("%w: Subtree - repository error: %v", ErrInternal, err)
	}
	return names, nil
}

// FromUser активный продавец, привязанный к пользователю, пустая строка если его нет
func (s *Service) FromUser(ctx context.Context, user string) (string, error) {
	if user == "" {
		return "", nil
	}

	name, err := s.salesPersonRepo.FindByUser(ctx, user)
	if err != nil {
		s.logger.Error("FromUser: repository error for user=%s: %v", user, err)
		return "", fmt.Errorf("%w: FromUser - repository error: %v", ErrInternal, err)
	}
	return name, nil
}

// Timeline количество возможностей продавца по дням за последний год
func (s *Service) Timeline(ctx context.Context, name string) ([]domain.TimelinePoint, error) {
	since := domain.DateOnly(s.timeProvider.Now()).AddDate(-1, 0, 0)

	points, err := s.opportunityRepo.CountByDateForSalesPerson(ctx, name, since)
	if err != nil {
		s.logger.Error("Timeline: repository error for sales person=%s: %v", name, err)
		return nil, fmt.Errorf("%w: Timeline - repository error: %v", ErrInternal, err)
	}
	return points, nil
}

func (s *Service) get(ctx context.Context, op, name string) (*domain.SalesPerson, error) {
	sp, err := s.salesPersonRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, salesPersonRepo.ErrSalesPersonNotFound) {
			s.logger.Warn("%s: sales person=%s not found", op, name)
			return nil, ErrSalesPersonNotFound
		}
		s.logger.Error("%s: repository error for sales person=%s: %v", op, name, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return sp, nil
}

// validate заполняет родителя по умолчанию и проверяет его
func (s *Service) validate(ctx context.Context, sp *domain.SalesPerson, subtree []string) error {
	if sp.Parent == "" {
		roots, err := s.roots(ctx)
		if err != nil {
			return err
		}
		for _, root := range roots {
			if root != sp.Name {
				sp.Parent = root
				break
			}
		}
	}
	if sp.Parent == "" {
		return nil
	}

	parent, err := s.salesPersonRepo.GetByName(ctx, sp.Parent)
	if err != nil {
		if errors.Is(err, salesPersonRepo.ErrSalesPersonNotFound) {
			return domain.Invalid("Parent Sales Person %s does not exist", sp.Parent)
		}
		s.logger.Error("validate: repository error for sales person=%s: %v", sp.Parent, err)
		return fmt.Errorf("%w: validate - repository error: %v", ErrInternal, err)
	}

	return sp.ValidateParent(&parent.TreeNode, subtree)
}

func (s *Service) validateOneRoot(ctx context.Context) error {
	roots, err := s.roots(ctx)
	if err != nil {
		return err
	}
	return domain.ValidateOneRoot(roots)
}

func (s *Service) roots(ctx context.Context) ([]string, error) {
	roots, err := s.salesPersonRepo.Roots(ctx)
	if err != nil {
		s.logger.Error("roots: repository error: %v", err)
		return nil, fmt.Errorf("%w: roots - repository error: %v", ErrInternal, err)
	}
	return roots, nil
}

func (s *Service) countChildren(ctx context.Context, name string) (int, error) {
	n, err := s.salesPersonRepo.CountChildren(ctx, name)
	if err != nil {
		s.logger.Error("countChildren: repository error for sales person=%s: %v", name, err)
		return 0, fmt.Errorf("%w: countChildren - repository error: %v", ErrInternal, err)
	}
	return n, nil
}
