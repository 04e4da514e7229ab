package setup

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/infra/storage/masters"
)

var leadSources = []string{
	"Existing Customer",
	"Reference",
	"Advertisement",
	"Cold Calling",
	"Exhibition",
	"Mass Mailing",
	"Customer's Vendor",
	"Campaign",
	"Walk In",
}

var marketSegments = []string{
	"Lower Income",
	"Middle Income",
	"Upper Income",
}

var salesStages = []string{
	"Prospecting",
	"Qualification",
	"Needs Analysis",
	"Value Proposition",
	"Identifying Decision Makers",
	"Perception Analysis",
	"Proposal/Price Quote",
	"Negotiation/Review",
}

var industryTypes = []string{
	"Accounting",
	"Advertising",
	"Aerospace",
	"Agriculture",
	"Airline",
	"Apparel & Accessories",
	"Automotive",
	"Banking",
	"Biotechnology",
	"Broadcasting",
	"Brokerage",
	"Chemical",
	"Computer",
	"Consulting",
	"Consumer Products",
	"Cosmetics",
	"Defense",
	"Department Stores",
	"Education",
	"Electronics",
	"Energy",
	"Entertainment & Leisure",
	"Executive Search",
	"Financial Services",
	"Food, Beverage & Tobacco",
	"Grocery",
	"Health Care",
	"Internet Publishing",
	"Investment Banking",
	"Legal",
	"Manufacturing",
	"Motion Picture & Video",
	"Music",
	"Newspaper Publishers",
	"Online Auctions",
	"Pension Funds",
	"Pharmaceuticals",
	"Private Equity",
	"Publishing",
	"Real Estate",
	"Retail & Wholesale",
	"Securities & Commodity Exchanges",
	"Service",
	"Soap & Detergent",
	"Software",
	"Sports",
	"Technology",
	"Telecommunications",
	"Television",
	"Transportation",
	"Venture Capital",
}

// FixturesResult сколько записей добавлено
type FixturesResult struct {
	Inserted int
	Roots    []string
}

// Installer установка справочников по умолчанию
type Installer struct {
	mastersRepo     MastersRepository
	territoryRepo   TerritoryRepository
	salesPersonRepo SalesPersonRepository
	txManager       TransactionManager
	logger          Logger
}

// NewInstaller создает установщик справочников
func NewInstaller(
	mastersRepo MastersRepository,
	territoryRepo TerritoryRepository,
	salesPersonRepo SalesPersonRepository,
	txManager TransactionManager,
	logger Logger,
) *Installer {
	return &Installer{
		mastersRepo:     mastersRepo,
		territoryRepo:   territoryRepo,
		salesPersonRepo: salesPersonRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// InstallFixtures добавляет отсутствующие записи справочников и корни деревьев
// Повторный запуск ничего не меняет
func (i *Installer) InstallFixtures(ctx context.Context) (*FixturesResult, error) {
	result := &FixturesResult{}

	err := i.txManager.Do(ctx, func(txCtx context.Context) error {
		for _, name := range leadSources {
			inserted, err := i.mastersRepo.EnsureLeadSource(txCtx, domain.LeadSource{Name: name})
			if err != nil {
				return fmt.Errorf("install lead source %q: %w", name, err)
			}
			if inserted {
				result.Inserted++
			}
		}

		named := []struct {
			table string
			names []string
		}{
			{masters.TableMarketSegments, marketSegments},
			{masters.TableSalesStages, salesStages},
			{masters.TableIndustryTypes, industryTypes},
		}
		for _, n := range named {
			for _, name := range n.names {
				inserted, err := i.mastersRepo.EnsureName(txCtx, n.table, name)
				if err != nil {
					return fmt.Errorf("install %s %q: %w", n.table, name, err)
				}
				if inserted {
					result.Inserted++
				}
			}
		}

		if err := i.ensureTerritoryRoot(txCtx, result); err != nil {
			return err
		}
		return i.ensureSalesPersonRoot(txCtx, result)
	})
	if err != nil {
		i.logger.Error("InstallFixtures: %v", err)
		return nil, err
	}

	i.logger.Info("InstallFixtures: %d records inserted, roots created: %v", result.Inserted, result.Roots)
	return result, nil
}

func (i *Installer) ensureTerritoryRoot(ctx context.Context, result *FixturesResult) error {
	roots, err := i.territoryRepo.Roots(ctx)
	if err != nil {
		return fmt.Errorf("territory roots: %w", err)
	}
	if len(roots) > 0 {
		return nil
	}

	root := &domain.Territory{
		TreeNode:      domain.TreeNode{Name: domain.RootTerritory, IsGroup: true},
		TerritoryName: domain.RootTerritory,
	}
	if _, err := i.territoryRepo.Create(ctx, root); err != nil {
		return fmt.Errorf("create territory root: %w", err)
	}
	result.Roots = append(result.Roots, domain.RootTerritory)
	return nil
}

func (i *Installer) ensureSalesPersonRoot(ctx context.Context, result *FixturesResult) error {
	roots, err := i.salesPersonRepo.Roots(ctx)
	if err != nil {
		return fmt.Errorf("sales person roots: %w", err)
	}
	if len(roots) > 0 {
		return nil
	}

	root := &domain.SalesPerson{
		TreeNode:        domain.TreeNode{Name: domain.RootSalesPerson, IsGroup: true},
		SalesPersonName: domain.RootSalesPerson,
		Enabled:         true,
	}
	if _, err := i.salesPersonRepo.Create(ctx, root); err != nil {
		return fmt.Errorf("create sales person root: %w", err)
	}
	result.Roots = append(result.Roots, domain.RootSalesPerson)
	return nil
}
