package territories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	territoryRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/territory"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeRepo struct {
	nodes  map[string]domain.Territory
	linked bool
}

func territory(name, parent string, isGroup bool) domain.Territory {
	return domain.Territory{
		TreeNode:      domain.TreeNode{Name: name, Parent: parent, IsGroup: isGroup},
		TerritoryName: name,
	}
}

func defaultTree() *fakeRepo {
	return &fakeRepo{nodes: map[string]domain.Territory{
		"All Territories": territory("All Territories", "", true),
		"Pakistan":        territory("Pakistan", "All Territories", true),
		"Lahore":          territory("Lahore", "Pakistan", false),
	}}
}

func (f *fakeRepo) Create(_ context.Context, t *domain.Territory) (*domain.Territory, error) {
	if _, ok := f.nodes[t.Name]; ok {
		return nil, territoryRepo.ErrDuplicateTerritory
	}
	f.nodes[t.Name] = *t
	return t, nil
}

func (f *fakeRepo) Update(_ context.Context, t *domain.Territory) error {
	f.nodes[t.Name] = *t
	return nil
}

func (f *fakeRepo) GetByName(_ context.Context, name string) (*domain.Territory, error) {
	t, ok := f.nodes[name]
	if !ok {
		return nil, territoryRepo.ErrTerritoryNotFound
	}
	return &t, nil
}

func (f *fakeRepo) List(_ context.Context, parent string) ([]domain.Territory, error) {
	var out []domain.Territory
	for _, t := range f.nodes {
		if parent == "" || t.Parent == parent {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, name string) error {
	if f.linked {
		return territoryRepo.ErrLinked
	}
	delete(f.nodes, name)
	return nil
}

func (f *fakeRepo) Roots(_ context.Context) ([]string, error) {
	var out []string
	for _, t := range f.nodes {
		if t.Parent == "" {
			out = append(out, t.Name)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountChildren(_ context.Context, name string) (int, error) {
	count := 0
	for _, t := range f.nodes {
		if t.Parent == name {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) Subtree(_ context.Context, name string) ([]string, error) {
	out := []string{name}
	for i := 0; i < len(out); i++ {
		for _, t := range f.nodes {
			if t.Parent == out[i] {
				out = append(out, t.Name)
			}
		}
	}
	return out, nil
}

type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestService_Create(t *testing.T) {
	repo := defaultTree()
	svc := NewService(repo, fakeTx{}, logger.NewNop())

	created, err := svc.Create(context.Background(), &domain.Territory{TerritoryName: "Karachi"})
	require.NoError(t, err)
	assert.Equal(t, "All Territories", created.Parent)

	_, err = svc.Create(context.Background(), &domain.Territory{TerritoryName: "Lahore", TreeNode: domain.TreeNode{Parent: "Pakistan"}})
	assert.ErrorIs(t, err, ErrTerritoryAlreadyExists)

	_, err = svc.Create(context.Background(), &domain.Territory{TerritoryName: "Gulberg", TreeNode: domain.TreeNode{Parent: "Lahore"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), &domain.Territory{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Update_Cycle(t *testing.T) {
	repo := defaultTree()
	svc := NewService(repo, fakeTx{}, logger.NewNop())

	pakistan := repo.nodes["Pakistan"]
	pakistan.Parent = "Pakistan"
	_, err := svc.Update(context.Background(), &pakistan)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "All Territories", repo.nodes["Pakistan"].Parent)
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		linked  bool
		wantErr error
	}{
		{name: "leaf", target: "Lahore"},
		{name: "has children", target: "Pakistan", wantErr: ErrHasChildren},
		{name: "root", target: "All Territories", wantErr: domain.ErrValidation},
		{name: "linked", target: "Lahore", linked: true, wantErr: ErrLinked},
		{name: "not found", target: "Multan", wantErr: ErrTerritoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultTree()
			repo.linked = tt.linked
			svc := NewService(repo, fakeTx{}, logger.NewNop())

			err := svc.Delete(context.Background(), tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, repo.nodes, tt.target)
		})
	}
}

func TestService_Subtree(t *testing.T) {
	svc := NewService(defaultTree(), fakeTx{}, logger.NewNop())

	names, err := svc.Subtree(context.Background(), "Pakistan")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pakistan", "Lahore"}, names)
}
