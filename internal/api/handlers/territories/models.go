package territories

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
)

// TerritoryRequest поля территории
type TerritoryRequest struct {
	Name          string `json:"name,omitempty"`
	TerritoryName string `json:"territoryName"`
	Parent        string `json:"parent"`
	IsGroup       bool   `json:"isGroup"`
}

// TerritoryResponse территория
type TerritoryResponse struct {
	TerritoryRequest
	Modified string `json:"modified,omitempty"`
}

func fromDomain(t *domain.Territory) TerritoryResponse {
	return TerritoryResponse{
		TerritoryRequest: TerritoryRequest{
			Name:          t.Name,
			TerritoryName: t.TerritoryName,
			Parent:        t.Parent,
			IsGroup:       t.IsGroup,
		},
		Modified: handlers.FormatDateTime(&t.Modified),
	}
}

// ListResponse дочерние территории
type ListResponse struct {
	Territories []TerritoryResponse `json:"territories"`
}

// SubtreeResponse имена территории и всех её потомков
type SubtreeResponse struct {
	Names []string `json:"names"`
}
