package leads

import "github.com/m04kA/SMC-CRM/internal/api/handlers/dto"

// FromCommunicationRequest отправитель входящего сообщения
type FromCommunicationRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

// LeadNameResponse имя найденного или созданного лида
type LeadNameResponse struct {
	Lead string `json:"lead"`
}

// SearchResponse результат автодополнения
type SearchResponse struct {
	Results []dto.LeadSearchResponse `json:"results"`
}
