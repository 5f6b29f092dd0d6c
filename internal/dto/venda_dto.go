package dto

import "github.com/shopspring/decimal"

type RegistrarVendaRequest struct {
	TurnoID    string `json:"turno_id"   validate:"required,uuid"`
	Tipo       string `json:"tipo"       validate:"required,oneof=venda consumo"`
	Pagamento  string `json:"pagamento"  validate:"omitempty,oneof=dinheiro pix cartao"`
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,min=1"`
	// ConsumidorID identifies the staff member charged (tipo=consumo).
	ConsumidorID *string `json:"consumidor_id" validate:"omitempty,uuid"`
}

type VendaResponse struct {
	ID            string          `json:"id"`
	TurnoID       string          `json:"turno_id"`
	Tipo          string          `json:"tipo"`
	Pagamento     *string         `json:"pagamento"`
	ProdutoID     string          `json:"produto_id"`
	NomeProduto   string          `json:"nome_produto"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Quantidade    int             `json:"quantidade"`
	Total         decimal.Decimal `json:"total"`
	ConsumidorID  *string         `json:"consumidor_id"`
	CreatedAt     string          `json:"created_at"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
