package domain

// Quota é o orçamento diário de um papel.
// Unlimited=true ignora Limit.
type Quota struct {
	Limit     int64
	Unlimited bool
}

// QuotaTable mapeia papel -> quota diária. Imutável depois de construída.
type QuotaTable map[Role]Quota

// Evaluation é o resultado da política para um valor de contador.
type Evaluation struct {
	Used      int64
	Remaining int64
	Exceeded  bool
	Unlimited bool
}
