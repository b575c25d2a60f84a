package fine

type CreateFineInput struct {
	ClientIdentification string  `json:"client_identification" validate:"required"`
	LoanID               string  `json:"loan_id"`
	Amount               float64 `json:"amount" validate:"required,gt=0,dec2"`
	Reason               string  `json:"reason" validate:"required"`
}
