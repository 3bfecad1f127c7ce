package dto

type ConvertRequest struct {
	Filename string `validate:"required"`
	Format   string `validate:"oneof=jpg png"`
}
