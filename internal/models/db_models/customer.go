package db_models

type Customer struct {
	BaseModel
	Name    string
	Email   string `gorm:"uniqueIndex"`
	Phone   string
	Address string
}
