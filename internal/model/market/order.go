package market

// Order is a job posted by a customer. CustomerID and ExecutorID reference
// User ids but are not enforced by the store.
type Order struct {
	ID          int64  `json:"id" yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	StartDate   string `json:"start_date" yaml:"start_date"`
	EndDate     string `json:"end_date" yaml:"end_date"`
	Address     string `json:"address" yaml:"address"`
	Price       int64  `json:"price" yaml:"price"`
	CustomerID  int64  `json:"customer_id" yaml:"customer_id"`
	ExecutorID  int64  `json:"executor_id" yaml:"executor_id"`
}

func (Order) TableName() string { return "order" }

func (o Order) RecordID() int64  { return o.ID }
func (Order) Collection() string { return CollectionOrders }
