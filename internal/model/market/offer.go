package market

// Offer is an executor's bid on an order. Both references are advisory.
type Offer struct {
	ID         int64 `json:"id" yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID    int64 `json:"order_id" yaml:"order_id"`
	ExecutorID int64 `json:"executor_id" yaml:"executor_id"`
}

func (Offer) TableName() string { return "offer" }

func (o Offer) RecordID() int64  { return o.ID }
func (Offer) Collection() string { return CollectionOffers }
