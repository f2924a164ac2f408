package market

// User is a marketplace participant. Role is free-form ("customer", "executor", ...).
type User struct {
	ID        int64  `json:"id" yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Age       int64  `json:"age" yaml:"age"`
	Email     string `json:"email" yaml:"email"`
	Role      string `json:"role" yaml:"role"`
	Phone     string `json:"phone" yaml:"phone"`
}

// TableName pins the table name used by gorm.
func (User) TableName() string { return "user" }

func (u User) RecordID() int64  { return u.ID }
func (User) Collection() string { return CollectionUsers }
