package models

// User is a registered user row in the users table.
type User struct {
	ID        uint64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Email     string `json:"email" gorm:"column:email;type:varchar(255);not null"`
	Firstname string `json:"firstname" gorm:"column:firstname;type:varchar(255);not null"`
}

// TableName pins the table name independently of GORM's naming strategy.
func (User) TableName() string {
	return "users"
}

// Record returns the denormalized copy that is written to the cache.
func (u User) Record() UserRecord {
	return UserRecord{Email: u.Email, Firstname: u.Firstname}
}

// UserRecord is the JSON value cached under a user's id.
type UserRecord struct {
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
}
