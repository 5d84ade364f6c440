package account

import "time"

type Account struct {
	ID        string    `json:"accountId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
