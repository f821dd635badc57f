package clients

import "time"

// Client is a storefront customer record from usuarios_clientes. Created
// implicitly the first time an email submits a quote request.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListClientsRequest narrows client listings for the back-office.
type ListClientsRequest struct {
	Search string
	Limit  int
	Offset int
}
