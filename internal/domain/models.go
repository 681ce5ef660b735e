package domain

// OrderStatus values are stored lowercase in the orders table.
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusProcessing      OrderStatus = "processing"
	StatusShipped         OrderStatus = "shipped"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusReturnRequested OrderStatus = "return_requested"
	StatusReturned        OrderStatus = "returned"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// forward is the fulfillment-driven happy path. Cancellation and returns are
// handled by the order service, not by status advancement.
var forward = map[OrderStatus]OrderStatus{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// CanAdvanceTo reports whether next is the legal forward step from s.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return forward[s] == next
}

type Product struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	Stock       int     `db:"stock"` // units not reserved by any cart or pending order
	Rating      float64 `db:"rating"`
	Category    string  `db:"category"`
}

type CartItem struct {
	ID        int64  `db:"id"`
	UserID    int64  `db:"user_id"`
	ProductID int64  `db:"product_id"`
	Quantity  int    `db:"quantity"`
	AddedAt   string `db:"added_at"`
}

type Order struct {
	ID          int64       `db:"id"`
	UserID      int64       `db:"user_id"`
	Status      OrderStatus `db:"status"`
	CreatedAt   string      `db:"created_at"`
	UpdatedAt   string      `db:"updated_at"`
	TotalAmount float64     `db:"total_amount"`
}

type OrderItem struct {
	ID           int64   `db:"id"`
	OrderID      int64   `db:"order_id"`
	ProductID    int64   `db:"product_id"`
	Quantity     int     `db:"quantity"`
	PricePerUnit float64 `db:"price_per_unit"` // captured at order creation, immutable
}

type ChatSender string

const (
	SenderUser  ChatSender = "user"
	SenderAgent ChatSender = "agent"
)

// ChatMessage is both a row and a JSON payload; the chat frontend consumes
// the history endpoint directly.
type ChatMessage struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	Timestamp   string     `db:"timestamp" json:"timestamp"`
	Sender      ChatSender `db:"sender" json:"sender"`
	MessageText string     `db:"message_text" json:"message_text"`
}
