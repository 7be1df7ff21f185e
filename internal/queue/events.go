// Package queue defines the domain events published to RabbitMQ and the
// background consumers that react to them.
package queue

const (
	// UserRegisteredQueue receives one event per successful signup; the
	// welcome-mail consumer drains it.
	UserRegisteredQueue = "user.registered"
	// AdvertCollectedQueue receives one event per successful collection.
	AdvertCollectedQueue = "advert.collected"
	// NewsletterQueue receives newsletter subscription changes.
	NewsletterQueue = "newsletter.updated"
)

// UserRegisteredEvent is published when a signup commits.
type UserRegisteredEvent struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	RegisteredAt string `json:"registered_at"`
}

// AdvertCollectedEvent is published when a collection commits. It carries
// enough for downstream consumers to notify or log without querying the
// primary database.
type AdvertCollectedEvent struct {
	AdvertID    uint   `json:"advert_id"`
	Title       string `json:"title"`
	SellerID    uint   `json:"seller_id"`
	BuyerID     uint   `json:"buyer_id"`
	CollectedAt string `json:"collected_at"`
}

// NewsletterEvent is published when a user changes their newsletter
// subscription.
type NewsletterEvent struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Subscribed bool   `json:"subscribed"`
	ChangedAt  string `json:"changed_at"`
}
