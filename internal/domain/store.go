package domain

import "time"

type StoreItem struct {
	ID          int64  `db:"item_id" json:"itemId"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Price       int64  `db:"price" json:"price"`
	Available   bool   `db:"available" json:"available"`
}

type Purchase struct {
	ID          int64     `db:"purchase_id" json:"purchaseId"`
	UserID      int64     `db:"user_id" json:"userId"`
	ItemID      int64     `db:"item_id" json:"itemId"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchasedAt"`
}
