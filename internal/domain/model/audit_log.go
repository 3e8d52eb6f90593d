package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionCreateCategory    AuditAction = "CREATE_CATEGORY"
	AuditActionDeleteCategory    AuditAction = "DELETE_CATEGORY"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct  AuditResourceType = "product"
	AuditResourceCategory AuditResourceType = "category"
	AuditResourceOrder    AuditResourceType = "order"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//注文IDはUUIDなので文字列で持つ
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text;not null;default:''" json:"before_json"`
	AfterJSON  string `gorm:"type:text;not null;default:''" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
