package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境开启SQL日志,生产环境关闭
// 4. 自动迁移表结构(AutoMigrate)
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("数据库连接成功")

	// 生产环境应使用版本化的迁移脚本,不要依赖AutoMigrate
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PaymentModel{},
		&LedgerEntryModel{},
		&ShipmentModel{},
	)
}

// UserModel GORM用户模型
// 设计说明:
// 1. infrastructure层的数据模型,包含GORM tag
// 2. domain/user/entity.go是领域实体,不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:customer;comment:角色"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (UserModel) TableName() string {
	return "users"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 价格使用int64存储便士(避免浮点数精度问题)
// 2. SKU有唯一索引,防止重复
// 3. Stock是当前可售库存,所有变更都经过库存台账
type ProductModel struct {
	ID                uint           `gorm:"primaryKey"`
	SKU               string         `gorm:"uniqueIndex;size:32;not null;comment:商品编码"`
	Title             string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author            string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Price             int64          `gorm:"index:idx_list;not null;comment:价格(便士)"`
	Stock             int            `gorm:"default:0;comment:库存数量"`
	LowStockThreshold int            `gorm:"default:5;comment:低库存预警阈值"`
	IsActive          bool           `gorm:"default:true;index;comment:是否上架"`
	CoverURL          string         `gorm:"size:500;comment:封面图片URL"`
	Description       string         `gorm:"type:text;comment:商品描述"`
	CreatedAt         time.Time      `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt         time.Time      `gorm:"comment:更新时间"`
	DeletedAt         gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (ProductModel) TableName() string {
	return "products"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. UserID为0表示游客订单,按GuestToken查询
type OrderModel struct {
	ID           uint             `gorm:"primaryKey"`
	OrderNo      string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID       uint             `gorm:"index;not null;default:0;comment:买家用户ID(游客为0)"`
	GuestToken   string           `gorm:"index;size:64;comment:游客令牌"`
	Total        int64            `gorm:"not null;comment:订单总金额(便士)"`
	Currency     string           `gorm:"size:3;not null;default:GBP;comment:货币代码"`
	Status       int              `gorm:"index;type:tinyint;default:1;comment:订单状态"`
	CancelReason string           `gorm:"size:200;comment:取消原因"`
	CancelledAt  *time.Time       `gorm:"comment:取消时间"`
	Items        []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt    time.Time        `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 记录下单时的标题和价格快照
type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"index;not null;comment:订单ID"`
	ProductID uint   `gorm:"index;not null;comment:商品ID"`
	Title     string `gorm:"size:200;not null;comment:快照时书名"`
	Quantity  int    `gorm:"not null;comment:购买数量"`
	UnitPrice int64  `gorm:"not null;comment:快照时单价(便士)"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// PaymentModel GORM支付模型
// IntentID是网关侧意向ID,全局唯一
type PaymentModel struct {
	ID            uint       `gorm:"primaryKey"`
	IntentID      string     `gorm:"uniqueIndex;size:64;not null;comment:网关支付意向ID"`
	OrderID       uint       `gorm:"index;not null;comment:订单ID"`
	Amount        int64      `gorm:"not null;comment:支付金额(便士)"`
	Currency      string     `gorm:"size:3;not null;default:GBP;comment:货币代码"`
	Status        int        `gorm:"index;type:tinyint;default:1;comment:支付状态"`
	TransactionID string     `gorm:"size:64;comment:网关交易号"`
	PaymentMethod string     `gorm:"size:20;not null;comment:支付方式"`
	PayerEmail    string     `gorm:"size:100;comment:付款人邮箱"`
	PayerName     string     `gorm:"size:100;comment:付款人姓名"`
	ApprovalURL   string     `gorm:"size:500;comment:买家授权跳转地址"`
	ProcessedAt   *time.Time `gorm:"comment:终态到达时间"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}

// LedgerEntryModel GORM库存台账模型
// 设计说明:
// 1. 台账只增不改不删(审计追溯)
// 2. Quantity恒为正,方向由ChangeType表达
// 3. PreviousStock/NewStock记录变更前后快照
type LedgerEntryModel struct {
	ID            uint      `gorm:"primaryKey"`
	ProductID     uint      `gorm:"index;not null;comment:商品ID"`
	ChangeType    string    `gorm:"size:20;not null;comment:变更类型"`
	Quantity      int       `gorm:"not null;comment:变更数量(恒为正)"`
	PreviousStock int       `gorm:"not null;comment:变更前库存"`
	NewStock      int       `gorm:"not null;comment:变更后库存"`
	Reason        string    `gorm:"size:200;comment:变更原因"`
	ReferenceType string    `gorm:"index:idx_ref;size:20;comment:关联业务类型"`
	ReferenceID   uint      `gorm:"index:idx_ref;comment:关联业务ID"`
	CreatedAt     time.Time `gorm:"index;comment:创建时间"`
}

func (LedgerEntryModel) TableName() string {
	return "inventory_ledger"
}

// ShipmentModel GORM物流单模型
type ShipmentModel struct {
	ID          uint       `gorm:"primaryKey"`
	OrderID     uint       `gorm:"uniqueIndex;not null;comment:订单ID"`
	Status      int        `gorm:"index;type:tinyint;default:1;comment:物流状态"`
	Carrier     string     `gorm:"size:32;comment:承运商"`
	TrackingNo  string     `gorm:"size:64;comment:运单号"`
	PackedAt    time.Time  `gorm:"comment:打包时间"`
	ShippedAt   *time.Time `gorm:"comment:发货时间"`
	DeliveredAt *time.Time `gorm:"comment:送达时间"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ShipmentModel) TableName() string {
	return "shipments"
}
