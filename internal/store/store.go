package store

import "gorm.io/gorm"

// Store 封装对 employees / products / sales / stock_movements 的读写。
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 暴露底层连接，供健康检查与测试使用。
func (s *Store) DB() *gorm.DB { return s.db }
