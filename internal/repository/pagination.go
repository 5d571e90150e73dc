package repository

import "gorm.io/gorm"

const maxPageSize = 100

// paginate 返回应用分页的 gorm scope，非法页码按第一页处理，单页上限 100 条。
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(query *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return query
		}
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		if page < 1 {
			page = 1
		}
		return query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
}

// applyPagination 在已有查询上应用分页。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil {
		return query
	}
	return query.Scopes(paginate(page, pageSize))
}
