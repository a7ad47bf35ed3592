package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// buildLikeCondition 构建多列模糊匹配条件（postgres 使用 ILIKE 忽略大小写）。
func buildLikeCondition(db *gorm.DB, keyword string, columns ...string) (string, []interface{}) {
	return buildLikeConditionByDialect(dbDialectName(db), keyword, columns...)
}

func buildLikeConditionByDialect(dialect, keyword string, columns ...string) (string, []interface{}) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", nil
	}
	operator := likeOperatorByDialect(dialect)
	like := "%" + escapeLike(keyword) + "%"

	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ? ESCAPE '\\'", trimmed, operator))
		args = append(args, like)
	}
	return strings.Join(parts, " OR "), args
}

func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// escapeLike 转义 LIKE 通配符
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
