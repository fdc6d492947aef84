package repository

import (
	"errors"

	"gorm.io/gorm"

	pkgErrors "tenant-deployer/pkg/errors"
)

// wrapFind 统一处理查询错误
func wrapFind(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgErrors.ErrRecordNotFound
	}
	return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, message, err)
}
