package territories

import "errors"

var (
	ErrTerritoryNotFound      = errors.New("territory not found")
	ErrTerritoryAlreadyExists = errors.New("territory already exists")
	ErrHasChildren            = errors.New("territory has children")
	ErrLinked                 = errors.New("territory is linked with other records")
	ErrInvalidInput           = errors.New("invalid input data")
	ErrInternal               = errors.New("service: internal error")
)
