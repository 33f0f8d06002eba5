package models

import "errors"

// ErrValidation marks a request rejected before touching the store, e.g. a
// blank name or an empty partial update. Not-found conditions wrap
// gorm.ErrRecordNotFound instead.
var ErrValidation = errors.New("validation failed")
