package repositories

import "errors"

// ErrInsufficientStock is returned by a conditional stock decrement that
// would take stock below zero. The decrement is a guarded update, so zero
// affected rows means insufficiency discovered atomically.
var ErrInsufficientStock = errors.New("insufficient stock for decrement")
