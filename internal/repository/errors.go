package repository

import "errors"

// ErrNotFound возвращается операциями записи, которые не затронули ни одной строки.
// Чтение по ID по-прежнему возвращает nil, nil.
var ErrNotFound = errors.New("record not found")
