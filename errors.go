package blogvault

import "errors"

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrInvalidStatus = errors.New("invalid post status")
	ErrImageDecode   = errors.New("cannot decode image")
	ErrKeyNotFound   = errors.New("key not found")
)
